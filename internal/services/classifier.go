package services

import (
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/materials"
	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/subjects"
	"github.com/sudo-sidd/classroom-downloader/internal/domain"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/dbctx"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

// AutoApplyThreshold is the confidence below which a match is only
// suggested, never applied.
const AutoApplyThreshold = 0.7

const (
	ClassificationAuto   = "auto"
	ClassificationManual = "manual"
)

// Suggestion is one candidate subject for a material.
type Suggestion struct {
	SubjectID   uuid.UUID `json:"subject_id"`
	SubjectName string    `json:"subject_name"`
	Color       string    `json:"subject_color"`
	Confidence  float64   `json:"confidence"`
	Keywords    string    `json:"keywords"`
}

// ReclassifyStats summarizes a full reclassification pass.
type ReclassifyStats struct {
	TotalFiles    int `json:"total_files"`
	Classified    int `json:"classified"`
	AutoApplied   int `json:"auto_applied"`
	LowConfidence int `json:"low_confidence"`
}

type ClassifierService interface {
	ClassifyMaterial(dbc dbctx.Context, m *domain.Material) (*Suggestion, error)
	AutoClassify(dbc dbctx.Context, materialIDs []uuid.UUID) (*ReclassifyStats, error)
	Suggestions(dbc dbctx.Context, m *domain.Material, limit int) ([]Suggestion, error)
	ReclassifyAll(dbc dbctx.Context) (*ReclassifyStats, error)
}

type classifierService struct {
	log          *logger.Logger
	subjectRepo  subjects.SubjectRepo
	materialRepo materials.MaterialRepo
}

func NewClassifierService(baseLog *logger.Logger, subjectRepo subjects.SubjectRepo, materialRepo materials.MaterialRepo) ClassifierService {
	return &classifierService{
		log:          baseLog.With("service", "ClassifierService"),
		subjectRepo:  subjectRepo,
		materialRepo: materialRepo,
	}
}

var nonWordRe = regexp.MustCompile(`[^\w\s]`)
var spaceRe = regexp.MustCompile(`\s+`)

// normalizeText lowercases and strips punctuation so keyword matching only
// sees words.
func normalizeText(parts ...string) string {
	joined := strings.ToLower(strings.Join(parts, " "))
	joined = nonWordRe.ReplaceAllString(joined, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(joined, " "))
}

// keywordMatches applies word-boundary matching for single words and short
// abbreviations, substring matching for longer phrases.
func keywordMatches(keyword, text string) bool {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return false
	}
	if len(keyword) <= 5 || len(strings.Fields(keyword)) == 1 {
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
		if err != nil {
			return false
		}
		return re.MatchString(text)
	}
	return strings.Contains(text, keyword)
}

// matchScore scores a subject against normalized text: the matched fraction
// of its keyword list, weighted up by the total word count of the matched
// keywords and capped at 1.0.
func matchScore(text string, subject *domain.Subject) float64 {
	var keywords []string
	for _, k := range strings.Split(subject.Keywords, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	if len(keywords) == 0 {
		return 0
	}

	matched := 0
	totalWeight := 0
	for _, k := range keywords {
		if keywordMatches(k, text) {
			matched++
			totalWeight += len(strings.Fields(k))
		}
	}
	if matched == 0 {
		return 0
	}

	base := float64(matched) / float64(len(keywords))
	weight := 1.0 + float64(totalWeight)*0.1
	if weight > 2.0 {
		weight = 2.0
	}
	score := base * weight
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// ClassifyMaterial returns the best-scoring subject or nil when nothing
// matches. Ties between scores break on subject priority.
func (s *classifierService) ClassifyMaterial(dbc dbctx.Context, m *domain.Material) (*Suggestion, error) {
	candidates, err := s.rank(dbc, m, 1)
	if err != nil || len(candidates) == 0 {
		return nil, err
	}
	return &candidates[0], nil
}

// Suggestions returns up to limit candidates ordered by confidence.
func (s *classifierService) Suggestions(dbc dbctx.Context, m *domain.Material, limit int) ([]Suggestion, error) {
	if limit <= 0 {
		limit = 3
	}
	return s.rank(dbc, m, limit)
}

func (s *classifierService) rank(dbc dbctx.Context, m *domain.Material, limit int) ([]Suggestion, error) {
	subjectList, err := s.subjectRepo.List(dbc)
	if err != nil {
		return nil, err
	}
	text := normalizeText(m.Title, m.Description)
	if text == "" {
		return nil, nil
	}

	type scored struct {
		Suggestion
		priority int
	}
	var matches []scored
	for _, sub := range subjectList {
		score := matchScore(text, sub)
		if score <= 0 {
			continue
		}
		matches = append(matches, scored{
			Suggestion: Suggestion{
				SubjectID:   sub.ID,
				SubjectName: sub.Name,
				Color:       sub.Color,
				Confidence:  score,
				Keywords:    sub.Keywords,
			},
			priority: sub.Priority,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		return matches[i].priority > matches[j].priority
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]Suggestion, len(matches))
	for i, c := range matches {
		out[i] = c.Suggestion
	}
	return out, nil
}

// AutoClassify classifies the given materials and applies every match at or
// above the threshold.
func (s *classifierService) AutoClassify(dbc dbctx.Context, materialIDs []uuid.UUID) (*ReclassifyStats, error) {
	stats := &ReclassifyStats{TotalFiles: len(materialIDs)}
	for _, id := range materialIDs {
		m, err := s.materialRepo.GetByID(dbc, id)
		if err != nil {
			continue
		}
		if err := s.applyBest(dbc, m, stats); err != nil {
			return nil, err
		}
	}
	s.log.Info("auto classification finished", "stats", stats)
	return stats, nil
}

// ReclassifyAll re-runs keyword classification over every material,
// replacing existing auto classifications when confident enough.
func (s *classifierService) ReclassifyAll(dbc dbctx.Context) (*ReclassifyStats, error) {
	all, err := s.materialRepo.Search(dbc, materials.SearchFilter{})
	if err != nil {
		return nil, err
	}
	stats := &ReclassifyStats{TotalFiles: len(all)}
	for _, m := range all {
		if err := s.applyBest(dbc, m, stats); err != nil {
			return nil, err
		}
	}
	s.log.Info("reclassification finished", "stats", stats)
	return stats, nil
}

func (s *classifierService) applyBest(dbc dbctx.Context, m *domain.Material, stats *ReclassifyStats) error {
	best, err := s.ClassifyMaterial(dbc, m)
	if err != nil {
		return err
	}
	if best == nil {
		return nil
	}
	stats.Classified++
	if best.Confidence < AutoApplyThreshold {
		stats.LowConfidence++
		return nil
	}
	if err := s.materialRepo.SetClassification(dbc, m.ID, best.SubjectID, ClassificationAuto, best.Confidence); err != nil {
		return err
	}
	stats.AutoApplied++
	return nil
}
