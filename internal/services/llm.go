package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/materials"
	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/subjects"
	"github.com/sudo-sidd/classroom-downloader/internal/domain"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/dbctx"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

const (
	maxInlineContent   = 3000
	maxTextFileRead    = 5000
	newSubjectPriority = 7
)

// Analysis is the validated result of one document analysis.
type Analysis struct {
	PrimarySubject      string               `json:"primary_subject"`
	Confidence          float64              `json:"confidence"`
	Keywords            []string             `json:"keywords"`
	ContentSummary      string               `json:"content_summary"`
	AlternativeSubjects []AlternativeSubject `json:"alternative_subjects"`
	DocumentType        string               `json:"document_type"`
	Reasoning           string               `json:"reasoning"`
}

type AlternativeSubject struct {
	Subject    string  `json:"subject"`
	Confidence float64 `json:"confidence"`
}

// LLMClassifyResult aggregates one bulk analysis run.
type LLMClassifyResult struct {
	TotalAnalyzed          int                 `json:"total_analyzed"`
	SuccessfullyClassified int                 `json:"successfully_classified"`
	NewSubjectsCreated     int                 `json:"new_subjects_created"`
	LowConfidence          []LowConfidenceFile `json:"low_confidence_files"`
	Errors                 []AnalysisError     `json:"errors"`
}

type LowConfidenceFile struct {
	MaterialID string  `json:"material_id"`
	Title      string  `json:"title"`
	Subject    string  `json:"suggested_subject"`
	Confidence float64 `json:"confidence"`
}

type AnalysisError struct {
	MaterialID string `json:"material_id"`
	Title      string `json:"title"`
	Error      string `json:"error"`
}

type LLMService interface {
	Available() bool
	AnalyzeMaterial(dbc dbctx.Context, m *domain.Material) (*Analysis, error)
	AnalyzeAndClassify(dbc dbctx.Context, materialIDs []string, autoCreateSubjects bool) (*LLMClassifyResult, error)
}

type llmService struct {
	log          *logger.Logger
	gemini       GeminiClient
	materialRepo materials.MaterialRepo
	subjectRepo  subjects.SubjectRepo
}

func NewLLMService(baseLog *logger.Logger, gemini GeminiClient, materialRepo materials.MaterialRepo, subjectRepo subjects.SubjectRepo) LLMService {
	return &llmService{
		log:          baseLog.With("service", "LLMService"),
		gemini:       gemini,
		materialRepo: materialRepo,
		subjectRepo:  subjectRepo,
	}
}

func (s *llmService) Available() bool { return s.gemini.Available() }

const analysisPrompt = `Analyze this educational document and provide intelligent subject classification:

Document Title: %s
Description: %s
File Type: %s

Document Content (beginning):
%s

Based on this information, please provide:

1. Primary Subject: the academic subject this document belongs to
2. Confidence Score: 0.0 to 1.0
3. Subject Keywords: comma-separated identifying terms
4. Content Summary: 2-3 sentences
5. Alternative Subjects: up to 2 with confidence scores
6. Document Type: lecture notes, assignment, slides, lab manual, etc.

Respond in this exact JSON format:
{
    "primary_subject": "Subject Name",
    "confidence": 0.85,
    "keywords": ["keyword1", "keyword2"],
    "content_summary": "Brief summary",
    "alternative_subjects": [{"subject": "Alternative", "confidence": 0.65}],
    "document_type": "Document Type",
    "reasoning": "Brief explanation"
}`

// AnalyzeMaterial runs one document through the model and persists the
// analysis columns on the material row.
func (s *llmService) AnalyzeMaterial(dbc dbctx.Context, m *domain.Material) (*Analysis, error) {
	if !s.Available() {
		return nil, fmt.Errorf("llm analyzer not available")
	}

	content := extractLocalText(m.LocalPath)
	if len(content) > maxInlineContent {
		content = content[:maxInlineContent]
	}

	prompt := fmt.Sprintf(analysisPrompt, m.Title, m.Description, m.MimeType, content)
	raw, err := s.gemini.GenerateContent(dbc.Ctx, prompt)
	if err != nil {
		return nil, err
	}

	analysis, err := parseAnalysis(raw)
	if err != nil {
		return nil, err
	}

	keywordsJSON, _ := json.Marshal(analysis.Keywords)
	if err := s.materialRepo.UpdateFields(dbc, m.ID, map[string]interface{}{
		"ai_subject":       analysis.PrimarySubject,
		"ai_document_type": analysis.DocumentType,
		"ai_summary":       analysis.ContentSummary,
		"ai_keywords":      datatypes.JSON(keywordsJSON),
	}); err != nil {
		s.log.Warn("persist analysis failed", "material_id", m.ID, "error", err)
	}
	return analysis, nil
}

// AnalyzeAndClassify analyzes each material, creating subjects for new
// confident classifications when allowed, and applies every confident
// match. Per-item failures are collected, not fatal.
func (s *llmService) AnalyzeAndClassify(dbc dbctx.Context, materialIDs []string, autoCreateSubjects bool) (*LLMClassifyResult, error) {
	if !s.Available() {
		return nil, fmt.Errorf("llm analyzer not available")
	}

	result := &LLMClassifyResult{}
	for _, rawID := range materialIDs {
		result.TotalAnalyzed++

		m, err := s.lookup(dbc, rawID)
		if err != nil {
			result.Errors = append(result.Errors, AnalysisError{MaterialID: rawID, Error: err.Error()})
			continue
		}

		analysis, err := s.AnalyzeMaterial(dbc, m)
		if err != nil {
			result.Errors = append(result.Errors, AnalysisError{MaterialID: rawID, Title: m.Title, Error: err.Error()})
			continue
		}

		subjectID, created, err := s.resolveSubject(dbc, analysis, autoCreateSubjects)
		if err != nil {
			result.Errors = append(result.Errors, AnalysisError{MaterialID: rawID, Title: m.Title, Error: err.Error()})
			continue
		}
		if created {
			result.NewSubjectsCreated++
		}

		if subjectID != nil && analysis.Confidence >= AutoApplyThreshold {
			if err := s.materialRepo.SetClassification(dbc, m.ID, *subjectID, ClassificationAuto, analysis.Confidence); err != nil {
				result.Errors = append(result.Errors, AnalysisError{MaterialID: rawID, Title: m.Title, Error: err.Error()})
				continue
			}
			result.SuccessfullyClassified++
		} else {
			result.LowConfidence = append(result.LowConfidence, LowConfidenceFile{
				MaterialID: m.ID.String(),
				Title:      m.Title,
				Subject:    analysis.PrimarySubject,
				Confidence: analysis.Confidence,
			})
		}
	}
	return result, nil
}

func (s *llmService) lookup(dbc dbctx.Context, rawID string) (*domain.Material, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid material id %q: %w", rawID, err)
	}
	return s.materialRepo.GetByID(dbc, id)
}

// resolveSubject finds the analysis's subject by name, creating it with the
// model's keywords when allowed and the match is confident.
func (s *llmService) resolveSubject(dbc dbctx.Context, analysis *Analysis, autoCreate bool) (*uuid.UUID, bool, error) {
	existing, err := s.subjectRepo.GetByName(dbc, analysis.PrimarySubject)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return &existing.ID, false, nil
	}
	if !autoCreate || analysis.Confidence < AutoApplyThreshold {
		return nil, false, nil
	}

	keywords := analysis.Keywords
	if len(keywords) > 5 {
		keywords = keywords[:5]
	}
	sub := &domain.Subject{
		Name:     analysis.PrimarySubject,
		Keywords: strings.Join(keywords, ", "),
		Priority: newSubjectPriority,
	}
	if err := s.subjectRepo.Create(dbc, sub); err != nil {
		return nil, false, err
	}
	s.log.Info("subject created from analysis", "name", sub.Name)
	return &sub.ID, true, nil
}

// parseAnalysis tolerates markdown code fences around the JSON body and
// clamps every field to sane bounds.
func parseAnalysis(raw string) (*Analysis, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var a Analysis
	if err := json.Unmarshal([]byte(text), &a); err != nil {
		return nil, fmt.Errorf("invalid response format from model: %w", err)
	}

	if a.PrimarySubject == "" {
		a.PrimarySubject = "Unknown"
	}
	if a.Confidence < 0 {
		a.Confidence = 0
	}
	if a.Confidence > 1 {
		a.Confidence = 1
	}
	if len(a.Keywords) > 10 {
		a.Keywords = a.Keywords[:10]
	}
	if len(a.ContentSummary) > 500 {
		a.ContentSummary = a.ContentSummary[:500]
	}
	if len(a.AlternativeSubjects) > 3 {
		a.AlternativeSubjects = a.AlternativeSubjects[:3]
	}
	if a.DocumentType == "" {
		a.DocumentType = "Unknown"
	}
	if len(a.Reasoning) > 300 {
		a.Reasoning = a.Reasoning[:300]
	}
	return &a, nil
}

// extractLocalText reads the beginning of plain-text materials. Binary
// formats contribute only their metadata to the prompt.
func extractLocalText(path string) string {
	if path == "" {
		return ""
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".html", ".htm", ".css", ".js", ".json", ".xml":
	default:
		return ""
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	if len(raw) > maxTextFileRead {
		raw = raw[:maxTextFileRead]
	}
	return string(raw)
}
