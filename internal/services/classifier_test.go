package services

import (
	"context"
	"testing"

	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/materials"
	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/subjects"
	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/testutil"
	"github.com/sudo-sidd/classroom-downloader/internal/domain"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/dbctx"
)

func TestKeywordMatches(t *testing.T) {
	t.Parallel()

	cases := []struct {
		keyword string
		text    string
		want    bool
	}{
		{"math", "advanced math notes", true},
		{"math", "mathematics notes", false},
		{"cs", "intro to cs lecture", true},
		{"cs", "physics lecture", false},
		{"operating systems", "notes on operating systems scheduling", true},
		{"machine learning basics", "intro to machine learning basics and beyond", true},
		{"machine learning basics", "machine learning advanced", false},
		{"", "anything", false},
	}
	for _, c := range cases {
		if got := keywordMatches(c.keyword, c.text); got != c.want {
			t.Errorf("keywordMatches(%q, %q) = %v, want %v", c.keyword, c.text, got, c.want)
		}
	}
}

func TestMatchScore(t *testing.T) {
	t.Parallel()

	sub := &domain.Subject{Keywords: "calculus, derivative, integral"}
	text := normalizeText("Calculus Lecture 4: the derivative")

	score := matchScore(text, sub)
	// 2 of 3 keywords matched, weight 1.2: 2/3 * 1.2 = 0.8.
	if score < 0.79 || score > 0.81 {
		t.Fatalf("score = %v, want 0.8", score)
	}

	if got := matchScore(text, &domain.Subject{Keywords: ""}); got != 0 {
		t.Fatalf("empty keywords score = %v, want 0", got)
	}
	if got := matchScore(text, &domain.Subject{Keywords: "biology, genetics"}); got != 0 {
		t.Fatalf("unrelated score = %v, want 0", got)
	}

	full := matchScore(normalizeText("calculus derivative integral"), sub)
	if full != 1.0 {
		t.Fatalf("all-match score = %v, must cap at 1.0", full)
	}
}

func TestClassifierService(t *testing.T) {
	t.Parallel()

	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	subjectRepo := subjects.NewSubjectRepo(gdb, log)
	materialRepo := materials.NewMaterialRepo(gdb, log)
	svc := NewClassifierService(log, subjectRepo, materialRepo)

	dbc := dbctx.Context{Ctx: context.Background()}

	math := &domain.Subject{Name: "Mathematics", Keywords: "calculus, algebra, derivative", Priority: 5}
	phys := &domain.Subject{Name: "Physics", Keywords: "mechanics, optics", Priority: 3}
	if err := subjectRepo.Create(dbc, math); err != nil {
		t.Fatalf("create subject: %v", err)
	}
	if err := subjectRepo.Create(dbc, phys); err != nil {
		t.Fatalf("create subject: %v", err)
	}

	m := &domain.Material{
		Title:       "Calculus basics: the derivative and algebra review",
		RemoteID:    "r1",
		Description: "introductory notes",
	}
	if err := materialRepo.Upsert(dbc, m); err != nil {
		t.Fatalf("upsert material: %v", err)
	}

	best, err := svc.ClassifyMaterial(dbc, m)
	if err != nil {
		t.Fatalf("ClassifyMaterial: %v", err)
	}
	if best == nil || best.SubjectName != "Mathematics" {
		t.Fatalf("best = %+v, want Mathematics", best)
	}
	if best.Confidence < AutoApplyThreshold {
		t.Fatalf("confidence = %v, expected a confident 3/3 match", best.Confidence)
	}

	stats, err := svc.ReclassifyAll(dbc)
	if err != nil {
		t.Fatalf("ReclassifyAll: %v", err)
	}
	if stats.TotalFiles != 1 || stats.Classified != 1 || stats.AutoApplied != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	got, err := materialRepo.GetByID(dbc, m.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.SubjectID == nil || *got.SubjectID != math.ID {
		t.Fatalf("material subject = %v, want %v", got.SubjectID, math.ID)
	}
	if got.ClassificationType != ClassificationAuto {
		t.Fatalf("classification type = %q", got.ClassificationType)
	}
}

func TestClassifierNoMatch(t *testing.T) {
	t.Parallel()

	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	subjectRepo := subjects.NewSubjectRepo(gdb, log)
	materialRepo := materials.NewMaterialRepo(gdb, log)
	svc := NewClassifierService(log, subjectRepo, materialRepo)

	dbc := dbctx.Context{Ctx: context.Background()}
	if err := subjectRepo.Create(dbc, &domain.Subject{Name: "Chemistry", Keywords: "stoichiometry"}); err != nil {
		t.Fatalf("create subject: %v", err)
	}

	best, err := svc.ClassifyMaterial(dbc, &domain.Material{Title: "holiday schedule"})
	if err != nil {
		t.Fatalf("ClassifyMaterial: %v", err)
	}
	if best != nil {
		t.Fatalf("best = %+v, want nil for no keyword overlap", best)
	}
}
