package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/materials"
	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/study"
	"github.com/sudo-sidd/classroom-downloader/internal/domain"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/apperr"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/dbctx"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

const chatHistoryLimit = 20

// StudyService covers the study surface over downloaded materials: notes,
// spaced-repetition flashcards, reading progress and the per-material chat.
type StudyService interface {
	CreateNote(dbc dbctx.Context, materialID uuid.UUID, title, body string) (*domain.Note, error)
	UpdateNote(dbc dbctx.Context, id uuid.UUID, title, body string) (*domain.Note, error)
	DeleteNote(dbc dbctx.Context, id uuid.UUID) error
	NotesForMaterial(dbc dbctx.Context, materialID uuid.UUID) ([]*domain.Note, error)

	CreateFlashcard(dbc dbctx.Context, materialID uuid.UUID, front, back string) (*domain.Flashcard, error)
	DeleteFlashcard(dbc dbctx.Context, id uuid.UUID) error
	FlashcardsForMaterial(dbc dbctx.Context, materialID uuid.UUID) ([]*domain.Flashcard, error)
	DueFlashcards(dbc dbctx.Context, limit int) ([]*domain.Flashcard, error)
	ReviewFlashcard(dbc dbctx.Context, id uuid.UUID, correct bool) (*domain.Flashcard, error)

	SetReadingProgress(dbc dbctx.Context, materialID uuid.UUID, percent float64, lastPage int) (*domain.ReadingProgress, error)
	ReadingProgressFor(dbc dbctx.Context, materialID uuid.UUID) (*domain.ReadingProgress, error)

	Chat(dbc dbctx.Context, materialID uuid.UUID, message string) (*domain.ChatMessage, error)
	ChatHistory(dbc dbctx.Context, materialID uuid.UUID) ([]*domain.ChatMessage, error)
}

type studyService struct {
	log          *logger.Logger
	noteRepo     study.NoteRepo
	cardRepo     study.FlashcardRepo
	progressRepo study.ReadingProgressRepo
	chatRepo     study.ChatMessageRepo
	materialRepo materials.MaterialRepo
	gemini       GeminiClient
}

func NewStudyService(
	baseLog *logger.Logger,
	noteRepo study.NoteRepo,
	cardRepo study.FlashcardRepo,
	progressRepo study.ReadingProgressRepo,
	chatRepo study.ChatMessageRepo,
	materialRepo materials.MaterialRepo,
	gemini GeminiClient,
) StudyService {
	return &studyService{
		log:          baseLog.With("service", "StudyService"),
		noteRepo:     noteRepo,
		cardRepo:     cardRepo,
		progressRepo: progressRepo,
		chatRepo:     chatRepo,
		materialRepo: materialRepo,
		gemini:       gemini,
	}
}

func (s *studyService) CreateNote(dbc dbctx.Context, materialID uuid.UUID, title, body string) (*domain.Note, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: note title required", apperr.ErrInvalidArgument)
	}
	note := &domain.Note{MaterialID: materialID, Title: title, Body: body}
	if err := s.noteRepo.Create(dbc, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *studyService) UpdateNote(dbc dbctx.Context, id uuid.UUID, title, body string) (*domain.Note, error) {
	note, err := s.noteRepo.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if title != "" {
		note.Title = title
	}
	note.Body = body
	if err := s.noteRepo.Update(dbc, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *studyService) DeleteNote(dbc dbctx.Context, id uuid.UUID) error {
	return s.noteRepo.Delete(dbc, id)
}

func (s *studyService) NotesForMaterial(dbc dbctx.Context, materialID uuid.UUID) ([]*domain.Note, error) {
	return s.noteRepo.GetByMaterialID(dbc, materialID)
}

func (s *studyService) CreateFlashcard(dbc dbctx.Context, materialID uuid.UUID, front, back string) (*domain.Flashcard, error) {
	if strings.TrimSpace(front) == "" {
		return nil, fmt.Errorf("%w: flashcard front required", apperr.ErrInvalidArgument)
	}
	card := &domain.Flashcard{
		MaterialID:   materialID,
		Front:        front,
		Back:         back,
		IntervalDays: 1,
		DueAt:        time.Now().UTC(),
	}
	if err := s.cardRepo.Create(dbc, card); err != nil {
		return nil, err
	}
	return card, nil
}

func (s *studyService) DeleteFlashcard(dbc dbctx.Context, id uuid.UUID) error {
	return s.cardRepo.Delete(dbc, id)
}

func (s *studyService) FlashcardsForMaterial(dbc dbctx.Context, materialID uuid.UUID) ([]*domain.Flashcard, error) {
	return s.cardRepo.GetByMaterialID(dbc, materialID)
}

func (s *studyService) DueFlashcards(dbc dbctx.Context, limit int) ([]*domain.Flashcard, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.cardRepo.GetDue(dbc, time.Now().UTC(), limit)
}

// ReviewFlashcard doubles the interval on a correct answer and resets it to
// one day on a lapse, then reschedules the card.
func (s *studyService) ReviewFlashcard(dbc dbctx.Context, id uuid.UUID, correct bool) (*domain.Flashcard, error) {
	card, err := s.cardRepo.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	card.Reviews++
	if correct {
		card.IntervalDays *= 2
	} else {
		card.IntervalDays = 1
		card.Lapses++
	}
	card.DueAt = time.Now().UTC().AddDate(0, 0, card.IntervalDays)
	if err := s.cardRepo.Update(dbc, card); err != nil {
		return nil, err
	}
	return card, nil
}

func (s *studyService) SetReadingProgress(dbc dbctx.Context, materialID uuid.UUID, percent float64, lastPage int) (*domain.ReadingProgress, error) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	row := &domain.ReadingProgress{
		MaterialID: materialID,
		Percent:    percent,
		LastPage:   lastPage,
	}
	if err := s.progressRepo.Upsert(dbc, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *studyService) ReadingProgressFor(dbc dbctx.Context, materialID uuid.UUID) (*domain.ReadingProgress, error) {
	return s.progressRepo.GetByMaterialID(dbc, materialID)
}

// Chat appends the user turn, asks the model with the material's context
// and recent history, and appends the assistant turn. The user message is
// persisted even when the model call fails.
func (s *studyService) Chat(dbc dbctx.Context, materialID uuid.UUID, message string) (*domain.ChatMessage, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: empty message", apperr.ErrInvalidArgument)
	}
	if !s.gemini.Available() {
		return nil, fmt.Errorf("chat model not available")
	}

	material, err := s.materialRepo.GetByID(dbc, materialID)
	if err != nil {
		return nil, err
	}

	userMsg := &domain.ChatMessage{
		MaterialID: materialID,
		Role:       domain.ChatRoleUser,
		Content:    message,
	}
	if err := s.chatRepo.Append(dbc, userMsg); err != nil {
		return nil, err
	}

	history, err := s.chatRepo.GetByMaterialID(dbc, materialID, chatHistoryLimit)
	if err != nil {
		return nil, err
	}

	prompt := buildChatPrompt(material, history, message)
	answer, err := s.gemini.GenerateContent(dbc.Ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("chat generation: %w", err)
	}

	reply := &domain.ChatMessage{
		MaterialID: materialID,
		Role:       domain.ChatRoleAssistant,
		Content:    strings.TrimSpace(answer),
	}
	if err := s.chatRepo.Append(dbc, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (s *studyService) ChatHistory(dbc dbctx.Context, materialID uuid.UUID) ([]*domain.ChatMessage, error) {
	return s.chatRepo.GetByMaterialID(dbc, materialID, chatHistoryLimit)
}

func buildChatPrompt(material *domain.Material, history []*domain.ChatMessage, question string) string {
	var b strings.Builder
	b.WriteString("You are a study assistant answering questions about one course material.\n\n")
	fmt.Fprintf(&b, "Material: %s\nCourse: %s\n", material.Title, material.CourseName)
	if material.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", material.Description)
	}
	if material.AISummary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", material.AISummary)
	}
	if content := extractLocalText(material.LocalPath); content != "" {
		if len(content) > maxInlineContent {
			content = content[:maxInlineContent]
		}
		fmt.Fprintf(&b, "\nContent:\n%s\n", content)
	}
	if len(history) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, msg := range history {
			fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
		}
	}
	fmt.Fprintf(&b, "\nAnswer the user's latest question concisely.\nuser: %s\n", question)
	return b.String()
}
