package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sudo-sidd/classroom-downloader/internal/classroom"
	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/courses"
	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/sessions"
	"github.com/sudo-sidd/classroom-downloader/internal/domain"
	"github.com/sudo-sidd/classroom-downloader/internal/downloads"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/apperr"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/dbctx"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

// RemoteFactory builds the authorized remote clients for one batch. It is
// called at batch start so a token refreshed between batches is picked up.
type RemoteFactory func(ctx context.Context) (classroom.Client, downloads.DriveClient, error)

// StartRequest selects what one batch downloads.
type StartRequest struct {
	CourseIDs []string `json:"course_ids"`
}

// DownloadStatus is the polled view of the service: the latest batch
// snapshot plus service-level flags.
type DownloadStatus struct {
	downloads.BatchStatus
	IsActive bool   `json:"is_active"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
	EndTime  string `json:"end_time,omitempty"`
}

type DownloadService interface {
	Start(ctx context.Context, req StartRequest) (string, error)
	Status() DownloadStatus
}

type downloadService struct {
	log          *logger.Logger
	orchestrator *downloads.Orchestrator
	remotes      RemoteFactory
	courseRepo   courses.CourseRepo
	sessionRepo  sessions.SessionRepo
	indexes      IndexService
	settings     *Settings

	mu      sync.Mutex
	current DownloadStatus
}

func NewDownloadService(
	baseLog *logger.Logger,
	orchestrator *downloads.Orchestrator,
	remotes RemoteFactory,
	courseRepo courses.CourseRepo,
	sessionRepo sessions.SessionRepo,
	indexes IndexService,
	settings *Settings,
) DownloadService {
	return &downloadService{
		log:          baseLog.With("service", "DownloadService"),
		orchestrator: orchestrator,
		remotes:      remotes,
		courseRepo:   courseRepo,
		sessionRepo:  sessionRepo,
		indexes:      indexes,
		settings:     settings,
	}
}

// Start launches one batch in the background. A second Start while a batch
// is active returns apperr.ErrAlreadyRunning.
func (s *downloadService) Start(_ context.Context, req StartRequest) (string, error) {
	if len(req.CourseIDs) == 0 {
		return "", fmt.Errorf("%w: no courses selected", apperr.ErrInvalidArgument)
	}

	s.mu.Lock()
	if s.current.IsActive {
		s.mu.Unlock()
		return "", apperr.ErrAlreadyRunning
	}
	sessionID := downloads.NewSessionID()
	s.current = DownloadStatus{
		BatchStatus: downloads.BatchStatus{SessionID: sessionID},
		IsActive:    true,
		Message:     "Fetching materials from Google Classroom...",
	}
	s.mu.Unlock()

	// The batch outlives the HTTP request that started it.
	go s.run(context.Background(), sessionID, req)

	return sessionID, nil
}

func (s *downloadService) Status() DownloadStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *downloadService) run(ctx context.Context, sessionID string, req StartRequest) {
	if err := s.runBatch(ctx, sessionID, req); err != nil {
		s.log.Error("download batch failed", "session_id", sessionID, "error", err)
		s.mu.Lock()
		s.current.IsActive = false
		s.current.Error = err.Error()
		s.current.EndTime = time.Now().UTC().Format(time.RFC3339)
		s.mu.Unlock()
	}
}

func (s *downloadService) runBatch(ctx context.Context, sessionID string, req StartRequest) error {
	classroomClient, driveClient, err := s.remotes(ctx)
	if err != nil {
		return fmt.Errorf("build remote clients: %w", err)
	}

	attachments, err := s.collectAttachments(ctx, classroomClient, req.CourseIDs)
	if err != nil {
		return err
	}

	if len(attachments) == 0 {
		s.mu.Lock()
		s.current.IsActive = false
		s.current.IsComplete = true
		s.current.Message = "No attachments found to download"
		s.current.EndTime = time.Now().UTC().Format(time.RFC3339)
		s.mu.Unlock()
		return nil
	}

	dbc := dbctx.Context{Ctx: ctx}
	if err := s.sessionRepo.Create(dbc, &domain.DownloadSession{
		SessionID:  sessionID,
		StartTime:  time.Now().UTC(),
		TotalFiles: len(attachments),
		Status:     domain.SessionStatusActive,
	}); err != nil {
		s.log.Warn("record download session failed", "error", err)
	}

	sink := func(status downloads.BatchStatus) {
		s.mu.Lock()
		status.SessionID = sessionID
		s.current.BatchStatus = status
		s.current.IsActive = !status.IsComplete
		s.current.Message = ""
		s.mu.Unlock()
	}

	final, err := s.orchestrator.DownloadBatch(ctx, driveClient, attachments, s.settings.Options(), sink)
	if err != nil {
		return err
	}

	s.mu.Lock()
	final.SessionID = sessionID
	s.current.BatchStatus = *final
	s.current.IsActive = false
	s.current.EndTime = time.Now().UTC().Format(time.RFC3339)
	s.mu.Unlock()

	status := domain.SessionStatusComplete
	if final.FinalSuccessful == 0 && final.FinalFailed > 0 {
		status = domain.SessionStatusFailed
	}
	if err := s.sessionRepo.Finish(dbc, sessionID,
		final.FinalSuccessful, final.FinalFailed, final.DuplicatesSkipped, status); err != nil {
		s.log.Warn("finish download session failed", "error", err)
	}

	if final.FinalSuccessful > 0 && s.indexes != nil {
		if _, err := s.indexes.GenerateAll(ctx); err != nil {
			s.log.Error("index generation failed", "error", err)
		}
	}
	return nil
}

// collectAttachments syncs the selected courses and flattens their content.
// A course that fails to list fails the batch, matching the source's
// all-or-nothing fetch stage.
func (s *downloadService) collectAttachments(ctx context.Context, client classroom.Client, courseIDs []string) ([]domain.Attachment, error) {
	courseList, err := client.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	byID := make(map[string]domain.Course, len(courseList))
	for _, c := range courseList {
		byID[c.ID] = c
	}

	dbc := dbctx.Context{Ctx: ctx}
	now := time.Now().UTC()

	var out []domain.Attachment
	for _, id := range courseIDs {
		course, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown course %s", apperr.ErrInvalidArgument, id)
		}

		atts, err := client.CourseAttachments(ctx, course.ID, course.Name)
		if err != nil {
			return nil, fmt.Errorf("fetch course %s: %w", course.Name, err)
		}
		out = append(out, atts...)

		course.LastSync = &now
		if err := s.courseRepo.Upsert(dbc, &course); err != nil {
			s.log.Warn("upsert course failed", "course_id", course.ID, "error", err)
		}
	}

	s.log.Info("attachments collected", "courses", len(courseIDs), "attachments", len(out))
	return out, nil
}
