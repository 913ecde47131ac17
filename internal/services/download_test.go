package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sudo-sidd/classroom-downloader/internal/classroom"
	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/courses"
	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/materials"
	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/sessions"
	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/testutil"
	"github.com/sudo-sidd/classroom-downloader/internal/domain"
	"github.com/sudo-sidd/classroom-downloader/internal/downloads"
	"github.com/sudo-sidd/classroom-downloader/internal/files"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/apperr"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/dbctx"
)

type fakeClassroom struct {
	courses     []domain.Course
	attachments map[string][]domain.Attachment
	listErr     error
}

func (f *fakeClassroom) ListCourses(context.Context) ([]domain.Course, error) {
	return f.courses, f.listErr
}

func (f *fakeClassroom) CourseAttachments(_ context.Context, courseID, _ string) ([]domain.Attachment, error) {
	return f.attachments[courseID], nil
}

type stubDrive struct {
	content map[string][]byte
}

func (d *stubDrive) FileMetadata(_ context.Context, fileID string) (*downloads.DriveFileMeta, error) {
	body, ok := d.content[fileID]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", fileID)
	}
	sum := sha256.Sum256(body)
	return &downloads.DriveFileMeta{
		ID:          fileID,
		Name:        fileID + ".pdf",
		MimeType:    "application/pdf",
		Size:        int64(len(body)),
		MD5Checksum: hex.EncodeToString(sum[:]),
	}, nil
}

func (d *stubDrive) Download(_ context.Context, fileID string) ([]byte, error) {
	body, ok := d.content[fileID]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", fileID)
	}
	return body, nil
}

func (d *stubDrive) Export(ctx context.Context, fileID, _ string) ([]byte, error) {
	return d.Download(ctx, fileID)
}

func newTestDownloadService(t *testing.T, remote *fakeClassroom, drive downloads.DriveClient) (DownloadService, sessions.SessionRepo, courses.CourseRepo, materials.MaterialRepo) {
	t.Helper()

	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	materialRepo := materials.NewMaterialRepo(gdb, log)
	courseRepo := courses.NewCourseRepo(gdb, log)
	sessionRepo := sessions.NewSessionRepo(gdb, log)

	resolver, err := files.NewResolver(t.TempDir(), log)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	orc := downloads.NewOrchestrator(resolver, NewMaterialStore(materialRepo), log)

	factory := func(context.Context) (classroom.Client, downloads.DriveClient, error) {
		return remote, drive, nil
	}
	indexes := NewIndexService(log, resolver, courseRepo, materialRepo)
	settings := NewSettings(2, 10*time.Millisecond)
	svc := NewDownloadService(log, orc, factory, courseRepo, sessionRepo, indexes, settings)
	return svc, sessionRepo, courseRepo, materialRepo
}

func waitForIdle(t *testing.T, svc DownloadService) DownloadStatus {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		st := svc.Status()
		if !st.IsActive {
			return st
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("download did not finish in time")
	return DownloadStatus{}
}

func TestDownloadServiceRunsBatch(t *testing.T) {
	t.Parallel()

	remote := &fakeClassroom{
		courses: []domain.Course{{ID: "c1", Name: "Biology"}},
		attachments: map[string][]domain.Attachment{
			"c1": {
				{
					CourseID: "c1", CourseName: "Biology",
					Kind: domain.KindDriveFile, Title: "cells",
					MaterialType: domain.MaterialTypeAttachment,
					Drive:        &domain.DriveFileRef{FileID: "f1"},
				},
				{
					CourseID: "c1", CourseName: "Biology",
					Kind: domain.KindLink, Title: "Syllabus",
					MaterialType: domain.MaterialTypeWebLink,
					Link:         &domain.LinkRef{URL: "https://example.com/syllabus"},
				},
			},
		},
	}
	drive := &stubDrive{content: map[string][]byte{"f1": []byte("cell diagram")}}
	svc, sessionRepo, courseRepo, materialRepo := newTestDownloadService(t, remote, drive)

	sessionID, err := svc.Start(context.Background(), StartRequest{CourseIDs: []string{"c1"}})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sessionID == "" {
		t.Fatal("empty session id")
	}

	st := waitForIdle(t, svc)
	if st.Error != "" {
		t.Fatalf("batch error: %s", st.Error)
	}
	if st.CompletedFiles != 2 || st.FailedFiles != 0 {
		t.Fatalf("status = %+v", st)
	}
	if st.SessionID != sessionID {
		t.Fatalf("status session = %q, want %q", st.SessionID, sessionID)
	}

	dbc := dbctx.Background()
	sess, err := sessionRepo.GetBySessionID(dbc, sessionID)
	if err != nil || sess == nil {
		t.Fatalf("session row: %v", err)
	}
	if sess.Status != domain.SessionStatusComplete || sess.SuccessfulDownloads != 2 {
		t.Fatalf("session = %+v", sess)
	}

	course, err := courseRepo.GetByID(dbc, "c1")
	if err != nil || course == nil {
		t.Fatalf("course row: %v", err)
	}
	if course.LastSync == nil {
		t.Fatal("course last_sync not set")
	}

	mats, err := materialRepo.GetByCourse(dbc, "c1")
	if err != nil || len(mats) != 2 {
		t.Fatalf("materials = %d (%v)", len(mats), err)
	}
}

func TestDownloadServiceRejectsConcurrentStart(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	remote := &fakeClassroom{courses: []domain.Course{{ID: "c1", Name: "Slow"}}}
	drive := &stubDrive{content: map[string][]byte{}}

	svc, _, _, _ := newTestDownloadService(t, remote, drive)

	// First batch blocks inside the remote factory until released.
	blocking := svc.(*downloadService)
	blocking.remotes = func(ctx context.Context) (classroom.Client, downloads.DriveClient, error) {
		<-block
		return remote, drive, nil
	}

	if _, err := svc.Start(context.Background(), StartRequest{CourseIDs: []string{"c1"}}); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if _, err := svc.Start(context.Background(), StartRequest{CourseIDs: []string{"c1"}}); !errors.Is(err, apperr.ErrAlreadyRunning) {
		t.Fatalf("second Start err = %v, want ErrAlreadyRunning", err)
	}

	close(block)
	waitForIdle(t, svc)

	// Idle again: a new batch may start.
	if _, err := svc.Start(context.Background(), StartRequest{CourseIDs: []string{"c1"}}); err != nil {
		t.Fatalf("restart after idle: %v", err)
	}
	waitForIdle(t, svc)
}

func TestDownloadServiceValidatesRequest(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestDownloadService(t, &fakeClassroom{}, &stubDrive{})

	if _, err := svc.Start(context.Background(), StartRequest{}); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}

	if _, err := svc.Start(context.Background(), StartRequest{CourseIDs: []string{"nope"}}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	st := waitForIdle(t, svc)
	if st.Error == "" {
		t.Fatal("unknown course must surface as a batch error")
	}
}
