package downloads

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sudo-sidd/classroom-downloader/internal/domain"
	"github.com/sudo-sidd/classroom-downloader/internal/files"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

type fakeFile struct {
	meta    DriveFileMeta
	content []byte
}

type fakeDrive struct {
	mu    sync.Mutex
	files map[string]fakeFile

	delay       time.Duration
	metaErr     map[string]error
	downloadErr map[string]error

	exportCalls map[string]string

	inFlight    int32
	maxInFlight int32
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{
		files:       make(map[string]fakeFile),
		metaErr:     make(map[string]error),
		downloadErr: make(map[string]error),
		exportCalls: make(map[string]string),
	}
}

func (d *fakeDrive) add(id, name, mimeType string, content []byte) {
	sum := sha256.Sum256(content)
	d.files[id] = fakeFile{
		meta: DriveFileMeta{
			ID:          id,
			Name:        name,
			MimeType:    mimeType,
			Size:        int64(len(content)),
			MD5Checksum: hex.EncodeToString(sum[:]),
		},
		content: content,
	}
}

func (d *fakeDrive) track() func() {
	n := atomic.AddInt32(&d.inFlight, 1)
	for {
		max := atomic.LoadInt32(&d.maxInFlight)
		if n <= max || atomic.CompareAndSwapInt32(&d.maxInFlight, max, n) {
			break
		}
	}
	return func() { atomic.AddInt32(&d.inFlight, -1) }
}

func (d *fakeDrive) FileMetadata(_ context.Context, fileID string) (*DriveFileMeta, error) {
	defer d.track()()
	if d.delay > 0 {
		time.Sleep(d.delay)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.metaErr[fileID]; err != nil {
		return nil, err
	}
	f, ok := d.files[fileID]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", fileID)
	}
	meta := f.meta
	return &meta, nil
}

func (d *fakeDrive) Download(_ context.Context, fileID string) ([]byte, error) {
	defer d.track()()
	if d.delay > 0 {
		time.Sleep(d.delay)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.downloadErr[fileID]; err != nil {
		return nil, err
	}
	f, ok := d.files[fileID]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", fileID)
	}
	return f.content, nil
}

func (d *fakeDrive) Export(_ context.Context, fileID, mimeType string) ([]byte, error) {
	d.mu.Lock()
	d.exportCalls[fileID] = mimeType
	d.mu.Unlock()
	return d.Download(context.Background(), fileID)
}

type fakeStore struct {
	mu      sync.Mutex
	byHash  map[string]*domain.Material
	saved   []*domain.Material
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{byHash: make(map[string]*domain.Material)}
}

func (s *fakeStore) FindByHash(_ context.Context, hash string) (*domain.Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.byHash[hash]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (s *fakeStore) Save(_ context.Context, m *domain.Material) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	cp := *m
	s.saved = append(s.saved, &cp)
	if cp.FileHash != "" {
		s.byHash[cp.FileHash] = &cp
	}
	return nil
}

func newTestOrchestrator(t *testing.T, store MaterialStore) (*Orchestrator, string) {
	t.Helper()
	dir := t.TempDir()
	resolver, err := files.NewResolver(dir, logger.NewNop())
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return NewOrchestrator(resolver, store, logger.NewNop()), dir
}

func driveAttachment(fileID, course string) domain.Attachment {
	return domain.Attachment{
		CourseID:     "c1",
		CourseName:   course,
		MaterialType: domain.MaterialTypeAttachment,
		Kind:         domain.KindDriveFile,
		Title:        "attachment " + fileID,
		Drive:        &domain.DriveFileRef{FileID: fileID},
	}
}

func TestDownloadBatchMixed(t *testing.T) {
	t.Parallel()

	drive := newFakeDrive()
	drive.add("f1", "notes.pdf", "application/pdf", []byte("pdf body"))
	store := newFakeStore()
	orc, dir := newTestOrchestrator(t, store)

	atts := []domain.Attachment{
		driveAttachment("f1", "Math 101"),
		{
			CourseName:   "Math 101",
			MaterialType: domain.MaterialTypeYouTubeVideo,
			Kind:         domain.KindYouTubeVideo,
			Title:        "Intro Lecture",
			Video:        &domain.VideoRef{VideoID: "abc123", ThumbnailURL: "http://img/abc123"},
		},
		{
			MaterialType: domain.MaterialTypeWebLink,
			Kind:         domain.KindLink,
			Title:        "Example",
			Link:         &domain.LinkRef{URL: "https://example.com/reading"},
		},
		{Kind: domain.KindUnknown, Title: "mystery"},
	}

	status, err := orc.DownloadBatch(context.Background(), drive, atts, Options{MaxConcurrent: 2}, nil)
	if err != nil {
		t.Fatalf("DownloadBatch: %v", err)
	}

	if status.CompletedFiles != 3 || status.FailedFiles != 1 || status.DuplicatesSkipped != 0 {
		t.Fatalf("counts = %d/%d/%d, want 3/1/0",
			status.CompletedFiles, status.FailedFiles, status.DuplicatesSkipped)
	}
	if status.FinalSuccessful != 3 || status.FinalFailed != 1 || status.TotalProcessed != 4 {
		t.Fatalf("final = %d/%d/%d", status.FinalSuccessful, status.FinalFailed, status.TotalProcessed)
	}
	if !status.IsComplete || status.OverallProgress != 100 {
		t.Fatalf("final status not complete: %+v", status)
	}
	if len(status.Errors) != 1 || !strings.Contains(status.Errors[0], "unsupported attachment type") {
		t.Fatalf("errors = %v", status.Errors)
	}

	pdf := filepath.Join(dir, "Math_101", "PDFs", "notes.pdf")
	if _, err := os.Stat(pdf); err != nil {
		t.Fatalf("pdf not written: %v", err)
	}
	video := filepath.Join(dir, "Math_101", "Documents", "Intro_Lecture.txt")
	if _, err := os.Stat(video); err != nil {
		t.Fatalf("video reference not written: %v", err)
	}
	link := filepath.Join(dir, "Uncategorized", "Documents", "Example.txt")
	body, err := os.ReadFile(link)
	if err != nil {
		t.Fatalf("link reference not written: %v", err)
	}
	if !strings.Contains(string(body), "URL: https://example.com/reading") {
		t.Fatalf("link body = %q", body)
	}

	if len(store.saved) != 3 {
		t.Fatalf("saved records = %d, want 3", len(store.saved))
	}
	types := make(map[string]int)
	for _, m := range store.saved {
		types[m.MaterialType]++
	}
	if types[domain.MaterialTypeAttachment] != 1 ||
		types[domain.MaterialTypeYouTubeVideo] != 1 ||
		types[domain.MaterialTypeWebLink] != 1 {
		t.Fatalf("material types = %v", types)
	}
}

func TestDownloadBatchRecordsDriveViewURL(t *testing.T) {
	t.Parallel()

	drive := newFakeDrive()
	drive.add("f1", "notes.pdf", "application/pdf", []byte("pdf body"))
	store := newFakeStore()
	orc, _ := newTestOrchestrator(t, store)

	status, err := orc.DownloadBatch(context.Background(), drive,
		[]domain.Attachment{driveAttachment("f1", "Math 101")}, Options{}, nil)
	if err != nil {
		t.Fatalf("DownloadBatch: %v", err)
	}
	if status.CompletedFiles != 1 {
		t.Fatalf("completed = %d, errors = %v", status.CompletedFiles, status.Errors)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved records = %d, want 1", len(store.saved))
	}
	if got, want := store.saved[0].OriginalURL, "https://drive.google.com/file/d/f1/view"; got != want {
		t.Fatalf("OriginalURL = %q, want %q", got, want)
	}
}

func TestDownloadBatchExportRemap(t *testing.T) {
	t.Parallel()

	drive := newFakeDrive()
	drive.add("doc1", "Essay", "application/vnd.google-apps.document", []byte("exported pdf"))
	drive.add("sheet1", "Grades", "application/vnd.google-apps.spreadsheet", []byte("exported xlsx"))
	store := newFakeStore()
	orc, dir := newTestOrchestrator(t, store)

	atts := []domain.Attachment{
		driveAttachment("doc1", "History"),
		driveAttachment("sheet1", "History"),
	}
	status, err := orc.DownloadBatch(context.Background(), drive, atts, Options{MaxConcurrent: 1}, nil)
	if err != nil {
		t.Fatalf("DownloadBatch: %v", err)
	}
	if status.CompletedFiles != 2 {
		t.Fatalf("completed = %d, errors = %v", status.CompletedFiles, status.Errors)
	}

	if got := drive.exportCalls["doc1"]; got != "application/pdf" {
		t.Fatalf("doc exported as %q", got)
	}
	if got := drive.exportCalls["sheet1"]; !strings.Contains(got, "spreadsheetml") {
		t.Fatalf("sheet exported as %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "History", "PDFs", "Essay.pdf")); err != nil {
		t.Fatalf("exported doc missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "History", "Spreadsheets", "Grades.xlsx")); err != nil {
		t.Fatalf("exported sheet missing: %v", err)
	}
	for _, m := range store.saved {
		if strings.HasPrefix(m.MimeType, "application/vnd.google-apps") {
			t.Fatalf("record kept native mime type: %+v", m)
		}
	}
}

func TestDownloadBatchDedup(t *testing.T) {
	t.Parallel()

	content := []byte("same bytes either way")
	drive := newFakeDrive()
	drive.add("f1", "first.pdf", "application/pdf", content)
	drive.add("f2", "second.pdf", "application/pdf", content)
	store := newFakeStore()
	orc, dir := newTestOrchestrator(t, store)

	atts := []domain.Attachment{
		driveAttachment("f1", "CS"),
		driveAttachment("f2", "CS"),
	}
	// Serialize so the first record lands before the second lookup.
	status, err := orc.DownloadBatch(context.Background(), drive, atts, Options{MaxConcurrent: 1}, nil)
	if err != nil {
		t.Fatalf("DownloadBatch: %v", err)
	}

	if status.CompletedFiles != 1 || status.DuplicatesSkipped != 1 || status.FailedFiles != 0 {
		t.Fatalf("counts = %d/%d/%d, want 1/1/0",
			status.CompletedFiles, status.DuplicatesSkipped, status.FailedFiles)
	}
	if status.FinalSuccessful != 2 {
		t.Fatalf("final successful = %d, skips count as success", status.FinalSuccessful)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved = %d, want a single record", len(store.saved))
	}
	if _, err := os.Stat(filepath.Join(dir, "CS", "PDFs", "second.pdf")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("duplicate content must not be written again")
	}
}

func TestDownloadBatchDedupPreexisting(t *testing.T) {
	t.Parallel()

	content := []byte("already on disk")
	drive := newFakeDrive()
	drive.add("f1", "again.pdf", "application/pdf", content)
	store := newFakeStore()
	sum := sha256.Sum256(content)
	store.byHash[hex.EncodeToString(sum[:])] = &domain.Material{LocalPath: "/elsewhere/again.pdf"}
	orc, _ := newTestOrchestrator(t, store)

	status, err := orc.DownloadBatch(context.Background(), drive,
		[]domain.Attachment{driveAttachment("f1", "CS")}, Options{}, nil)
	if err != nil {
		t.Fatalf("DownloadBatch: %v", err)
	}
	if status.DuplicatesSkipped != 1 || status.CompletedFiles != 0 || status.FinalSuccessful != 1 {
		t.Fatalf("status = %+v", status)
	}
	if len(store.saved) != 0 {
		t.Fatal("no new record expected for a known hash")
	}
}

func TestDownloadBatchConcurrencyCeiling(t *testing.T) {
	t.Parallel()

	drive := newFakeDrive()
	var atts []domain.Attachment
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("f%d", i)
		drive.add(id, id+".bin", "application/octet-stream", []byte(strings.Repeat(id, 3)))
		atts = append(atts, driveAttachment(id, "Lab"))
	}
	drive.delay = 15 * time.Millisecond
	store := newFakeStore()
	orc, _ := newTestOrchestrator(t, store)

	status, err := orc.DownloadBatch(context.Background(), drive, atts, Options{MaxConcurrent: 3}, nil)
	if err != nil {
		t.Fatalf("DownloadBatch: %v", err)
	}
	if status.CompletedFiles != 12 {
		t.Fatalf("completed = %d, errors = %v", status.CompletedFiles, status.Errors)
	}
	if max := atomic.LoadInt32(&drive.maxInFlight); max > 3 {
		t.Fatalf("observed %d concurrent remote calls, limit is 3", max)
	}
}

func TestDownloadBatchPerItemFailureIsolation(t *testing.T) {
	t.Parallel()

	drive := newFakeDrive()
	drive.add("good", "good.pdf", "application/pdf", []byte("ok"))
	drive.add("bad", "bad.pdf", "application/pdf", []byte("never served"))
	drive.downloadErr["bad"] = errors.New("503 backend error")
	store := newFakeStore()
	orc, _ := newTestOrchestrator(t, store)

	atts := []domain.Attachment{
		driveAttachment("bad", "CS"),
		driveAttachment("good", "CS"),
		driveAttachment("missing", "CS"),
	}
	status, err := orc.DownloadBatch(context.Background(), drive, atts, Options{MaxConcurrent: 1}, nil)
	if err != nil {
		t.Fatalf("DownloadBatch: %v", err)
	}
	if status.CompletedFiles != 1 || status.FailedFiles != 2 {
		t.Fatalf("counts = %d/%d, want 1/2", status.CompletedFiles, status.FailedFiles)
	}
	if !status.IsComplete {
		t.Fatal("failures must still drive the batch to completion")
	}
	if len(store.saved) != 1 || store.saved[0].RemoteID != "good" {
		t.Fatalf("saved = %+v", store.saved)
	}
}

func TestDownloadBatchSaveFailureKeepsFile(t *testing.T) {
	t.Parallel()

	drive := newFakeDrive()
	drive.add("f1", "orphan.pdf", "application/pdf", []byte("body"))
	store := newFakeStore()
	store.saveErr = errors.New("database is locked")
	orc, dir := newTestOrchestrator(t, store)

	status, err := orc.DownloadBatch(context.Background(), drive,
		[]domain.Attachment{driveAttachment("f1", "CS")}, Options{}, nil)
	if err != nil {
		t.Fatalf("DownloadBatch: %v", err)
	}
	if status.FailedFiles != 1 {
		t.Fatalf("status = %+v", status)
	}
	if len(status.Errors) != 1 || !strings.Contains(status.Errors[0], "save material record") {
		t.Fatalf("errors = %v", status.Errors)
	}
	// The written file is kept; the next run dedups against its content.
	if _, err := os.Stat(filepath.Join(dir, "CS", "PDFs", "orphan.pdf")); err != nil {
		t.Fatalf("downloaded file removed after record failure: %v", err)
	}
}

func TestDownloadBatchAllUnknown(t *testing.T) {
	t.Parallel()

	drive := newFakeDrive()
	store := newFakeStore()
	orc, _ := newTestOrchestrator(t, store)

	atts := []domain.Attachment{
		{Kind: domain.KindUnknown, Title: "one"},
		{Kind: domain.AttachmentKind("gallery"), Title: "two"},
		{Kind: domain.KindUnknown},
	}
	status, err := orc.DownloadBatch(context.Background(), drive, atts, Options{}, nil)
	if err != nil {
		t.Fatalf("DownloadBatch: %v", err)
	}
	if status.FailedFiles != 3 || status.FinalFailed != 3 || status.CompletedFiles != 0 {
		t.Fatalf("status = %+v", status)
	}
	if !status.IsComplete {
		t.Fatal("batch must complete even when every item fails")
	}
}

func TestDownloadBatchSinkSeesFinalSnapshot(t *testing.T) {
	t.Parallel()

	drive := newFakeDrive()
	drive.add("f1", "a.pdf", "application/pdf", []byte("x"))
	store := newFakeStore()
	orc, _ := newTestOrchestrator(t, store)

	var mu sync.Mutex
	var last BatchStatus
	sink := func(s BatchStatus) {
		mu.Lock()
		last = s
		mu.Unlock()
	}
	if _, err := orc.DownloadBatch(context.Background(), drive,
		[]domain.Attachment{driveAttachment("f1", "CS")}, Options{}, sink); err != nil {
		t.Fatalf("DownloadBatch: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if last.TotalProcessed != 1 || last.FinalSuccessful != 1 || !last.IsComplete {
		t.Fatalf("final sink snapshot = %+v", last)
	}
}
