package downloads

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sudo-sidd/classroom-downloader/internal/domain"
	"github.com/sudo-sidd/classroom-downloader/internal/files"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

// DriveFileMeta is the subset of remote file metadata the fetcher needs.
type DriveFileMeta struct {
	ID          string
	Name        string
	MimeType    string
	Size        int64
	MD5Checksum string
}

// DriveClient fetches metadata and content for remote drive files.
type DriveClient interface {
	FileMetadata(ctx context.Context, fileID string) (*DriveFileMeta, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
	Export(ctx context.Context, fileID, mimeType string) ([]byte, error)
}

// MaterialStore persists material records and answers duplicate lookups.
type MaterialStore interface {
	FindByHash(ctx context.Context, hash string) (*domain.Material, error)
	Save(ctx context.Context, m *domain.Material) error
}

// exportFormats maps Google-native editor types to the MIME type they are
// exported as. Docs, slides and drawings become PDFs, sheets become xlsx.
var exportFormats = map[string]string{
	"application/vnd.google-apps.document":     "application/pdf",
	"application/vnd.google-apps.spreadsheet":  "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.google-apps.presentation": "application/pdf",
	"application/vnd.google-apps.drawing":      "application/pdf",
}

// Fetcher processes a single attachment end to end: remote calls, pathing,
// disk write and record persistence. One fetcher is shared by all workers
// of a batch; it holds no per-item state.
type Fetcher struct {
	resolver *files.Resolver
	store    MaterialStore
	drive    DriveClient
	pacer    *RequestPacer
	tracker  *Tracker
	log      *logger.Logger
}

func NewFetcher(resolver *files.Resolver, store MaterialStore, drive DriveClient, pacer *RequestPacer, tracker *Tracker, log *logger.Logger) *Fetcher {
	return &Fetcher{
		resolver: resolver,
		store:    store,
		drive:    drive,
		pacer:    pacer,
		tracker:  tracker,
		log:      log.With("component", "fetcher"),
	}
}

// Fetch processes one attachment and reports the outcome to the tracker.
// It never panics out and never returns an error: every exit path records
// exactly one terminal event (complete, fail or skip) for the item.
func (f *Fetcher) Fetch(ctx context.Context, att domain.Attachment) (ok bool) {
	name := att.DisplayName()
	defer func() {
		if r := recover(); r != nil {
			f.log.Error("fetch panicked", "attachment", name, "panic", r)
			f.tracker.CompleteItem(name, false, fmt.Sprintf("internal error: %v", r))
			ok = false
		}
	}()

	switch att.Kind {
	case domain.KindDriveFile:
		return f.fetchDriveFile(ctx, att)
	case domain.KindYouTubeVideo:
		return f.fetchYouTubeVideo(ctx, att)
	case domain.KindLink:
		return f.fetchLink(ctx, att)
	case domain.KindForm:
		return f.fetchForm(ctx, att)
	default:
		f.tracker.CompleteItem(name, false, fmt.Sprintf("unsupported attachment type: %s", att.Kind))
		return false
	}
}

func (f *Fetcher) fetchDriveFile(ctx context.Context, att domain.Attachment) bool {
	if att.Drive == nil || att.Drive.FileID == "" {
		f.tracker.CompleteItem(att.DisplayName(), false, "missing drive file id")
		return false
	}
	fileID := att.Drive.FileID

	if err := f.pacer.Wait(ctx); err != nil {
		f.tracker.CompleteItem(att.DisplayName(), false, "cancelled")
		return false
	}
	meta, err := f.drive.FileMetadata(ctx, fileID)
	if err != nil {
		f.tracker.CompleteItem(att.DisplayName(), false, fmt.Sprintf("fetch metadata: %v", err))
		return false
	}

	filename := meta.Name
	if filename == "" {
		filename = att.DisplayName()
	}
	mimeType := meta.MimeType
	exportMime, isExport := exportFormats[meta.MimeType]
	if isExport {
		mimeType = exportMime
		filename = replaceExtension(filename, mimeType)
	}

	f.tracker.BeginItem(filename)

	// Dedup on the remote checksum before transferring any content.
	if meta.MD5Checksum != "" {
		existing, err := f.store.FindByHash(ctx, meta.MD5Checksum)
		if err != nil {
			f.log.Warn("duplicate lookup failed", "file_id", fileID, "error", err)
		} else if existing != nil {
			f.log.Debug("skipping duplicate", "filename", filename, "existing_path", existing.LocalPath)
			f.tracker.SkipDuplicate(filename)
			return true
		}
	}

	path, err := f.resolver.Resolve(att.CourseName, filename, mimeType, true)
	if err != nil {
		f.tracker.CompleteItem(filename, false, fmt.Sprintf("resolve path: %v", err))
		return false
	}
	f.tracker.AdvanceItem(filename, 50)

	if err := f.pacer.Wait(ctx); err != nil {
		f.tracker.CompleteItem(filename, false, "cancelled")
		return false
	}
	var content []byte
	if isExport {
		content, err = f.drive.Export(ctx, fileID, exportMime)
	} else {
		content, err = f.drive.Download(ctx, fileID)
	}
	if err != nil {
		f.tracker.CompleteItem(filename, false, fmt.Sprintf("download content: %v", err))
		return false
	}

	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	if err := os.WriteFile(path, content, 0o644); err != nil {
		f.tracker.CompleteItem(filename, false, fmt.Sprintf("write file: %v", err))
		return false
	}
	f.tracker.AdvanceItem(filename, 100)

	materialType := att.MaterialType
	if materialType == "" {
		materialType = domain.MaterialTypeAttachment
	}
	m := &domain.Material{
		Title:        filename,
		DateCreated:  att.CreationTime,
		DateUpdated:  att.UpdateTime,
		MimeType:     mimeType,
		CourseID:     att.CourseID,
		CourseName:   att.CourseName,
		LocalPath:    path,
		RemoteID:     fileID,
		FileSize:     int64(len(content)),
		FileHash:     hash,
		MaterialType: materialType,
		DownloadDate: time.Now().UTC(),
		OriginalURL:  fmt.Sprintf("https://drive.google.com/file/d/%s/view", fileID),
		Description:  att.MaterialDescription,
	}
	if err := f.store.Save(ctx, m); err != nil {
		// The file stays on disk; a later run dedups against its hash.
		f.tracker.CompleteItem(filename, false, fmt.Sprintf("save material record: %v", err))
		return false
	}

	f.tracker.CompleteItem(filename, true, "")
	return true
}

func (f *Fetcher) fetchYouTubeVideo(ctx context.Context, att domain.Attachment) bool {
	if att.Video == nil || att.Video.VideoID == "" {
		f.tracker.CompleteItem(att.DisplayName(), false, "missing video id")
		return false
	}
	title := att.Title
	if title == "" {
		title = "YouTube Video"
	}
	url := fmt.Sprintf("https://www.youtube.com/watch?v=%s", att.Video.VideoID)
	content := fmt.Sprintf("YouTube Video: %s\nVideo ID: %s\nURL: %s\nThumbnail: %s\nMaterial: %s\nDescription: %s\nDate: %s\n",
		title, att.Video.VideoID, url, att.Video.ThumbnailURL,
		att.MaterialTitle, att.MaterialDescription, att.CreationTime)

	return f.writeReference(ctx, att, title, url, att.Video.VideoID, content, domain.MaterialTypeYouTubeVideo)
}

func (f *Fetcher) fetchLink(ctx context.Context, att domain.Attachment) bool {
	if att.Link == nil || att.Link.URL == "" {
		f.tracker.CompleteItem(att.DisplayName(), false, "missing link url")
		return false
	}
	title := att.Title
	if title == "" {
		title = "Web Link"
	}
	content := fmt.Sprintf("Web Link: %s\nURL: %s\nMaterial: %s\nDescription: %s\nDate: %s\n",
		title, att.Link.URL, att.MaterialTitle, att.MaterialDescription, att.CreationTime)

	return f.writeReference(ctx, att, title, att.Link.URL, att.Link.URL, content, domain.MaterialTypeWebLink)
}

func (f *Fetcher) fetchForm(ctx context.Context, att domain.Attachment) bool {
	if att.Form == nil || att.Form.FormURL == "" {
		f.tracker.CompleteItem(att.DisplayName(), false, "missing form url")
		return false
	}
	title := att.Title
	if title == "" {
		title = "Google Form"
	}
	content := fmt.Sprintf("Google Form: %s\nURL: %s\nMaterial: %s\nDescription: %s\nDate: %s\n",
		title, att.Form.FormURL, att.MaterialTitle, att.MaterialDescription, att.CreationTime)

	return f.writeReference(ctx, att, title, att.Form.FormURL, att.Form.FormURL, content, domain.MaterialTypeWebLink)
}

// writeReference materializes a non-file attachment as a small text file
// and records it. remoteID keys upserts; url is stored for linking back.
func (f *Fetcher) writeReference(ctx context.Context, att domain.Attachment, title, url, remoteID, content, materialType string) bool {
	filename := fmt.Sprintf("%s.txt", files.SanitizeFilename(title, files.DefaultMaxFilenameLen))
	f.tracker.BeginItem(filename)

	path, err := f.resolver.Resolve(att.CourseName, filename, "text/plain", true)
	if err != nil {
		f.tracker.CompleteItem(filename, false, fmt.Sprintf("resolve path: %v", err))
		return false
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		f.tracker.CompleteItem(filename, false, fmt.Sprintf("write file: %v", err))
		return false
	}

	sum := sha256.Sum256([]byte(content))
	m := &domain.Material{
		Title:        title,
		DateCreated:  att.CreationTime,
		DateUpdated:  att.UpdateTime,
		MimeType:     "text/plain",
		CourseID:     att.CourseID,
		CourseName:   att.CourseName,
		LocalPath:    path,
		RemoteID:     remoteID,
		FileSize:     int64(len(content)),
		FileHash:     hex.EncodeToString(sum[:]),
		MaterialType: materialType,
		DownloadDate: time.Now().UTC(),
		OriginalURL:  url,
		Description:  att.MaterialDescription,
	}
	if err := f.store.Save(ctx, m); err != nil {
		f.tracker.CompleteItem(filename, false, fmt.Sprintf("save material record: %v", err))
		return false
	}

	f.tracker.CompleteItem(filename, true, "")
	return true
}

// replaceExtension swaps the filename's extension for the one matching the
// export MIME type, so an exported "Notes.gdoc" lands as "Notes.pdf".
func replaceExtension(filename, mimeType string) string {
	ext := files.ExtensionForMime(mimeType)
	if ext == "" {
		return filename
	}
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	return base + ext
}
