package google

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/sudo-sidd/classroom-downloader/internal/downloads"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

const driveFields = "id, name, mimeType, size, md5Checksum"

type driveService struct {
	log *logger.Logger
	svc *drive.Service
}

// NewDrive builds the downloads.DriveClient over the Drive v3 API using an
// already-authorized HTTP client.
func NewDrive(ctx context.Context, client *http.Client, log *logger.Logger) (downloads.DriveClient, error) {
	svc, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &driveService{log: log.With("component", "drive"), svc: svc}, nil
}

func (d *driveService) FileMetadata(ctx context.Context, fileID string) (*downloads.DriveFileMeta, error) {
	f, err := d.svc.Files.Get(fileID).
		Fields(driveFields).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return &downloads.DriveFileMeta{
		ID:          f.Id,
		Name:        f.Name,
		MimeType:    f.MimeType,
		Size:        f.Size,
		MD5Checksum: f.Md5Checksum,
	}, nil
}

func (d *driveService) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := d.svc.Files.Get(fileID).
		SupportsAllDrives(true).
		Context(ctx).
		Download()
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (d *driveService) Export(ctx context.Context, fileID, mimeType string) ([]byte, error) {
	resp, err := d.svc.Files.Export(fileID, mimeType).
		Context(ctx).
		Download()
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
