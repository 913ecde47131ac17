package classroom

import (
	"testing"

	classroomapi "google.golang.org/api/classroom/v1"

	"github.com/sudo-sidd/classroom-downloader/internal/domain"
)

func TestExtractAttachments(t *testing.T) {
	t.Parallel()

	meta := itemMeta{
		CourseID:     "c1",
		CourseName:   "Physics",
		MaterialID:   "m1",
		Title:        "Week 3",
		Description:  "waves and optics",
		CreationTime: "2025-01-10T08:00:00Z",
	}
	materials := []*classroomapi.Material{
		{DriveFile: &classroomapi.SharedDriveFile{
			DriveFile: &classroomapi.DriveFile{Id: "d1", Title: "waves.pdf"},
		}},
		{YoutubeVideo: &classroomapi.YouTubeVideo{
			Id: "y1", Title: "Optics lecture", ThumbnailUrl: "http://img/y1",
		}},
		{Link: &classroomapi.Link{Url: "https://example.com", Title: "Reading"}},
		{Form: &classroomapi.Form{FormUrl: "https://forms.example.com/q", Title: "Quiz"}},
		{},
		nil,
	}

	atts := extractAttachments(materials, meta)
	if len(atts) != 5 {
		t.Fatalf("got %d attachments, want 5 (nil entries dropped, empty kept as unknown)", len(atts))
	}

	drive := atts[0]
	if drive.Kind != domain.KindDriveFile || drive.Drive == nil || drive.Drive.FileID != "d1" {
		t.Fatalf("drive attachment = %+v", drive)
	}
	if drive.Title != "waves.pdf" || drive.MaterialType != domain.MaterialTypeAttachment {
		t.Fatalf("drive attachment fields = %+v", drive)
	}
	if drive.CourseName != "Physics" || drive.MaterialTitle != "Week 3" || drive.MaterialDescription != "waves and optics" {
		t.Fatalf("item context not carried: %+v", drive)
	}

	video := atts[1]
	if video.Kind != domain.KindYouTubeVideo || video.Video == nil || video.Video.VideoID != "y1" {
		t.Fatalf("video attachment = %+v", video)
	}
	if video.MaterialType != domain.MaterialTypeYouTubeVideo {
		t.Fatalf("video material type = %q", video.MaterialType)
	}

	link := atts[2]
	if link.Kind != domain.KindLink || link.Link == nil || link.Link.URL != "https://example.com" {
		t.Fatalf("link attachment = %+v", link)
	}
	if link.MaterialType != domain.MaterialTypeWebLink {
		t.Fatalf("link material type = %q", link.MaterialType)
	}

	form := atts[3]
	if form.Kind != domain.KindForm || form.Form == nil || form.Form.FormURL != "https://forms.example.com/q" {
		t.Fatalf("form attachment = %+v", form)
	}

	unknown := atts[4]
	if unknown.Kind != domain.KindUnknown {
		t.Fatalf("empty material kind = %q, want unknown", unknown.Kind)
	}
	if unknown.Title != "Week 3" {
		t.Fatalf("unknown falls back to the item title, got %q", unknown.Title)
	}
	if unknown.Drive != nil || unknown.Video != nil || unknown.Link != nil || unknown.Form != nil {
		t.Fatalf("unknown attachment carries a payload: %+v", unknown)
	}
}

func TestAttachmentDisplayName(t *testing.T) {
	t.Parallel()

	a := domain.Attachment{Kind: domain.KindLink, Title: "Reading"}
	if a.DisplayName() != "Reading" {
		t.Fatalf("display name = %q", a.DisplayName())
	}
	b := domain.Attachment{Kind: domain.KindUnknown}
	if b.DisplayName() != "unknown" {
		t.Fatalf("display name = %q", b.DisplayName())
	}
}
