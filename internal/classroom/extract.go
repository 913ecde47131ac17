package classroom

import (
	classroomapi "google.golang.org/api/classroom/v1"

	"github.com/sudo-sidd/classroom-downloader/internal/domain"
)

// itemMeta is the context a material-bearing item (coursework, material
// post, announcement) contributes to each of its attachments.
type itemMeta struct {
	CourseID     string
	CourseName   string
	MaterialID   string
	Title        string
	Description  string
	CreationTime string
	UpdateTime   string
}

// extractAttachments flattens one item's Material list into attachments.
// Unrecognized payloads become KindUnknown so the pipeline can report them
// instead of dropping them silently.
func extractAttachments(materials []*classroomapi.Material, meta itemMeta) []domain.Attachment {
	out := make([]domain.Attachment, 0, len(materials))
	for _, m := range materials {
		if m == nil {
			continue
		}
		out = append(out, attachmentFrom(m, meta))
	}
	return out
}

func attachmentFrom(m *classroomapi.Material, meta itemMeta) domain.Attachment {
	att := domain.Attachment{
		CourseID:            meta.CourseID,
		CourseName:          meta.CourseName,
		MaterialID:          meta.MaterialID,
		MaterialTitle:       meta.Title,
		MaterialDescription: meta.Description,
		CreationTime:        meta.CreationTime,
		UpdateTime:          meta.UpdateTime,
	}

	switch {
	case m.DriveFile != nil && m.DriveFile.DriveFile != nil:
		att.Kind = domain.KindDriveFile
		att.Title = m.DriveFile.DriveFile.Title
		att.MaterialType = domain.MaterialTypeAttachment
		att.Drive = &domain.DriveFileRef{FileID: m.DriveFile.DriveFile.Id}
	case m.YoutubeVideo != nil:
		att.Kind = domain.KindYouTubeVideo
		att.Title = m.YoutubeVideo.Title
		att.MaterialType = domain.MaterialTypeYouTubeVideo
		att.Video = &domain.VideoRef{
			VideoID:      m.YoutubeVideo.Id,
			ThumbnailURL: m.YoutubeVideo.ThumbnailUrl,
		}
	case m.Link != nil:
		att.Kind = domain.KindLink
		att.Title = m.Link.Title
		att.MaterialType = domain.MaterialTypeWebLink
		att.Link = &domain.LinkRef{
			URL:          m.Link.Url,
			ThumbnailURL: m.Link.ThumbnailUrl,
		}
	case m.Form != nil:
		att.Kind = domain.KindForm
		att.Title = m.Form.Title
		att.MaterialType = domain.MaterialTypeWebLink
		att.Form = &domain.FormRef{
			FormURL:      m.Form.FormUrl,
			ThumbnailURL: m.Form.ThumbnailUrl,
		}
	default:
		att.Kind = domain.KindUnknown
		att.Title = meta.Title
	}
	return att
}
