package domain

// AttachmentKind discriminates the payload carried by an Attachment.
type AttachmentKind string

const (
	KindDriveFile    AttachmentKind = "drive_file"
	KindYouTubeVideo AttachmentKind = "youtube_video"
	KindLink         AttachmentKind = "link"
	KindForm         AttachmentKind = "form"
	KindUnknown      AttachmentKind = "unknown"
)

// Material type labels recorded on persisted materials.
const (
	MaterialTypeAttachment   = "ATTACHMENT"
	MaterialTypeYouTubeVideo = "YOUTUBE_VIDEO"
	MaterialTypeWebLink      = "WEB_LINK"
)

// DriveFileRef identifies a Drive-hosted file.
type DriveFileRef struct {
	FileID string
}

// VideoRef identifies a referenced video and its preview.
type VideoRef struct {
	VideoID      string
	ThumbnailURL string
}

// LinkRef points at an external URL.
type LinkRef struct {
	URL          string
	ThumbnailURL string
}

// FormRef points at a hosted form.
type FormRef struct {
	FormURL      string
	ThumbnailURL string
}

// Attachment is one remote item to materialize locally. It is produced by the
// classroom extraction stage and never mutated by the download pipeline.
// Exactly the ref matching Kind is set; the rest are nil.
type Attachment struct {
	CourseID   string
	CourseName string

	MaterialID          string
	MaterialTitle       string
	MaterialDescription string
	MaterialType        string
	CreationTime        string
	UpdateTime          string

	Kind  AttachmentKind
	Title string

	Drive *DriveFileRef
	Video *VideoRef
	Link  *LinkRef
	Form  *FormRef
}

// DisplayName is the name used in progress reporting before a concrete
// filename is known.
func (a Attachment) DisplayName() string {
	if a.Title != "" {
		return a.Title
	}
	return string(a.Kind)
}
