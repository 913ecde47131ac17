package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Material is one locally materialized attachment: a downloaded Drive file or
// a synthesized descriptor for a video, link or form.
type Material struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Title       string `gorm:"column:title;not null" json:"title"`
	DateCreated string `gorm:"column:date_created" json:"date_created"`
	DateUpdated string `gorm:"column:date_updated" json:"date_updated"`
	MimeType    string `gorm:"column:mime_type;index" json:"mime_type"`
	CourseID    string `gorm:"column:course_id;index" json:"course_id"`
	CourseName  string `gorm:"column:course_name" json:"course_name"`
	LocalPath   string `gorm:"column:local_path" json:"local_path"`

	// RemoteID is the attachment's external identity (Drive file id, video id
	// or URL). One row per remote item.
	RemoteID string `gorm:"column:remote_id;uniqueIndex;not null" json:"remote_id"`

	FileSize     int64     `gorm:"column:file_size" json:"file_size"`
	FileHash     string    `gorm:"column:file_hash;index" json:"file_hash"`
	MaterialType string    `gorm:"column:material_type" json:"material_type"`
	DownloadDate time.Time `gorm:"column:download_date" json:"download_date"`
	IsDuplicate  bool      `gorm:"column:is_duplicate;default:false" json:"is_duplicate"`
	OriginalURL  string    `gorm:"column:original_url" json:"original_url"`
	Description  string    `gorm:"column:description" json:"description"`

	// Subject classification.
	SubjectID                *uuid.UUID `gorm:"column:subject_id;type:uuid;index" json:"subject_id,omitempty"`
	ClassificationType       string     `gorm:"column:classification_type" json:"classification_type,omitempty"`
	ClassificationConfidence float64    `gorm:"column:classification_confidence" json:"classification_confidence,omitempty"`

	// LLM analysis output.
	AISubject      string         `gorm:"column:ai_subject" json:"ai_subject,omitempty"`
	AIDocumentType string         `gorm:"column:ai_document_type" json:"ai_document_type,omitempty"`
	AISummary      string         `gorm:"column:ai_summary" json:"ai_summary,omitempty"`
	AIKeywords     datatypes.JSON `gorm:"column:ai_keywords" json:"ai_keywords,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Material) TableName() string { return "materials" }
