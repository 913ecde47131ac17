package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionStatusActive   = "active"
	SessionStatusComplete = "complete"
	SessionStatusFailed   = "failed"
)

// DownloadSession is the persisted summary of one download batch.
type DownloadSession struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID string    `gorm:"column:session_id;uniqueIndex;not null" json:"session_id"`

	StartTime time.Time  `gorm:"column:start_time" json:"start_time"`
	EndTime   *time.Time `gorm:"column:end_time" json:"end_time,omitempty"`

	TotalFiles          int    `gorm:"column:total_files;default:0" json:"total_files"`
	SuccessfulDownloads int    `gorm:"column:successful_downloads;default:0" json:"successful_downloads"`
	FailedDownloads     int    `gorm:"column:failed_downloads;default:0" json:"failed_downloads"`
	DuplicatesSkipped   int    `gorm:"column:duplicates_skipped;default:0" json:"duplicates_skipped"`
	Status              string `gorm:"column:status;default:'active'" json:"status"`
}

func (DownloadSession) TableName() string { return "download_sessions" }
