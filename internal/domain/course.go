package domain

import "time"

// Course mirrors the remote classroom course. The primary key is the remote
// course id, so repeated syncs upsert in place.
type Course struct {
	ID             string     `gorm:"primaryKey" json:"id"`
	Name           string     `gorm:"not null" json:"name"`
	Description    string     `gorm:"column:description" json:"description"`
	EnrollmentCode string     `gorm:"column:enrollment_code" json:"enrollment_code"`
	OwnerID        string     `gorm:"column:owner_id" json:"owner_id"`
	CreationTime   string     `gorm:"column:creation_time" json:"creation_time"`
	UpdateTime     string     `gorm:"column:update_time" json:"update_time"`
	LastSync       *time.Time `gorm:"column:last_sync" json:"last_sync,omitempty"`
}

func (Course) TableName() string { return "courses" }
