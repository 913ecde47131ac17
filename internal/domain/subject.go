package domain

import (
	"time"

	"github.com/google/uuid"
)

// Subject is a user-defined classification bucket. Keywords is a
// comma-separated list matched against material titles and descriptions.
type Subject struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"uniqueIndex;not null" json:"name"`
	Keywords string    `gorm:"column:keywords" json:"keywords"`
	Priority int       `gorm:"column:priority;default:0" json:"priority"`
	Color    string    `gorm:"column:color" json:"color"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Subject) TableName() string { return "subjects" }
