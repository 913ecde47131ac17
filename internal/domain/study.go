package domain

import (
	"time"

	"github.com/google/uuid"
)

// Note is a free-form study note attached to a material.
type Note struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MaterialID uuid.UUID `gorm:"type:uuid;not null;index" json:"material_id"`
	Title      string    `gorm:"not null" json:"title"`
	Body       string    `gorm:"column:body" json:"body"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Note) TableName() string { return "notes" }

// Flashcard carries a minimal review schedule: the interval doubles on a
// correct answer and resets to one day on a lapse.
type Flashcard struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MaterialID uuid.UUID `gorm:"type:uuid;not null;index" json:"material_id"`
	Front      string    `gorm:"not null" json:"front"`
	Back       string    `gorm:"column:back" json:"back"`

	IntervalDays int       `gorm:"column:interval_days;default:1" json:"interval_days"`
	DueAt        time.Time `gorm:"column:due_at;index" json:"due_at"`
	Reviews      int       `gorm:"column:reviews;default:0" json:"reviews"`
	Lapses       int       `gorm:"column:lapses;default:0" json:"lapses"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Flashcard) TableName() string { return "flashcards" }

// ReadingProgress tracks how far through a material the user has read.
// One row per material.
type ReadingProgress struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MaterialID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"material_id"`
	Percent    float64   `gorm:"column:percent;default:0" json:"percent"`
	LastPage   int       `gorm:"column:last_page;default:0" json:"last_page"`

	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ReadingProgress) TableName() string { return "reading_progress" }

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one turn of the per-material AI chat.
type ChatMessage struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MaterialID uuid.UUID `gorm:"type:uuid;not null;index" json:"material_id"`
	Role       string    `gorm:"not null" json:"role"`
	Content    string    `gorm:"column:content;not null" json:"content"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (ChatMessage) TableName() string { return "chat_messages" }
