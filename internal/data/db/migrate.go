package db

import (
	"gorm.io/gorm"

	"github.com/sudo-sidd/classroom-downloader/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// Materials index
		&domain.Material{},
		&domain.Course{},
		&domain.DownloadSession{},

		// Classification
		&domain.Subject{},

		// Study surface
		&domain.Note{},
		&domain.Flashcard{},
		&domain.ReadingProgress{},
		&domain.ChatMessage{},
	)
}
