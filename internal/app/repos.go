package app

import (
	"gorm.io/gorm"

	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/courses"
	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/materials"
	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/sessions"
	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/study"
	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/subjects"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

type Repos struct {
	Materials materials.MaterialRepo
	Courses   courses.CourseRepo
	Sessions  sessions.SessionRepo
	Subjects  subjects.SubjectRepo

	Notes      study.NoteRepo
	Flashcards study.FlashcardRepo
	Progress   study.ReadingProgressRepo
	Chat       study.ChatMessageRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Materials:  materials.NewMaterialRepo(db, log),
		Courses:    courses.NewCourseRepo(db, log),
		Sessions:   sessions.NewSessionRepo(db, log),
		Subjects:   subjects.NewSubjectRepo(db, log),
		Notes:      study.NewNoteRepo(db, log),
		Flashcards: study.NewFlashcardRepo(db, log),
		Progress:   study.NewReadingProgressRepo(db, log),
		Chat:       study.NewChatMessageRepo(db, log),
	}
}
