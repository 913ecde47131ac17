package courses

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sudo-sidd/classroom-downloader/internal/domain"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/dbctx"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

type CourseRepo interface {
	Upsert(dbc dbctx.Context, row *domain.Course) error
	GetByID(dbc dbctx.Context, id string) (*domain.Course, error)
	List(dbc dbctx.Context) ([]*domain.Course, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{
		db:  db,
		log: baseLog.With("repo", "CourseRepo"),
	}
}

func (r *courseRepo) Upsert(dbc dbctx.Context, row *domain.Course) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.ID == "" {
		return nil
	}
	now := time.Now().UTC()
	row.LastSync = &now

	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name",
				"description",
				"enrollment_code",
				"owner_id",
				"creation_time",
				"update_time",
				"last_sync",
			}),
		}).
		Create(row).Error
}

func (r *courseRepo) GetByID(dbc dbctx.Context, id string) (*domain.Course, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out domain.Course
	if err := t.WithContext(dbc.Ctx).First(&out, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *courseRepo) List(dbc dbctx.Context) ([]*domain.Course, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Course
	if err := t.WithContext(dbc.Ctx).Order("name").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
