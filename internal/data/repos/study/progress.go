package study

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sudo-sidd/classroom-downloader/internal/domain"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/dbctx"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

type ReadingProgressRepo interface {
	Upsert(dbc dbctx.Context, row *domain.ReadingProgress) error
	GetByMaterialID(dbc dbctx.Context, materialID uuid.UUID) (*domain.ReadingProgress, error)
}

type readingProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReadingProgressRepo(db *gorm.DB, baseLog *logger.Logger) ReadingProgressRepo {
	return &readingProgressRepo{
		db:  db,
		log: baseLog.With("repo", "ReadingProgressRepo"),
	}
}

func (r *readingProgressRepo) Upsert(dbc dbctx.Context, row *domain.ReadingProgress) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.MaterialID == uuid.Nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.UpdatedAt = time.Now().UTC()

	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "material_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"percent",
				"last_page",
				"updated_at",
			}),
		}).
		Create(row).Error
}

func (r *readingProgressRepo) GetByMaterialID(dbc dbctx.Context, materialID uuid.UUID) (*domain.ReadingProgress, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out domain.ReadingProgress
	if err := t.WithContext(dbc.Ctx).First(&out, "material_id = ?", materialID).Error; err != nil {
		return nil, err
	}
	return &out, nil
}
