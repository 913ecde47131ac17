package study

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sudo-sidd/classroom-downloader/internal/domain"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/dbctx"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

type NoteRepo interface {
	Create(dbc dbctx.Context, row *domain.Note) error
	Update(dbc dbctx.Context, row *domain.Note) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Note, error)
	GetByMaterialID(dbc dbctx.Context, materialID uuid.UUID) ([]*domain.Note, error)
}

type noteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNoteRepo(db *gorm.DB, baseLog *logger.Logger) NoteRepo {
	return &noteRepo{
		db:  db,
		log: baseLog.With("repo", "NoteRepo"),
	}
}

func (r *noteRepo) Create(dbc dbctx.Context, row *domain.Note) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *noteRepo) Update(dbc dbctx.Context, row *domain.Note) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	row.UpdatedAt = time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Model(&domain.Note{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"title":      row.Title,
			"body":       row.Body,
			"updated_at": row.UpdatedAt,
		}).Error
}

func (r *noteRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Delete(&domain.Note{}, "id = ?", id).Error
}

func (r *noteRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Note, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out domain.Note
	if err := t.WithContext(dbc.Ctx).First(&out, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *noteRepo) GetByMaterialID(dbc dbctx.Context, materialID uuid.UUID) ([]*domain.Note, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Note
	if err := t.WithContext(dbc.Ctx).
		Where("material_id = ?", materialID).
		Order("updated_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
