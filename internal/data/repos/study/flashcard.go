package study

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sudo-sidd/classroom-downloader/internal/domain"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/dbctx"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

type FlashcardRepo interface {
	Create(dbc dbctx.Context, row *domain.Flashcard) error
	Update(dbc dbctx.Context, row *domain.Flashcard) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Flashcard, error)
	GetByMaterialID(dbc dbctx.Context, materialID uuid.UUID) ([]*domain.Flashcard, error)
	GetDue(dbc dbctx.Context, before time.Time, limit int) ([]*domain.Flashcard, error)
}

type flashcardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlashcardRepo(db *gorm.DB, baseLog *logger.Logger) FlashcardRepo {
	return &flashcardRepo{
		db:  db,
		log: baseLog.With("repo", "FlashcardRepo"),
	}
}

func (r *flashcardRepo) Create(dbc dbctx.Context, row *domain.Flashcard) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.IntervalDays <= 0 {
		row.IntervalDays = 1
	}
	if row.DueAt.IsZero() {
		row.DueAt = time.Now().UTC()
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *flashcardRepo) Update(dbc dbctx.Context, row *domain.Flashcard) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	row.UpdatedAt = time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Model(&domain.Flashcard{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"front":         row.Front,
			"back":          row.Back,
			"interval_days": row.IntervalDays,
			"due_at":        row.DueAt,
			"reviews":       row.Reviews,
			"lapses":        row.Lapses,
			"updated_at":    row.UpdatedAt,
		}).Error
}

func (r *flashcardRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Delete(&domain.Flashcard{}, "id = ?", id).Error
}

func (r *flashcardRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Flashcard, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out domain.Flashcard
	if err := t.WithContext(dbc.Ctx).First(&out, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *flashcardRepo) GetByMaterialID(dbc dbctx.Context, materialID uuid.UUID) ([]*domain.Flashcard, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Flashcard
	if err := t.WithContext(dbc.Ctx).
		Where("material_id = ?", materialID).
		Order("created_at").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *flashcardRepo) GetDue(dbc dbctx.Context, before time.Time, limit int) ([]*domain.Flashcard, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	var out []*domain.Flashcard
	if err := t.WithContext(dbc.Ctx).
		Where("due_at <= ?", before).
		Order("due_at").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
