package subjects

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sudo-sidd/classroom-downloader/internal/domain"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/dbctx"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

type SubjectRepo interface {
	Create(dbc dbctx.Context, row *domain.Subject) error
	Update(dbc dbctx.Context, row *domain.Subject) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Subject, error)
	GetByName(dbc dbctx.Context, name string) (*domain.Subject, error)
	List(dbc dbctx.Context) ([]*domain.Subject, error)
}

type subjectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubjectRepo(db *gorm.DB, baseLog *logger.Logger) SubjectRepo {
	return &subjectRepo{
		db:  db,
		log: baseLog.With("repo", "SubjectRepo"),
	}
}

func (r *subjectRepo) Create(dbc dbctx.Context, row *domain.Subject) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *subjectRepo) Update(dbc dbctx.Context, row *domain.Subject) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	row.UpdatedAt = time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Model(&domain.Subject{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"name":       row.Name,
			"keywords":   row.Keywords,
			"priority":   row.Priority,
			"color":      row.Color,
			"updated_at": row.UpdatedAt,
		}).Error
}

func (r *subjectRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	// Unassign materials pointing at the subject before removing it.
	if err := t.WithContext(dbc.Ctx).
		Model(&domain.Material{}).
		Where("subject_id = ?", id).
		Updates(map[string]interface{}{
			"subject_id":                nil,
			"classification_type":       "",
			"classification_confidence": 0.0,
		}).Error; err != nil {
		return err
	}
	return t.WithContext(dbc.Ctx).Delete(&domain.Subject{}, "id = ?", id).Error
}

func (r *subjectRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Subject, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out domain.Subject
	if err := t.WithContext(dbc.Ctx).First(&out, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *subjectRepo) GetByName(dbc dbctx.Context, name string) (*domain.Subject, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out domain.Subject
	if err := t.WithContext(dbc.Ctx).First(&out, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *subjectRepo) List(dbc dbctx.Context) ([]*domain.Subject, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Subject
	if err := t.WithContext(dbc.Ctx).
		Order("priority DESC, name").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
