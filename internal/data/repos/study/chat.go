package study

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sudo-sidd/classroom-downloader/internal/domain"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/dbctx"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

type ChatMessageRepo interface {
	Append(dbc dbctx.Context, row *domain.ChatMessage) error
	GetByMaterialID(dbc dbctx.Context, materialID uuid.UUID, limit int) ([]*domain.ChatMessage, error)
}

type chatMessageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatMessageRepo(db *gorm.DB, baseLog *logger.Logger) ChatMessageRepo {
	return &chatMessageRepo{
		db:  db,
		log: baseLog.With("repo", "ChatMessageRepo"),
	}
}

func (r *chatMessageRepo) Append(dbc dbctx.Context, row *domain.ChatMessage) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *chatMessageRepo) GetByMaterialID(dbc dbctx.Context, materialID uuid.UUID, limit int) ([]*domain.ChatMessage, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	var out []*domain.ChatMessage
	if err := t.WithContext(dbc.Ctx).
		Where("material_id = ?", materialID).
		Order("created_at").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
