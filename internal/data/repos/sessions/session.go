package sessions

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sudo-sidd/classroom-downloader/internal/domain"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/dbctx"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

type SessionRepo interface {
	Create(dbc dbctx.Context, row *domain.DownloadSession) error
	Finish(dbc dbctx.Context, sessionID string, successful, failed, skipped int, status string) error
	GetBySessionID(dbc dbctx.Context, sessionID string) (*domain.DownloadSession, error)
	ListRecent(dbc dbctx.Context, limit int) ([]*domain.DownloadSession, error)
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{
		db:  db,
		log: baseLog.With("repo", "SessionRepo"),
	}
}

func (r *sessionRepo) Create(dbc dbctx.Context, row *domain.DownloadSession) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.StartTime.IsZero() {
		row.StartTime = time.Now().UTC()
	}
	if row.Status == "" {
		row.Status = domain.SessionStatusActive
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *sessionRepo) Finish(dbc dbctx.Context, sessionID string, successful, failed, skipped int, status string) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Model(&domain.DownloadSession{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"end_time":             now,
			"successful_downloads": successful,
			"failed_downloads":     failed,
			"duplicates_skipped":   skipped,
			"status":               status,
		}).Error
}

func (r *sessionRepo) GetBySessionID(dbc dbctx.Context, sessionID string) (*domain.DownloadSession, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out domain.DownloadSession
	if err := t.WithContext(dbc.Ctx).First(&out, "session_id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *sessionRepo) ListRecent(dbc dbctx.Context, limit int) ([]*domain.DownloadSession, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 20
	}
	var out []*domain.DownloadSession
	if err := t.WithContext(dbc.Ctx).
		Order("start_time DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
