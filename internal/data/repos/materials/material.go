package materials

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sudo-sidd/classroom-downloader/internal/domain"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/dbctx"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

// SearchFilter narrows material listings.
type SearchFilter struct {
	Query     string
	CourseID  string
	MimeType  string
	SubjectID *uuid.UUID
	Limit     int
	Offset    int
}

// Statistics summarizes the materials index.
type Statistics struct {
	TotalMaterials int64            `json:"total_materials"`
	TotalSize      int64            `json:"total_size"`
	ByCourse       map[string]int64 `json:"by_course"`
	ByMimeType     map[string]int64 `json:"by_mime_type"`
	RecentCount    int64            `json:"recent_count"`
}

type MaterialRepo interface {
	Upsert(dbc dbctx.Context, row *domain.Material) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Material, error)
	FindByHash(dbc dbctx.Context, fileHash string) (*domain.Material, error)
	FindByRemoteID(dbc dbctx.Context, remoteID string) (*domain.Material, error)
	Search(dbc dbctx.Context, f SearchFilter) ([]*domain.Material, error)
	GetByCourse(dbc dbctx.Context, courseID string) ([]*domain.Material, error)
	GetUncategorized(dbc dbctx.Context) ([]*domain.Material, error)
	GetBySubject(dbc dbctx.Context, subjectID uuid.UUID) ([]*domain.Material, error)
	UpdateCourse(dbc dbctx.Context, id uuid.UUID, courseID, courseName, localPath string) error
	SetClassification(dbc dbctx.Context, id uuid.UUID, subjectID uuid.UUID, kind string, confidence float64) error
	ClearClassification(dbc dbctx.Context, id uuid.UUID) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	GetStatistics(dbc dbctx.Context) (*Statistics, error)
}

type materialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaterialRepo(db *gorm.DB, baseLog *logger.Logger) MaterialRepo {
	return &materialRepo{
		db:  db,
		log: baseLog.With("repo", "MaterialRepo"),
	}
}

func (r *materialRepo) Upsert(dbc dbctx.Context, row *domain.Material) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.RemoteID == "" {
		return errors.New("material requires a remote id")
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	now := time.Now().UTC()
	if row.DownloadDate.IsZero() {
		row.DownloadDate = now
	}
	row.UpdatedAt = now

	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "remote_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title",
				"date_created",
				"date_updated",
				"mime_type",
				"course_id",
				"course_name",
				"local_path",
				"file_size",
				"file_hash",
				"material_type",
				"download_date",
				"is_duplicate",
				"original_url",
				"description",
				"updated_at",
			}),
		}).
		Create(row).Error
}

func (r *materialRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Material, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out domain.Material
	if err := t.WithContext(dbc.Ctx).First(&out, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *materialRepo) FindByHash(dbc dbctx.Context, fileHash string) (*domain.Material, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if fileHash == "" {
		return nil, nil
	}
	var out domain.Material
	err := t.WithContext(dbc.Ctx).
		Where("file_hash = ?", fileHash).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *materialRepo) FindByRemoteID(dbc dbctx.Context, remoteID string) (*domain.Material, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out domain.Material
	err := t.WithContext(dbc.Ctx).
		Where("remote_id = ?", remoteID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *materialRepo) Search(dbc dbctx.Context, f SearchFilter) ([]*domain.Material, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Model(&domain.Material{})

	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + s + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	if f.CourseID != "" {
		q = q.Where("course_id = ?", f.CourseID)
	}
	if f.MimeType != "" {
		q = q.Where("mime_type = ?", f.MimeType)
	}
	if f.SubjectID != nil {
		q = q.Where("subject_id = ?", *f.SubjectID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var out []*domain.Material
	if err := q.Order("date_created DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *materialRepo) GetByCourse(dbc dbctx.Context, courseID string) ([]*domain.Material, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Material
	if err := t.WithContext(dbc.Ctx).
		Where("course_id = ?", courseID).
		Order("date_created DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *materialRepo) GetUncategorized(dbc dbctx.Context) ([]*domain.Material, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Material
	if err := t.WithContext(dbc.Ctx).
		Where("course_id = '' OR course_id IS NULL OR course_name = 'Uncategorized'").
		Order("date_created DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *materialRepo) GetBySubject(dbc dbctx.Context, subjectID uuid.UUID) ([]*domain.Material, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Material
	if err := t.WithContext(dbc.Ctx).
		Where("subject_id = ?", subjectID).
		Order("date_created DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *materialRepo) UpdateCourse(dbc dbctx.Context, id uuid.UUID, courseID, courseName, localPath string) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	updates := map[string]interface{}{
		"course_id":   courseID,
		"course_name": courseName,
		"updated_at":  time.Now().UTC(),
	}
	if localPath != "" {
		updates["local_path"] = localPath
	}
	return t.WithContext(dbc.Ctx).
		Model(&domain.Material{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *materialRepo) SetClassification(dbc dbctx.Context, id uuid.UUID, subjectID uuid.UUID, kind string, confidence float64) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&domain.Material{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"subject_id":                subjectID,
			"classification_type":       kind,
			"classification_confidence": confidence,
			"updated_at":                time.Now().UTC(),
		}).Error
}

func (r *materialRepo) ClearClassification(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&domain.Material{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"subject_id":                nil,
			"classification_type":       "",
			"classification_confidence": 0.0,
			"updated_at":                time.Now().UTC(),
		}).Error
}

func (r *materialRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Model(&domain.Material{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *materialRepo) GetStatistics(dbc dbctx.Context) (*Statistics, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	stats := &Statistics{
		ByCourse:   map[string]int64{},
		ByMimeType: map[string]int64{},
	}

	if err := t.WithContext(dbc.Ctx).
		Model(&domain.Material{}).
		Count(&stats.TotalMaterials).Error; err != nil {
		return nil, err
	}

	var totalSize *int64
	if err := t.WithContext(dbc.Ctx).
		Model(&domain.Material{}).
		Select("SUM(file_size)").
		Scan(&totalSize).Error; err != nil {
		return nil, err
	}
	if totalSize != nil {
		stats.TotalSize = *totalSize
	}

	type bucket struct {
		Key   string
		Count int64
	}
	var byCourse []bucket
	if err := t.WithContext(dbc.Ctx).
		Model(&domain.Material{}).
		Select("course_name AS key, COUNT(*) AS count").
		Group("course_name").
		Scan(&byCourse).Error; err != nil {
		return nil, err
	}
	for _, b := range byCourse {
		stats.ByCourse[b.Key] = b.Count
	}

	var byMime []bucket
	if err := t.WithContext(dbc.Ctx).
		Model(&domain.Material{}).
		Select("mime_type AS key, COUNT(*) AS count").
		Group("mime_type").
		Scan(&byMime).Error; err != nil {
		return nil, err
	}
	for _, b := range byMime {
		stats.ByMimeType[b.Key] = b.Count
	}

	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	if err := t.WithContext(dbc.Ctx).
		Model(&domain.Material{}).
		Where("download_date >= ?", weekAgo).
		Count(&stats.RecentCount).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
