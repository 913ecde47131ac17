package services

import (
	"context"

	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/materials"
	"github.com/sudo-sidd/classroom-downloader/internal/domain"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/dbctx"
)

// materialStore adapts MaterialRepo to the download pipeline's storage
// interface, which speaks plain context instead of dbctx.
type materialStore struct {
	repo materials.MaterialRepo
}

func NewMaterialStore(repo materials.MaterialRepo) *materialStore {
	return &materialStore{repo: repo}
}

func (s *materialStore) FindByHash(ctx context.Context, hash string) (*domain.Material, error) {
	return s.repo.FindByHash(dbctx.Context{Ctx: ctx}, hash)
}

func (s *materialStore) Save(ctx context.Context, m *domain.Material) error {
	return s.repo.Upsert(dbctx.Context{Ctx: ctx}, m)
}
