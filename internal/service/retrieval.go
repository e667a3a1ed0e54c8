package service

import (
	"campusshare/api/internal/apperr"
	"campusshare/api/internal/model"
	"campusshare/api/internal/storage"
	"context"
	"errors"

	"go.uber.org/zap"
)

type materialLister interface {
	ListPublic(ctx context.Context, f Filters) ([]model.MaterialSummary, error)
	ListAuthenticated(ctx context.Context, f Filters) ([]model.MaterialFull, error)
	GetByID(ctx context.Context, id uint) (*model.Material, error)
}

type Download struct {
	Material *model.Material
	Object   *storage.Object
}

// Gateway is the read path. Which view a caller gets is decided by the route
// it came through, downloads are the same for both tiers.
type Gateway struct {
	Catalog materialLister
	Blobs   storage.BlobStore
	Log     *zap.Logger
}

func NewGateway(c materialLister, b storage.BlobStore) *Gateway {
	return &Gateway{
		Catalog: c,
		Blobs:   b,
		Log:     zap.L(),
	}
}

func (g *Gateway) ListPublic(ctx context.Context, f Filters) ([]model.MaterialSummary, error) {
	return g.Catalog.ListPublic(ctx, f)
}

func (g *Gateway) ListFull(ctx context.Context, f Filters) ([]model.MaterialFull, error) {
	return g.Catalog.ListAuthenticated(ctx, f)
}

// Open looks up a material and opens its blob. A missing row and a missing
// blob look the same to the caller but are logged differently.
func (g *Gateway) Open(ctx context.Context, id uint) (*Download, error) {
	m, err := g.Catalog.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			g.Log.Info("Material not found in catalog", zap.Uint("id", id))
			return nil, apperr.ErrNotFound
		}

		return nil, err
	}

	obj, err := g.Blobs.Open(ctx, m.Filepath)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			g.Log.Warn("Material blob missing from storage",
				zap.Uint("id", id),
				zap.String("path", m.Filepath),
			)
			return nil, apperr.ErrNotFound
		}

		return nil, err
	}

	return &Download{
		Material: m,
		Object:   obj,
	}, nil
}
