package cache

import (
	"context"

	"github.com/utafrali/sellerdesk/internal/domain"
)

// CatalogCache keeps the last fetched catalog of each seller. Get returns an
// error wrapping apperrors.ErrNotFound on a miss.
type CatalogCache interface {
	Get(ctx context.Context, sellerID string) (*domain.Catalog, error)
	Set(ctx context.Context, c *domain.Catalog) error
	Delete(ctx context.Context, sellerID string) error
	Ping(ctx context.Context) error
}

var (
	_ CatalogCache = (*Redis)(nil)
	_ CatalogCache = Noop{}
)
