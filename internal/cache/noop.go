package cache

import (
	"context"

	"github.com/utafrali/sellerdesk/internal/domain"
	apperrors "github.com/utafrali/sellerdesk/pkg/errors"
)

// Noop is used when caching is disabled. Every Get misses.
type Noop struct{}

func (Noop) Get(_ context.Context, sellerID string) (*domain.Catalog, error) {
	return nil, apperrors.NotFound("catalog", sellerID)
}

func (Noop) Set(context.Context, *domain.Catalog) error { return nil }

func (Noop) Delete(context.Context, string) error { return nil }

func (Noop) Ping(context.Context) error { return nil }
