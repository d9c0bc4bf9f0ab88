package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/utafrali/sellerdesk/internal/cache"
	"github.com/utafrali/sellerdesk/internal/domain"
	apperrors "github.com/utafrali/sellerdesk/pkg/errors"
	"github.com/utafrali/sellerdesk/pkg/tracing"
)

const tracerName = "github.com/utafrali/sellerdesk/internal/store"

// Status is the fetch state of the catalog.
type Status string

const (
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Fetch sources, used as metric labels.
const (
	SourceBackend = "backend"
	SourceCache   = "cache"
)

var catalogFetchTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sellerdesk_catalog_fetch_total",
		Help: "Catalog loads by source and result",
	},
	[]string{"source", "result"},
)

// Fetcher lists the products of the logged-in seller.
type Fetcher interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// Snapshot is what the fetch store exposes: a status, the current catalog
// (nil until the first success) and the last error message.
type Snapshot struct {
	Status  Status          `json:"status"`
	Catalog *domain.Catalog `json:"-"`
	Error   string          `json:"error,omitempty"`
	Source  string          `json:"source,omitempty"`
}

// Catalog fetches and caches the seller's catalog. A successful fetch always
// installs a new *domain.Catalog, so engine memos keyed on the pointer see
// the change.
type Catalog struct {
	fetcher Fetcher
	cache   cache.CatalogCache
	limiter *rate.Limiter
	logger  *slog.Logger
	now     func() time.Time

	// fetchMu serializes backend round trips.
	fetchMu sync.Mutex

	mu     sync.RWMutex
	status Status
	errMsg string
	source string
	cur    *domain.Catalog
	stale  bool
}

// NewCatalog creates a fetch store. limiter throttles Refetch; nil disables
// throttling.
func NewCatalog(fetcher Fetcher, c cache.CatalogCache, limiter *rate.Limiter, logger *slog.Logger) *Catalog {
	if c == nil {
		c = cache.Noop{}
	}
	return &Catalog{
		fetcher: fetcher,
		cache:   c,
		limiter: limiter,
		logger:  logger,
		now:     time.Now,
		status:  StatusLoading,
	}
}

// Snapshot returns the current status, catalog and error.
func (s *Catalog) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Status: s.status, Catalog: s.cur, Error: s.errMsg, Source: s.source}
}

// Load returns the seller's catalog, fetching it only when nothing usable is
// held. The cache is consulted before the backend.
func (s *Catalog) Load(ctx context.Context, sellerID string) (Snapshot, error) {
	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	if snap, ok := s.usable(sellerID); ok {
		return snap, nil
	}

	s.setLoading()
	c, err := s.cache.Get(ctx, sellerID)
	switch {
	case err == nil:
		catalogFetchTotal.WithLabelValues(SourceCache, "hit").Inc()
		return s.install(c, SourceCache), nil
	case errors.Is(err, apperrors.ErrNotFound):
		catalogFetchTotal.WithLabelValues(SourceCache, "miss").Inc()
	default:
		catalogFetchTotal.WithLabelValues(SourceCache, "error").Inc()
		s.logger.WarnContext(ctx, "catalog cache read failed",
			slog.String("seller_id", sellerID),
			slog.String("error", err.Error()),
		)
	}

	return s.fetch(ctx, sellerID)
}

// Refetch bypasses the cache and asks the backend again. Calls beyond the
// configured rate fail with a TooManyRequests error and change nothing.
func (s *Catalog) Refetch(ctx context.Context, sellerID string) (Snapshot, error) {
	if s.limiter != nil && !s.limiter.Allow() {
		return s.Snapshot(), apperrors.TooManyRequests("catalog refetch rate exceeded, try again shortly")
	}

	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	s.setLoading()
	return s.fetch(ctx, sellerID)
}

// Invalidate drops the cached catalog so the next Load goes to the backend.
func (s *Catalog) Invalidate(ctx context.Context, sellerID string) {
	if err := s.cache.Delete(ctx, sellerID); err != nil {
		s.logger.WarnContext(ctx, "catalog cache delete failed",
			slog.String("seller_id", sellerID),
			slog.String("error", err.Error()),
		)
	}
	s.mu.Lock()
	s.stale = true
	s.mu.Unlock()
}

// Ping reports the health of the cache.
func (s *Catalog) Ping(ctx context.Context) error {
	return s.cache.Ping(ctx)
}

func (s *Catalog) usable(sellerID string) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil || s.stale || s.status != StatusSuccess || s.cur.SellerID != sellerID {
		return Snapshot{}, false
	}
	return Snapshot{Status: s.status, Catalog: s.cur, Source: s.source}, true
}

func (s *Catalog) fetch(ctx context.Context, sellerID string) (snap Snapshot, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "catalog.fetch", attribute.String("seller.id", sellerID))
	defer tracing.End(span, &err)

	start := s.now()
	products, err := s.fetcher.ListProducts(ctx)
	if err != nil {
		catalogFetchTotal.WithLabelValues(SourceBackend, "error").Inc()
		s.logger.ErrorContext(ctx, "catalog fetch failed",
			slog.String("seller_id", sellerID),
			slog.String("error", err.Error()),
		)
		return s.setError(err), err
	}
	catalogFetchTotal.WithLabelValues(SourceBackend, "ok").Inc()

	c := &domain.Catalog{
		ID:        uuid.NewString(),
		SellerID:  sellerID,
		Products:  products,
		FetchedAt: s.now().UTC(),
	}
	span.SetAttributes(attribute.Int("catalog.products", len(products)))
	s.logger.InfoContext(ctx, "catalog fetched",
		slog.String("catalog_id", c.ID),
		slog.Int("products", len(products)),
		slog.Duration("took", s.now().Sub(start)),
	)

	if err := s.cache.Set(ctx, c); err != nil {
		s.logger.WarnContext(ctx, "catalog cache write failed",
			slog.String("catalog_id", c.ID),
			slog.String("error", err.Error()),
		)
	}
	return s.install(c, SourceBackend), nil
}

func (s *Catalog) install(c *domain.Catalog, source string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.Products == nil {
		c.Products = []domain.Product{}
	}
	s.cur = c
	s.status = StatusSuccess
	s.errMsg = ""
	s.source = source
	s.stale = false
	return Snapshot{Status: s.status, Catalog: s.cur, Source: source}
}

func (s *Catalog) setLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusLoading
	s.errMsg = ""
}

// setError keeps the previous catalog around; the status says it is not
// current.
func (s *Catalog) setError(err error) Snapshot {
	msg := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusError
	s.errMsg = msg
	return Snapshot{Status: s.status, Catalog: s.cur, Error: msg, Source: s.source}
}
