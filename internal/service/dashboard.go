package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"

	"github.com/utafrali/sellerdesk/internal/catalog"
	"github.com/utafrali/sellerdesk/internal/client"
	"github.com/utafrali/sellerdesk/internal/domain"
	"github.com/utafrali/sellerdesk/internal/session"
	"github.com/utafrali/sellerdesk/internal/store"
	apperrors "github.com/utafrali/sellerdesk/pkg/errors"
	"github.com/utafrali/sellerdesk/pkg/tracing"
)

const tracerName = "github.com/utafrali/sellerdesk/internal/service"

var (
	viewComputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sellerdesk_catalog_view_compute_seconds",
		Help:    "Time spent filtering, sorting and classifying a catalog",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
	})

	catalogProducts = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sellerdesk_catalog_products",
		Help: "Products in the last computed view, by kind",
	}, []string{"kind"})
)

// Sessions is the session flow the dashboard relies on.
type Sessions interface {
	Verify(ctx context.Context) (session.State, error)
	SellerID(ctx context.Context) (string, error)
	State() session.State
	Invalidate()
}

// SellerAPI is the part of the backend the dashboard writes to.
type SellerAPI interface {
	AddProduct(ctx context.Context, in client.AddProductInput) (string, error)
	Register(ctx context.Context, p client.Profile) (string, error)
}

// Screen is everything the catalog screen renders at one moment.
type Screen struct {
	Phase     store.Phase   `json:"phase"`
	Error     string        `json:"error,omitempty"`
	CatalogID string        `json:"catalog_id,omitempty"`
	FetchedAt time.Time     `json:"fetched_at,omitzero"`
	Source    string        `json:"source,omitempty"`
	View      *catalog.View `json:"view,omitempty"`
}

// Dashboard coordinates the seller session, the catalog and criteria stores
// and the query engine.
type Dashboard struct {
	sessions Sessions
	catalogs *store.Catalog
	criteria *store.Criteria
	engine   *catalog.Engine
	api      SellerAPI
	logger   *slog.Logger
}

// NewDashboard creates a dashboard service.
func NewDashboard(
	sessions Sessions,
	catalogs *store.Catalog,
	criteria *store.Criteria,
	engine *catalog.Engine,
	api SellerAPI,
	logger *slog.Logger,
) *Dashboard {
	return &Dashboard{
		sessions: sessions,
		catalogs: catalogs,
		criteria: criteria,
		engine:   engine,
		api:      api,
		logger:   logger,
	}
}

// ResolveSeller reports the logged-in seller; it backs the session middleware.
func (d *Dashboard) ResolveSeller(ctx context.Context) (string, error) {
	return d.sessions.SellerID(ctx)
}

// Session re-runs the verify flow and returns the resulting state.
func (d *Dashboard) Session(ctx context.Context) (session.State, error) {
	return d.sessions.Verify(ctx)
}

// Screen loads the seller's catalog if needed and computes the view for the
// stored criteria. Fetch failures become the Failed phase rather than an
// error; an expired session is returned as an error.
func (d *Dashboard) Screen(ctx context.Context, sellerID string) (Screen, error) {
	snap, err := d.catalogs.Load(ctx, sellerID)
	if err != nil && d.sessionLost(err) {
		return Screen{}, err
	}
	return d.screen(ctx, sellerID, snap), nil
}

// Refetch asks the backend for a fresh catalog and recomputes the screen.
func (d *Dashboard) Refetch(ctx context.Context, sellerID string) (Screen, error) {
	snap, err := d.catalogs.Refetch(ctx, sellerID)
	if err != nil && (errors.Is(err, apperrors.ErrTooManyRequests) || d.sessionLost(err)) {
		return Screen{}, err
	}
	return d.screen(ctx, sellerID, snap), nil
}

// Query computes a view for ad-hoc criteria without touching the stored
// ones. Empty fields take their defaults; unknown status or sort values are
// rejected.
func (d *Dashboard) Query(ctx context.Context, sellerID string, k domain.FilterCriteria) (catalog.View, error) {
	k = k.Normalize()
	if err := k.Validate(); err != nil {
		return catalog.View{}, err
	}
	snap, err := d.catalogs.Load(ctx, sellerID)
	if err != nil {
		d.sessionLost(err)
		return catalog.View{}, err
	}
	return d.compute(ctx, snap.Catalog, k), nil
}

// Facets returns the categories of the seller's catalog.
func (d *Dashboard) Facets(ctx context.Context, sellerID string) ([]string, error) {
	snap, err := d.catalogs.Load(ctx, sellerID)
	if err != nil {
		d.sessionLost(err)
		return nil, err
	}
	return d.engine.Facets(snap.Catalog), nil
}

// StockStatus classifies a quantity the way every view item is classified.
func (d *Dashboard) StockStatus(q int) domain.StockStatus {
	return catalog.ClassifyStock(q)
}

// Criteria returns the stored criteria.
func (d *Dashboard) Criteria() domain.FilterCriteria {
	return d.criteria.Snapshot()
}

// SetSearchTerm stores a new search term.
func (d *Dashboard) SetSearchTerm(term string) domain.FilterCriteria {
	return d.criteria.SetSearchTerm(term)
}

// SetCategory stores a new category filter.
func (d *Dashboard) SetCategory(category string) domain.FilterCriteria {
	return d.criteria.SetCategory(category)
}

// SetStatus stores a new status filter.
func (d *Dashboard) SetStatus(s domain.StatusFilter) (domain.FilterCriteria, error) {
	return d.criteria.SetStatus(s)
}

// SetSort stores a new sort order.
func (d *Dashboard) SetSort(key domain.SortKey) (domain.FilterCriteria, error) {
	return d.criteria.SetSort(key)
}

// ClearFilters resets the stored criteria.
func (d *Dashboard) ClearFilters() domain.FilterCriteria {
	return d.criteria.ClearFilters()
}

// AddProduct uploads a listing and drops the cached catalog so the next
// screen shows it.
func (d *Dashboard) AddProduct(ctx context.Context, sellerID string, in client.AddProductInput) (msg string, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "dashboard.add_product",
		attribute.String("seller.id", sellerID),
		attribute.Int("product.images", len(in.Images)),
	)
	defer tracing.End(span, &err)

	msg, err = d.api.AddProduct(ctx, in)
	if err != nil {
		d.sessionLost(err)
		return "", err
	}
	d.catalogs.Invalidate(ctx, sellerID)
	d.logger.InfoContext(ctx, "listing created", slog.String("product_name", in.ProductName))
	return msg, nil
}

// Register creates the seller account and verifies the new session.
func (d *Dashboard) Register(ctx context.Context, p client.Profile) (session.State, string, error) {
	msg, err := d.api.Register(ctx, p)
	if err != nil {
		return session.State{}, "", err
	}
	d.sessions.Invalidate()
	st, err := d.sessions.Verify(ctx)
	if err != nil {
		return st, msg, err
	}
	d.logger.InfoContext(ctx, "seller registered", slog.String("seller_id", st.UserID))
	return st, msg, nil
}

// sessionLost invalidates the cached session when the backend rejected the
// credentials, and reports whether it did.
func (d *Dashboard) sessionLost(err error) bool {
	if errors.Is(err, apperrors.ErrUnauthorized) || errors.Is(err, apperrors.ErrSessionExpired) {
		d.sessions.Invalidate()
		return true
	}
	return false
}

// screen reports catalog identity only when the snapshot belongs to sellerID;
// a failed load may still hold another seller's previous catalog.
func (d *Dashboard) screen(ctx context.Context, sellerID string, snap store.Snapshot) Screen {
	s := Screen{Error: snap.Error}
	if snap.Catalog != nil && snap.Catalog.SellerID == sellerID {
		s.Source = snap.Source
		s.CatalogID = snap.Catalog.ID
		s.FetchedAt = snap.Catalog.FetchedAt
	}
	if snap.Status != store.StatusSuccess {
		s.Phase = store.PhaseOf(snap.Status, true)
		return s
	}

	v := d.compute(ctx, snap.Catalog, d.criteria.Snapshot())
	s.View = &v
	s.Phase = store.PhaseOf(snap.Status, v.IsEmpty)
	return s
}

func (d *Dashboard) compute(ctx context.Context, c *domain.Catalog, k domain.FilterCriteria) catalog.View {
	_, span := tracing.Start(ctx, tracerName, "catalog.compute_view",
		attribute.String("catalog.id", catalogID(c)),
		attribute.String("criteria.status", string(k.Status)),
		attribute.String("criteria.sort", string(k.Sort)),
		attribute.Bool("criteria.filtered", k.HasActiveFilters()),
	)
	defer span.End()

	start := time.Now()
	v := d.engine.ComputeView(c, k)
	viewComputeDuration.Observe(time.Since(start).Seconds())

	catalogProducts.WithLabelValues("total").Set(float64(v.TotalCount))
	catalogProducts.WithLabelValues("shown").Set(float64(v.FilteredCount))
	span.SetAttributes(
		attribute.Int("view.total", v.TotalCount),
		attribute.Int("view.filtered", v.FilteredCount),
	)
	return v
}

func catalogID(c *domain.Catalog) string {
	if c == nil {
		return ""
	}
	return c.ID
}
