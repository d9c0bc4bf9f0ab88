package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/sellerdesk/internal/config"
	"github.com/utafrali/sellerdesk/internal/service"
	"github.com/utafrali/sellerdesk/pkg/health"
	"github.com/utafrali/sellerdesk/pkg/middleware"
)

const serviceName = "sellerdesk"

// NewRouter creates a chi router with all dashboard routes registered.
// limiter may be nil to disable per-client rate limiting.
func NewRouter(
	cfg *config.Config,
	dashboard *service.Dashboard,
	healthHandler *health.Handler,
	limiter *middleware.RateLimiter,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   cfg.CORSOrigins,
		ExposedHeaders:   []string{middleware.CorrelationHeader},
		AllowCredentials: true,
		Environment:      cfg.Environment,
	}))
	if limiter != nil {
		r.Use(limiter.Handler)
	}
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	if cfg.PprofEnabled {
		middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)
	}

	catalogHandler := NewCatalogHandler(dashboard, logger)
	criteriaHandler := NewCriteriaHandler(dashboard, logger)
	sessionHandler := NewSessionHandler(dashboard, logger)
	productHandler := NewProductHandler(dashboard, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CacheControl(middleware.CacheNoStore))

		r.Get("/session", sessionHandler.GetSession)
		r.Post("/session/register", sessionHandler.Register)

		r.With(middleware.CacheControl(middleware.CacheImmutable)).
			Get("/stock-status", catalogHandler.GetStockStatus)

		// Everything below needs a logged-in seller.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(dashboard.ResolveSeller, logger))

			r.Get("/catalog/view", catalogHandler.GetView)
			r.Get("/catalog/query", catalogHandler.Query)
			r.Get("/catalog/facets", catalogHandler.GetFacets)
			r.Post("/catalog/refetch", catalogHandler.Refetch)

			r.Get("/criteria", criteriaHandler.GetCriteria)
			r.Put("/criteria/{field}", criteriaHandler.SetCriterion)
			r.Delete("/criteria", criteriaHandler.ClearFilters)

			r.Post("/products", productHandler.AddProduct)
		})
	})

	return r
}
