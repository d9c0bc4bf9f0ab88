package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/utafrali/sellerdesk/internal/cache"
	"github.com/utafrali/sellerdesk/internal/catalog"
	"github.com/utafrali/sellerdesk/internal/client"
	"github.com/utafrali/sellerdesk/internal/config"
	handler "github.com/utafrali/sellerdesk/internal/handler/http"
	"github.com/utafrali/sellerdesk/internal/service"
	"github.com/utafrali/sellerdesk/internal/session"
	"github.com/utafrali/sellerdesk/internal/store"
	"github.com/utafrali/sellerdesk/pkg/health"
	"github.com/utafrali/sellerdesk/pkg/httpclient"
	"github.com/utafrali/sellerdesk/pkg/middleware"
	"github.com/utafrali/sellerdesk/pkg/tracing"
)

// Version is reported to the tracing backend.
const Version = "0.1.0"

// initTracer is swapped in tests to observe exporter shutdown.
var initTracer = tracing.InitTracer

// App wires together all dependencies and runs the seller dashboard.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	limiter        *middleware.RateLimiter
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// SellerAPI is a seller backend client together with the breaker guarding it.
type SellerAPI struct {
	Client  *client.Client
	Breaker *httpclient.CircuitBreakerClient
}

// NewSellerAPI builds the backend client: a cookie-jar HTTP client with
// retries, wrapped in a circuit breaker that degrades to a 503.
func NewSellerAPI(cfg *config.Config, logger *slog.Logger) (*SellerAPI, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	baseClient := httpclient.New(httpclient.Config{
		Timeout:         cfg.HTTPTimeout,
		MaxRetries:      cfg.HTTPMaxRetries,
		RetryWaitMin:    250 * time.Millisecond,
		RetryWaitMax:    2 * time.Second,
		MaxConnsPerHost: 16,
		Jar:             jar,
	})

	cbCfg := httpclient.CircuitBreakerConfig{
		Name:         client.ServiceName,
		MaxRequests:  cfg.CBMaxRequests,
		Interval:     time.Duration(cfg.CBInterval) * time.Second,
		Timeout:      time.Duration(cfg.CBTimeout) * time.Second,
		FailureRatio: cfg.CBFailureRatio,
		MinRequests:  cfg.CBMinRequests,
	}
	breaker := httpclient.NewCircuitBreakerClient(baseClient, cbCfg, logger).
		WithFallback(client.CircuitOpenFallback)
	logger.Info("circuit breaker initialized",
		slog.String("name", cbCfg.Name),
		slog.Uint64("max_requests", uint64(cbCfg.MaxRequests)),
		slog.Int("timeout_seconds", cfg.CBTimeout),
		slog.Uint64("min_requests", uint64(cbCfg.MinRequests)),
	)

	api, err := client.New(cfg.SellerAPIURL, breaker, logger)
	if err != nil {
		return nil, err
	}
	return &SellerAPI{Client: api, Breaker: breaker}, nil
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := initTracer(ctx, tracing.Config{
		ServiceName:    "sellerdesk",
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.TracingEndpoint,
		SampleRate:     cfg.TracingSampleRate,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		if err != nil {
			if shutdownErr := tracerShutdown(context.Background()); shutdownErr != nil {
				logger.Error("tracer shutdown failed", slog.String("error", shutdownErr.Error()))
			}
		}
	}()

	api, err := NewSellerAPI(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Catalog cache: Redis when enabled, otherwise every load hits the backend.
	var (
		rdb          *redis.Client
		catalogCache cache.CatalogCache = cache.Noop{}
	)
	if cfg.CacheEnabled {
		redisCfg := cache.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
		rdb, err = cache.NewRedisClient(ctx, redisCfg)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", redisCfg.Addr()),
			slog.Int("db", cfg.RedisDB),
			slog.Duration("ttl", cfg.CacheTTL),
		)
		catalogCache = cache.NewRedis(rdb, cfg.CacheTTL)
	}

	// Build the dependency graph.
	sessions := session.NewManager(api.Client, session.Config{
		AccessCookie: cfg.AccessCookie,
		RecheckAfter: cfg.SessionRecheck,
	}, logger)
	refetchLimiter := rate.NewLimiter(rate.Every(cfg.RefetchMinInterval), cfg.RefetchBurst)
	catalogs := store.NewCatalog(api.Client, catalogCache, refetchLimiter, logger)
	engine := catalog.NewEngine(cfg.Locale())
	dashboard := service.NewDashboard(sessions, catalogs, store.NewCriteria(), engine, api.Client, logger)
	logger.Info("catalog engine initialized", slog.String("locale", engine.Locale().String()))

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical(client.ServiceName, func(ctx context.Context) error {
		if api.Breaker.State() == gobreaker.StateOpen {
			return errors.New("circuit breaker open")
		}
		return nil
	})
	healthHandler.RegisterNonCritical("catalog-cache", catalogs.Ping)

	// HTTP router.
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	router := handler.NewRouter(cfg, dashboard, healthHandler, limiter, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		rdb:            rdb,
		limiter:        limiter,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: HTTP server, tracer,
// rate limiter, Redis.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// Flush spans from drained requests.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.limiter.Close()

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
