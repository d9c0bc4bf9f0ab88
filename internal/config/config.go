package config

import (
	"fmt"
	"net/url"
	"time"

	"golang.org/x/text/language"

	pkgconfig "github.com/utafrali/sellerdesk/pkg/config"
)

// Config holds all configuration for the seller dashboard.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPPort    int    `env:"SELLERDESK_HTTP_PORT" envDefault:"8090"`

	// Seller backend
	SellerAPIURL   string        `env:"SELLER_API_URL" envDefault:"http://localhost:3000"`
	HTTPTimeout    time.Duration `env:"SELLER_API_TIMEOUT" envDefault:"10s"`
	HTTPMaxRetries int           `env:"SELLER_API_MAX_RETRIES" envDefault:"2"`

	// Circuit breaker
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// Session cookies
	AccessCookie   string        `env:"ACCESS_COOKIE_NAME" envDefault:"accessToken"`
	SessionRecheck time.Duration `env:"SESSION_RECHECK" envDefault:"1m"`

	// Catalog
	CatalogLocale      string        `env:"CATALOG_LOCALE" envDefault:"en"`
	RefetchMinInterval time.Duration `env:"CATALOG_REFETCH_MIN_INTERVAL" envDefault:"2s"`
	RefetchBurst       int           `env:"CATALOG_REFETCH_BURST" envDefault:"3"`

	// Redis catalog cache
	CacheEnabled  bool          `env:"CACHE_ENABLED" envDefault:"false"`
	RedisHost     string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	// HTTP API
	CORSOrigins    []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`
	RateLimitRPS   float64  `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int      `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// Profiling
	PprofEnabled bool     `env:"PPROF_ENABLED" envDefault:"false"`
	PprofCIDRs   []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`

	// Tracing
	TracingEnabled    bool    `env:"TRACING_ENABLED" envDefault:"false"`
	TracingEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRate float64 `env:"TRACING_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from a local .env file, if present, and then
// from environment variables.
func Load() (*Config, error) {
	if err := pkgconfig.LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("load sellerdesk config: %w", err)
	}
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load sellerdesk config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Locale returns the parsed catalog locale.
func (c *Config) Locale() language.Tag {
	tag, err := language.Parse(c.CatalogLocale)
	if err != nil {
		return language.English
	}
	return tag
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	u, err := url.Parse(c.SellerAPIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("SELLER_API_URL must be an absolute URL, got %q", c.SellerAPIURL)
	}
	if c.HTTPMaxRetries < 0 {
		return fmt.Errorf("SELLER_API_MAX_RETRIES must not be negative: %d", c.HTTPMaxRetries)
	}
	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1 {
		return fmt.Errorf("CB_FAILURE_RATIO must be in (0, 1]: %v", c.CBFailureRatio)
	}
	if _, err := language.Parse(c.CatalogLocale); err != nil {
		return fmt.Errorf("invalid CATALOG_LOCALE %q: %w", c.CatalogLocale, err)
	}
	if c.RefetchMinInterval < 0 || c.RefetchBurst < 1 {
		return fmt.Errorf("catalog refetch limit needs a non-negative interval and a burst of at least 1")
	}
	if c.CacheEnabled {
		if c.RedisPort < 1 || c.RedisPort > 65535 {
			return fmt.Errorf("invalid Redis port: %d", c.RedisPort)
		}
		if c.CacheTTL <= 0 {
			return fmt.Errorf("CACHE_TTL must be positive when the cache is enabled")
		}
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit needs positive RATE_LIMIT_RPS and RATE_LIMIT_BURST")
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be between 0 and 1: %v", c.TracingSampleRate)
	}
	return nil
}
