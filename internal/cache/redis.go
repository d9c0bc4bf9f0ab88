package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/sellerdesk/internal/domain"
	apperrors "github.com/utafrali/sellerdesk/pkg/errors"
)

const keyPrefix = "sellerdesk:catalog:"

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the Redis address string.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewRedisClient creates a new Redis client and verifies the connection.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// Redis stores catalog snapshots as JSON with a TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a Redis-backed catalog cache.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{
		client: client,
		ttl:    ttl,
	}
}

func key(sellerID string) string {
	return keyPrefix + sellerID
}

// Get retrieves the cached catalog of a seller.
func (r *Redis) Get(ctx context.Context, sellerID string) (*domain.Catalog, error) {
	data, err := r.client.Get(ctx, key(sellerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("catalog", sellerID)
		}
		return nil, fmt.Errorf("redis get catalog: %w", err)
	}

	var c domain.Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}

	return &c, nil
}

// Set stores a catalog under its seller ID with the configured TTL.
func (r *Redis) Set(ctx context.Context, c *domain.Catalog) error {
	if c == nil {
		return apperrors.InvalidInput("catalog is nil")
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}

	if err := r.client.Set(ctx, key(c.SellerID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set catalog: %w", err)
	}

	return nil
}

// Delete removes the cached catalog of a seller.
func (r *Redis) Delete(ctx context.Context, sellerID string) error {
	if err := r.client.Del(ctx, key(sellerID)).Err(); err != nil {
		return fmt.Errorf("redis del catalog: %w", err)
	}
	return nil
}

// Ping checks the connection; it backs the cache readiness check.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
