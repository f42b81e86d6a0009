package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheConfig configures the Redis read-through layer.
type CacheConfig struct {
	Addr         string        `json:"addr" yaml:"addr"`
	Password     string        `json:"password" yaml:"password"`
	DB           int           `json:"db" yaml:"db"`
	PoolSize     int           `json:"pool_size" yaml:"pool_size"`
	MinIdleConns int           `json:"min_idle_conns" yaml:"min_idle_conns"`
	TTL          time.Duration `json:"ttl" yaml:"ttl"`

	Logger *zap.Logger `json:"-" yaml:"-"`
}

// DefaultCacheConfig returns settings for a local Redis.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Addr:         "localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		TTL:          5 * time.Minute,
	}
}

// Cache is a read-through decorator: lookup hits answer from Redis, misses
// fall through to the wrapped store and populate the cache. Writes invalidate
// before delegating, so a caller never reads its own stale write.
type Cache struct {
	client redis.UniversalClient
	next   Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewCache connects to Redis and wraps the given store.
func NewCache(cfg CacheConfig, next Store) (*Cache, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	logger.Info("store cache connected", zap.String("addr", cfg.Addr))
	return &Cache{
		client: client,
		next:   next,
		ttl:    ttl,
		logger: logger.With(zap.String("component", "store_cache")),
	}, nil
}

// NewCacheWithClient wraps an existing client. Used by tests.
func NewCacheWithClient(client redis.UniversalClient, next Store, ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{
		client: client,
		next:   next,
		ttl:    ttl,
		logger: logger.With(zap.String("component", "store_cache")),
	}
}

func prescriptionKey(id string) string { return "pharmacy:rx:" + id }

func medicineKey(name string) string { return "pharmacy:med:" + normalizeName(name) }

func (c *Cache) PrescriptionStatus(ctx context.Context, prescriptionID string) (string, error) {
	if prescriptionID == "" {
		return "", ErrInvalidInput
	}
	return c.readThrough(ctx, prescriptionKey(prescriptionID), func() (string, error) {
		return c.next.PrescriptionStatus(ctx, prescriptionID)
	})
}

func (c *Cache) MedicineAvailability(ctx context.Context, medicine string) (string, error) {
	if medicine == "" {
		return "", ErrInvalidInput
	}
	return c.readThrough(ctx, medicineKey(medicine), func() (string, error) {
		return c.next.MedicineAvailability(ctx, medicine)
	})
}

func (c *Cache) readThrough(ctx context.Context, key string, load func() (string, error)) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return val, nil
	}
	if err != redis.Nil {
		// A broken cache must not take lookups down with it.
		c.logger.Warn("cache read failed, falling through", zap.String("key", key), zap.Error(err))
	}

	val, err = load()
	if err != nil {
		return "", err
	}
	if setErr := c.client.Set(ctx, key, val, c.ttl).Err(); setErr != nil {
		c.logger.Warn("cache populate failed", zap.String("key", key), zap.Error(setErr))
	}
	return val, nil
}

func (c *Cache) PutPrescription(ctx context.Context, p Prescription) error {
	if err := c.invalidate(ctx, prescriptionKey(p.ID)); err != nil {
		return err
	}
	return c.next.PutPrescription(ctx, p)
}

func (c *Cache) PutMedicine(ctx context.Context, m Medicine) error {
	if err := c.invalidate(ctx, medicineKey(m.Name)); err != nil {
		return err
	}
	return c.next.PutMedicine(ctx, m)
}

func (c *Cache) invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache invalidate %s: %w", key, err)
	}
	return nil
}

func (c *Cache) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return c.next.HealthCheck(ctx)
}

func (c *Cache) Close() error {
	if err := c.client.Close(); err != nil {
		c.logger.Warn("closing redis client failed", zap.Error(err))
	}
	return c.next.Close()
}
