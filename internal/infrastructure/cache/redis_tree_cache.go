package cache

import (
	"context"
	"fmt"
	"time"

	appcatalog "github.com/erp/catalog/internal/application/catalog"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisTreeCache implements TreeCache using Redis
// This is suitable for distributed deployments where multiple instances
// need to share the rendered tree state
type RedisTreeCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	log       *zap.Logger
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisTreeCache creates a new Redis-based tree cache
func NewRedisTreeCache(cfg RedisConfig, ttl time.Duration, log *zap.Logger) (*RedisTreeCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisTreeCacheWithClient(client, "", ttl, log), nil
}

// NewRedisTreeCacheWithClient creates a cache with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisTreeCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration, log *zap.Logger) *RedisTreeCache {
	if keyPrefix == "" {
		keyPrefix = "catalog:tree:"
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisTreeCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		log:       log,
	}
}

// Invalidation bumps a per-tenant generation counter instead of scanning
// for keys. Entries written under older generations become unreachable
// and expire with their TTL.
func (c *RedisTreeCache) generation(ctx context.Context, tenantID uuid.UUID) (string, error) {
	gen, err := c.client.Get(ctx, c.keyPrefix+tenantID.String()+":gen").Result()
	if err == redis.Nil {
		return "0", nil
	}
	if err != nil {
		return "", err
	}
	return gen, nil
}

func (c *RedisTreeCache) dataKey(gen string, tenantID uuid.UUID, key string) string {
	return c.keyPrefix + tenantID.String() + ":" + gen + ":" + key
}

// Get returns the cached payload for the key, if present
func (c *RedisTreeCache) Get(ctx context.Context, tenantID uuid.UUID, key string) ([]byte, bool) {
	gen, err := c.generation(ctx, tenantID)
	if err != nil {
		c.warn("tree cache generation lookup failed", err)
		return nil, false
	}

	payload, err := c.client.Get(ctx, c.dataKey(gen, tenantID, key)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.warn("tree cache read failed", err)
		return nil, false
	}
	return payload, true
}

// Set stores the payload under the tenant's current generation
func (c *RedisTreeCache) Set(ctx context.Context, tenantID uuid.UUID, key string, payload []byte) {
	gen, err := c.generation(ctx, tenantID)
	if err != nil {
		c.warn("tree cache generation lookup failed", err)
		return
	}

	if err := c.client.Set(ctx, c.dataKey(gen, tenantID, key), payload, c.ttl).Err(); err != nil {
		c.warn("tree cache write failed", err)
	}
}

// InvalidateTenant drops every cached tree of the tenant
func (c *RedisTreeCache) InvalidateTenant(ctx context.Context, tenantID uuid.UUID) {
	if err := c.client.Incr(ctx, c.keyPrefix+tenantID.String()+":gen").Err(); err != nil {
		c.warn("tree cache invalidation failed", err)
	}
}

// Close closes the Redis client
func (c *RedisTreeCache) Close() error {
	return c.client.Close()
}

func (c *RedisTreeCache) warn(msg string, err error) {
	if c.log != nil {
		c.log.Warn(msg, zap.Error(err))
	}
}

// Ensure RedisTreeCache implements TreeCache
var _ appcatalog.TreeCache = (*RedisTreeCache)(nil)
