package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"truck-dispatch-service/internal/domain"
	"truck-dispatch-service/internal/platform/obs"
	"truck-dispatch-service/internal/ports"
)

const (
	tollGatesKey = "reference:toll_gates"
	provincesKey = "reference:provinces"
)

// RedisReferenceCache is a read-through Redis cache in front of the
// toll-gate and province store.
//
// Redis failures never fail a lookup: the source is queried instead and the
// error is logged. Only reference data is cached; provider routes are not.
type RedisReferenceCache struct {
	RDB    *redis.Client
	Source ports.ReferenceData
	TTL    time.Duration
}

func NewRedisReferenceCache(rdb *redis.Client, source ports.ReferenceData, ttl time.Duration) *RedisReferenceCache {
	return &RedisReferenceCache{RDB: rdb, Source: source, TTL: ttl}
}

// NewRedisClient parses a redis:// URL into a client.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis client: parse url: %w", err)
	}
	return redis.NewClient(opt), nil
}

func (c *RedisReferenceCache) ListTollGates(ctx context.Context) (_ []domain.TollGate, err error) {
	defer obs.Time(ctx, "reference.cache.ListTollGates")(&err)

	if c.Source == nil {
		return nil, errors.New("reference cache: source is nil")
	}
	return readThrough(ctx, c, tollGatesKey, c.Source.ListTollGates)
}

func (c *RedisReferenceCache) ListProvinces(ctx context.Context) (_ []domain.Province, err error) {
	defer obs.Time(ctx, "reference.cache.ListProvinces")(&err)

	if c.Source == nil {
		return nil, errors.New("reference cache: source is nil")
	}
	return readThrough(ctx, c, provincesKey, c.Source.ListProvinces)
}

// Invalidate drops every cached reference set, e.g. after reseeding.
func (c *RedisReferenceCache) Invalidate(ctx context.Context) error {
	if c.RDB == nil {
		return nil
	}
	if err := c.RDB.Del(ctx, tollGatesKey, provincesKey).Err(); err != nil {
		return fmt.Errorf("reference cache: invalidate: %w", err)
	}
	return nil
}

func readThrough[T any](
	ctx context.Context,
	c *RedisReferenceCache,
	key string,
	load func(context.Context) ([]T, error),
) ([]T, error) {
	if c.RDB == nil {
		return load(ctx)
	}

	raw, err := c.RDB.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var out []T
		if err := json.Unmarshal(raw, &out); err == nil {
			return out, nil
		}
		obs.L().Warn("reference cache: corrupt entry", zap.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		obs.L().Warn("reference cache: get failed",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.String("key", key),
			zap.Error(err),
		)
	}

	out, err := load(ctx)
	if err != nil {
		return nil, fmt.Errorf("reference cache %s: load: %w", key, err)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("reference cache %s: encode: %w", key, err)
	}
	if err := c.RDB.Set(ctx, key, data, c.TTL).Err(); err != nil {
		obs.L().Warn("reference cache: set failed", zap.String("key", key), zap.Error(err))
	}

	return out, nil
}
