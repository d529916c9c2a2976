package cep

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is the shared-cache variant of MemoryCache for deployments
// with more than one instance. Cache failures are logged and treated as
// cache misses; the lookup itself still runs.
type RedisCache struct {
	inner  Lookup
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(inner Lookup, rdb redis.Cmdable, ttl time.Duration, logger *slog.Logger) *RedisCache {
	return &RedisCache{inner: inner, rdb: rdb, ttl: ttl, logger: logger}
}

func cacheKey(code string) string {
	return "cep:" + code
}

func (c *RedisCache) Lookup(ctx context.Context, code string) (Result, error) {
	code = Normalize(code)

	raw, err := c.rdb.Get(ctx, cacheKey(code)).Bytes()
	if err == nil {
		var res Result
		if jsonErr := json.Unmarshal(raw, &res); jsonErr == nil {
			return res, nil
		}
	} else if err != redis.Nil {
		c.logger.Warn("cep cache read failed", "code", code, "error", err)
	}

	res, err := c.inner.Lookup(ctx, code)
	if err != nil {
		return Result{}, err
	}

	if raw, err := json.Marshal(res); err == nil {
		if err := c.rdb.Set(ctx, cacheKey(code), raw, c.ttl).Err(); err != nil {
			c.logger.Warn("cep cache write failed", "code", code, "error", err)
		}
	}
	return res, nil
}
