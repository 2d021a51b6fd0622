package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// newUpstreamClient returns an instrumented client with a hard deadline per request
func newUpstreamClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// LookupCache stores successful upstream responses. Implementations must
// treat a miss as (nil, false, nil).
type LookupCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisLookupCache keeps upstream lookups in Redis
type RedisLookupCache struct {
	client *redis.Client
	prefix string
}

func NewRedisLookupCache(client *redis.Client) *RedisLookupCache {
	return &RedisLookupCache{client: client, prefix: "lookup:"}
}

func (c *RedisLookupCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *RedisLookupCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}
