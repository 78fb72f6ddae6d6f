package cache_utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

const (
	DefaultCacheTimeout = 10 * time.Second
	DefaultCacheExpiry  = 10 * time.Minute
	DefaultQueueTimeout = 30 * time.Second
)

// CacheUtil stores JSON encoded values of T under prefix+key.
// Lookups never fail: a miss, a decode error and an unreachable cache all read as nil.
type CacheUtil[T any] struct {
	client  valkey.Client
	prefix  string
	timeout time.Duration
	expiry  time.Duration
}

func NewCacheUtil[T any](client valkey.Client, prefix string) *CacheUtil[T] {
	return &CacheUtil[T]{
		client:  client,
		prefix:  prefix,
		timeout: DefaultCacheTimeout,
		expiry:  DefaultCacheExpiry,
	}
}

func (c *CacheUtil[T]) WithExpiry(expiry time.Duration) *CacheUtil[T] {
	c.expiry = expiry
	return c
}

func (c *CacheUtil[T]) Get(ctx context.Context, key string) *T {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result := c.client.Do(ctx, c.client.B().Get().Key(c.prefix+key).Build())
	if result.Error() != nil {
		return nil
	}

	data, err := result.AsBytes()
	if err != nil {
		return nil
	}

	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return nil
	}

	return &item
}

func (c *CacheUtil[T]) Set(ctx context.Context, key string, item *T) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := json.Marshal(item)
	if err != nil {
		return
	}

	c.client.Do(ctx, c.client.B().Set().Key(c.prefix+key).Value(string(data)).Ex(c.expiry).Build())
}

func (c *CacheUtil[T]) Invalidate(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.client.Do(ctx, c.client.B().Del().Key(c.prefix+key).Build())
}

// PingCache checks that the cache answers and round-trips a value.
func PingCache(ctx context.Context, client valkey.Client) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultCacheTimeout)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("cache ping failed: %w", err)
	}

	probe := NewCacheUtil[string](client, "healthcheck:")
	value := "valkey_is_working"
	probe.Set(ctx, "probe", &value)
	defer probe.Invalidate(ctx, "probe")

	if got := probe.Get(ctx, "probe"); got == nil || *got != value {
		return fmt.Errorf("cache round trip failed")
	}

	return nil
}
