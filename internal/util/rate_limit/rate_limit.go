package rate_limit

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"
)

// Limit describes a token bucket: Burst tokens, refilled at PerMinute tokens per minute.
type Limit struct {
	PerMinute int
	Burst     int
}

type RateLimitResult struct {
	Allowed       bool      `json:"allowed"`
	Remaining     int       `json:"remaining"`
	ResetTime     time.Time `json:"resetTime"`
	RetryAfterSec int       `json:"retryAfterSec,omitempty"`
}

type RateLimiter struct {
	client valkey.Client
	scope  string
	limit  Limit
}

const (
	defaultTimeout = 5 * time.Second
	keyPrefix      = "rate_limit:"
	bucketTTLSec   = 3600
)

// Refill is computed from elapsed milliseconds, state lives in a hash with a TTL.
const tokenBucketLuaScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local per_minute = tonumber(ARGV[2])
local burst = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local current = redis.call('HMGET', key, 'tokens', 'last_refill')
local tokens = tonumber(current[1]) or burst
local last_refill = tonumber(current[2]) or now

local elapsed = math.max(0, now - last_refill)
local refill = math.floor(elapsed * per_minute / 60000)
if refill > 0 then
    tokens = math.min(burst, tokens + refill)
    last_refill = now
end

local allowed = 0
if tokens >= 1 then
    allowed = 1
    tokens = tokens - 1
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill', last_refill)
redis.call('EXPIRE', key, ttl)

local time_to_full = 0
if tokens < burst then
    time_to_full = math.ceil((burst - tokens) * 60000 / per_minute)
end

return {allowed, tokens, time_to_full}
`

// NewRateLimiter creates a limiter whose buckets live under rate_limit:<scope>:<subject>.
func NewRateLimiter(client valkey.Client, scope string, limit Limit) *RateLimiter {
	if limit.PerMinute <= 0 {
		limit.PerMinute = 60
	}
	if limit.Burst <= 0 {
		limit.Burst = limit.PerMinute
	}

	return &RateLimiter{
		client: client,
		scope:  scope,
		limit:  limit,
	}
}

func (r *RateLimiter) CheckRateLimit(ctx context.Context, subject string) (*RateLimitResult, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now()

	result := r.client.Do(ctx, r.client.B().Eval().
		Script(tokenBucketLuaScript).
		Numkeys(1).
		Key(r.key(subject)).
		Arg(strconv.FormatInt(now.UnixMilli(), 10)).
		Arg(strconv.Itoa(r.limit.PerMinute)).
		Arg(strconv.Itoa(r.limit.Burst)).
		Arg(strconv.Itoa(bucketTTLSec)).
		Build())

	if result.Error() != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", result.Error())
	}

	values, err := result.AsIntSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to parse rate limit result: %w", err)
	}

	return buildResult(values, r.limit, now)
}

func (r *RateLimiter) ResetRateLimit(ctx context.Context, subject string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.client.Do(ctx, r.client.B().Del().Key(r.key(subject)).Build()).Error()
}

func (r *RateLimiter) key(subject string) string {
	return keyPrefix + r.scope + ":" + subject
}

func buildResult(values []int64, limit Limit, now time.Time) (*RateLimitResult, error) {
	if len(values) < 3 {
		return nil, fmt.Errorf("invalid rate limit result: expected 3 values, got %d", len(values))
	}

	allowed := values[0] == 1

	var retryAfterSec int
	if !allowed {
		// one token takes 60/PerMinute seconds to refill
		retryAfterSec = max(1, int(math.Ceil(60.0/float64(limit.PerMinute))))
	}

	return &RateLimitResult{
		Allowed:       allowed,
		Remaining:     int(values[1]),
		ResetTime:     now.Add(time.Duration(values[2]) * time.Millisecond),
		RetryAfterSec: retryAfterSec,
	}, nil
}
