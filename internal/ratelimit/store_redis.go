package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "confessional:ratelimit:"

// slidingWindowScript trims expired members, then adds cost members when the
// window has room. Returns {allowed, count, oldest_ms}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local cost = tonumber(ARGV[4])
local member = ARGV[5]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count + cost <= limit then
  for i = 1, cost do
    redis.call('ZADD', key, now, member .. ':' .. i)
  end
  count = count + cost
  allowed = 1
end
redis.call('PEXPIRE', key, window)
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local oldestScore = now
if oldest[2] then oldestScore = tonumber(oldest[2]) end
return {allowed, count, oldestScore}
`)

// RedisStore shares sliding windows across instances using sorted sets
// scored by request time in milliseconds.
type RedisStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (s *RedisStore) AllowN(ctx context.Context, key string, cost, limit int, window time.Duration) (*Result, error) {
	now := s.now()
	raw, err := slidingWindowScript.Run(ctx, s.client, []string{redisKeyPrefix + key},
		now.UnixMilli(), window.Milliseconds(), limit, cost, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script: %w", err)
	}
	if len(raw) != 3 {
		return nil, fmt.Errorf("rate limit script returned %d values", len(raw))
	}
	allowed := raw[0] == 1
	resetAt := time.UnixMilli(raw[2]).Add(window)
	remaining := limit - int(raw[1])
	if remaining < 0 || !allowed {
		remaining = 0
	}
	return &Result{
		Allowed:    allowed,
		Limit:      limit,
		Remaining:  remaining,
		ResetAt:    resetAt,
		RetryAfter: retryAfterSeconds(allowed, now, resetAt),
	}, nil
}

func (s *RedisStore) Count(ctx context.Context, key string, window time.Duration) (int, error) {
	min := strconv.FormatInt(s.now().Add(-window).UnixMilli(), 10)
	n, err := s.client.ZCount(ctx, redisKeyPrefix+key, "("+min, "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("count rate limit window: %w", err)
	}
	return int(n), nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("reset rate limit: %w", err)
	}
	return nil
}
