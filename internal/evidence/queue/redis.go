package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	id "confessional/pkg/domain"
	"confessional/pkg/platform/sentinel"
)

const (
	dueKey     = "confessional:evidence:due"
	itemPrefix = "confessional:evidence:item:"
)

// leaseScript pops due members by pushing their score to the lease deadline,
// so a concurrent worker cannot pick them up until the lease lapses.
var leaseScript = redis.NewScript(`
local keys = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, ARGV[3])
for _, k in ipairs(keys) do
  redis.call('ZADD', KEYS[1], ARGV[2], k)
end
return keys
`)

// enqueueScript writes the entry hash and its due-set member together. An
// existing entry is kept unless it is live yet missing from the due set.
var enqueueScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  if redis.call('HGET', KEYS[1], 'dead') == '1' or redis.call('ZSCORE', KEYS[2], ARGV[1]) then
    return 0
  end
end
redis.call('HSET', KEYS[1],
  'key', ARGV[1],
  'principal_id', ARGV[2],
  'attempts', ARGV[3],
  'next_attempt_at', ARGV[4],
  'last_error', ARGV[5],
  'dead', 0,
  'created_at', ARGV[6])
redis.call('ZADD', KEYS[2], ARGV[4], ARGV[1])
return 1
`)

// Redis keeps live entries in a sorted set scored by next attempt time (unix
// millis) and entry fields in one hash per key. Dead entries leave the set.
type Redis struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Enqueue(ctx context.Context, d Deletion) error {
	principal := ""
	if !d.PrincipalID.IsNil() {
		principal = d.PrincipalID.String()
	}
	err := enqueueScript.Run(ctx, r.client, []string{itemPrefix + d.Key, dueKey},
		d.Key, principal, d.Attempts, d.NextAttemptAt.UnixMilli(), d.LastError, d.CreatedAt.UnixMilli(),
	).Err()
	if err != nil {
		return fmt.Errorf("enqueue deletion: %w", err)
	}
	return nil
}

func (r *Redis) Lease(ctx context.Context, now time.Time, limit int, leaseFor time.Duration) ([]Deletion, error) {
	keys, err := leaseScript.Run(ctx, r.client, []string{dueKey},
		now.UnixMilli(), now.Add(leaseFor).UnixMilli(), limit,
	).StringSlice()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("lease deletions: %w", err)
	}

	out := make([]Deletion, 0, len(keys))
	for _, key := range keys {
		fields, err := r.client.HGetAll(ctx, itemPrefix+key).Result()
		if err != nil {
			return nil, fmt.Errorf("load deletion %s: %w", key, err)
		}
		if len(fields) == 0 {
			r.client.ZRem(ctx, dueKey, key)
			continue
		}
		out = append(out, parseDeletion(key, fields))
	}
	return out, nil
}

func (r *Redis) Complete(ctx context.Context, key string) error {
	var removed *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.Del(ctx, itemPrefix+key)
		pipe.ZRem(ctx, dueKey, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("complete deletion: %w", err)
	}
	if removed.Val() == 0 {
		return fmt.Errorf("deletion %s: %w", key, sentinel.ErrNotFound)
	}
	return nil
}

func (r *Redis) Retry(ctx context.Context, key string, attempts int, nextAttemptAt time.Time, lastError string) error {
	if err := r.requireItem(ctx, key); err != nil {
		return err
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, itemPrefix+key,
			"attempts", attempts,
			"next_attempt_at", nextAttemptAt.UnixMilli(),
			"last_error", lastError,
		)
		pipe.ZAdd(ctx, dueKey, redis.Z{Score: float64(nextAttemptAt.UnixMilli()), Member: key})
		return nil
	})
	if err != nil {
		return fmt.Errorf("retry deletion: %w", err)
	}
	return nil
}

func (r *Redis) Bury(ctx context.Context, key string, attempts int, lastError string) error {
	if err := r.requireItem(ctx, key); err != nil {
		return err
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, itemPrefix+key, "attempts", attempts, "last_error", lastError, "dead", 1)
		pipe.ZRem(ctx, dueKey, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("bury deletion: %w", err)
	}
	return nil
}

func (r *Redis) Pending(ctx context.Context) (int64, error) {
	n, err := r.client.ZCard(ctx, dueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("count deletions: %w", err)
	}
	return n, nil
}

func (r *Redis) requireItem(ctx context.Context, key string) error {
	n, err := r.client.Exists(ctx, itemPrefix+key).Result()
	if err != nil {
		return fmt.Errorf("check deletion: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("deletion %s: %w", key, sentinel.ErrNotFound)
	}
	return nil
}

func parseDeletion(key string, fields map[string]string) Deletion {
	d := Deletion{Key: key, LastError: fields["last_error"], Dead: fields["dead"] == "1"}
	d.Attempts, _ = strconv.Atoi(fields["attempts"])
	if ms, err := strconv.ParseInt(fields["next_attempt_at"], 10, 64); err == nil {
		d.NextAttemptAt = time.UnixMilli(ms).UTC()
	}
	if ms, err := strconv.ParseInt(fields["created_at"], 10, 64); err == nil {
		d.CreatedAt = time.UnixMilli(ms).UTC()
	}
	if raw := fields["principal_id"]; raw != "" {
		if u, err := uuid.Parse(raw); err == nil {
			d.PrincipalID = id.PrincipalID(u)
		}
	}
	return d
}
