package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps one sliding window of timestamps per key.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*slidingWindow
	now     func() time.Time
}

type slidingWindow struct {
	timestamps []time.Time
}

func (sw *slidingWindow) tryConsume(cost, limit int, window time.Duration, now time.Time) (bool, int, time.Time) {
	sw.cleanupExpired(now, window)
	if len(sw.timestamps)+cost > limit {
		return false, 0, sw.oldest(now).Add(window)
	}
	for range cost {
		sw.timestamps = append(sw.timestamps, now)
	}
	return true, limit - len(sw.timestamps), sw.timestamps[0].Add(window)
}

func (sw *slidingWindow) cleanupExpired(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}

func (sw *slidingWindow) oldest(now time.Time) time.Time {
	if len(sw.timestamps) == 0 {
		return now
	}
	return sw.timestamps[0]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]*slidingWindow), now: time.Now}
}

// WithClock replaces time.Now for tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) AllowN(_ context.Context, key string, cost, limit int, window time.Duration) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.buckets[key]
	if !ok {
		bucket = &slidingWindow{}
		s.buckets[key] = bucket
	}
	now := s.now()
	allowed, remaining, resetAt := bucket.tryConsume(cost, limit, window, now)
	return &Result{
		Allowed:    allowed,
		Limit:      limit,
		Remaining:  remaining,
		ResetAt:    resetAt,
		RetryAfter: retryAfterSeconds(allowed, now, resetAt),
	}, nil
}

func (s *MemoryStore) Count(_ context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.buckets[key]
	if !ok {
		return 0, nil
	}
	bucket.cleanupExpired(s.now(), window)
	return len(bucket.timestamps), nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}
