// Package ratelimit throttles anonymous endpoints by client IP and failed
// logins by credential, with sliding windows kept in memory or Redis.
package ratelimit

import (
	"context"
	"errors"
	"time"

	dErrors "confessional/pkg/domain-errors"
)

// Class groups endpoints that share a limit.
type Class string

const (
	ClassAuth  Class = "auth"
	ClassWrite Class = "write"
	ClassRead  Class = "read"
	// ClassLoginFailure counts failed logins per credential.
	ClassLoginFailure Class = "login_failure"
)

// Policy is the number of requests allowed per window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// DefaultPolicies are used for classes without an explicit policy.
var DefaultPolicies = map[Class]Policy{
	ClassAuth:         {Limit: 10, Window: time.Minute},
	ClassWrite:        {Limit: 30, Window: time.Minute},
	ClassRead:         {Limit: 300, Window: time.Minute},
	ClassLoginFailure: {Limit: 5, Window: 15 * time.Minute},
}

// Result is the outcome of one check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int
}

// Store keeps the sliding windows.
type Store interface {
	AllowN(ctx context.Context, key string, cost, limit int, window time.Duration) (*Result, error)
	Count(ctx context.Context, key string, window time.Duration) (int, error)
	Reset(ctx context.Context, key string) error
}

type Limiter struct {
	store    Store
	policies map[Class]Policy
	metrics  *Metrics
}

type Option func(*Limiter)

// WithPolicy overrides the policy of one class.
func WithPolicy(class Class, p Policy) Option {
	return func(l *Limiter) {
		if p.Limit > 0 && p.Window > 0 {
			l.policies[class] = p
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

func New(store Store, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("rate limit store is required")
	}
	l := &Limiter{store: store, policies: make(map[Class]Policy, len(DefaultPolicies))}
	for class, p := range DefaultPolicies {
		l.policies[class] = p
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Check consumes one request for key in class.
func (l *Limiter) Check(ctx context.Context, class Class, key string) (*Result, error) {
	p := l.policies[class]
	res, err := l.store.AllowN(ctx, string(class)+":"+key, 1, p.Limit, p.Window)
	if err != nil {
		return nil, err
	}
	if !res.Allowed && l.metrics != nil {
		l.metrics.IncRejected(class)
	}
	return res, nil
}

// Blocked reports whether key has used up class without consuming a request.
func (l *Limiter) Blocked(ctx context.Context, class Class, key string) (bool, error) {
	p := l.policies[class]
	n, err := l.store.Count(ctx, string(class)+":"+key, p.Window)
	if err != nil {
		return false, err
	}
	return n >= p.Limit, nil
}

// Reset clears key in class, e.g. after a successful login.
func (l *Limiter) Reset(ctx context.Context, class Class, key string) error {
	return l.store.Reset(ctx, string(class)+":"+key)
}

// ErrLimited is the domain error returned when a limit is hit.
func ErrLimited() error {
	return dErrors.New(dErrors.CodeRateLimited, "too many requests, try again later")
}

func retryAfterSeconds(allowed bool, now, resetAt time.Time) int {
	if allowed {
		return 0
	}
	seconds := int(resetAt.Sub(now).Seconds())
	if seconds < 1 {
		return 1
	}
	return seconds
}
