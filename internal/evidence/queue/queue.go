// Package queue holds pending evidence deletions. Implementations: in-memory,
// PostgreSQL and Redis. All are safe for concurrent use by several workers.
package queue

import (
	"context"
	"time"

	id "confessional/pkg/domain"
)

// Deletion is one evidence blob still to be removed from the provider.
type Deletion struct {
	Key           string
	PrincipalID   id.PrincipalID
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
	Dead          bool
	CreatedAt     time.Time
}

// Queue is the retry queue consumed by the purge worker.
type Queue interface {
	// Enqueue adds a deletion due at d.NextAttemptAt. Enqueueing a key that is
	// already queued keeps the existing entry.
	Enqueue(ctx context.Context, d Deletion) error

	// Lease returns up to limit live entries due at now and hides them from
	// other workers until now+leaseFor.
	Lease(ctx context.Context, now time.Time, limit int, leaseFor time.Duration) ([]Deletion, error)

	// Complete removes a deleted entry.
	Complete(ctx context.Context, key string) error

	// Retry records a failed attempt and reschedules the entry.
	Retry(ctx context.Context, key string, attempts int, nextAttemptAt time.Time, lastError string) error

	// Bury marks the entry dead; it is never leased again.
	Bury(ctx context.Context, key string, attempts int, lastError string) error

	// Pending returns the number of live entries.
	Pending(ctx context.Context) (int64, error)
}
