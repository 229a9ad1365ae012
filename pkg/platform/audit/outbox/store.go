package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the relay side of the outbox. Entries are written together with
// their audit row by the audit store.
type Store interface {
	// FetchUnprocessed returns up to limit pending entries, oldest first.
	// Rows are locked with SKIP LOCKED so concurrent relays do not collide.
	FetchUnprocessed(ctx context.Context, limit int) ([]*Entry, error)

	// MarkProcessed records a successful publish.
	MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) error

	// CountPending returns the number of unpublished entries.
	CountPending(ctx context.Context) (int64, error)

	// DeleteProcessedBefore removes published entries older than before.
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}
