package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "confessional/pkg/domain-errors"
	audit "confessional/pkg/platform/audit"
	"confessional/pkg/requestcontext"
)

type failingStore struct {
	err error
}

func (s *failingStore) Append(context.Context, audit.Event) error { return s.err }

func (s *failingStore) ListBySubject(context.Context, string) ([]audit.Event, error) {
	return nil, nil
}

type blockingStore struct {
	release chan struct{}
}

func (s *blockingStore) Append(context.Context, audit.Event) error {
	<-s.release
	return nil
}

func (s *blockingStore) ListBySubject(context.Context, string) ([]audit.Event, error) {
	return nil, nil
}

func TestPublisher_EmitStampsAndStores(t *testing.T) {
	store := audit.NewInMemoryStore()
	pub := New(store)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithRequestID(requestcontext.WithTime(context.Background(), now), "req-9")

	subject := uuid.NewString()
	require.NoError(t, pub.Emit(ctx, audit.Event{Action: audit.ActionPrincipalApproved, SubjectID: subject}))

	events, err := pub.ListBySubject(ctx, subject)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEqual(t, uuid.Nil, events[0].ID)
	assert.Equal(t, now, events[0].Timestamp)
	assert.Equal(t, "req-9", events[0].RequestID)
}

func TestPublisher_SyncPropagatesStoreError(t *testing.T) {
	pub := New(&failingStore{err: errors.New("db down")})
	err := pub.Emit(context.Background(), audit.Event{Action: audit.ActionContentRemoved})
	assert.EqualError(t, err, "db down")
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := audit.NewInMemoryStore()
	pub := New(store, WithAsyncBuffer(8))

	for i := 0; i < 5; i++ {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{Action: audit.ActionContentReported, SubjectID: "c1"}))
	}
	pub.Close()

	assert.Len(t, store.All(), 5)
}

func TestPublisher_AsyncFullBufferIsTransient(t *testing.T) {
	store := &blockingStore{release: make(chan struct{})}
	pub := New(store, WithAsyncBuffer(1))

	var lastErr error
	for i := 0; i < 3; i++ {
		if err := pub.Emit(context.Background(), audit.Event{Action: audit.ActionContentReported}); err != nil {
			lastErr = err
		}
	}
	close(store.release)
	pub.Close()

	require.Error(t, lastErr)
	assert.True(t, dErrors.HasCode(lastErr, dErrors.CodeTransient))
}
