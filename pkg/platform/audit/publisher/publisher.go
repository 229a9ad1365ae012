package publisher

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	dErrors "confessional/pkg/domain-errors"
	audit "confessional/pkg/platform/audit"
	"confessional/pkg/requestcontext"
)

// Publisher stamps and persists audit events. Synchronous by default so an
// approval and its audit row land together; WithAsyncBuffer trades that for latency.
type Publisher struct {
	store  audit.Store
	events chan audit.Event
	wg     sync.WaitGroup
	logger *slog.Logger
	async  bool
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithAsyncBuffer persists events from a background goroutine through a buffer of size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan audit.Event, size)
			p.async = true
		}
	}
}

// WithLogger sets a logger for async persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		if err := p.store.Append(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Error("failed to persist audit event",
				"error", err,
				"action", event.Action,
				"subject_id", event.SubjectID,
			)
		}
	}
}

// Close drains the async buffer.
func (p *Publisher) Close() {
	if p.async && p.events != nil {
		close(p.events)
		p.wg.Wait()
	}
}

// Emit fills ID, timestamp and request ID from ctx when unset, then persists.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if !p.async {
		return p.store.Append(ctx, event)
	}
	select {
	case p.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return dErrors.New(dErrors.CodeTransient, "audit buffer full")
	}
}

// ListBySubject returns events recorded against a principal or content item.
func (p *Publisher) ListBySubject(ctx context.Context, subjectID string) ([]audit.Event, error) {
	return p.store.ListBySubject(ctx, subjectID)
}
