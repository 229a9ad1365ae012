// Package worker relays outbox entries to Kafka.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"confessional/internal/platform/kafka/producer"
	"confessional/pkg/platform/audit/outbox"
	"confessional/pkg/platform/audit/outbox/metrics"
)

// Producer publishes a single record and waits for the acknowledgement.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// Worker polls the outbox table and publishes events to Kafka.
// Delivery is at least once: an entry published but not marked is sent again.
type Worker struct {
	store        outbox.Store
	producer     Producer
	topic        string
	batchSize    int
	pollInterval time.Duration
	retention    time.Duration
	metrics      *metrics.Metrics
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures the Worker.
type Option func(*Worker)

// WithTopic sets the Kafka topic for publishing.
func WithTopic(topic string) Option {
	return func(w *Worker) {
		if topic != "" {
			w.topic = topic
		}
	}
}

// WithBatchSize sets the maximum number of entries fetched per poll.
func WithBatchSize(size int) Option {
	return func(w *Worker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

// WithPollInterval sets the interval between polls.
func WithPollInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.pollInterval = interval
		}
	}
}

// WithRetention sets how long published entries are kept before pruning.
func WithRetention(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.retention = d
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates an outbox relay.
func New(store outbox.Store, prod Producer, opts ...Option) (*Worker, error) {
	if store == nil || prod == nil {
		return nil, fmt.Errorf("outbox store and producer are required")
	}
	w := &Worker{
		store:        store,
		producer:     prod,
		topic:        "confessional.audit.events",
		batchSize:    100,
		pollInterval: 500 * time.Millisecond,
		retention:    7 * 24 * time.Hour,
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Start polls until ctx is cancelled, then drains what is left with a short deadline.
func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	pruneEvery := time.NewTicker(time.Hour)
	defer pruneEvery.Stop()

	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.ErrorContext(ctx, "outbox relay failed", "error", err)
			}
		case <-pruneEvery.C:
			if n, err := w.store.DeleteProcessedBefore(ctx, w.now().Add(-w.retention)); err != nil {
				w.logger.ErrorContext(ctx, "outbox prune failed", "error", err)
			} else if n > 0 {
				w.logger.InfoContext(ctx, "outbox pruned", "deleted", n)
			}
		}
	}
}

// RunOnce publishes one batch and returns how many entries were marked processed.
// Per-entry failures are joined; the remaining entries are still attempted.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	start := w.now()

	entries, err := w.store.FetchUnprocessed(ctx, w.batchSize)
	if err != nil {
		w.incFailures()
		return 0, fmt.Errorf("fetch outbox entries: %w", err)
	}
	if w.metrics != nil {
		w.metrics.ObserveBatchSize(len(entries))
	}

	var errs []error
	published := 0
	for _, entry := range entries {
		if err := w.publish(ctx, entry); err != nil {
			w.incFailures()
			errs = append(errs, fmt.Errorf("publish %s: %w", entry.ID, err))
			continue
		}
		if err := w.store.MarkProcessed(ctx, entry.ID, w.now()); err != nil {
			errs = append(errs, fmt.Errorf("mark %s processed: %w", entry.ID, err))
			continue
		}
		published++
		if w.metrics != nil {
			w.metrics.IncPublished()
		}
	}

	if w.metrics != nil {
		w.metrics.ObservePollDuration(w.now().Sub(start).Seconds())
		if pending, err := w.store.CountPending(ctx); err == nil {
			w.metrics.SetPendingDepth(pending)
		}
	}
	return published, errors.Join(errs...)
}

func (w *Worker) publish(ctx context.Context, entry *outbox.Entry) error {
	return w.producer.Produce(ctx, &producer.Message{
		Topic: w.topic,
		Key:   []byte(entry.ID.String()),
		Value: entry.Payload,
		Headers: map[string]string{
			"event_type": entry.EventType,
			"subject_id": entry.SubjectID,
		},
	})
}

func (w *Worker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for {
		n, err := w.RunOnce(ctx)
		if err != nil {
			w.logger.Error("outbox drain stopped", "error", err)
			return
		}
		if n == 0 {
			return
		}
	}
}

func (w *Worker) incFailures() {
	if w.metrics != nil {
		w.metrics.IncPublishFailures()
	}
}
