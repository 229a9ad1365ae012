// Package purge retries evidence deletions that failed inline.
package purge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"confessional/internal/evidence"
	"confessional/internal/evidence/metrics"
	"confessional/internal/evidence/queue"
	audit "confessional/pkg/platform/audit"
)

// Worker leases due deletions, retries them with exponential backoff and
// buries entries that exhaust the attempt limit.
type Worker struct {
	queue       queue.Queue
	deleter     evidence.Deleter
	owner       evidence.Owner
	auditor     evidence.AuditPublisher
	metrics     *metrics.Metrics
	logger      *slog.Logger
	interval    time.Duration
	batchSize   int
	lease       time.Duration
	maxAttempts int
	backoff     evidence.Backoff
	now         func() time.Time
}

type Option func(*Worker)

func WithInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func WithMaxAttempts(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.maxAttempts = n
		}
	}
}

func WithBackoff(b evidence.Backoff) Option {
	return func(w *Worker) {
		if b.Base > 0 && b.Max >= b.Base {
			w.backoff = b
		}
	}
}

func WithLease(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.lease = d
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

func WithAuditPublisher(p evidence.AuditPublisher) Option {
	return func(w *Worker) {
		w.auditor = p
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

func New(q queue.Queue, deleter evidence.Deleter, owner evidence.Owner, opts ...Option) (*Worker, error) {
	if q == nil || deleter == nil || owner == nil {
		return nil, errors.New("queue, deleter and owner are required")
	}
	w := &Worker{
		queue:       q,
		deleter:     deleter,
		owner:       owner,
		logger:      slog.Default(),
		interval:    15 * time.Second,
		batchSize:   50,
		lease:       2 * time.Minute,
		maxAttempts: evidence.DefaultMaxAttempts,
		backoff:     evidence.DefaultBackoff(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start runs until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.InfoContext(ctx, "evidence purge worker started", "interval", w.interval)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("evidence purge worker stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.ErrorContext(ctx, "evidence purge failed", "error", err)
			}
		}
	}
}

// Result summarizes one purge pass.
type Result struct {
	Deleted     int
	Rescheduled int
	Buried      int
}

// RunOnce processes one batch of due deletions.
func (w *Worker) RunOnce(ctx context.Context) (Result, error) {
	var res Result
	now := w.now()

	due, err := w.queue.Lease(ctx, now, w.batchSize, w.lease)
	if err != nil {
		return res, fmt.Errorf("lease deletions: %w", err)
	}

	var errs []error
	for _, d := range due {
		if err := w.process(ctx, d, &res); err != nil {
			errs = append(errs, fmt.Errorf("deletion %s: %w", d.Key, err))
		}
	}

	if w.metrics != nil {
		if n, err := w.queue.Pending(ctx); err == nil {
			w.metrics.SetQueueDepth(n)
		}
	}
	return res, errors.Join(errs...)
}

func (w *Worker) process(ctx context.Context, d queue.Deletion, res *Result) error {
	delErr := w.deleter.Delete(ctx, d.Key)
	if delErr == nil {
		w.count("ok")
		if err := w.queue.Complete(ctx, d.Key); err != nil {
			return err
		}
		evidence.Finalize(ctx, w.owner, w.auditor, w.logger, d.PrincipalID, d.Key, w.now())
		res.Deleted++
		return nil
	}

	w.count("error")
	attempts := d.Attempts + 1
	if attempts >= w.maxAttempts {
		w.logger.ErrorContext(ctx, "evidence deletion permanently failed",
			"principal_id", d.PrincipalID,
			"attempts", attempts,
			"error", delErr,
		)
		if w.metrics != nil {
			w.metrics.IncPermanentFailure()
		}
		w.emitFailure(ctx, d, delErr)
		res.Buried++
		return w.queue.Bury(ctx, d.Key, attempts, delErr.Error())
	}

	next := w.now().Add(w.backoff.Delay(attempts))
	w.logger.WarnContext(ctx, "evidence deletion retry failed",
		"principal_id", d.PrincipalID,
		"attempts", attempts,
		"next_attempt_at", next,
		"error", delErr,
	)
	res.Rescheduled++
	return w.queue.Retry(ctx, d.Key, attempts, next, delErr.Error())
}

func (w *Worker) emitFailure(ctx context.Context, d queue.Deletion, cause error) {
	if w.auditor == nil {
		return
	}
	subject := audit.SystemActor
	if !d.PrincipalID.IsNil() {
		subject = d.PrincipalID.String()
	}
	if err := w.auditor.Emit(ctx, audit.Event{
		Action:    audit.ActionEvidencePurgeFailed,
		SubjectID: subject,
		ActorID:   audit.SystemActor,
		Reason:    cause.Error(),
	}); err != nil {
		w.logger.ErrorContext(ctx, "failed to record audit event", "action", audit.ActionEvidencePurgeFailed, "error", err)
	}
}

func (w *Worker) count(outcome string) {
	if w.metrics != nil {
		w.metrics.IncDeletion("retry", outcome)
	}
}
