package evidence

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"confessional/internal/evidence/metrics"
	"confessional/internal/evidence/queue"
	id "confessional/pkg/domain"
	audit "confessional/pkg/platform/audit"
	"confessional/pkg/platform/sentinel"
)

// Deleter removes a blob; missing blobs count as deleted.
type Deleter interface {
	Delete(ctx context.Context, key string) error
}

// Owner drops a principal's evidence reference once the blob is gone.
type Owner interface {
	ClearEvidence(ctx context.Context, principalID id.PrincipalID, key string, at time.Time) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// DefaultInlineSlots bounds concurrent inline deletions. Work beyond it goes
// straight to the retry queue.
const DefaultInlineSlots = 16

// Purger deletes evidence after adjudication: one background attempt, then the
// retry queue. Schedule returns immediately and never reports an error.
type Purger struct {
	deleter Deleter
	queue   queue.Queue
	owner   Owner
	auditor AuditPublisher
	backoff Backoff
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time

	slots    chan struct{}
	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

type PurgerOption func(*Purger)

func WithPurgerLogger(logger *slog.Logger) PurgerOption {
	return func(p *Purger) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithPurgerMetrics(m *metrics.Metrics) PurgerOption {
	return func(p *Purger) {
		p.metrics = m
	}
}

func WithPurgerAudit(publisher AuditPublisher) PurgerOption {
	return func(p *Purger) {
		p.auditor = publisher
	}
}

func WithPurgerBackoff(b Backoff) PurgerOption {
	return func(p *Purger) {
		if b.Base > 0 && b.Max >= b.Base {
			p.backoff = b
		}
	}
}

func WithPurgerClock(now func() time.Time) PurgerOption {
	return func(p *Purger) {
		if now != nil {
			p.now = now
		}
	}
}

// WithInlineSlots sets how many inline deletions may run at once.
func WithInlineSlots(n int) PurgerOption {
	return func(p *Purger) {
		if n > 0 {
			p.slots = make(chan struct{}, n)
		}
	}
}

func NewPurger(deleter Deleter, q queue.Queue, owner Owner, opts ...PurgerOption) (*Purger, error) {
	if deleter == nil || q == nil || owner == nil {
		return nil, errors.New("deleter, queue and owner are required")
	}
	p := &Purger{
		deleter: deleter,
		queue:   q,
		owner:   owner,
		backoff: DefaultBackoff(),
		logger:  slog.Default(),
		now:     time.Now,
		slots:   make(chan struct{}, DefaultInlineSlots),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Schedule starts a background deletion of key and returns. A failed attempt
// is queued with backoff. When every slot is busy, or the purger is draining,
// the deletion is queued as due immediately for the purge worker.
func (p *Purger) Schedule(ctx context.Context, principalID id.PrincipalID, key string) {
	if key == "" {
		return
	}
	ctx = context.WithoutCancel(ctx)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.count("inline", "deferred")
		p.enqueue(ctx, principalID, key, 0, p.now(), "")
		return
	}
	select {
	case p.slots <- struct{}{}:
	default:
		p.mu.Unlock()
		p.count("inline", "deferred")
		p.enqueue(ctx, principalID, key, 0, p.now(), "")
		return
	}
	p.inflight.Add(1)
	p.mu.Unlock()

	go func() {
		defer func() {
			<-p.slots
			p.inflight.Done()
		}()
		p.attempt(ctx, principalID, key)
	}()
}

func (p *Purger) attempt(ctx context.Context, principalID id.PrincipalID, key string) {
	err := p.deleter.Delete(ctx, key)
	if err == nil {
		p.count("inline", "ok")
		Finalize(ctx, p.owner, p.auditor, p.logger, principalID, key, p.now())
		return
	}
	p.count("inline", "error")
	p.logger.WarnContext(ctx, "evidence deletion failed; queued for retry",
		"principal_id", principalID,
		"error", err,
	)
	now := p.now()
	p.enqueue(ctx, principalID, key, 1, now.Add(p.backoff.Delay(1)), err.Error())
}

func (p *Purger) enqueue(ctx context.Context, principalID id.PrincipalID, key string, attempts int, due time.Time, lastErr string) {
	if err := p.queue.Enqueue(ctx, queue.Deletion{
		Key:           key,
		PrincipalID:   principalID,
		Attempts:      attempts,
		NextAttemptAt: due,
		LastError:     lastErr,
		CreatedAt:     p.now(),
	}); err != nil {
		p.logger.ErrorContext(ctx, "evidence deletion could not be queued",
			"principal_id", principalID,
			"error", err,
		)
	}
}

// Wait blocks until every running inline deletion has finished.
func (p *Purger) Wait() {
	p.inflight.Wait()
}

// Drain stops starting inline deletions and waits for running ones until ctx
// is done. Later Schedule calls go straight to the queue.
func (p *Purger) Drain(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Deferred hands deletions straight to the retry queue, due immediately. It
// serves processes with no provider wired, such as the createadmin command;
// the server's purge worker performs the delete.
type Deferred struct {
	queue  queue.Queue
	logger *slog.Logger
	now    func() time.Time
}

func NewDeferred(q queue.Queue, logger *slog.Logger) *Deferred {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deferred{queue: q, logger: logger, now: time.Now}
}

// Schedule queues key for the purge worker.
func (d *Deferred) Schedule(ctx context.Context, principalID id.PrincipalID, key string) {
	if key == "" {
		return
	}
	now := d.now()
	if err := d.queue.Enqueue(ctx, queue.Deletion{
		Key:           key,
		PrincipalID:   principalID,
		NextAttemptAt: now,
		CreatedAt:     now,
	}); err != nil {
		d.logger.ErrorContext(ctx, "evidence deletion could not be queued",
			"principal_id", principalID,
			"error", err,
		)
	}
}

func (p *Purger) count(path, outcome string) {
	if p.metrics != nil {
		p.metrics.IncDeletion(path, outcome)
	}
}

// Finalize clears the owner's reference and records the deletion. Shared by
// the inline path and the purge worker. A principal that no longer exists, or
// never did (an aborted registration), has nothing to clear.
func Finalize(ctx context.Context, owner Owner, auditor AuditPublisher, logger *slog.Logger, principalID id.PrincipalID, key string, at time.Time) {
	if !principalID.IsNil() {
		if err := owner.ClearEvidence(ctx, principalID, key, at); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			logger.ErrorContext(ctx, "failed to clear evidence reference", "principal_id", principalID, "error", err)
		}
	}
	if auditor == nil {
		return
	}
	subject := audit.SystemActor
	if !principalID.IsNil() {
		subject = principalID.String()
	}
	if err := auditor.Emit(ctx, audit.Event{
		Action:    audit.ActionEvidenceDeleted,
		SubjectID: subject,
		ActorID:   audit.SystemActor,
	}); err != nil {
		logger.ErrorContext(ctx, "failed to record audit event", "action", audit.ActionEvidenceDeleted, "error", err)
	}
}
