package purge

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"confessional/internal/evidence"
	"confessional/internal/evidence/queue"
	id "confessional/pkg/domain"
	audit "confessional/pkg/platform/audit"
)

type stubDeleter struct {
	mu    sync.Mutex
	fail  bool
	calls int
}

func (d *stubDeleter) Delete(context.Context, string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.fail {
		return errors.New("provider unavailable")
	}
	return nil
}

type stubOwner struct {
	cleared []string
}

func (o *stubOwner) ClearEvidence(_ context.Context, _ id.PrincipalID, key string, _ time.Time) error {
	o.cleared = append(o.cleared, key)
	return nil
}

type auditSink struct{ store *audit.InMemoryStore }

func (a auditSink) Emit(ctx context.Context, e audit.Event) error { return a.store.Append(ctx, e) }

type WorkerSuite struct {
	suite.Suite
	queue   *queue.Memory
	deleter *stubDeleter
	owner   *stubOwner
	audit   *audit.InMemoryStore
	logs    *bytes.Buffer
	now     time.Time
	worker  *Worker
}

func TestWorkerSuite(t *testing.T) {
	suite.Run(t, new(WorkerSuite))
}

func (s *WorkerSuite) SetupTest() {
	s.queue = queue.NewMemory()
	s.deleter = &stubDeleter{}
	s.owner = &stubOwner{}
	s.audit = audit.NewInMemoryStore()
	s.logs = &bytes.Buffer{}
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	w, err := New(s.queue, s.deleter, s.owner,
		WithLogger(slog.New(slog.NewJSONHandler(s.logs, nil))),
		WithAuditPublisher(auditSink{s.audit}),
		WithClock(func() time.Time { return s.now }),
		WithMaxAttempts(3),
	)
	s.Require().NoError(err)
	s.worker = w
}

func (s *WorkerSuite) enqueue(key string, attempts int) {
	s.Require().NoError(s.queue.Enqueue(context.Background(), queue.Deletion{
		Key:           key,
		PrincipalID:   id.NewPrincipalID(),
		Attempts:      attempts,
		NextAttemptAt: s.now,
		CreatedAt:     s.now,
	}))
}

func (s *WorkerSuite) TestNewRequiresDependencies() {
	_, err := New(nil, s.deleter, s.owner)
	s.Error(err)
}

func (s *WorkerSuite) TestSuccessCompletesAndClearsOwner() {
	s.enqueue("evidence/a", 1)

	res, err := s.worker.RunOnce(context.Background())
	s.Require().NoError(err)
	s.Equal(1, res.Deleted)
	s.Equal([]string{"evidence/a"}, s.owner.cleared)
	_, ok := s.queue.Get("evidence/a")
	s.False(ok)
	s.Equal([]audit.Action{audit.ActionEvidenceDeleted}, s.audit.Actions())
}

func (s *WorkerSuite) TestFailureReschedulesWithBackoff() {
	s.deleter.fail = true
	s.enqueue("evidence/a", 1)

	res, err := s.worker.RunOnce(context.Background())
	s.Require().NoError(err)
	s.Equal(1, res.Rescheduled)

	d, ok := s.queue.Get("evidence/a")
	s.Require().True(ok)
	s.Equal(2, d.Attempts)
	s.Equal(s.now.Add(time.Minute), d.NextAttemptAt)
	s.Equal("provider unavailable", d.LastError)
}

func (s *WorkerSuite) TestNotDueEntriesAreSkipped() {
	s.Require().NoError(s.queue.Enqueue(context.Background(), queue.Deletion{
		Key: "evidence/later", NextAttemptAt: s.now.Add(time.Hour),
	}))
	res, err := s.worker.RunOnce(context.Background())
	s.Require().NoError(err)
	s.Zero(res.Deleted + res.Rescheduled + res.Buried)
	s.Zero(s.deleter.calls)
}

func (s *WorkerSuite) TestExhaustedEntryIsBuriedAndLogged() {
	s.deleter.fail = true
	s.enqueue("evidence/a", 2)

	res, err := s.worker.RunOnce(context.Background())
	s.Require().NoError(err)
	s.Equal(1, res.Buried)

	d, ok := s.queue.Get("evidence/a")
	s.Require().True(ok)
	s.True(d.Dead)
	s.Equal(3, d.Attempts)
	s.Contains(s.logs.String(), "evidence deletion permanently failed")
	s.Contains(s.logs.String(), `"level":"ERROR"`)
	s.Equal([]audit.Action{audit.ActionEvidencePurgeFailed}, s.audit.Actions())

	s.deleter.fail = false
	s.now = s.now.Add(24 * time.Hour)
	res, err = s.worker.RunOnce(context.Background())
	s.Require().NoError(err)
	s.Zero(res.Deleted)
}

func (s *WorkerSuite) TestRetriesUntilSuccess() {
	s.deleter.fail = true
	s.enqueue("evidence/a", 1)

	_, err := s.worker.RunOnce(context.Background())
	s.Require().NoError(err)

	s.deleter.fail = false
	s.now = s.now.Add(evidence.DefaultBackoff().Delay(2))
	res, err := s.worker.RunOnce(context.Background())
	s.Require().NoError(err)
	s.Equal(1, res.Deleted)
}

func (s *WorkerSuite) TestStartStopsOnCancel() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.worker.Start(ctx) }()
	cancel()
	select {
	case err := <-done:
		s.ErrorIs(err, context.Canceled)
	case <-time.After(5 * time.Second):
		s.Fail("worker did not stop")
	}
}
