package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "confessional/pkg/domain"
	"confessional/pkg/platform/sentinel"
	"confessional/pkg/testutil"
)

// ContractSuite runs the same behaviour checks against every Queue.
type ContractSuite struct {
	suite.Suite
	newQueue func() Queue
	reset    func()
	q        Queue
	ctx      context.Context
	now      time.Time
}

func (s *ContractSuite) SetupTest() {
	if s.reset != nil {
		s.reset()
	}
	s.q = s.newQueue()
	s.ctx = context.Background()
	s.now = time.Now().UTC().Truncate(time.Millisecond)
}

func (s *ContractSuite) enqueue(key string, due time.Time) {
	s.Require().NoError(s.q.Enqueue(s.ctx, Deletion{
		Key:           key,
		PrincipalID:   id.NewPrincipalID(),
		NextAttemptAt: due,
		CreatedAt:     s.now,
	}))
}

func (s *ContractSuite) TestLeaseReturnsOnlyDueEntries() {
	s.enqueue("evidence/due", s.now.Add(-time.Second))
	s.enqueue("evidence/later", s.now.Add(time.Hour))

	leased, err := s.q.Lease(s.ctx, s.now, 10, time.Minute)
	s.Require().NoError(err)
	s.Require().Len(leased, 1)
	s.Equal("evidence/due", leased[0].Key)
	s.False(leased[0].PrincipalID.IsNil())
}

func (s *ContractSuite) TestLeaseHidesEntryUntilLeaseExpires() {
	s.enqueue("evidence/a", s.now)

	first, err := s.q.Lease(s.ctx, s.now, 10, time.Minute)
	s.Require().NoError(err)
	s.Len(first, 1)

	second, err := s.q.Lease(s.ctx, s.now.Add(time.Second), 10, time.Minute)
	s.Require().NoError(err)
	s.Empty(second)

	third, err := s.q.Lease(s.ctx, s.now.Add(2*time.Minute), 10, time.Minute)
	s.Require().NoError(err)
	s.Len(third, 1)
}

func (s *ContractSuite) TestLeaseRespectsLimit() {
	for i := range 5 {
		s.enqueue("evidence/"+string(rune('a'+i)), s.now.Add(-time.Duration(i)*time.Second))
	}
	leased, err := s.q.Lease(s.ctx, s.now, 2, time.Minute)
	s.Require().NoError(err)
	s.Len(leased, 2)
}

func (s *ContractSuite) TestEnqueueIsIdempotent() {
	s.enqueue("evidence/a", s.now)
	s.enqueue("evidence/a", s.now.Add(time.Hour))

	n, err := s.q.Pending(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), n)
}

func (s *ContractSuite) TestRetryReschedules() {
	s.enqueue("evidence/a", s.now)
	_, err := s.q.Lease(s.ctx, s.now, 10, time.Minute)
	s.Require().NoError(err)

	s.Require().NoError(s.q.Retry(s.ctx, "evidence/a", 1, s.now.Add(30*time.Second), "boom"))

	none, err := s.q.Lease(s.ctx, s.now.Add(10*time.Second), 10, time.Minute)
	s.Require().NoError(err)
	s.Empty(none)

	leased, err := s.q.Lease(s.ctx, s.now.Add(31*time.Second), 10, time.Minute)
	s.Require().NoError(err)
	s.Require().Len(leased, 1)
	s.Equal(1, leased[0].Attempts)
	s.Equal("boom", leased[0].LastError)
}

func (s *ContractSuite) TestBuryRemovesFromRotation() {
	s.enqueue("evidence/a", s.now)
	s.Require().NoError(s.q.Bury(s.ctx, "evidence/a", 8, "gone for good"))

	leased, err := s.q.Lease(s.ctx, s.now.Add(time.Hour), 10, time.Minute)
	s.Require().NoError(err)
	s.Empty(leased)

	n, err := s.q.Pending(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *ContractSuite) TestCompleteRemoves() {
	s.enqueue("evidence/a", s.now)
	s.Require().NoError(s.q.Complete(s.ctx, "evidence/a"))
	s.ErrorIs(s.q.Complete(s.ctx, "evidence/a"), sentinel.ErrNotFound)
	s.ErrorIs(s.q.Retry(s.ctx, "evidence/a", 1, s.now, ""), sentinel.ErrNotFound)
}

func (s *ContractSuite) TestConcurrentLeasesDoNotOverlap() {
	for i := range 20 {
		s.enqueue("evidence/"+id.NewPrincipalID().String()+string(rune('a'+i)), s.now)
	}
	seen := make(chan string, 100)
	testutil.RunConcurrent(4, func(int) error {
		leased, err := s.q.Lease(s.ctx, s.now, 10, time.Minute)
		for _, d := range leased {
			seen <- d.Key
		}
		return err
	})
	close(seen)

	unique := map[string]bool{}
	for k := range seen {
		s.False(unique[k], "key %s leased twice", k)
		unique[k] = true
	}
	s.Len(unique, 20)
}

func TestMemoryQueue(t *testing.T) {
	suite.Run(t, &ContractSuite{newQueue: func() Queue { return NewMemory() }})
}

func TestMemoryQueueReusesFreedSlots(t *testing.T) {
	q := NewMemory()
	ctx := context.Background()
	_ = q.Enqueue(ctx, Deletion{Key: "a"})
	_ = q.Complete(ctx, "a")
	_ = q.Enqueue(ctx, Deletion{Key: "b"})
	if len(q.arena) != 1 {
		t.Fatalf("expected arena slot reuse, got %d slots", len(q.arena))
	}
	if _, ok := q.Get("b"); !ok {
		t.Fatalf("expected entry b")
	}
}
