package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"confessional/internal/access"
	"confessional/internal/evidence"
	"confessional/internal/evidence/provider"
	"confessional/internal/evidence/queue"
	"confessional/internal/verification/models"
	"confessional/internal/verification/service"
	"confessional/internal/verification/store"
	dErrors "confessional/pkg/domain-errors"
	"confessional/pkg/testutil"
)

// switchableProvider wraps the memory provider. Deletes fail while
// failDeletes is set and block until release is closed when it is non-nil.
type switchableProvider struct {
	*provider.Memory
	failDeletes atomic.Bool
	release     chan struct{}
}

func (p *switchableProvider) Delete(ctx context.Context, key string) error {
	if p.failDeletes.Load() {
		return errors.New("object store offline")
	}
	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return p.Memory.Delete(ctx, key)
}

// StateSuite checks state machine properties over a real in-memory store,
// evidence adapter and retry queue.
type StateSuite struct {
	suite.Suite
	ctx     context.Context
	store   *store.InMemoryStore
	blobs   *switchableProvider
	queue   *queue.Memory
	purger  *evidence.Purger
	service *service.Service
	admin   *models.Principal
}

func TestStateSuite(t *testing.T) {
	suite.Run(t, new(StateSuite))
}

func (s *StateSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewInMemory()
	s.blobs = &switchableProvider{Memory: provider.NewMemory()}
	s.queue = queue.NewMemory()

	adapter, err := evidence.NewAdapter(s.blobs, "https://cdn.test")
	s.Require().NoError(err)
	s.purger, err = evidence.NewPurger(adapter, s.queue, s.store)
	s.Require().NoError(err)

	s.service, err = service.New(s.store, adapter,
		service.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		service.WithEvidencePurger(s.purger),
	)
	s.Require().NoError(err)

	s.admin = testutil.NewPrincipalBuilder().Admin().Build()
	s.Require().NoError(s.store.Create(s.ctx, s.admin))
}

func (s *StateSuite) register(email string) *models.Principal {
	p, err := s.service.Register(s.ctx, models.RegisterCommand{
		Email:       email,
		Password:    "long enough password",
		Evidence:    testutil.PNGBytes,
		ContentType: "image/png",
	})
	s.Require().NoError(err)
	return p
}

func (s *StateSuite) TestAuthorizeAcrossStatusAndBan() {
	cases := []struct {
		status    models.Status
		banned    bool
		wantRead  bool
		wantWrite bool
	}{
		{models.StatusPending, false, false, false},
		{models.StatusPending, true, false, false},
		{models.StatusApproved, false, true, true},
		{models.StatusApproved, true, false, false},
		{models.StatusRejected, false, false, false},
		{models.StatusRejected, true, false, false},
	}
	for _, tc := range cases {
		p := testutil.NewPrincipalBuilder().WithStatus(tc.status).Build()
		p.Banned = tc.banned
		s.Require().NoError(s.store.Create(s.ctx, p))

		got, err := s.service.Authorize(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(tc.wantRead, got.CanRead, "%s banned=%v", tc.status, tc.banned)
		s.Equal(tc.wantWrite, got.CanWrite, "%s banned=%v", tc.status, tc.banned)
	}
}

func (s *StateSuite) TestConcurrentAdjudicationHasOneWinner() {
	p := s.register("race@example.com")

	successes, errs := testutil.RunConcurrentCollect(20, func(i int) error {
		if i%2 == 0 {
			_, err := s.service.Approve(s.ctx, s.admin.ID, p.ID)
			return err
		}
		_, err := s.service.Reject(s.ctx, s.admin.ID, p.ID)
		return err
	})

	s.Equal(int32(1), successes)
	s.Len(errs, 19)
	for _, err := range errs {
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	}

	s.purger.Wait()
	final, err := s.service.Lookup(s.ctx, p.ID)
	s.Require().NoError(err)
	s.True(final.Status.IsTerminal())
	s.False(final.HasEvidence())
	s.Zero(s.blobs.Len())
}

func (s *StateSuite) TestTerminalStatesDoNotMove() {
	p := s.register("terminal@example.com")
	_, err := s.service.Reject(s.ctx, s.admin.ID, p.ID)
	s.Require().NoError(err)

	_, err = s.service.Approve(s.ctx, s.admin.ID, p.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	_, err = s.service.Reject(s.ctx, s.admin.ID, p.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	err = s.service.SetBanned(s.ctx, s.admin.ID, p.ID, true)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
}

func (s *StateSuite) TestDeletionFailureDoesNotBlockApproval() {
	p := s.register("offline@example.com")
	s.blobs.failDeletes.Store(true)

	approved, err := s.service.Approve(s.ctx, s.admin.ID, p.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, approved.Status)

	s.purger.Wait()
	queued, ok := s.queue.Get(p.EvidenceKey)
	s.Require().True(ok)
	s.Equal(p.ID, queued.PrincipalID)
	s.Equal(1, queued.Attempts)

	held, err := s.service.Lookup(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.EvidenceKey, held.EvidenceKey)

	_, err = s.service.Require(s.ctx, p.ID, access.ActionAuthorContent)
	s.NoError(err)
}

func (s *StateSuite) TestBanIsIdempotentAndRevokesCapability() {
	p := s.register("ban@example.com")
	_, err := s.service.Approve(s.ctx, s.admin.ID, p.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.service.SetBanned(s.ctx, s.admin.ID, p.ID, true))
	s.Require().NoError(s.service.SetBanned(s.ctx, s.admin.ID, p.ID, true))

	auth, err := s.service.Authorize(s.ctx, p.ID)
	s.Require().NoError(err)
	s.False(auth.CanWrite)

	looked, err := s.service.Lookup(s.ctx, p.ID)
	s.Require().NoError(err)
	s.True(looked.Banned)
}

func (s *StateSuite) TestApprovalDoesNotWaitForEvidenceDeletion() {
	p := s.register("slow@example.com")
	release := make(chan struct{})
	s.blobs.release = release

	start := time.Now()
	approved, err := s.service.Approve(s.ctx, s.admin.ID, p.ID)
	elapsed := time.Since(start)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, approved.Status)
	s.Less(elapsed, time.Second, "approval must not wait on the evidence provider")

	close(release)
	s.purger.Wait()
	s.Zero(s.blobs.Len())
	held, err := s.service.Lookup(s.ctx, p.ID)
	s.Require().NoError(err)
	s.False(held.HasEvidence())
}

func (s *StateSuite) TestBootstrapAdminPurgesPendingEvidence() {
	p := s.register("operator@example.com")
	s.Require().Equal(1, s.blobs.Len())

	admin, err := s.service.BootstrapAdmin(s.ctx, "operator@example.com", "another long password")
	s.Require().NoError(err)
	s.Equal(p.ID, admin.ID)
	s.Equal(models.StatusApproved, admin.Status)
	s.Equal(models.RoleAdmin, admin.Role)

	s.purger.Wait()
	s.Zero(s.blobs.Len())
	held, err := s.service.Lookup(s.ctx, p.ID)
	s.Require().NoError(err)
	s.False(held.HasEvidence())
}

func (s *StateSuite) TestBootstrapAdminKeepsRejectedOut() {
	p := s.register("turned-away@example.com")
	_, err := s.service.Reject(s.ctx, s.admin.ID, p.ID)
	s.Require().NoError(err)

	_, err = s.service.BootstrapAdmin(s.ctx, "turned-away@example.com", "another long password")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	held, err := s.service.Lookup(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, held.Status)
	s.NotEqual(models.RoleAdmin, held.Role)
}
