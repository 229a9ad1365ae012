package seeder

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	confessionservice "confessional/internal/confession/service"
	confessionstore "confessional/internal/confession/store"
	"confessional/internal/evidence"
	"confessional/internal/evidence/provider"
	"confessional/internal/evidence/queue"
	moderationservice "confessional/internal/moderation/service"
	moderationstore "confessional/internal/moderation/store"
	vmodels "confessional/internal/verification/models"
	verificationservice "confessional/internal/verification/service"
	verificationstore "confessional/internal/verification/store"
	"confessional/pkg/platform/paging"
	"confessional/pkg/platform/privacy"
)

type SeederSuite struct {
	suite.Suite
	ctx          context.Context
	evidence     *provider.Memory
	purger       *evidence.Purger
	verification *verificationservice.Service
	moderation   *moderationservice.Service
	seeder       *Seeder
}

func TestSeederSuite(t *testing.T) {
	suite.Run(t, new(SeederSuite))
}

func (s *SeederSuite) SetupTest() {
	s.ctx = context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	anonymizer, err := privacy.NewAnonymizer(strings.Repeat("x", privacy.MinSecretLength))
	s.Require().NoError(err)

	principals := verificationstore.NewInMemory()
	s.evidence = provider.NewMemory()
	adapter, err := evidence.NewAdapter(s.evidence, "https://evidence.test")
	s.Require().NoError(err)
	s.purger, err = evidence.NewPurger(adapter, queue.NewMemory(), principals)
	s.Require().NoError(err)

	s.verification, err = verificationservice.New(principals, adapter,
		verificationservice.WithEvidencePurger(s.purger))
	s.Require().NoError(err)
	confessions, err := confessionservice.New(confessionstore.NewInMemory(), s.verification, anonymizer)
	s.Require().NoError(err)
	s.moderation, err = moderationservice.New(moderationstore.NewInMemory(), s.verification, confessions, anonymizer)
	s.Require().NoError(err)

	s.seeder = New(s.verification, confessions, s.moderation, logger)
}

func (s *SeederSuite) TestSeedAll() {
	s.Require().NoError(s.seeder.SeedAll(s.ctx))

	admin, err := s.verification.BootstrapAdmin(s.ctx, AdminEmail, DemoPassword)
	s.Require().NoError(err, "bootstrapping an existing admin is idempotent")

	s.Run("principals land in every state", func() {
		for status, want := range map[vmodels.Status]int{
			vmodels.StatusPending:  1,
			vmodels.StatusRejected: 1,
		} {
			listed, err := s.verification.ListPrincipals(s.ctx, admin.ID, vmodels.ListFilter{Status: &status})
			s.Require().NoError(err)
			s.Len(listed, want, string(status))
		}
	})

	s.Run("adjudicated evidence is purged", func() {
		s.purger.Wait()
		// only eve is still pending
		s.Equal(1, s.evidence.Len())
	})

	s.Run("the spam post is reported", func() {
		page, err := s.moderation.ListReports(s.ctx, admin.ID, paging.Request{})
		s.Require().NoError(err)
		s.Len(page.Items, 2)
	})
}

func (s *SeederSuite) TestSeedAllTwiceFails() {
	s.Require().NoError(s.seeder.SeedAll(s.ctx))
	s.Error(s.seeder.SeedAll(s.ctx))
}
