package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"confessional/internal/moderation/models"
	id "confessional/pkg/domain"
	"confessional/pkg/platform/paging"
)

type reportStore interface {
	Create(ctx context.Context, r *models.Report) error
	List(ctx context.Context, after *paging.Cursor, limit int) ([]*models.Report, error)
}

type ContractSuite struct {
	suite.Suite
	newStore      func() reportStore
	newConfession func() id.ConfessionID
	store         reportStore
	ctx           context.Context
	now           time.Time
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &ContractSuite{
		newStore:      func() reportStore { return NewInMemory() },
		newConfession: id.NewConfessionID,
	})
}

func (s *ContractSuite) SetupTest() {
	s.store = s.newStore()
	s.ctx = context.Background()
	s.now = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
}

func (s *ContractSuite) report(confessionID id.ConfessionID, offset time.Duration) *models.Report {
	r := &models.Report{
		ID:            id.NewReportID(),
		ConfessionID:  confessionID,
		ReporterToken: "abababababababababababababababababababababababababababababababab",
		Reason:        "this is harassment",
		CreatedAt:     s.now.Add(offset),
	}
	s.Require().NoError(s.store.Create(s.ctx, r))
	return r
}

func (s *ContractSuite) TestDuplicatesAreKept() {
	cid := s.newConfession()
	s.report(cid, 0)
	s.report(cid, 0)

	all, err := s.store.List(s.ctx, nil, 10)
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *ContractSuite) TestListPagesNewestFirst() {
	cid := s.newConfession()
	var ids []id.ReportID
	for i := 0; i < 5; i++ {
		ids = append(ids, s.report(cid, time.Duration(i)*time.Second).ID)
	}

	first, err := s.store.List(s.ctx, nil, 3)
	s.Require().NoError(err)
	s.Require().Len(first, 3)
	s.Equal(ids[4], first[0].ID)
	s.Equal(ids[2], first[2].ID)

	last := first[2]
	rest, err := s.store.List(s.ctx, &paging.Cursor{At: last.CreatedAt, ID: uuid.UUID(last.ID)}, 3)
	s.Require().NoError(err)
	s.Require().Len(rest, 2)
	s.Equal(ids[1], rest[0].ID)
	s.Equal(ids[0], rest[1].ID)
}
