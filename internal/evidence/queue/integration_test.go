//go:build integration

package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	id "confessional/pkg/domain"

	"confessional/pkg/testutil/containers"
)

func TestPostgresQueue(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pg := containers.GetManager().GetPostgres(t)
	suite.Run(t, &ContractSuite{
		newQueue: func() Queue { return NewPostgres(pg.DB) },
		reset: func() {
			if err := pg.TruncateTables(context.Background(), "evidence_deletions"); err != nil {
				t.Fatalf("truncate: %v", err)
			}
		},
	})
}

func TestRedisQueue(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.GetManager().GetRedis(t)
	suite.Run(t, &ContractSuite{
		newQueue: func() Queue { return NewRedis(rc.Client) },
		reset: func() {
			if err := rc.FlushAll(context.Background()); err != nil {
				t.Fatalf("flush: %v", err)
			}
		},
	})
}

func TestRedisEnqueueReadmitsStrandedEntry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	rc := containers.GetManager().GetRedis(t)
	require.NoError(t, rc.FlushAll(ctx))
	q := NewRedis(rc.Client)

	// a hash without a due-set member, as left by an interrupted write
	require.NoError(t, rc.Client.HSet(ctx, itemPrefix+"evidence/stranded", "key", "evidence/stranded").Err())

	now := time.Now().UTC().Truncate(time.Millisecond)
	principalID := id.NewPrincipalID()
	require.NoError(t, q.Enqueue(ctx, Deletion{
		Key: "evidence/stranded", PrincipalID: principalID, NextAttemptAt: now, CreatedAt: now,
	}))

	leased, err := q.Lease(ctx, now, 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, leased, 1)
	require.Equal(t, principalID, leased[0].PrincipalID)

	// a live entry is not overwritten
	require.NoError(t, q.Enqueue(ctx, Deletion{Key: "evidence/stranded", Attempts: 5, NextAttemptAt: now, CreatedAt: now}))
	leased, err = q.Lease(ctx, now.Add(2*time.Minute), 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, leased, 1)
	require.Zero(t, leased[0].Attempts)
	require.Equal(t, principalID, leased[0].PrincipalID)
}
