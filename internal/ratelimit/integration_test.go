//go:build integration

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"confessional/pkg/testutil/containers"
)

func TestRedisStoreSlidingWindow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.GetManager().GetRedis(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	store := NewRedisStore(rc.Client)
	for i := 0; i < 3; i++ {
		res, err := store.AllowN(ctx, "auth:198.51.100.1", 1, 3, time.Minute)
		require.NoError(t, err)
		require.True(t, res.Allowed)
		require.Equal(t, 3-(i+1), res.Remaining)
	}
	res, err := store.AllowN(ctx, "auth:198.51.100.1", 1, 3, time.Minute)
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.Positive(t, res.RetryAfter)

	n, err := store.Count(ctx, "auth:198.51.100.1", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	require.NoError(t, store.Reset(ctx, "auth:198.51.100.1"))
	n, err = store.Count(ctx, "auth:198.51.100.1", time.Minute)
	require.NoError(t, err)
	require.Zero(t, n)
}
