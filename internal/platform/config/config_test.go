package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "confessional/pkg/domain-errors"
)

func setValidEnv(t *testing.T) {
	t.Setenv("ANONYMIZER_SECRET", strings.Repeat("s", 32))
	t.Setenv("JWT_SIGNING_KEY", strings.Repeat("j", 32))
	t.Setenv("DATABASE_URL", "postgres://localhost/confessional")
}

func TestFromEnv(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		setValidEnv(t)

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, 10*time.Second, cfg.OperationTimeout)
		assert.Equal(t, int64(4<<20), cfg.Evidence.MaxBytes)
		assert.Equal(t, ProviderPostgres, cfg.Evidence.Provider)
		assert.Equal(t, 30*time.Second, cfg.Purge.BaseBackoff)
		assert.Equal(t, time.Hour, cfg.Purge.MaxBackoff)
		assert.Equal(t, 8, cfg.Purge.MaxAttempts)
		assert.Equal(t, "confessional.audit.events", cfg.AuditTopic)
		assert.Equal(t, RateLimitMemory, cfg.RateLimit.Backend)
		assert.Equal(t, int64(5<<20), cfg.MaxBodyBytes())
		assert.False(t, cfg.UsesRedis())
	})

	t.Run("short signing key is a configuration error", func(t *testing.T) {
		setValidEnv(t)
		t.Setenv("JWT_SIGNING_KEY", "signing-key")

		_, err := FromEnv()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
		assert.Contains(t, err.Error(), "JWT_SIGNING_KEY")
	})

	t.Run("redis rate limits need redis url", func(t *testing.T) {
		setValidEnv(t)
		t.Setenv("RATELIMIT_BACKEND", "redis")

		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "RATELIMIT_BACKEND=redis")
	})

	t.Run("missing anonymizer secret is a configuration error", func(t *testing.T) {
		setValidEnv(t)
		t.Setenv("ANONYMIZER_SECRET", "")

		_, err := FromEnv()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
		assert.Contains(t, err.Error(), "ANONYMIZER_SECRET")
	})

	t.Run("malformed duration is a configuration error", func(t *testing.T) {
		setValidEnv(t)
		t.Setenv("OPERATION_TIMEOUT", "soon")

		_, err := FromEnv()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
	})

	t.Run("redis queue needs redis url", func(t *testing.T) {
		setValidEnv(t)
		t.Setenv("EVIDENCE_QUEUE", "redis")

		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REDIS_URL")
	})

	t.Run("remote provider needs endpoint and key", func(t *testing.T) {
		setValidEnv(t)
		t.Setenv("EVIDENCE_PROVIDER", "remote")

		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EVIDENCE_REMOTE_URL")
	})

	t.Run("demo seeding is memory only", func(t *testing.T) {
		setValidEnv(t)
		t.Setenv("SEED_DEMO", "true")

		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SEED_DEMO")
	})

	t.Run("public base url must be absolute", func(t *testing.T) {
		setValidEnv(t)
		t.Setenv("EVIDENCE_PUBLIC_BASE_URL", "/evidence")

		_, err := FromEnv()
		require.Error(t, err)
	})
}

func TestAdminFromEnv(t *testing.T) {
	setAdminEnv := func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/confessional")
		t.Setenv("ADMIN_EMAIL", "root@example.com")
	}

	t.Run("defaults to the postgres deletion queue", func(t *testing.T) {
		setAdminEnv(t)

		cfg, err := AdminFromEnv()
		require.NoError(t, err)
		assert.Equal(t, QueuePostgres, cfg.EvidenceQueue)
	})

	t.Run("redis queue needs redis url", func(t *testing.T) {
		setAdminEnv(t)
		t.Setenv("EVIDENCE_QUEUE", "redis")

		_, err := AdminFromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REDIS_URL")
	})

	t.Run("memory queue is refused", func(t *testing.T) {
		setAdminEnv(t)
		t.Setenv("EVIDENCE_QUEUE", "memory")

		_, err := AdminFromEnv()
		require.Error(t, err)
	})
}
