// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	dErrors "confessional/pkg/domain-errors"
	"confessional/pkg/platform/privacy"
)

// Evidence provider names accepted by EVIDENCE_PROVIDER.
const (
	ProviderMemory   = "memory"
	ProviderPostgres = "postgres"
	ProviderRemote   = "remote"
)

// Deletion queue backends accepted by EVIDENCE_QUEUE.
const (
	QueueMemory   = "memory"
	QueuePostgres = "postgres"
	QueueRedis    = "redis"
)

// Rate limit backends accepted by RATELIMIT_BACKEND.
const (
	RateLimitMemory = "memory"
	RateLimitRedis  = "redis"
)

// minSigningKeyLength matches the HS256 key floor enforced by the token service.
const minSigningKeyLength = 32

// Server captures everything cmd/server needs to wire the process.
type Server struct {
	Addr             string        `env:"CONFESSIONAL_ADDR" envDefault:":8080"`
	Environment      string        `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	OperationTimeout time.Duration `env:"OPERATION_TIMEOUT" envDefault:"10s"`
	TrustedProxies   []string      `env:"TRUSTED_PROXIES" envSeparator:","`
	// SeedDemo fills in-memory stores with demo accounts at startup.
	SeedDemo bool `env:"SEED_DEMO" envDefault:"false"`

	AnonymizerSecret string        `env:"ANONYMIZER_SECRET"`
	JWTSigningKey    string        `env:"JWT_SIGNING_KEY"`
	JWTIssuer        string        `env:"JWT_ISSUER" envDefault:"confessional"`
	JWTAudience      string        `env:"JWT_AUDIENCE" envDefault:"confessional-api"`
	TokenTTL         time.Duration `env:"TOKEN_TTL" envDefault:"1h"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	KafkaBrokers string `env:"KAFKA_BROKERS"`
	KafkaAcks    string `env:"KAFKA_ACKS" envDefault:"all"`
	AuditTopic   string `env:"AUDIT_TOPIC" envDefault:"confessional.audit.events"`

	Evidence  Evidence
	Purge     Purge
	RateLimit RateLimit
}

// RateLimit selects where sliding windows are kept.
type RateLimit struct {
	Backend  string `env:"RATELIMIT_BACKEND" envDefault:"memory"`
	Disabled bool   `env:"RATELIMIT_DISABLED" envDefault:"false"`
}

// Evidence configures the evidence store adapter and its provider.
type Evidence struct {
	Provider      string `env:"EVIDENCE_PROVIDER" envDefault:"postgres"`
	Queue         string `env:"EVIDENCE_QUEUE" envDefault:"postgres"`
	PublicBaseURL string `env:"EVIDENCE_PUBLIC_BASE_URL" envDefault:"http://localhost:8080/evidence"`
	MaxBytes      int64  `env:"EVIDENCE_MAX_BYTES" envDefault:"4194304"`
	RemoteURL     string `env:"EVIDENCE_REMOTE_URL"`
	RemoteAPIKey  string `env:"EVIDENCE_REMOTE_API_KEY"`
}

// Purge configures the evidence deletion retry worker.
type Purge struct {
	Interval    time.Duration `env:"PURGE_INTERVAL" envDefault:"15s"`
	BatchSize   int           `env:"PURGE_BATCH_SIZE" envDefault:"50"`
	BaseBackoff time.Duration `env:"PURGE_BASE_BACKOFF" envDefault:"30s"`
	MaxBackoff  time.Duration `env:"PURGE_MAX_BACKOFF" envDefault:"1h"`
	MaxAttempts int           `env:"PURGE_MAX_ATTEMPTS" envDefault:"8"`
}

// FromEnv parses and validates the server configuration. Any failure is a
// configuration error and the process must not start serving.
func FromEnv() (*Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, fmt.Sprintf("parse env: %v", err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field rules env tags cannot express.
func (c *Server) Validate() error {
	var problems []string

	if len(c.AnonymizerSecret) < privacy.MinSecretLength {
		problems = append(problems, fmt.Sprintf("ANONYMIZER_SECRET must be at least %d bytes", privacy.MinSecretLength))
	}
	if len(c.JWTSigningKey) < minSigningKeyLength {
		problems = append(problems, fmt.Sprintf("JWT_SIGNING_KEY must be at least %d bytes", minSigningKeyLength))
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, "TOKEN_TTL must be positive")
	}
	if c.OperationTimeout <= 0 {
		problems = append(problems, "OPERATION_TIMEOUT must be positive")
	}
	if c.Evidence.MaxBytes <= 0 {
		problems = append(problems, "EVIDENCE_MAX_BYTES must be positive")
	}
	if u, err := url.Parse(c.Evidence.PublicBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, "EVIDENCE_PUBLIC_BASE_URL must be an absolute URL")
	}

	switch c.Evidence.Provider {
	case ProviderMemory:
	case ProviderPostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "EVIDENCE_PROVIDER=postgres requires DATABASE_URL")
		}
	case ProviderRemote:
		if c.Evidence.RemoteURL == "" || c.Evidence.RemoteAPIKey == "" {
			problems = append(problems, "EVIDENCE_PROVIDER=remote requires EVIDENCE_REMOTE_URL and EVIDENCE_REMOTE_API_KEY")
		}
	default:
		problems = append(problems, "unknown EVIDENCE_PROVIDER "+c.Evidence.Provider)
	}

	switch c.Evidence.Queue {
	case QueueMemory:
	case QueuePostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "EVIDENCE_QUEUE=postgres requires DATABASE_URL")
		}
	case QueueRedis:
		if c.RedisURL == "" {
			problems = append(problems, "EVIDENCE_QUEUE=redis requires REDIS_URL")
		}
	default:
		problems = append(problems, "unknown EVIDENCE_QUEUE "+c.Evidence.Queue)
	}

	switch c.RateLimit.Backend {
	case RateLimitMemory:
	case RateLimitRedis:
		if c.RedisURL == "" {
			problems = append(problems, "RATELIMIT_BACKEND=redis requires REDIS_URL")
		}
	default:
		problems = append(problems, "unknown RATELIMIT_BACKEND "+c.RateLimit.Backend)
	}

	if c.SeedDemo && c.DatabaseURL != "" {
		problems = append(problems, "SEED_DEMO is only allowed without DATABASE_URL")
	}

	if c.Purge.MaxAttempts <= 0 || c.Purge.BaseBackoff <= 0 || c.Purge.MaxBackoff < c.Purge.BaseBackoff {
		problems = append(problems, "purge backoff settings are inconsistent")
	}

	if len(problems) > 0 {
		return dErrors.New(dErrors.CodeConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

// MaxBodyBytes caps request bodies: one upload plus form framing.
func (c *Server) MaxBodyBytes() int64 {
	return c.Evidence.MaxBytes + 1<<20
}

// UsesRedis reports whether any component needs Redis.
func (c *Server) UsesRedis() bool {
	return c.Evidence.Queue == QueueRedis || c.RateLimit.Backend == RateLimitRedis
}

// UsesDatabase reports whether any component needs PostgreSQL.
func (c *Server) UsesDatabase() bool {
	return c.DatabaseURL != ""
}

// Admin configures cmd/createadmin.
type Admin struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	Email       string `env:"ADMIN_EMAIL,required"`
	Password    string `env:"ADMIN_PASSWORD"`
	// EvidenceQueue must match the server's so a promoted principal's
	// evidence reaches its purge worker.
	EvidenceQueue string `env:"EVIDENCE_QUEUE" envDefault:"postgres"`
	RedisURL      string `env:"REDIS_URL"`
}

// AdminFromEnv parses the bootstrap command configuration.
func AdminFromEnv() (*Admin, error) {
	var cfg Admin
	if err := env.Parse(&cfg); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, fmt.Sprintf("parse env: %v", err))
	}
	switch cfg.EvidenceQueue {
	case QueuePostgres:
	case QueueRedis:
		if cfg.RedisURL == "" {
			return nil, dErrors.New(dErrors.CodeConfiguration, "EVIDENCE_QUEUE=redis requires REDIS_URL")
		}
	default:
		return nil, dErrors.New(dErrors.CodeConfiguration, "createadmin needs a durable EVIDENCE_QUEUE, got "+cfg.EvidenceQueue)
	}
	return &cfg, nil
}
