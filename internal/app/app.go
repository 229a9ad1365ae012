// Package app wires the process from configuration. cmd/server and the
// end-to-end suite share it.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	authhandler "confessional/internal/auth/handler"
	authmetrics "confessional/internal/auth/metrics"
	authservice "confessional/internal/auth/service"
	confessionhandler "confessional/internal/confession/handler"
	confessionmetrics "confessional/internal/confession/metrics"
	confessionservice "confessional/internal/confession/service"
	confessionstore "confessional/internal/confession/store"
	"confessional/internal/evidence"
	evidencemetrics "confessional/internal/evidence/metrics"
	"confessional/internal/evidence/provider"
	"confessional/internal/evidence/queue"
	"confessional/internal/evidence/workers/purge"
	jwttoken "confessional/internal/jwt_token"
	moderationhandler "confessional/internal/moderation/handler"
	moderationmetrics "confessional/internal/moderation/metrics"
	moderationservice "confessional/internal/moderation/service"
	moderationstore "confessional/internal/moderation/store"
	"confessional/internal/platform/config"
	"confessional/internal/platform/database"
	"confessional/internal/platform/health"
	"confessional/internal/platform/kafka/producer"
	redisclient "confessional/internal/platform/redis"
	"confessional/internal/ratelimit"
	"confessional/internal/seeder"
	httptransport "confessional/internal/transport/http"
	verificationhandler "confessional/internal/verification/handler"
	verificationmetrics "confessional/internal/verification/metrics"
	verificationservice "confessional/internal/verification/service"
	verificationstore "confessional/internal/verification/store"
	"confessional/migrations"
	audit "confessional/pkg/platform/audit"
	outboxmetrics "confessional/pkg/platform/audit/outbox/metrics"
	outboxstore "confessional/pkg/platform/audit/outbox/store/postgres"
	outboxworker "confessional/pkg/platform/audit/outbox/worker"
	"confessional/pkg/platform/audit/publisher"
	"confessional/pkg/platform/middleware/request"
	"confessional/pkg/platform/privacy"
)

// Worker is a background loop that runs until its context is cancelled.
type Worker interface {
	Start(ctx context.Context) error
}

// principalStore is what the verification service, the purger and login need
// from one principal store.
type principalStore interface {
	verificationservice.Store
	evidence.Owner
}

// purgerDrainTimeout bounds how long Close waits for inline evidence deletions.
const purgerDrainTimeout = 10 * time.Second

// App is the assembled process.
type App struct {
	Router  http.Handler
	Workers []Worker
	// Verification is exposed for admin bootstrap.
	Verification *verificationservice.Service
	// Purger runs post-adjudication evidence deletions; Close drains it.
	Purger *evidence.Purger

	closers []func() error
	log     *slog.Logger
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", "error", err)
		}
	}
}

// Build wires every component selected by cfg. Any error aborts startup.
func Build(ctx context.Context, cfg *config.Server, log *slog.Logger) (*App, error) {
	a := &App{log: log}
	fail := func(err error) (*App, error) {
		a.Close()
		return nil, err
	}

	anonymizer, err := privacy.NewAnonymizer(cfg.AnonymizerSecret)
	if err != nil {
		return fail(err)
	}
	healthHandler := health.New(cfg.Environment)

	var db *sql.DB
	if cfg.UsesDatabase() {
		pool, err := database.New(ctx, database.DefaultConfig(cfg.DatabaseURL))
		if err != nil {
			return fail(fmt.Errorf("connect database: %w", err))
		}
		a.closers = append(a.closers, pool.Close)
		if err := database.Migrate(ctx, pool.DB(), migrations.FS); err != nil {
			return fail(fmt.Errorf("migrate: %w", err))
		}
		healthHandler.RegisterCheck("postgres", pool)
		db = pool.DB()
	} else {
		log.Warn("DATABASE_URL not set; principals, content and audit are kept in memory")
	}

	var redis *redisclient.Client
	if cfg.UsesRedis() {
		redis, err = redisclient.New(ctx, cfg.RedisURL)
		if err != nil {
			return fail(fmt.Errorf("connect redis: %w", err))
		}
		a.closers = append(a.closers, redis.Close)
		prometheus.MustRegister(redisclient.NewPoolCollector(redis))
		healthHandler.RegisterCheck("redis", redis)
	}

	// audit
	var auditStore audit.Store = audit.NewInMemoryStore()
	if db != nil {
		outbox := outboxstore.New(db)
		auditStore = outbox
		if cfg.KafkaBrokers != "" {
			prod, err := producer.New(producer.Config{Brokers: cfg.KafkaBrokers, Acks: cfg.KafkaAcks}, log)
			if err != nil {
				return fail(fmt.Errorf("kafka producer: %w", err))
			}
			a.closers = append(a.closers, prod.Close)
			healthHandler.RegisterCheck("kafka", prod)
			relay, err := outboxworker.New(outbox, prod,
				outboxworker.WithTopic(cfg.AuditTopic),
				outboxworker.WithMetrics(outboxmetrics.New()),
				outboxworker.WithLogger(log),
			)
			if err != nil {
				return fail(err)
			}
			a.Workers = append(a.Workers, relay)
		} else {
			log.Warn("KAFKA_BROKERS not set; audit events stay in the outbox table")
		}
	}
	auditor := publisher.New(auditStore, publisher.WithLogger(log))
	a.closers = append(a.closers, func() error { auditor.Close(); return nil })

	// evidence
	evidenceProvider, err := newProvider(cfg, db, healthHandler)
	if err != nil {
		return fail(err)
	}
	evidenceMetrics := evidencemetrics.New()
	adapter, err := evidence.NewAdapter(evidenceProvider, cfg.Evidence.PublicBaseURL,
		evidence.WithMaxBytes(cfg.Evidence.MaxBytes),
		evidence.WithCallTimeout(cfg.OperationTimeout),
		evidence.WithAdapterMetrics(evidenceMetrics),
		evidence.WithAdapterLogger(log),
	)
	if err != nil {
		return fail(err)
	}
	deletions, err := newQueue(cfg, db, redis)
	if err != nil {
		return fail(err)
	}

	var principals principalStore = verificationstore.NewInMemory()
	var content confessionservice.Store = confessionstore.NewInMemory()
	var reports moderationservice.ReportStore = moderationstore.NewInMemory()
	if db != nil {
		principals = verificationstore.NewPostgres(db)
		content = confessionstore.NewPostgres(db)
		reports = moderationstore.NewPostgres(db)
	}

	backoff := evidence.Backoff{Base: cfg.Purge.BaseBackoff, Max: cfg.Purge.MaxBackoff}
	purger, err := evidence.NewPurger(adapter, deletions, principals,
		evidence.WithPurgerLogger(log),
		evidence.WithPurgerMetrics(evidenceMetrics),
		evidence.WithPurgerAudit(auditor),
		evidence.WithPurgerBackoff(backoff),
	)
	if err != nil {
		return fail(err)
	}
	a.Purger = purger
	a.closers = append(a.closers, func() error {
		drainCtx, cancel := context.WithTimeout(context.Background(), purgerDrainTimeout)
		defer cancel()
		return purger.Drain(drainCtx)
	})
	purgeWorker, err := purge.New(deletions, adapter, principals,
		purge.WithInterval(cfg.Purge.Interval),
		purge.WithBatchSize(cfg.Purge.BatchSize),
		purge.WithMaxAttempts(cfg.Purge.MaxAttempts),
		purge.WithBackoff(backoff),
		purge.WithMetrics(evidenceMetrics),
		purge.WithAuditPublisher(auditor),
		purge.WithLogger(log),
	)
	if err != nil {
		return fail(err)
	}
	a.Workers = append(a.Workers, purgeWorker)

	// core services
	verification, err := verificationservice.New(principals, adapter,
		verificationservice.WithLogger(log),
		verificationservice.WithMetrics(verificationmetrics.New()),
		verificationservice.WithAuditPublisher(auditor),
		verificationservice.WithEvidencePurger(purger),
	)
	if err != nil {
		return fail(err)
	}
	confessions, err := confessionservice.New(content, verification, anonymizer,
		confessionservice.WithLogger(log),
		confessionservice.WithMetrics(confessionmetrics.New()),
		confessionservice.WithMediaStore(adapter),
	)
	if err != nil {
		return fail(err)
	}
	moderation, err := moderationservice.New(reports, verification, confessions, anonymizer,
		moderationservice.WithLogger(log),
		moderationservice.WithMetrics(moderationmetrics.New()),
		moderationservice.WithAuditPublisher(auditor),
		moderationservice.WithEvidenceLocator(adapter),
	)
	if err != nil {
		return fail(err)
	}

	if cfg.SeedDemo {
		if err := seeder.New(verification, confessions, moderation, log).SeedAll(ctx); err != nil {
			return fail(err)
		}
	}

	// auth
	tokens, err := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL)
	if err != nil {
		return fail(err)
	}
	limiter, err := newLimiter(cfg, redis)
	if err != nil {
		return fail(err)
	}
	login, err := authservice.New(principals, tokens,
		authservice.WithLogger(log),
		authservice.WithMetrics(authmetrics.New()),
		authservice.WithFailureLimiter(limiter),
	)
	if err != nil {
		return fail(err)
	}

	opts := []httptransport.Option{httptransport.WithMetrics(request.NewMetrics())}
	if !cfg.RateLimit.Disabled {
		opts = append(opts, httptransport.WithRateLimits(ratelimit.NewMiddleware(limiter, log)))
	}
	a.Verification = verification
	a.Router = httptransport.NewRouter(httptransport.Handlers{
		Health:       healthHandler,
		Auth:         authhandler.New(login, log),
		Verification: verificationhandler.New(verification, log),
		Confessions:  confessionhandler.New(confessions, log),
		Moderation:   moderationhandler.New(moderation, log),
	}, jwttoken.NewJWTServiceAdapter(tokens), httptransport.Config{
		OperationTimeout: cfg.OperationTimeout,
		MaxBodyBytes:     cfg.MaxBodyBytes(),
		TrustedProxies:   cfg.TrustedProxies,
	}, log, opts...)

	return a, nil
}

func newProvider(cfg *config.Server, db *sql.DB, h *health.Handler) (provider.Provider, error) {
	switch cfg.Evidence.Provider {
	case config.ProviderPostgres:
		return provider.NewPostgres(db), nil
	case config.ProviderRemote:
		remote, err := provider.NewRemote(provider.RemoteConfig{
			BaseURL: cfg.Evidence.RemoteURL,
			APIKey:  cfg.Evidence.RemoteAPIKey,
			Timeout: cfg.OperationTimeout,
		})
		if err != nil {
			return nil, err
		}
		h.RegisterCheck("evidence", remote)
		return remote, nil
	default:
		return provider.NewMemory(), nil
	}
}

func newQueue(cfg *config.Server, db *sql.DB, redis *redisclient.Client) (queue.Queue, error) {
	switch cfg.Evidence.Queue {
	case config.QueuePostgres:
		return queue.NewPostgres(db), nil
	case config.QueueRedis:
		return queue.NewRedis(redis.Client), nil
	default:
		return queue.NewMemory(), nil
	}
}

func newLimiter(cfg *config.Server, redis *redisclient.Client) (*ratelimit.Limiter, error) {
	var store ratelimit.Store = ratelimit.NewMemoryStore()
	if cfg.RateLimit.Backend == config.RateLimitRedis {
		store = ratelimit.NewRedisStore(redis.Client)
	}
	return ratelimit.New(store, ratelimit.WithMetrics(ratelimit.NewMetrics()))
}
