// Package main creates or promotes the bootstrap administrator. Admins cannot be
// granted over HTTP.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"confessional/internal/evidence"
	"confessional/internal/evidence/queue"
	"confessional/internal/platform/config"
	"confessional/internal/platform/database"
	"confessional/internal/platform/logger"
	redisclient "confessional/internal/platform/redis"
	"confessional/internal/verification/service"
	"confessional/internal/verification/store"
	"confessional/migrations"
	"confessional/pkg/secrets"
)

func main() {
	log := logger.New("info")

	cfg, err := config.AdminFromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.New(ctx, database.DefaultConfig(cfg.DatabaseURL))
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close() //nolint:errcheck // process is exiting

	if err := database.Migrate(ctx, pool.DB(), migrations.FS); err != nil {
		log.Error("failed to migrate", "error", err)
		os.Exit(1)
	}

	password := cfg.Password
	generated := password == ""
	if generated {
		password, err = secrets.Generate()
		if err != nil {
			log.Error("failed to generate password", "error", err)
			os.Exit(1)
		}
	}

	// a promoted PENDING principal's evidence is purged by the server's worker
	var deletions queue.Queue = queue.NewPostgres(pool.DB())
	if cfg.EvidenceQueue == config.QueueRedis {
		redis, err := redisclient.New(ctx, cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redis.Close() //nolint:errcheck // process is exiting
		deletions = queue.NewRedis(redis.Client)
	}

	svc, err := service.New(store.NewPostgres(pool.DB()), noEvidence{},
		service.WithLogger(log),
		service.WithEvidencePurger(evidence.NewDeferred(deletions, log)),
	)
	if err != nil {
		log.Error("failed to build verification service", "error", err)
		os.Exit(1)
	}
	admin, err := svc.BootstrapAdmin(ctx, cfg.Email, password)
	if err != nil {
		log.Error("failed to create admin", "error", err)
		os.Exit(1)
	}

	log.Info("admin ready", "principal_id", admin.ID.String(), "email", admin.Email)
	if generated {
		// printed once; it is never logged
		os.Stdout.WriteString("generated password: " + password + "\n") //nolint:errcheck // best effort
	}
}

// noEvidence refuses uploads; bootstrap never stores evidence.
type noEvidence struct{}

func (noEvidence) Store(context.Context, []byte, string) (string, error) {
	return "", errors.New("createadmin does not accept evidence")
}
