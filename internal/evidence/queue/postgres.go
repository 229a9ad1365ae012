package queue

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "confessional/pkg/domain"
	"confessional/pkg/platform/sentinel"
)

// Postgres stores entries in evidence_deletions. Leasing uses SKIP LOCKED so
// several server instances can run the purge worker.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Enqueue(ctx context.Context, d Deletion) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO evidence_deletions (key, principal_id, attempts, next_attempt_at, last_error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (key) DO NOTHING`,
		d.Key, nullPrincipal(d.PrincipalID), d.Attempts, d.NextAttemptAt, d.LastError, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("enqueue deletion: %w", err)
	}
	return nil
}

func (p *Postgres) Lease(ctx context.Context, now time.Time, limit int, leaseFor time.Duration) ([]Deletion, error) {
	rows, err := p.db.QueryContext(ctx, `
		UPDATE evidence_deletions SET leased_until = $2
		WHERE key IN (
			SELECT key FROM evidence_deletions
			WHERE NOT dead AND next_attempt_at <= $1
			  AND (leased_until IS NULL OR leased_until <= $1)
			ORDER BY next_attempt_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING key, principal_id, attempts, next_attempt_at, last_error, dead, created_at`,
		now, now.Add(leaseFor), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("lease deletions: %w", err)
	}
	defer rows.Close()

	var out []Deletion
	for rows.Next() {
		var (
			d         Deletion
			principal uuid.NullUUID
		)
		if err := rows.Scan(&d.Key, &principal, &d.Attempts, &d.NextAttemptAt, &d.LastError, &d.Dead, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan deletion: %w", err)
		}
		if principal.Valid {
			d.PrincipalID = id.PrincipalID(principal.UUID)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *Postgres) Complete(ctx context.Context, key string) error {
	return p.exec(ctx, "complete deletion", key, `DELETE FROM evidence_deletions WHERE key = $1`, key)
}

func (p *Postgres) Retry(ctx context.Context, key string, attempts int, nextAttemptAt time.Time, lastError string) error {
	return p.exec(ctx, "retry deletion", key, `
		UPDATE evidence_deletions
		SET attempts = $2, next_attempt_at = $3, last_error = $4, leased_until = NULL
		WHERE key = $1`, key, attempts, nextAttemptAt, lastError)
}

func (p *Postgres) Bury(ctx context.Context, key string, attempts int, lastError string) error {
	return p.exec(ctx, "bury deletion", key, `
		UPDATE evidence_deletions
		SET attempts = $2, last_error = $3, dead = TRUE, leased_until = NULL
		WHERE key = $1`, key, attempts, lastError)
}

func (p *Postgres) Pending(ctx context.Context) (int64, error) {
	var n int64
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM evidence_deletions WHERE NOT dead`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count deletions: %w", err)
	}
	return n, nil
}

func (p *Postgres) exec(ctx context.Context, op, key, query string, args ...any) error {
	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("deletion %s: %w", key, sentinel.ErrNotFound)
	}
	return nil
}

func nullPrincipal(principalID id.PrincipalID) uuid.NullUUID {
	if principalID.IsNil() {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(principalID), Valid: true}
}
