// Package postgres stores audit events and their outbox entries in one transaction.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	audit "confessional/pkg/platform/audit"
	"confessional/pkg/platform/audit/outbox"
	"confessional/pkg/platform/sentinel"
)

const maxBatch = 1000

// Store implements audit.Store and outbox.Store over PostgreSQL.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append writes the audit row and its outbox entry atomically.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	entry, err := outbox.NewEntry(event)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit append: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO audit_events (id, action, subject_id, actor_id, reason, request_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, string(event.Action), event.SubjectID, event.ActorID, event.Reason, event.RequestID, event.Timestamp,
	); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO outbox (id, event_type, subject_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.EventType, entry.SubjectID, entry.Payload, entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return tx.Commit()
}

// ListBySubject returns audit events for a principal or content item, oldest first.
func (s *Store) ListBySubject(ctx context.Context, subjectID string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, subject_id, actor_id, reason, request_id, occurred_at
		FROM audit_events
		WHERE subject_id = $1
		ORDER BY occurred_at ASC, id ASC`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var e audit.Event
		var action string
		if err := rows.Scan(&e.ID, &action, &e.SubjectID, &e.ActorID, &e.Reason, &e.RequestID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = audit.Action(action)
		events = append(events, e)
	}
	return events, rows.Err()
}

// FetchUnprocessed returns up to limit pending entries, oldest first.
func (s *Store) FetchUnprocessed(ctx context.Context, limit int) ([]*outbox.Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	if limit > maxBatch {
		limit = maxBatch
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_type, subject_id, payload, created_at
		FROM outbox
		WHERE processed_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch unprocessed entries: %w", err)
	}
	defer rows.Close()

	var entries []*outbox.Entry
	for rows.Next() {
		e := &outbox.Entry{}
		if err := rows.Scan(&e.ID, &e.EventType, &e.SubjectID, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkProcessed marks an entry as published.
func (s *Store) MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE outbox SET processed_at = $2 WHERE id = $1 AND processed_at IS NULL`, id, processedAt)
	if err != nil {
		return fmt.Errorf("mark outbox entry processed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("outbox entry %s: %w", id, sentinel.ErrNotFound)
	}
	return nil
}

// CountPending returns the number of unpublished entries.
func (s *Store) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outbox WHERE processed_at IS NULL`).Scan(&count)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("count pending entries: %w", err)
	}
	return count, nil
}

// DeleteProcessedBefore removes old published entries.
func (s *Store) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM outbox WHERE processed_at IS NOT NULL AND processed_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete processed entries: %w", err)
	}
	return res.RowsAffected()
}
