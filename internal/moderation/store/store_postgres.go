package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"confessional/internal/moderation/models"
	id "confessional/pkg/domain"
	"confessional/pkg/platform/paging"
	"confessional/pkg/platform/privacy"
	"confessional/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, r *models.Report) error {
	if r == nil {
		return fmt.Errorf("report is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (id, confession_id, reporter_token, reason, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(r.ID), uuid.UUID(r.ConfessionID), string(r.ReporterToken), r.Reason, r.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return fmt.Errorf("report id already used: %w", sentinel.ErrConflict)
			case "23503":
				return fmt.Errorf("confession not found: %w", sentinel.ErrNotFound)
			}
		}
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, after *paging.Cursor, limit int) ([]*models.Report, error) {
	query := `SELECT id, confession_id, reporter_token, reason, created_at FROM reports`
	var args []any
	if after != nil {
		query += ` WHERE (created_at, id) < ($1, $2)`
		args = append(args, after.At, after.ID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []*models.Report
	for rows.Next() {
		var (
			r     models.Report
			rid   uuid.UUID
			cid   uuid.UUID
			token string
		)
		if err := rows.Scan(&rid, &cid, &token, &r.Reason, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		r.ID, r.ConfessionID, r.ReporterToken = id.ReportID(rid), id.ConfessionID(cid), privacy.ActionToken(token)
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return out, nil
}
