package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"confessional/internal/verification/models"
	id "confessional/pkg/domain"
	"confessional/pkg/platform/sentinel"
)

const principalColumns = `id, email, credential_hash, status, banned, role, evidence_key, created_at, updated_at`

// PostgresStore persists principals in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, p *models.Principal) error {
	if p == nil {
		return fmt.Errorf("principal is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO principals (`+principalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(p.ID), p.Email, p.CredentialHash, string(p.Status), p.Banned, string(p.Role),
		nullString(p.EvidenceKey), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email already registered: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert principal: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, principalID id.PrincipalID) (*models.Principal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+principalColumns+` FROM principals WHERE id = $1`, uuid.UUID(principalID))
	return scanPrincipal(row)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.Principal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+principalColumns+` FROM principals WHERE email = $1`, email)
	return scanPrincipal(row)
}

// TransitionStatus is one conditional UPDATE. When no row matched it looks the
// principal up once more to tell a missing principal from a wrong status.
func (s *PostgresStore) TransitionStatus(ctx context.Context, principalID id.PrincipalID, from, to models.Status, at time.Time) (*models.Principal, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE principals SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
		RETURNING `+principalColumns,
		uuid.UUID(principalID), string(from), string(to), at,
	)
	p, err := scanPrincipal(row)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, fmt.Errorf("transition principal status: %w", err)
	}
	exists, err := s.exists(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("principal not found: %w", sentinel.ErrNotFound)
	}
	return nil, fmt.Errorf("principal is not %s: %w", from, sentinel.ErrInvalidState)
}

func (s *PostgresStore) SetBanned(ctx context.Context, principalID id.PrincipalID, banned bool, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE principals SET banned = $2, updated_at = $3
		WHERE id = $1 AND status = 'APPROVED' AND banned <> $2`,
		uuid.UUID(principalID), banned, at,
	)
	if err != nil {
		return false, fmt.Errorf("set banned: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set banned rows: %w", err)
	}
	if rows == 1 {
		return true, nil
	}

	var status string
	err = s.db.QueryRowContext(ctx, `SELECT status FROM principals WHERE id = $1`, uuid.UUID(principalID)).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("principal not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("check principal status: %w", err)
	}
	if models.Status(status) != models.StatusApproved {
		return false, fmt.Errorf("principal is %s: %w", status, sentinel.ErrInvalidState)
	}
	return false, nil
}

func (s *PostgresStore) ClearEvidence(ctx context.Context, principalID id.PrincipalID, key string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE principals SET evidence_key = NULL, updated_at = $3
		WHERE id = $1 AND evidence_key = $2`,
		uuid.UUID(principalID), key, at,
	)
	if err != nil {
		return fmt.Errorf("clear evidence: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		exists, err := s.exists(ctx, principalID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("principal not found: %w", sentinel.ErrNotFound)
		}
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]*models.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principals`
	var args []any
	if filter.Status != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*filter.Status))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list principals: %w", err)
	}
	defer rows.Close()

	var out []*models.Principal
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate principals: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) UpsertAdmin(ctx context.Context, p *models.Principal) (*models.Principal, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO principals (`+principalColumns+`)
		VALUES ($1, $2, $3, 'APPROVED', FALSE, 'ADMIN', NULL, $4, $4)
		ON CONFLICT (email) DO UPDATE SET
			credential_hash = EXCLUDED.credential_hash,
			status = 'APPROVED',
			role = 'ADMIN',
			banned = FALSE,
			updated_at = EXCLUDED.updated_at
		WHERE principals.status <> 'REJECTED'
		RETURNING `+principalColumns,
		uuid.UUID(p.ID), p.Email, p.CredentialHash, p.UpdatedAt,
	)
	admin, err := scanPrincipal(row)
	if errors.Is(err, sentinel.ErrNotFound) {
		// the conflicting row was filtered by the WHERE clause
		return nil, fmt.Errorf("principal was rejected: %w", sentinel.ErrInvalidState)
	}
	return admin, err
}

func (s *PostgresStore) exists(ctx context.Context, principalID id.PrincipalID) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM principals WHERE id = $1)`, uuid.UUID(principalID),
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check principal exists: %w", err)
	}
	return exists, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPrincipal(row scanner) (*models.Principal, error) {
	var (
		p           models.Principal
		rawID       uuid.UUID
		status      string
		role        string
		evidenceKey sql.NullString
	)
	err := row.Scan(&rawID, &p.Email, &p.CredentialHash, &status, &p.Banned, &role, &evidenceKey, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("principal not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan principal: %w", err)
	}
	p.ID = id.PrincipalID(rawID)
	p.Status = models.Status(status)
	p.Role = models.Role(role)
	p.EvidenceKey = evidenceKey.String
	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: strings.TrimSpace(s) != ""}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
