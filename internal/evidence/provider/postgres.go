package provider

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"confessional/pkg/platform/sentinel"
)

// Postgres keeps blobs in the evidence_blobs table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO evidence_blobs (key, content_type, data, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (key) DO UPDATE SET content_type = EXCLUDED.content_type, data = EXCLUDED.data`,
		key, contentType, data,
	)
	if err != nil {
		return unavailable("put blob", err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM evidence_blobs WHERE key = $1`, key)
	if err != nil {
		return unavailable("delete blob", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return unavailable("delete blob rows", err)
	}
	if rows == 0 {
		return fmt.Errorf("blob %s: %w", key, sentinel.ErrNotFound)
	}
	return nil
}

// Get returns a stored blob. Used by the public media route.
func (p *Postgres) Get(ctx context.Context, key string) (Blob, error) {
	var b Blob
	err := p.db.QueryRowContext(ctx,
		`SELECT data, content_type FROM evidence_blobs WHERE key = $1`, key,
	).Scan(&b.Data, &b.ContentType)
	if errors.Is(err, sql.ErrNoRows) {
		return Blob{}, fmt.Errorf("blob %s: %w", key, sentinel.ErrNotFound)
	}
	if err != nil {
		return Blob{}, unavailable("get blob", err)
	}
	return b, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
}
