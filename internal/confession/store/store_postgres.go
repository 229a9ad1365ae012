package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"confessional/internal/confession/models"
	id "confessional/pkg/domain"
	"confessional/pkg/platform/paging"
	"confessional/pkg/platform/privacy"
	"confessional/pkg/platform/sentinel"
)

const confessionColumns = `c.id, c.author_id, c.body, c.image_key, c.removed, c.removed_at, c.created_at`

// statsColumns expects the viewer token as $1.
const statsColumns = `
	(SELECT COUNT(*) FROM likes l WHERE l.confession_id = c.id),
	(SELECT COUNT(*) FROM comments m WHERE m.confession_id = c.id),
	EXISTS (SELECT 1 FROM likes l WHERE l.confession_id = c.id AND l.token = $1)`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, c *models.Confession) error {
	if c == nil {
		return fmt.Errorf("confession is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO confessions (id, author_id, body, image_key, removed, removed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(c.ID), uuid.UUID(c.AuthorID), c.Body, nullString(c.ImageKey), c.Removed, c.RemovedAt, c.CreatedAt,
	)
	if err != nil {
		if pgErrCode(err) == "23505" {
			return fmt.Errorf("confession id already used: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert confession: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, confessionID id.ConfessionID) (*models.Confession, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+confessionColumns+` FROM confessions c WHERE c.id = $1`, uuid.UUID(confessionID))
	return scanConfession(row)
}

func (s *PostgresStore) Feed(ctx context.Context, after *paging.Cursor, limit int, token privacy.ActionToken) ([]models.FeedItem, error) {
	query := `SELECT ` + confessionColumns + `,` + statsColumns + `
		FROM confessions c WHERE NOT c.removed`
	args := []any{string(token)}
	if after != nil {
		query += ` AND (c.created_at, c.id) < ($2, $3)`
		args = append(args, after.At, after.ID)
	}
	query += fmt.Sprintf(` ORDER BY c.created_at DESC, c.id DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query feed: %w", err)
	}
	defer rows.Close()

	var out []models.FeedItem
	for rows.Next() {
		var (
			item  models.FeedItem
			c     models.Confession
			cid   uuid.UUID
			aid   uuid.UUID
			image sql.NullString
		)
		if err := rows.Scan(&cid, &aid, &c.Body, &image, &c.Removed, &c.RemovedAt, &c.CreatedAt,
			&item.Stats.Likes, &item.Stats.Comments, &item.Stats.Liked); err != nil {
			return nil, fmt.Errorf("scan feed row: %w", err)
		}
		c.ID, c.AuthorID, c.ImageKey = id.ConfessionID(cid), id.PrincipalID(aid), image.String
		item.Confession = &c
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feed: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Stats(ctx context.Context, confessionID id.ConfessionID, token privacy.ActionToken) (models.Stats, error) {
	var st models.Stats
	err := s.db.QueryRowContext(ctx, `SELECT `+statsColumns+` FROM confessions c WHERE c.id = $2`,
		string(token), uuid.UUID(confessionID),
	).Scan(&st.Likes, &st.Comments, &st.Liked)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Stats{}, fmt.Errorf("confession not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return models.Stats{}, fmt.Errorf("load stats: %w", err)
	}
	return st, nil
}

// ToggleLike deletes an existing like or inserts one. A transaction-scoped
// advisory lock on (confession, token) serializes toggles by the same viewer.
func (s *PostgresStore) ToggleLike(ctx context.Context, confessionID id.ConfessionID, token privacy.ActionToken, at time.Time) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin toggle like: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1 || ':' || $2, 0))`,
		confessionID.String(), string(token)); err != nil {
		return false, fmt.Errorf("lock like: %w", err)
	}

	var removed bool
	err = tx.QueryRowContext(ctx, `SELECT removed FROM confessions WHERE id = $1 FOR SHARE`, uuid.UUID(confessionID)).Scan(&removed)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && removed) {
		return false, fmt.Errorf("confession not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("lock confession: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE confession_id = $1 AND token = $2`, uuid.UUID(confessionID), string(token))
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	liked := false
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO likes (confession_id, token, created_at) VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING`, uuid.UUID(confessionID), string(token), at); err != nil {
			return false, fmt.Errorf("insert like: %w", err)
		}
		liked = true
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit toggle like: %w", err)
	}
	return liked, nil
}

func (s *PostgresStore) AddComment(ctx context.Context, comment *models.Comment) error {
	if comment == nil {
		return fmt.Errorf("comment is required")
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, confession_id, token, body, created_at)
		SELECT $1, c.id, $3, $4, $5 FROM confessions c WHERE c.id = $2 AND NOT c.removed`,
		uuid.UUID(comment.ID), uuid.UUID(comment.ConfessionID), string(comment.Token), comment.Body, comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("confession not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) ListComments(ctx context.Context, confessionID id.ConfessionID, limit int) ([]*models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, confession_id, token, body, created_at FROM comments
		WHERE confession_id = $1 ORDER BY created_at ASC, id ASC LIMIT $2`,
		uuid.UUID(confessionID), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var out []*models.Comment
	for rows.Next() {
		var (
			c        models.Comment
			rawID    uuid.UUID
			rawConf  uuid.UUID
			rawToken string
		)
		if err := rows.Scan(&rawID, &rawConf, &rawToken, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.ID, c.ConfessionID, c.Token = id.CommentID(rawID), id.ConfessionID(rawConf), privacy.ActionToken(rawToken)
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return out, nil
}

// MarkRemoved is a conditional UPDATE on removed = FALSE; zero rows means the
// item is absent or already removed.
func (s *PostgresStore) MarkRemoved(ctx context.Context, confessionID id.ConfessionID, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE confessions SET removed = TRUE, removed_at = $2
		WHERE id = $1 AND NOT removed`, uuid.UUID(confessionID), at)
	if err != nil {
		return false, fmt.Errorf("mark removed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return true, nil
	}
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM confessions WHERE id = $1)`,
		uuid.UUID(confessionID)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check confession exists: %w", err)
	}
	if !exists {
		return false, fmt.Errorf("confession not found: %w", sentinel.ErrNotFound)
	}
	return false, nil
}

func (s *PostgresStore) Summaries(ctx context.Context, ids []id.ConfessionID) (map[id.ConfessionID]models.Summary, error) {
	out := make(map[id.ConfessionID]models.Summary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	raw := make([]string, len(ids))
	for i, cid := range ids {
		raw[i] = cid.String()
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+confessionColumns+` FROM confessions c WHERE c.id = ANY($1::uuid[])`, raw)
	if err != nil {
		return nil, fmt.Errorf("load summaries: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		c, err := scanConfession(rows)
		if err != nil {
			return nil, err
		}
		out[c.ID] = models.Summarize(c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CountByAuthors(ctx context.Context, authors []id.PrincipalID) (map[id.PrincipalID]int, error) {
	out := make(map[id.PrincipalID]int, len(authors))
	if len(authors) == 0 {
		return out, nil
	}
	raw := make([]string, len(authors))
	for i, a := range authors {
		raw[i] = a.String()
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT author_id, COUNT(*) FROM confessions WHERE author_id = ANY($1::uuid[]) GROUP BY author_id`, raw)
	if err != nil {
		return nil, fmt.Errorf("count confessions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			author uuid.UUID
			n      int
		)
		if err := rows.Scan(&author, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[id.PrincipalID(author)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConfession(row scanner) (*models.Confession, error) {
	var (
		c     models.Confession
		cid   uuid.UUID
		aid   uuid.UUID
		image sql.NullString
	)
	err := row.Scan(&cid, &aid, &c.Body, &image, &c.Removed, &c.RemovedAt, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("confession not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan confession: %w", err)
	}
	c.ID, c.AuthorID, c.ImageKey = id.ConfessionID(cid), id.PrincipalID(aid), image.String
	return &c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
