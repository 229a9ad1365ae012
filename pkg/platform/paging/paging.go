// Package paging implements keyset pagination over (created_at, id) ordered
// newest first. Cursors are opaque to clients.
package paging

import (
	"encoding/base64"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "confessional/pkg/domain-errors"
)

// Cursor is the position after the last item of a page.
type Cursor struct {
	At time.Time
	ID uuid.UUID
}

// Request asks for one page. An empty Cursor starts from the newest item.
type Request struct {
	Cursor string
	Limit  int
}

// Page is one slice of results plus the cursor for the next one, empty when
// no more items remain.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// FromQuery reads ?cursor=&limit=. A missing limit is left zero for the
// caller's default.
func FromQuery(q url.Values) (Request, error) {
	req := Request{Cursor: strings.TrimSpace(q.Get("cursor"))}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Request{}, dErrors.New(dErrors.CodeValidation, "limit must be a positive integer")
		}
		req.Limit = n
	}
	return req, nil
}

// Encode renders c as an opaque token.
func Encode(c Cursor) string {
	raw := strconv.FormatInt(c.At.UnixNano(), 10) + "|" + c.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// Decode parses a token produced by Encode. An empty token yields nil.
func Decode(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, invalid()
	}
	nanos, idPart, ok := strings.Cut(string(raw), "|")
	if !ok {
		return nil, invalid()
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return nil, invalid()
	}
	parsed, err := uuid.Parse(idPart)
	if err != nil {
		return nil, invalid()
	}
	return &Cursor{At: time.Unix(0, n).UTC(), ID: parsed}, nil
}

// Before reports whether (at, id) sorts after c in newest-first order, i.e.
// belongs on a later page.
func (c *Cursor) Before(at time.Time, id uuid.UUID) bool {
	if c == nil {
		return true
	}
	if at.Equal(c.At) {
		return id.String() < c.ID.String()
	}
	return at.Before(c.At)
}

// Build trims items fetched with limit+1 to limit and sets NextCursor when the
// extra item proves another page exists.
func Build[T any](items []T, limit int, key func(T) Cursor) Page[T] {
	if len(items) <= limit {
		return Page[T]{Items: items}
	}
	items = items[:limit]
	return Page[T]{Items: items, NextCursor: Encode(key(items[len(items)-1]))}
}

func invalid() error {
	return dErrors.New(dErrors.CodeValidation, "cursor is invalid")
}
