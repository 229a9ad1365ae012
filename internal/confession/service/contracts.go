package service

//go:generate mockgen -source=contracts.go -destination=mocks/mocks.go -package=mocks Store,Verifier,Tokenizer,MediaStore

import (
	"context"
	"time"

	"confessional/internal/access"
	"confessional/internal/confession/models"
	vmodels "confessional/internal/verification/models"
	id "confessional/pkg/domain"
	"confessional/pkg/platform/paging"
	"confessional/pkg/platform/privacy"
)

// Store persists confessions and reactions and reports pkg/platform/sentinel errors.
type Store interface {
	Create(ctx context.Context, c *models.Confession) error
	FindByID(ctx context.Context, confessionID id.ConfessionID) (*models.Confession, error)
	Feed(ctx context.Context, after *paging.Cursor, limit int, token privacy.ActionToken) ([]models.FeedItem, error)
	Stats(ctx context.Context, confessionID id.ConfessionID, token privacy.ActionToken) (models.Stats, error)
	ToggleLike(ctx context.Context, confessionID id.ConfessionID, token privacy.ActionToken, at time.Time) (bool, error)
	AddComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, confessionID id.ConfessionID, limit int) ([]*models.Comment, error)
	MarkRemoved(ctx context.Context, confessionID id.ConfessionID, at time.Time) (bool, error)
	Summaries(ctx context.Context, ids []id.ConfessionID) (map[id.ConfessionID]models.Summary, error)
	CountByAuthors(ctx context.Context, authors []id.PrincipalID) (map[id.PrincipalID]int, error)
}

// Verifier checks a principal against the access policy. Errors carry domain codes.
type Verifier interface {
	Require(ctx context.Context, principalID id.PrincipalID, action access.Action) (*vmodels.Principal, error)
}

// Tokenizer derives the ActionToken stored on likes and comments.
type Tokenizer interface {
	Token(principalID id.PrincipalID) privacy.ActionToken
}

// MediaStore holds confession images. Errors carry domain codes.
type MediaStore interface {
	StoreMedia(ctx context.Context, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	URLFor(key string) string
}
