// Package service serves confessions to approved members. Readers and
// reactors are identified only by ActionToken once past the access check.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"confessional/internal/access"
	"confessional/internal/confession/metrics"
	"confessional/internal/confession/models"
	id "confessional/pkg/domain"
	dErrors "confessional/pkg/domain-errors"
	"confessional/pkg/platform/paging"
	"confessional/pkg/platform/validation"
)

type Service struct {
	store    Store
	verifier Verifier
	tokens   Tokenizer
	media    MediaStore
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

func New(store Store, verifier Verifier, tokens Tokenizer, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("confession store is required")
	}
	if verifier == nil {
		return nil, errors.New("verifier is required")
	}
	if tokens == nil {
		return nil, errors.New("tokenizer is required")
	}
	s := &Service{
		store:    store,
		verifier: verifier,
		tokens:   tokens,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create publishes a confession by an approved, unbanned author.
func (s *Service) Create(ctx context.Context, authorID id.PrincipalID, cmd models.CreateCommand) (*models.View, error) {
	if _, err := s.verifier.Require(ctx, authorID, access.ActionAuthorContent); err != nil {
		return nil, err
	}
	cmd.Normalize()
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var imageKey string
	if len(cmd.Image) > 0 {
		if s.media == nil {
			return nil, dErrors.New(dErrors.CodeUnsupportedType, "image attachments are disabled")
		}
		key, err := s.media.StoreMedia(ctx, cmd.Image, cmd.ImageContentType)
		if err != nil {
			return nil, err
		}
		imageKey = key
	}

	c := &models.Confession{
		ID:        id.NewConfessionID(),
		AuthorID:  authorID,
		Body:      cmd.Text,
		ImageKey:  imageKey,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.store.Create(ctx, c); err != nil {
		if imageKey != "" {
			if delErr := s.media.Delete(context.WithoutCancel(ctx), imageKey); delErr != nil {
				s.logger.WarnContext(ctx, "orphaned confession image", "key", imageKey, "error", delErr)
			}
		}
		return nil, translate(err, "failed to create confession")
	}

	if s.metrics != nil {
		s.metrics.IncCreated(imageKey != "")
	}
	s.logger.InfoContext(ctx, "confession created", "confession_id", c.ID)
	view := models.NewView(c, models.Stats{}, s.imageURL)
	return &view, nil
}

// Get returns the anonymous view of a live confession with its first comments.
func (s *Service) Get(ctx context.Context, viewerID id.PrincipalID, confessionID id.ConfessionID) (*models.View, error) {
	if _, err := s.verifier.Require(ctx, viewerID, access.ActionReadContent); err != nil {
		return nil, err
	}
	c, err := s.live(ctx, confessionID)
	if err != nil {
		return nil, err
	}
	token := s.tokens.Token(viewerID)
	stats, err := s.store.Stats(ctx, confessionID, token)
	if err != nil {
		return nil, translate(err, "failed to load confession stats")
	}
	thread, err := s.store.ListComments(ctx, confessionID, validation.MaxCommentsPerView)
	if err != nil {
		return nil, translate(err, "failed to load comments")
	}

	view := models.NewView(c, stats, s.imageURL)
	view.Thread = make([]models.CommentView, 0, len(thread))
	for _, comment := range thread {
		view.Thread = append(view.Thread, models.NewCommentView(comment))
	}
	return &view, nil
}

// Feed lists live confessions newest first.
func (s *Service) Feed(ctx context.Context, viewerID id.PrincipalID, req paging.Request) (paging.Page[models.View], error) {
	if _, err := s.verifier.Require(ctx, viewerID, access.ActionReadContent); err != nil {
		return paging.Page[models.View]{}, err
	}
	after, err := paging.Decode(req.Cursor)
	if err != nil {
		return paging.Page[models.View]{}, err
	}
	limit := validation.ClampPageSize(req.Limit, validation.DefaultFeedPageSize, validation.MaxFeedPageSize)

	items, err := s.store.Feed(ctx, after, limit+1, s.tokens.Token(viewerID))
	if err != nil {
		return paging.Page[models.View]{}, translate(err, "failed to load feed")
	}
	page := paging.Build(items, limit, func(it models.FeedItem) paging.Cursor {
		return paging.Cursor{At: it.Confession.CreatedAt, ID: uuid.UUID(it.Confession.ID)}
	})

	out := paging.Page[models.View]{Items: make([]models.View, 0, len(page.Items)), NextCursor: page.NextCursor}
	for _, it := range page.Items {
		out.Items = append(out.Items, models.NewView(it.Confession, it.Stats, s.imageURL))
	}
	if s.metrics != nil {
		s.metrics.ObserveFeedSize(len(out.Items))
	}
	return out, nil
}

// ToggleLike flips the viewer's like and returns the new state.
func (s *Service) ToggleLike(ctx context.Context, viewerID id.PrincipalID, confessionID id.ConfessionID) (bool, error) {
	if _, err := s.verifier.Require(ctx, viewerID, access.ActionReact); err != nil {
		return false, err
	}
	if confessionID.IsNil() {
		return false, models.ErrNotFound()
	}
	liked, err := s.store.ToggleLike(ctx, confessionID, s.tokens.Token(viewerID), s.now())
	if err != nil {
		return false, translate(err, "failed to toggle like")
	}
	if s.metrics != nil {
		kind := "unlike"
		if liked {
			kind = "like"
		}
		s.metrics.IncReaction(kind)
	}
	return liked, nil
}

// Comment appends a comment under the viewer's ActionToken.
func (s *Service) Comment(ctx context.Context, viewerID id.PrincipalID, confessionID id.ConfessionID, text string) (*models.CommentView, error) {
	if _, err := s.verifier.Require(ctx, viewerID, access.ActionReact); err != nil {
		return nil, err
	}
	body, err := models.NormalizeComment(text)
	if err != nil {
		return nil, err
	}
	if confessionID.IsNil() {
		return nil, models.ErrNotFound()
	}
	comment := &models.Comment{
		ID:           id.NewCommentID(),
		ConfessionID: confessionID,
		Token:        s.tokens.Token(viewerID),
		Body:         body,
		CreatedAt:    s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.store.AddComment(ctx, comment); err != nil {
		return nil, translate(err, "failed to add comment")
	}
	if s.metrics != nil {
		s.metrics.IncReaction("comment")
	}
	view := models.NewCommentView(comment)
	return &view, nil
}

// GetForAudit returns a confession including removed ones, author included.
// Callers are responsible for their own access check.
func (s *Service) GetForAudit(ctx context.Context, confessionID id.ConfessionID) (*models.Confession, error) {
	c, err := s.store.FindByID(ctx, confessionID)
	if err != nil {
		return nil, translate(err, "failed to load confession")
	}
	return c, nil
}

// MarkRemoved soft-removes a confession and reports whether this call did it.
func (s *Service) MarkRemoved(ctx context.Context, confessionID id.ConfessionID) (bool, error) {
	changed, err := s.store.MarkRemoved(ctx, confessionID, s.now())
	if err != nil {
		return false, translate(err, "failed to remove confession")
	}
	return changed, nil
}

func (s *Service) Summaries(ctx context.Context, ids []id.ConfessionID) (map[id.ConfessionID]models.Summary, error) {
	out, err := s.store.Summaries(ctx, ids)
	if err != nil {
		return nil, translate(err, "failed to load summaries")
	}
	return out, nil
}

func (s *Service) CountByAuthors(ctx context.Context, authors []id.PrincipalID) (map[id.PrincipalID]int, error) {
	out, err := s.store.CountByAuthors(ctx, authors)
	if err != nil {
		return nil, translate(err, "failed to count confessions")
	}
	return out, nil
}

// live loads a confession and hides removed ones from readers.
func (s *Service) live(ctx context.Context, confessionID id.ConfessionID) (*models.Confession, error) {
	if confessionID.IsNil() {
		return nil, models.ErrNotFound()
	}
	c, err := s.store.FindByID(ctx, confessionID)
	if err != nil {
		return nil, translate(err, "failed to load confession")
	}
	if c.Removed {
		return nil, models.ErrNotFound()
	}
	return c, nil
}

func (s *Service) imageURL(key string) string {
	if s.media == nil {
		return ""
	}
	return s.media.URLFor(key)
}
