// Package store persists confessions, likes and comments. Methods return
// pkg/platform/sentinel errors.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"confessional/internal/confession/models"
	id "confessional/pkg/domain"
	"confessional/pkg/platform/paging"
	"confessional/pkg/platform/privacy"
	"confessional/pkg/platform/sentinel"
)

type likeKey struct {
	confession id.ConfessionID
	token      privacy.ActionToken
}

// InMemoryStore keeps everything behind one mutex. Confessions are held in
// insertion order and sorted on read.
type InMemoryStore struct {
	mu          sync.RWMutex
	confessions map[id.ConfessionID]*models.Confession
	likes       map[likeKey]time.Time
	likeCounts  map[id.ConfessionID]int
	comments    map[id.ConfessionID][]*models.Comment
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		confessions: make(map[id.ConfessionID]*models.Confession),
		likes:       make(map[likeKey]time.Time),
		likeCounts:  make(map[id.ConfessionID]int),
		comments:    make(map[id.ConfessionID][]*models.Comment),
	}
}

func (s *InMemoryStore) Create(_ context.Context, c *models.Confession) error {
	if c == nil {
		return fmt.Errorf("confession is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.confessions[c.ID]; taken {
		return fmt.Errorf("confession id already used: %w", sentinel.ErrConflict)
	}
	stored := *c
	s.confessions[c.ID] = &stored
	return nil
}

// FindByID returns the confession whether or not it was removed.
func (s *InMemoryStore) FindByID(_ context.Context, confessionID id.ConfessionID) (*models.Confession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.confessions[confessionID]
	if !ok {
		return nil, fmt.Errorf("confession not found: %w", sentinel.ErrNotFound)
	}
	out := *c
	return &out, nil
}

func (s *InMemoryStore) Feed(_ context.Context, after *paging.Cursor, limit int, token privacy.ActionToken) ([]models.FeedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	visible := make([]*models.Confession, 0, len(s.confessions))
	for _, c := range s.confessions {
		if c.Removed || !after.Before(c.CreatedAt, uuid.UUID(c.ID)) {
			continue
		}
		visible = append(visible, c)
	}
	sort.Slice(visible, func(i, j int) bool { return newerFirst(visible[i], visible[j]) })
	if len(visible) > limit {
		visible = visible[:limit]
	}

	out := make([]models.FeedItem, 0, len(visible))
	for _, c := range visible {
		copied := *c
		out = append(out, models.FeedItem{Confession: &copied, Stats: s.statsLocked(c.ID, token)})
	}
	return out, nil
}

func (s *InMemoryStore) Stats(_ context.Context, confessionID id.ConfessionID, token privacy.ActionToken) (models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.confessions[confessionID]; !ok {
		return models.Stats{}, fmt.Errorf("confession not found: %w", sentinel.ErrNotFound)
	}
	return s.statsLocked(confessionID, token), nil
}

// ToggleLike flips the like for token and returns the new state.
func (s *InMemoryStore) ToggleLike(_ context.Context, confessionID id.ConfessionID, token privacy.ActionToken, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.confessions[confessionID]
	if !ok || c.Removed {
		return false, fmt.Errorf("confession not found: %w", sentinel.ErrNotFound)
	}
	key := likeKey{confession: confessionID, token: token}
	if _, liked := s.likes[key]; liked {
		delete(s.likes, key)
		s.likeCounts[confessionID]--
		return false, nil
	}
	s.likes[key] = at
	s.likeCounts[confessionID]++
	return true, nil
}

func (s *InMemoryStore) AddComment(_ context.Context, comment *models.Comment) error {
	if comment == nil {
		return fmt.Errorf("comment is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.confessions[comment.ConfessionID]
	if !ok || c.Removed {
		return fmt.Errorf("confession not found: %w", sentinel.ErrNotFound)
	}
	stored := *comment
	s.comments[comment.ConfessionID] = append(s.comments[comment.ConfessionID], &stored)
	return nil
}

// ListComments returns the oldest limit comments in ascending order.
func (s *InMemoryStore) ListComments(_ context.Context, confessionID id.ConfessionID, limit int) ([]*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	thread := s.comments[confessionID]
	if len(thread) > limit {
		thread = thread[:limit]
	}
	out := make([]*models.Comment, 0, len(thread))
	for _, c := range thread {
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}

// MarkRemoved sets the removed flag once. It reports whether this call changed it.
func (s *InMemoryStore) MarkRemoved(_ context.Context, confessionID id.ConfessionID, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.confessions[confessionID]
	if !ok {
		return false, fmt.Errorf("confession not found: %w", sentinel.ErrNotFound)
	}
	if c.Removed {
		return false, nil
	}
	c.Removed = true
	removedAt := at
	c.RemovedAt = &removedAt
	return true, nil
}

// Summaries returns moderation summaries for the ids that exist.
func (s *InMemoryStore) Summaries(_ context.Context, ids []id.ConfessionID) (map[id.ConfessionID]models.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.ConfessionID]models.Summary, len(ids))
	for _, cid := range ids {
		if c, ok := s.confessions[cid]; ok {
			out[cid] = models.Summarize(c)
		}
	}
	return out, nil
}

// CountByAuthors counts confessions per author, removed ones included.
func (s *InMemoryStore) CountByAuthors(_ context.Context, authors []id.PrincipalID) (map[id.PrincipalID]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[id.PrincipalID]struct{}, len(authors))
	for _, a := range authors {
		wanted[a] = struct{}{}
	}
	out := make(map[id.PrincipalID]int, len(authors))
	for _, c := range s.confessions {
		if _, ok := wanted[c.AuthorID]; ok {
			out[c.AuthorID]++
		}
	}
	return out, nil
}

func (s *InMemoryStore) statsLocked(confessionID id.ConfessionID, token privacy.ActionToken) models.Stats {
	_, liked := s.likes[likeKey{confession: confessionID, token: token}]
	return models.Stats{
		Likes:    s.likeCounts[confessionID],
		Comments: len(s.comments[confessionID]),
		Liked:    liked,
	}
}

func newerFirst(a, b *models.Confession) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID.String() > b.ID.String()
	}
	return a.CreatedAt.After(b.CreatedAt)
}
