// Package store persists reports. Methods return pkg/platform/sentinel errors.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"confessional/internal/moderation/models"
	"confessional/pkg/platform/paging"
	"confessional/pkg/platform/sentinel"
)

// InMemoryStore appends reports to a slice. Duplicates are allowed.
type InMemoryStore struct {
	mu      sync.RWMutex
	reports []*models.Report
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Create(_ context.Context, r *models.Report) error {
	if r == nil {
		return fmt.Errorf("report is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.reports {
		if existing.ID == r.ID {
			return fmt.Errorf("report id already used: %w", sentinel.ErrConflict)
		}
	}
	stored := *r
	s.reports = append(s.reports, &stored)
	return nil
}

// List returns up to limit reports older than after, newest first.
func (s *InMemoryStore) List(_ context.Context, after *paging.Cursor, limit int) ([]*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Report, 0, limit)
	for _, r := range s.reports {
		if after.Before(r.CreatedAt, uuid.UUID(r.ID)) {
			copied := *r
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
