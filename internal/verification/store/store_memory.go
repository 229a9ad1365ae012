// Package store persists principals. All methods return pkg/platform/sentinel
// errors; the verification service translates them into domain codes.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"confessional/internal/verification/models"
	id "confessional/pkg/domain"
	"confessional/pkg/platform/sentinel"
)

// InMemoryStore keeps principals in a map guarded by one mutex, so every
// conditional update is atomic like its SQL counterpart.
type InMemoryStore struct {
	mu         sync.RWMutex
	principals map[id.PrincipalID]*models.Principal
	byEmail    map[string]id.PrincipalID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		principals: make(map[id.PrincipalID]*models.Principal),
		byEmail:    make(map[string]id.PrincipalID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, p *models.Principal) error {
	if p == nil {
		return fmt.Errorf("principal is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[p.Email]; taken {
		return fmt.Errorf("email already registered: %w", sentinel.ErrConflict)
	}
	if _, taken := s.principals[p.ID]; taken {
		return fmt.Errorf("principal id already used: %w", sentinel.ErrConflict)
	}
	stored := *p
	s.principals[p.ID] = &stored
	s.byEmail[p.Email] = p.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, principalID id.PrincipalID) (*models.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.principals[principalID]
	if !ok {
		return nil, fmt.Errorf("principal not found: %w", sentinel.ErrNotFound)
	}
	out := *p
	return &out, nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*models.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	principalID, ok := s.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("principal not found: %w", sentinel.ErrNotFound)
	}
	out := *s.principals[principalID]
	return &out, nil
}

// TransitionStatus moves a principal from one status to another. A principal
// not currently in from yields ErrInvalidState.
func (s *InMemoryStore) TransitionStatus(_ context.Context, principalID id.PrincipalID, from, to models.Status, at time.Time) (*models.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.principals[principalID]
	if !ok {
		return nil, fmt.Errorf("principal not found: %w", sentinel.ErrNotFound)
	}
	if p.Status != from {
		return nil, fmt.Errorf("principal is %s: %w", p.Status, sentinel.ErrInvalidState)
	}
	p.Status = to
	p.UpdatedAt = at
	out := *p
	return &out, nil
}

// SetBanned sets the flag on an APPROVED principal. changed is false when the
// flag already had that value.
func (s *InMemoryStore) SetBanned(_ context.Context, principalID id.PrincipalID, banned bool, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.principals[principalID]
	if !ok {
		return false, fmt.Errorf("principal not found: %w", sentinel.ErrNotFound)
	}
	if p.Status != models.StatusApproved {
		return false, fmt.Errorf("principal is %s: %w", p.Status, sentinel.ErrInvalidState)
	}
	if p.Banned == banned {
		return false, nil
	}
	p.Banned = banned
	p.UpdatedAt = at
	return true, nil
}

// ClearEvidence drops the evidence key if it still equals key.
func (s *InMemoryStore) ClearEvidence(_ context.Context, principalID id.PrincipalID, key string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.principals[principalID]
	if !ok {
		return fmt.Errorf("principal not found: %w", sentinel.ErrNotFound)
	}
	if p.EvidenceKey == key {
		p.EvidenceKey = ""
		p.UpdatedAt = at
	}
	return nil
}

// List returns principals newest first.
func (s *InMemoryStore) List(_ context.Context, filter models.ListFilter) ([]*models.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Principal, 0, len(s.principals))
	for _, p := range s.principals {
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpsertAdmin creates or promotes the principal with p.Email to an approved
// admin. Rejected principals stay rejected. The evidence key is kept for the
// caller to purge.
func (s *InMemoryStore) UpsertAdmin(_ context.Context, p *models.Principal) (*models.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existingID, ok := s.byEmail[p.Email]; ok {
		existing := s.principals[existingID]
		if existing.Status == models.StatusRejected {
			return nil, fmt.Errorf("principal was rejected: %w", sentinel.ErrInvalidState)
		}
		existing.CredentialHash = p.CredentialHash
		existing.Status = models.StatusApproved
		existing.Role = models.RoleAdmin
		existing.Banned = false
		existing.UpdatedAt = p.UpdatedAt
		out := *existing
		return &out, nil
	}
	stored := *p
	stored.Status = models.StatusApproved
	stored.Role = models.RoleAdmin
	stored.Banned = false
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = p.UpdatedAt
	}
	s.principals[p.ID] = &stored
	s.byEmail[p.Email] = p.ID
	out := stored
	return &out, nil
}
