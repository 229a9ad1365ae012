package queue

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"confessional/pkg/platform/sentinel"
)

type slot struct {
	Deletion
	used        bool
	leasedUntil time.Time
}

// Memory stores entries in a slice arena indexed by key. Freed slots are reused.
type Memory struct {
	mu    sync.Mutex
	arena []slot
	free  []int
	index map[string]int
}

func NewMemory() *Memory {
	return &Memory{index: make(map[string]int)}
}

func (m *Memory) Enqueue(_ context.Context, d Deletion) error {
	if d.Key == "" {
		return fmt.Errorf("deletion key is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.index[d.Key]; ok {
		return nil
	}
	var i int
	if n := len(m.free); n > 0 {
		i = m.free[n-1]
		m.free = m.free[:n-1]
		m.arena[i] = slot{Deletion: d, used: true}
	} else {
		i = len(m.arena)
		m.arena = append(m.arena, slot{Deletion: d, used: true})
	}
	m.index[d.Key] = i
	return nil
}

func (m *Memory) Lease(_ context.Context, now time.Time, limit int, leaseFor time.Duration) ([]Deletion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var due []int
	for i := range m.arena {
		s := &m.arena[i]
		if !s.used || s.Dead || s.NextAttemptAt.After(now) || s.leasedUntil.After(now) {
			continue
		}
		due = append(due, i)
	}
	sort.Slice(due, func(a, b int) bool {
		return m.arena[due[a]].NextAttemptAt.Before(m.arena[due[b]].NextAttemptAt)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	out := make([]Deletion, 0, len(due))
	for _, i := range due {
		m.arena[i].leasedUntil = now.Add(leaseFor)
		out = append(out, m.arena[i].Deletion)
	}
	return out, nil
}

func (m *Memory) Complete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.index[key]
	if !ok {
		return fmt.Errorf("deletion %s: %w", key, sentinel.ErrNotFound)
	}
	m.arena[i] = slot{}
	m.free = append(m.free, i)
	delete(m.index, key)
	return nil
}

func (m *Memory) Retry(_ context.Context, key string, attempts int, nextAttemptAt time.Time, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.index[key]
	if !ok {
		return fmt.Errorf("deletion %s: %w", key, sentinel.ErrNotFound)
	}
	s := &m.arena[i]
	s.Attempts = attempts
	s.NextAttemptAt = nextAttemptAt
	s.LastError = lastError
	s.leasedUntil = time.Time{}
	return nil
}

func (m *Memory) Bury(_ context.Context, key string, attempts int, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.index[key]
	if !ok {
		return fmt.Errorf("deletion %s: %w", key, sentinel.ErrNotFound)
	}
	s := &m.arena[i]
	s.Attempts = attempts
	s.LastError = lastError
	s.Dead = true
	return nil
}

func (m *Memory) Pending(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, i := range m.index {
		if !m.arena[i].Dead {
			n++
		}
	}
	return n, nil
}

// Get returns the entry for key, live or dead.
func (m *Memory) Get(key string) (Deletion, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.index[key]
	if !ok {
		return Deletion{}, false
	}
	return m.arena[i].Deletion, true
}
