// Package provider holds the blob backends behind the evidence adapter.
// Providers report sentinel.ErrNotFound for missing keys and
// sentinel.ErrUnavailable for outages; the adapter maps them to domain codes.
package provider

import (
	"context"
	"fmt"
	"sync"

	"confessional/pkg/platform/sentinel"
)

// Provider stores and deletes opaque blobs by key.
type Provider interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}

// Memory keeps blobs in a map. Used by tests and dev mode.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string]Blob
}

// Blob is a stored payload with its declared content type.
type Blob struct {
	Data        []byte
	ContentType string
}

func NewMemory() *Memory {
	return &Memory{blobs: make(map[string]Blob)}
}

func (m *Memory) Put(_ context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = Blob{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[key]; !ok {
		return fmt.Errorf("blob %s: %w", key, sentinel.ErrNotFound)
	}
	delete(m.blobs, key)
	return nil
}

// Get returns a stored blob.
func (m *Memory) Get(_ context.Context, key string) (Blob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[key]
	if !ok {
		return Blob{}, fmt.Errorf("blob %s: %w", key, sentinel.ErrNotFound)
	}
	return b, nil
}

// Len returns the number of stored blobs.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
