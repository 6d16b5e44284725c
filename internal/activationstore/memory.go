package activationstore

import (
	"context"
	"sync"
	"time"

	"github.com/actionmesh/metacontrol/internal/metamodel"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu   sync.RWMutex
	docs []metamodel.TriggerActivation
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Put(_ context.Context, doc metamodel.TriggerActivation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = append(m.docs, doc)
	return nil
}

// All returns every stored document, oldest first. Test helper.
func (m *MemoryStore) All() []metamodel.TriggerActivation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]metamodel.TriggerActivation(nil), m.docs...)
}

func (m *MemoryStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.docs[:0:0]
	var deleted int64
	for _, doc := range m.docs {
		if doc.Start.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, doc)
	}
	m.docs = kept
	return deleted, nil
}

var (
	_ Store            = (*MemoryStore)(nil)
	_ CompactableStore = (*MemoryStore)(nil)
)
