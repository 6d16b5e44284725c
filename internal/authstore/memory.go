package authstore

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Put seeds a credential record, hashing plaintextKey with bcrypt.
func (m *MemoryStore) Put(subject, namespace, uuid, plaintextKey string) error {
	hash, err := HashKey(plaintextKey)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[subject] = Record{Subject: subject, Namespace: namespace, UUID: uuid, Key: plaintextKey, KeyHash: hash}
	return nil
}

func (m *MemoryStore) Lookup(_ context.Context, subject string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[subject]
	if !ok {
		return Record{}, ErrNoSubject
	}
	return record, nil
}

var _ Store = (*MemoryStore)(nil)
