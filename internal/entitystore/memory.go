package entitystore

import (
	"context"
	"sync"

	"github.com/actionmesh/metacontrol/internal/metamodel"
)

// MemoryStore is an in-memory Store, used in tests and for local
// development without a Postgres instance.
type MemoryStore struct {
	mu       sync.RWMutex
	packages map[string]metamodel.Package
	actions  map[string]metamodel.Action
	triggers map[string]metamodel.Trigger
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		packages: make(map[string]metamodel.Package),
		actions:  make(map[string]metamodel.Action),
		triggers: make(map[string]metamodel.Trigger),
	}
}

// PutPackage seeds a package document.
func (m *MemoryStore) PutPackage(pkg metamodel.Package) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.packages[pkg.FQN().String()] = pkg
}

// PutAction seeds an action document.
func (m *MemoryStore) PutAction(action metamodel.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions[action.FQN().String()] = action
}

// PutTrigger seeds a trigger document.
func (m *MemoryStore) PutTrigger(trigger metamodel.Trigger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triggers[trigger.FQN().String()] = trigger
}

func (m *MemoryStore) GetPackage(_ context.Context, namespace, name string) (metamodel.Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key := (metamodel.EntityPath{Namespace: namespace, Name: name}).String()
	pkg, ok := m.packages[key]
	if !ok {
		return metamodel.Package{}, ErrNoDocument
	}
	return pkg, nil
}

func (m *MemoryStore) GetAction(_ context.Context, namespace, pkg, name string) (metamodel.Action, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key := (metamodel.EntityPath{Namespace: namespace, Package: pkg, Name: name}).String()
	action, ok := m.actions[key]
	if !ok {
		return metamodel.Action{}, ErrNoDocument
	}
	return action, nil
}

func (m *MemoryStore) GetTrigger(_ context.Context, namespace, name string) (metamodel.Trigger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key := (metamodel.EntityPath{Namespace: namespace, Name: name}).String()
	trigger, ok := m.triggers[key]
	if !ok {
		return metamodel.Trigger{}, ErrNoDocument
	}
	return trigger, nil
}

var _ Store = (*MemoryStore)(nil)
