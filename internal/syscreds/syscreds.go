// Package syscreds resolves and caches the privileged system identity used
// by the Meta API to call into the serverless backend on the caller's
// behalf (C2). The system identity is looked up once per process lifetime
// and reused; it is only re-fetched if a prior lookup failed to produce a
// usable credential.
package syscreds

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/actionmesh/metacontrol/internal/authstore"
	"github.com/actionmesh/metacontrol/internal/metamodel"
)

// Source lazily resolves and caches the system identity's AuthKey.
type Source struct {
	store    authstore.Store
	systemID string
	log      *zap.Logger

	mu       sync.RWMutex
	cached   metamodel.AuthKey
	resolved bool
}

// New returns a Source that will look up systemID in store on first use.
func New(store authstore.Store, systemID string, log *zap.Logger) *Source {
	return &Source{store: store, systemID: systemID, log: log}
}

// Credentials returns the cached system AuthKey, fetching it from the
// backing store on the first call or after any previous fetch failed.
// Concurrent callers during the first resolution each perform their own
// lookup; the result of whichever succeeds first becomes the cached value.
func (s *Source) Credentials(ctx context.Context) (metamodel.AuthKey, error) {
	s.mu.RLock()
	if s.resolved {
		key := s.cached
		s.mu.RUnlock()
		return key, nil
	}
	s.mu.RUnlock()

	record, err := s.store.Lookup(ctx, s.systemID)
	if err != nil {
		s.log.Error("system credential lookup failed", zap.String("subject", s.systemID), zap.Error(err))
		return metamodel.AuthKey{}, fmt.Errorf("syscreds: lookup system identity %q: %w", s.systemID, err)
	}

	key := metamodel.AuthKey{UUID: record.UUID, Key: record.Key}

	s.mu.Lock()
	if !s.resolved {
		s.cached = key
		s.resolved = true
	}
	key = s.cached
	s.mu.Unlock()

	return key, nil
}
