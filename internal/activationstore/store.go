// Package activationstore persists TriggerActivation documents. The store
// is a write-mostly opaque document store from the core's perspective: Put
// failures are logged by the caller, never surfaced or retried.
package activationstore

import (
	"context"
	"time"

	"github.com/actionmesh/metacontrol/internal/metamodel"
)

// Store is the persistence surface TriggerActivationWriter (C7) depends on.
type Store interface {
	Put(ctx context.Context, doc metamodel.TriggerActivation) error
}

// CompactableStore additionally supports retention housekeeping
// (internal/housekeeping), which is not part of the core Meta API /
// fan-out contract but a reasonable operational extension of an
// otherwise-unbounded write-only store.
type CompactableStore interface {
	Store
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
