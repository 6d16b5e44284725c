// Package entitystore defines the read-only document store interface that
// PackageResolver and ParameterMerger consume, plus two reference
// implementations: an in-memory store for tests and local development, and
// a Postgres-backed store for a real deployment.
//
// The store is treated as opaque: callers only see Get-shaped operations
// and a NoDocument failure mode; CRUD management of packages/actions/
// triggers is explicitly out of scope here.
package entitystore

import (
	"context"
	"errors"
	"fmt"

	"github.com/actionmesh/metacontrol/internal/metamodel"
)

// ErrNoDocument is returned when a lookup finds nothing at that path.
var ErrNoDocument = errors.New("entitystore: no document")

// BackendError wraps any failure other than a missing document.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("entitystore: %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Store is the read-only surface PackageResolver and ParameterMerger need.
type Store interface {
	GetPackage(ctx context.Context, namespace, name string) (metamodel.Package, error)
	GetAction(ctx context.Context, namespace, pkg, name string) (metamodel.Action, error)
	GetTrigger(ctx context.Context, namespace, name string) (metamodel.Trigger, error)
}
