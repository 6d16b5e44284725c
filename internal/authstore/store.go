// Package authstore resolves subjects (callers and the privileged system
// identity) to their AuthKey credentials. It backs SystemCredentialSource
// (C2) and the HTTP Basic auth identity extraction at the meta-routing
// front door. Each record keeps a bcrypt hash of its key, used to verify
// inbound keys, alongside the plaintext key itself (see Record).
package authstore

import (
	"context"
	"errors"

	"github.com/actionmesh/metacontrol/internal/metamodel"
)

// ErrNoSubject is returned when no credential record exists for a subject.
var ErrNoSubject = errors.New("authstore: no such subject")

// Record is a stored credential for one subject. Key is the literal secret
// presented as HTTP Basic auth to the backend — SystemCredentialSource (C2)
// needs it verbatim to forward on the system identity's behalf, so it
// cannot be stored only as a one-way hash. KeyHash protects against a
// read of the store leaking Key outright: inbound caller credentials are
// checked against KeyHash, never by comparing Key directly.
type Record struct {
	Subject   string
	Namespace string
	UUID      string
	Key       string
	KeyHash   string // bcrypt hash of Key
}

// Store looks up a subject's stored credential record. Checking a caller's
// plaintext key against that record is done separately, by Verify.
type Store interface {
	// Lookup returns the stored record for subject, used by
	// SystemCredentialSource to fetch the system identity's key once and,
	// together with Verify below, for caller requests.
	Lookup(ctx context.Context, subject string) (Record, error)
}

// Verify checks a plaintext key against the record's bcrypt hash and, on
// success, returns the resolved Identity.
func Verify(record Record, plaintextKey string) (metamodel.Identity, error) {
	if err := compareHash(record.KeyHash, plaintextKey); err != nil {
		return metamodel.Identity{}, err
	}
	return metamodel.Identity{
		Subject:   record.Subject,
		Namespace: record.Namespace,
		AuthKey:   metamodel.AuthKey{UUID: record.UUID, Key: plaintextKey},
	}, nil
}
