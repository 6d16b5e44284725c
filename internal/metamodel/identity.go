// Package metamodel defines the entities the meta-routing core operates on:
// identities, entity paths, parameter/annotation bags, packages, triggers,
// activation outcomes and trigger activation records. Everything here is
// read-only from the perspective of the router and fan-out components;
// only TriggerActivation is ever constructed and persisted by this module.
package metamodel

// AuthKey is the credential pair presented as HTTP Basic auth to the
// backend action endpoint: uuid as user, key as password.
type AuthKey struct {
	UUID string
	Key  string
}

// Identity is the authenticated principal attached to an incoming request.
// It is resolved by the authentication layer before the router sees the
// request and is immutable for the lifetime of that request.
type Identity struct {
	Subject   string
	Namespace string
	AuthKey   AuthKey
}
