// Package metaresolve implements PackageResolver (C3): mapping an inbound
// meta-package name and HTTP verb to the system action that serves it.
package metaresolve

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/actionmesh/metacontrol/internal/entitystore"
	"github.com/actionmesh/metacontrol/internal/metamodel"
	"github.com/actionmesh/metacontrol/internal/metrics"
	"github.com/actionmesh/metacontrol/internal/telemetry"
)

// Kind distinguishes resolution failure modes, each translated to a
// distinct HTTP status by ErrorTranslator (C8).
type Kind int

const (
	// NotFound means no package document exists at systemId/<metaPackageName>.
	NotFound Kind = iota
	// NotMeta means the package exists but is not annotated meta=true.
	NotMeta
	// VerbNotMapped means the package is meta-routable but has no
	// annotation for the requested verb.
	VerbNotMapped
)

// Error is a typed resolution failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func notFound(msg string) error     { return &Error{Kind: NotFound, Message: msg} }
func notMeta(msg string) error      { return &Error{Kind: NotMeta, Message: msg} }
func verbNotMapped(msg string) error { return &Error{Kind: VerbNotMapped, Message: msg} }

// ResolvedAction is the package resolution result: which system action
// serves the request, plus the package-level parameters to fold in first.
type ResolvedAction struct {
	Package       metamodel.Package
	ActionName    string
	PkgParameters metamodel.Parameters
}

// Resolver resolves meta-package + verb pairs against the entity store.
type Resolver struct {
	store    entitystore.Store
	systemID string
	log      *zap.Logger
}

// New returns a Resolver that looks up packages under systemID.
func New(store entitystore.Store, systemID string, log *zap.Logger) *Resolver {
	return &Resolver{store: store, systemID: systemID, log: log}
}

// Resolve loads systemId/<metaPackageName> and maps verb to the action it
// names: missing package → NotFound; meta annotation absent or false →
// NotMeta; verb annotation absent or non-string → VerbNotMapped;
// publish=true packages are logged at WARN since they are unexpectedly
// exposed outside the system namespace.
func (r *Resolver) Resolve(ctx context.Context, metaPackageName, verb string) (ResolvedAction, error) {
	ctx, span := telemetry.StartResolveSpan(ctx, metaPackageName)
	defer span.End()

	pkg, err := r.store.GetPackage(ctx, r.systemID, metaPackageName)
	if err != nil {
		if errors.Is(err, entitystore.ErrNoDocument) {
			metrics.RecordRouteResolution("not_found")
			telemetry.EndResolveSpan(span, "not_found")
			return ResolvedAction{}, notFound(fmt.Sprintf("metaresolve: no such package %q", metaPackageName))
		}
		metrics.RecordRouteResolution("error")
		telemetry.EndResolveSpan(span, "error")
		return ResolvedAction{}, fmt.Errorf("metaresolve: load package %q: %w", metaPackageName, err)
	}

	if isMeta, ok := pkg.Annotations.GetBool("meta"); !ok || !isMeta {
		metrics.RecordRouteResolution("not_meta")
		telemetry.EndResolveSpan(span, "not_meta")
		return ResolvedAction{}, notMeta(fmt.Sprintf("metaresolve: package %q is not meta-routable", metaPackageName))
	}

	if pkg.Publish {
		r.log.Warn("meta-routable package is published", zap.String("package", pkg.FQN().String()))
	}

	verbKey := metamodel.VerbAnnotationKey(verb)
	if verbKey == "" {
		metrics.RecordRouteResolution("verb_not_mapped")
		telemetry.EndResolveSpan(span, "verb_not_mapped")
		return ResolvedAction{}, verbNotMapped(fmt.Sprintf("metaresolve: verb %q is not routable", verb))
	}

	actionName, ok := pkg.Annotations.GetString(verbKey)
	if !ok || actionName == "" {
		metrics.RecordRouteResolution("verb_not_mapped")
		telemetry.EndResolveSpan(span, "verb_not_mapped")
		return ResolvedAction{}, verbNotMapped(fmt.Sprintf("metaresolve: package %q has no %s action mapped", metaPackageName, verbKey))
	}

	metrics.RecordRouteResolution("success")
	telemetry.EndResolveSpan(span, "success")
	return ResolvedAction{
		Package:       pkg,
		ActionName:    actionName,
		PkgParameters: pkg.Parameters,
	}, nil
}
