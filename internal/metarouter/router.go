// Package metarouter implements MetaRouter (C5): the HTTP front door that
// matches meta-routed URLs, drives PackageResolver, ParameterMerger and
// ActivationClient, and writes the terminal response.
package metarouter

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/actionmesh/metacontrol/internal/activationclient"
	"github.com/actionmesh/metacontrol/internal/authstore"
	"github.com/actionmesh/metacontrol/internal/entitystore"
	"github.com/actionmesh/metacontrol/internal/errortranslate"
	"github.com/actionmesh/metacontrol/internal/metamerge"
	"github.com/actionmesh/metacontrol/internal/metamodel"
	"github.com/actionmesh/metacontrol/internal/metaresolve"
	"github.com/actionmesh/metacontrol/internal/syscreds"
	"github.com/actionmesh/metacontrol/internal/telemetry"
)

// Config names the URL shape the router matches and the system namespace
// meta-routed actions live under.
type Config struct {
	APIPath    string // e.g. "api"
	APIVersion string // e.g. "v1"
	Prefix     string // e.g. "web"
	SystemID   string
}

// Router is MetaRouter (C5): the meta-package URL routing surface. Trigger
// firing is a distinct endpoint served by TriggerHandler in this same
// package, since it drives RuleFanout (C6) rather than C3/C4/C1 directly.
type Router struct {
	cfg      Config
	resolver *metaresolve.Resolver
	entities entitystore.Store
	auth     authstore.Store
	creds    *syscreds.Source
	client   *activationclient.Client
	log      *zap.Logger
}

// New wires a Router from its dependencies.
func New(
	cfg Config,
	resolver *metaresolve.Resolver,
	entities entitystore.Store,
	auth authstore.Store,
	creds *syscreds.Source,
	client *activationclient.Client,
	log *zap.Logger,
) *Router {
	return &Router{
		cfg: cfg, resolver: resolver, entities: entities, auth: auth,
		creds: creds, client: client, log: log,
	}
}

// Mount registers the meta-routing patterns on mux for GET, POST and
// DELETE. Stdlib http.ServeMux already answers 405 with an Allow header
// when a different method is registered for the same path shape.
func (rt *Router) Mount(mux *http.ServeMux) {
	base := "/" + strings.Trim(strings.Join([]string{rt.cfg.APIPath, rt.cfg.APIVersion, rt.cfg.Prefix}, "/"), "/")
	handler := limitBody(http.HandlerFunc(rt.handle))
	for _, verb := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		mux.Handle(verb+" "+base+"/{metaPackage}", handler)
		mux.Handle(verb+" "+base+"/{metaPackage}/{rest...}", handler)
	}
}

func (rt *Router) handle(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	metaPackage := r.PathValue("metaPackage")
	// The residual path is cut from the escaped URL path so percent-encoded
	// bytes reach the action unchanged: "" for no residual, "/" for a bare
	// trailing slash, "/a/b" otherwise.
	base := "/" + strings.Trim(strings.Join([]string{rt.cfg.APIPath, rt.cfg.APIVersion, rt.cfg.Prefix}, "/"), "/")
	afterBase := strings.TrimPrefix(r.URL.EscapedPath(), base+"/")
	residual := ""
	if i := strings.IndexByte(afterBase, '/'); i >= 0 {
		residual = afterBase[i:]
	}

	ctx, span := telemetry.StartRequestSpan(r.Context(), requestID, metaPackage, r.Method)
	defer span.End()

	identity, err := rt.authenticate(ctx, r)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	resolved, err := rt.resolver.Resolve(ctx, metaPackage, r.Method)
	if err != nil {
		writeResponse(w, errortranslate.FromResolutionError(err))
		return
	}

	action, err := rt.entities.GetAction(ctx, rt.cfg.SystemID, resolved.Package.Name, resolved.ActionName)
	if err != nil {
		writeResponse(w, errortranslate.Response{Status: 500, JSON: map[string]any{"error": "action not found", "code": 0}})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeResponse(w, errortranslate.Response{Status: 500, JSON: map[string]any{"error": "failed to read request body", "code": 0}})
		return
	}

	merged, err := metamerge.Merge(metamerge.Request{
		PkgParameters:    resolved.PkgParameters,
		ActionParameters: action.Parameters,
		Query:            r.URL.Query(),
		Body:             body,
		Verb:             r.Method,
		Path:             residual,
		Namespace:        identity.Namespace,
	})
	if err != nil {
		writeResponse(w, errortranslate.FromUnsupportedMedia())
		return
	}

	systemKey, err := rt.creds.Credentials(ctx)
	if err != nil {
		writeResponse(w, errortranslate.Response{Status: 500, JSON: map[string]any{"error": "internal error", "code": 0}})
		return
	}
	systemIdentity := metamodel.Identity{Subject: rt.cfg.SystemID, Namespace: rt.cfg.SystemID, AuthKey: systemKey}

	target := metamodel.SystemActionPath(rt.cfg.SystemID, resolved.Package.Name, resolved.ActionName)
	invokeCtx, invokeSpan := telemetry.StartInvokeSpan(ctx, target.Namespace, target.String())
	outcome, err := rt.client.Invoke(invokeCtx, systemIdentity, target, merged)
	if err != nil {
		telemetry.EndInvokeSpan(invokeSpan, "error")
		rt.log.Error("activation client invoke failed", zap.Error(err))
		writeResponse(w, errortranslate.Response{Status: 500, JSON: map[string]any{"error": "internal error", "code": 0}})
		return
	}
	telemetry.EndInvokeSpan(invokeSpan, string(outcome.Kind))

	writeResponse(w, errortranslate.FromOutcome(outcome, requestID))
}

// authenticate extracts the caller's identity from HTTP Basic auth and
// verifies it against the auth store.
func (rt *Router) authenticate(ctx context.Context, r *http.Request) (metamodel.Identity, error) {
	subject, key, ok := r.BasicAuth()
	if !ok {
		return metamodel.Identity{}, errUnauthenticated
	}
	record, err := rt.auth.Lookup(ctx, subject)
	if err != nil {
		return metamodel.Identity{}, errUnauthenticated
	}
	return authstore.Verify(record, key)
}

var errUnauthenticated = &unauthenticatedError{}

type unauthenticatedError struct{}

func (*unauthenticatedError) Error() string { return "metarouter: missing or invalid credentials" }
