package mcpfront

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/actionmesh/metacontrol/internal/activationclient"
	"github.com/actionmesh/metacontrol/internal/authstore"
	"github.com/actionmesh/metacontrol/internal/entitystore"
	"github.com/actionmesh/metacontrol/internal/metamodel"
	"github.com/actionmesh/metacontrol/internal/metaresolve"
	"github.com/actionmesh/metacontrol/internal/syscreds"
)

func newTestServer(t *testing.T, enabled bool, backend http.HandlerFunc) (*Server, *entitystore.MemoryStore) {
	t.Helper()
	backendSrv := httptest.NewServer(backend)
	t.Cleanup(backendSrv.Close)

	entities := entitystore.NewMemoryStore()
	auth := authstore.NewMemoryStore()
	auth.Put("guest", "guest", "guest-uuid", "guest-key")
	auth.Put("system", "system", "sys-uuid", "sys-key")

	resolver := metaresolve.New(entities, "system", zap.NewNop())
	client := activationclient.New(backendSrv.Client(), backendSrv.URL, "v1")
	creds := syscreds.New(auth, "system", zap.NewNop())

	s := New(resolver, entities, auth, creds, client, "system", enabled, zap.NewNop())
	return s, entities
}

func TestHandleInvokeSuccess(t *testing.T) {
	s, entities := newTestServer(t, true, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	})
	entities.PutPackage(metamodel.Package{
		Namespace: "system",
		Name:      "hello",
		Annotations: metamodel.Annotations{
			{Key: "meta", Value: true},
			{Key: "get", Value: "greet"},
		},
	})
	entities.PutAction(metamodel.Action{Namespace: "system", Package: "hello", Name: "greet"})

	result, _, err := s.handleInvoke(context.Background(), nil, invokeMetaActionInput{
		MetaPackage: "hello",
		Verb:        "GET",
		Subject:     "guest",
		Key:         "guest-key",
	})
	if err != nil {
		t.Fatalf("handleInvoke: %v", err)
	}
	if len(result.Content) != 1 {
		t.Fatalf("Content = %+v", result.Content)
	}
}

func TestHandleInvokeDisabledSurface(t *testing.T) {
	s, entities := newTestServer(t, false, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	entities.PutPackage(metamodel.Package{
		Namespace:   "system",
		Name:        "hello",
		Annotations: metamodel.Annotations{{Key: "meta", Value: true}, {Key: "get", Value: "hello/greet"}},
	})

	_, _, err := s.handleInvoke(context.Background(), nil, invokeMetaActionInput{
		MetaPackage: "hello",
		Verb:        "GET",
		Subject:     "guest",
		Key:         "guest-key",
	})
	if err == nil {
		t.Fatal("expected an error when the MCP surface is disabled")
	}
}

func TestHandleInvokeBadCredentials(t *testing.T) {
	s, _ := newTestServer(t, true, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	_, _, err := s.handleInvoke(context.Background(), nil, invokeMetaActionInput{
		MetaPackage: "hello",
		Verb:        "GET",
		Subject:     "guest",
		Key:         "wrong-key",
	})
	if err == nil {
		t.Fatal("expected an error for a bad credential")
	}
}

func TestHandleInvokePackageNotFound(t *testing.T) {
	s, _ := newTestServer(t, true, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	_, _, err := s.handleInvoke(context.Background(), nil, invokeMetaActionInput{
		MetaPackage: "missing",
		Verb:        "GET",
		Subject:     "guest",
		Key:         "guest-key",
	})
	if err == nil {
		t.Fatal("expected an error for an unresolvable meta package")
	}
}

func TestHandlerNilSafe(t *testing.T) {
	var s *Server
	if s.Handler() == nil {
		t.Fatal("Handler() should never return nil")
	}
}
