package metarouter

import (
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/actionmesh/metacontrol/internal/activationclient"
	"github.com/actionmesh/metacontrol/internal/authstore"
	"github.com/actionmesh/metacontrol/internal/entitystore"
	"github.com/actionmesh/metacontrol/internal/metamodel"
	"github.com/actionmesh/metacontrol/internal/metaresolve"
	"github.com/actionmesh/metacontrol/internal/syscreds"
)

type testRig struct {
	router   *Router
	mux      *http.ServeMux
	entities *entitystore.MemoryStore
	auth     *authstore.MemoryStore
}

func newTestRig(backend http.HandlerFunc) *testRig {
	backendSrv := httptest.NewServer(backend)
	DeferCleanup(backendSrv.Close)

	entities := entitystore.NewMemoryStore()
	auth := authstore.NewMemoryStore()
	auth.Put("guest", "guest", "guest-uuid", "guest-key")
	auth.Put("system", "system", "sys-uuid", "sys-key")

	resolver := metaresolve.New(entities, "system", zap.NewNop())
	client := activationclient.New(backendSrv.Client(), backendSrv.URL, "v1")
	creds := syscreds.New(auth, "system", zap.NewNop())

	cfg := Config{APIPath: "api", APIVersion: "v1", Prefix: "web", SystemID: "system"}
	router := New(cfg, resolver, entities, auth, creds, client, zap.NewNop())

	mux := http.NewServeMux()
	router.Mount(mux)

	return &testRig{router: router, mux: mux, entities: entities, auth: auth}
}

func seedMetaPackage(entities *entitystore.MemoryStore) {
	entities.PutPackage(metamodel.Package{
		Namespace: "system",
		Name:      "hello",
		Annotations: metamodel.Annotations{
			{Key: "meta", Value: true},
			{Key: "get", Value: "greet"},
		},
	})
	entities.PutAction(metamodel.Action{Namespace: "system", Package: "hello", Name: "greet"})
}

var _ = Describe("Router", func() {
	It("round-trips a successful GET through to the backend", func() {
		rig := newTestRig(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"greeting":"hi"}`))
		})
		seedMetaPackage(rig.entities)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/web/hello", nil)
		req.SetBasicAuth("guest", "guest-key")
		rec := httptest.NewRecorder()
		rig.mux.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("hi"))
	})

	It("rejects a request with no credentials", func() {
		rig := newTestRig(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
		seedMetaPackage(rig.entities)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/web/hello", nil)
		rec := httptest.NewRecorder()
		rig.mux.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("returns 404 for an unknown meta-package", func() {
		rig := newTestRig(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/api/v1/web/missing", nil)
		req.SetBasicAuth("guest", "guest-key")
		rec := httptest.NewRecorder()
		rig.mux.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("returns 405 for a verb the package does not map", func() {
		rig := newTestRig(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
		seedMetaPackage(rig.entities)

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/web/hello", nil)
		req.SetBasicAuth("guest", "guest-key")
		rec := httptest.NewRecorder()
		rig.mux.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed))
	})

	It("returns 415 for a non-object JSON body", func() {
		rig := newTestRig(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
		seedMetaPackage(rig.entities)
		rig.entities.PutPackage(metamodel.Package{
			Namespace: "system",
			Name:      "hello",
			Annotations: metamodel.Annotations{
				{Key: "meta", Value: true},
				{Key: "post", Value: "greet"},
			},
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/web/hello", strings.NewReader(`[1,2,3]`))
		req.SetBasicAuth("guest", "guest-key")
		rec := httptest.NewRecorder()
		rig.mux.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusUnsupportedMediaType))
	})

	It("returns 500 for a backend failure", func() {
		rig := newTestRig(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"backend exploded"}`))
		})
		seedMetaPackage(rig.entities)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/web/hello", nil)
		req.SetBasicAuth("guest", "guest-key")
		rec := httptest.NewRecorder()
		rig.mux.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
	})
})
