package metarouter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/actionmesh/metacontrol/internal/activationclient"
	"github.com/actionmesh/metacontrol/internal/activationlog"
	"github.com/actionmesh/metacontrol/internal/activationstore"
	"github.com/actionmesh/metacontrol/internal/authstore"
	"github.com/actionmesh/metacontrol/internal/entitystore"
	"github.com/actionmesh/metacontrol/internal/fanout"
	"github.com/actionmesh/metacontrol/internal/metamodel"
	"github.com/actionmesh/metacontrol/internal/metaresolve"
	"github.com/actionmesh/metacontrol/internal/syscreds"
)

func newTriggerTestRig(backend http.HandlerFunc) (*http.ServeMux, *entitystore.MemoryStore, *activationstore.MemoryStore) {
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

	fo := fanout.New(client)
	actStore := activationstore.NewMemoryStore()
	writer := activationlog.New(actStore, zap.NewNop())
	handler := NewTriggerHandler(entities, router, fo, writer, zap.NewNop())

	mux := http.NewServeMux()
	handler.Mount(mux)

	return mux, entities, actStore
}

var _ = Describe("TriggerHandler", func() {
	It("accepts a fire and fans out to active rules", func() {
		mux, entities, actStore := newTriggerTestRig(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{}`))
		})
		entities.PutTrigger(metamodel.Trigger{
			Namespace: "guest",
			Name:      "onEvent",
			Rules: map[string]metamodel.Rule{
				"ruleA": {Action: metamodel.EntityPath{Namespace: "guest", Name: "actA"}, Status: metamodel.RuleActive},
			},
			RuleOrder: []string{"ruleA"},
		})

		req := httptest.NewRequest(http.MethodPost, "/triggers/guest/onEvent", strings.NewReader(`{"k":"v"}`))
		req.SetBasicAuth("guest", "guest-key")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusAccepted))
		var accepted struct {
			ActivationID string `json:"activationId"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &accepted)).To(Succeed())
		Expect(accepted.ActivationID).NotTo(BeEmpty())

		Eventually(actStore.All).Should(HaveLen(1))
		docs := actStore.All()
		Expect(docs[0].ActivationID).To(Equal(accepted.ActivationID))
	})

	It("returns 404 for an unknown trigger", func() {
		mux, _, _ := newTriggerTestRig(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

		req := httptest.NewRequest(http.MethodPost, "/triggers/guest/missing", nil)
		req.SetBasicAuth("guest", "guest-key")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("rejects a fire with no credentials", func() {
		mux, _, _ := newTriggerTestRig(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

		req := httptest.NewRequest(http.MethodPost, "/triggers/guest/onEvent", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})
})
