package metarouter

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/actionmesh/metacontrol/internal/activationlog"
	"github.com/actionmesh/metacontrol/internal/entitystore"
	"github.com/actionmesh/metacontrol/internal/errortranslate"
	"github.com/actionmesh/metacontrol/internal/fanout"
	"github.com/actionmesh/metacontrol/internal/metamodel"
	"github.com/actionmesh/metacontrol/internal/metrics"
)

// TriggerHandler serves trigger-fire requests: it resolves the trigger
// document, hands the firing off to RuleFanout (C6) in the background, and
// answers the caller immediately with the activation id it generated
// before fan-out started.
type TriggerHandler struct {
	entities entitystore.Store
	auth     authenticator
	fanout   *fanout.Fanout
	writer   *activationlog.Writer
	log      *zap.Logger
}

type authenticator interface {
	authenticate(ctx context.Context, r *http.Request) (metamodel.Identity, error)
}

// NewTriggerHandler wires a TriggerHandler from its dependencies. router
// supplies Basic-auth authentication so both HTTP entry points share one
// identity resolution path.
func NewTriggerHandler(entities entitystore.Store, router *Router, fo *fanout.Fanout, writer *activationlog.Writer, log *zap.Logger) *TriggerHandler {
	return &TriggerHandler{entities: entities, auth: router, fanout: fo, writer: writer, log: log}
}

// Mount registers "POST /triggers/{namespace}/{name}" on mux.
func (h *TriggerHandler) Mount(mux *http.ServeMux) {
	mux.Handle("POST /triggers/{namespace}/{name}", limitBody(http.HandlerFunc(h.handle)))
}

func (h *TriggerHandler) handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := h.auth.authenticate(ctx, r)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	namespace := r.PathValue("namespace")
	name := r.PathValue("name")

	trigger, err := h.entities.GetTrigger(ctx, namespace, name)
	if err != nil {
		writeResponse(w, errortranslate.Response{Status: 404})
		return
	}

	var payload map[string]any
	if r.ContentLength != 0 {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}
	payloadParams := make(metamodel.Parameters, 0, len(payload))
	for k, v := range payload {
		payloadParams = append(payloadParams, metamodel.Parameter{Key: k, Value: v})
	}

	activationID := uuid.NewString()
	start := time.Now()

	writeResponse(w, errortranslate.Response{Status: 202, JSON: map[string]any{"activationId": activationID}})

	go h.runFanout(trigger, identity, payloadParams, activationID, start)
}

func (h *TriggerHandler) runFanout(trigger metamodel.Trigger, caller metamodel.Identity, payload metamodel.Parameters, activationID string, start time.Time) {
	ctx := context.Background()

	results := h.fanout.Fire(ctx, caller, trigger, payload)

	logs := make([]string, 0, len(results))
	for _, result := range results {
		level, message := fanout.Classify(result.Outcome)
		metrics.RecordFanoutRuleOutcome(string(level))
		logs = append(logs, activationlog.FormatLine(time.Now(), level, trigger.Name, result.RuleName, result.ActionName, message))
	}

	end := time.Now()
	metrics.RecordFanoutDuration(end.Sub(start))
	h.writer.Persist(ctx, trigger.Namespace, trigger.Name, caller.Subject, activationID, start, end, logs)
}
