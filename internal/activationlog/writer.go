package activationlog

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/actionmesh/metacontrol/internal/activationstore"
	"github.com/actionmesh/metacontrol/internal/metamodel"
	"github.com/actionmesh/metacontrol/internal/metrics"
	"github.com/actionmesh/metacontrol/internal/telemetry"
)

// Writer persists one TriggerActivation document per fired trigger.
type Writer struct {
	store activationstore.Store
	log   *zap.Logger
}

// New returns a Writer backed by store.
func New(store activationstore.Store, log *zap.Logger) *Writer {
	return &Writer{store: store, log: log}
}

// Persist writes the completed activation document: a single put per
// fired trigger, and on failure an ERROR log with no retry — the
// activation id has already been reported to the caller, so a retried
// write would risk a duplicate record.
func (w *Writer) Persist(ctx context.Context, namespace, triggerName, subject, activationID string, start, end time.Time, logs []string) {
	ctx, span := telemetry.StartActivationLogSpan(ctx, activationID)
	defer span.End()

	duration := end.Sub(start)
	doc := metamodel.TriggerActivation{
		Namespace:    namespace,
		EntityName:   triggerName,
		Subject:      subject,
		ActivationID: activationID,
		Start:        start,
		End:          end,
		Response:     map[string]any{},
		Duration:     &duration,
		Logs:         logs,
	}
	if err := w.store.Put(ctx, doc); err != nil {
		metrics.RecordActivationStoreWriteFailure()
		telemetry.EndActivationLogSpan(span, false)
		w.log.Error("trigger activation store write failed",
			zap.String("activation_id", activationID),
			zap.String("trigger", triggerName),
			zap.Error(err))
		return
	}
	telemetry.EndActivationLogSpan(span, true)
}
