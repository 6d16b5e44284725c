package housekeeping

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/actionmesh/metacontrol/internal/activationstore"
	"github.com/actionmesh/metacontrol/internal/metamodel"
)

func TestCompactorRunOnceDeletesOlderThanRetention(t *testing.T) {
	store := activationstore.NewMemoryStore()
	now := time.Now().UTC()

	old := metamodel.TriggerActivation{Namespace: "ns", EntityName: "t", ActivationID: "old", Start: now.Add(-48 * time.Hour)}
	recent := metamodel.TriggerActivation{Namespace: "ns", EntityName: "t", ActivationID: "recent", Start: now.Add(-1 * time.Hour)}

	if err := store.Put(context.Background(), old); err != nil {
		t.Fatalf("put old: %v", err)
	}
	if err := store.Put(context.Background(), recent); err != nil {
		t.Fatalf("put recent: %v", err)
	}

	c, err := New(store, 24*time.Hour, "0 3 * * *", zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c.runOnce()

	remaining := store.All()
	if len(remaining) != 1 || remaining[0].ActivationID != "recent" {
		t.Fatalf("remaining = %+v, want only %q", remaining, "recent")
	}
}

func TestNewRejectsInvalidSchedule(t *testing.T) {
	store := activationstore.NewMemoryStore()
	if _, err := New(store, 24*time.Hour, "not a schedule", zap.NewNop()); err == nil {
		t.Fatal("expected error for invalid cron schedule")
	}
}
