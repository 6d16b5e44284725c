package activationstore

import (
	"context"
	"testing"
	"time"

	"github.com/actionmesh/metacontrol/internal/metamodel"
)

func TestMemoryStorePutAndAll(t *testing.T) {
	store := NewMemoryStore()
	doc := metamodel.TriggerActivation{Namespace: "guest", EntityName: "onEvent", ActivationID: "act-1", Start: time.Now()}
	if err := store.Put(context.Background(), doc); err != nil {
		t.Fatalf("Put: %v", err)
	}
	docs := store.All()
	if len(docs) != 1 || docs[0].ActivationID != "act-1" {
		t.Fatalf("docs = %+v", docs)
	}
}

func TestMemoryStoreDeleteOlderThan(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.Put(context.Background(), metamodel.TriggerActivation{ActivationID: "old", Start: now.Add(-48 * time.Hour)})
	store.Put(context.Background(), metamodel.TriggerActivation{ActivationID: "recent", Start: now.Add(-1 * time.Hour)})

	deleted, err := store.DeleteOlderThan(context.Background(), now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}
	remaining := store.All()
	if len(remaining) != 1 || remaining[0].ActivationID != "recent" {
		t.Fatalf("remaining = %+v", remaining)
	}
}
