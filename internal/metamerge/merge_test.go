package metamerge

import (
	"errors"
	"testing"

	"github.com/actionmesh/metacontrol/internal/metamodel"
)

func TestMergeOrderAndOverride(t *testing.T) {
	req := Request{
		PkgParameters:    metamodel.Parameters{{Key: "greeting", Value: "hi"}, {Key: "shared", Value: "pkg"}},
		ActionParameters: metamodel.Parameters{{Key: "shared", Value: "action"}, {Key: "extra", Value: 1}},
		Query:            map[string][]string{"shared": {"query"}},
		Body:             []byte(`{"shared":"body","name":"joe"}`),
		Verb:             "GET",
		Path:             "/hello",
		Namespace:        "guest",
	}

	merged, err := Merge(req)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	if v, ok := merged.Get("shared"); !ok || v != "body" {
		t.Errorf("shared = %v, want %q (body wins last)", v, "body")
	}
	if v, ok := merged.Get("greeting"); !ok || v != "hi" {
		t.Errorf("greeting = %v, want %q", v, "hi")
	}
	if v, ok := merged.Get("name"); !ok || v != "joe" {
		t.Errorf("name = %v, want %q", v, "joe")
	}
	if v, ok := merged.Get("__ow_meta_verb"); !ok || v != "GET" {
		t.Errorf("__ow_meta_verb = %v, want GET", v)
	}
	if v, ok := merged.Get("__ow_meta_path"); !ok || v != "/hello" {
		t.Errorf("__ow_meta_path = %v, want /hello", v)
	}
	if v, ok := merged.Get("__ow_meta_namespace"); !ok || v != "guest" {
		t.Errorf("__ow_meta_namespace = %v, want guest", v)
	}

	// shared first appeared while folding PkgParameters, so its position
	// must stay there despite later overrides.
	keys := merged.Keys()
	if keys[1] != "shared" {
		t.Errorf("key order = %v, want shared at index 1", keys)
	}
}

func TestMergeQueryLastValueWins(t *testing.T) {
	req := Request{Query: map[string][]string{"page": {"1", "2", "3"}}}
	merged, err := Merge(req)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if v, ok := merged.Get("page"); !ok || v != "3" {
		t.Errorf("page = %v, want %q", v, "3")
	}
}

func TestMergeEmptyBodyIsEmptyObject(t *testing.T) {
	merged, err := Merge(Request{})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(merged.Keys()) != 3 {
		t.Errorf("Keys() = %v, want only the 3 injected __ow_meta_* fields", merged.Keys())
	}
}

func TestMergeNonObjectBodyRejected(t *testing.T) {
	_, err := Merge(Request{Body: []byte(`[1,2,3]`)})
	if !errors.Is(err, ErrUnsupportedMedia) {
		t.Fatalf("err = %v, want ErrUnsupportedMedia", err)
	}
}

func TestMergeInvalidJSONRejected(t *testing.T) {
	_, err := Merge(Request{Body: []byte(`not json`)})
	if !errors.Is(err, ErrUnsupportedMedia) {
		t.Fatalf("err = %v, want ErrUnsupportedMedia", err)
	}
}

func TestMergeCallerCannotShadowInjectedFields(t *testing.T) {
	req := Request{
		Body: []byte(`{"__ow_meta_verb":"HACKED"}`),
		Verb: "POST",
	}
	merged, err := Merge(req)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if v, _ := merged.Get("__ow_meta_verb"); v != "POST" {
		t.Errorf("__ow_meta_verb = %v, want POST (system field must win)", v)
	}
}
