package metamodel

import "testing"

func TestOrderedObjectKeepsFirstSeenPosition(t *testing.T) {
	o := NewOrderedObject()
	o.SetAll(Parameters{{Key: "y", Value: "Y"}, {Key: "z", Value: "z"}})
	o.SetAll(Parameters{{Key: "z", Value: "Z"}})
	o.SetAll(Parameters{{Key: "a", Value: "b"}})

	if got := o.Keys(); len(got) != 3 || got[0] != "y" || got[1] != "z" || got[2] != "a" {
		t.Fatalf("unexpected key order: %v", got)
	}
	v, _ := o.Get("z")
	if v != "Z" {
		t.Fatalf("expected z overridden to Z, got %v", v)
	}
}

func TestOrderedObjectRepeatedMergeIsByteIdentical(t *testing.T) {
	build := func() []byte {
		o := NewOrderedObject()
		o.SetAll(Parameters{{Key: "x", Value: "X"}, {Key: "z", Value: "z"}})
		o.SetAll(Parameters{{Key: "y", Value: "Y"}, {Key: "z", Value: "Z"}})
		o.SetAll(Parameters{{Key: "foo", Value: "bar"}})
		b, err := o.MarshalOrderedJSON()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return b
	}

	first, second := build(), build()
	if string(first) != string(second) {
		t.Fatalf("merges not byte-identical: %q vs %q", first, second)
	}
}

func TestEntityPathRoundTrip(t *testing.T) {
	cases := []string{"/ns/name", "/ns/pkg/name"}
	for _, raw := range cases {
		p, err := ParseEntityPath(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if p.String() != raw {
			t.Fatalf("round trip mismatch: %q -> %q", raw, p.String())
		}
	}
}

func TestTriggerActiveRulesPreservesDeclarationOrder(t *testing.T) {
	trg := Trigger{
		RuleOrder: []string{"r1", "r2", "r3"},
		Rules: map[string]Rule{
			"r1": {Status: RuleActive},
			"r2": {Status: RuleInactive},
			"r3": {Status: RuleActive},
		},
	}
	active := trg.ActiveRules()
	if len(active) != 2 || active[0].Name != "r1" || active[1].Name != "r3" {
		t.Fatalf("unexpected active rule order: %+v", active)
	}
}
