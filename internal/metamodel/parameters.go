package metamodel

// Parameter is one key/value pair. Value holds an arbitrary JSON value
// (string, number, bool, map, slice, or nil).
type Parameter struct {
	Key   string
	Value any
}

// Parameters is an ordered sequence of Parameter. Annotations reuses the
// same shape for declarative control flags (meta, get, post, delete, feed).
type Parameters []Parameter

// Annotations is the same shape as Parameters, used for declarative
// per-package/per-action control rather than invocation payload data.
type Annotations = Parameters

// Get returns the value for key and whether it was present. When the same
// key appears more than once the last occurrence wins.
func (p Parameters) Get(key string) (any, bool) {
	var (
		val   any
		found bool
	)
	for _, kv := range p {
		if kv.Key == key {
			val, found = kv.Value, true
		}
	}
	return val, found
}

// GetString returns the value for key as a string, only if it is present
// and actually a string.
func (p Parameters) GetString(key string) (string, bool) {
	v, ok := p.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetBool returns the value for key as a bool, only if present and a bool.
func (p Parameters) GetBool(key string) (bool, bool) {
	v, ok := p.Get(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// ToMap renders the ordered sequence into a plain map, later duplicates
// overriding earlier ones. Insertion order is not preserved by a plain Go
// map; callers that need ordering should build an OrderedObject (as
// metamerge.Merge does) instead.
func (p Parameters) ToMap() map[string]any {
	out := make(map[string]any, len(p))
	for _, kv := range p {
		out[kv.Key] = kv.Value
	}
	return out
}

// OrderedObject is a merged parameter object that preserves first-seen key
// order while applying right-biased overrides, so canonical JSON
// serialization of repeated merges is byte-identical.
type OrderedObject struct {
	order []string
	data  map[string]any
}

// NewOrderedObject returns an empty ordered object.
func NewOrderedObject() *OrderedObject {
	return &OrderedObject{data: make(map[string]any)}
}

// Set assigns key=value. If key was already present its value is
// overwritten but its original position in Keys() is retained; a brand new
// key is appended at the end. This is the merge semantics callers rely on:
// "the value surviving into the backend payload equals the value from the
// latest source", while repeated merges of the same inputs stay
// byte-identical because position never depends on *when* an override
// happened, only on first appearance.
func (o *OrderedObject) Set(key string, value any) {
	if _, exists := o.data[key]; !exists {
		o.order = append(o.order, key)
	}
	o.data[key] = value
}

// SetAll applies Set for every parameter in p, in order.
func (o *OrderedObject) SetAll(p Parameters) {
	for _, kv := range p {
		o.Set(kv.Key, kv.Value)
	}
}

// Keys returns the key order.
func (o *OrderedObject) Keys() []string {
	return append([]string(nil), o.order...)
}

// Get returns the current value for key.
func (o *OrderedObject) Get(key string) (any, bool) {
	v, ok := o.data[key]
	return v, ok
}

// Map renders a plain map view, suitable for json.Marshal (Go's
// encoding/json on a map does not preserve insertion order on the wire, but
// MarshalOrderedJSON in json.go does when byte-exact key order matters).
func (o *OrderedObject) Map() map[string]any {
	out := make(map[string]any, len(o.data))
	for k, v := range o.data {
		out[k] = v
	}
	return out
}
