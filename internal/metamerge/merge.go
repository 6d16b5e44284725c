// Package metamerge implements ParameterMerger (C4): folding package
// parameters, action defaults, query parameters and the request body into
// the single ordered object forwarded to the backend action.
package metamerge

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/actionmesh/metacontrol/internal/metamodel"
)

// ErrUnsupportedMedia is returned when the request body is present and is
// not a JSON object: either valid JSON of another type or not JSON at all
// (both answered with HTTP 415).
var ErrUnsupportedMedia = errors.New("metamerge: request body must be a JSON object")

// Request carries the inputs ParameterMerger folds together.
type Request struct {
	PkgParameters    metamodel.Parameters
	ActionParameters metamodel.Parameters
	Query            map[string][]string
	Body             []byte // raw request body, possibly empty
	Verb             string
	Path             string
	Namespace        string
}

// Merge performs the strict left-to-right fold: package parameters, then
// action default parameters, then caller query parameters (flattened to
// strings), then the caller request body (an empty object if absent), then
// the system-injected __ow_meta_* fields last so nothing the caller sends
// can shadow them.
func Merge(req Request) (*metamodel.OrderedObject, error) {
	merged := metamodel.NewOrderedObject()
	merged.SetAll(req.PkgParameters)
	merged.SetAll(req.ActionParameters)

	queryKeys := make([]string, 0, len(req.Query))
	for key := range req.Query {
		queryKeys = append(queryKeys, key)
	}
	sort.Strings(queryKeys)
	for _, key := range queryKeys {
		values := req.Query[key]
		if len(values) == 0 {
			continue
		}
		merged.Set(key, values[len(values)-1])
	}

	body, err := decodeBody(req.Body)
	if err != nil {
		return nil, err
	}
	merged.SetAll(body)

	merged.Set("__ow_meta_verb", req.Verb)
	merged.Set("__ow_meta_path", req.Path)
	merged.Set("__ow_meta_namespace", req.Namespace)

	return merged, nil
}

// decodeBody parses raw into Parameters, treating an empty body as an
// empty object and rejecting any JSON value that is not an object.
func decodeBody(raw []byte) (metamodel.Parameters, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMedia, err)
	}

	// Go randomizes map iteration order per run; sort keys so repeated
	// merges of the same body produce byte-identical ordered output.
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	params := make(metamodel.Parameters, 0, len(obj))
	for _, k := range keys {
		params = append(params, metamodel.Parameter{Key: k, Value: obj[k]})
	}
	return params, nil
}
