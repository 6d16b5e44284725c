package metarouter

import (
	"encoding/json"
	"net/http"

	"github.com/actionmesh/metacontrol/internal/errortranslate"
)

// writeResponse renders an errortranslate.Response onto the wire: a JSON
// body for 200/202/500, plain text for 415, and an empty body for 404/405.
func writeResponse(w http.ResponseWriter, resp errortranslate.Response) {
	switch {
	case resp.JSON != nil:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.Status)
		_ = json.NewEncoder(w).Encode(resp.JSON)
	case resp.Text != "":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(resp.Status)
		_, _ = w.Write([]byte(resp.Text))
	default:
		w.WriteHeader(resp.Status)
	}
}
