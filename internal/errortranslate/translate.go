// Package errortranslate implements ErrorTranslator (C8): the single place
// that turns a resolution error or an ActivationOutcome into the HTTP
// status and body the caller actually sees.
package errortranslate

import (
	"hash/fnv"
	"strconv"

	"github.com/actionmesh/metacontrol/internal/core/transportwriter"
	"github.com/actionmesh/metacontrol/internal/metamerge"
	"github.com/actionmesh/metacontrol/internal/metamodel"
	"github.com/actionmesh/metacontrol/internal/metaresolve"
)

// Response is the terminal shape MetaRouter (C5) writes to the wire: a
// status code, and either a JSON body, a plain-text body, or neither.
type Response struct {
	Status int
	JSON   map[string]any
	Text   string
}

// Code derives the opaque numeric code returned alongside 202/500
// responses from the backend activation id. It is a deterministic hash,
// not a signature: the only contract callers rely on is that the same
// activation id always produces the same code they can echo back.
func Code(activationID string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(activationID))
	return h.Sum32()
}

// FromResolutionError translates a PackageResolver/ParameterMerger failure.
// Anything other than the recognized kinds below becomes a generic 500.
func FromResolutionError(err error) Response {
	if resolveErr, ok := err.(*metaresolve.Error); ok {
		switch resolveErr.Kind {
		case metaresolve.NotFound:
			return Response{Status: 404}
		case metaresolve.NotMeta, metaresolve.VerbNotMapped:
			return Response{Status: 405}
		}
	}
	return Response{Status: 500, JSON: map[string]any{"error": "internal error", "code": 0}}
}

// IsUnsupportedMedia reports whether err is the 415 case merging produced.
func IsUnsupportedMedia(err error) bool {
	return err != nil && (err == metamerge.ErrUnsupportedMedia || unwrapsTo(err, metamerge.ErrUnsupportedMedia))
}

func unwrapsTo(err, target error) bool {
	for err != nil {
		if err == target {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// FromUnsupportedMedia builds the 415 response for a non-object body.
func FromUnsupportedMedia() Response {
	return Response{Status: 415, Text: "request body must be a JSON object"}
}

// FromOutcome translates a completed ActivationOutcome: Success
// passes the backend record through verbatim at 200, Pending returns the
// opaque code at 202, Failure returns the opaque code and message at 500
// whatever status the backend answered with. requestID is the
// id MetaRouter assigned at RECEIVED and is used for the code field when
// the outcome itself carries none (a transport failure never reaches the
// point of the backend issuing its own activation id).
func FromOutcome(outcome metamodel.ActivationOutcome, requestID string) Response {
	switch outcome.Kind {
	case metamodel.OutcomeSuccess:
		return Response{Status: 200, JSON: outcome.Record}
	case metamodel.OutcomePending:
		return Response{Status: 202, JSON: map[string]any{"code": codeField(outcome.ActivationID, requestID)}}
	case metamodel.OutcomeFailure:
		return Response{Status: 500, JSON: map[string]any{
			"error": outcome.Cause.Message,
			"code":  codeField(outcome.ActivationID, requestID),
		}}
	default:
		return Response{Status: 500, JSON: map[string]any{"error": "internal error", "code": 0}}
	}
}

func codeField(activationID, requestID string) uint32 {
	id := activationID
	if id == "" {
		id = requestID
	}
	if id == "" {
		return 0
	}
	return Code(id)
}

// ToEnvelope adapts a Response into the shared HTTP/MCP transport envelope
// so MetaRouter and the MCP front door render the same outcome through
// their own surface-specific writers.
func (r Response) ToEnvelope() *transportwriter.ResponseEnvelope {
	if r.Status >= 200 && r.Status < 300 {
		if r.JSON != nil {
			return &transportwriter.ResponseEnvelope{HTTPSuccess: r.JSON, MCPSuccess: r.JSON}
		}
		return &transportwriter.ResponseEnvelope{HTTPSuccess: r.Text, MCPSuccess: r.Text}
	}

	message := r.Text
	if message == "" {
		if errField, ok := r.JSON["error"].(string); ok {
			message = errField
		}
	}

	return &transportwriter.ResponseEnvelope{
		HTTPError: &transportwriter.HTTPError{
			Status:  r.Status,
			Message: message,
		},
		MCPError: &FailureError{Status: r.Status, Message: message},
	}
}

// FailureError is the MCP-surface error value for a non-2xx Response.
type FailureError struct {
	Status  int
	Message string
}

func (e *FailureError) Error() string { return e.Message }

// ParseCodeHint is a convenience helper for tests: it does not invert Code
// (the hash is one-way), it only validates the textual encoding a client
// would see on the wire.
func ParseCodeHint(raw string) (uint64, error) {
	return strconv.ParseUint(raw, 10, 32)
}
