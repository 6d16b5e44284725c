package transportwriter

import (
	"errors"
	"net/http"
)

// UnsupportedSurfaceEnvelope builds the shared unsupported-surface fallback
// envelope, used by the MCP front door when its surface is disabled.
func UnsupportedSurfaceEnvelope(message string) *ResponseEnvelope {
	return &ResponseEnvelope{
		HTTPError: &HTTPError{
			Status:  http.StatusInternalServerError,
			Code:    "internal_error",
			Message: message,
		},
		MCPError: errors.New(message),
	}
}
