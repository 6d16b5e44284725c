package transportwriter

import "fmt"

// UnsupportedSurfaceMessage formats the shared unsupported-surface message
// contract, used by the MCP front door when its surface is disabled.
func UnsupportedSurfaceMessage(scope string, surface string) string {
	return fmt.Sprintf("unsupported %s surface %q", scope, surface)
}
