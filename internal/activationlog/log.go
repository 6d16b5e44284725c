// Package activationlog implements TriggerActivationWriter (C7): formatting
// fan-out log lines and persisting a single TriggerActivation document per
// fired trigger.
package activationlog

import (
	"fmt"
	"time"

	"github.com/actionmesh/metacontrol/internal/metamodel"
)

// timestampLayout renders yyyy-MM-dd'T'HH:mm:ss.SSS'Z' in UTC.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// FormatLine renders one fan-out log line in the bit-exact format:
// [<timestamp>] [<LEVEL>] [<triggerName>] [<ruleName>] [<actionName>] <message>
func FormatLine(at time.Time, level metamodel.LogLevel, triggerName, ruleName, actionName, message string) string {
	return fmt.Sprintf("[%s] [%s] [%s] [%s] [%s] %s",
		at.UTC().Format(timestampLayout), level, triggerName, ruleName, actionName, message)
}
