package housekeeping

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseRetention parses Go durations plus a day suffix (e.g. "30d", "90d"),
// since RetentionPeriod is typically configured in days.
func ParseRetention(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("housekeeping: retention period required")
	}

	if strings.HasSuffix(raw, "d") {
		daysPart := strings.TrimSuffix(raw, "d")
		days, err := strconv.ParseFloat(daysPart, 64)
		if err != nil || days < 0 {
			return 0, fmt.Errorf("housekeeping: invalid day duration %q", raw)
		}
		return time.Duration(days * float64(24*time.Hour)), nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("housekeeping: invalid duration %q: %w", raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("housekeeping: retention period must be >= 0")
	}
	return d, nil
}
