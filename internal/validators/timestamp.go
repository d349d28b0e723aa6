package validators

import (
	"fmt"
	"strings"
	"time"
)

// UTC timestamp formats accepted in query parameters
const (
	ISO8601UTC       = "2006-01-02T15:04:05Z"
	ISO8601UTCMillis = "2006-01-02T15:04:05.000Z"
)

var utcFormats = []string{ISO8601UTC, ISO8601UTCMillis, time.RFC3339}

// ParseUTCTimestamp parses a 2025-11-10T14:30:00Z style timestamp and
// returns it in UTC. Offsets other than Z are rejected.
func ParseUTCTimestamp(timestamp string) (time.Time, error) {
	if timestamp == "" {
		return time.Time{}, NewValidationError("timestamp", "timestamp is required")
	}
	if !strings.HasSuffix(timestamp, "Z") {
		return time.Time{}, NewValidationError("timestamp", fmt.Sprintf("timestamp must be in UTC with Z suffix: %s", timestamp))
	}

	for _, format := range utcFormats {
		if t, err := time.Parse(format, timestamp); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, NewValidationError("timestamp", fmt.Sprintf("invalid UTC timestamp format: %s", timestamp))
}

// FormatUTCTimestamp formats t as 2025-11-10T14:30:00Z
func FormatUTCTimestamp(t time.Time) string {
	return t.UTC().Format(ISO8601UTC)
}
