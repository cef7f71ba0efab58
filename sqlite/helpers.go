package sqlite

import (
	"fmt"
	"time"
)

// timeLayout is RFC3339 with fixed-width nanoseconds so stored UTC
// timestamps sort correctly as strings (ORDER BY created_at).
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime renders a timestamp for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses a stored timestamp. Returns an error with the field
// name for diagnosability.
func parseTime(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}
