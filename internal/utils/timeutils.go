package utils

import (
	"fmt"
	"time"
)

// ParseTimestamp parses an InfluxDB RFC3339 timestamp (nanosecond precision optional).
func ParseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time: %w", err)
	}
	return t, nil
}
