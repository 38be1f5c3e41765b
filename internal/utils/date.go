package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseSinceDate parses a date string that can be in two formats:
// - Relative: "7d" (days ago)
// - Absolute: "2025-12-15" (YYYY-MM-DD)
//
// Returns the parsed time or an error if the format is invalid.
func ParseSinceDate(since string) (time.Time, error) {
	if since == "" {
		return time.Time{}, fmt.Errorf("since date cannot be empty")
	}

	// Check for relative format (e.g., "7d")
	if since[len(since)-1] == 'd' {
		days := 0
		_, err := fmt.Sscanf(since, "%dd", &days)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid relative date format '%s': expected format like '7d'", since)
		}
		if days < 0 {
			return time.Time{}, fmt.Errorf("days cannot be negative: %d", days)
		}
		return time.Now().AddDate(0, 0, -days), nil
	}

	// Try absolute format (YYYY-MM-DD)
	parsed, err := time.Parse("2006-01-02", since)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format '%s': expected 'YYYY-MM-DD' or relative format like '7d'", since)
	}

	return parsed, nil
}

// Layouts seen in host send dates, tried in order
var sendDateLayouts = []string{
	time.RFC3339Nano,
	"January 2, 2006 3:04pm",
	"January 2, 2006 3:04 PM",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// ParseSendDate parses a message send date as written by a chat host:
// - RFC 3339, e.g. "2025-12-15T10:04:05.000Z"
// - Human readable, e.g. "December 15, 2025 10:04am"
// - Local date-time, e.g. "2025-12-15 10:04:05" (read as UTC)
// - Unix epoch in milliseconds, or seconds if the value is small
//
// The result is always in UTC.
func ParseSendDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("send date cannot be empty")
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return time.Time{}, fmt.Errorf("epoch cannot be negative: %d", n)
		}
		// Anything below 1e11 would be a millisecond date in early 1973
		if n < 1e11 {
			return time.Unix(n, 0).UTC(), nil
		}
		return time.UnixMilli(n).UTC(), nil
	}

	for _, layout := range sendDateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid send date format '%s'", s)
}
