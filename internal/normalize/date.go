package normalize

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the date-only layout sources use for calendar days.
const DateLayout = "2006-01-02"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a full timestamp. Layouts without a zone are read in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp: %q", s)
}

// ParseDate parses a calendar date as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unsupported date: %q", s)
	}
	return t, nil
}

// EventDate resolves an event start: a full timestamp wins, then a date-only
// value (midnight in loc), then now. The result is never nil.
func EventDate(timestamp, date any, now time.Time, loc *time.Location) *time.Time {
	if s := TextOr(timestamp, ""); s != "" {
		if t, err := ParseTimestamp(s, loc); err == nil {
			return &t
		}
	}
	if s := TextOr(date, ""); s != "" {
		if t, err := ParseDate(s, loc); err == nil {
			return &t
		}
	}
	return &now
}
