package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"example.com/eventplanner/internal/domain"
)

// DeriveKey returns a stable natural key for an event: a hex SHA-256 over
// (title, venue, event_date). Events without a date share the empty date component.
func DeriveKey(ev *domain.Event) string {
	date := ""
	if ev.EventDate != nil {
		date = ev.EventDate.UTC().Format(time.RFC3339Nano)
	}
	composite := strings.Join([]string{ev.Title, ev.Venue, date}, "\x1f")
	sum := sha256.Sum256([]byte(composite))
	return hex.EncodeToString(sum[:])
}

// Unique drops events whose key was already seen earlier in the slice,
// keeping the first occurrence and the original order.
func Unique(events []domain.Event) (kept []domain.Event, dropped int) {
	seen := make(map[string]struct{}, len(events))
	kept = make([]domain.Event, 0, len(events))
	for i := range events {
		k := DeriveKey(&events[i])
		if _, ok := seen[k]; ok {
			dropped++
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, events[i])
	}
	return kept, dropped
}
