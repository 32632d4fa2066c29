// Package storage holds the types shared by the event store implementations.
package storage

import "errors"

// ErrUnavailable marks failures to reach the event store, as opposed to an empty store.
var ErrUnavailable = errors.New("event store unavailable")

// WriteResult reports the outcome of one committed write.
type WriteResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}
