// Package memory is an in-process event store with the same contracts as the
// Postgres store. It backs STORE_DRIVER=memory and the tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"example.com/eventplanner/internal/domain"
	"example.com/eventplanner/internal/idempotency"
	"example.com/eventplanner/internal/storage"
)

// Store is safe for concurrent use.
type Store struct {
	mu             sync.RWMutex
	events         []domain.Event
	keys           map[string]struct{}
	skipDuplicates bool
	unavailable    error
}

// New creates an empty store.
func New(skipDuplicates bool) *Store {
	return &Store{keys: make(map[string]struct{}), skipDuplicates: skipDuplicates}
}

// SetUnavailable makes every operation fail with err wrapped in storage.ErrUnavailable;
// nil restores the store.
func (s *Store) SetUnavailable(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable = err
}

func (s *Store) checkLocked() error {
	if s.unavailable != nil {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, s.unavailable)
	}
	return nil
}

// Write appends all events atomically.
func (s *Store) Write(_ context.Context, events []domain.Event) (storage.WriteResult, error) {
	var res storage.WriteResult
	if len(events) == 0 {
		return res, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(); err != nil {
		return res, err
	}

	for i := range events {
		if fe := domain.ValidateEvent(&events[i]); len(fe) > 0 {
			return storage.WriteResult{}, fmt.Errorf("insert row %d (%q): %v", i, events[i].Title, fe[0])
		}
	}

	staged := make([]domain.Event, 0, len(events))
	newKeys := make(map[string]struct{}, len(events))
	for _, ev := range events {
		if s.skipDuplicates {
			k := idempotency.DeriveKey(&ev)
			_, stored := s.keys[k]
			_, staging := newKeys[k]
			if stored || staging {
				res.Skipped++
				continue
			}
			newKeys[k] = struct{}{}
		}
		staged = append(staged, clone(ev))
	}

	s.events = append(s.events, staged...)
	for k := range newKeys {
		s.keys[k] = struct{}{}
	}
	res.Inserted = len(staged)
	return res, nil
}

// ListEvents returns matching events in the read ordering contract.
func (s *Store) ListEvents(_ context.Context, f domain.Filter) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkLocked(); err != nil {
		return nil, err
	}

	out := []domain.Event{}
	for i := range s.events {
		if f.Matches(&s.events[i]) {
			out = append(out, clone(s.events[i]))
		}
	}
	domain.SortEvents(out)
	return out, nil
}

// Ping reports whether the store is reachable.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkLocked()
}

// Len returns the number of stored rows.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// clone copies the pointer fields so callers cannot mutate stored rows.
func clone(ev domain.Event) domain.Event {
	if ev.EventDate != nil {
		d := *ev.EventDate
		ev.EventDate = &d
	}
	if ev.Lat != nil {
		v := *ev.Lat
		ev.Lat = &v
	}
	if ev.Lon != nil {
		v := *ev.Lon
		ev.Lon = &v
	}
	return ev
}
