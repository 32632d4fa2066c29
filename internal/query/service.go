// Package query is the read side consumed by the display layer: ordered,
// filtered event lists, the category menu and the map subset, with a
// time-bounded result cache in front of the store.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"example.com/eventplanner/internal/cache"
	"example.com/eventplanner/internal/domain"
	"example.com/eventplanner/internal/logger"
	"example.com/eventplanner/internal/metrics"
	"example.com/eventplanner/internal/storage"
)

// Store is the read contract of an event store.
type Store interface {
	ListEvents(ctx context.Context, f domain.Filter) ([]domain.Event, error)
	Ping(ctx context.Context) error
}

// Options tunes a Service. Zero values select the defaults.
type Options struct {
	CacheTTL     time.Duration // default 1h
	StoreTimeout time.Duration // default 10s
	Logger       *slog.Logger
}

type Service struct {
	store   Store
	cache   cache.Cache
	metrics *metrics.Metrics
	log     *slog.Logger
	ttl     time.Duration
	timeout time.Duration
}

// NewService wires the store behind an optional cache; a nil cache reads through every time.
func NewService(store Store, c cache.Cache, m *metrics.Metrics, opts Options) *Service {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if m == nil {
		m = metrics.New()
	}
	return &Service{
		store:   store,
		cache:   c,
		metrics: m,
		log:     opts.Logger,
		ttl:     opts.CacheTTL,
		timeout: opts.StoreTimeout,
	}
}

// Events returns the events matching f, ordered by date (undated last), then price.
// An empty store is an empty slice; an unreachable one is an error wrapping storage.ErrUnavailable.
func (s *Service) Events(ctx context.Context, f domain.Filter) ([]domain.Event, error) {
	key := f.Key()
	if events, ok := s.cached(ctx, key); ok {
		return events, nil
	}

	readCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	events, err := s.store.ListEvents(readCtx, f)
	if err != nil {
		s.metrics.StoreErrors.Inc()
		if !errors.Is(err, storage.ErrUnavailable) {
			err = fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
		}
		return nil, err
	}
	if events == nil {
		events = []domain.Event{}
	}
	s.fill(ctx, key, events)
	return events, nil
}

// Categories returns "All" followed by each distinct category in read order.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	events, err := s.Events(ctx, domain.Filter{})
	if err != nil {
		return nil, err
	}
	out := []string{domain.CategoryAll}
	seen := map[string]struct{}{domain.CategoryAll: {}}
	for _, ev := range events {
		if _, ok := seen[ev.Category]; ok {
			continue
		}
		seen[ev.Category] = struct{}{}
		out = append(out, ev.Category)
	}
	return out, nil
}

// Ready reports whether the store can be reached; it bypasses the cache.
func (s *Service) Ready(ctx context.Context) error {
	readCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.Ping(readCtx)
}

func (s *Service) cached(ctx context.Context, key string) ([]domain.Event, bool) {
	if s.cache == nil {
		return nil, false
	}
	b, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			s.metrics.CacheRequests.WithLabelValues(metrics.CacheMiss).Inc()
		} else {
			s.metrics.CacheRequests.WithLabelValues(metrics.CacheError).Inc()
			s.log.Warn("cache read failed", "key", key, "err", err)
		}
		return nil, false
	}
	var events []domain.Event
	if err := json.Unmarshal(b, &events); err != nil {
		s.metrics.CacheRequests.WithLabelValues(metrics.CacheError).Inc()
		s.log.Warn("cache entry unreadable", "key", key, "err", err)
		return nil, false
	}
	s.metrics.CacheRequests.WithLabelValues(metrics.CacheHit).Inc()
	return events, true
}

func (s *Service) fill(ctx context.Context, key string, events []domain.Event) {
	if s.cache == nil {
		return
	}
	b, err := json.Marshal(events)
	if err != nil {
		s.log.Warn("cache encode failed", "key", key, "err", err)
		return
	}
	if err := s.cache.Set(ctx, key, b, s.ttl); err != nil {
		s.log.Warn("cache write failed", "key", key, "err", err)
	}
}
