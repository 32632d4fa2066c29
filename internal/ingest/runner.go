// Package ingest runs one source end to end: fetch, validate, write in one transaction.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"example.com/eventplanner/internal/domain"
	"example.com/eventplanner/internal/logger"
	"example.com/eventplanner/internal/metrics"
	"example.com/eventplanner/internal/source"
	"example.com/eventplanner/internal/storage"
)

// Writer persists one run's events atomically.
type Writer interface {
	Write(ctx context.Context, events []domain.Event) (storage.WriteResult, error)
}

// Result summarizes one run.
type Result struct {
	RunID     string        `json:"run_id"`
	Source    string        `json:"source"`
	Extracted int           `json:"extracted"`
	Inserted  int           `json:"inserted"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration"`
}

// Options tunes a Runner. Zero values select the defaults.
type Options struct {
	FetchTimeout time.Duration // default 30s
	StoreTimeout time.Duration // default 10s
	Logger       *slog.Logger
	Now          func() time.Time
}

type Runner struct {
	writer       Writer
	metrics      *metrics.Metrics
	log          *slog.Logger
	fetchTimeout time.Duration
	storeTimeout time.Duration
	now          func() time.Time
}

func NewRunner(w Writer, m *metrics.Metrics, opts Options) *Runner {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if m == nil {
		m = metrics.New()
	}
	return &Runner{
		writer:       w,
		metrics:      m,
		log:          opts.Logger,
		fetchTimeout: opts.FetchTimeout,
		storeTimeout: opts.StoreTimeout,
		now:          opts.Now,
	}
}

// Run ingests a single source. An empty extraction is not an error and writes nothing.
// A validation or store failure aborts the run with nothing committed.
func (r *Runner) Run(ctx context.Context, src source.Source) (res Result, err error) {
	name := src.Name()
	res = Result{RunID: uuid.NewString(), Source: name}
	log := r.log.With("source", name, "run_id", res.RunID)
	start := r.now()
	defer func() {
		res.Duration = r.now().Sub(start)
		r.metrics.RunDuration.WithLabelValues(name).Observe(res.Duration.Seconds())
	}()

	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	events, err := src.Fetch(fetchCtx)
	cancel()
	if err != nil {
		r.metrics.RunsTotal.WithLabelValues(name, metrics.ResultFetchError).Inc()
		log.Error("fetch failed", "err", err)
		return res, fmt.Errorf("fetch %s: %w", name, err)
	}
	res.Extracted = len(events)
	r.metrics.EventsExtracted.WithLabelValues(name).Add(float64(len(events)))

	if len(events) == 0 {
		r.metrics.RunsTotal.WithLabelValues(name, metrics.ResultEmpty).Inc()
		log.Warn("no events extracted")
		return res, nil
	}

	if _, err := domain.ValidateBatch(events); err != nil {
		r.metrics.RunsTotal.WithLabelValues(name, metrics.ResultInvalid).Inc()
		log.Error("validation failed", "err", err)
		return res, fmt.Errorf("validate %s: %w", name, err)
	}

	storeCtx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	wr, err := r.writer.Write(storeCtx, events)
	cancel()
	if err != nil {
		r.metrics.RunsTotal.WithLabelValues(name, metrics.ResultWriteError).Inc()
		log.Error("write failed, run rolled back", "err", err)
		return res, fmt.Errorf("write %s: %w", name, err)
	}
	res.Inserted, res.Skipped = wr.Inserted, wr.Skipped

	r.metrics.EventsWritten.WithLabelValues(name).Add(float64(wr.Inserted))
	r.metrics.EventsSkipped.WithLabelValues(name).Add(float64(wr.Skipped))
	r.metrics.RunsTotal.WithLabelValues(name, metrics.ResultOK).Inc()
	r.metrics.LastSuccess.WithLabelValues(name).Set(float64(r.now().Unix()))
	log.Info("run committed", "extracted", res.Extracted, "inserted", wr.Inserted, "skipped", wr.Skipped)
	return res, nil
}

// RunAll runs every source independently; one failing source does not stop the others.
// The returned error joins all run errors.
func (r *Runner) RunAll(ctx context.Context, sources []source.Source) ([]Result, error) {
	results := make([]Result, 0, len(sources))
	var errs []error
	for _, src := range sources {
		res, err := r.Run(ctx, src)
		results = append(results, res)
		if err != nil {
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
	}
	return results, errors.Join(errs...)
}
