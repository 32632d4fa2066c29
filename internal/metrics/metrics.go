// Package metrics defines the Prometheus collectors for ingestion runs and reads.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "planner"

// Metrics groups every collector. Create one per process with New.
type Metrics struct {
	Registry *prometheus.Registry

	EventsExtracted *prometheus.CounterVec
	EventsWritten   *prometheus.CounterVec
	EventsSkipped   *prometheus.CounterVec
	RunsTotal       *prometheus.CounterVec
	RunDuration     *prometheus.HistogramVec
	LastSuccess     *prometheus.GaugeVec

	CacheRequests *prometheus.CounterVec
	StoreErrors   prometheus.Counter
}

// Run outcomes used as the "result" label.
const (
	ResultOK         = "ok"
	ResultEmpty      = "empty"
	ResultFetchError = "fetch_error"
	ResultInvalid    = "invalid"
	ResultWriteError = "write_error"
	CacheHit         = "hit"
	CacheMiss        = "miss"
	CacheError       = "error"
)

// New registers all collectors on a fresh registry, together with the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		EventsExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_extracted_total",
			Help:      "Normalized events produced by a source",
		}, []string{"source"}),
		EventsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_written_total",
			Help:      "Rows committed to the event store",
		}, []string{"source"}),
		EventsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_skipped_total",
			Help:      "Rows left out as duplicates",
		}, []string{"source"}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_runs_total",
			Help:      "Ingestion runs by outcome",
		}, []string{"source", "result"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_run_duration_seconds",
			Help:      "Wall time of an ingestion run",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		LastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ingest_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}, []string{"source"}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_requests_total",
			Help:      "Query cache lookups by result",
		}, []string{"result"}),
		StoreErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_store_errors_total",
			Help:      "Reads that failed to reach the event store",
		}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.EventsExtracted,
		m.EventsWritten,
		m.EventsSkipped,
		m.RunsTotal,
		m.RunDuration,
		m.LastSuccess,
		m.CacheRequests,
		m.StoreErrors,
	)
	return m
}
