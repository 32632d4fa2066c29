package transporthttp

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/eventplanner/internal/config"
	"example.com/eventplanner/internal/domain"
	"example.com/eventplanner/internal/ingest"
	"example.com/eventplanner/internal/logger"
	"example.com/eventplanner/internal/metrics"
	"example.com/eventplanner/internal/query"
	"example.com/eventplanner/internal/source"
	"example.com/eventplanner/internal/storage"
)

// EmptyNotice is shown when the store is reachable but holds no matching rows.
const EmptyNotice = "No data found. Is the ETL pipeline running?"

// SourceFactory builds a source by name for an operator-triggered run.
type SourceFactory func(name string) (source.Source, error)

type ServerDeps struct {
	Cfg       *config.Config
	Query     *query.Service
	Runner    *ingest.Runner
	NewSource SourceFactory
	Metrics   *metrics.Metrics
	Log       *slog.Logger
	Now       func() time.Time
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// --- Health ---

func (d *ServerDeps) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (d *ServerDeps) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := d.Query.Ready(r.Context()); err != nil {
		d.Log.Warn("readiness check failed", "err", err)
		WriteProblem(w, http.StatusServiceUnavailable, "not ready", "store unreachable", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// --- Events ---

type eventView struct {
	domain.Event
	DealLink bool `json:"deal_link"`
}

type eventsResp struct {
	Count  int         `json:"count"`
	Events []eventView `json:"events"`
	Notice string      `json:"notice,omitempty"`
}

func parseFilter(r *http.Request) (domain.Filter, map[string][]string) {
	q := r.URL.Query()
	f := domain.Filter{Category: strings.TrimSpace(q.Get("category"))}
	if s := q.Get("free"); s != "" {
		free, err := strconv.ParseBool(s)
		if err != nil {
			return f, map[string][]string{"free": {"must be a boolean"}}
		}
		f.FreeOnly = free
	}
	return f, nil
}

// storeProblem maps a read failure to a problem response.
func (d *ServerDeps) storeProblem(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrUnavailable) {
		d.Log.Warn("store unreachable", "err", err)
		WriteProblem(w, http.StatusServiceUnavailable, "store unreachable", "the event store could not be reached, please retry", nil)
		return
	}
	d.Log.Error("query failed", "err", err)
	WriteProblem(w, http.StatusInternalServerError, "query error", err.Error(), nil)
}

func (d *ServerDeps) HandleGetEvents(w http.ResponseWriter, r *http.Request) {
	f, perr := parseFilter(r)
	if perr != nil {
		WriteProblem(w, http.StatusBadRequest, "invalid parameters", "one or more query parameters are invalid", perr)
		return
	}
	events, err := d.Query.Events(r.Context(), f)
	if err != nil {
		d.storeProblem(w, err)
		return
	}

	resp := eventsResp{Count: len(events), Events: make([]eventView, 0, len(events))}
	for _, ev := range events {
		resp.Events = append(resp.Events, eventView{Event: ev, DealLink: ev.IsLink()})
	}
	if len(events) == 0 {
		resp.Notice = EmptyNotice
	}
	writeJSON(w, http.StatusOK, resp)
}

type geoResp struct {
	Count   int                 `json:"count"`
	Markers []query.VenueMarker `json:"markers"`
}

func (d *ServerDeps) HandleGetGeo(w http.ResponseWriter, r *http.Request) {
	f, perr := parseFilter(r)
	if perr != nil {
		WriteProblem(w, http.StatusBadRequest, "invalid parameters", "one or more query parameters are invalid", perr)
		return
	}
	markers, err := d.Query.Geo(r.Context(), f)
	if err != nil {
		d.storeProblem(w, err)
		return
	}
	writeJSON(w, http.StatusOK, geoResp{Count: len(markers), Markers: markers})
}

func (d *ServerDeps) HandleGetCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := d.Query.Categories(r.Context())
	if err != nil {
		d.storeProblem(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// --- Ingest (operator re-run) ---

func (d *ServerDeps) HandlePostIngest(w http.ResponseWriter, r *http.Request) {
	defer DrainBody(r)
	name := chi.URLParam(r, "source")
	src, err := d.NewSource(name)
	if err != nil {
		if errors.Is(err, source.ErrUnknownSource) {
			WriteProblem(w, http.StatusNotFound, "unknown source", "source must be one of "+strings.Join(source.Names, ", "), nil)
			return
		}
		d.Log.Error("building source failed", "source", name, "err", err)
		WriteProblem(w, http.StatusInternalServerError, "source misconfigured", err.Error(), nil)
		return
	}

	res, err := d.Runner.Run(r.Context(), src)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, source.ErrMissingAPIKey):
		WriteProblem(w, http.StatusServiceUnavailable, "source not configured", err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidEvents):
		WriteProblem(w, http.StatusUnprocessableEntity, "validation failed", err.Error(), nil)
	case errors.Is(err, storage.ErrUnavailable):
		WriteProblem(w, http.StatusServiceUnavailable, "store unreachable", err.Error(), nil)
	default:
		WriteProblem(w, http.StatusBadGateway, "ingest failed", err.Error(), nil)
	}
}

// --- Router ---

func (d *ServerDeps) Router() http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = logger.Discard()
	}
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(RequestLogger(d.Log))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", d.HandleHealthz)
	r.Get("/readyz", d.HandleReadyz)
	r.Get("/events", d.HandleGetEvents)
	r.Get("/events/geo", d.HandleGetGeo)
	r.Get("/categories", d.HandleGetCategories)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(d.Cfg.APIKeySet()))
		r.Use(RateLimitPerMinute(d.Cfg.RateLimitPerMin, d.Now))
		r.Post("/ingest/{source}", d.HandlePostIngest)
	})
	return r
}
