package source

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"example.com/eventplanner/internal/config"
	"example.com/eventplanner/internal/domain"
	"example.com/eventplanner/internal/normalize"
)

// ErrMissingAPIKey is returned when the live-event source has no API key configured.
var ErrMissingAPIKey = errors.New("TM_API_KEY is not set")

// startDateTimeLayout is the UTC layout the Discovery API accepts for startDateTime.
const startDateTimeLayout = "2006-01-02T15:04:05Z"

// Ticketmaster reads upcoming ticketed events from the Discovery v2 API.
type Ticketmaster struct {
	cfg    config.TicketmasterConfig
	client *http.Client
	log    *slog.Logger
	now    func() time.Time
	loc    *time.Location
}

// NewTicketmaster creates the live-event source.
func NewTicketmaster(cfg config.TicketmasterConfig, opts Options) *Ticketmaster {
	opts = opts.withDefaults(0)
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 1
	}
	return &Ticketmaster{
		cfg:    cfg,
		client: opts.Client,
		log:    opts.Logger.With("source", NameLive),
		now:    opts.Now,
		loc:    opts.Location,
	}
}

func (t *Ticketmaster) Name() string { return NameLive }

// Fetch pages through upcoming events in the configured city, sorted by date.
// Upstream failures stop paging and keep the events of earlier pages.
func (t *Ticketmaster) Fetch(ctx context.Context) ([]domain.Event, error) {
	if strings.TrimSpace(t.cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	now := t.now()
	start := now.UTC().Format(startDateTimeLayout)

	var out []domain.Event
	for page := 0; page < t.cfg.MaxPages; page++ {
		doc, err := getJSON(ctx, t.client, t.pageURL(start, page), nil)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			t.log.Warn("upstream unavailable", "page", page, "err", err)
			break
		}

		raws := normalize.Objects(doc, "_embedded", "events")
		for _, raw := range raws {
			out = append(out, NormalizeTicketmasterEvent(raw, now, t.loc))
		}
		t.log.Debug("page fetched", "page", page, "events", len(raws))

		if len(raws) == 0 || page+1 >= totalPages(doc) {
			break
		}
	}

	t.log.Info("extracted events", "count", len(out))
	return out, nil
}

func (t *Ticketmaster) pageURL(start string, page int) string {
	q := url.Values{}
	q.Set("apikey", t.cfg.APIKey)
	q.Set("city", t.cfg.City)
	q.Set("size", strconv.Itoa(t.cfg.PageSize))
	q.Set("sort", "date,asc")
	q.Set("startDateTime", start)
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	return strings.TrimRight(t.cfg.BaseURL, "/") + "/discovery/v2/events.json?" + q.Encode()
}

func totalPages(doc any) int {
	raw, ok := normalize.Lookup(doc, "page", "totalPages")
	if !ok {
		return 1
	}
	f, err := normalize.Float(raw)
	if err != nil || f < 1 {
		return 1
	}
	return int(f)
}

// NormalizeTicketmasterEvent maps one Discovery API event onto the canonical record.
// It never fails: every missing or mistyped field falls back to its default and
// over-long text is clipped to the store limits.
func NormalizeTicketmasterEvent(raw map[string]any, now time.Time, loc *time.Location) domain.Event {
	venue, _ := normalize.Lookup(raw, "_embedded", "venues", 0)
	lat, _ := normalize.Lookup(venue, "location", "latitude")
	lon, _ := normalize.Lookup(venue, "location", "longitude")
	dateTime, _ := normalize.Lookup(raw, "dates", "start", "dateTime")
	localDate, _ := normalize.Lookup(raw, "dates", "start", "localDate")

	ev := domain.Event{
		Title:           normalize.Clip(normalize.Text(raw, domain.UnknownEvent, "name"), domain.MaxTitleLen),
		Venue:           normalize.Text(venue, domain.UnknownVenue, "name"),
		Neighborhood:    normalize.Text(venue, domain.DefaultCity, "city", "name"),
		PriceMin:        normalize.PriceAt(raw, "priceRanges", 0, "min"),
		Category:        normalize.Text(raw, domain.DefaultCategory, "classifications", 0, "segment", "name"),
		DealDescription: normalize.Clip(normalize.Text(raw, domain.NoLink, "url"), domain.MaxTextLen),
		IsDiscounted:    false,
		EventDate:       normalize.EventDate(dateTime, localDate, now, loc),
	}
	ev.Lat, ev.Lon = normalize.Coordinates(lat, lon)
	return ev
}
