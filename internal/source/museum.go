package source

import (
	"context"
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

// Fixed facts about the one institution this source covers. The API carries
// no price or location, so they live here.
const (
	MuseumVenue        = "Art Institute of Chicago"
	MuseumNeighborhood = "The Loop"
	MuseumPrice        = 26.00
	MuseumCategory     = "Museum/Art"
	MuseumDiscountRule = "Free for Illinois residents on Thursdays 5 PM - 8 PM"
)

// Museum reads running exhibitions from the Art Institute of Chicago API.
type Museum struct {
	cfg    config.MuseumConfig
	client *http.Client
	log    *slog.Logger
	now    func() time.Time
}

// NewMuseum creates the museum source.
func NewMuseum(cfg config.MuseumConfig, opts Options) *Museum {
	opts = opts.withDefaults(0)
	if cfg.Limit <= 0 {
		cfg.Limit = 5
	}
	return &Museum{
		cfg:    cfg,
		client: opts.Client,
		log:    opts.Logger.With("source", NameMuseum),
		now:    opts.Now,
	}
}

func (m *Museum) Name() string { return NameMuseum }

// Fetch returns one event per exhibition, or nothing when the API is unavailable.
func (m *Museum) Fetch(ctx context.Context) ([]domain.Event, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(m.cfg.Limit))
	q.Set("status", m.cfg.Status)
	endpoint := strings.TrimRight(m.cfg.BaseURL, "/") + "/api/v1/exhibitions?" + q.Encode()

	header := http.Header{}
	if m.cfg.UserAgent != "" {
		header.Set("User-Agent", m.cfg.UserAgent)
	}

	doc, err := getJSON(ctx, m.client, endpoint, header)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		m.log.Warn("upstream unavailable", "err", err)
		return nil, nil
	}

	now := m.now()
	raws := normalize.Objects(doc, "data")
	out := make([]domain.Event, 0, len(raws))
	for _, raw := range raws {
		out = append(out, NormalizeExhibition(raw, now))
	}
	m.log.Info("extracted exhibitions", "count", len(out))
	return out, nil
}

// NormalizeExhibition maps one exhibition onto the canonical record.
// Only the title comes from the payload; the ingestion time stands in for the date.
func NormalizeExhibition(raw map[string]any, now time.Time) domain.Event {
	return domain.Event{
		Title:           normalize.Clip(normalize.Text(raw, domain.UnknownExhibition, "title"), domain.MaxTitleLen),
		Venue:           MuseumVenue,
		Neighborhood:    MuseumNeighborhood,
		PriceMin:        MuseumPrice,
		Category:        MuseumCategory,
		DealDescription: MuseumDiscountRule,
		IsDiscounted:    true,
		EventDate:       &now,
	}
}
