package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/eventplanner/internal/config"
	"example.com/eventplanner/internal/domain"
)

// Every adapter must emit records that satisfy the store invariants,
// whatever shape the upstream payload takes.
func TestAdapters_OutputInvariants(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/discovery/v2/events.json":
			_, _ = w.Write([]byte(`{"_embedded":{"events":[
			  ` + fullEvent + `,
			  {},
			  {"priceRanges":[{"min":"-9"}],"_embedded":{"venues":[{"location":{"latitude":"41.9","longitude":null}}]}},
			  {"priceRanges":[{"min":"12.345"}],"_embedded":{"venues":[{"location":{"latitude":200,"longitude":10}}]}}
			]}}`))
		case "/api/v1/exhibitions":
			_, _ = w.Write([]byte(`{"data":[{"title":"A"},{}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := &config.Config{
		Ticketmaster: config.TicketmasterConfig{APIKey: "k", BaseURL: srv.URL, City: "Chicago", PageSize: 10, MaxPages: 1},
		Museum:       config.MuseumConfig{BaseURL: srv.URL, Limit: 5, Status: "Running"},
	}

	var all []domain.Event
	for _, name := range Names {
		src, err := New(name, cfg, Options{})
		require.NoError(t, err)
		events, err := src.Fetch(context.Background())
		require.NoError(t, err)
		require.NotEmpty(t, events, name)
		all = append(all, events...)
	}

	for i, ev := range all {
		assert.GreaterOrEqual(t, ev.PriceMin, 0.0, "event %d", i)
		assert.Equal(t, ev.Lat == nil, ev.Lon == nil, "event %d", i)
		assert.Empty(t, domain.ValidateEvent(&all[i]), "event %d", i)
	}
}
