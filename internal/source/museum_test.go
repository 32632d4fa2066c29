package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/eventplanner/internal/config"
	"example.com/eventplanner/internal/domain"
)

func TestNormalizeExhibition(t *testing.T) {
	ev := NormalizeExhibition(map[string]any{"title": "Monet and Chicago"}, fixedNow)

	assert.Equal(t, "Monet and Chicago", ev.Title)
	assert.Equal(t, "Art Institute of Chicago", ev.Venue)
	assert.Equal(t, "The Loop", ev.Neighborhood)
	assert.Equal(t, 26.00, ev.PriceMin)
	assert.Equal(t, "Museum/Art", ev.Category)
	assert.True(t, ev.IsDiscounted)
	assert.False(t, ev.IsLink())
	require.NotNil(t, ev.EventDate)
	assert.True(t, ev.EventDate.Equal(fixedNow))
	assert.Nil(t, ev.Lat)
	assert.Nil(t, ev.Lon)

	ev = NormalizeExhibition(map[string]any{"id": 7}, fixedNow)
	assert.Equal(t, "Unknown Exhibition", ev.Title)
	assert.Equal(t, 26.00, ev.PriceMin)
}

func TestMuseum_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/exhibitions", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "Running", r.URL.Query().Get("status"))
		assert.Equal(t, "planner-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"pagination":{"total":2},"data":[{"title":"Monet and Chicago"},{"title":null},"junk"]}`))
	}))
	defer srv.Close()

	m := NewMuseum(config.MuseumConfig{BaseURL: srv.URL, Limit: 5, Status: "Running", UserAgent: "planner-test"},
		Options{Now: func() time.Time { return fixedNow }})
	events, err := m.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Monet and Chicago", events[0].Title)
	assert.Equal(t, "Unknown Exhibition", events[1].Title)
}

func TestMuseum_Fetch_UpstreamUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	events, err := NewMuseum(config.MuseumConfig{BaseURL: srv.URL, Limit: 5}, Options{}).Fetch(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, events)
}

func TestMuseum_Fetch_NoDataKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"detail":"nothing here"}`))
	}))
	defer srv.Close()

	events, err := NewMuseum(config.MuseumConfig{BaseURL: srv.URL}, Options{}).Fetch(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, events)
}

func TestNormalizeExhibition_ClipsTitle(t *testing.T) {
	ev := NormalizeExhibition(map[string]any{"title": strings.Repeat("Ω", 400)}, fixedNow)
	assert.LessOrEqual(t, len(ev.Title), domain.MaxTitleLen)
	assert.True(t, utf8.ValidString(ev.Title))
	assert.Empty(t, domain.ValidateEvent(&ev))
}
