package query

import (
	"context"

	"example.com/eventplanner/internal/domain"
)

// VenueMarker is one map point: every event sharing a venue coordinate.
type VenueMarker struct {
	Venue  string         `json:"venue"`
	Lat    float64        `json:"lat"`
	Lon    float64        `json:"lon"`
	Events []domain.Event `json:"events"`
}

type coordKey struct{ lat, lon float64 }

// Geo returns the located subset of Events(f) grouped by coordinate, in read order.
func (s *Service) Geo(ctx context.Context, f domain.Filter) ([]VenueMarker, error) {
	events, err := s.Events(ctx, f)
	if err != nil {
		return nil, err
	}
	return GroupByVenue(events), nil
}

// GroupByVenue groups located events by exact coordinate. Events without a
// location are left out. The marker takes the venue name of its first event.
func GroupByVenue(events []domain.Event) []VenueMarker {
	markers := []VenueMarker{}
	index := make(map[coordKey]int)
	for _, ev := range events {
		if !ev.HasLocation() {
			continue
		}
		k := coordKey{*ev.Lat, *ev.Lon}
		i, ok := index[k]
		if !ok {
			i = len(markers)
			index[k] = i
			markers = append(markers, VenueMarker{Venue: ev.Venue, Lat: k.lat, Lon: k.lon})
		}
		markers[i].Events = append(markers[i].Events, ev)
	}
	return markers
}
