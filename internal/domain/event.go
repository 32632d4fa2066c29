package domain

import (
	"strings"
	"time"
)

// Event is the canonical normalized record every source is converted into.
// EventDate, Lat and Lon are optional; Lat and Lon are set together or not at all.
type Event struct {
	Title           string     `json:"title"`
	Venue           string     `json:"venue"`
	Neighborhood    string     `json:"neighborhood"`
	PriceMin        float64    `json:"price_min"`
	Category        string     `json:"category"`
	DealDescription string     `json:"deal_description"`
	IsDiscounted    bool       `json:"is_discounted"`
	EventDate       *time.Time `json:"event_date,omitempty"`
	Lat             *float64   `json:"lat,omitempty"`
	Lon             *float64   `json:"lon,omitempty"`
}

// Columns is the raw_events column list shared by the writer and the readers.
// Order matches Event.Values and Event.ScanTargets.
var Columns = []string{
	"title",
	"venue",
	"neighborhood",
	"price_min",
	"category",
	"deal_description",
	"is_discounted",
	"event_date",
	"lat",
	"lon",
}

// Table is the store table all sources append to.
const Table = "raw_events"

// Values returns the column values in Columns order.
func (e *Event) Values() []any {
	return []any{
		e.Title,
		e.Venue,
		e.Neighborhood,
		e.PriceMin,
		e.Category,
		e.DealDescription,
		e.IsDiscounted,
		e.EventDate,
		e.Lat,
		e.Lon,
	}
}

// ScanTargets returns pointers to the fields in Columns order.
func (e *Event) ScanTargets() []any {
	return []any{
		&e.Title,
		&e.Venue,
		&e.Neighborhood,
		&e.PriceMin,
		&e.Category,
		&e.DealDescription,
		&e.IsDiscounted,
		&e.EventDate,
		&e.Lat,
		&e.Lon,
	}
}

// IsLink reports whether DealDescription should be rendered as a hyperlink.
// The prefix check is case-sensitive.
func (e *Event) IsLink() bool {
	return strings.HasPrefix(e.DealDescription, "http")
}

// IsFree reports a zero minimum price.
func (e *Event) IsFree() bool { return e.PriceMin == 0 }

// HasLocation reports whether both coordinates are present.
func (e *Event) HasLocation() bool { return e.Lat != nil && e.Lon != nil }

// Sentinel values used when a source omits a field.
const (
	UnknownEvent      = "Unknown Event"
	UnknownExhibition = "Unknown Exhibition"
	UnknownVenue      = "Unknown Venue"
	DefaultCity       = "Chicago"
	DefaultCategory   = "Live Event"
	NoLink            = "No link available"
)

// Validation limits.
const (
	MaxTitleLen = 512
	MaxTextLen  = 2048
	MinLat      = -90.0
	MaxLat      = 90.0
	MinLon      = -180.0
	MaxLon      = 180.0
)
