package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"example.com/eventplanner/internal/domain"
)

// ErrNoDeals is returned when a deals file contains no entries.
var ErrNoDeals = errors.New("deals file contains no deals")

// Deal is one operator-maintained recurring offer.
type Deal struct {
	Title        string  `yaml:"title"`
	Venue        string  `yaml:"venue"`
	Neighborhood string  `yaml:"neighborhood"`
	Price        float64 `yaml:"price"`
	Category     string  `yaml:"category"`
	Description  string  `yaml:"description"`
}

// Event converts the deal into a discounted, undated, unplaced record.
func (d Deal) Event() domain.Event {
	return domain.Event{
		Title:           d.Title,
		Venue:           d.Venue,
		Neighborhood:    d.Neighborhood,
		PriceMin:        d.Price,
		Category:        d.Category,
		DealDescription: d.Description,
		IsDiscounted:    true,
	}
}

// DefaultDeals returns the built-in recurring offers.
func DefaultDeals() []Deal {
	return []Deal{
		{"AMC Discount Tuesdays", "AMC River East 21", "Streeterville", 7.00, "Movie", "Member discount price"},
		{"Regal Value Tuesdays", "Regal Webster Place", "Lincoln Park", 7.99, "Movie", "Standard 2D movies"},
		{"Music Box Matinee", "Music Box Theatre", "Lakeview", 11.00, "Movie", "Before 5 PM daily"},
		{"Logan Theatre Open Mic", "The Logan Theatre", "Logan Square", 0.00, "Comedy", "Free entry, No cover"},
		{"Second City Student Standby", "Second City", "Old Town", 0.00, "Comedy", "Free tickets for students 1hr before show"},
	}
}

type dealsFile struct {
	Deals []Deal `yaml:"deals"`
}

// LoadDeals reads a YAML deals list and validates every entry.
func LoadDeals(path string) ([]Deal, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading deals file: %w", err)
	}
	var f dealsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parsing deals file: %w", err)
	}
	if len(f.Deals) == 0 {
		return nil, ErrNoDeals
	}
	for i, d := range f.Deals {
		ev := d.Event()
		if errs := domain.ValidateEvent(&ev); len(errs) > 0 {
			return nil, fmt.Errorf("deals[%d] %q: %w", i, d.Title, errs[0])
		}
	}
	return f.Deals, nil
}

// Deals emits the same fixed list of offers on every call.
type Deals struct {
	deals []Deal
	log   *slog.Logger
}

// NewDeals creates the static source; a nil list selects DefaultDeals.
func NewDeals(deals []Deal, opts Options) *Deals {
	opts = opts.withDefaults(0)
	if deals == nil {
		deals = DefaultDeals()
	}
	return &Deals{deals: deals, log: opts.Logger.With("source", NameDeals)}
}

func (d *Deals) Name() string { return NameDeals }

// Fetch never touches the network and never fails.
func (d *Deals) Fetch(_ context.Context) ([]domain.Event, error) {
	out := make([]domain.Event, 0, len(d.deals))
	for _, deal := range d.deals {
		out = append(out, deal.Event())
	}
	d.log.Info("generated deals", "count", len(out))
	return out, nil
}
