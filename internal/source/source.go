// Package source converts upstream payloads into normalized events.
// Each adapter runs on its own; upstream failures are logged and yield no events.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"example.com/eventplanner/internal/config"
	"example.com/eventplanner/internal/domain"
	"example.com/eventplanner/internal/logger"
)

// Source names accepted by New and the ingest entry points.
const (
	NameLive   = "live"
	NameMuseum = "museum"
	NameDeals  = "deals"
)

// Names lists every source in the order a full run visits them.
var Names = []string{NameLive, NameMuseum, NameDeals}

// ErrUnknownSource is returned by New for an unrecognized source name.
var ErrUnknownSource = errors.New("unknown source")

// Source produces normalized events from one upstream.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.Event, error)
}

// Options carries the collaborators shared by all adapters.
type Options struct {
	Client   *http.Client
	Logger   *slog.Logger
	Now      func() time.Time
	Location *time.Location
}

func (o Options) withDefaults(timeout time.Duration) Options {
	if o.Client == nil {
		o.Client = NewHTTPClient(timeout)
	}
	if o.Logger == nil {
		o.Logger = logger.Discard()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return o
}

// New builds the named source from the run configuration.
func New(name string, cfg *config.Config, opts Options) (Source, error) {
	opts = opts.withDefaults(cfg.HTTPTimeout)
	switch name {
	case NameLive:
		return NewTicketmaster(cfg.Ticketmaster, opts), nil
	case NameMuseum:
		return NewMuseum(cfg.Museum, opts), nil
	case NameDeals:
		var deals []Deal
		if cfg.DealsFile != "" {
			loaded, err := LoadDeals(cfg.DealsFile)
			if err != nil {
				return nil, err
			}
			deals = loaded
		}
		return NewDeals(deals, opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
}
