package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidEvents is returned when a batch contains events that break the record invariants.
var ErrInvalidEvents = errors.New("one or more events failed validation")

// FieldError represents a single field's validation error.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"message"`
}

func (e FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Msg) }

// ValidateEvent checks the record invariants: required text fields,
// a finite non-negative price and a complete, in-range coordinate pair.
func ValidateEvent(ev *Event) []FieldError {
	var errs []FieldError

	required := []struct {
		field, value string
	}{
		{"title", ev.Title},
		{"venue", ev.Venue},
		{"neighborhood", ev.Neighborhood},
		{"category", ev.Category},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, FieldError{r.field, "required"})
		}
	}
	if len(ev.Title) > MaxTitleLen {
		errs = append(errs, FieldError{"title", fmt.Sprintf("max length %d", MaxTitleLen)})
	}
	if len(ev.DealDescription) > MaxTextLen {
		errs = append(errs, FieldError{"deal_description", fmt.Sprintf("max length %d", MaxTextLen)})
	}

	if math.IsNaN(ev.PriceMin) || math.IsInf(ev.PriceMin, 0) {
		errs = append(errs, FieldError{"price_min", "must be finite"})
	} else if ev.PriceMin < 0 {
		errs = append(errs, FieldError{"price_min", "must be >= 0"})
	}

	switch {
	case ev.Lat == nil && ev.Lon == nil:
	case ev.Lat == nil || ev.Lon == nil:
		errs = append(errs, FieldError{"lat/lon", "must be both set or both empty"})
	default:
		if !finite(*ev.Lat) || *ev.Lat < MinLat || *ev.Lat > MaxLat {
			errs = append(errs, FieldError{"lat", "must be a finite value in [-90, 90]"})
		}
		if !finite(*ev.Lon) || *ev.Lon < MinLon || *ev.Lon > MaxLon {
			errs = append(errs, FieldError{"lon", "must be a finite value in [-180, 180]"})
		}
	}

	return errs
}

// ValidateBatch validates every event and returns per-index errors.
// The returned error wraps ErrInvalidEvents and names the first offending record.
func ValidateBatch(events []Event) (allErrs map[int][]FieldError, err error) {
	for i := range events {
		fe := ValidateEvent(&events[i])
		if len(fe) == 0 {
			continue
		}
		if allErrs == nil {
			allErrs = make(map[int][]FieldError)
			err = fmt.Errorf("%w: events[%d] %q: %v", ErrInvalidEvents, i, events[i].Title, fe[0])
		}
		allErrs[i] = fe
	}
	return allErrs, err
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
