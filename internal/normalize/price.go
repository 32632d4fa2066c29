package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNotNumeric is returned when a value cannot be read as a number.
var ErrNotNumeric = errors.New("not numeric")

// Float reads a decoded JSON number or numeric string.
func Float(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, fmt.Errorf("%w: empty string", ErrNotNumeric)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNotNumeric, s)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrNotNumeric, v)
	}
}

// Price converts a raw price to a non-negative amount rounded to cents.
// Missing, non-numeric, negative and non-finite values become 0 (free).
func Price(v any) float64 {
	if v == nil {
		return 0
	}
	f, err := Float(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return math.Round(f*100) / 100
}

// PriceAt reads the price at path; see Price.
func PriceAt(v any, path ...any) float64 {
	raw, _ := Lookup(v, path...)
	return Price(raw)
}
