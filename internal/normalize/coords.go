package normalize

import "math"

// Coordinates parses a latitude/longitude pair. If either value is missing,
// non-numeric, non-finite or out of range, both results are nil.
func Coordinates(lat, lon any) (*float64, *float64) {
	if lat == nil || lon == nil {
		return nil, nil
	}
	la, err := Float(lat)
	if err != nil {
		return nil, nil
	}
	lo, err := Float(lon)
	if err != nil {
		return nil, nil
	}
	if !inRange(la, -90, 90) || !inRange(lo, -180, 180) {
		return nil, nil
	}
	return &la, &lo
}

func inRange(f, lo, hi float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	return f >= lo && f <= hi
}
