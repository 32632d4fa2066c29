// Package normalize holds the field-level normalization shared by every source adapter:
// safe nested lookups, text defaulting, price, date and coordinate parsing.
package normalize

import (
	"strings"
	"unicode/utf8"
)

// Lookup walks a decoded JSON value. A string key indexes a map, an int key
// indexes a slice. Any missing key, out-of-range index or type mismatch yields false.
func Lookup(v any, path ...any) (any, bool) {
	cur := v
	for _, p := range path {
		switch k := p.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			next, ok := m[k]
			if !ok {
				return nil, false
			}
			cur = next
		case int:
			s, ok := cur.([]any)
			if !ok || k < 0 || k >= len(s) {
				return nil, false
			}
			cur = s[k]
		default:
			return nil, false
		}
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

// Text returns the trimmed string at path, or def when it is absent, empty or not a string.
func Text(v any, def string, path ...any) string {
	raw, ok := Lookup(v, path...)
	if !ok {
		return def
	}
	return TextOr(raw, def)
}

// TextOr returns v as a trimmed string, or def when v is not a non-empty string.
func TextOr(v any, def string) string {
	s, ok := v.(string)
	if !ok {
		return def
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

// Clip shortens s to at most n bytes without splitting a UTF-8 sequence.
func Clip(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Objects returns the list at path as a slice of JSON objects, skipping non-object items.
func Objects(v any, path ...any) []map[string]any {
	raw, ok := Lookup(v, path...)
	if !ok {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
