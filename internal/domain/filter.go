package domain

import (
	"sort"
	"strings"
)

// CategoryAll selects every category.
const CategoryAll = "All"

// Filter restricts a read of the event store. The zero value selects everything.
type Filter struct {
	Category string `json:"category,omitempty"` // exact, case-sensitive; "" or "All" means no restriction
	FreeOnly bool   `json:"free_only,omitempty"`
}

// HasCategory reports whether the filter restricts by category.
func (f Filter) HasCategory() bool {
	return f.Category != "" && f.Category != CategoryAll
}

// Matches applies the filter to a single event.
func (f Filter) Matches(ev *Event) bool {
	if f.HasCategory() && ev.Category != f.Category {
		return false
	}
	if f.FreeOnly && !ev.IsFree() {
		return false
	}
	return true
}

// Key returns a stable string form of the filter, used as a cache key.
func (f Filter) Key() string {
	cat := f.Category
	if !f.HasCategory() {
		cat = CategoryAll
	}
	free := "any"
	if f.FreeOnly {
		free = "free"
	}
	return strings.Join([]string{"events", cat, free}, ":")
}

// Less is the read ordering contract: event date ascending with undated
// events last, then price ascending, then title.
func Less(a, b *Event) bool {
	switch {
	case a.EventDate == nil && b.EventDate != nil:
		return false
	case a.EventDate != nil && b.EventDate == nil:
		return true
	case a.EventDate != nil && b.EventDate != nil && !a.EventDate.Equal(*b.EventDate):
		return a.EventDate.Before(*b.EventDate)
	}
	if a.PriceMin != b.PriceMin {
		return a.PriceMin < b.PriceMin
	}
	return a.Title < b.Title
}

// SortEvents orders events by Less, keeping insertion order among equals.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool { return Less(&events[i], &events[j]) })
}
