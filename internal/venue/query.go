package venue

import (
	"slices"
	"sort"
	"strings"
)

// Sort keys accepted by Sort.
const (
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
	SortRating    = "rating"
	SortCapacity  = "capacity"
)

// ValidSortKey reports whether key is accepted by Sort. The empty key keeps input order.
func ValidSortKey(key string) bool {
	switch key {
	case "", SortPriceLow, SortPriceHigh, SortRating, SortCapacity:
		return true
	}
	return false
}

// Matches reports whether v satisfies every constraint in c.
func (c Criteria) Matches(v Venue) bool {
	if c.Category != "" && c.Category != "all" && string(v.Category) != c.Category {
		return false
	}
	if c.MinPrice != nil && v.PriceRange.Min < *c.MinPrice {
		return false
	}
	if c.MaxPrice != nil && v.PriceRange.Max > *c.MaxPrice {
		return false
	}
	if c.MinCapacity != nil && v.Capacity.Max < *c.MinCapacity {
		return false
	}
	if c.MaxCapacity != nil && v.Capacity.Min > *c.MaxCapacity {
		return false
	}
	for _, a := range c.Amenities {
		if !slices.Contains(v.Amenities, a) {
			return false
		}
	}
	if c.Featured && !v.IsFeatured {
		return false
	}
	if c.OwnerID != "" && v.OwnerID != c.OwnerID {
		return false
	}
	if c.Query != "" && !matchesQuery(v, c.Query) {
		return false
	}
	return true
}

// matchesQuery does a case-insensitive substring match on name and location.
func matchesQuery(v Venue, query string) bool {
	q := strings.ToLower(query)
	for _, field := range []string{v.Name, v.Location.City, v.Location.Province, v.Location.Address} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Filter returns the venues matching c, in input order. The input is not modified.
func Filter(list []Venue, c Criteria) []Venue {
	out := make([]Venue, 0, len(list))
	for _, v := range list {
		if c.Matches(v) {
			out = append(out, v)
		}
	}
	return out
}

// Sort returns a sorted copy of list. Ties keep their input order.
// Unknown keys return the copy unsorted.
func Sort(list []Venue, key string) []Venue {
	out := slices.Clone(list)
	if out == nil {
		out = []Venue{}
	}

	var less func(a, b Venue) bool
	switch key {
	case SortPriceLow:
		less = func(a, b Venue) bool { return a.PriceRange.Min < b.PriceRange.Min }
	case SortPriceHigh:
		less = func(a, b Venue) bool { return a.PriceRange.Max > b.PriceRange.Max }
	case SortRating:
		less = func(a, b Venue) bool { return a.Rating > b.Rating }
	case SortCapacity:
		less = func(a, b Venue) bool { return a.Capacity.Max > b.Capacity.Max }
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
