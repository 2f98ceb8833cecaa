package venue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func sample() []Venue {
	return []Venue{
		{
			ID:         "a",
			Name:       "Alpha Hall",
			Category:   CategoryBallroom,
			Rating:     4.5,
			Location:   Location{City: "Makati", Province: "Metro Manila", Address: "1 Ayala"},
			Capacity:   Range{Min: 50, Max: 300},
			PriceRange: Range{Min: 20000, Max: 60000},
			Amenities:  []string{"parking", "aircon"},
			IsFeatured: true,
		},
		{
			ID:         "b",
			Name:       "Bravo Garden",
			Category:   CategoryGarden,
			Rating:     4.5,
			Location:   Location{City: "Tagaytay", Province: "Cavite", Address: "Km 52"},
			Capacity:   Range{Min: 20, Max: 150},
			PriceRange: Range{Min: 15000, Max: 40000},
			Amenities:  []string{"parking", "garden"},
		},
		{
			ID:         "c",
			Name:       "Charlie Center",
			Category:   CategoryConference,
			Rating:     3.9,
			Location:   Location{City: "Cebu City", Province: "Cebu", Address: "IT Park"},
			Capacity:   Range{Min: 30, Max: 300},
			PriceRange: Range{Min: 15000, Max: 90000},
			Amenities:  []string{"aircon", "projector"},
		},
	}
}

func ids(list []Venue) []string {
	out := make([]string, len(list))
	for i, v := range list {
		out[i] = v.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	list := sample()

	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"no criteria", Criteria{}, []string{"a", "b", "c"}},
		{"category all", Criteria{Category: "all"}, []string{"a", "b", "c"}},
		{"category", Criteria{Category: "garden"}, []string{"b"}},
		{"min price uses range min", Criteria{MinPrice: ptr(int64(16000))}, []string{"a"}},
		{"max price uses range max", Criteria{MaxPrice: ptr(int64(60000))}, []string{"a", "b"}},
		{"min capacity uses range max", Criteria{MinCapacity: ptr(int64(200))}, []string{"a", "c"}},
		{"max capacity uses range min", Criteria{MaxCapacity: ptr(int64(25))}, []string{"b"}},
		{"all amenities required", Criteria{Amenities: []string{"parking", "aircon"}}, []string{"a"}},
		{"featured", Criteria{Featured: true}, []string{"a"}},
		{"query matches city case-insensitively", Criteria{Query: "cebu"}, []string{"c"}},
		{"query matches name", Criteria{Query: "garden"}, []string{"b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(list, tt.criteria)))
		})
	}

	assert.Equal(t, []string{"a", "b", "c"}, ids(list), "input untouched")
}

func TestSort_StableAndPure(t *testing.T) {
	list := sample()

	assert.Equal(t, []string{"b", "c", "a"}, ids(Sort(list, SortPriceLow)))
	assert.Equal(t, []string{"c", "a", "b"}, ids(Sort(list, SortPriceHigh)))
	assert.Equal(t, []string{"a", "b", "c"}, ids(Sort(list, SortRating)), "equal ratings keep input order")
	assert.Equal(t, []string{"a", "c", "b"}, ids(Sort(list, SortCapacity)), "equal capacity keeps input order")
	assert.Equal(t, []string{"a", "b", "c"}, ids(Sort(list, "unknown")))

	assert.Equal(t, []string{"a", "b", "c"}, ids(list), "input untouched")
	assert.Equal(t, Sort(list, SortPriceLow), Sort(list, SortPriceLow))
}

func TestPatchApply_DoesNotAliasBase(t *testing.T) {
	base := sample()[0]
	amenities := []string{"wifi"}
	got := Patch{Name: ptr("Renamed"), Amenities: &amenities}.Apply(base)

	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "Alpha Hall", base.Name)
	assert.Equal(t, []string{"parking", "aircon"}, base.Amenities)

	amenities[0] = "changed"
	assert.Equal(t, []string{"wifi"}, got.Amenities)
}
