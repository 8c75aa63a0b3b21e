package ranking

import (
	"testing"

	"discovery-api/internal/models"

	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }

type entry struct {
	id  string
	key Key
}

func ids(entries []entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.id
	}
	return out
}

func keyOf(e entry) Key { return e.key }

func TestSort_DefaultOrdering(t *testing.T) {
	input := []entry{
		{id: "limited-high", key: Key{Trusted: false, Quality: f(99), Distance: f(0.5)}},
		{id: "trusted-low", key: Key{Trusted: true, Quality: f(60), Distance: f(1)}},
		{id: "trusted-high-far", key: Key{Trusted: true, Quality: f(90), Distance: f(20)}},
		{id: "trusted-high-near", key: Key{Trusted: true, Quality: f(90), Distance: f(2)}},
		{id: "trusted-high-unknown", key: Key{Trusted: true, Quality: f(90)}},
		{id: "trusted-missing-quality", key: Key{Trusted: true}},
	}

	got := Sort(input, keyOf, false)

	assert.Equal(t, []string{
		"trusted-high-near",
		"trusted-high-far",
		"trusted-high-unknown",
		"trusted-low",
		"trusted-missing-quality",
		"limited-high",
	}, ids(got))
	assert.Equal(t, "limited-high", input[0].id, "input must not be reordered")
}

func TestSort_NearMe(t *testing.T) {
	input := []entry{
		{id: "unknown-best", key: Key{Trusted: true, Quality: f(100)}},
		{id: "far", key: Key{Trusted: true, Quality: f(90), Distance: f(8)}},
		{id: "near-limited", key: Key{Trusted: false, Quality: f(40), Distance: f(0.3)}},
		{id: "tie-low", key: Key{Trusted: true, Quality: f(70), Distance: f(3)}},
		{id: "tie-high", key: Key{Trusted: true, Quality: f(80), Distance: f(3)}},
		{id: "unknown-limited", key: Key{Trusted: false}},
	}

	got := Sort(input, keyOf, true)

	assert.Equal(t, []string{
		"near-limited",
		"tie-high",
		"tie-low",
		"far",
		"unknown-best",
		"unknown-limited",
	}, ids(got))
}

func TestSort_StableForEqualKeys(t *testing.T) {
	input := []entry{
		{id: "a", key: Key{Trusted: true, Quality: f(80), Distance: f(1)}},
		{id: "b", key: Key{Trusted: true, Quality: f(80), Distance: f(1)}},
		{id: "c", key: Key{Trusted: true, Quality: f(80), Distance: f(1)}},
		{id: "d", key: Key{Trusted: true, Quality: f(80), Distance: f(1)}},
	}

	for i := 0; i < 20; i++ {
		assert.Equal(t, []string{"a", "b", "c", "d"}, ids(Sort(input, keyOf, false)))
		assert.Equal(t, []string{"a", "b", "c", "d"}, ids(Sort(input, keyOf, true)))
	}
}

func TestCompare_Antisymmetric(t *testing.T) {
	keys := []Key{
		{},
		{Trusted: true},
		{Trusted: true, Quality: f(50)},
		{Trusted: true, Quality: f(50), Distance: f(1)},
		{Trusted: false, Quality: f(90), Distance: f(0.1)},
	}
	for _, nearMe := range []bool{false, true} {
		for _, a := range keys {
			for _, b := range keys {
				assert.Equal(t, -Compare(a, b, nearMe), Compare(b, a, nearMe))
			}
		}
	}
}

func TestWithDistances(t *testing.T) {
	bundles := []models.RestaurantBundle{
		{Restaurant: models.Restaurant{ID: "known", Coordinates: &models.Coordinates{Lat: 40.0, Lng: -74.0}}},
		{Restaurant: models.Restaurant{ID: "unknown"}},
	}
	origin := &models.Coordinates{Lat: 40.0, Lng: -74.0}

	got := WithDistances(bundles, origin)

	assert.NotNil(t, got[0].DistanceMiles)
	assert.Equal(t, 0.0, *got[0].DistanceMiles)
	assert.Nil(t, got[1].DistanceMiles)
	assert.Nil(t, bundles[0].DistanceMiles, "input bundles must stay untouched")

	cleared := WithDistances(got, nil)
	assert.Nil(t, cleared[0].DistanceMiles)
}
