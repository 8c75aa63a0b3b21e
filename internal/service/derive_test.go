package service

import (
	"testing"
	"time"

	"discovery-api/internal/facet"
	"discovery-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func agg(count int, avg float64) models.ReviewAggregate {
	return models.ReviewAggregate{ReviewCount: count, AverageRating: f64(avg)}
}

func cardIDs(cards []models.Card) []string {
	ids := []string{}
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	return ids
}

func testSnapshot() *Snapshot {
	restaurants := []models.Restaurant{
		{ID: "r1", Name: "Sakura Sushi", Cuisine: "japanese", Cuisines: []string{"japanese"}, PriceLevel: 2, Coordinates: &models.Coordinates{Lat: 40.7128, Lng: -74.0060}},
		{ID: "r2", Name: "Mystery Diner", Cuisines: []string{"american"}, PriceLevel: 1},
		{ID: "r3", Name: "Taco Town", Cuisine: "mexican", Cuisines: []string{"mexican"}, PriceLevel: 1, Coordinates: &models.Coordinates{Lat: 40.73, Lng: -73.99}},
	}
	aggs := map[string]models.ReviewAggregate{
		"r1": agg(10, 8.5),
		"r2": agg(2, 9.5),
		"r3": {ReviewCount: 6, AverageRating: f64(7), Categories: []string{"Tacos"}},
	}
	items := []models.MenuItem{
		{ID: "d1", RestaurantID: "r1", Name: "Salmon Nigiri", Category: "Sushi"},
		{ID: "d2", RestaurantID: "r3", Name: "Al Pastor", Category: "Tacos"},
		{ID: "d3", RestaurantID: "gone", Name: "Orphan Burger", Category: "Burgers"},
	}
	dishAggs := map[string]models.ReviewAggregate{
		"d1": agg(5, 9),
		"d2": agg(1, 10),
	}
	return &Snapshot{
		Restaurants: BuildRestaurantBundles(restaurants, aggs),
		Dishes:      BuildDishBundles(items, restaurants, dishAggs),
		LoadedAt:    time.Now(),
	}
}

func TestDeriveResults_TierOutranksRawQuality(t *testing.T) {
	restaurants := []models.Restaurant{
		{ID: "R2", Name: "Tiny Gem"},
		{ID: "R1", Name: "Busy Spot", Coordinates: &models.Coordinates{Lat: 1, Lng: 1}},
	}
	snap := &Snapshot{Restaurants: BuildRestaurantBundles(restaurants, map[string]models.ReviewAggregate{
		"R1": agg(10, 8.5),
		"R2": agg(2, 9.5),
	})}

	res := DeriveResults(snap, models.Filters{}, nil)

	require.Equal(t, models.StateReady, res.State)
	assert.Equal(t, []string{"R1", "R2"}, cardIDs(res.Cards))
	assert.Equal(t, "85%", res.Cards[0].BadgeText)
	assert.Equal(t, "Limited ratings (2)", res.Cards[1].BadgeText)
	assert.False(t, res.ClearFilters)
}

func TestDeriveResults_Filters(t *testing.T) {
	snap := testSnapshot()
	here := &models.Coordinates{Lat: 40.7128, Lng: -74.0060}

	tests := []struct {
		name     string
		filters  models.Filters
		tagIDs   facet.IDSet
		expected []string
		state    models.ResultState
	}{
		{name: "no filters", filters: models.Filters{}, expected: []string{"r1", "r3", "r2"}, state: models.StateReady},
		{name: "price", filters: models.Filters{PriceLevel: 1}, expected: []string{"r3", "r2"}, state: models.StateReady},
		{name: "category by cuisine", filters: models.Filters{Category: "Japanese"}, expected: []string{"r1"}, state: models.StateReady},
		{name: "category by review category", filters: models.Filters{Category: "tacos"}, expected: []string{"r3"}, state: models.StateReady},
		{name: "text by name", filters: models.Filters{Query: "diner"}, expected: []string{"r2"}, state: models.StateReady},
		{name: "text by inferred cuisine", filters: models.Filters{Query: "sushi"}, expected: []string{"r1"}, state: models.StateReady},
		{name: "tag intersects", filters: models.Filters{Tag: "Cozy"}, tagIDs: facet.IDSet{"r2": {}, "r3": {}}, expected: []string{"r3", "r2"}, state: models.StateReady},
		{name: "tag with no matches", filters: models.Filters{Tag: "Cozy"}, tagIDs: facet.IDSet{}, expected: []string{}, state: models.StateNoMatch},
		{name: "tag pending", filters: models.Filters{Tag: "Cozy"}, tagIDs: nil, expected: []string{}, state: models.StateLoading},
		{name: "near me puts unknown distance last", filters: models.Filters{NearMe: true, Location: &models.Coordinates{Lat: 40.73, Lng: -73.99}}, expected: []string{"r3", "r1", "r2"}, state: models.StateReady},
		{name: "near me without location is ignored", filters: models.Filters{NearMe: true}, expected: []string{"r1", "r3", "r2"}, state: models.StateReady},
		{name: "location without near me only annotates", filters: models.Filters{Location: here}, expected: []string{"r1", "r3", "r2"}, state: models.StateReady},
		{name: "nothing matches", filters: models.Filters{Query: "zzz"}, expected: []string{}, state: models.StateNoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := DeriveResults(snap, tt.filters, tt.tagIDs)
			assert.Equal(t, tt.state, res.State)
			assert.Equal(t, tt.expected, cardIDs(res.Cards))
			assert.Equal(t, len(tt.expected), res.LocalCount)
			assert.Equal(t, tt.state == models.StateNoMatch, res.ClearFilters)
		})
	}
}

func TestDeriveResults_DistanceLabels(t *testing.T) {
	res := DeriveResults(testSnapshot(), models.Filters{Location: &models.Coordinates{Lat: 40.7128, Lng: -74.0060}}, nil)

	require.Len(t, res.Cards, 3)
	assert.Equal(t, "<0.1 mi", res.Cards[0].DistanceLabel)
	assert.Equal(t, "-", res.Cards[2].DistanceLabel)
}

func TestDeriveResults_DoesNotMutateSnapshot(t *testing.T) {
	snap := testSnapshot()
	before := snap.Restaurants[0]

	DeriveResults(snap, models.Filters{Location: &models.Coordinates{Lat: 40, Lng: -74}}, nil)

	assert.Equal(t, before, snap.Restaurants[0])
	assert.Nil(t, snap.Restaurants[0].DistanceMiles)
}

func TestDeriveResults_DishMode(t *testing.T) {
	snap := testSnapshot()

	res := DeriveResults(snap, models.Filters{Mode: models.ModeDish}, nil)
	assert.Equal(t, models.ModeDish, res.Mode)
	assert.Equal(t, []string{"d1", "d2", "d3"}, cardIDs(res.Cards))

	byCategory := DeriveResults(snap, models.Filters{Mode: models.ModeDish, Category: "tacos"}, nil)
	assert.Equal(t, []string{"d2"}, cardIDs(byCategory.Cards))

	byText := DeriveResults(snap, models.Filters{Mode: models.ModeDish, Query: "burger"}, nil)
	assert.Equal(t, []string{"d3"}, cardIDs(byText.Cards))

	byTag := DeriveResults(snap, models.Filters{Mode: models.ModeDish, Tag: "Spicy"}, facet.IDSet{"r3": {}})
	assert.Equal(t, []string{"d2"}, cardIDs(byTag.Cards))

	byPrice := DeriveResults(snap, models.Filters{Mode: models.ModeDish, PriceLevel: 2}, nil)
	assert.Equal(t, []string{"d1"}, cardIDs(byPrice.Cards))
}

func TestDeriveResults_NilSnapshot(t *testing.T) {
	res := DeriveResults(nil, models.Filters{}, nil)
	assert.Equal(t, models.StateLoading, res.State)
	assert.NotNil(t, res.Cards)
}

func TestBuildRestaurantBundles_CachedScoreWins(t *testing.T) {
	bundles := BuildRestaurantBundles(
		[]models.Restaurant{{ID: "r1", QualityScore: f64(72)}, {ID: "r2"}},
		map[string]models.ReviewAggregate{"r1": agg(7, 9)},
	)

	require.NotNil(t, bundles[0].QualityPercentage)
	assert.Equal(t, 72.0, *bundles[0].QualityPercentage)
	assert.Equal(t, models.TierPercentage, bundles[0].Tier)
	assert.Nil(t, bundles[1].QualityPercentage)
	assert.Equal(t, models.TierLimited, bundles[1].Tier)
}
