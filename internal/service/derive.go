package service

import (
	"strings"
	"time"

	"discovery-api/internal/assemble"
	"discovery-api/internal/facet"
	"discovery-api/internal/models"
	"discovery-api/internal/quality"
	"discovery-api/internal/ranking"
)

// Snapshot is an immutable join of the catalog with its review aggregates.
// Dishes is only populated for dish snapshots.
type Snapshot struct {
	Restaurants []models.RestaurantBundle
	Dishes      []models.DishBundle
	LoadedAt    time.Time
}

// BuildRestaurantBundles joins restaurants with their aggregates and scores
// them. Restaurants without an aggregate count as unreviewed.
func BuildRestaurantBundles(restaurants []models.Restaurant, aggs map[string]models.ReviewAggregate) []models.RestaurantBundle {
	out := make([]models.RestaurantBundle, 0, len(restaurants))
	for _, r := range restaurants {
		agg := aggs[r.ID]
		out = append(out, models.RestaurantBundle{
			Restaurant:        r,
			Aggregate:         agg,
			QualityPercentage: quality.Percentage(agg, r.QualityScore),
			Tier:              quality.TierFor(agg.ReviewCount),
		})
	}
	return out
}

// BuildDishBundles joins menu items with their owning restaurant and
// aggregates.
func BuildDishBundles(items []models.MenuItem, restaurants []models.Restaurant, aggs map[string]models.ReviewAggregate) []models.DishBundle {
	byID := make(map[string]*models.Restaurant, len(restaurants))
	for i := range restaurants {
		byID[restaurants[i].ID] = &restaurants[i]
	}

	out := make([]models.DishBundle, 0, len(items))
	for _, item := range items {
		agg := aggs[item.ID]
		out = append(out, models.DishBundle{
			Dish:              item,
			Restaurant:        byID[item.RestaurantID],
			Aggregate:         agg,
			QualityPercentage: quality.Percentage(agg, nil),
			Tier:              quality.TierFor(agg.ReviewCount),
		})
	}
	return out
}

// DeriveResults filters, ranks and renders a snapshot for one filter tuple.
// It has no side effects. tagIDs must be non-nil when filters.Tag is set; a
// nil set with an active tag means the lookup is still pending and yields the
// loading state.
func DeriveResults(snap *Snapshot, filters models.Filters, tagIDs facet.IDSet) models.Result {
	f := filters.Normalized()
	res := models.Result{Mode: f.Mode, Filters: f, Cards: []models.Card{}}

	if snap == nil || (f.Tag != "" && tagIDs == nil) {
		res.State = models.StateLoading
		return res
	}

	var origin *models.Coordinates
	if f.Location != nil && f.Location.Valid() {
		origin = f.Location
	}
	nearMe := f.NearMe && origin != nil
	query := facet.ParseQuery(f.Query)

	switch f.Mode {
	case models.ModeDish:
		var matched []models.DishBundle
		for _, b := range snap.Dishes {
			if matchDish(b, f, query, tagIDs) {
				matched = append(matched, b)
			}
		}
		for _, b := range ranking.Sort(ranking.DishesWithDistances(matched, origin), ranking.DishKey, nearMe) {
			res.Cards = append(res.Cards, assemble.FromDish(b))
		}
	default:
		var matched []models.RestaurantBundle
		for _, b := range snap.Restaurants {
			if matchRestaurant(b, f, query, tagIDs) {
				matched = append(matched, b)
			}
		}
		for _, b := range ranking.Sort(ranking.WithDistances(matched, origin), ranking.RestaurantKey, nearMe) {
			res.Cards = append(res.Cards, assemble.FromRestaurant(b))
		}
	}

	res.LocalCount = len(res.Cards)
	if res.LocalCount == 0 {
		res.State = models.StateNoMatch
		res.ClearFilters = f.Active()
	} else {
		res.State = models.StateReady
	}
	return res
}

func matchRestaurant(b models.RestaurantBundle, f models.Filters, q facet.ParsedQuery, tagIDs facet.IDSet) bool {
	r := b.Restaurant
	if f.Category != "" && !restaurantInCategory(b, f.Category) {
		return false
	}
	if f.PriceLevel != 0 && r.PriceLevel != f.PriceLevel {
		return false
	}
	if !q.MatchesRestaurant(r.Name, r.Cuisines) {
		return false
	}
	if f.Tag != "" && !tagIDs.Has(r.ID) {
		return false
	}
	return true
}

func restaurantInCategory(b models.RestaurantBundle, category string) bool {
	if b.Restaurant.HasCuisine(strings.ToLower(category)) {
		return true
	}
	for _, c := range b.Aggregate.Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

func matchDish(b models.DishBundle, f models.Filters, q facet.ParsedQuery, tagIDs facet.IDSet) bool {
	d := b.Dish
	if f.Category != "" && !strings.EqualFold(strings.TrimSpace(d.Category), f.Category) {
		return false
	}
	if f.PriceLevel != 0 && (b.Restaurant == nil || b.Restaurant.PriceLevel != f.PriceLevel) {
		return false
	}
	if !q.MatchesDish(d.Name, d.Category) {
		return false
	}
	if f.Tag != "" && !tagIDs.Has(d.RestaurantID) {
		return false
	}
	return true
}
