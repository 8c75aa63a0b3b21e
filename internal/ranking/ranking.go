// Package ranking orders discovery results.
//
// The default ordering is, in sequence:
//
//  1. sufficiency tier: trusted (5+ reviews) before limited
//  2. quality percentage, descending (missing counts as 0)
//  3. distance, ascending (missing counts as +Inf)
//
// With "near me" active, ascending distance comes first, restaurants with an
// unknown distance always sort last, and the default ordering breaks ties.
// Sorting is stable: entries with equal keys keep their input order.
package ranking

import (
	"cmp"
	"math"
	"slices"

	"discovery-api/internal/geo"
	"discovery-api/internal/models"
)

// Key holds the values an entry is ranked by.
type Key struct {
	Trusted  bool
	Quality  *float64
	Distance *float64
}

// Compare orders two keys. It returns a negative number when a ranks first.
func Compare(a, b Key, nearMe bool) int {
	if nearMe {
		if c := compareNear(a.Distance, b.Distance); c != 0 {
			return c
		}
	}
	return compareDefault(a, b)
}

func compareNear(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmp.Compare(*a, *b)
	}
}

func compareDefault(a, b Key) int {
	if a.Trusted != b.Trusted {
		if a.Trusted {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(valueOr(b.Quality, 0), valueOr(a.Quality, 0)); c != 0 {
		return c
	}
	return cmp.Compare(valueOr(a.Distance, math.Inf(1)), valueOr(b.Distance, math.Inf(1)))
}

// Sort returns a sorted copy of items. The input slice is not modified.
func Sort[T any](items []T, key func(T) Key, nearMe bool) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		return Compare(key(a), key(b), nearMe)
	})
	return out
}

// RestaurantKey extracts the ranking key of a restaurant bundle.
func RestaurantKey(b models.RestaurantBundle) Key {
	return Key{Trusted: b.Tier.Trusted(), Quality: b.QualityPercentage, Distance: b.DistanceMiles}
}

// DishKey extracts the ranking key of a dish bundle.
func DishKey(b models.DishBundle) Key {
	return Key{Trusted: b.Tier.Trusted(), Quality: b.QualityPercentage, Distance: b.DistanceMiles}
}

// WithDistances returns copies of the bundles with distances to origin set.
// A nil origin clears all distances.
func WithDistances(bundles []models.RestaurantBundle, origin *models.Coordinates) []models.RestaurantBundle {
	out := make([]models.RestaurantBundle, len(bundles))
	for i, b := range bundles {
		b.DistanceMiles = geo.DistanceBetween(origin, b.Restaurant.Coordinates)
		out[i] = b
	}
	return out
}

// DishesWithDistances is WithDistances for dish bundles, measured to the
// owning restaurant.
func DishesWithDistances(bundles []models.DishBundle, origin *models.Coordinates) []models.DishBundle {
	out := make([]models.DishBundle, len(bundles))
	for i, b := range bundles {
		b.DistanceMiles = nil
		if b.Restaurant != nil {
			b.DistanceMiles = geo.DistanceBetween(origin, b.Restaurant.Coordinates)
		}
		out[i] = b
	}
	return out
}

func valueOr(p *float64, fallback float64) float64 {
	if p == nil || math.IsNaN(*p) {
		return fallback
	}
	return *p
}
