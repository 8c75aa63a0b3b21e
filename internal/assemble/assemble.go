// Package assemble renders restaurants, dishes and external places as one
// card schema.
package assemble

import (
	"fmt"
	"strings"

	"discovery-api/internal/geo"
	"discovery-api/internal/models"
	"discovery-api/internal/quality"
)

// FromRestaurant renders a local restaurant card.
func FromRestaurant(b models.RestaurantBundle) models.Card {
	r := b.Restaurant
	badge := quality.BadgeFor(b.Aggregate.ReviewCount, b.QualityPercentage)

	return models.Card{
		ID:                r.ID,
		Name:              r.Name,
		CoverImage:        restaurantImage(r, b.Aggregate.Photos),
		PriceText:         PriceText(r.PriceLevel),
		DistanceMiles:     b.DistanceMiles,
		DistanceLabel:     geo.FormatDistance(b.DistanceMiles),
		SubtitleText:      restaurantSubtitle(b),
		BadgeText:         badge.Text,
		BadgeColor:        badge.Color,
		Tier:              string(b.Tier),
		ReviewCount:       b.Aggregate.ReviewCount,
		QualityPercentage: b.QualityPercentage,
		Tags:              b.Aggregate.TopTags,
		Source:            models.SourceLocal,
		RestaurantID:      r.ID,
	}
}

// FromDish renders a local dish card.
func FromDish(b models.DishBundle) models.Card {
	d := b.Dish
	badge := quality.BadgeFor(b.Aggregate.ReviewCount, b.QualityPercentage)

	cover := d.CoverImage
	if cover == "" && b.Restaurant != nil {
		cover = restaurantImage(*b.Restaurant, nil)
	}
	if cover == "" {
		cover = first(b.Aggregate.Photos)
	}

	subtitle := d.Category
	if b.Restaurant != nil && b.Restaurant.Name != "" {
		subtitle = b.Restaurant.Name
	}

	return models.Card{
		ID:                d.ID,
		Name:              d.Name,
		CoverImage:        cover,
		PriceText:         DishPriceText(d.Price),
		DistanceMiles:     b.DistanceMiles,
		DistanceLabel:     geo.FormatDistance(b.DistanceMiles),
		SubtitleText:      subtitle,
		BadgeText:         badge.Text,
		BadgeColor:        badge.Color,
		Tier:              string(b.Tier),
		ReviewCount:       b.Aggregate.ReviewCount,
		QualityPercentage: b.QualityPercentage,
		Tags:              b.Aggregate.TopTags,
		Source:            models.SourceLocal,
		RestaurantID:      d.RestaurantID,
		DishID:            d.ID,
	}
}

// FromPlace renders an external place card. External cards never carry a
// badge or tags. photoURL may be nil.
func FromPlace(p models.FallbackPlace, origin *models.Coordinates, photoURL func(string) string) models.Card {
	var cover string
	if photoURL != nil && p.PhotoRef != "" {
		cover = photoURL(p.PhotoRef)
	}
	distance := geo.DistanceBetween(origin, p.Coordinates)

	return models.Card{
		ID:            p.ProviderID,
		Name:          p.Name,
		CoverImage:    cover,
		PriceText:     PriceText(p.PriceLevel),
		DistanceMiles: distance,
		DistanceLabel: geo.FormatDistance(distance),
		SubtitleText:  p.Vicinity,
		ReviewCount:   p.RatingCount,
		Source:        models.SourceExternal,
		ProviderID:    p.ProviderID,
	}
}

// FromPlaces renders a batch of external places.
func FromPlaces(places []models.FallbackPlace, origin *models.Coordinates, photoURL func(string) string) []models.Card {
	cards := make([]models.Card, 0, len(places))
	for _, p := range places {
		cards = append(cards, FromPlace(p, origin, photoURL))
	}
	return cards
}

// Merge appends external cards after local ones. External cards are
// deduplicated by provider id.
func Merge(local, external []models.Card) []models.Card {
	out := make([]models.Card, 0, len(local)+len(external))
	out = append(out, local...)

	seen := make(map[string]struct{}, len(external))
	for _, c := range external {
		if c.ProviderID != "" {
			if _, ok := seen[c.ProviderID]; ok {
				continue
			}
			seen[c.ProviderID] = struct{}{}
		}
		out = append(out, c)
	}
	return out
}

// PriceText renders a 1-4 price level as dollar signs.
func PriceText(level int) string {
	if level < 1 || level > 4 {
		return ""
	}
	return strings.Repeat("$", level)
}

// DishPriceText renders a dish price such as "$12.50".
func DishPriceText(price *float64) string {
	if price == nil || *price < 0 {
		return ""
	}
	return fmt.Sprintf("$%.2f", *price)
}

func restaurantImage(r models.Restaurant, reviewPhotos []string) string {
	for _, candidate := range []string{r.CoverImage, r.HeaderImage, first(r.Photos), first(reviewPhotos)} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return ""
}

func restaurantSubtitle(b models.RestaurantBundle) string {
	if b.Aggregate.MostReviewedCuisine != "" {
		return b.Aggregate.MostReviewedCuisine
	}
	return b.Restaurant.Cuisine
}

func first(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[0]
}
