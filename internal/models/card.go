package models

// Source marks where a card came from.
type Source string

const (
	SourceLocal    Source = "local"
	SourceExternal Source = "external"
)

// Card is the unified result schema rendered by clients for local
// restaurants, dishes and external places alike.
type Card struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	CoverImage        string   `json:"coverImage,omitempty"`
	PriceText         string   `json:"priceText"`
	DistanceMiles     *float64 `json:"distanceMiles"`
	DistanceLabel     string   `json:"distanceLabel"`
	SubtitleText      string   `json:"subtitleText"`
	BadgeText         string   `json:"badgeText,omitempty"`
	BadgeColor        string   `json:"badgeColor,omitempty"`
	Tier              string   `json:"tier,omitempty"`
	ReviewCount       int      `json:"reviewCount"`
	QualityPercentage *float64 `json:"qualityPercentage"`
	Tags              []string `json:"tags,omitempty"`
	Source            Source   `json:"source"`
	RestaurantID      string   `json:"restaurantId,omitempty"`
	DishID            string   `json:"dishId,omitempty"`
	ProviderID        string   `json:"providerId,omitempty"`
}
