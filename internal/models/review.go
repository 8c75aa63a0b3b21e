package models

import "strings"

// CustomCategory is assigned to reviews that carry neither category field.
const CustomCategory = "custom"

// Review is a user review as stored in the document database.
type Review struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurantId"`
	MenuItemID   string    `json:"menuItemId,omitempty"`
	DishID       string    `json:"dishId,omitempty"`
	Rating       *float64  `json:"rating,omitempty"`
	Category     string    `json:"category,omitempty"`
	DishCategory string    `json:"dishCategory,omitempty"`
	Cuisine      string    `json:"cuisine,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	Media        Media     `json:"media"`
	Images       PhotoList `json:"images,omitempty"`
	IsDeleted    bool      `json:"isDeleted,omitempty"`
	CreatedAt    Timestamp `json:"createdAt"`
}

// Media groups the photo references attached to a review.
type Media struct {
	Photos PhotoList `json:"photos,omitempty"`
}

// EffectiveCategory returns category, then dishCategory, then "custom".
func (r Review) EffectiveCategory() string {
	if c := strings.TrimSpace(r.Category); c != "" {
		return c
	}
	if c := strings.TrimSpace(r.DishCategory); c != "" {
		return c
	}
	return CustomCategory
}

// PhotoURLs returns media photos, falling back to the legacy images field.
func (r Review) PhotoURLs() []string {
	if len(r.Media.Photos) > 0 {
		return r.Media.Photos
	}
	return r.Images
}

// ReviewAggregate is the joined review summary for a restaurant or dish.
type ReviewAggregate struct {
	Reviews             []Review `json:"-"`
	ReviewCount         int      `json:"reviewCount"`
	AverageRating       *float64 `json:"averageRating"`
	MostReviewedCuisine string   `json:"mostReviewedCuisine,omitempty"`
	TopTags             []string `json:"topTags,omitempty"`
	Categories          []string `json:"categories,omitempty"`
	Photos              []string `json:"photos,omitempty"`
}
