package models

import "encoding/json"

// RestaurantDocument is a restaurant as stored in the document database.
// Coordinates are kept raw because ingestion writes both {lat,lng} and
// {latitude,longitude} spellings.
type RestaurantDocument struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Cuisine      string          `json:"cuisine"`
	Cuisines     []string        `json:"cuisines"`
	Coordinates  json.RawMessage `json:"coordinates"`
	Location     json.RawMessage `json:"location"`
	PriceLevel   *int            `json:"priceLevel"`
	QualityScore *float64        `json:"qualityScore"`
	CoverImage   string          `json:"coverImage"`
	HeaderImage  string          `json:"headerImage"`
	Photos       PhotoList       `json:"photos"`
	Provider     string          `json:"provider"`
}

// Restaurant is the normalized, read-only catalog entry.
type Restaurant struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Cuisine      string       `json:"cuisine"`
	Cuisines     []string     `json:"cuisines"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
	PriceLevel   int          `json:"priceLevel,omitempty"`
	QualityScore *float64     `json:"qualityScore,omitempty"`
	CoverImage   string       `json:"coverImage,omitempty"`
	HeaderImage  string       `json:"headerImage,omitempty"`
	Photos       []string     `json:"photos,omitempty"`
	Provider     string       `json:"provider,omitempty"`
}

// HasCuisine reports whether token (already lowercased) is in the cuisine set.
func (r Restaurant) HasCuisine(token string) bool {
	for _, c := range r.Cuisines {
		if c == token {
			return true
		}
	}
	return false
}

// MenuItem is a dish offered by a restaurant.
type MenuItem struct {
	ID           string   `json:"id"`
	RestaurantID string   `json:"restaurantId"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Price        *float64 `json:"price,omitempty"`
	CoverImage   string   `json:"coverImage,omitempty"`
}
