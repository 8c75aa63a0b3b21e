package models

// RestaurantBundle is a restaurant joined with its review aggregate and the
// values derived from it. Bundles are built once per snapshot and copied, never
// mutated, when a query attaches distances.
type RestaurantBundle struct {
	Restaurant        Restaurant      `json:"restaurant"`
	Aggregate         ReviewAggregate `json:"aggregate"`
	QualityPercentage *float64        `json:"qualityPercentage"`
	Tier              SufficiencyTier `json:"tier"`
	DistanceMiles     *float64        `json:"distanceMiles"`
}

// DishBundle is a menu item joined with its reviews and owning restaurant.
type DishBundle struct {
	Dish              MenuItem        `json:"dish"`
	Restaurant        *Restaurant     `json:"restaurant,omitempty"`
	Aggregate         ReviewAggregate `json:"aggregate"`
	QualityPercentage *float64        `json:"qualityPercentage"`
	Tier              SufficiencyTier `json:"tier"`
	DistanceMiles     *float64        `json:"distanceMiles"`
}

// FallbackPlace is an ephemeral result from the external places provider.
type FallbackPlace struct {
	ProviderID  string       `json:"providerId"`
	Name        string       `json:"name"`
	Vicinity    string       `json:"vicinity"`
	RatingCount int          `json:"ratingCount"`
	PriceLevel  int          `json:"priceLevel,omitempty"`
	PhotoRef    string       `json:"photoRef,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}
