package models

import "strings"

// ViewMode selects whether results are restaurants or dishes.
type ViewMode string

const (
	ModeRestaurant ViewMode = "restaurant"
	ModeDish       ViewMode = "dish"
)

// Filters is the full query input accepted by the discovery pipeline.
type Filters struct {
	Query      string       `json:"query,omitempty"`
	Category   string       `json:"category,omitempty"`
	PriceLevel int          `json:"priceLevel,omitempty"`
	Tag        string       `json:"tag,omitempty"`
	NearMe     bool         `json:"nearMe,omitempty"`
	Location   *Coordinates `json:"location,omitempty"`
	Mode       ViewMode     `json:"mode,omitempty"`
}

// Normalized trims free text and fills the default view mode.
func (f Filters) Normalized() Filters {
	f.Query = strings.TrimSpace(f.Query)
	f.Category = strings.TrimSpace(f.Category)
	f.Tag = strings.TrimSpace(f.Tag)
	if f.Mode != ModeDish {
		f.Mode = ModeRestaurant
	}
	if f.PriceLevel < 0 || f.PriceLevel > 4 {
		f.PriceLevel = 0
	}
	return f
}

// Active reports whether any narrowing filter is set.
func (f Filters) Active() bool {
	return f.Query != "" || f.Category != "" || f.PriceLevel != 0 || f.Tag != "" || f.NearMe
}
