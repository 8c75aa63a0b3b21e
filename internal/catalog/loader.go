// Package catalog loads restaurant documents and normalizes them into the
// shape the ranking pipeline expects.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"discovery-api/internal/models"
)

// ErrFetch marks a failed catalog fetch. It is fatal to the current view and
// is not retried automatically.
var ErrFetch = errors.New("catalog: fetch failed")

// Repository reads restaurant documents.
type Repository interface {
	ListRestaurants(ctx context.Context) ([]models.RestaurantDocument, error)
	ListRestaurantsByProvider(ctx context.Context, provider string) ([]models.RestaurantDocument, error)
}

// Loader fetches and normalizes the restaurant catalog.
type Loader struct {
	repo Repository
}

// NewLoader creates a catalog loader.
func NewLoader(repo Repository) *Loader {
	return &Loader{repo: repo}
}

// Load fetches the full catalog.
func (l *Loader) Load(ctx context.Context) ([]models.Restaurant, error) {
	docs, err := l.repo.ListRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return normalizeAll(docs), nil
}

// LoadByProvider fetches the slice of the catalog ingested from provider.
func (l *Loader) LoadByProvider(ctx context.Context, provider string) ([]models.Restaurant, error) {
	docs, err := l.repo.ListRestaurantsByProvider(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("%w: provider %q: %w", ErrFetch, provider, err)
	}
	return normalizeAll(docs), nil
}

func normalizeAll(docs []models.RestaurantDocument) []models.Restaurant {
	out := make([]models.Restaurant, 0, len(docs))
	for _, d := range docs {
		out = append(out, Normalize(d))
	}
	return out
}

// Normalize converts a stored document into a catalog restaurant. Documents
// with unusable coordinates are kept with nil Coordinates.
func Normalize(doc models.RestaurantDocument) models.Restaurant {
	coords := NormalizeCoordinates(doc.Coordinates)
	if coords == nil {
		coords = NormalizeCoordinates(doc.Location)
	}

	r := models.Restaurant{
		ID:           doc.ID,
		Name:         strings.TrimSpace(doc.Name),
		Cuisine:      strings.TrimSpace(doc.Cuisine),
		Cuisines:     NormalizeCuisines(doc.Cuisine, doc.Cuisines),
		Coordinates:  coords,
		QualityScore: doc.QualityScore,
		CoverImage:   doc.CoverImage,
		HeaderImage:  doc.HeaderImage,
		Photos:       doc.Photos,
		Provider:     doc.Provider,
	}
	if doc.PriceLevel != nil && *doc.PriceLevel >= 1 && *doc.PriceLevel <= 4 {
		r.PriceLevel = *doc.PriceLevel
	}
	return r
}

// NormalizeCoordinates accepts {lat,lng}, {latitude,longitude} and the
// {_latitude,_longitude} geopoint export form. Values may be numbers or
// numeric strings. It returns nil when the value is missing or invalid.
func NormalizeCoordinates(raw json.RawMessage) *models.Coordinates {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}

	lat, ok := firstNumber(fields, "lat", "latitude", "_latitude")
	if !ok {
		return nil
	}
	lng, ok := firstNumber(fields, "lng", "longitude", "_longitude", "lon")
	if !ok {
		return nil
	}

	c := models.Coordinates{Lat: lat, Lng: lng}
	if !c.Valid() {
		return nil
	}
	return &c
}

func firstNumber(fields map[string]json.RawMessage, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := fields[k]
		if !ok {
			continue
		}
		if f, ok := parseNumber(v); ok {
			return f, true
		}
	}
	return 0, false
}

func parseNumber(v json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(v, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// NormalizeCuisines folds the primary cuisine and the cuisine list into a
// lowercase, deduplicated token set. Empty entries are dropped. The result is
// sorted only so that output is reproducible.
func NormalizeCuisines(primary string, list []string) []string {
	out := make([]string, 0, len(list)+1)
	for _, c := range append([]string{primary}, list...) {
		token := strings.ToLower(strings.TrimSpace(c))
		if token == "" {
			continue
		}
		out = append(out, token)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
