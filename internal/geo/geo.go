// Package geo provides great-circle distance and distance label formatting.
package geo

import (
	"fmt"
	"math"

	"discovery-api/internal/models"
)

const (
	// EarthRadiusKm is the mean Earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0
	// KmToMiles converts kilometers to statute miles.
	KmToMiles = 0.621371
	// UnknownLabel is shown when either endpoint has no location.
	UnknownLabel = "-"
)

// Distance returns the haversine distance between a and b in miles.
func Distance(a, b models.Coordinates) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c * KmToMiles
}

// DistanceBetween is Distance for optional endpoints. It returns nil when
// either endpoint is unknown.
func DistanceBetween(a, b *models.Coordinates) *float64 {
	if a == nil || b == nil {
		return nil
	}
	d := Distance(*a, *b)
	return &d
}

// FormatDistance renders a distance in miles for display.
//
//	nil        -> "-"
//	< 0.1      -> "<0.1 mi"
//	< 10       -> one decimal, "3.4 mi"
//	>= 10      -> rounded integer, "12 mi"
func FormatDistance(miles *float64) string {
	if miles == nil || math.IsNaN(*miles) {
		return UnknownLabel
	}
	m := *miles
	switch {
	case m < 0.1:
		return "<0.1 mi"
	case m < 10:
		return fmt.Sprintf("%.1f mi", m)
	default:
		return fmt.Sprintf("%d mi", int64(math.Round(m)))
	}
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
