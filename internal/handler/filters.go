package handler

import (
	"errors"
	"strconv"
	"strings"

	"discovery-api/internal/models"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidPrice     = errors.New("invalid 'price', expected 1-4")
	errInvalidNearMe    = errors.New("invalid 'near_me', expected a boolean")
	errPartialLocation  = errors.New("query parameters 'lat' and 'lng' must be given together")
	errInvalidLatitude  = errors.New("invalid latitude format")
	errInvalidLongitude = errors.New("invalid longitude format")
	errOutOfRange       = errors.New("coordinates out of range")
	errNearMeLocation   = errors.New("'near_me' requires 'lat' and 'lng'")
)

// ParseFilters reads the search filters from the query string.
func ParseFilters(c *gin.Context, mode models.ViewMode) (models.Filters, error) {
	f := models.Filters{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Mode:     mode,
	}

	if p := c.Query("price"); p != "" {
		level, err := strconv.Atoi(p)
		if err != nil || level < 1 || level > 4 {
			return f, errInvalidPrice
		}
		f.PriceLevel = level
	}

	if n := c.Query("near_me"); n != "" {
		nearMe, err := strconv.ParseBool(n)
		if err != nil {
			return f, errInvalidNearMe
		}
		f.NearMe = nearMe
	}

	loc, err := parseLocation(c.Query("lat"), c.Query("lng"))
	if err != nil {
		return f, err
	}
	f.Location = loc

	if f.NearMe && f.Location == nil {
		return f, errNearMeLocation
	}
	return f.Normalized(), nil
}

func parseLocation(latStr, lngStr string) (*models.Coordinates, error) {
	latStr, lngStr = strings.TrimSpace(latStr), strings.TrimSpace(lngStr)
	if latStr == "" && lngStr == "" {
		return nil, nil
	}
	if latStr == "" || lngStr == "" {
		return nil, errPartialLocation
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, errInvalidLatitude
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil, errInvalidLongitude
	}

	loc := models.Coordinates{Lat: lat, Lng: lng}
	if !loc.Valid() {
		return nil, errOutOfRange
	}
	return &loc, nil
}
