package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"discovery-api/internal/fallback"
	"discovery-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// PlacesHandler handles external place searches
type PlacesHandler struct {
	service PlacesService
}

// PlacesService interface for dependency injection
type PlacesService interface {
	SearchPlaces(context.Context, string, models.Coordinates) ([]models.Card, error)
	PlacePhoto(context.Context, string) (*fallback.Photo, error)
}

// NewPlacesHandler creates a new places handler
func NewPlacesHandler(svc PlacesService) *PlacesHandler {
	return &PlacesHandler{service: svc}
}

// SearchPlaces handles GET /places/search requests
//
//	@Summary		Search the external places provider
//	@Description	Provider failures are logged and answered with an empty list.
//	@Tags			places
//	@Produce		json
//	@Param			q	query		string	true	"Free text"
//	@Param			lat	query		number	true	"Latitude"
//	@Param			lng	query		number	true	"Longitude"
//	@Success		200	{array}		models.Card
//	@Failure		400	{object}	map[string]string
//	@Failure		503	{object}	map[string]string
//	@Router			/places/search [get]
func (h *PlacesHandler) SearchPlaces(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter 'q'"})
		return
	}

	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr == "" || lngStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameters 'lat' and 'lng'"})
		return
	}

	loc, err := parseLocation(latStr, lngStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cards, err := h.service.SearchPlaces(c.Request.Context(), query, *loc)
	if err != nil {
		if errors.Is(err, fallback.ErrNoProvider) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "external search is not configured"})
			return
		}
		log.Warn().Err(err).Str("query", query).Msg("external search failed")
		c.JSON(http.StatusOK, []models.Card{})
		return
	}

	c.JSON(http.StatusOK, cards)
}

// Photo handles GET /places/photo requests
//
//	@Summary	Proxy an external place photo
//	@Tags		places
//	@Produce	image/jpeg
//	@Param		ref	query		string	true	"Photo reference from a card"
//	@Success	200	{file}		binary
//	@Failure	400	{object}	map[string]string
//	@Failure	502	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/places/photo [get]
func (h *PlacesHandler) Photo(c *gin.Context) {
	ref := strings.TrimSpace(c.Query("ref"))
	if ref == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter 'ref'"})
		return
	}

	photo, err := h.service.PlacePhoto(c.Request.Context(), ref)
	if err != nil {
		if errors.Is(err, fallback.ErrNoProvider) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "external search is not configured"})
			return
		}
		log.Warn().Err(err).Msg("place photo fetch failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "photo unavailable"})
		return
	}
	defer photo.Body.Close()

	contentType := photo.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, photo.ContentLength, contentType, photo.Body, map[string]string{
		"Cache-Control": "public, max-age=86400",
	})
}
