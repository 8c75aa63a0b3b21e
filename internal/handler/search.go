package handler

import (
	"context"
	"errors"
	"net/http"

	"discovery-api/internal/facet"
	"discovery-api/internal/models"
	"discovery-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// SearchHandler serves restaurant and dish searches.
type SearchHandler struct {
	service SearchService
}

// SearchService interface for dependency injection
type SearchService interface {
	Search(context.Context, models.Filters) (*models.Result, error)
	Tags() []facet.TagFilter
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{service: svc}
}

// Restaurants handles GET /restaurants requests
//
//	@Summary	Search restaurants
//	@Tags		search
//	@Produce	json
//	@Param		q			query		string	false	"Free text"
//	@Param		category	query		string	false	"Cuisine or review category"
//	@Param		price		query		int		false	"Price level 1-4"
//	@Param		tag			query		string	false	"Canonical tag filter"
//	@Param		near_me		query		bool	false	"Sort by distance"
//	@Param		lat			query		number	false	"Latitude"
//	@Param		lng			query		number	false	"Longitude"
//	@Success	200			{object}	models.Result
//	@Failure	400			{object}	map[string]string
//	@Failure	503			{object}	map[string]any
//	@Router		/restaurants [get]
func (h *SearchHandler) Restaurants(c *gin.Context) {
	h.search(c, models.ModeRestaurant)
}

// Dishes handles GET /dishes requests
//
//	@Summary	Search dishes
//	@Tags		search
//	@Produce	json
//	@Param		q			query		string	false	"Free text"
//	@Param		category	query		string	false	"Dish category"
//	@Param		price		query		int		false	"Restaurant price level 1-4"
//	@Param		tag			query		string	false	"Canonical tag filter"
//	@Param		near_me		query		bool	false	"Sort by distance"
//	@Param		lat			query		number	false	"Latitude"
//	@Param		lng			query		number	false	"Longitude"
//	@Success	200			{object}	models.Result
//	@Failure	400			{object}	map[string]string
//	@Failure	503			{object}	map[string]any
//	@Router		/dishes [get]
func (h *SearchHandler) Dishes(c *gin.Context) {
	h.search(c, models.ModeDish)
}

// Tags handles GET /tags requests
//
//	@Summary	List canonical tag filters
//	@Tags		search
//	@Produce	json
//	@Success	200	{array}	facet.TagFilter
//	@Router		/tags [get]
func (h *SearchHandler) Tags(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Tags())
}

func (h *SearchHandler) search(c *gin.Context, mode models.ViewMode) {
	filters, err := ParseFilters(c, mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Search(c.Request.Context(), filters)
	if err != nil {
		var fetchErr *service.CatalogFetchError
		switch {
		case errors.Is(err, facet.ErrUnknownTag):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown tag filter"})
		case errors.As(err, &fetchErr):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not load restaurants", "retryable": true})
		default:
			log.Error().Err(err).Msg("search failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
