package fallback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"discovery-api/internal/models"
)

const (
	// DefaultPlacesBaseURL is the Google Places web service root.
	DefaultPlacesBaseURL = "https://maps.googleapis.com/maps/api/place"
	// SearchRadiusMeters biases text search around the caller.
	SearchRadiusMeters = 5000
	// PhotoPath is the API route that proxies place photos.
	PhotoPath     = "/places/photo"
	photoMaxWidth = 400
)

// ErrMissingAPIKey is returned when the places client has no key.
var ErrMissingAPIKey = errors.New("places: missing api key")

type placesGeometry struct {
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
}

type placesPhoto struct {
	PhotoReference string `json:"photo_reference"`
}

type placesResult struct {
	PlaceID          string         `json:"place_id"`
	Name             string         `json:"name"`
	Vicinity         string         `json:"vicinity"`
	FormattedAddress string         `json:"formatted_address"`
	UserRatingsTotal int            `json:"user_ratings_total"`
	PriceLevel       int            `json:"price_level"`
	Photos           []placesPhoto  `json:"photos"`
	Geometry         placesGeometry `json:"geometry"`
}

type placesBody struct {
	Results      []placesResult `json:"results"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message"`
}

// PlacesClient queries the Google Places Text Search API.
type PlacesClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewPlacesClient creates a places client. An empty baseURL selects the
// public endpoint; a nil httpClient selects http.DefaultClient.
func NewPlacesClient(apiKey, baseURL string, httpClient *http.Client) *PlacesClient {
	if baseURL == "" {
		baseURL = DefaultPlacesBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &PlacesClient{apiKey: apiKey, baseURL: baseURL, http: httpClient}
}

// SearchText finds restaurants matching query near loc.
func (c *PlacesClient) SearchText(ctx context.Context, query string, loc models.Coordinates) ([]models.FallbackPlace, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("location", fmt.Sprintf("%f,%f", loc.Lat, loc.Lng))
	params.Set("radius", strconv.Itoa(SearchRadiusMeters))
	params.Set("type", "restaurant")
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/textsearch/json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("places: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places: unexpected status %d", resp.StatusCode)
	}

	var body placesBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("places: decode response: %w", err)
	}

	switch body.Status {
	case "OK", "ZERO_RESULTS", "":
	default:
		return nil, fmt.Errorf("places: api status %s: %s", body.Status, body.ErrorMessage)
	}

	places := make([]models.FallbackPlace, 0, len(body.Results))
	for _, r := range body.Results {
		if r.PlaceID == "" {
			continue
		}
		places = append(places, toPlace(r))
	}
	return places, nil
}

// PhotoURL resolves a photo reference to the proxy route served by this API.
func (c *PlacesClient) PhotoURL(ref string) string {
	if ref == "" {
		return ""
	}
	return PhotoPath + "?" + url.Values{"ref": {ref}}.Encode()
}

// FetchPhoto downloads the referenced photo with the server key.
func (c *PlacesClient) FetchPhoto(ctx context.Context, ref string) (*Photo, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("maxwidth", strconv.Itoa(photoMaxWidth))
	params.Set("photo_reference", ref)
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/photo?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("places: build photo request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places: photo request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("places: unexpected photo status %d", resp.StatusCode)
	}

	return &Photo{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
	}, nil
}

func toPlace(r placesResult) models.FallbackPlace {
	p := models.FallbackPlace{
		ProviderID:  r.PlaceID,
		Name:        r.Name,
		Vicinity:    r.Vicinity,
		RatingCount: r.UserRatingsTotal,
		PriceLevel:  r.PriceLevel,
	}
	if p.Vicinity == "" {
		p.Vicinity = r.FormattedAddress
	}
	if len(r.Photos) > 0 {
		p.PhotoRef = r.Photos[0].PhotoReference
	}
	coords := models.Coordinates{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng}
	if coords.Valid() && (coords.Lat != 0 || coords.Lng != 0) {
		p.Coordinates = &coords
	}
	return p
}
