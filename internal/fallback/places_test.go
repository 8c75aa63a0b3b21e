package fallback

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"discovery-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const textSearchBody = `{
  "status": "OK",
  "results": [
    {
      "place_id": "p1",
      "name": "Sushi Place",
      "vicinity": "1 Main St",
      "user_ratings_total": 120,
      "price_level": 2,
      "photos": [{"photo_reference": "ref-1"}],
      "geometry": {"location": {"lat": 40.71, "lng": -74.01}}
    },
    {
      "place_id": "p2",
      "name": "Hand Roll Bar",
      "formatted_address": "2 Side St, New York",
      "geometry": {"location": {"lat": 0, "lng": 0}}
    },
    {"name": "no id"}
  ]
}`

func TestPlacesClient_SearchText(t *testing.T) {
	var gotQuery, gotLocation, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/textsearch/json", r.URL.Path)
		gotQuery = r.URL.Query().Get("query")
		gotLocation = r.URL.Query().Get("location")
		gotKey = r.URL.Query().Get("key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(textSearchBody))
	}))
	defer server.Close()

	client := NewPlacesClient("secret", server.URL, server.Client())
	places, err := client.SearchText(context.Background(), "sushi", models.Coordinates{Lat: 40.7, Lng: -74})

	require.NoError(t, err)
	assert.Equal(t, "sushi", gotQuery)
	assert.Equal(t, "40.700000,-74.000000", gotLocation)
	assert.Equal(t, "secret", gotKey)

	require.Len(t, places, 2)
	assert.Equal(t, "p1", places[0].ProviderID)
	assert.Equal(t, "1 Main St", places[0].Vicinity)
	assert.Equal(t, 120, places[0].RatingCount)
	assert.Equal(t, 2, places[0].PriceLevel)
	assert.Equal(t, "ref-1", places[0].PhotoRef)
	require.NotNil(t, places[0].Coordinates)
	assert.Equal(t, 40.71, places[0].Coordinates.Lat)

	assert.Equal(t, "2 Side St, New York", places[1].Vicinity)
	assert.Nil(t, places[1].Coordinates)
}

func TestPlacesClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "http error", status: http.StatusInternalServerError, body: `{}`},
		{name: "api error", status: http.StatusOK, body: `{"status":"REQUEST_DENIED","error_message":"bad key"}`},
		{name: "malformed body", status: http.StatusOK, body: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewPlacesClient("k", server.URL, nil).SearchText(context.Background(), "tacos", models.Coordinates{})
			assert.Error(t, err)
		})
	}
}

func TestPlacesClient_MissingKey(t *testing.T) {
	_, err := NewPlacesClient("", "", nil).SearchText(context.Background(), "tacos", models.Coordinates{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestPlacesClient_PhotoURL(t *testing.T) {
	client := NewPlacesClient("server-secret", "http://places.test", nil)

	assert.Equal(t, "", client.PhotoURL(""))
	assert.Equal(t, "/places/photo?ref=abc", client.PhotoURL("abc"))
	assert.Equal(t, "/places/photo?ref=a%2Bb%26c", client.PhotoURL("a+b&c"))
	assert.NotContains(t, client.PhotoURL("abc"), "server-secret")
}

func TestPlacesClient_FetchPhoto(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/photo", r.URL.Path)
		assert.Equal(t, "server-secret", r.URL.Query().Get("key"))
		assert.Equal(t, "400", r.URL.Query().Get("maxwidth"))
		if r.URL.Query().Get("photo_reference") != "abc" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer server.Close()

	client := NewPlacesClient("server-secret", server.URL, nil)

	photo, err := client.FetchPhoto(context.Background(), "abc")
	require.NoError(t, err)
	defer photo.Body.Close()
	assert.Equal(t, "image/jpeg", photo.ContentType)
	data, err := io.ReadAll(photo.Body)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	_, err = client.FetchPhoto(context.Background(), "missing")
	assert.Error(t, err)

	_, err = NewPlacesClient("", server.URL, nil).FetchPhoto(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
