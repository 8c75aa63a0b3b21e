package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"discovery-api/internal/fallback"
	"discovery-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPlacesService is a mock implementation of PlacesService
type MockPlacesService struct {
	mock.Mock
}

func (m *MockPlacesService) SearchPlaces(ctx context.Context, query string, loc models.Coordinates) ([]models.Card, error) {
	args := m.Called(ctx, query, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockPlacesService) PlacePhoto(ctx context.Context, ref string) (*fallback.Photo, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fallback.Photo), args.Error(1)
}

func TestPlacesHandler_SearchPlaces(t *testing.T) {
	gin.SetMode(gin.TestMode)

	loc := models.Coordinates{Lat: 40.7128, Lng: -74.006}
	cards := []models.Card{{ID: "place-1", Name: "Joe's Pizza", ProviderID: "place-1", Source: models.SourceExternal}}

	tests := []struct {
		name           string
		queryParams    string
		mockSetup      func(*MockPlacesService)
		expectedStatus int
		expectedBody   map[string]any
		expectedCards  []models.Card
	}{
		{
			name:        "successful search",
			queryParams: "?q=pizza&lat=40.7128&lng=-74.006",
			mockSetup: func(m *MockPlacesService) {
				m.On("SearchPlaces", mock.Anything, "pizza", loc).Return(cards, nil)
			},
			expectedStatus: http.StatusOK,
			expectedCards:  cards,
		},
		{
			name:           "missing query",
			queryParams:    "?q=%20&lat=40.7128&lng=-74.006",
			mockSetup:      func(m *MockPlacesService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]any{"error": "missing required query parameter 'q'"},
		},
		{
			name:           "missing coordinates",
			queryParams:    "?q=pizza&lat=40.7128",
			mockSetup:      func(m *MockPlacesService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]any{"error": "missing required query parameters 'lat' and 'lng'"},
		},
		{
			name:           "invalid longitude",
			queryParams:    "?q=pizza&lat=40.7128&lng=west",
			mockSetup:      func(m *MockPlacesService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]any{"error": "invalid longitude format"},
		},
		{
			name:        "provider not configured",
			queryParams: "?q=pizza&lat=40.7128&lng=-74.006",
			mockSetup: func(m *MockPlacesService) {
				m.On("SearchPlaces", mock.Anything, "pizza", loc).
					Return(nil, fmt.Errorf("service: %w", fallback.ErrNoProvider))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   map[string]any{"error": "external search is not configured"},
		},
		{
			name:        "provider failure yields empty list",
			queryParams: "?q=pizza&lat=40.7128&lng=-74.006",
			mockSetup: func(m *MockPlacesService) {
				m.On("SearchPlaces", mock.Anything, "pizza", loc).Return(nil, errors.New("timeout"))
			},
			expectedStatus: http.StatusOK,
			expectedCards:  []models.Card{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockPlacesService)
			tt.mockSetup(mockService)
			h := NewPlacesHandler(mockService)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/places/search"+tt.queryParams, nil)

			h.SearchPlaces(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != nil {
				var body map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.expectedBody, body)
			} else {
				var got []models.Card
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, tt.expectedCards, got)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestPlacesHandler_Photo(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		queryParams    string
		mockSetup      func(*MockPlacesService)
		expectedStatus int
		expectedBody   string
		expectedType   string
	}{
		{
			name:        "streams photo",
			queryParams: "?ref=abc",
			mockSetup: func(m *MockPlacesService) {
				m.On("PlacePhoto", mock.Anything, "abc").Return(&fallback.Photo{
					Body:          io.NopCloser(strings.NewReader("jpeg-bytes")),
					ContentType:   "image/jpeg",
					ContentLength: 10,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "jpeg-bytes",
			expectedType:   "image/jpeg",
		},
		{
			name:           "missing ref",
			queryParams:    "",
			mockSetup:      func(m *MockPlacesService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"missing required query parameter 'ref'"}`,
		},
		{
			name:        "provider not configured",
			queryParams: "?ref=abc",
			mockSetup: func(m *MockPlacesService) {
				m.On("PlacePhoto", mock.Anything, "abc").Return(nil, fallback.ErrNoProvider)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `{"error":"external search is not configured"}`,
		},
		{
			name:        "provider failure",
			queryParams: "?ref=abc",
			mockSetup: func(m *MockPlacesService) {
				m.On("PlacePhoto", mock.Anything, "abc").Return(nil, errors.New("status 404"))
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `{"error":"photo unavailable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockPlacesService)
			tt.mockSetup(mockService)
			h := NewPlacesHandler(mockService)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/places/photo"+tt.queryParams, nil)

			h.Photo(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedType != "" {
				assert.Equal(t, tt.expectedBody, w.Body.String())
				assert.Equal(t, tt.expectedType, w.Header().Get("Content-Type"))
			} else {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
			mockService.AssertExpectations(t)
		})
	}
}
