package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"discovery-api/internal/facet"
	"discovery-api/internal/models"
	"discovery-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSearchService is a mock implementation of SearchService
type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, f models.Filters) (*models.Result, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Result), args.Error(1)
}

func (m *MockSearchService) Tags() []facet.TagFilter {
	args := m.Called()
	return args.Get(0).([]facet.TagFilter)
}

func TestSearchHandler_Restaurants(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ready := &models.Result{
		State:      models.StateReady,
		Mode:       models.ModeRestaurant,
		Cards:      []models.Card{{ID: "r1", Name: "Sakura", Source: models.SourceLocal}},
		LocalCount: 1,
	}

	tests := []struct {
		name           string
		queryParams    string
		mockSetup      func(*MockSearchService)
		expectedStatus int
		expectedBody   map[string]any
	}{
		{
			name:        "successful search",
			queryParams: "?q=%20sushi%20&price=2&tag=cozy",
			mockSetup: func(m *MockSearchService) {
				want := models.Filters{Query: "sushi", PriceLevel: 2, Tag: "cozy", Mode: models.ModeRestaurant}
				m.On("Search", mock.Anything, want).Return(ready, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "near me with location",
			queryParams: "?near_me=true&lat=40.7&lng=-74",
			mockSetup: func(m *MockSearchService) {
				want := models.Filters{NearMe: true, Location: &models.Coordinates{Lat: 40.7, Lng: -74}, Mode: models.ModeRestaurant}
				m.On("Search", mock.Anything, want).Return(ready, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid price",
			queryParams:    "?price=5",
			mockSetup:      func(m *MockSearchService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]any{"error": "invalid 'price', expected 1-4"},
		},
		{
			name:           "non numeric price",
			queryParams:    "?price=cheap",
			mockSetup:      func(m *MockSearchService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]any{"error": "invalid 'price', expected 1-4"},
		},
		{
			name:           "invalid near_me",
			queryParams:    "?near_me=maybe",
			mockSetup:      func(m *MockSearchService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]any{"error": "invalid 'near_me', expected a boolean"},
		},
		{
			name:           "near me without location",
			queryParams:    "?near_me=true",
			mockSetup:      func(m *MockSearchService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]any{"error": "'near_me' requires 'lat' and 'lng'"},
		},
		{
			name:           "latitude without longitude",
			queryParams:    "?lat=40.7",
			mockSetup:      func(m *MockSearchService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]any{"error": "query parameters 'lat' and 'lng' must be given together"},
		},
		{
			name:           "invalid latitude",
			queryParams:    "?lat=abc&lng=-74",
			mockSetup:      func(m *MockSearchService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]any{"error": "invalid latitude format"},
		},
		{
			name:           "coordinates out of range",
			queryParams:    "?lat=91&lng=-74",
			mockSetup:      func(m *MockSearchService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]any{"error": "coordinates out of range"},
		},
		{
			name:        "unknown tag",
			queryParams: "?tag=nope",
			mockSetup: func(m *MockSearchService) {
				m.On("Search", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("service: %w", facet.ErrUnknownTag))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]any{"error": "unknown tag filter"},
		},
		{
			name:        "catalog unavailable",
			queryParams: "",
			mockSetup: func(m *MockSearchService) {
				m.On("Search", mock.Anything, mock.Anything).
					Return(nil, &service.CatalogFetchError{Err: errors.New("connection refused")})
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   map[string]any{"error": "could not load restaurants", "retryable": true},
		},
		{
			name:        "unexpected error",
			queryParams: "",
			mockSetup: func(m *MockSearchService) {
				m.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   map[string]any{"error": "internal server error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockSearchService)
			tt.mockSetup(mockService)
			h := NewSearchHandler(mockService)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/restaurants"+tt.queryParams, nil)

			h.Restaurants(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != nil {
				var body map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.expectedBody, body)
			}
			if tt.expectedStatus == http.StatusOK {
				var res models.Result
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
				assert.Equal(t, models.StateReady, res.State)
				require.Len(t, res.Cards, 1)
				assert.Equal(t, "r1", res.Cards[0].ID)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestSearchHandler_Dishes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockService := new(MockSearchService)
	want := models.Filters{Category: "noodles", Mode: models.ModeDish}
	mockService.On("Search", mock.Anything, want).
		Return(&models.Result{State: models.StateNoMatch, Mode: models.ModeDish, ClearFilters: true}, nil)
	h := NewSearchHandler(mockService)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/dishes?category=noodles", nil)

	h.Dishes(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var res models.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, models.StateNoMatch, res.State)
	assert.True(t, res.ClearFilters)
	mockService.AssertExpectations(t)
}

func TestSearchHandler_Tags(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockService := new(MockSearchService)
	mockService.On("Tags").Return([]facet.TagFilter{{Label: "Cozy", Synonyms: []string{"cozy"}}})
	h := NewSearchHandler(mockService)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/tags", nil)

	h.Tags(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var tags []facet.TagFilter
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tags))
	assert.Equal(t, []facet.TagFilter{{Label: "Cozy", Synonyms: []string{"cozy"}}}, tags)
}
