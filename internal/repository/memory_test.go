package repository

import (
	"context"
	"encoding/json"
	"testing"

	"discovery-api/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	store, err := NewMemoryStoreFromFile("testdata/dump.json", nil)
	require.NoError(t, err)
	return store
}

func TestMemoryStore_Restaurants(t *testing.T) {
	store := loadTestStore(t)
	ctx := context.Background()

	all, err := store.ListRestaurants(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "r1", all[0].ID)
	assert.JSONEq(t, `{"lat": 40.7128, "lng": -74.006}`, string(all[0].Coordinates))

	yelp, err := store.ListRestaurantsByProvider(ctx, "yelp")
	require.NoError(t, err)
	require.Len(t, yelp, 1)
	assert.Equal(t, "Sakura Sushi", yelp[0].Name)

	none, err := store.ListRestaurantsByProvider(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStore_Reviews(t *testing.T) {
	store := loadTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		query    func() (int, error)
		expected int
	}{
		{name: "by restaurant includes deleted", query: func() (int, error) {
			r, err := store.ListReviewsByRestaurant(ctx, "r2")
			return len(r), err
		}, expected: 2},
		{name: "by menu item", query: func() (int, error) {
			r, err := store.ListReviewsByMenuItem(ctx, "m1")
			return len(r), err
		}, expected: 1},
		{name: "by legacy dish id", query: func() (int, error) {
			r, err := store.ListReviewsByDishID(ctx, "m1")
			return len(r), err
		}, expected: 1},
		{name: "contains any tag", query: func() (int, error) {
			r, err := store.FindReviewsByTags(ctx, []string{"cozy", "spicy"})
			return len(r), err
		}, expected: 3},
		{name: "tag match is exact", query: func() (int, error) {
			r, err := store.FindReviewsByTags(ctx, []string{"Cozy"})
			return len(r), err
		}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := tt.query()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, n)
		})
	}
}

func TestMemoryStore_MenuItems(t *testing.T) {
	store := loadTestStore(t)

	items, err := store.ListMenuItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].Price)
	assert.Equal(t, 12.5, *items[0].Price)
	assert.Nil(t, items[1].Price)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	store := loadTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.ListRestaurants(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = store.ListReviewsByRestaurant(ctx, "r1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewMemoryStore_SkipsBadDocuments(t *testing.T) {
	dump := `{
		"restaurants": [
			{"id": "r1", "name": "Good"},
			{"id": "r2", "name": "Stringly", "priceLevel": "2"},
			{"name": "no id"},
			{"id": "r3", "name": {"first": "broken"}}
		],
		"reviews": [
			{"id": "v1", "restaurantId": "r1", "rating": 9, "tags": ["cozy"]},
			{"id": "v2", "restaurantId": "r1", "rating": "8.5", "tags": ["cozy"]},
			{"id": 7, "restaurantId": "r1"},
			{"id": "v3", "restaurantId": "r1", "tags": "cozy"}
		],
		"menuItems": [{"id": "m", "price": "cheap"}]
	}`
	d, err := ParseDump([]byte(dump))
	require.NoError(t, err)

	m := metrics.NewMetrics()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	store := NewMemoryStore(d, m)
	ctx := context.Background()

	restaurants, err := store.ListRestaurants(ctx)
	require.NoError(t, err)
	require.Len(t, restaurants, 2)
	assert.Equal(t, "r2", restaurants[1].ID)
	require.NotNil(t, restaurants[1].PriceLevel)
	assert.Equal(t, 2, *restaurants[1].PriceLevel)

	reviews, err := store.ListReviewsByRestaurant(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	require.NotNil(t, reviews[1].Rating)
	assert.Equal(t, 8.5, *reviews[1].Rating)

	tagged, err := store.FindReviewsByTags(ctx, []string{"cozy"})
	require.NoError(t, err)
	assert.Len(t, tagged, 2)

	items, err := store.ListMenuItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].Price)

	assert.Equal(t, 2.0, skippedCount(t, reg, TableRestaurants))
	assert.Equal(t, 2.0, skippedCount(t, reg, TableReviews))
	assert.Equal(t, 0.0, skippedCount(t, reg, TableMenuItems))
}

func skippedCount(t *testing.T, reg *prometheus.Registry, table string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != metrics.MetricDocumentsSkipped {
			continue
		}
		for _, metric := range f.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "collection" && label.GetValue() == table {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestDocumentID(t *testing.T) {
	id, err := DocumentID(json.RawMessage(`{"id": "abc", "name": "x"}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	_, err = DocumentID(json.RawMessage(`{"id": ""}`))
	assert.ErrorIs(t, err, ErrMissingID)

	_, err = DocumentID(json.RawMessage(`{"id": null}`))
	assert.ErrorIs(t, err, ErrMissingID)

	_, err = DocumentID(json.RawMessage(`[1]`))
	assert.Error(t, err)
}
