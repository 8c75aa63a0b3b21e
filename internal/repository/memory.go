package repository

import (
	"context"
	"encoding/json"

	"discovery-api/internal/metrics"
	"discovery-api/internal/models"

	"github.com/rs/zerolog/log"
)

// MemoryStore serves the document queries from an in-memory dump. It is
// read-only after construction and safe for concurrent use.
type MemoryStore struct {
	restaurants []models.RestaurantDocument
	reviews     []models.Review
	menuItems   []models.MenuItem
}

// NewMemoryStore decodes a dump into a store. Documents without a string id
// or with an undecodable body are skipped, logged and counted on m, which may
// be nil.
func NewMemoryStore(d *Dump, m *metrics.Metrics) *MemoryStore {
	s := &MemoryStore{}
	if d == nil {
		return s
	}

	s.restaurants = decodeAll(d.Restaurants, TableRestaurants, m, func(r *models.RestaurantDocument) *string { return &r.ID })
	s.reviews = decodeAll(d.Reviews, TableReviews, m, func(r *models.Review) *string { return &r.ID })
	s.menuItems = decodeAll(d.MenuItems, TableMenuItems, m, func(mi *models.MenuItem) *string { return &mi.ID })
	return s
}

// NewMemoryStoreFromFile loads a dump file into a store.
func NewMemoryStoreFromFile(path string, m *metrics.Metrics) (*MemoryStore, error) {
	d, err := LoadDump(path)
	if err != nil {
		return nil, err
	}
	return NewMemoryStore(d, m), nil
}

func (s *MemoryStore) ListRestaurants(ctx context.Context) ([]models.RestaurantDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]models.RestaurantDocument{}, s.restaurants...), nil
}

func (s *MemoryStore) ListRestaurantsByProvider(ctx context.Context, provider string) ([]models.RestaurantDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []models.RestaurantDocument{}
	for _, r := range s.restaurants {
		if r.Provider == provider {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListReviewsByRestaurant(ctx context.Context, restaurantID string) ([]models.Review, error) {
	return s.filterReviews(ctx, func(r models.Review) bool { return r.RestaurantID == restaurantID })
}

func (s *MemoryStore) ListReviewsByMenuItem(ctx context.Context, menuItemID string) ([]models.Review, error) {
	return s.filterReviews(ctx, func(r models.Review) bool { return r.MenuItemID == menuItemID })
}

func (s *MemoryStore) ListReviewsByDishID(ctx context.Context, dishID string) ([]models.Review, error) {
	return s.filterReviews(ctx, func(r models.Review) bool { return r.DishID == dishID })
}

// FindReviewsByTags matches tags exactly, like the jsonb ?| operator.
func (s *MemoryStore) FindReviewsByTags(ctx context.Context, tags []string) ([]models.Review, error) {
	want := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		want[t] = struct{}{}
	}
	return s.filterReviews(ctx, func(r models.Review) bool {
		for _, t := range r.Tags {
			if _, ok := want[t]; ok {
				return true
			}
		}
		return false
	})
}

func (s *MemoryStore) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]models.MenuItem{}, s.menuItems...), nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) filterReviews(ctx context.Context, keep func(models.Review) bool) ([]models.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []models.Review{}
	for _, r := range s.reviews {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func decodeAll[T any](raws []json.RawMessage, table string, m *metrics.Metrics, idField func(*T) *string) []T {
	out := make([]T, 0, len(raws))
	for i, raw := range raws {
		id, err := DocumentID(raw)
		if err != nil {
			log.Warn().Err(err).Str("table", table).Int("index", i).Msg("skipping document without id")
			m.IncDocumentsSkipped(table)
			continue
		}
		var doc T
		if err := json.Unmarshal(raw, &doc); err != nil {
			log.Warn().Err(err).Str("table", table).Str("id", id).Msg("skipping undecodable document")
			m.IncDocumentsSkipped(table)
			continue
		}
		*idField(&doc) = id
		out = append(out, doc)
	}
	return out
}
