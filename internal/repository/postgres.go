package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"discovery-api/internal/metrics"
	"discovery-api/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Repository reads documents from PostgreSQL JSONB tables.
// Documents that fail to decode are skipped, logged and counted.
type Repository struct {
	db      *pgxpool.Pool
	metrics *metrics.Metrics
}

// NewRepository creates a new PostgreSQL repository. m may be nil.
func NewRepository(db *pgxpool.Pool, m *metrics.Metrics) *Repository {
	return &Repository{db: db, metrics: m}
}

// ListRestaurants returns every restaurant document.
func (r *Repository) ListRestaurants(ctx context.Context) ([]models.RestaurantDocument, error) {
	sql := `SELECT id, doc FROM restaurants ORDER BY id`
	return queryDocuments(ctx, r, TableRestaurants, sql, func(d *models.RestaurantDocument, id string) { setID(&d.ID, id) })
}

// ListRestaurantsByProvider returns the restaurants ingested from provider.
func (r *Repository) ListRestaurantsByProvider(ctx context.Context, provider string) ([]models.RestaurantDocument, error) {
	sql := `SELECT id, doc FROM restaurants WHERE doc->>'provider' = $1 ORDER BY id`
	return queryDocuments(ctx, r, TableRestaurants, sql, func(d *models.RestaurantDocument, id string) { setID(&d.ID, id) }, provider)
}

// ListReviewsByRestaurant returns the reviews of a restaurant, deleted ones
// included.
func (r *Repository) ListReviewsByRestaurant(ctx context.Context, restaurantID string) ([]models.Review, error) {
	sql := `SELECT id, doc FROM reviews WHERE doc->>'restaurantId' = $1`
	return queryDocuments(ctx, r, TableReviews, sql, setReviewID, restaurantID)
}

// ListReviewsByMenuItem returns reviews linked through menuItemId.
func (r *Repository) ListReviewsByMenuItem(ctx context.Context, menuItemID string) ([]models.Review, error) {
	sql := `SELECT id, doc FROM reviews WHERE doc->>'menuItemId' = $1`
	return queryDocuments(ctx, r, TableReviews, sql, setReviewID, menuItemID)
}

// ListReviewsByDishID returns reviews linked through the legacy dishId field.
func (r *Repository) ListReviewsByDishID(ctx context.Context, dishID string) ([]models.Review, error) {
	sql := `SELECT id, doc FROM reviews WHERE doc->>'dishId' = $1`
	return queryDocuments(ctx, r, TableReviews, sql, setReviewID, dishID)
}

// FindReviewsByTags returns reviews whose tags contain any of tags.
func (r *Repository) FindReviewsByTags(ctx context.Context, tags []string) ([]models.Review, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	sql := `SELECT id, doc FROM reviews WHERE doc->'tags' ?| $1`
	return queryDocuments(ctx, r, TableReviews, sql, setReviewID, tags)
}

// ListMenuItems returns every menu item.
func (r *Repository) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	sql := `SELECT id, doc FROM menu_items ORDER BY id`
	return queryDocuments(ctx, r, TableMenuItems, sql, func(m *models.MenuItem, id string) { setID(&m.ID, id) })
}

// Ping checks connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("repository: ping failed: %w", err)
	}
	return nil
}

func queryDocuments[T any](ctx context.Context, r *Repository, table, sql string, withID func(*T, string), args ...any) ([]T, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to execute query: %w", err)
	}
	defer rows.Close()

	docs := []T{}
	for rows.Next() {
		var (
			id  string
			raw []byte
			doc T
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("repository: failed to scan document: %w", err)
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			log.Warn().Err(err).Str("table", table).Str("id", id).Msg("skipping undecodable document")
			r.metrics.IncDocumentsSkipped(table)
			continue
		}
		withID(&doc, id)
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	return docs, nil
}

func setReviewID(r *models.Review, id string) { setID(&r.ID, id) }

func setID(field *string, id string) {
	if *field == "" {
		*field = id
	}
}
