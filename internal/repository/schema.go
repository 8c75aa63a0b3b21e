package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Document tables.
const (
	TableRestaurants = "restaurants"
	TableReviews     = "reviews"
	TableMenuItems   = "menu_items"
)

// Schema creates the document tables and the indexes backing the review
// foreign-key and tag queries.
const Schema = `
CREATE TABLE IF NOT EXISTS restaurants (
	id TEXT PRIMARY KEY,
	doc JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS reviews (
	id TEXT PRIMARY KEY,
	doc JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS menu_items (
	id TEXT PRIMARY KEY,
	doc JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS restaurants_provider_idx ON restaurants ((doc->>'provider'));
CREATE INDEX IF NOT EXISTS reviews_restaurant_id_idx ON reviews ((doc->>'restaurantId'));
CREATE INDEX IF NOT EXISTS reviews_menu_item_id_idx ON reviews ((doc->>'menuItemId'));
CREATE INDEX IF NOT EXISTS reviews_dish_id_idx ON reviews ((doc->>'dishId'));
CREATE INDEX IF NOT EXISTS reviews_tags_idx ON reviews USING GIN ((doc->'tags'));
CREATE INDEX IF NOT EXISTS menu_items_restaurant_id_idx ON menu_items ((doc->>'restaurantId'));
`

// Execer is satisfied by *pgx.Conn, *pgxpool.Pool and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// EnsureSchema creates missing tables and indexes.
func EnsureSchema(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("repository: failed to create schema: %w", err)
	}
	return nil
}
