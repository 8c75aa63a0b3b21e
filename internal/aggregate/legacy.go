package aggregate

import (
	"context"
	"fmt"

	"discovery-api/internal/models"

	"golang.org/x/sync/errgroup"
)

// ReviewsForDish resolves the reviews of a dish. Reviews link to dishes
// through menuItemId, and older ones through the legacy dishId field; both are
// queried and merged by review id. The dishId branch lives in
// listLegacyDishReviews so it can be removed once the migration completes.
func (a *Aggregator) ReviewsForDish(ctx context.Context, dishID string) ([]models.Review, error) {
	var current, legacy []models.Review

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		reviews, err := a.repo.ListReviewsByMenuItem(gctx, dishID)
		if err != nil {
			return fmt.Errorf("aggregate: menu item reviews for %q: %w", dishID, err)
		}
		current = reviews
		return nil
	})
	g.Go(func() error {
		reviews, err := listLegacyDishReviews(gctx, a.repo, dishID)
		if err != nil {
			return err
		}
		legacy = reviews
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return MergeReviews(current, legacy), nil
}

func listLegacyDishReviews(ctx context.Context, repo ReviewRepository, dishID string) ([]models.Review, error) {
	reviews, err := repo.ListReviewsByDishID(ctx, dishID)
	if err != nil {
		return nil, fmt.Errorf("aggregate: legacy dish reviews for %q: %w", dishID, err)
	}
	return reviews, nil
}

// MergeReviews concatenates review sets, keeping the first occurrence of each
// review id and dropping soft-deleted reviews. Reviews without an id cannot
// be matched and are all kept.
func MergeReviews(sets ...[]models.Review) []models.Review {
	seen := make(map[string]struct{})
	var out []models.Review
	for _, set := range sets {
		for _, r := range set {
			if r.IsDeleted {
				continue
			}
			if r.ID != "" {
				if _, ok := seen[r.ID]; ok {
					continue
				}
				seen[r.ID] = struct{}{}
			}
			out = append(out, r)
		}
	}
	return out
}
