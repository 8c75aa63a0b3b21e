package aggregate

import (
	"context"
	"fmt"

	"discovery-api/internal/metrics"
	"discovery-api/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds in-flight review fetches.
const DefaultConcurrency = 16

// ReviewRepository reads reviews by their foreign keys.
type ReviewRepository interface {
	ListReviewsByRestaurant(ctx context.Context, restaurantID string) ([]models.Review, error)
	ListReviewsByMenuItem(ctx context.Context, menuItemID string) ([]models.Review, error)
	ListReviewsByDishID(ctx context.Context, dishID string) ([]models.Review, error)
}

// Aggregator joins reviews to catalog entries with a bounded worker pool.
type Aggregator struct {
	repo    ReviewRepository
	limit   int
	metrics *metrics.Metrics
}

// NewAggregator creates an aggregator. limit caps concurrent fetches; zero
// or less means unbounded.
func NewAggregator(repo ReviewRepository, limit int, m *metrics.Metrics) *Aggregator {
	return &Aggregator{repo: repo, limit: limit, metrics: m}
}

// PartialError reports entries whose reviews could not be fetched. It is
// returned together with a complete result in which those entries are
// summarized as unreviewed.
type PartialError struct {
	IDs []string
	Err error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("aggregate: %d review fetches failed: %v", len(e.IDs), e.Err)
}

func (e *PartialError) Unwrap() error {
	return e.Err
}

// AggregateRestaurants summarizes the reviews of every restaurant. A failed
// fetch degrades that restaurant to zero reviews and never aborts the batch;
// the failures are reported as a *PartialError next to the full result. A
// canceled context returns no result.
func (a *Aggregator) AggregateRestaurants(ctx context.Context, restaurants []models.Restaurant) (map[string]models.ReviewAggregate, error) {
	ids := make([]string, len(restaurants))
	for i, r := range restaurants {
		ids[i] = r.ID
	}
	return a.aggregate(ctx, ids, "restaurant_id", a.repo.ListReviewsByRestaurant)
}

// AggregateDishes summarizes the reviews of every menu item through the
// dual-key resolver, with the failure semantics of AggregateRestaurants.
func (a *Aggregator) AggregateDishes(ctx context.Context, items []models.MenuItem) (map[string]models.ReviewAggregate, error) {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return a.aggregate(ctx, ids, "dish_id", a.ReviewsForDish)
}

func (a *Aggregator) aggregate(ctx context.Context, ids []string, field string, fetch func(context.Context, string) ([]models.Review, error)) (map[string]models.ReviewAggregate, error) {
	results := make([]models.ReviewAggregate, len(ids))
	errs := make([]error, len(ids))

	a.fanOut(len(ids), func(i int) {
		reviews, err := fetch(ctx, ids[i])
		if err != nil {
			errs[i] = err
			reviews = nil
		}
		results[i] = Summarize(reviews)
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]models.ReviewAggregate, len(ids))
	var partial *PartialError
	for i, id := range ids {
		out[id] = results[i]
		if errs[i] == nil {
			continue
		}
		a.metrics.IncAggregationFailures()
		log.Warn().Err(errs[i]).Str(field, id).Msg("review fetch failed, treating entry as unreviewed")
		if partial == nil {
			partial = &PartialError{Err: errs[i]}
		}
		partial.IDs = append(partial.IDs, id)
	}

	if partial != nil {
		return out, partial
	}
	return out, nil
}

// AggregateDish summarizes a single dish.
func (a *Aggregator) AggregateDish(ctx context.Context, dishID string) (models.ReviewAggregate, error) {
	reviews, err := a.ReviewsForDish(ctx, dishID)
	if err != nil {
		return models.ReviewAggregate{}, err
	}
	return Summarize(reviews), nil
}

func (a *Aggregator) fanOut(n int, work func(i int)) {
	var g errgroup.Group
	if a.limit > 0 {
		g.SetLimit(a.limit)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			work(i)
			return nil
		})
	}
	_ = g.Wait()
}
