package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"discovery-api/internal/assemble"
	"discovery-api/internal/cache"
	"discovery-api/internal/facet"
	"discovery-api/internal/fallback"
	"discovery-api/internal/metrics"
	"discovery-api/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// DefaultSnapshotTTL is how long a loaded snapshot is served before reload.
const DefaultSnapshotTTL = 60 * time.Second

// DefaultLoadTimeout bounds a shared snapshot load.
const DefaultLoadTimeout = 30 * time.Second

// CatalogLoader loads the normalized restaurant catalog.
type CatalogLoader interface {
	Load(ctx context.Context) ([]models.Restaurant, error)
}

// ReviewAggregator summarizes reviews for restaurants and dishes.
type ReviewAggregator interface {
	AggregateRestaurants(ctx context.Context, restaurants []models.Restaurant) (map[string]models.ReviewAggregate, error)
	AggregateDishes(ctx context.Context, items []models.MenuItem) (map[string]models.ReviewAggregate, error)
}

// MenuRepository lists menu items.
type MenuRepository interface {
	ListMenuItems(ctx context.Context) ([]models.MenuItem, error)
}

// TagIndex resolves canonical tag filters to restaurant ids.
type TagIndex interface {
	RestaurantIDs(ctx context.Context, label string) (facet.IDSet, error)
}

// ResultCache stores derived results by filter key.
type ResultCache interface {
	Get(ctx context.Context, key string) (*models.Result, bool)
	Set(ctx context.Context, key string, result *models.Result)
}

// Dependencies are the collaborators of a DiscoveryService. Provider and
// Cache are optional.
type Dependencies struct {
	Catalog    CatalogLoader
	Aggregator ReviewAggregator
	Menu       MenuRepository
	Tags       TagIndex
	Provider   fallback.Provider
	Cache      ResultCache
}

// Options tunes a DiscoveryService.
type Options struct {
	SnapshotTTL      time.Duration
	LoadTimeout      time.Duration
	FallbackTimeout  time.Duration
	FallbackDebounce time.Duration
	Metrics          *metrics.Metrics
}

type cachedSnapshot struct {
	snap    *Snapshot
	expires time.Time
}

// DiscoveryService runs the ranking and fallback pipeline.
type DiscoveryService struct {
	deps Dependencies
	opts Options
	now  func() time.Time

	group singleflight.Group

	mu        sync.Mutex
	snapshots map[models.ViewMode]cachedSnapshot
}

// NewDiscoveryService creates a discovery service. Zero options take their
// defaults.
func NewDiscoveryService(deps Dependencies, opts Options) *DiscoveryService {
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = DefaultSnapshotTTL
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = DefaultLoadTimeout
	}
	if opts.FallbackTimeout <= 0 {
		opts.FallbackTimeout = fallback.DefaultTimeout
	}
	if opts.FallbackDebounce <= 0 {
		opts.FallbackDebounce = fallback.DebounceDelay
	}
	return &DiscoveryService{
		deps:      deps,
		opts:      opts,
		now:       time.Now,
		snapshots: make(map[models.ViewMode]cachedSnapshot),
	}
}

// Search derives the result set for filters, supplemented with external
// places when the local set is thin.
func (s *DiscoveryService) Search(ctx context.Context, filters models.Filters) (*models.Result, error) {
	f := filters.Normalized()
	if f.Tag != "" {
		canonical, ok := facet.Lookup(f.Tag)
		if !ok {
			return nil, fmt.Errorf("service: %w: %q", facet.ErrUnknownTag, f.Tag)
		}
		f.Tag = canonical.Label
	}

	key := cache.Key(f)
	if s.deps.Cache != nil {
		if res, ok := s.deps.Cache.Get(ctx, key); ok {
			return res, nil
		}
	}

	res, degraded, err := s.searchLocal(ctx, f)
	if err != nil {
		return nil, err
	}

	if f.Mode == models.ModeRestaurant && s.deps.Provider != nil && fallback.ShouldTrigger(f.Query, f.Location, res.LocalCount) {
		cards, err := s.SearchPlaces(ctx, f.Query, *f.Location)
		if err != nil {
			degraded = true
			log.Debug().Err(err).Str("query", f.Query).Msg("continuing without external results")
		} else {
			s.opts.Metrics.IncFallbackRequests(metrics.FallbackCommitted)
			mergeExternal(&res, cards)
		}
	}

	if s.deps.Cache != nil && !degraded {
		s.deps.Cache.Set(ctx, key, &res)
	}
	return &res, nil
}

// SearchPlaces queries the external provider directly.
func (s *DiscoveryService) SearchPlaces(ctx context.Context, query string, loc models.Coordinates) ([]models.Card, error) {
	places, err := fallback.Search(ctx, s.deps.Provider, s.opts.FallbackTimeout, query, loc)
	if err != nil {
		if !errors.Is(err, fallback.ErrNoProvider) {
			s.opts.Metrics.IncFallbackRequests(metrics.FallbackFailed)
		}
		return nil, &FallbackSearchError{Query: query, Err: err}
	}

	var photoURL func(string) string
	if s.deps.Provider != nil {
		photoURL = s.deps.Provider.PhotoURL
	}
	return assemble.FromPlaces(places, &loc, photoURL), nil
}

// PlacePhoto streams an external place photo referenced by a card.
func (s *DiscoveryService) PlacePhoto(ctx context.Context, ref string) (*fallback.Photo, error) {
	if s.deps.Provider == nil {
		return nil, fallback.ErrNoProvider
	}
	photo, err := s.deps.Provider.FetchPhoto(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("service: fetch place photo: %w", err)
	}
	return photo, nil
}

// Tags returns the canonical tag filters.
func (s *DiscoveryService) Tags() []facet.TagFilter {
	return facet.Filters()
}

// Invalidate drops loaded snapshots so the next search reloads the catalog.
func (s *DiscoveryService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = make(map[models.ViewMode]cachedSnapshot)
}

// Snapshot returns the restaurant snapshot, loading it when missing or
// expired. Concurrent loads are collapsed into one.
func (s *DiscoveryService) Snapshot(ctx context.Context) (*Snapshot, error) {
	return s.snapshot(ctx, models.ModeRestaurant, s.loadRestaurants)
}

// DishSnapshot returns the dish snapshot.
func (s *DiscoveryService) DishSnapshot(ctx context.Context) (*Snapshot, error) {
	return s.snapshot(ctx, models.ModeDish, s.loadDishes)
}

// TagIDs resolves a tag filter. Lookup failures are reported as a
// *FacetQueryError together with an empty set.
func (s *DiscoveryService) TagIDs(ctx context.Context, label string) (facet.IDSet, error) {
	if label == "" {
		return nil, nil
	}
	ids, err := s.deps.Tags.RestaurantIDs(ctx, label)
	if err != nil {
		if errors.Is(err, facet.ErrUnknownTag) {
			return nil, err
		}
		s.opts.Metrics.IncFacetQueryFailures()
		return facet.IDSet{}, &FacetQueryError{Tag: label, Err: err}
	}
	return ids, nil
}

// searchLocal derives the local result. degraded reports that a facet lookup
// failed and the result should not be cached.
func (s *DiscoveryService) searchLocal(ctx context.Context, f models.Filters) (models.Result, bool, error) {
	var (
		snap *Snapshot
		err  error
	)
	if f.Mode == models.ModeDish {
		snap, err = s.DishSnapshot(ctx)
	} else {
		snap, err = s.Snapshot(ctx)
	}
	if err != nil {
		return models.Result{}, false, err
	}

	degraded := false
	tagIDs, err := s.TagIDs(ctx, f.Tag)
	if err != nil {
		var facetErr *FacetQueryError
		if !errors.As(err, &facetErr) {
			return models.Result{}, false, err
		}
		degraded = true
		log.Warn().Err(err).Str("tag", f.Tag).Msg("tag filter degraded to empty set")
	}

	return DeriveResults(snap, f, tagIDs), degraded, nil
}

func (s *DiscoveryService) snapshot(ctx context.Context, mode models.ViewMode, load func(context.Context) (*Snapshot, error)) (*Snapshot, error) {
	if snap, ok := s.cached(mode); ok {
		return snap, nil
	}

	ch := s.group.DoChan(string(mode), func() (any, error) {
		if snap, ok := s.cached(mode); ok {
			return snap, nil
		}
		// The load is shared by every waiter and outlives any single caller.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.LoadTimeout)
		defer cancel()
		snap, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.snapshots[mode] = cachedSnapshot{snap: snap, expires: snap.LoadedAt.Add(s.opts.SnapshotTTL)}
		s.mu.Unlock()
		return snap, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

func (s *DiscoveryService) cached(mode models.ViewMode) (*Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.snapshots[mode]
	if !ok || !s.now().Before(c.expires) {
		return nil, false
	}
	return c.snap, true
}

func (s *DiscoveryService) loadRestaurants(ctx context.Context) (*Snapshot, error) {
	start := s.now()

	restaurants, err := s.deps.Catalog.Load(ctx)
	s.opts.Metrics.ObserveCatalogLoad(s.now().Sub(start), err)
	if err != nil {
		log.Error().Err(err).Msg("catalog load failed")
		return nil, &CatalogFetchError{Err: err}
	}

	aggs, err := s.deps.Aggregator.AggregateRestaurants(ctx, restaurants)
	if err := tolerate(err); err != nil {
		return nil, err
	}

	log.Info().Int("restaurants", len(restaurants)).Dur("took", s.now().Sub(start)).Msg("catalog snapshot loaded")
	return &Snapshot{
		Restaurants: BuildRestaurantBundles(restaurants, aggs),
		LoadedAt:    s.now(),
	}, nil
}

func (s *DiscoveryService) loadDishes(ctx context.Context) (*Snapshot, error) {
	base, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if s.deps.Menu == nil {
		return &Snapshot{Restaurants: base.Restaurants, LoadedAt: s.now()}, nil
	}

	items, err := s.deps.Menu.ListMenuItems(ctx)
	if err != nil {
		log.Error().Err(err).Msg("menu load failed")
		return nil, &CatalogFetchError{Err: err}
	}

	aggs, err := s.deps.Aggregator.AggregateDishes(ctx, items)
	if err := tolerate(err); err != nil {
		return nil, err
	}

	restaurants := make([]models.Restaurant, len(base.Restaurants))
	for i, b := range base.Restaurants {
		restaurants[i] = b.Restaurant
	}

	return &Snapshot{
		Restaurants: base.Restaurants,
		Dishes:      BuildDishBundles(items, restaurants, aggs),
		LoadedAt:    s.now(),
	}, nil
}

// tolerate swallows partial aggregation failures, which are already logged
// per entry.
func tolerate(err error) error {
	var partial *PartialAggregationError
	if err == nil || errors.As(err, &partial) {
		if partial != nil {
			log.Warn().Int("failed", len(partial.IDs)).Msg("snapshot built with partial review data")
		}
		return nil
	}
	return fmt.Errorf("service: aggregation aborted: %w", err)
}

func mergeExternal(res *models.Result, external []models.Card) {
	if len(external) == 0 {
		return
	}
	res.Cards = assemble.Merge(res.Cards, external)
	res.ExternalCount = len(res.Cards) - res.LocalCount
	res.State = models.StateReady
	res.ClearFilters = false
}
