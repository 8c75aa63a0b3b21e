package service

import (
	"context"
	"errors"
	"sync"

	"discovery-api/internal/assemble"
	"discovery-api/internal/facet"
	"discovery-api/internal/fallback"
	"discovery-api/internal/models"

	"github.com/rs/zerolog/log"
)

// Session is one interactive search. Every filter change re-derives a fresh
// result; external supplementation is debounced and only the newest
// generation is ever delivered. Apply, ToggleTag and Retry must be called
// from a single goroutine. emit may be called from other goroutines.
type Session struct {
	svc    *DiscoveryService
	emit   func(models.SessionEvent)
	broker *fallback.Broker

	mu         sync.Mutex
	filters    models.Filters
	generation uint64
	// brokerGen is the broker generation submitted for session generation
	// brokerOwner.
	brokerGen   uint64
	brokerOwner uint64
}

// NewSession opens a search session that reports events to emit.
func (s *DiscoveryService) NewSession(emit func(models.SessionEvent)) *Session {
	sess := &Session{svc: s, emit: emit}
	sess.broker = fallback.NewBroker(s.deps.Provider, sess.onExternal, fallback.Options{
		Debounce: s.opts.FallbackDebounce,
		Timeout:  s.opts.FallbackTimeout,
		Metrics:  s.opts.Metrics,
	})
	s.opts.Metrics.SessionOpened()
	return sess
}

// Filters returns the filters of the latest Apply.
func (sess *Session) Filters() models.Filters {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.filters
}

// Apply replaces the session filters and emits the derived result.
func (sess *Session) Apply(ctx context.Context, filters models.Filters) error {
	f := filters.Normalized()
	if f.Tag != "" {
		canonical, ok := facet.Lookup(f.Tag)
		if !ok {
			sess.emit(models.SessionEvent{Type: models.EventError, Error: "unknown tag filter"})
			return facet.ErrUnknownTag
		}
		f.Tag = canonical.Label
	}

	sess.mu.Lock()
	sess.generation++
	gen := sess.generation
	sess.filters = f
	sess.mu.Unlock()

	sess.emit(models.SessionEvent{Type: models.EventLoading, Generation: gen})

	res, _, err := sess.svc.searchLocal(ctx, f)
	if err != nil {
		// drop any pending external search for the previous filters
		sess.submit(gen, "", nil, 0)

		var fetchErr *CatalogFetchError
		if errors.As(err, &fetchErr) {
			sess.emit(models.SessionEvent{Type: models.EventError, Generation: gen, Error: "could not load restaurants", Retryable: true})
			return err
		}
		if ctx.Err() == nil {
			sess.emit(models.SessionEvent{Type: models.EventError, Generation: gen, Error: "search failed"})
		}
		return err
	}

	sess.emit(models.SessionEvent{Type: models.EventResults, Generation: gen, Result: &res})

	if f.Mode == models.ModeRestaurant {
		sess.submit(gen, f.Query, f.Location, res.LocalCount)
	} else {
		sess.submit(gen, "", nil, 0)
	}
	return nil
}

// ToggleTag applies a single-select tag click to the current filters.
func (sess *Session) ToggleTag(ctx context.Context, label string) error {
	f := sess.Filters()
	f.Tag = facet.ToggleTag(f.Tag, label)
	return sess.Apply(ctx, f)
}

// Retry reloads the catalog and re-applies the current filters.
func (sess *Session) Retry(ctx context.Context) error {
	sess.svc.Invalidate()
	return sess.Apply(ctx, sess.Filters())
}

// Close stops pending external searches.
func (sess *Session) Close() {
	sess.broker.Close()
	sess.svc.opts.Metrics.SessionClosed()
}

func (sess *Session) submit(gen uint64, query string, loc *models.Coordinates, localCount int) {
	// The broker commits under its own lock and calls back into the session,
	// so sess.mu must not be held across Submit.
	bg := sess.broker.Submit(query, loc, localCount)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if bg > sess.brokerGen {
		sess.brokerGen = bg
		sess.brokerOwner = gen
	}
}

func (sess *Session) onExternal(out fallback.Outcome) {
	sess.mu.Lock()
	if out.Generation != sess.brokerGen || sess.brokerOwner != sess.generation {
		sess.mu.Unlock()
		return
	}
	gen := sess.generation
	var origin *models.Coordinates
	if sess.filters.Location != nil {
		loc := *sess.filters.Location
		origin = &loc
	}
	sess.mu.Unlock()

	var photoURL func(string) string
	if sess.svc.deps.Provider != nil {
		photoURL = sess.svc.deps.Provider.PhotoURL
	}
	cards := assemble.FromPlaces(out.Places, origin, photoURL)
	if len(cards) == 0 {
		log.Debug().Str("query", out.Query).Msg("external search returned no places")
		return
	}

	sess.emit(models.SessionEvent{Type: models.EventExternal, Generation: gen, Cards: cards, Query: out.Query})
}
