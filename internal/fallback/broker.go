package fallback

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"discovery-api/internal/metrics"
	"discovery-api/internal/models"

	"github.com/bep/debounce"
	"github.com/rs/zerolog/log"
)

// Outcome is a committed external result set.
type Outcome struct {
	Generation uint64
	Query      string
	Places     []models.FallbackPlace
}

// Options tunes a Broker.
type Options struct {
	Debounce time.Duration
	Timeout  time.Duration
	Metrics  *metrics.Metrics
}

// Broker supplements one search session with external results. Every Submit
// starts a new generation; only the newest generation may commit a result.
type Broker struct {
	provider Provider
	timeout  time.Duration
	metrics  *metrics.Metrics
	onResult func(Outcome)
	debounce func(func())

	generation atomic.Uint64

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// NewBroker creates a broker that reports committed results to onResult.
func NewBroker(provider Provider, onResult func(Outcome), opts Options) *Broker {
	if opts.Debounce <= 0 {
		opts.Debounce = DebounceDelay
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Broker{
		provider: provider,
		timeout:  opts.Timeout,
		metrics:  opts.Metrics,
		onResult: onResult,
		debounce: debounce.New(opts.Debounce),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Submit records the latest query state and returns its generation. When the
// state qualifies for supplementation, a provider call is scheduled after the
// debounce delay; otherwise any pending call is dropped.
func (b *Broker) Submit(query string, loc *models.Coordinates, localCount int) uint64 {
	b.mu.Lock()
	gen := b.generation.Add(1)
	closed := b.closed
	b.mu.Unlock()

	if closed || b.provider == nil || !ShouldTrigger(query, loc, localCount) {
		b.debounce(func() {})
		return gen
	}

	origin := *loc
	b.debounce(func() {
		b.dispatch(gen, query, origin)
	})
	return gen
}

// Latest returns the newest generation token.
func (b *Broker) Latest() uint64 {
	return b.generation.Load()
}

// Close stops pending work. In-flight results are discarded.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.generation.Add(1)
	b.debounce(func() {})
	b.cancel()
}

func (b *Broker) dispatch(gen uint64, query string, loc models.Coordinates) {
	if gen != b.generation.Load() {
		return
	}

	places, err := Search(b.ctx, b.provider, b.timeout, query, loc)
	if err != nil {
		b.metrics.IncFallbackRequests(metrics.FallbackFailed)
		log.Warn().Err(err).Str("query", query).Uint64("generation", gen).Msg("external search failed")
		return
	}

	b.mu.Lock()
	stale := b.closed || gen != b.generation.Load()
	onResult := b.onResult
	b.mu.Unlock()

	if stale {
		b.metrics.IncFallbackRequests(metrics.FallbackStale)
		log.Debug().Str("query", query).Uint64("generation", gen).Msg("discarding stale external results")
		return
	}

	b.metrics.IncFallbackRequests(metrics.FallbackCommitted)
	// Called without the lock so the callback may call back into the broker.
	// Receivers re-check Outcome.Generation against Latest.
	if onResult != nil {
		onResult(Outcome{Generation: gen, Query: query, Places: places})
	}
}
