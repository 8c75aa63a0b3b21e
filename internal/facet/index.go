package facet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"discovery-api/internal/models"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrUnknownTag is returned for labels that are not canonical filters.
var ErrUnknownTag = errors.New("facet: unknown tag filter")

// TagRepository queries reviews whose tags intersect a synonym list.
type TagRepository interface {
	FindReviewsByTags(ctx context.Context, tags []string) ([]models.Review, error)
}

// IDSet is a set of restaurant ids. Sets returned by Index are shared and
// must not be modified.
type IDSet map[string]struct{}

// Has reports whether id is in the set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Index resolves canonical tag filters to restaurant id sets.
type Index struct {
	repo  TagRepository
	cache *expirable.LRU[string, IDSet]
}

// NewIndex creates an index. A size of zero disables memoization.
func NewIndex(repo TagRepository, size int, ttl time.Duration) *Index {
	idx := &Index{repo: repo}
	if size > 0 {
		idx.cache = expirable.NewLRU[string, IDSet](size, nil, ttl)
	}
	return idx
}

// RestaurantIDs returns the distinct restaurants referenced by live reviews
// carrying any synonym of label. An empty set means no restaurant matches.
func (i *Index) RestaurantIDs(ctx context.Context, label string) (IDSet, error) {
	filter, ok := Lookup(label)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTag, label)
	}
	if len(filter.Synonyms) > MaxContainsAny {
		return nil, fmt.Errorf("facet: tag filter %q exceeds %d synonyms", filter.Label, MaxContainsAny)
	}

	key := strings.ToLower(filter.Label)
	if i.cache != nil {
		if ids, ok := i.cache.Get(key); ok {
			return ids, nil
		}
	}

	reviews, err := i.repo.FindReviewsByTags(ctx, filter.Synonyms)
	if err != nil {
		return nil, fmt.Errorf("facet: failed to query tag %q: %w", filter.Label, err)
	}

	ids := make(IDSet)
	for _, r := range reviews {
		if r.IsDeleted || r.RestaurantID == "" {
			continue
		}
		ids[r.RestaurantID] = struct{}{}
	}

	if i.cache != nil {
		i.cache.Add(key, ids)
	}
	return ids, nil
}
