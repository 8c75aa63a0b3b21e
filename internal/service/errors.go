package service

import (
	"fmt"

	"discovery-api/internal/aggregate"
)

// CatalogFetchError means the catalog could not be loaded. It is the only
// error that fails a whole search, and the caller may retry.
type CatalogFetchError struct {
	Err error
}

func (e *CatalogFetchError) Error() string {
	return fmt.Sprintf("service: catalog fetch failed: %v", e.Err)
}

func (e *CatalogFetchError) Unwrap() error { return e.Err }

// Retryable is always true.
func (e *CatalogFetchError) Retryable() bool { return true }

// PartialAggregationError lists entries whose reviews could not be fetched.
// Those entries are ranked as unreviewed.
type PartialAggregationError = aggregate.PartialError

// FacetQueryError means a tag filter lookup failed. The filter resolves to
// an empty restaurant set.
type FacetQueryError struct {
	Tag string
	Err error
}

func (e *FacetQueryError) Error() string {
	return fmt.Sprintf("service: tag filter %q lookup failed: %v", e.Tag, e.Err)
}

func (e *FacetQueryError) Unwrap() error { return e.Err }

// FallbackSearchError means the external provider failed or timed out.
type FallbackSearchError struct {
	Query string
	Err   error
}

func (e *FallbackSearchError) Error() string {
	return fmt.Sprintf("service: external search %q failed: %v", e.Query, e.Err)
}

func (e *FallbackSearchError) Unwrap() error { return e.Err }
