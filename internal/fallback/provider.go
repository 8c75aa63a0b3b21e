package fallback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"discovery-api/internal/models"
)

// ErrNoProvider is returned when no external provider is configured.
var ErrNoProvider = errors.New("fallback: no provider configured")

// Provider searches an external places source. PhotoURL returns a client
// facing URL for a photo reference; it must not carry provider credentials.
// FetchPhoto retrieves the referenced image server side.
type Provider interface {
	SearchText(ctx context.Context, query string, loc models.Coordinates) ([]models.FallbackPlace, error)
	PhotoURL(ref string) string
	FetchPhoto(ctx context.Context, ref string) (*Photo, error)
}

// Photo is an image streamed from the provider. The caller closes Body.
type Photo struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// Search performs a single bounded provider call.
func Search(ctx context.Context, p Provider, timeout time.Duration, query string, loc models.Coordinates) ([]models.FallbackPlace, error) {
	if p == nil {
		return nil, ErrNoProvider
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	places, err := p.SearchText(ctx, strings.TrimSpace(query), loc)
	if err != nil {
		return nil, fmt.Errorf("fallback: search %q: %w", query, err)
	}
	return places, nil
}
