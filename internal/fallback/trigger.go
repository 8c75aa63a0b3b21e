package fallback

import (
	"strings"
	"time"
	"unicode/utf8"

	"discovery-api/internal/models"
)

const (
	// MinQueryLength is the shortest trimmed query, in runes, that may reach
	// the external provider.
	MinQueryLength = 3
	// ThinResultThreshold is the local result count below which external
	// results are requested.
	ThinResultThreshold = 3
	// DebounceDelay is the quiet period after the last keystroke.
	DebounceDelay = 500 * time.Millisecond
	// DefaultTimeout bounds a single provider call.
	DefaultTimeout = 4 * time.Second
)

// ShouldTrigger reports whether a query needs external supplementation.
func ShouldTrigger(query string, loc *models.Coordinates, localCount int) bool {
	if loc == nil || !loc.Valid() {
		return false
	}
	if localCount >= ThinResultThreshold {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(query)) >= MinQueryLength
}
