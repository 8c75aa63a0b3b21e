// Package quality turns aggregated review ratings into a quality percentage
// and decides how much of that score is safe to display.
package quality

import (
	"fmt"
	"math"

	"discovery-api/internal/models"
)

const (
	// TrustedMinReviews is the review count from which a percentage is shown.
	TrustedMinReviews = 5
	// CountDisplayMinReviews is the review count from which the raw count
	// replaces the percentage badge.
	CountDisplayMinReviews = 100
	// MaxRating is the top of the review rating scale.
	MaxRating = 10.0
)

// Badge is the display decision for one card.
type Badge struct {
	Text  string
	Color string
	Tier  models.SufficiencyTier
}

// gradient runs from red (<55%) to deep green (>=95%) in ten buckets.
var gradient = [10]string{
	"#D32F2F", // < 55
	"#E64A19", // 55-59
	"#F57C00", // 60-64
	"#FFA000", // 65-69
	"#FBC02D", // 70-74
	"#C0CA33", // 75-79
	"#7CB342", // 80-84
	"#43A047", // 85-89
	"#2E7D32", // 90-94
	"#1B5E20", // >= 95
}

// Percentage computes the quality percentage for an aggregate. A cached,
// upstream-computed score takes precedence. It returns nil when there is no
// cached score and no rated review.
func Percentage(agg models.ReviewAggregate, cached *float64) *float64 {
	if cached != nil && !math.IsNaN(*cached) {
		p := clamp(*cached)
		return &p
	}
	if agg.ReviewCount == 0 || agg.AverageRating == nil {
		return nil
	}
	p := clamp(math.Round(*agg.AverageRating / MaxRating * 100))
	return &p
}

// TierFor classifies a review count. Every count maps to exactly one tier.
func TierFor(reviewCount int) models.SufficiencyTier {
	switch {
	case reviewCount >= CountDisplayMinReviews:
		return models.TierReviewCount
	case reviewCount >= TrustedMinReviews:
		return models.TierPercentage
	default:
		return models.TierLimited
	}
}

// BadgeFor builds the badge shown on a local card.
func BadgeFor(reviewCount int, pct *float64) Badge {
	tier := TierFor(reviewCount)
	switch tier {
	case models.TierReviewCount:
		return Badge{Text: fmt.Sprintf("%d reviews", reviewCount), Color: gradient[len(gradient)-1], Tier: tier}
	case models.TierPercentage:
		if pct == nil {
			return Badge{Text: fmt.Sprintf("%d reviews", reviewCount), Tier: tier}
		}
		return Badge{Text: fmt.Sprintf("%d%%", int(math.Round(*pct))), Color: ColorFor(*pct), Tier: tier}
	default:
		return Badge{Text: fmt.Sprintf("Limited ratings (%d)", reviewCount), Tier: tier}
	}
}

// ColorFor returns the gradient color for a percentage.
func ColorFor(pct float64) string {
	if pct < 55 {
		return gradient[0]
	}
	if pct >= 95 {
		return gradient[9]
	}
	return gradient[1+int((pct-55)/5)]
}

func clamp(p float64) float64 {
	return math.Max(0, math.Min(100, p))
}
