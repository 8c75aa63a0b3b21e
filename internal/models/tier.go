package models

// SufficiencyTier classifies how much a restaurant's score can be trusted,
// based on how many reviews back it.
type SufficiencyTier string

const (
	// TierReviewCount shows the raw review count instead of a percentage.
	TierReviewCount SufficiencyTier = "review_count"
	// TierPercentage shows the quality percentage badge.
	TierPercentage SufficiencyTier = "percentage"
	// TierLimited shows "Limited ratings (n)".
	TierLimited SufficiencyTier = "limited"
)

// Trusted reports whether the tier ranks ahead of limited restaurants.
func (t SufficiencyTier) Trusted() bool {
	return t == TierReviewCount || t == TierPercentage
}
