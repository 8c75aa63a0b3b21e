// Package aggregate joins reviews to restaurants and dishes and summarizes
// them. Soft-deleted reviews are dropped where reviews enter the join and
// never reach any aggregate.
package aggregate

import (
	"math"
	"slices"
	"strings"

	"discovery-api/internal/models"
)

// TopTagCount is how many tags a summary keeps.
const TopTagCount = 2

// LiveReviews returns the reviews that are not soft-deleted.
func LiveReviews(reviews []models.Review) []models.Review {
	out := make([]models.Review, 0, len(reviews))
	for _, r := range reviews {
		if r.IsDeleted {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Summarize builds the aggregate of a review set. Reviews are ordered newest
// first; reviews without a usable timestamp go last in input order.
func Summarize(reviews []models.Review) models.ReviewAggregate {
	live := LiveReviews(reviews)
	slices.SortStableFunc(live, func(a, b models.Review) int {
		return b.CreatedAt.Compare(a.CreatedAt.Time)
	})

	agg := models.ReviewAggregate{
		Reviews:     live,
		ReviewCount: len(live),
	}

	var (
		sum        float64
		rated      int
		cuisines   []string
		tags       []string
		categories []string
	)
	for _, r := range live {
		if r.Rating != nil && !math.IsNaN(*r.Rating) {
			sum += math.Max(0, math.Min(10, *r.Rating))
			rated++
		}
		if c := strings.TrimSpace(r.Cuisine); c != "" {
			cuisines = append(cuisines, c)
		}
		tags = append(tags, distinctFold(r.Tags)...)
		categories = append(categories, r.EffectiveCategory())
		agg.Photos = append(agg.Photos, r.PhotoURLs()...)
	}

	if rated > 0 {
		avg := sum / float64(rated)
		agg.AverageRating = &avg
	}
	agg.MostReviewedCuisine = Plurality(cuisines)
	agg.TopTags = TopN(tags, TopTagCount)
	agg.Categories = distinctFold(categories)
	return agg
}

// distinctFold drops blanks and case-insensitive duplicates, keeping the
// first spelling seen.
func distinctFold(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
