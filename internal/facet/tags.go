package facet

import (
	"fmt"
	"strings"
)

// MaxContainsAny is the largest synonym list the document store accepts in a
// single contains-any query. Synonym lists must stay within it.
const MaxContainsAny = 10

// TagFilter is a canonical, user-facing filter label and the raw review tags
// that count as a match for it.
type TagFilter struct {
	Label    string   `json:"label"`
	Synonyms []string `json:"synonyms"`
}

var tagFilters = []TagFilter{
	{Label: "Great Value", Synonyms: []string{"Great Value", "great value", "good value", "worth it", "affordable", "cheap eats", "budget friendly"}},
	{Label: "Date Night", Synonyms: []string{"Date Night", "date night", "romantic", "intimate"}},
	{Label: "Cozy", Synonyms: []string{"Cozy", "cozy", "cosy", "warm atmosphere"}},
	{Label: "Spicy", Synonyms: []string{"Spicy", "spicy", "hot", "fiery"}},
	{Label: "Vegan Friendly", Synonyms: []string{"Vegan Friendly", "vegan friendly", "vegan", "plant based", "vegetarian"}},
	{Label: "Late Night", Synonyms: []string{"Late Night", "late night", "open late"}},
	{Label: "Family Friendly", Synonyms: []string{"Family Friendly", "family friendly", "kid friendly", "kids"}},
	{Label: "Quick Bite", Synonyms: []string{"Quick Bite", "quick bite", "fast", "grab and go"}},
}

// Filters returns the canonical tag filters in display order.
func Filters() []TagFilter {
	out := make([]TagFilter, len(tagFilters))
	for i, f := range tagFilters {
		out[i] = TagFilter{Label: f.Label, Synonyms: append([]string(nil), f.Synonyms...)}
	}
	return out
}

// Lookup finds a canonical filter by label, ignoring case.
func Lookup(label string) (TagFilter, bool) {
	label = strings.TrimSpace(label)
	for _, f := range tagFilters {
		if strings.EqualFold(f.Label, label) {
			return f, true
		}
	}
	return TagFilter{}, false
}

// Validate checks that every filter has between one and MaxContainsAny synonyms.
func Validate(filters []TagFilter) error {
	for _, f := range filters {
		if len(f.Synonyms) == 0 {
			return fmt.Errorf("facet: tag filter %q has no synonyms", f.Label)
		}
		if len(f.Synonyms) > MaxContainsAny {
			return fmt.Errorf("facet: tag filter %q has %d synonyms, store limit is %d", f.Label, len(f.Synonyms), MaxContainsAny)
		}
	}
	return nil
}

// ToggleTag applies a single-select click: clicking the active tag clears it,
// clicking another tag selects that one.
func ToggleTag(current, clicked string) string {
	if strings.EqualFold(strings.TrimSpace(current), strings.TrimSpace(clicked)) {
		return ""
	}
	return strings.TrimSpace(clicked)
}
