// Package facet infers facets from free text and resolves canonical tag
// filters to the restaurants whose reviews carry them.
package facet

import (
	"slices"
	"strings"
	"unicode"
)

// cuisineTokens maps query words to the cuisine token they imply.
var cuisineTokens = map[string]string{
	"italian": "italian", "pizza": "italian", "pasta": "italian", "lasagna": "italian",
	"mexican": "mexican", "taco": "mexican", "tacos": "mexican", "burrito": "mexican", "quesadilla": "mexican",
	"japanese": "japanese", "sushi": "japanese", "ramen": "japanese", "udon": "japanese", "izakaya": "japanese",
	"chinese": "chinese", "dumpling": "chinese", "dumplings": "chinese", "dimsum": "chinese",
	"thai": "thai", "korean": "korean", "kbbq": "korean", "bibimbap": "korean",
	"indian": "indian", "curry": "indian", "biryani": "indian", "tandoori": "indian",
	"vietnamese": "vietnamese", "pho": "vietnamese", "banh": "vietnamese",
	"american": "american", "burger": "american", "burgers": "american", "bbq": "american", "wings": "american",
	"mediterranean": "mediterranean", "falafel": "mediterranean", "hummus": "mediterranean", "shawarma": "mediterranean",
	"greek": "greek", "gyro": "greek", "souvlaki": "greek",
	"french": "french", "bistro": "french", "crepe": "french", "crepes": "french",
}

// dishTokens maps query words to a dish type.
var dishTokens = map[string]string{
	"burger": "burger", "burgers": "burger",
	"pizza": "pizza", "pizzas": "pizza",
	"ramen": "ramen", "pho": "pho", "udon": "noodles", "noodle": "noodles", "noodles": "noodles",
	"sushi": "sushi", "taco": "taco", "tacos": "taco", "burrito": "burrito",
	"salad": "salad", "salads": "salad",
	"sandwich": "sandwich", "sandwiches": "sandwich",
	"dumpling": "dumplings", "dumplings": "dumplings",
	"curry": "curry", "steak": "steak", "wings": "wings",
	"dessert": "dessert", "desserts": "dessert", "cake": "dessert", "icecream": "dessert",
	"coffee": "coffee", "latte": "coffee", "espresso": "coffee",
	"pasta": "pasta", "soup": "soup", "soups": "soup",
}

// ParsedQuery is a free-text query with the facets inferred from it.
type ParsedQuery struct {
	Raw        string
	Normalized string
	Tokens     []string
	Cuisines   []string
	DishTypes  []string
}

// ParseQuery lowercases and tokenizes q, then maps tokens to cuisines and
// dish types. Both inferred lists are sorted and deduplicated.
func ParseQuery(q string) ParsedQuery {
	normalized := strings.ToLower(strings.TrimSpace(q))
	tokens := splitWords(normalized)

	var cuisines, dishes []string
	for i, tok := range tokens {
		if c, ok := cuisineTokens[tok]; ok {
			cuisines = append(cuisines, c)
		}
		if d, ok := dishTokens[tok]; ok {
			dishes = append(dishes, d)
		}
		// two-word forms such as "dim sum" or "ice cream"
		if i+1 < len(tokens) {
			joined := tok + tokens[i+1]
			if c, ok := cuisineTokens[joined]; ok {
				cuisines = append(cuisines, c)
			}
			if d, ok := dishTokens[joined]; ok {
				dishes = append(dishes, d)
			}
		}
	}

	return ParsedQuery{
		Raw:        q,
		Normalized: normalized,
		Tokens:     tokens,
		Cuisines:   sortedSet(cuisines),
		DishTypes:  sortedSet(dishes),
	}
}

// Empty reports whether the query carries no text.
func (p ParsedQuery) Empty() bool {
	return p.Normalized == ""
}

// minPrefixLen is the shortest query token matched as a cuisine prefix.
const minPrefixLen = 4

// MatchesRestaurant reports whether a restaurant name or cuisine set matches.
// cuisines must already be lowercase tokens. Besides the inferred cuisines, a
// query token matches a cuisine it equals, one of its words, or a prefix of
// it at least minPrefixLen long, so cuisines unknown to the query table are
// still searchable.
func (p ParsedQuery) MatchesRestaurant(name string, cuisines []string) bool {
	if p.Empty() {
		return true
	}
	if strings.Contains(strings.ToLower(name), p.Normalized) {
		return true
	}
	for _, c := range p.Cuisines {
		if slices.Contains(cuisines, c) {
			return true
		}
	}
	for _, c := range cuisines {
		if p.matchesToken(c) {
			return true
		}
	}
	return false
}

func (p ParsedQuery) matchesToken(value string) bool {
	words := splitWords(value)
	for _, tok := range p.Tokens {
		if tok == value || slices.Contains(words, tok) {
			return true
		}
		if len(tok) >= minPrefixLen && strings.HasPrefix(value, tok) {
			return true
		}
	}
	return false
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// MatchesDish reports whether a dish name or category matches.
func (p ParsedQuery) MatchesDish(name, category string) bool {
	if p.Empty() {
		return true
	}
	lowerName := strings.ToLower(name)
	if strings.Contains(lowerName, p.Normalized) {
		return true
	}
	lowerCategory := strings.ToLower(strings.TrimSpace(category))
	if lowerCategory != "" && p.matchesToken(lowerCategory) {
		return true
	}
	for _, d := range p.DishTypes {
		if lowerCategory == d || strings.Contains(lowerName, d) {
			return true
		}
	}
	return false
}

func sortedSet(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}
