package aggregate

import (
	"cmp"
	"slices"
	"strings"
)

type tally struct {
	key     string
	display string
	count   int
}

// countVotes tallies values case-insensitively. The result is ordered by
// count descending, ties broken alphabetically by lowercase key so the
// outcome never depends on input order.
func countVotes(values []string) []tally {
	index := make(map[string]int)
	var tallies []tally
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if i, ok := index[key]; ok {
			tallies[i].count++
			continue
		}
		index[key] = len(tallies)
		tallies = append(tallies, tally{key: key, display: v, count: 1})
	}

	slices.SortFunc(tallies, func(a, b tally) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.key, b.key)
	})
	return tallies
}

// Plurality returns the most frequent value, or "" for no votes.
func Plurality(values []string) string {
	tallies := countVotes(values)
	if len(tallies) == 0 {
		return ""
	}
	return tallies[0].display
}

// TopN returns up to n most frequent values.
func TopN(values []string, n int) []string {
	tallies := countVotes(values)
	if len(tallies) > n {
		tallies = tallies[:n]
	}
	if len(tallies) == 0 {
		return nil
	}
	out := make([]string, len(tallies))
	for i, t := range tallies {
		out[i] = t.display
	}
	return out
}
