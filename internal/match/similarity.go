// Package match scores how likely two identifier strings refer to the same
// contract. Exact search uses byte equality; everything fuzzier goes
// through Similarity.
package match

import "strings"

const (
	// ContainmentScore is the flat score for substring containment. It is
	// deliberately not proportional to the length ratio: containment is
	// treated as "likely the same entity" regardless of how much longer
	// the containing string is. Inherited heuristic, tunable.
	ContainmentScore = 0.8

	// AcceptanceThreshold is the minimum Similarity score any fuzzy tier
	// may return to a caller. Inherited heuristic, tunable.
	AcceptanceThreshold = 0.5
)

// Similarity returns a score in [0,1] for how close two strings are,
// case-insensitively: 1.0 for equality, ContainmentScore when one contains
// the other, and a normalized Levenshtein ratio otherwise. Empty input
// scores 0. It never fails.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == lb {
		return 1.0
	}
	if strings.Contains(la, lb) || strings.Contains(lb, la) {
		return ContainmentScore
	}

	maxLen := len(la)
	if len(lb) > maxLen {
		maxLen = len(lb)
	}
	score := float64(maxLen-Levenshtein(la, lb)) / float64(maxLen)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Levenshtein computes the classic edit distance between two strings over
// raw bytes, using the two-row dynamic programming form.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
