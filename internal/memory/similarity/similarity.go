// Package similarity scores how alike two natural-language statements are.
//
// The score is a character-level longest-common-subsequence ratio:
// 2*LCS(a,b) / (len(a)+len(b)), computed case-insensitively after trimming
// surrounding whitespace. The duplicate-detection thresholds elsewhere in the
// pipeline are calibrated to this alignment-ratio behavior; swapping in a
// different Scorer (token Jaccard, embeddings) requires re-tuning them.
package similarity

import "strings"

// Scorer computes a normalized similarity in [0,1] between two strings.
// It must be symmetric, reflexive (Score(a,a)==1), and degrade gracefully on
// empty input (two empty strings score 1, empty vs non-empty scores 0).
type Scorer func(a, b string) float64

// Score is the default Scorer.
func Score(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	ra := []rune(a)
	rb := []rune(b)
	lcs := lcsLength(ra, rb)
	return 2.0 * float64(lcs) / float64(len(ra)+len(rb))
}

// lcsLength computes the longest-common-subsequence length with a rolling
// single-row DP table, O(len(a)*len(b)) time and O(min) space.
func lcsLength(a, b []rune) int {
	if len(b) < len(a) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)

	for i := 1; i <= len(b); i++ {
		for j := 1; j <= len(a); j++ {
			if b[i-1] == a[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(a)]
}
