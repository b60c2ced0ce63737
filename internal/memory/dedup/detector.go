// Package dedup classifies candidate facts against a user's existing fact
// set before anything is written: exact duplicates, near duplicates above a
// similarity threshold, and compound statements that bundle several facts
// into one sentence.
package dedup

import (
	"strings"

	"Mnemo/internal/memory/similarity"
	"Mnemo/internal/models"
)

// DefaultThreshold is the inclusive similarity score at or above which a
// candidate counts as a semantic duplicate.
const DefaultThreshold = 0.8

// combinedMinLength is the minimum candidate length (after trimming) for the
// compound-statement heuristic to fire. Short sentences with a conjunction
// are usually still one fact.
const combinedMinLength = 50

// conjunctionMarkers are the compound-statement indicators. The heuristic is
// deliberately crude: it will flag legitimate single facts such as
// "I work at Smith and Jones LLP". Callers treat the rejection as a request
// to re-split, not as a hard error.
var conjunctionMarkers = []string{
	" and ",
	" & ",
	", and",
	" also ",
	" plus ",
	" as well as ",
	"; ",
}

// Kind is the classification outcome.
type Kind int

const (
	// Unique means the candidate matched nothing and looks atomic.
	Unique Kind = iota
	// ExactDuplicate means the normalized candidate equals an existing fact.
	ExactDuplicate
	// SemanticDuplicate means an existing fact scored at or above the threshold.
	SemanticDuplicate
	// CombinedStatement means the candidate looks like several facts in one.
	CombinedStatement
)

func (k Kind) String() string {
	switch k {
	case Unique:
		return "unique"
	case ExactDuplicate:
		return "exact_duplicate"
	case SemanticDuplicate:
		return "semantic_duplicate"
	case CombinedStatement:
		return "combined_statement"
	default:
		return "unknown"
	}
}

// Classification is the result of classifying one candidate.
type Classification struct {
	Kind  Kind
	Match *models.Fact // the colliding fact, set for duplicate kinds
	Score float64      // similarity to Match; 1.0 for exact duplicates
}

// Detector classifies candidates. The zero value is not usable; construct
// with NewDetector.
type Detector struct {
	threshold   float64
	minCombined int
	score       similarity.Scorer
}

// NewDetector returns a Detector using the default LCS-ratio scorer.
// A non-positive threshold falls back to DefaultThreshold.
func NewDetector(threshold float64) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Detector{threshold: threshold, minCombined: combinedMinLength, score: similarity.Score}
}

// WithCombinedMinLength overrides the compound-statement length floor and
// returns the detector. Non-positive values keep the default.
func (d *Detector) WithCombinedMinLength(n int) *Detector {
	if n > 0 {
		d.minCombined = n
	}
	return d
}

// Threshold returns the configured semantic-duplicate threshold.
func (d *Detector) Threshold() float64 {
	return d.threshold
}

// Classify checks candidate against existing facts, first match wins:
// exact duplicate, then semantic duplicate, then the compound-statement
// heuristic, then unique. Existing facts are checked in their stored order,
// so ties at the threshold resolve deterministically to the first match.
func (d *Detector) Classify(candidate string, existing []*models.Fact) Classification {
	normalized := normalize(candidate)

	for _, fact := range existing {
		if normalize(fact.Content) == normalized {
			return Classification{Kind: ExactDuplicate, Match: fact, Score: 1.0}
		}
	}

	for _, fact := range existing {
		if score := d.score(candidate, fact.Content); score >= d.threshold {
			return Classification{Kind: SemanticDuplicate, Match: fact, Score: score}
		}
	}

	if d.looksCombined(candidate) {
		return Classification{Kind: CombinedStatement}
	}

	return Classification{Kind: Unique}
}

// normalize trims and lowercases content for exact comparison.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// looksCombined reports whether candidate reads like multiple facts joined
// together: it carries a conjunction marker and is longer than the configured
// minimum length.
func (d *Detector) looksCombined(candidate string) bool {
	trimmed := strings.TrimSpace(candidate)
	if len(trimmed) <= d.minCombined {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, marker := range conjunctionMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
