package dedup

import "Mnemo/internal/models"

// BatchItem is the classification of one candidate within a batch.
type BatchItem struct {
	Content        string
	Classification Classification
}

// Accepted reports whether the candidate survived the in-batch check and may
// proceed to the store path.
func (b BatchItem) Accepted() bool {
	return b.Classification.Kind == Unique
}

// FilterBatch applies the exact and semantic duplicate rules within a single
// batch of candidates, before any of them reaches the store. Candidates are
// processed in generation order; each one is classified against the running
// list of candidates accepted so far, so the first occurrence of a statement
// wins and later repeats are rejected without any store I/O.
func (d *Detector) FilterBatch(candidates []string) []BatchItem {
	items := make([]BatchItem, 0, len(candidates))
	accepted := make([]*models.Fact, 0, len(candidates))

	for _, candidate := range candidates {
		c := d.Classify(candidate, accepted)
		items = append(items, BatchItem{Content: candidate, Classification: c})
		if c.Kind == Unique {
			accepted = append(accepted, &models.Fact{Content: candidate})
		}
	}

	return items
}
