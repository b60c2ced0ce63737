package models

// StorageStatus is the terminal state of one store operation.
type StorageStatus string

const (
	// StatusSuccess means the fact was written to both the local store and
	// the graph index.
	StatusSuccess StorageStatus = "SUCCESS"
	// StatusSuccessLocalOnly means the local write committed but the graph
	// submission failed, timed out, or the graph service was unreachable.
	StatusSuccessLocalOnly StorageStatus = "SUCCESS_LOCAL_ONLY"
	// StatusDuplicateExact means the candidate matched an existing fact
	// after trimming and lowercasing.
	StatusDuplicateExact StorageStatus = "DUPLICATE_EXACT"
	// StatusDuplicateSemantic means the candidate scored at or above the
	// similarity threshold against an existing fact.
	StatusDuplicateSemantic StorageStatus = "DUPLICATE_SEMANTIC"
	// StatusCombinedRejected means the compound-statement heuristic fired:
	// the candidate looks like several facts bundled into one sentence and
	// should be re-split by the caller.
	StatusCombinedRejected StorageStatus = "COMBINED_REJECTED"
	// StatusContentEmpty means the candidate content was empty or
	// whitespace-only.
	StatusContentEmpty StorageStatus = "CONTENT_EMPTY"
	// StatusError covers validation failures and local store failures.
	StatusError StorageStatus = "ERROR"
)

// MemoryStorageResult is the uniform outcome of a store attempt. Callers
// always receive one of these; duplicate and empty-content rejections are
// expected outcomes, not errors.
type MemoryStorageResult struct {
	Status          StorageStatus `json:"status"`
	MemoryID        string        `json:"memory_id,omitempty"`
	Message         string        `json:"message"`
	SimilarityScore float64       `json:"similarity_score,omitempty"`
	LocalSuccess    bool          `json:"local_success"`
	GraphSuccess    bool          `json:"graph_success"`
	Topics          []string      `json:"topics,omitempty"`
}

// Stored reports whether a local write happened.
func (r *MemoryStorageResult) Stored() bool {
	return r.Status == StatusSuccess || r.Status == StatusSuccessLocalOnly
}

// ReconcileReport summarizes one reconciliation pass between the local store
// and the graph index for a single user.
type ReconcileReport struct {
	UserID           string `json:"user_id"`
	Checked          int    `json:"checked"`
	MissingFromGraph int    `json:"missing_from_graph"`
	Resubmitted      int    `json:"resubmitted"`
	Failed           int    `json:"failed"`
}
