package store

import (
	"context"
	"errors"

	"Mnemo/internal/models"
)

// ErrNotFound is returned by point lookups and deletes when no fact matches.
var ErrNotFound = errors.New("fact not found")

// LocalStore is the authoritative, synchronous fact store. Per-user fact
// sets are small (hundreds, not millions), so Scan returns everything for a
// user. Individual operations are atomic, but read-then-write sequences are
// not; the write orchestrator serializes those under a per-user lock.
type LocalStore interface {
	// Scan returns all facts for a user, in stored order. The order is not
	// otherwise meaningful but must be stable: duplicate ties resolve to
	// the first match.
	Scan(ctx context.Context, userID string) ([]*models.Fact, error)
	// Insert persists a fact, assigning MemoryID when it is empty, and
	// returns the assigned ID.
	Insert(ctx context.Context, fact *models.Fact) (string, error)
	// Get is a point lookup by (userID, memoryID).
	Get(ctx context.Context, userID, memoryID string) (*models.Fact, error)
	// Delete removes a fact by (userID, memoryID).
	Delete(ctx context.Context, userID, memoryID string) error
}

// PipelineStatus is the graph ingestion service's self-reported state.
type PipelineStatus struct {
	Busy     bool `json:"busy"`
	DocCount int  `json:"doc_count"`
}

// GraphIndex is the eventually-consistent knowledge-graph side. Submissions
// are free text; entity and relationship extraction happen in the background
// on the graph service's side. The index is allowed to lag or be down — the
// write path treats every error here as recoverable.
type GraphIndex interface {
	// Submit hands a fact's content to the ingestion pipeline.
	Submit(ctx context.Context, userID, text string) error
	// Remove asks the graph side to drop a previously submitted text.
	// Best effort; the graph keys documents off submitted content.
	Remove(ctx context.Context, userID, text string) error
	// Status queries the ingestion pipeline's state.
	Status(ctx context.Context) (*PipelineStatus, error)
	// CountDocuments returns how many submitted documents the graph side
	// currently holds for a user. The reconciler compares this against the
	// local fact count.
	CountDocuments(ctx context.Context, userID string) (int, error)
	// Query runs a retrieval query in the given mode. Unused by the write
	// path; exposed for retrieval callers and diagnostics.
	Query(ctx context.Context, userID, query, mode string, topK int) (string, error)
}
