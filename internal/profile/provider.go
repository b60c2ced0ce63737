// Package profile supplies the per-user cognitive-state score (0-100) that
// the memory pipeline uses to derive default confidence for self-reported
// facts.
package profile

import "context"

// Provider resolves a user's current cognitive state. Implementations
// return models.DefaultCognitiveState when no profile exists; errors are
// reserved for infrastructure failures.
type Provider interface {
	CognitiveState(ctx context.Context, userID string) (int, error)
}

// Static is a fixed-score Provider, used in tests and as a fallback when no
// profile database is configured.
type Static int

// CognitiveState returns the fixed score.
func (s Static) CognitiveState(ctx context.Context, userID string) (int, error) {
	return int(s), nil
}
