package service

import (
	"context"
	"fmt"

	"Mnemo/internal/models"
)

// Reconcile compares a user's local fact set against the graph index and
// resubmits content the graph side is missing. It runs out-of-band (on a
// schedule or from an admin action), takes no per-user write lock, and never
// mutates the local store. Resubmitting already-indexed text is idempotent
// on the graph side, so when per-fact presence cannot be confirmed the whole
// set is resubmitted.
func (s *MemoryService) Reconcile(ctx context.Context, userID string) (*models.ReconcileReport, error) {
	facts, err := s.local.Scan(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load local facts for reconciliation: %w", err)
	}

	report := &models.ReconcileReport{UserID: userID, Checked: len(facts)}
	if len(facts) == 0 {
		return report, nil
	}

	graphCtx, cancel := context.WithTimeout(ctx, s.graphTimeout)
	graphCount, err := s.graph.CountDocuments(graphCtx, userID)
	cancel()
	if err != nil {
		// Presence cannot be confirmed; resubmit everything.
		s.logGraphFailure(userID, "", err)
		report.MissingFromGraph = len(facts)
	} else if graphCount < len(facts) {
		report.MissingFromGraph = len(facts) - graphCount
	} else {
		return report, nil
	}

	for _, fact := range facts {
		if err := s.submitToGraph(ctx, userID, fact.Content); err != nil {
			// Per-fact: one failed resubmission must not abort the rest.
			s.logGraphFailure(userID, fact.MemoryID, err)
			report.Failed++
			continue
		}
		report.Resubmitted++
	}

	s.logger.WithUser(userID).WithPayload(map[string]interface{}{
		"checked":            report.Checked,
		"missing_from_graph": report.MissingFromGraph,
		"resubmitted":        report.Resubmitted,
		"failed":             report.Failed,
	}).Info("reconciliation finished")

	return report, nil
}
