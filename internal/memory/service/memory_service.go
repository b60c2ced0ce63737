package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Mnemo/internal/memory/dedup"
	"Mnemo/internal/memory/provenance"
	"Mnemo/internal/memory/store"
	"Mnemo/internal/models"
	"Mnemo/internal/profile"
	"Mnemo/pkg/logger"
	"Mnemo/pkg/util"
)

// DefaultGraphTimeout bounds the graph submission so a slow or unreachable
// graph service cannot stall the write path.
const DefaultGraphTimeout = 5 * time.Second

// StoreRequest carries one candidate fact into the write pipeline.
type StoreRequest struct {
	UserID     string   `json:"user_id"`
	Content    string   `json:"content"`
	Topics     []string `json:"topics,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	IsProxy    bool     `json:"is_proxy,omitempty"`
	ProxyAgent string   `json:"proxy_agent,omitempty"`
}

// MemoryService is the dual-store write orchestrator. It validates a
// candidate fact, rejects duplicates against the user's existing facts,
// resolves confidence/provenance, writes to the authoritative local store,
// and then best-effort submits the content to the graph index.
//
// All collaborators are injected; there is no package-level client state.
type MemoryService struct {
	local        store.LocalStore
	graph        store.GraphIndex
	profiles     profile.Provider
	detector     *dedup.Detector
	locks        *util.KeyedMutex
	logger       *logger.Logger
	graphTimeout time.Duration
}

// Option configures a MemoryService.
type Option func(*MemoryService)

// WithDetector overrides the duplicate detector (custom threshold).
func WithDetector(d *dedup.Detector) Option {
	return func(s *MemoryService) { s.detector = d }
}

// WithGraphTimeout overrides the graph submission timeout.
func WithGraphTimeout(d time.Duration) Option {
	return func(s *MemoryService) {
		if d > 0 {
			s.graphTimeout = d
		}
	}
}

// NewMemoryService creates a MemoryService.
func NewMemoryService(local store.LocalStore, graph store.GraphIndex, profiles profile.Provider, log *logger.Logger, opts ...Option) *MemoryService {
	s := &MemoryService{
		local:        local,
		graph:        graph,
		profiles:     profiles,
		detector:     dedup.NewDetector(dedup.DefaultThreshold),
		locks:        util.NewKeyedMutex(),
		logger:       log,
		graphTimeout: DefaultGraphTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StoreUserMemory runs the full write pipeline for one candidate fact.
// Callers always get a MemoryStorageResult; duplicate and empty-content
// rejections are statuses, never errors.
func (s *MemoryService) StoreUserMemory(ctx context.Context, req StoreRequest) *models.MemoryStorageResult {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return &models.MemoryStorageResult{
			Status:  models.StatusContentEmpty,
			Message: "memory content is empty or whitespace-only",
		}
	}
	if req.UserID == "" {
		return &models.MemoryStorageResult{
			Status:  models.StatusError,
			Message: "user_id is required",
		}
	}

	// Serialize load -> duplicate check -> local write per user, so two
	// concurrent callers cannot both pass the duplicate check against the
	// same stale snapshot. Other users proceed in parallel.
	s.locks.Lock(req.UserID)

	fact, result := s.checkAndWriteLocal(ctx, req, content)
	s.locks.Unlock(req.UserID)
	if fact == nil {
		return result
	}

	// The local write is durable; the graph index is the slow, best-effort
	// secondary. Submitting outside the lock keeps a lagging graph service
	// from serializing this user's unrelated writes.
	if err := s.submitToGraph(ctx, fact.UserID, fact.Content); err != nil {
		s.logGraphFailure(fact.UserID, fact.MemoryID, err)
		result.Status = models.StatusSuccessLocalOnly
		result.Message = "memory stored locally; graph indexing deferred"
		return result
	}

	result.Status = models.StatusSuccess
	result.GraphSuccess = true
	return result
}

// checkAndWriteLocal performs the locked portion of the pipeline. It returns
// the written fact, or nil with a terminal rejection/error result.
func (s *MemoryService) checkAndWriteLocal(ctx context.Context, req StoreRequest, content string) (*models.Fact, *models.MemoryStorageResult) {
	existing, err := s.local.Scan(ctx, req.UserID)
	if err != nil {
		s.logger.WithUser(req.UserID).WithError(models.ErrorInfo{
			Message: err.Error(),
			Type:    "local_store_error",
		}).Error("failed to load existing facts")
		return nil, &models.MemoryStorageResult{
			Status:  models.StatusError,
			Message: fmt.Sprintf("failed to load existing facts: %v", err),
		}
	}

	if c := s.detector.Classify(content, existing); c.Kind != dedup.Unique {
		return nil, rejectionResult(c)
	}

	resolution, err := s.resolveProvenance(ctx, req)
	if err != nil {
		return nil, &models.MemoryStorageResult{
			Status:  models.StatusError,
			Message: err.Error(),
		}
	}

	fact := &models.Fact{
		UserID:      req.UserID,
		Content:     content,
		Topics:      req.Topics,
		Confidence:  resolution.Confidence,
		IsProxy:     resolution.IsProxy,
		ProxyAgent:  resolution.ProxyAgent,
		LastUpdated: time.Now(),
	}

	memoryID, err := s.local.Insert(ctx, fact)
	if err != nil {
		s.logger.WithUser(req.UserID).WithError(models.ErrorInfo{
			Message: err.Error(),
			Type:    "local_store_error",
		}).Error("failed to insert fact")
		return nil, &models.MemoryStorageResult{
			Status:  models.StatusError,
			Message: fmt.Sprintf("failed to write memory: %v", err),
		}
	}
	fact.MemoryID = memoryID

	return fact, &models.MemoryStorageResult{
		MemoryID:     memoryID,
		LocalSuccess: true,
		Topics:       req.Topics,
		Message:      "memory stored",
	}
}

// resolveProvenance applies the confidence rules, fetching cognitive state
// only when neither the proxy rule nor an explicit override applies.
func (s *MemoryService) resolveProvenance(ctx context.Context, req StoreRequest) (provenance.Resolution, error) {
	in := provenance.Input{
		Confidence: req.Confidence,
		IsProxy:    req.IsProxy,
		ProxyAgent: req.ProxyAgent,
	}

	cognitiveState := models.DefaultCognitiveState
	if !req.IsProxy && req.Confidence == nil && s.profiles != nil {
		state, err := s.profiles.CognitiveState(ctx, req.UserID)
		if err != nil {
			// Cognitive state only shapes the default confidence; a
			// profile outage must not block the write.
			s.logger.WithUser(req.UserID).WithError(models.ErrorInfo{
				Message: err.Error(),
				Type:    "profile_error",
			}).Warn("cognitive state unavailable, using default")
		} else {
			cognitiveState = state
		}
	}

	return provenance.Resolve(in, cognitiveState)
}

// StoreBatch handles multiple facts extracted from a single conversational
// turn. Duplicates within the batch are rejected before any store I/O; the
// survivors go through the regular write pipeline one by one. The returned
// slice is index-aligned with reqs.
func (s *MemoryService) StoreBatch(ctx context.Context, userID string, reqs []StoreRequest) []*models.MemoryStorageResult {
	contents := make([]string, len(reqs))
	for i, req := range reqs {
		contents[i] = req.Content
	}

	items := s.detector.FilterBatch(contents)
	results := make([]*models.MemoryStorageResult, len(reqs))
	for i, item := range items {
		if !item.Accepted() {
			results[i] = rejectionResult(item.Classification)
			continue
		}
		req := reqs[i]
		req.UserID = userID
		results[i] = s.StoreUserMemory(ctx, req)
	}
	return results
}

// ListMemories returns a user's stored facts.
func (s *MemoryService) ListMemories(ctx context.Context, userID string) ([]*models.Fact, error) {
	return s.local.Scan(ctx, userID)
}

// DeleteMemory removes a fact from the local store synchronously and
// best-effort removes its content from the graph index.
func (s *MemoryService) DeleteMemory(ctx context.Context, userID, memoryID string) error {
	fact, err := s.local.Get(ctx, userID, memoryID)
	if err != nil {
		return err
	}

	if err := s.local.Delete(ctx, userID, memoryID); err != nil {
		return err
	}

	graphCtx, cancel := context.WithTimeout(ctx, s.graphTimeout)
	defer cancel()
	if err := s.graph.Remove(graphCtx, userID, fact.Content); err != nil {
		s.logGraphFailure(userID, memoryID, err)
	}
	return nil
}

// GraphStatus exposes the graph pipeline state for health checks.
func (s *MemoryService) GraphStatus(ctx context.Context) (*store.PipelineStatus, error) {
	graphCtx, cancel := context.WithTimeout(ctx, s.graphTimeout)
	defer cancel()
	return s.graph.Status(graphCtx)
}

func (s *MemoryService) submitToGraph(ctx context.Context, userID, content string) error {
	graphCtx, cancel := context.WithTimeout(ctx, s.graphTimeout)
	defer cancel()
	return s.graph.Submit(graphCtx, userID, content)
}

func (s *MemoryService) logGraphFailure(userID, memoryID string, err error) {
	s.logger.WithUser(userID).WithError(models.ErrorInfo{
		Message: err.Error(),
		Type:    "graph_store_error",
	}).WithPayload(map[string]interface{}{
		"memory_id": memoryID,
	}).Warn("graph store operation failed")
}

// rejectionResult maps a duplicate classification onto the result taxonomy.
func rejectionResult(c dedup.Classification) *models.MemoryStorageResult {
	switch c.Kind {
	case dedup.ExactDuplicate:
		return &models.MemoryStorageResult{
			Status:          models.StatusDuplicateExact,
			Message:         fmt.Sprintf("exact duplicate of existing memory: %q", c.Match.Content),
			SimilarityScore: 1.0,
		}
	case dedup.SemanticDuplicate:
		return &models.MemoryStorageResult{
			Status:          models.StatusDuplicateSemantic,
			Message:         fmt.Sprintf("semantic duplicate of existing memory: %q", c.Match.Content),
			SimilarityScore: c.Score,
		}
	case dedup.CombinedStatement:
		return &models.MemoryStorageResult{
			Status:  models.StatusCombinedRejected,
			Message: "content bundles multiple statements; split it into atomic facts and retry",
		}
	default:
		return &models.MemoryStorageResult{
			Status:  models.StatusError,
			Message: fmt.Sprintf("unexpected classification %v", c.Kind),
		}
	}
}
