package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"Mnemo/internal/config"
	"Mnemo/internal/memory/service"
	"Mnemo/internal/memory/store"
	"Mnemo/internal/models"
	"Mnemo/internal/profile"
	"Mnemo/pkg/logger"

	"github.com/gin-gonic/gin"
)

// stubGraph accepts every submission.
type stubGraph struct{}

func (stubGraph) Submit(ctx context.Context, userID, text string) error { return nil }
func (stubGraph) Remove(ctx context.Context, userID, text string) error { return nil }
func (stubGraph) Status(ctx context.Context) (*store.PipelineStatus, error) {
	return &store.PipelineStatus{DocCount: 0}, nil
}
func (stubGraph) CountDocuments(ctx context.Context, userID string) (int, error) { return 0, nil }
func (stubGraph) Query(ctx context.Context, userID, query, mode string, topK int) (string, error) {
	return "", nil
}

func newTestRouter(t *testing.T, mwCfg config.MiddlewareConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewMemoryService(store.NewMemoryStore(), stubGraph{}, profile.Static(100),
		logger.New("api_test", "", ""))
	router := gin.New()
	RegisterRoutes(router, NewAPI(svc, logger.New("api_test", "", "")), mwCfg)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestStoreMemoryEndpoint(t *testing.T) {
	router := newTestRouter(t, config.MiddlewareConfig{})

	w := postJSON(t, router, "/api/v1/memories", service.StoreRequest{
		UserID:  "u1",
		Content: "I live in San Francisco.",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status code = %d, want 201 (body: %s)", w.Code, w.Body.String())
	}

	var result models.MemoryStorageResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Status != models.StatusSuccess {
		t.Errorf("result status = %v, want SUCCESS", result.Status)
	}
	if result.MemoryID == "" {
		t.Error("memory_id missing from response")
	}

	// The same fact again is a duplicate, reported with 200 and a rejection
	// status rather than an HTTP error.
	w = postJSON(t, router, "/api/v1/memories", service.StoreRequest{
		UserID:  "u1",
		Content: "I live in San Francisco.",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("duplicate status code = %d, want 200", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Status != models.StatusDuplicateExact {
		t.Errorf("result status = %v, want DUPLICATE_EXACT", result.Status)
	}
}

func TestStoreMemoryEndpointEmptyContent(t *testing.T) {
	router := newTestRouter(t, config.MiddlewareConfig{})

	w := postJSON(t, router, "/api/v1/memories", service.StoreRequest{UserID: "u1", Content: "   "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status code = %d, want 400", w.Code)
	}
}

func TestStoreBatchEndpoint(t *testing.T) {
	router := newTestRouter(t, config.MiddlewareConfig{})

	w := postJSON(t, router, "/api/v1/memories/batch", StoreBatchRequest{
		UserID: "u1",
		Facts: []service.StoreRequest{
			{Content: "I prefer tea."},
			{Content: "I prefer tea."},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}

	var resp struct {
		Results []models.MemoryStorageResult `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(resp.Results))
	}
	if resp.Results[0].Status != models.StatusSuccess {
		t.Errorf("results[0].status = %v, want SUCCESS", resp.Results[0].Status)
	}
	if resp.Results[1].Status != models.StatusDuplicateExact {
		t.Errorf("results[1].status = %v, want DUPLICATE_EXACT", resp.Results[1].Status)
	}
}

func TestListAndDeleteMemoryEndpoints(t *testing.T) {
	router := newTestRouter(t, config.MiddlewareConfig{})

	w := postJSON(t, router, "/api/v1/memories", service.StoreRequest{UserID: "u1", Content: "I play the violin."})
	var stored models.MemoryStorageResult
	if err := json.Unmarshal(w.Body.Bytes(), &stored); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u1/memories", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list status code = %d, want 200", w.Code)
	}
	var listResp struct {
		Memories []models.Fact `json:"memories"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(listResp.Memories) != 1 {
		t.Fatalf("len(memories) = %d, want 1", len(listResp.Memories))
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/users/u1/memories/"+stored.MemoryID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("delete status code = %d, want 200", w.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/users/u1/memories/"+stored.MemoryID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status code = %d, want 404", w.Code)
	}
}

func TestReconcileEndpoint(t *testing.T) {
	router := newTestRouter(t, config.MiddlewareConfig{})

	postJSON(t, router, "/api/v1/memories", service.StoreRequest{UserID: "u1", Content: "I prefer tea."})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/u1/reconcile", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}

	var report models.ReconcileReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if report.Checked != 1 {
		t.Errorf("report.checked = %d, want 1", report.Checked)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, config.MiddlewareConfig{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", w.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	router := newTestRouter(t, config.MiddlewareConfig{
		RateLimiter: config.RateLimiterConfig{Enabled: true, Rate: 0.001, Capacity: 1},
	})

	first := postJSON(t, router, "/api/v1/memories", service.StoreRequest{UserID: "u1", Content: "I prefer tea."})
	if first.Code != http.StatusCreated {
		t.Fatalf("first request status = %d, want 201", first.Code)
	}

	second := postJSON(t, router, "/api/v1/memories", service.StoreRequest{UserID: "u1", Content: "I was born in 1960."})
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", second.Code)
	}
}
