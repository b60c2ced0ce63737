package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Mnemo/internal/config"
	mnhttp "Mnemo/pkg/http"
)

func newGraphTestStore(t *testing.T, handler http.Handler) (*HTTPGraphStore, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := mnhttp.NewClient(config.CircuitBreakerConfig{}, 5*time.Second)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return NewHTTPGraphStore(config.GraphServiceConfig{BaseURL: srv.URL, APIKey: "test-key"}, client), srv
}

func TestHTTPGraphStoreSubmit(t *testing.T) {
	var got submitRequest
	var auth string
	store, _ := newGraphTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/documents" {
			t.Errorf("request = %s %s, want POST /documents", r.Method, r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))

	if err := store.Submit(context.Background(), "u1", "I live in San Francisco."); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got.UserID != "u1" || got.Text != "I live in San Francisco." {
		t.Errorf("submitted payload = %+v", got)
	}
	if auth != "Bearer test-key" {
		t.Errorf("authorization header = %q, want bearer token", auth)
	}
}

func TestHTTPGraphStoreSubmitServerError(t *testing.T) {
	store, _ := newGraphTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "pipeline crashed", http.StatusInternalServerError)
	}))

	err := store.Submit(context.Background(), "u1", "I live in San Francisco.")
	if err == nil {
		t.Fatal("Submit() error = nil, want error on 500")
	}
}

func TestHTTPGraphStoreStatus(t *testing.T) {
	store, _ := newGraphTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pipeline_status" {
			t.Errorf("path = %s, want /pipeline_status", r.URL.Path)
		}
		json.NewEncoder(w).Encode(PipelineStatus{Busy: true, DocCount: 42})
	}))

	status, err := store.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if !status.Busy || status.DocCount != 42 {
		t.Errorf("status = %+v, want busy with 42 docs", status)
	}
}

func TestHTTPGraphStoreCountDocuments(t *testing.T) {
	store, _ := newGraphTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/documents/count" {
			t.Errorf("path = %s, want /documents/count", r.URL.Path)
		}
		if got := r.URL.Query().Get("user_id"); got != "u1" {
			t.Errorf("user_id query param = %q, want u1", got)
		}
		json.NewEncoder(w).Encode(countResponse{Count: 3})
	}))

	count, err := store.CountDocuments(context.Background(), "u1")
	if err != nil {
		t.Fatalf("CountDocuments() error = %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestHTTPGraphStoreQuery(t *testing.T) {
	store, _ := newGraphTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode query request: %v", err)
		}
		if req.Mode != "hybrid" || req.TopK != 5 {
			t.Errorf("query request = %+v", req)
		}
		json.NewEncoder(w).Encode(queryResponse{Response: "the user lives in San Francisco"})
	}))

	resp, err := store.Query(context.Background(), "u1", "where does the user live", "hybrid", 5)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if resp != "the user lives in San Francisco" {
		t.Errorf("response = %q", resp)
	}
}

func TestHTTPGraphStoreRemove(t *testing.T) {
	var method string
	store, _ := newGraphTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.WriteHeader(http.StatusOK)
	}))

	if err := store.Remove(context.Background(), "u1", "old fact"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if method != http.MethodDelete {
		t.Errorf("method = %s, want DELETE", method)
	}
}

func TestHTTPGraphStoreContextTimeout(t *testing.T) {
	store, _ := newGraphTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server starts its background read and
		// cancels the request context when the client disconnects;
		// otherwise the handler blocks forever and srv.Close hangs.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := store.Submit(ctx, "u1", "slow"); err == nil {
		t.Fatal("Submit() error = nil, want context deadline error")
	}
}
