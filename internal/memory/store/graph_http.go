package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"Mnemo/internal/config"
	mnhttp "Mnemo/pkg/http"
)

// HTTPGraphStore talks to the knowledge-graph ingestion service over HTTP.
// The service accepts free text and runs entity/relationship extraction in
// the background, so every write here is an asynchronous hand-off: a 2xx
// acknowledgement only means the text was queued.
type HTTPGraphStore struct {
	baseURL string
	apiKey  string
	client  *mnhttp.Client
}

// NewHTTPGraphStore creates a graph client for the configured service.
// The client carries a circuit breaker so a down graph backend fails fast
// instead of holding every write for the full timeout.
func NewHTTPGraphStore(cfg config.GraphServiceConfig, client *mnhttp.Client) *HTTPGraphStore {
	return &HTTPGraphStore{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  client,
	}
}

type submitRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

type queryRequest struct {
	UserID string `json:"user_id"`
	Query  string `json:"query"`
	Mode   string `json:"mode"`
	TopK   int    `json:"top_k"`
}

type queryResponse struct {
	Response string `json:"response"`
}

type countResponse struct {
	Count int `json:"count"`
}

// Submit queues text for background graph extraction.
func (g *HTTPGraphStore) Submit(ctx context.Context, userID, text string) error {
	return g.postJSON(ctx, http.MethodPost, "/documents", submitRequest{UserID: userID, Text: text}, nil)
}

// Remove asks the service to drop a previously submitted document.
func (g *HTTPGraphStore) Remove(ctx context.Context, userID, text string) error {
	return g.postJSON(ctx, http.MethodDelete, "/documents", submitRequest{UserID: userID, Text: text}, nil)
}

// Status fetches the ingestion pipeline's state.
func (g *HTTPGraphStore) Status(ctx context.Context) (*PipelineStatus, error) {
	var status PipelineStatus
	if err := g.getJSON(ctx, "/pipeline_status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// CountDocuments returns how many documents the graph holds for a user.
func (g *HTTPGraphStore) CountDocuments(ctx context.Context, userID string) (int, error) {
	var count countResponse
	params := url.Values{"user_id": []string{userID}}
	if err := g.getJSON(ctx, "/documents/count", params, &count); err != nil {
		return 0, err
	}
	return count.Count, nil
}

// Query runs a retrieval query. Not used by the write path.
func (g *HTTPGraphStore) Query(ctx context.Context, userID, query, mode string, topK int) (string, error) {
	var resp queryResponse
	err := g.postJSON(ctx, http.MethodPost, "/query", queryRequest{
		UserID: userID,
		Query:  query,
		Mode:   mode,
		TopK:   topK,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Response, nil
}

func (g *HTTPGraphStore) postJSON(ctx context.Context, method, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode graph request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build graph request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return g.send(req, out)
}

func (g *HTTPGraphStore) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	target := g.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build graph request: %w", err)
	}

	return g.send(req, out)
}

func (g *HTTPGraphStore) send(req *http.Request, out interface{}) error {
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("graph service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("graph service returned status %d: %s", resp.StatusCode, snippet)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode graph response: %w", err)
	}
	return nil
}
