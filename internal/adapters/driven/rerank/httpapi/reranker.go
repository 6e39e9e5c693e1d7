// Package httpapi implements the reranker port against an HTTP
// cross-encoder service speaking the /v1/rerank protocol (llama.cpp,
// TEI and compatible servers).
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lexica-labs/lexrank/internal/core/ports/driven"
)

var _ driven.Reranker = (*Reranker)(nil)

// Default configuration values.
const (
	DefaultEndpoint = "http://localhost:8081"
	DefaultTimeout  = 30 * time.Second
)

// Config holds reranker connection settings.
type Config struct {
	// Endpoint is the server base URL (default: http://localhost:8081).
	Endpoint string

	// Model names the cross-encoder model, when the server hosts several.
	Model string

	// Timeout is the per-request timeout (default: 30s). The search
	// service treats a timeout as a reranker outage and falls back to
	// fusion order.
	Timeout time.Duration
}

// Reranker scores query/text pairs via an HTTP cross-encoder.
type Reranker struct {
	client   *http.Client
	endpoint string
	model    string
}

// rerankRequest matches the /v1/rerank endpoint format.
type rerankRequest struct {
	Model     string   `json:"model,omitempty"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

// rerankResponse from the server. Results may arrive in any order;
// Index ties each score back to its input document.
type rerankResponse struct {
	Results []struct {
		Index int     `json:"index"`
		Score float64 `json:"relevance_score"`
	} `json:"results"`
}

// NewReranker creates a reranker client.
func NewReranker(cfg Config) *Reranker {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Reranker{
		client:   &http.Client{Timeout: cfg.Timeout},
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
	}
}

// ScorePairs returns a relevance score per text, aligned to the input
// order. Higher is more relevant.
func (r *Reranker) ScorePairs(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody, err := json.Marshal(rerankRequest{
		Model:     r.model,
		Query:     query,
		Documents: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.endpoint+"/v1/rerank", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("rerank returned status %d: %s", resp.StatusCode, string(body))
	}

	var result rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parse rerank response: %w", err)
	}

	scores := make([]float64, len(texts))
	seen := make([]bool, len(texts))
	for _, res := range result.Results {
		if res.Index < 0 || res.Index >= len(texts) {
			return nil, fmt.Errorf("rerank returned out-of-range index %d", res.Index)
		}
		scores[res.Index] = res.Score
		seen[res.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("rerank returned no score for document %d", i)
		}
	}
	return scores, nil
}

// Ping checks the server health endpoint.
func (r *Reranker) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("reranker ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reranker returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (r *Reranker) Close() error {
	return nil
}
