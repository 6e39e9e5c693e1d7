// Package qdrant implements the vector index port against Qdrant's
// REST API. A collection holds one point per chunk with two named
// vectors, "dense" and "sparse"; all chunk fields live in the payload.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lexica-labs/lexrank/internal/core/domain"
	"github.com/lexica-labs/lexrank/internal/core/ports/driven"
	"github.com/lexica-labs/lexrank/internal/logger"
)

var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:6333"
	DefaultCollection = "lexrank"
	DefaultTimeout    = 30 * time.Second

	denseVectorName  = "dense"
	sparseVectorName = "sparse"

	scrollBatchSize = 256
)

// pointNamespace seeds the UUIDv5 derivation of point IDs from chunk
// IDs. Qdrant only accepts integer or UUID point IDs, and the mapping
// must be stable so a re-indexed chunk overwrites its old point.
var pointNamespace = uuid.MustParse("9f2c1e4a-6b3d-4f80-9c57-2a1d5e8b0c43")

// Config holds connection settings for a Qdrant instance.
type Config struct {
	// BaseURL is the Qdrant HTTP endpoint (default: http://localhost:6333).
	BaseURL string

	// APIKey is sent in the api-key header when set.
	APIKey string

	// Collection is the collection name (default: lexrank).
	Collection string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration
}

// Index talks to one Qdrant collection.
type Index struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	collection string
}

// NewIndex creates a Qdrant-backed vector index.
func NewIndex(cfg Config) *Index {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Index{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
	}
}

// PointID derives the stable Qdrant point ID for a chunk ID.
func PointID(chunkID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(chunkID)).String()
}

// EnsureCollection creates the collection if it does not exist, with a
// dense vector space of the given dimension and a sparse vector space.
func (x *Index) EnsureCollection(ctx context.Context, dimensions int) error {
	var exists struct {
		Result struct {
			Exists bool `json:"exists"`
		} `json:"result"`
	}
	if err := x.do(ctx, http.MethodGet, "/collections/"+x.collection+"/exists", nil, &exists); err != nil {
		return err
	}
	if exists.Result.Exists {
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			denseVectorName: map[string]any{
				"size":     dimensions,
				"distance": "Cosine",
			},
		},
		"sparse_vectors": map[string]any{
			sparseVectorName: map[string]any{},
		},
	}
	return x.do(ctx, http.MethodPut, "/collections/"+x.collection, body, nil)
}

// Upsert writes a chunk with both of its vectors.
func (x *Index) Upsert(ctx context.Context, chunk domain.Chunk, dense []float32, sparse domain.SparseVector) error {
	point := map[string]any{
		"id": PointID(chunk.ID),
		"vector": map[string]any{
			denseVectorName: dense,
			sparseVectorName: map[string]any{
				"indices": sparse.Indices,
				"values":  sparse.Values,
			},
		},
		"payload": chunkToPayload(chunk),
	}
	body := map[string]any{"points": []any{point}}
	return x.do(ctx, http.MethodPut, "/collections/"+x.collection+"/points?wait=true", body, nil)
}

// Delete removes all points matching the filter.
func (x *Index) Delete(ctx context.Context, filter driven.Filter) error {
	body := map[string]any{"filter": buildFilter(filter)}
	return x.do(ctx, http.MethodPost, "/collections/"+x.collection+"/points/delete?wait=true", body, nil)
}

// SearchDense finds the k nearest chunks by cosine similarity.
func (x *Index) SearchDense(ctx context.Context, query []float32, k int, filter driven.Filter) ([]driven.IndexHit, error) {
	return x.search(ctx, denseVectorName, query, k, filter)
}

// SearchSparse finds the k best chunks by sparse dot product.
func (x *Index) SearchSparse(ctx context.Context, query domain.SparseVector, k int, filter driven.Filter) ([]driven.IndexHit, error) {
	q := map[string]any{
		"indices": query.Indices,
		"values":  query.Values,
	}
	return x.search(ctx, sparseVectorName, q, k, filter)
}

func (x *Index) search(ctx context.Context, using string, query any, k int, filter driven.Filter) ([]driven.IndexHit, error) {
	body := map[string]any{
		"query":        query,
		"using":        using,
		"limit":        k,
		"with_payload": true,
	}
	if f := buildFilter(filter); f != nil {
		body["filter"] = f
	}

	var resp struct {
		Result struct {
			Points []scoredPoint `json:"points"`
		} `json:"result"`
	}
	if err := x.do(ctx, http.MethodPost, "/collections/"+x.collection+"/points/query", body, &resp); err != nil {
		return nil, err
	}

	hits := make([]driven.IndexHit, 0, len(resp.Result.Points))
	for _, p := range resp.Result.Points {
		chunk, err := payloadToChunk(p.Payload)
		if err != nil {
			// A malformed payload drops that hit, never the search.
			logger.Warn("qdrant: dropping point %v: %v", p.ID, err)
			continue
		}
		hits = append(hits, driven.IndexHit{Chunk: chunk, Score: p.Score})
	}
	return hits, nil
}

// Scroll returns all chunks matching the filter, unscored.
func (x *Index) Scroll(ctx context.Context, filter driven.Filter) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	var offset any

	for {
		body := map[string]any{
			"limit":        scrollBatchSize,
			"with_payload": true,
		}
		if f := buildFilter(filter); f != nil {
			body["filter"] = f
		}
		if offset != nil {
			body["offset"] = offset
		}

		var resp struct {
			Result struct {
				Points         []scoredPoint `json:"points"`
				NextPageOffset any           `json:"next_page_offset"`
			} `json:"result"`
		}
		if err := x.do(ctx, http.MethodPost, "/collections/"+x.collection+"/points/scroll", body, &resp); err != nil {
			return nil, err
		}

		for _, p := range resp.Result.Points {
			chunk, err := payloadToChunk(p.Payload)
			if err != nil {
				logger.Warn("qdrant: dropping point %v: %v", p.ID, err)
				continue
			}
			chunks = append(chunks, chunk)
		}

		if resp.Result.NextPageOffset == nil {
			return chunks, nil
		}
		offset = resp.Result.NextPageOffset
	}
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}

type scoredPoint struct {
	ID      any            `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

func (x *Index) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, x.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if x.apiKey != "" {
		req.Header.Set("api-key", x.apiKey)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("qdrant error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func buildFilter(filter driven.Filter) map[string]any {
	var must []any
	if filter.SourceID != "" {
		must = append(must, map[string]any{
			"key":   "source_id",
			"match": map[string]any{"value": filter.SourceID},
		})
	}
	if filter.Section != "" {
		must = append(must, map[string]any{
			"key":   "section",
			"match": map[string]any{"value": filter.Section},
		})
	}
	if must == nil {
		return nil
	}
	return map[string]any{"must": must}
}

func chunkToPayload(chunk domain.Chunk) map[string]any {
	payload := map[string]any{
		"chunk_id":       chunk.ID,
		"source_id":      chunk.SourceID,
		"section":        chunk.Section,
		"sequence_index": chunk.SequenceIndex,
		"clause_id":      chunk.ClauseID,
		"content":        chunk.Content,
		"title":          chunk.Title,
		"authority":      chunk.Authority,
	}
	if !chunk.Date.IsZero() {
		payload["date"] = chunk.Date.Format(time.RFC3339)
	}
	for k, v := range chunk.Metadata {
		if _, reserved := payload[k]; !reserved {
			payload[k] = v
		}
	}
	return payload
}

// payloadToChunk hydrates a typed chunk from a point payload. chunk_id,
// source_id and content are mandatory; everything else degrades to its
// zero value.
func payloadToChunk(payload map[string]any) (domain.Chunk, error) {
	chunk := domain.Chunk{
		ID:        stringField(payload, "chunk_id"),
		SourceID:  stringField(payload, "source_id"),
		Section:   stringField(payload, "section"),
		ClauseID:  stringField(payload, "clause_id"),
		Content:   stringField(payload, "content"),
		Title:     stringField(payload, "title"),
		Authority: stringField(payload, "authority"),
	}
	if chunk.ID == "" {
		return domain.Chunk{}, fmt.Errorf("payload missing chunk_id")
	}
	if chunk.SourceID == "" {
		return domain.Chunk{}, fmt.Errorf("payload missing source_id")
	}
	if chunk.Content == "" {
		return domain.Chunk{}, fmt.Errorf("payload missing content")
	}

	// JSON numbers arrive as float64.
	if v, ok := payload["sequence_index"].(float64); ok {
		chunk.SequenceIndex = int(v)
	}
	if raw := stringField(payload, "date"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			chunk.Date = parsed
		}
	}

	known := map[string]struct{}{
		"chunk_id": {}, "source_id": {}, "section": {}, "sequence_index": {},
		"clause_id": {}, "content": {}, "title": {}, "authority": {}, "date": {},
	}
	for k, v := range payload {
		if _, ok := known[k]; ok {
			continue
		}
		if chunk.Metadata == nil {
			chunk.Metadata = make(map[string]any)
		}
		chunk.Metadata[k] = v
	}
	return chunk, nil
}

func stringField(payload map[string]any, key string) string {
	v, _ := payload[key].(string)
	return v
}
