package cli

import (
	"context"
	"errors"
	"time"

	"github.com/lexica-labs/lexrank/internal/core/domain"
)

// mockSearchService returns a fixed response for any query.
type mockSearchService struct {
	resp *domain.SearchResponse
	err  error
}

func (m *mockSearchService) Search(_ context.Context, _ string, _ domain.SearchOptions) (*domain.SearchResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

type mockSimilarService struct {
	resp *domain.SearchResponse
	err  error
}

func (m *mockSimilarService) Similar(_ context.Context, _ string, _ domain.SearchOptions) (*domain.SearchResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

type mockConfigStore struct {
	values map[string]any
	path   string
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	v, _ := m.values[key].(string)
	return v
}

func (m *mockConfigStore) GetInt(key string) int {
	v, _ := m.values[key].(int)
	return v
}

func (m *mockConfigStore) GetFloat(key string) (float64, bool) {
	v, ok := m.values[key].(float64)
	return v, ok
}

func (m *mockConfigStore) GetBool(key string) bool {
	v, _ := m.values[key].(bool)
	return v
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	v, _ := m.values[key].([]string)
	return v
}

func (m *mockConfigStore) GetFloatMap(key string) map[string]float64 {
	v, _ := m.values[key].(map[string]float64)
	return v
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error { return nil }
func (m *mockConfigStore) Load() error { return nil }

func (m *mockConfigStore) Watch(func()) (func(), error) {
	return func() {}, nil
}

func (m *mockConfigStore) Path() string { return m.path }

func sampleResponse() *domain.SearchResponse {
	return &domain.SearchResponse{
		Results: []domain.DocumentResult{
			{
				SourceID:  "2020Da12345",
				Title:     "Acme v. Baker",
				Authority: "Supreme Court",
				Date:      time.Date(2020, 5, 12, 0, 0, 0, 0, time.UTC),
				Snippet:   "The court held that liability attaches.",
				Score:     0.91,
				Chunks: []domain.ScoredCandidate{
					{Chunk: domain.Chunk{ID: "c1", SourceID: "2020Da12345", ClauseID: "2"}},
				},
			},
		},
		Complete: true,
	}
}

// setupTestServices installs mock services and returns a cleanup func.
func setupTestServices() func() {
	oldSearch, oldLaws, oldSimilar, oldConfig := searchService, lawService, similarService, configStore

	searchService = &mockSearchService{resp: sampleResponse()}
	lawService = &mockSearchService{resp: sampleResponse()}
	similarService = &mockSimilarService{resp: sampleResponse()}
	configStore = &mockConfigStore{
		values: map[string]any{"ranking.score_floor": 0.15},
		path:   "/tmp/lexrank-test/config.toml",
	}

	return func() {
		searchService = oldSearch
		lawService = oldLaws
		similarService = oldSimilar
		configStore = oldConfig
	}
}

var errServiceDown = errors.New("backend unavailable")
