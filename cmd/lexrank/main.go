// Command lexrank is the hybrid legal retrieval CLI. All wiring of
// adapters to core services happens here; the packages underneath only
// know their ports.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/lexica-labs/lexrank/internal/adapters/driven/config/file"
	"github.com/lexica-labs/lexrank/internal/adapters/driven/embedding/cached"
	"github.com/lexica-labs/lexrank/internal/adapters/driven/embedding/openai"
	"github.com/lexica-labs/lexrank/internal/adapters/driven/index/qdrant"
	"github.com/lexica-labs/lexrank/internal/adapters/driven/index/sqlite"
	"github.com/lexica-labs/lexrank/internal/adapters/driven/rerank/httpapi"
	"github.com/lexica-labs/lexrank/internal/adapters/driven/sparse/bm25"
	"github.com/lexica-labs/lexrank/internal/adapters/driving/cli"
	"github.com/lexica-labs/lexrank/internal/core/ports/driven"
	"github.com/lexica-labs/lexrank/internal/core/services"
	"github.com/lexica-labs/lexrank/internal/logger"
)

// version is injected at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := file.NewConfigStore(os.Getenv("LEXRANK_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	defer embedder.Close()

	index, err := buildIndex(cfg)
	if err != nil {
		return err
	}
	defer index.Close()

	sparse := bm25.NewEncoder(bm25.Config{
		K1:        floatOr(cfg, "sparse.k1", 0),
		B:         floatOr(cfg, "sparse.b", 0),
		AvgDocLen: floatOr(cfg, "sparse.avg_doc_len", 0),
	})

	var reranker driven.Reranker
	if endpoint := cfg.GetString("reranker.endpoint"); endpoint != "" {
		reranker = httpapi.NewReranker(httpapi.Config{
			Endpoint: endpoint,
			Model:    cfg.GetString("reranker.model"),
		})
		defer reranker.Close()
	}

	tuning := services.TuningFromConfig(cfg)
	search := services.NewSearchService(index, embedder, sparse, reranker, tuning)
	laws := services.NewLawSearchService(index, embedder, sparse, tuning)
	similar := services.NewSimilarService(index, embedder, sparse, tuning)

	// Ranking weights stay tunable while the process runs.
	stop, err := cfg.Watch(func() {
		t := services.TuningFromConfig(cfg)
		search.SetTuning(t)
		laws.SetTuning(t)
		similar.SetTuning(t)
		logger.Info("configuration reloaded from %s", cfg.Path())
	})
	if err != nil {
		logger.Warn("config watch unavailable: %v", err)
	} else {
		defer stop()
	}

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Search:  search,
		Laws:    laws,
		Similar: similar,
		Config:  cfg,
	})
	return cli.Execute()
}

func buildEmbedder(cfg driven.ConfigStore) (driven.EmbeddingService, error) {
	apiKey := cfg.GetString("embedding.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	svc, err := openai.NewEmbeddingService(openai.Config{
		APIKey:            apiKey,
		BaseURL:           cfg.GetString("embedding.base_url"),
		Model:             cfg.GetString("embedding.model"),
		Dimensions:        cfg.GetInt("embedding.dimensions"),
		Timeout:           durationOr(cfg, "embedding.timeout_seconds", 0),
		RequestsPerSecond: floatOr(cfg, "embedding.requests_per_second", 0),
	})
	if err != nil {
		return nil, fmt.Errorf("configuring embedding provider: %w", err)
	}
	return cached.NewEmbeddingService(svc, cfg.GetInt("embedding.cache_size")), nil
}

func buildIndex(cfg driven.ConfigStore) (driven.VectorIndex, error) {
	switch backend := cfg.GetString("index.backend"); backend {
	case "", "qdrant":
		return qdrant.NewIndex(qdrant.Config{
			BaseURL:    cfg.GetString("index.url"),
			APIKey:     cfg.GetString("index.api_key"),
			Collection: cfg.GetString("index.collection"),
		}), nil
	case "sqlite":
		idx, err := sqlite.NewIndex(cfg.GetString("index.data_dir"))
		if err != nil {
			return nil, fmt.Errorf("opening local index: %w", err)
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("unknown index backend %q", backend)
	}
}

func floatOr(cfg driven.ConfigStore, key string, fallback float64) float64 {
	if v, ok := cfg.GetFloat(key); ok {
		return v
	}
	return fallback
}

func durationOr(cfg driven.ConfigStore, key string, fallback time.Duration) time.Duration {
	if v := cfg.GetInt(key); v > 0 {
		return time.Duration(v) * time.Second
	}
	return fallback
}
