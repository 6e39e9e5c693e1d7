// Package bm25 provides a lexical sparse encoder with BM25-style term
// weighting over a hashed vocabulary. Index construction and query
// encoding share the same hash, so no vocabulary file is shipped.
package bm25

import (
	"context"
	"hash/fnv"
	"sort"
	"strings"
	"unicode"

	"github.com/lexica-labs/lexrank/internal/core/domain"
	"github.com/lexica-labs/lexrank/internal/core/ports/driven"
)

var _ driven.SparseEncoder = (*Encoder)(nil)

// Default BM25 parameters.
const (
	DefaultK1        = 1.2
	DefaultB         = 0.75
	DefaultAvgDocLen = 120
)

// Config holds BM25 weighting parameters.
type Config struct {
	// K1 controls term-frequency saturation (default 1.2).
	K1 float64

	// B controls document-length normalization (default 0.75).
	B float64

	// AvgDocLen is the average token count per chunk in the corpus
	// (default 120). Only affects document encoding, never queries.
	AvgDocLen float64
}

// Encoder maps text to a sparse vector keyed by FNV-1a token hashes.
// Encoding is deterministic: the same text always yields the same
// vector, on any machine.
type Encoder struct {
	k1        float64
	b         float64
	avgDocLen float64
}

// NewEncoder creates a BM25 encoder. Zero-valued fields in cfg fall
// back to the defaults.
func NewEncoder(cfg Config) *Encoder {
	if cfg.K1 == 0 {
		cfg.K1 = DefaultK1
	}
	if cfg.B == 0 {
		cfg.B = DefaultB
	}
	if cfg.AvgDocLen == 0 {
		cfg.AvgDocLen = DefaultAvgDocLen
	}
	return &Encoder{k1: cfg.K1, b: cfg.B, avgDocLen: cfg.AvgDocLen}
}

// Encode converts query text to a sparse vector. Query terms are not
// length-normalized; a short query must not outweigh a long one.
func (e *Encoder) Encode(ctx context.Context, text string) (domain.SparseVector, error) {
	return e.encode(text, false), nil
}

// EncodeBatch converts multiple texts, preserving input order. Texts
// are treated as documents and length-normalized.
func (e *Encoder) EncodeBatch(ctx context.Context, texts []string) ([]domain.SparseVector, error) {
	vectors := make([]domain.SparseVector, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = e.encode(text, true)
	}
	return vectors, nil
}

// Name identifies the encoding scheme. Vectors from differently named
// encoders must never be compared.
func (e *Encoder) Name() string {
	return "bm25-fnv1a"
}

func (e *Encoder) encode(text string, normalize bool) domain.SparseVector {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return domain.SparseVector{}
	}

	counts := make(map[uint32]float64, len(tokens))
	for _, tok := range tokens {
		counts[hashToken(tok)]++
	}

	norm := 1.0
	if normalize {
		norm = 1 - e.b + e.b*float64(len(tokens))/e.avgDocLen
	}

	indices := make([]uint32, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	values := make([]float32, len(indices))
	for i, idx := range indices {
		tf := counts[idx]
		values[i] = float32(tf * (e.k1 + 1) / (tf + e.k1*norm))
	}
	return domain.SparseVector{Indices: indices, Values: values}
}

func hashToken(tok string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(tok))
	return h.Sum32()
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
