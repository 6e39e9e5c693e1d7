// Package sqlite implements the vector index port on a local SQLite
// database. Search is a brute-force scan with scoring in Go, which is
// fine for the corpus sizes a local index holds; the Qdrant adapter
// covers everything larger.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/lexica-labs/lexrank/internal/adapters/driven/index/sqlite/migrations"
	"github.com/lexica-labs/lexrank/internal/core/domain"
	"github.com/lexica-labs/lexrank/internal/core/ports/driven"
)

var _ driven.VectorIndex = (*Index)(nil)

// Index is a SQLite-backed vector index.
type Index struct {
	db   *sql.DB
	path string
}

// NewIndex opens (or creates) a SQLite index at the specified data
// directory. If dataDir is empty, defaults to ~/.lexrank/data/index.db.
func NewIndex(dataDir string) (*Index, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".lexrank", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	x := &Index{db: db, path: dbPath}
	if err := x.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return x, nil
}

// Path returns the database file path.
func (x *Index) Path() string {
	return x.path
}

// Close closes the database connection.
func (x *Index) Close() error {
	return x.db.Close()
}

// Upsert writes a chunk with both of its vectors.
func (x *Index) Upsert(ctx context.Context, chunk domain.Chunk, dense []float32, sparse domain.SparseVector) error {
	metadataJSON, err := json.Marshal(chunk.Metadata)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}

	var date any
	if !chunk.Date.IsZero() {
		date = chunk.Date.UTC().Format(time.RFC3339)
	}

	_, err = x.db.ExecContext(ctx, `
		INSERT INTO chunks (id, source_id, section, sequence_index, clause_id,
			content, title, authority, date, metadata,
			dense, sparse_indices, sparse_values)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_id = excluded.source_id,
			section = excluded.section,
			sequence_index = excluded.sequence_index,
			clause_id = excluded.clause_id,
			content = excluded.content,
			title = excluded.title,
			authority = excluded.authority,
			date = excluded.date,
			metadata = excluded.metadata,
			dense = excluded.dense,
			sparse_indices = excluded.sparse_indices,
			sparse_values = excluded.sparse_values
	`, chunk.ID, chunk.SourceID, chunk.Section, chunk.SequenceIndex, chunk.ClauseID,
		chunk.Content, chunk.Title, chunk.Authority, date, string(metadataJSON),
		float32SliceToBytes(dense), uint32SliceToBytes(sparse.Indices), float32SliceToBytes(sparse.Values))
	if err != nil {
		return fmt.Errorf("upserting chunk: %w", err)
	}
	return nil
}

// Delete removes all chunks matching the filter.
func (x *Index) Delete(ctx context.Context, filter driven.Filter) error {
	where, args := filterClause(filter)
	if _, err := x.db.ExecContext(ctx, "DELETE FROM chunks"+where, args...); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// SearchDense finds the k nearest chunks by cosine similarity.
func (x *Index) SearchDense(ctx context.Context, query []float32, k int, filter driven.Filter) ([]driven.IndexHit, error) {
	return x.scan(ctx, k, filter, func(dense []float32, _ domain.SparseVector) float64 {
		return cosine(query, dense)
	})
}

// SearchSparse finds the k best chunks by sparse dot product.
func (x *Index) SearchSparse(ctx context.Context, query domain.SparseVector, k int, filter driven.Filter) ([]driven.IndexHit, error) {
	return x.scan(ctx, k, filter, func(_ []float32, sparse domain.SparseVector) float64 {
		return sparseDot(query, sparse)
	})
}

func (x *Index) scan(ctx context.Context, k int, filter driven.Filter, score func([]float32, domain.SparseVector) float64) ([]driven.IndexHit, error) {
	where, args := filterClause(filter)
	rows, err := x.db.QueryContext(ctx, `
		SELECT id, source_id, section, sequence_index, clause_id,
			content, title, authority, date, metadata,
			dense, sparse_indices, sparse_values
		FROM chunks`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var hits []driven.IndexHit
	for rows.Next() {
		chunk, dense, sparse, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		s := score(dense, sparse)
		if s <= 0 {
			continue
		}
		hits = append(hits, driven.IndexHit{Chunk: chunk, Score: s})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Chunk.ID < hits[j].Chunk.ID
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Scroll returns all chunks matching the filter in document order.
func (x *Index) Scroll(ctx context.Context, filter driven.Filter) ([]domain.Chunk, error) {
	where, args := filterClause(filter)
	rows, err := x.db.QueryContext(ctx, `
		SELECT id, source_id, section, sequence_index, clause_id,
			content, title, authority, date, metadata,
			dense, sparse_indices, sparse_values
		FROM chunks`+where+` ORDER BY source_id, sequence_index`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		chunk, _, _, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// migrate runs all pending migrations.
func (x *Index) migrate(fsys embed.FS) error {
	_, err := x.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := x.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := x.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := x.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

func filterClause(filter driven.Filter) (string, []any) {
	var conds []string
	var args []any
	if filter.SourceID != "" {
		conds = append(conds, "source_id = ?")
		args = append(args, filter.SourceID)
	}
	if filter.Section != "" {
		conds = append(conds, "section = ?")
		args = append(args, filter.Section)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanChunk(rows *sql.Rows) (domain.Chunk, []float32, domain.SparseVector, error) {
	var chunk domain.Chunk
	var date sql.NullString
	var metadataJSON string
	var denseBlob, indicesBlob, valuesBlob []byte

	if err := rows.Scan(&chunk.ID, &chunk.SourceID, &chunk.Section, &chunk.SequenceIndex,
		&chunk.ClauseID, &chunk.Content, &chunk.Title, &chunk.Authority, &date, &metadataJSON,
		&denseBlob, &indicesBlob, &valuesBlob); err != nil {
		return domain.Chunk{}, nil, domain.SparseVector{}, fmt.Errorf("scanning chunk: %w", err)
	}

	if date.Valid && date.String != "" {
		if parsed, err := time.Parse(time.RFC3339, date.String); err == nil {
			chunk.Date = parsed
		}
	}
	if metadataJSON != "" && metadataJSON != "null" {
		if err := json.Unmarshal([]byte(metadataJSON), &chunk.Metadata); err != nil {
			return domain.Chunk{}, nil, domain.SparseVector{}, fmt.Errorf("unmarshaling chunk metadata: %w", err)
		}
	}

	sparse := domain.SparseVector{
		Indices: bytesToUint32Slice(indicesBlob),
		Values:  bytesToFloat32Slice(valuesBlob),
	}
	return chunk, bytesToFloat32Slice(denseBlob), sparse, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// uint32SliceToBytes converts a []uint32 to a byte slice for storage.
func uint32SliceToBytes(values []uint32) []byte {
	if len(values) == 0 {
		return nil
	}
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}

// bytesToUint32Slice converts a byte slice back to []uint32.
func bytesToUint32Slice(data []byte) []uint32 {
	if len(data) == 0 {
		return nil
	}
	values := make([]uint32, len(data)/4)
	for i := range values {
		values[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return values
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func sparseDot(a, b domain.SparseVector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			dot += float64(a.Values[i]) * float64(b.Values[j])
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return dot
}
