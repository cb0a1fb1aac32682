package rag

import (
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/gofrs/flock"
)

var (
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrLengthMismatch    = errors.New("vectors and metadata length mismatch")
)

// ChunkMetadata is the provenance record stored alongside each vector. The
// chunk text is duplicated here so the index answers queries without
// re-reading source files.
type ChunkMetadata struct {
	WorkspaceID uint   `json:"workspace_id"`
	Category    string `json:"category"`
	Source      string `json:"source"`
	SourcePath  string `json:"source_path"`
	ChunkIndex  int    `json:"chunk_index"`
	Page        string `json:"page"`
	Timestamp   string `json:"timestamp,omitempty"`
	Text        string `json:"text"`
}

type SearchResult struct {
	Metadata ChunkMetadata `json:"metadata"`
	Score    float32       `json:"score"`
}

// VectorIndex is a flat inner-product similarity index over one workspace's
// chunks. Vectors are L2-normalized on insert so inner product equals cosine
// similarity. The index is append-only and persists the full state to disk
// on every Add; on-disk state is authoritative across restarts.
type VectorIndex struct {
	path    string
	dim     int
	vectors [][]float32
	meta    []ChunkMetadata
}

// persisted file layouts, gob-encoded
type indexFile struct {
	Dim     int
	Vectors [][]float32
}

type metaFile struct {
	Dim      int
	Metadata []ChunkMetadata
}

func (ix *VectorIndex) indexPath() string { return ix.path + ".index" }
func (ix *VectorIndex) metaPath() string  { return ix.path + ".meta" }
func (ix *VectorIndex) lockPath() string  { return ix.path + ".lock" }

// OpenIndex loads the persisted index pair at path, or starts empty when no
// pair exists. A lone half of the pair is not loadable and is reported but
// treated as no index; a pair that exists but fails to decode is an error
// rather than silently discarded.
func OpenIndex(path string) (*VectorIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("vector index path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create vector index directory failed: %w", err)
	}

	ix := &VectorIndex{path: path}

	indexExists := fileExists(ix.indexPath())
	metaExists := fileExists(ix.metaPath())
	if indexExists != metaExists {
		slog.Warn("vector index file pair is incomplete, starting empty",
			"path", path, "index_file", indexExists, "meta_file", metaExists)
		return ix, nil
	}
	if !indexExists {
		return ix, nil
	}
	if err := ix.load(); err != nil {
		return nil, err
	}
	return ix, nil
}

// Lock returns the advisory lock that serializes load-modify-persist cycles
// on this index path. Callers hold it for the duration of an ingest.
func (ix *VectorIndex) Lock() *flock.Flock {
	return flock.New(ix.lockPath())
}

func (ix *VectorIndex) Len() int { return len(ix.vectors) }

func (ix *VectorIndex) Dim() int { return ix.dim }

// Add appends vectors with their metadata and synchronously persists the
// whole index. The first batch fixes the index dimension; later batches must
// match it. Empty input is a no-op.
func (ix *VectorIndex) Add(vectors [][]float32, metadata []ChunkMetadata) error {
	if len(vectors) != len(metadata) {
		return fmt.Errorf("%w: %d vectors, %d metadata", ErrLengthMismatch, len(vectors), len(metadata))
	}
	if len(vectors) == 0 {
		return nil
	}

	if ix.dim == 0 {
		ix.dim = len(vectors[0])
	}
	for i, v := range vectors {
		if len(v) != ix.dim {
			return fmt.Errorf("%w: vector %d has dimension %d, index has %d", ErrDimensionMismatch, i, len(v), ix.dim)
		}
	}

	for _, v := range vectors {
		ix.vectors = append(ix.vectors, normalize(v))
	}
	ix.meta = append(ix.meta, metadata...)

	return ix.persist()
}

// Search returns the topK highest-scoring entries for the query vector in
// descending score order. topK <= 0 returns every stored entry; topK larger
// than the index is clamped. An empty index yields no results.
func (ix *VectorIndex) Search(query []float32, topK int) []SearchResult {
	if len(ix.vectors) == 0 || len(query) != ix.dim {
		return nil
	}

	q := normalize(query)
	results := make([]SearchResult, len(ix.vectors))
	for i, v := range ix.vectors {
		results[i] = SearchResult{Metadata: ix.meta[i], Score: dot(q, v)}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	return results
}

// Delete removes the persisted file pair and the lock file. Used when the
// owning workspace is deleted; there is no entry-level deletion.
func (ix *VectorIndex) Delete() error {
	for _, p := range []string{ix.indexPath(), ix.metaPath(), ix.lockPath()} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove index file failed: %w", err)
		}
	}
	ix.vectors = nil
	ix.meta = nil
	ix.dim = 0
	return nil
}

// RemoveIndex deletes the persisted files for an index path without loading
// it first, so even a corrupt pair can be cleaned up with its workspace.
func RemoveIndex(path string) error {
	if path == "" {
		return nil
	}
	ix := &VectorIndex{path: path}
	return ix.Delete()
}

func (ix *VectorIndex) load() error {
	var idx indexFile
	if err := decodeGobFile(ix.indexPath(), &idx); err != nil {
		return fmt.Errorf("load vector index failed: %w", err)
	}
	var meta metaFile
	if err := decodeGobFile(ix.metaPath(), &meta); err != nil {
		return fmt.Errorf("load index metadata failed: %w", err)
	}
	if len(idx.Vectors) != len(meta.Metadata) {
		return fmt.Errorf("index corrupt: %d vectors but %d metadata records", len(idx.Vectors), len(meta.Metadata))
	}
	ix.dim = idx.Dim
	ix.vectors = idx.Vectors
	ix.meta = meta.Metadata
	return nil
}

// persist writes both files through temporaries and renames them into place
// so a crash never leaves a half-written pair.
func (ix *VectorIndex) persist() error {
	if err := encodeGobFile(ix.indexPath(), indexFile{Dim: ix.dim, Vectors: ix.vectors}); err != nil {
		return fmt.Errorf("persist vector index failed: %w", err)
	}
	if err := encodeGobFile(ix.metaPath(), metaFile{Dim: ix.dim, Metadata: ix.meta}); err != nil {
		return fmt.Errorf("persist index metadata failed: %w", err)
	}
	return nil
}

func encodeGobFile(path string, v interface{}) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(v); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func decodeGobFile(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewDecoder(f).Decode(v)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// normalize returns an L2-normalized copy of v. Zero vectors are returned
// unchanged so degraded embeddings never divide by zero.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		copy(out, v)
		return out
	}
	norm := float32(math.Sqrt(sum))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
