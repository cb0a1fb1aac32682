package rag

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIndexPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "ws-1")
}

func metaFor(source string, n int) []ChunkMetadata {
	out := make([]ChunkMetadata, n)
	for i := range out {
		out[i] = ChunkMetadata{
			WorkspaceID: 1,
			Category:    "notes",
			Source:      source,
			SourcePath:  "/tmp/" + source,
			ChunkIndex:  i,
			Page:        "?",
			Text:        source + " chunk",
		}
	}
	return out
}

func TestOpenIndexEmpty(t *testing.T) {
	ix, err := OpenIndex(testIndexPath(t))
	require.NoError(t, err)

	assert.Equal(t, 0, ix.Len())
	assert.Empty(t, ix.Search([]float32{1, 0, 0}, 5))
}

func TestAddFixesDimension(t *testing.T) {
	ix, err := OpenIndex(testIndexPath(t))
	require.NoError(t, err)

	require.NoError(t, ix.Add([][]float32{{1, 0, 0}}, metaFor("a.pdf", 1)))
	assert.Equal(t, 3, ix.Dim())

	err = ix.Add([][]float32{{1, 0}}, metaFor("b.pdf", 1))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, 1, ix.Len())
}

func TestAddLengthMismatch(t *testing.T) {
	ix, err := OpenIndex(testIndexPath(t))
	require.NoError(t, err)

	err = ix.Add([][]float32{{1, 0}}, nil)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestAddEmptyIsNoop(t *testing.T) {
	ix, err := OpenIndex(testIndexPath(t))
	require.NoError(t, err)

	require.NoError(t, ix.Add(nil, nil))
	assert.Equal(t, 0, ix.Len())
	assert.Equal(t, 0, ix.Dim())
}

func TestSearchSelfSimilarity(t *testing.T) {
	ix, err := OpenIndex(testIndexPath(t))
	require.NoError(t, err)

	v := []float32{0.3, 0.4, 0.5}
	require.NoError(t, ix.Add([][]float32{v, {0, 1, 0}}, metaFor("a.pdf", 2)))

	results := ix.Search(v, 2)
	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].Metadata.ChunkIndex)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-5)
}

func TestSearchTopKClamp(t *testing.T) {
	ix, err := OpenIndex(testIndexPath(t))
	require.NoError(t, err)

	require.NoError(t, ix.Add([][]float32{{1, 0}, {0, 1}, {1, 1}}, metaFor("a.pdf", 3)))

	results := ix.Search([]float32{1, 0}, 10)
	assert.Len(t, results, 3)

	seen := map[int]bool{}
	for _, r := range results {
		assert.False(t, seen[r.Metadata.ChunkIndex], "duplicate result")
		seen[r.Metadata.ChunkIndex] = true
	}
}

func TestSearchAllResults(t *testing.T) {
	ix, err := OpenIndex(testIndexPath(t))
	require.NoError(t, err)

	require.NoError(t, ix.Add([][]float32{{1, 0}, {0, 1}, {-1, 0}}, metaFor("a.pdf", 3)))

	// topK <= 0 means the whole corpus, sorted by score.
	results := ix.Search([]float32{1, 0}, 0)
	require.Len(t, results, 3)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestSearchRanksMatchingSourceFirst(t *testing.T) {
	ix, err := OpenIndex(testIndexPath(t))
	require.NoError(t, err)

	require.NoError(t, ix.Add([][]float32{{1, 0, 0}}, metaFor("first.pdf", 1)))
	require.NoError(t, ix.Add([][]float32{{0, 0, 1}}, metaFor("second.pdf", 1)))

	results := ix.Search([]float32{0, 0.1, 0.9}, 2)
	require.Len(t, results, 2)
	assert.Equal(t, "second.pdf", results[0].Metadata.Source)
	assert.Equal(t, "first.pdf", results[1].Metadata.Source)
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := testIndexPath(t)

	ix, err := OpenIndex(path)
	require.NoError(t, err)
	require.NoError(t, ix.Add([][]float32{{1, 0, 0}, {0, 1, 0}, {0.5, 0.5, 0}}, metaFor("a.pdf", 3)))

	reloaded, err := OpenIndex(path)
	require.NoError(t, err)
	require.Equal(t, ix.Len(), reloaded.Len())
	require.Equal(t, ix.Dim(), reloaded.Dim())

	query := []float32{0.9, 0.1, 0}
	want := ix.Search(query, 0)
	got := reloaded.Search(query, 0)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Metadata, got[i].Metadata)
		assert.InDelta(t, float64(want[i].Score), float64(got[i].Score), 1e-6)
	}
}

func TestOpenIndexLonePairHalfStartsEmpty(t *testing.T) {
	path := testIndexPath(t)

	ix, err := OpenIndex(path)
	require.NoError(t, err)
	require.NoError(t, ix.Add([][]float32{{1, 0}}, metaFor("a.pdf", 1)))

	// Drop one half of the pair; the reload must not trust the remainder.
	require.NoError(t, os.Remove(path+".index"))

	reloaded, err := OpenIndex(path)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Len())
}

func TestDeleteRemovesFiles(t *testing.T) {
	path := testIndexPath(t)

	ix, err := OpenIndex(path)
	require.NoError(t, err)
	require.NoError(t, ix.Add([][]float32{{1, 0}}, metaFor("a.pdf", 1)))
	require.NoError(t, ix.Delete())

	assert.False(t, fileExists(path+".index"))
	assert.False(t, fileExists(path+".meta"))

	reloaded, err := OpenIndex(path)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Len())
}

func TestNormalizeZeroVector(t *testing.T) {
	out := normalize([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, out)
}

func TestNormalizeUnitLength(t *testing.T) {
	out := normalize([]float32{3, 4})
	var sum float64
	for _, x := range out {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)
}
