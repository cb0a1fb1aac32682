package rag

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// directionClient maps known texts to fixed unit directions so retrieval
// ordering is predictable.
type directionClient struct {
	directions map[string][]float32
}

func (d *directionClient) Embed(_ context.Context, text string) ([]float32, error) {
	if vec, ok := d.directions[text]; ok {
		return vec, nil
	}
	return []float32{1, 0, 0}, nil
}

func buildTestIndex(t *testing.T) *VectorIndex {
	t.Helper()
	ix, err := OpenIndex(filepath.Join(t.TempDir(), "ws"))
	require.NoError(t, err)

	vectors := [][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	meta := []ChunkMetadata{
		{WorkspaceID: 7, Category: "notes", Source: "calculus.pdf", ChunkIndex: 0, Page: "1", Text: "derivatives"},
		{WorkspaceID: 7, Category: "notes", Source: "algebra.pdf", ChunkIndex: 0, Page: "2", Text: "matrices"},
		{WorkspaceID: 7, Category: "qpapers", Source: "exam-2024.pdf", ChunkIndex: 0, Text: "past questions"},
	}
	require.NoError(t, ix.Add(vectors, meta))
	return ix
}

func TestRetrieveTopK(t *testing.T) {
	client := &directionClient{directions: map[string][]float32{
		"what are matrices": {0, 1, 0},
	}}
	r := NewRetriever(NewEmbedder(client), RetrievalPolicy{TopK: 2})

	contextBlock, sources, err := r.Retrieve(context.Background(), "what are matrices", buildTestIndex(t))
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, "algebra.pdf", sources[0].Source)
	assert.InDelta(t, 1.0, float64(sources[0].Relevance), 1e-5)
	assert.True(t, strings.HasPrefix(contextBlock, "[1] Source: algebra.pdf (Page 2, Category: notes)"))
	assert.Contains(t, contextBlock, "Content: matrices")
}

func TestRetrieveAllResults(t *testing.T) {
	r := NewRetriever(NewEmbedder(&directionClient{}), RetrievalPolicy{TopK: 1, AllResults: true})

	_, sources, err := r.Retrieve(context.Background(), "anything", buildTestIndex(t))
	require.NoError(t, err)
	assert.Len(t, sources, 3)
}

func TestRetrieveEmptyIndex(t *testing.T) {
	r := NewRetriever(NewEmbedder(&directionClient{}), RetrievalPolicy{TopK: 5})

	ix, err := OpenIndex(filepath.Join(t.TempDir(), "empty"))
	require.NoError(t, err)

	contextBlock, sources, err := r.Retrieve(context.Background(), "anything", ix)
	require.NoError(t, err)
	assert.Empty(t, contextBlock)
	assert.Empty(t, sources)
}

func TestRetrieveNilIndex(t *testing.T) {
	r := NewRetriever(NewEmbedder(&directionClient{}), RetrievalPolicy{TopK: 5})

	contextBlock, sources, err := r.Retrieve(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Empty(t, contextBlock)
	assert.Empty(t, sources)
}

func TestFormatContextMissingPage(t *testing.T) {
	block := FormatContext([]SearchResult{{
		Metadata: ChunkMetadata{Source: "audio.mp3", Category: "notes", Text: "transcript"},
		Score:    0.75,
	}})
	assert.Contains(t, block, "(Page ?, Category: notes)")
	assert.Contains(t, block, "Relevance: 0.75")
}

func TestParseMode(t *testing.T) {
	for _, valid := range []string{"", "chat", "summary", "points", "flashcards", "teacher", "exam"} {
		mode, err := ParseMode(valid)
		require.NoError(t, err, valid)
		assert.NotEmpty(t, mode.Instructions())
	}

	_, err := ParseMode("poetry")
	assert.Error(t, err)
}
