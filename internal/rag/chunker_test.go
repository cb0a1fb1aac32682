package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestChunker skips when the tokenizer data cannot be loaded (first use
// fetches the cl100k_base vocabulary).
func newTestChunker(t *testing.T) *Chunker {
	t.Helper()
	c, err := NewChunker()
	if err != nil {
		t.Skipf("cl100k_base encoding unavailable: %v", err)
	}
	return c
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a\n\n b\t\tc \n"))
	assert.Equal(t, "", CleanText("   \n\t  "))
}

func TestChunkEmptyInput(t *testing.T) {
	c := newTestChunker(t)

	chunks, err := c.Chunk("", 100, 0.2)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = c.Chunk("   \n  ", 100, 0.2)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkShortTextSingleChunk(t *testing.T) {
	c := newTestChunker(t)

	text := "The quick brown fox jumps over the lazy dog."
	chunks, err := c.Chunk(text, 1000, 0.2)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestChunkInvalidStride(t *testing.T) {
	c := newTestChunker(t)

	_, err := c.Chunk("some text", 10, 1.0)
	assert.ErrorIs(t, err, ErrInvalidChunkConfig)

	_, err = c.Chunk("some text", 0, 0.2)
	assert.ErrorIs(t, err, ErrInvalidChunkConfig)
}

func TestChunkWindowBoundaries(t *testing.T) {
	c := newTestChunker(t)

	// 50 repeated words tokenize to well over 30 tokens; target 30 with
	// overlap 0.2 gives stride 24, so window starts land at 0, 24, 48, ...
	// until the stream end.
	words := make([]string, 50)
	for i := range words {
		words[i] = "word"
	}
	text := strings.Join(words, " ")
	total := c.CountTokens(text)
	require.Greater(t, total, 30)

	chunks, err := c.Chunk(text, 30, 0.2)
	require.NoError(t, err)

	wantChunks := (total + 23) / 24 // one window per stride step until the end
	assert.Len(t, chunks, wantChunks)
	for _, chunk := range chunks {
		assert.NotEmpty(t, chunk)
		assert.LessOrEqual(t, c.CountTokens(chunk), 30)
	}
}

func TestChunkDeterministic(t *testing.T) {
	c := newTestChunker(t)

	text := strings.Repeat("study material about vector retrieval. ", 40)
	first, err := c.Chunk(text, 30, 0.2)
	require.NoError(t, err)
	second, err := c.Chunk(text, 30, 0.2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestChunkCoverage(t *testing.T) {
	c := newTestChunker(t)

	text := strings.Repeat("alpha beta gamma delta epsilon ", 30)
	tokens := c.CountTokens(text)
	chunks, err := c.Chunk(text, 25, 0.2)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	// Stride 20 must place the last window start before the stream end and
	// the windows must jointly cover every token.
	stride := 20
	lastStart := (len(chunks) - 1) * stride
	assert.Less(t, lastStart, tokens)
	assert.GreaterOrEqual(t, lastStart+25, tokens)
}
