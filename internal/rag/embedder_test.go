package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbeddingClient returns canned vectors and fails on marked inputs.
type fakeEmbeddingClient struct {
	dim      int
	failOn   map[string]bool
	requests int
}

func (f *fakeEmbeddingClient) Embed(_ context.Context, text string) ([]float32, error) {
	f.requests++
	if f.failOn[text] {
		return nil, errors.New("provider unavailable")
	}
	vec := make([]float32, f.dim)
	for i := range vec {
		vec[i] = float32(len(text)%7 + i)
	}
	return vec, nil
}

func TestEmbedBatchAllHealthy(t *testing.T) {
	client := &fakeEmbeddingClient{dim: 4}
	e := NewEmbedder(client)

	vectors, degraded := e.EmbedBatch(context.Background(), []string{"one", "two", "three"}, 0)
	require.Len(t, vectors, 3)
	assert.Equal(t, 0, degraded)
	assert.Equal(t, 3, client.requests)
	for _, v := range vectors {
		assert.Len(t, v, 4)
	}
}

func TestEmbedBatchDegradesFailedChunk(t *testing.T) {
	client := &fakeEmbeddingClient{dim: 4, failOn: map[string]bool{"bad": true}}
	e := NewEmbedder(client)

	vectors, degraded := e.EmbedBatch(context.Background(), []string{"good", "bad", "also good"}, 0)
	require.Len(t, vectors, 3)
	assert.Equal(t, 1, degraded)

	assert.Equal(t, make([]float32, 4), vectors[1])
	assert.NotEqual(t, make([]float32, 4), vectors[0])
}

func TestEmbedBatchFailureBeforeFirstSuccess(t *testing.T) {
	client := &fakeEmbeddingClient{dim: 4, failOn: map[string]bool{"bad": true}}
	e := NewEmbedder(client)

	// The leading failure's zero vector takes the dimension of the first
	// success that follows it.
	vectors, degraded := e.EmbedBatch(context.Background(), []string{"bad", "good"}, 0)
	require.Len(t, vectors, 2)
	assert.Equal(t, 1, degraded)
	assert.Len(t, vectors[0], 4)
	assert.Len(t, vectors[1], 4)
}

func TestEmbedBatchRespectsExpectedDim(t *testing.T) {
	client := &fakeEmbeddingClient{dim: 4, failOn: map[string]bool{"bad": true}}
	e := NewEmbedder(client)

	vectors, degraded := e.EmbedBatch(context.Background(), []string{"bad"}, 16)
	require.Len(t, vectors, 1)
	assert.Equal(t, 1, degraded)
	assert.Len(t, vectors[0], 16)
}

func TestEmbedBatchAllFailedUsesDefaultDim(t *testing.T) {
	client := &fakeEmbeddingClient{dim: 4, failOn: map[string]bool{"bad": true}}
	e := NewEmbedder(client)

	vectors, degraded := e.EmbedBatch(context.Background(), []string{"bad"}, 0)
	require.Len(t, vectors, 1)
	assert.Equal(t, 1, degraded)
	assert.Len(t, vectors[0], defaultEmbeddingDim)
}

func TestEmbedQueryErrorSurfaces(t *testing.T) {
	client := &fakeEmbeddingClient{dim: 4, failOn: map[string]bool{"query": true}}
	e := NewEmbedder(client)

	_, err := e.Embed(context.Background(), "query")
	assert.Error(t, err)
}
