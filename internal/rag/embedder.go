package rag

import (
	"context"
	"log/slog"
)

// defaultEmbeddingDim sizes the zero vector substituted for a failed call
// when no dimension has been learned yet (nomic-embed-text).
const defaultEmbeddingDim = 768

// EmbeddingClient is the provider boundary: one text in, one vector out.
type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Embedder converts chunk text into vectors. A failed provider call degrades
// that chunk to a zero vector instead of aborting the batch; the caller gets
// the degraded count back so it can decide whether the loss is acceptable.
type Embedder struct {
	client EmbeddingClient
}

func NewEmbedder(client EmbeddingClient) *Embedder {
	return &Embedder{client: client}
}

// Embed returns the embedding for a single text, or an error if the provider
// call fails. Query embedding uses this path: a degraded query vector would
// silently match nothing, so failures surface.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.client.Embed(ctx, text)
}

// EmbedBatch embeds every text, substituting a zero vector of the expected
// dimension for any failed call. expectedDim may be zero when the index is
// still empty; the dimension of the first successful embedding (or the model
// default) is used instead. Returns the vectors and how many were degraded.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string, expectedDim int) ([][]float32, int) {
	vectors := make([][]float32, len(texts))
	degraded := 0

	dim := expectedDim
	var pendingZero []int

	for i, text := range texts {
		vec, err := e.client.Embed(ctx, text)
		if err != nil {
			slog.Warn("embedding degraded to zero vector", "chunk", i, "error", err)
			degraded++
			if dim > 0 {
				vectors[i] = make([]float32, dim)
			} else {
				pendingZero = append(pendingZero, i)
			}
			continue
		}
		if dim == 0 {
			dim = len(vec)
		}
		vectors[i] = vec
	}

	if dim == 0 {
		dim = defaultEmbeddingDim
	}
	for _, i := range pendingZero {
		vectors[i] = make([]float32, dim)
	}
	return vectors, degraded
}
