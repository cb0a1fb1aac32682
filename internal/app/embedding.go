package app

import (
	"context"

	"studyrag/internal/ai"
	"studyrag/internal/rag"
)

// boundEmbeddingClient fixes the embedding endpoint config onto the shared
// Ollama client so the rag package only sees text-in, vector-out.
type boundEmbeddingClient struct {
	client *ai.OllamaClient
	cfg    ai.EmbeddingConfig
}

func NewEmbeddingClient(client *ai.OllamaClient, cfg ai.EmbeddingConfig) rag.EmbeddingClient {
	return &boundEmbeddingClient{client: client, cfg: cfg}
}

func (b *boundEmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	return b.client.Embed(ctx, b.cfg, text)
}
