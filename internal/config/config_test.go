package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	assert.Equal(t, "studyrag", cfg.App.Name)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.BaseURL)
	assert.Equal(t, 1000, cfg.RAG.ChunkSize)
	assert.InDelta(t, 0.2, cfg.RAG.OverlapPercent, 1e-9)
	assert.Equal(t, 5, cfg.RAG.TopK)
	assert.False(t, cfg.RAG.AllResults)
	require.NoError(t, cfg.RAG.Validate())
}

func TestRAGConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RAGConfig
		wantErr bool
	}{
		{name: "valid", cfg: RAGConfig{ChunkSize: 1000, OverlapPercent: 0.2}},
		{name: "zero overlap", cfg: RAGConfig{ChunkSize: 100, OverlapPercent: 0}},
		{name: "zero chunk size", cfg: RAGConfig{ChunkSize: 0, OverlapPercent: 0.2}, wantErr: true},
		{name: "negative chunk size", cfg: RAGConfig{ChunkSize: -5, OverlapPercent: 0.2}, wantErr: true},
		{name: "overlap one", cfg: RAGConfig{ChunkSize: 100, OverlapPercent: 1.0}, wantErr: true},
		{name: "negative overlap", cfg: RAGConfig{ChunkSize: 100, OverlapPercent: -0.1}, wantErr: true},
		// chunk 1 with 0.9 overlap floors to 0 overlap, stride 1: valid
		{name: "tiny chunk high overlap", cfg: RAGConfig{ChunkSize: 1, OverlapPercent: 0.9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RAG_CHUNK_SIZE", "512")
	t.Setenv("RAG_TOP_K", "7")
	t.Setenv("RAG_ALL_RESULTS", "true")
	t.Setenv("RAG_OVERLAP_PERCENT", "0.1")
	t.Setenv("LLM_CHAT_MODEL", "mistral")

	cfg := defaultConfig()
	overrideByEnv(cfg)

	assert.Equal(t, 512, cfg.RAG.ChunkSize)
	assert.Equal(t, 7, cfg.RAG.TopK)
	assert.True(t, cfg.RAG.AllResults)
	assert.InDelta(t, 0.1, cfg.RAG.OverlapPercent, 1e-9)
	assert.Equal(t, "mistral", cfg.LLM.ChatModel)
}

func TestEnvOverrideBadIntFallsBack(t *testing.T) {
	t.Setenv("RAG_TOP_K", "not-a-number")

	cfg := defaultConfig()
	overrideByEnv(cfg)

	assert.Equal(t, 5, cfg.RAG.TopK)
}
