package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3:latest", req["model"])
		assert.Equal(t, false, req["stream"])

		fmt.Fprint(w, `{"message":{"role":"assistant","content":"hello there"},"done":true}`)
	}))
	defer server.Close()

	client := NewOllamaClient()
	answer, err := client.Complete(context.Background(), ChatConfig{
		BaseURL:     server.URL,
		Model:       "llama3:latest",
		Temperature: 0.7,
	}, []ChatMessage{{Role: "user", Content: "hi"}})

	require.NoError(t, err)
	assert.Equal(t, "hello there", answer)
}

func TestCompleteErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewOllamaClient()
	_, err := client.Complete(context.Background(), ChatConfig{BaseURL: server.URL, Model: "missing"}, nil)
	assert.Error(t, err)
}

func TestStreamComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"content":"foo "},"done":false}`)
		fmt.Fprintln(w, `{"message":{"content":"bar"},"done":false}`)
		fmt.Fprintln(w, `{"message":{"content":""},"done":true}`)
	}))
	defer server.Close()

	var chunks []string
	client := NewOllamaClient()
	full, err := client.StreamComplete(context.Background(), ChatConfig{
		BaseURL: server.URL,
		Model:   "llama3:latest",
	}, []ChatMessage{{Role: "user", Content: "hi"}}, func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "foo bar", full)
	assert.Equal(t, []string{"foo ", "bar"}, chunks)
}

func TestStreamCompleteChunkCallbackError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"content":"foo"},"done":false}`)
	}))
	defer server.Close()

	client := NewOllamaClient()
	_, err := client.StreamComplete(context.Background(), ChatConfig{
		BaseURL: server.URL,
		Model:   "llama3:latest",
	}, nil, func(string) error {
		return fmt.Errorf("client went away")
	})
	assert.ErrorContains(t, err, "client went away")
}

func TestEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embeddings", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req["model"])
		assert.Equal(t, "some text", req["prompt"])

		fmt.Fprint(w, `{"embedding":[0.1,0.2,0.3]}`)
	}))
	defer server.Close()

	client := NewOllamaClient()
	vec, err := client.Embed(context.Background(), EmbeddingConfig{
		BaseURL: server.URL,
		Model:   "nomic-embed-text",
	}, "some text")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestEmbedEmptyInput(t *testing.T) {
	client := NewOllamaClient()
	_, err := client.Embed(context.Background(), EmbeddingConfig{BaseURL: "http://127.0.0.1:1", Model: "m"}, "   ")
	assert.Error(t, err)
}

func TestEmbedEmptyVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"embedding":[]}`)
	}))
	defer server.Close()

	client := NewOllamaClient()
	_, err := client.Embed(context.Background(), EmbeddingConfig{BaseURL: server.URL, Model: "m"}, "text")
	assert.Error(t, err)
}
