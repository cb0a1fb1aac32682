package rag

import (
	"context"
	"fmt"
	"strings"
)

// RetrievalPolicy decides how much context a query pulls from an index:
// either a bounded top-k or, when AllResults is set, the entire corpus.
// The policy is global, not per workspace.
type RetrievalPolicy struct {
	TopK       int
	AllResults bool
}

// Source identifies where one retrieved context entry came from.
type Source struct {
	Source    string  `json:"source"`
	Page      string  `json:"page"`
	Category  string  `json:"category"`
	Relevance float32 `json:"relevance"`
}

// Retriever embeds a query and pulls the most relevant chunks out of a
// workspace index, formatted as a numbered context block for the generator.
type Retriever struct {
	embedder *Embedder
	policy   RetrievalPolicy
}

func NewRetriever(embedder *Embedder, policy RetrievalPolicy) *Retriever {
	return &Retriever{embedder: embedder, policy: policy}
}

// Retrieve returns the formatted context block and the source list for the
// query, most relevant first. An empty or absent index yields empty context,
// not an error: chat degrades to a context-free answer.
func (r *Retriever) Retrieve(ctx context.Context, query string, index *VectorIndex) (string, []Source, error) {
	if index == nil || index.Len() == 0 {
		return "", nil, nil
	}

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return "", nil, fmt.Errorf("embed query failed: %w", err)
	}

	topK := r.policy.TopK
	if r.policy.AllResults {
		topK = 0
	}
	results := index.Search(queryVec, topK)
	if len(results) == 0 {
		return "", nil, nil
	}

	return FormatContext(results), sourcesOf(results), nil
}

// FormatContext renders search results as numbered context entries. The
// descending-score ordering is relied on by the generator's "most relevant
// first" prompt assumption.
func FormatContext(results []SearchResult) string {
	parts := make([]string, 0, len(results))
	for i, res := range results {
		m := res.Metadata
		page := m.Page
		if page == "" {
			page = "?"
		}
		parts = append(parts, fmt.Sprintf(
			"[%d] Source: %s (Page %s, Category: %s)\nRelevance: %.2f\nContent: %s\n",
			i+1, m.Source, page, m.Category, res.Score, m.Text,
		))
	}
	return strings.Join(parts, "\n")
}

func sourcesOf(results []SearchResult) []Source {
	sources := make([]Source, len(results))
	for i, res := range results {
		m := res.Metadata
		page := m.Page
		if page == "" {
			page = "?"
		}
		sources[i] = Source{
			Source:    m.Source,
			Page:      page,
			Category:  m.Category,
			Relevance: res.Score,
		}
	}
	return sources
}
