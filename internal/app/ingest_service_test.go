package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"studyrag/internal/rag"
)

func TestApproxPage(t *testing.T) {
	tests := []struct {
		name       string
		chunkIndex int
		chunkCount int
		pageCount  int
		want       string
	}{
		{name: "no page info", chunkIndex: 0, chunkCount: 10, pageCount: 0, want: "?"},
		{name: "first chunk", chunkIndex: 0, chunkCount: 10, pageCount: 5, want: "1"},
		{name: "last chunk", chunkIndex: 9, chunkCount: 10, pageCount: 5, want: "5"},
		{name: "middle chunk", chunkIndex: 5, chunkCount: 10, pageCount: 5, want: "3"},
		{name: "single page", chunkIndex: 3, chunkCount: 4, pageCount: 1, want: "1"},
		{name: "more pages than chunks", chunkIndex: 1, chunkCount: 2, pageCount: 100, want: "51"},
		{name: "single chunk", chunkIndex: 0, chunkCount: 1, pageCount: 7, want: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, approxPage(tt.chunkIndex, tt.chunkCount, tt.pageCount))
		})
	}
}

func TestDefaultQuery(t *testing.T) {
	for _, mode := range []rag.Mode{rag.ModeSummary, rag.ModePoints, rag.ModeFlashcards, rag.ModeTeacher, rag.ModeExam} {
		assert.NotEmpty(t, defaultQuery(mode), "mode %s should have a default query", mode)
	}
	// plain chat has no preset question: an empty message stays an error
	assert.Empty(t, defaultQuery(rag.ModeChat))
}

func TestIngestRequiresConfiguredPipeline(t *testing.T) {
	s := &IngestService{}
	_, err := s.Ingest(context.Background(), IngestInput{UserID: 1, WorkspaceID: 1, Text: "hello"})
	assert.ErrorIs(t, err, ErrIngestNotConfigured)
}
