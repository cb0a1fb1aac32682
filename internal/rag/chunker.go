// Package rag implements the ingestion-to-retrieval core: token-based
// chunking, embedding with graceful degradation, a per-workspace persisted
// vector index, and the retrieval policy that formats context for the LLM.
package rag

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// chunkEncoding is the tokenizer used for chunk boundaries. Chunk sizes are
// counted in subword tokens so they stay meaningful relative to the embedding
// model's context window.
const chunkEncoding = "cl100k_base"

var ErrInvalidChunkConfig = errors.New("invalid chunk configuration")

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanText collapses whitespace and newline runs and trims the result.
// Extracted text goes through this before chunking.
func CleanText(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// Chunker splits cleaned text into bounded, overlapping token windows.
type Chunker struct {
	enc *tiktoken.Tiktoken
}

func NewChunker() (*Chunker, error) {
	enc, err := tiktoken.GetEncoding(chunkEncoding)
	if err != nil {
		return nil, fmt.Errorf("load %s encoding failed: %w", chunkEncoding, err)
	}
	return &Chunker{enc: enc}, nil
}

// CountTokens returns the token count of text under the chunk encoding.
func (c *Chunker) CountTokens(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// Chunk slices text into windows of targetTokens tokens. Each window after
// the first starts floor(targetTokens*overlapFrac) tokens before the previous
// window's end; the final partial window is kept. Empty or whitespace-only
// input yields no chunks. A parameter combination whose stride would be
// non-positive is rejected up front.
func (c *Chunker) Chunk(text string, targetTokens int, overlapFrac float64) ([]string, error) {
	if targetTokens <= 0 {
		return nil, fmt.Errorf("%w: target token count %d", ErrInvalidChunkConfig, targetTokens)
	}
	overlap := int(float64(targetTokens) * overlapFrac)
	stride := targetTokens - overlap
	if stride <= 0 {
		return nil, fmt.Errorf("%w: target %d with overlap fraction %v yields stride %d", ErrInvalidChunkConfig, targetTokens, overlapFrac, stride)
	}

	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	tokens := c.enc.Encode(text, nil, nil)
	if len(tokens) <= targetTokens {
		return []string{strings.TrimSpace(text)}, nil
	}

	var chunks []string
	for start := 0; start < len(tokens); start += stride {
		end := start + targetTokens
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, strings.TrimSpace(c.enc.Decode(tokens[start:end])))
	}
	return chunks, nil
}
