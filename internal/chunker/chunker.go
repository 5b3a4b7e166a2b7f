// Package chunker implements semantic chunking: boundary detection driven
// by adjacent-sentence cosine similarity over sentence embeddings, with
// min/max size constraints.
package chunker

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/veltra-labs/docvault/internal/core/domain"
	"github.com/veltra-labs/docvault/internal/core/ports/driven"
)

// DefaultThreshold, DefaultMinChunkSize and DefaultMaxChunkSize are the
// spec's default chunking parameters.
const (
	DefaultThreshold    = 0.5
	DefaultMinChunkSize = 100
	DefaultMaxChunkSize = 1000
)

// DefaultDelimiters is the priority-ordered default sentence-boundary set.
var DefaultDelimiters = []string{".", "!", "?", "。", "！", "？", "\n\n"}

// Chunker splits text into semantically coherent chunks using an
// EmbeddingService as a boundary oracle.
type Chunker struct {
	embedder   driven.EmbeddingService
	threshold  float32
	minSize    int
	maxSize    int
	delimiters []string
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithThreshold sets the cosine-similarity break threshold τ ∈ [0,1].
func WithThreshold(t float32) Option {
	return func(c *Chunker) { c.threshold = t }
}

// WithMinChunkSize sets the minimum chunk size m, in characters.
func WithMinChunkSize(m int) Option {
	return func(c *Chunker) {
		if m > 0 {
			c.minSize = m
		}
	}
}

// WithMaxChunkSize sets the maximum chunk size M, in characters.
func WithMaxChunkSize(m int) Option {
	return func(c *Chunker) {
		if m > 0 {
			c.maxSize = m
		}
	}
}

// WithDelimiters overrides the priority-ordered sentence-boundary set Δ.
func WithDelimiters(delims []string) Option {
	return func(c *Chunker) {
		if len(delims) > 0 {
			c.delimiters = delims
		}
	}
}

// New creates a Chunker backed by embedder, applying opts over the
// spec's defaults.
func New(embedder driven.EmbeddingService, opts ...Option) *Chunker {
	c := &Chunker{
		embedder:   embedder,
		threshold:  DefaultThreshold,
		minSize:    DefaultMinChunkSize,
		maxSize:    DefaultMaxChunkSize,
		delimiters: DefaultDelimiters,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chunk splits text T into an ordered list of Chunks with byte offsets
// into T, for sourceID. Empty input yields an empty, non-error result.
func (c *Chunker) Chunk(ctx context.Context, sourceID, text string) ([]domain.Chunk, error) {
	sentences := splitSentences(text, c.delimiters)
	if len(sentences) == 0 {
		return nil, nil
	}

	if len(sentences) == 1 {
		trimmed := strings.TrimSpace(text)
		chunk := domain.NewChunk(sourceID, 0, trimmed)
		start, end := int32(0), int32(len(text))
		chunk.StartIndex = &start
		chunk.EndIndex = &end
		return []domain.Chunk{chunk}, nil
	}

	texts := make([]string, len(sentences))
	for i, s := range sentences {
		texts[i] = s.Text
	}

	embeddings, err := c.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding sentences: %w", err)
	}
	if len(embeddings) != len(sentences) {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d sentences", len(embeddings), len(sentences))
	}

	// breaks[k] is true when position k (between sentence k-1 and k) is a
	// candidate break: cos(v_{k-1}, v_k) < τ.
	breaks := make([]bool, len(sentences)+1)
	for i := 0; i < len(sentences)-1; i++ {
		if CosineSimilarity(embeddings[i], embeddings[i+1]) < c.threshold {
			breaks[i+1] = true
		}
	}

	var chunks []domain.Chunk
	chunkIndex := int32(0)
	chunkStart := 0
	accumLen := 0

	for i := range sentences {
		accumLen += utf8.RuneCountInString(sentences[i].Text)
		isLast := i == len(sentences)-1
		nextIsBreak := breaks[i+1]

		// Close the chunk before the next sentence would push its text past
		// maxSize; a single sentence longer than maxSize still forms a chunk
		// on its own.
		nextOverflows := !isLast &&
			utf8.RuneCountInString(text[sentences[chunkStart].StartIndex:sentences[i+1].EndIndex]) > c.maxSize

		emit := accumLen >= c.maxSize || nextOverflows || (nextIsBreak && accumLen >= c.minSize) || isLast
		if !emit {
			continue
		}

		start := sentences[chunkStart].StartIndex
		end := sentences[i].EndIndex
		chunkText := strings.TrimSpace(text[start:end])

		chunk := domain.NewChunk(sourceID, chunkIndex, chunkText)
		s32, e32 := int32(start), int32(end)
		chunk.StartIndex = &s32
		chunk.EndIndex = &e32
		chunks = append(chunks, chunk)

		chunkIndex++
		chunkStart = i + 1
		accumLen = 0
	}

	return chunks, nil
}
