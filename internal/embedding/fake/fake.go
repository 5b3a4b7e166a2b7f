// Package fake provides a deterministic, network-free EmbeddingService for
// tests.
package fake

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/veltra-labs/docvault/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*Service)(nil)

// Service is a deterministic EmbeddingService: by default it hashes each
// text into a fixed-dimension vector (same text always yields the same
// vector, byte-identical across runs), then L2-normalizes it. SetVector
// pins a fixed, caller-provided embedding for a specific text, which
// lets tests construct scenarios with known cosine similarities (e.g. two
// topic clusters) without depending on a real model.
type Service struct {
	dims    int
	vectors map[string][]float32
}

// New creates a deterministic fake embedding service producing dims-wide
// vectors.
func New(dims int) *Service {
	return &Service{dims: dims, vectors: make(map[string][]float32)}
}

// SetVector pins the embedding returned for an exact text match, used to
// script specific cosine-similarity relationships in tests.
func (s *Service) SetVector(text string, vec []float32) {
	s.vectors[text] = normalize(vec)
}

func (s *Service) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return hashEmbed(text, s.dims), nil
}

func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *Service) Dimensions() int { return s.dims }

func (s *Service) ModelName() string { return "fake-deterministic" }

func (s *Service) Ping(context.Context) error { return nil }

func (s *Service) Close() error { return nil }

// hashEmbed derives a deterministic, L2-normalized pseudo-embedding from
// text via FNV-1a, seeding a fixed stream of per-dimension values.
func hashEmbed(text string, dims int) []float32 {
	vec := make([]float32, dims)
	h := fnv.New64a()
	for i := 0; i < dims; i++ {
		h.Reset()
		_, _ = h.Write([]byte(text))
		_, _ = h.Write([]byte{byte(i), byte(i >> 8)})
		sum := h.Sum64()
		// Map to [-1, 1).
		vec[i] = float32(int64(sum%2000001)-1000000) / 1000000
	}
	return normalize(vec)
}

func normalize(vec []float32) []float32 {
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return vec
	}
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
