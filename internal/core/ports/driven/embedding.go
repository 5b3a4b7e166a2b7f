package driven

import "context"

// EmbeddingService maps one or many strings to L2-normalized float vectors
// of a fixed dimension D. The reference model (a multilingual transformer
// run over ONNX) is one implementation among several interchangeable
// HTTP-backed ones.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, preserving
	// order. More efficient than calling Embed in a loop.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size D.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable via a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
