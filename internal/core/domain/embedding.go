package domain

// EmbeddingRow is a chunk's vector embedding. It foreign-keys to the chunk
// it belongs to and is removed by cascade when the chunk is deleted.
type EmbeddingRow struct {
	ChunkID   string
	Embedding []float32
}
