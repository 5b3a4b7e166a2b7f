package driven

import (
	"context"

	"github.com/veltra-labs/docvault/internal/core/domain"
)

// ChunkEmbeddingPair is one (chunk_id, vector) pair for batch embedding
// writes.
type ChunkEmbeddingPair struct {
	ChunkID   string
	Embedding []float32
}

// Index is the relational store over source files, chunks and
// embeddings: upsert, cascading delete, and the "chunks without
// embedding" query that feeds the embedding sync worker.
type Index interface {
	UpsertSourceFile(ctx context.Context, record domain.SourceFile) error
	GetSourceFile(ctx context.Context, path string) (*domain.SourceFile, error)

	// InsertChunks is transactional: each row is upserted keyed on ID,
	// updating Text, ContentHash and the row's updated-at timestamp.
	InsertChunks(ctx context.Context, chunks []domain.Chunk) error

	SaveEmbedding(ctx context.Context, chunkID string, vec []float32) error
	SaveEmbeddingsBatch(ctx context.Context, pairs []ChunkEmbeddingPair) error

	// DeleteChunksBySourcePath deletes embeddings (via subquery on
	// chunks) then chunks for path, cascading.
	DeleteChunksBySourcePath(ctx context.Context, path string) error

	GetChunksWithoutEmbedding(ctx context.Context, limit int) ([]domain.Chunk, error)
	GetUnsyncedSourceFiles(ctx context.Context, limit int) ([]domain.SourceFile, error)
	MarkSourceFileAsSynced(ctx context.Context, path string) error

	// CountUnembeddedChunks reports how many chunks of path still lack an
	// embedding row, used by the sync worker to decide whether a source
	// can be marked synced.
	CountUnembeddedChunks(ctx context.Context, path string) (int, error)

	Close() error
}
