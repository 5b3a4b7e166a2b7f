package driven

import (
	"context"

	"github.com/veltra-labs/docvault/internal/core/domain"
)

// ChunkArchive serialises and deserialises one source's chunk list to a
// self-contained, compressed columnar file. Every row carries its source
// metadata, so a file is interpretable without the index.
type ChunkArchive interface {
	// Write atomically persists chunks to targetPath (write-temp-then-
	// rename). Implementations may leave a caller-visible partial file on
	// crash; the index is the authority, and callers re-run from scratch
	// on recovery.
	Write(ctx context.Context, targetPath string, chunks []domain.Chunk) error

	// Read loads the chunk list back from path, preserving order and
	// nullable offset fields. Unknown columns are tolerated; missing
	// required columns are an error.
	Read(ctx context.Context, path string) ([]domain.Chunk, error)
}
