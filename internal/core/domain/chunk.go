package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Chunk is a contiguous substring of a source document treated as a unit
// of retrieval. Source-level metadata is denormalised onto every row so a
// chunk (and the archive file it lives in) is interpretable without the
// index.
type Chunk struct {
	ID          string
	ContentHash string
	SourceID    string
	ChunkIndex  int32
	Text        string

	StartIndex *int32
	EndIndex   *int32

	PageNumber     *int32
	SourceLocation *string

	CreatedAt time.Time
	Version   string

	SourceName        string
	SourceContentType *string
	SourceFileSize    *int64
	SourceFileHash    *string
}

// ContentHashOf computes the lower-hex SHA-256 digest of a chunk's UTF-8 text.
func ContentHashOf(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// ChunkID derives the deterministic chunk identifier from a source ID and
// content hash: the first 16 bytes of SHA-256(sourceID + ":" + contentHash),
// formatted as a canonical UUID string. Identical (sourceID, text) pairs
// always yield identical IDs.
func ChunkID(sourceID, contentHash string) string {
	sum := sha256.Sum256([]byte(sourceID + ":" + contentHash))
	id, err := uuid.FromBytes(sum[:16])
	if err != nil {
		// sum[:16] is always exactly 16 bytes; FromBytes cannot fail here.
		panic(err)
	}
	return id.String()
}

// NewChunk builds a Chunk with its ID and ContentHash derived from text and
// sourceID, leaving the caller to fill in positional and source-metadata
// fields.
func NewChunk(sourceID string, chunkIndex int32, text string) Chunk {
	hash := ContentHashOf(text)
	return Chunk{
		ID:          ChunkID(sourceID, hash),
		ContentHash: hash,
		SourceID:    sourceID,
		ChunkIndex:  chunkIndex,
		Text:        text,
		CreatedAt:   time.Now().UTC(),
	}
}
