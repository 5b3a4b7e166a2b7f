package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentHashOf(t *testing.T) {
	sum := sha256.Sum256([]byte("hello world"))
	assert.Equal(t, hex.EncodeToString(sum[:]), ContentHashOf("hello world"))
}

func TestChunkID_Deterministic(t *testing.T) {
	hash := ContentHashOf("some chunk text")
	id1 := ChunkID("source-a", hash)
	id2 := ChunkID("source-a", hash)
	assert.Equal(t, id1, id2)

	id3 := ChunkID("source-b", hash)
	assert.NotEqual(t, id1, id3)
}

func TestNewChunk(t *testing.T) {
	c := NewChunk("source-a", 3, "  some text  ")
	assert.Equal(t, ContentHashOf("  some text  "), c.ContentHash)
	assert.Equal(t, ChunkID("source-a", c.ContentHash), c.ID)
	assert.Equal(t, int32(3), c.ChunkIndex)
	assert.False(t, c.CreatedAt.IsZero())
}
