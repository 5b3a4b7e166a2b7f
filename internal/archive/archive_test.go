package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veltra-labs/docvault/internal/core/domain"
)

func sampleChunks() []domain.Chunk {
	start0, end0 := int32(0), int32(10)
	page := int32(1)
	ct := "text/plain"
	size := int64(1234)
	hash := "deadbeef"

	return []domain.Chunk{
		{
			ID:                "chunk-1",
			ContentHash:       "hash-1",
			SourceID:          "src-1",
			SourceName:        "notes.txt",
			Version:           "v1",
			CreatedAt:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			SourceContentType: &ct,
			SourceFileSize:    &size,
			SourceFileHash:    &hash,
			Text:              "first chunk",
			ChunkIndex:        0,
			StartIndex:        &start0,
			EndIndex:          &end0,
			PageNumber:        &page,
		},
		{
			ID:          "chunk-2",
			ContentHash: "hash-2",
			SourceID:    "src-1",
			SourceName:  "notes.txt",
			Version:     "v1",
			CreatedAt:   time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
			Text:        "second chunk with no offsets",
			ChunkIndex:  1,
		},
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt.parquet")

	a := New()
	require.NoError(t, a.Write(context.Background(), path, sampleChunks()))

	got, err := a.Read(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "chunk-1", got[0].ID)
	assert.Equal(t, int32(0), *got[0].StartIndex)
	assert.Equal(t, int32(10), *got[0].EndIndex)
	assert.Equal(t, int32(1), *got[0].PageNumber)
	assert.Equal(t, "text/plain", *got[0].SourceContentType)

	assert.Equal(t, "chunk-2", got[1].ID)
	assert.Nil(t, got[1].StartIndex)
	assert.Nil(t, got[1].EndIndex)
	assert.Nil(t, got[1].SourceContentType)
}

func TestWrite_AtomicallyReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt.parquet")

	a := New()
	require.NoError(t, a.Write(context.Background(), path, sampleChunks()[:1]))
	require.NoError(t, a.Write(context.Background(), path, sampleChunks()))

	got, err := a.Read(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	entries, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, entries, "no leftover temp files")
}

func TestRead_MissingFile(t *testing.T) {
	a := New()
	_, err := a.Read(context.Background(), "/no/such/archive.parquet")
	require.Error(t, err)
}
