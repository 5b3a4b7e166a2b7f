package archive

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/veltra-labs/docvault/internal/core/domain"
	"github.com/veltra-labs/docvault/internal/core/ports/driven"
)

var _ driven.ChunkArchive = (*Archive)(nil)

// Archive reads and writes per-source chunk archives.
type Archive struct{}

// New creates a chunk Archive.
func New() *Archive { return &Archive{} }

// Write encodes chunks as a Zstandard-compressed parquet file and installs
// it at targetPath via write-temp-then-rename, so a crash mid-write leaves
// either nothing or the prior file intact. The index is the authority on
// recovery; the worker re-runs extraction from scratch rather than
// trusting a partial archive.
func (a *Archive) Write(ctx context.Context, targetPath string, chunks []domain.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(targetPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.NewProcessingError(domain.CodeArchiveWriteError, "creating archive directory", err)
	}

	randSuffix := make([]byte, 8)
	if _, err := rand.Read(randSuffix); err != nil {
		return domain.NewProcessingError(domain.CodeArchiveWriteError, "generating temp file name", err)
	}
	tempPath := targetPath + "." + hex.EncodeToString(randSuffix) + ".tmp"

	file, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return domain.NewProcessingError(domain.CodeArchiveWriteError, "creating temp archive file", err)
	}

	success := false
	defer func() {
		if !success {
			file.Close()
			os.Remove(tempPath)
		}
	}()

	writer := parquet.NewGenericWriter[row](file, parquet.Compression(&zstd.Codec{}))
	rows := make([]row, len(chunks))
	for i, c := range chunks {
		rows[i] = toRow(c)
	}

	if _, err := writer.Write(rows); err != nil {
		return domain.NewProcessingError(domain.CodeArchiveWriteError, "writing chunk rows", err)
	}
	if err := writer.Close(); err != nil {
		return domain.NewProcessingError(domain.CodeArchiveWriteError, "closing parquet writer", err)
	}
	if err := file.Sync(); err != nil {
		return domain.NewProcessingError(domain.CodeArchiveWriteError, "syncing archive file", err)
	}
	if err := file.Close(); err != nil {
		return domain.NewProcessingError(domain.CodeArchiveWriteError, "closing archive file", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return domain.NewProcessingError(domain.CodeArchiveWriteError, "installing archive file", err)
	}

	success = true
	return nil
}

// Read loads a chunk archive, preserving row order and nullable offset
// fields exactly as written.
func (a *Archive) Read(ctx context.Context, path string) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, domain.NewProcessingError(domain.CodeIndexError, "opening archive file: "+path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, domain.NewProcessingError(domain.CodeIndexError, "stat archive file", err)
	}

	reader := parquet.NewGenericReader[row](file)
	defer reader.Close()

	numRows := int(reader.NumRows())
	rows := make([]row, numRows)
	n, err := reader.Read(rows)
	if err != nil && n < numRows {
		return nil, domain.NewProcessingError(domain.CodeIndexError, fmt.Sprintf("reading archive %s (%d bytes)", path, info.Size()), err)
	}

	chunks := make([]domain.Chunk, n)
	for i := 0; i < n; i++ {
		chunks[i] = rows[i].toChunk()
	}
	return chunks, nil
}

func toRow(c domain.Chunk) row {
	return row{
		ID:                c.ID,
		ContentHash:       c.ContentHash,
		SourceID:          c.SourceID,
		SourceName:        c.SourceName,
		Version:           c.Version,
		CreatedAt:         c.CreatedAt,
		SourceContentType: c.SourceContentType,
		SourceFileSize:    c.SourceFileSize,
		SourceFileHash:    c.SourceFileHash,
		Text:              c.Text,
		ChunkIndex:        c.ChunkIndex,
		StartIndex:        c.StartIndex,
		EndIndex:          c.EndIndex,
		PageNumber:        c.PageNumber,
		SourceLocation:    c.SourceLocation,
	}
}

func (r row) toChunk() domain.Chunk {
	return domain.Chunk{
		ID:                r.ID,
		ContentHash:       r.ContentHash,
		SourceID:          r.SourceID,
		SourceName:        r.SourceName,
		Version:           r.Version,
		CreatedAt:         r.CreatedAt,
		SourceContentType: r.SourceContentType,
		SourceFileSize:    r.SourceFileSize,
		SourceFileHash:    r.SourceFileHash,
		Text:              r.Text,
		ChunkIndex:        r.ChunkIndex,
		StartIndex:        r.StartIndex,
		EndIndex:          r.EndIndex,
		PageNumber:        r.PageNumber,
		SourceLocation:    r.SourceLocation,
	}
}
