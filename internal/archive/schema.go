// Package archive implements the self-describing, single-file-per-source
// columnar chunk archive: a fixed Parquet schema, Zstandard compression,
// and atomic temp-then-rename writes.
package archive

import "time"

// row is the on-disk parquet record. Field order and names are fixed:
// every chunk row carries denormalized source metadata so the file is
// interpretable without the index.
type row struct {
	ID          string `parquet:"id"`
	ContentHash string `parquet:"content_hash"`

	SourceID   string `parquet:"source_id"`
	SourceName string `parquet:"source_name"`
	Version    string `parquet:"version"`

	CreatedAt time.Time `parquet:"created_at,timestamp"`

	SourceContentType *string `parquet:"source_content_type,optional"`
	SourceFileSize    *int64  `parquet:"source_file_size,optional"`
	SourceFileHash    *string `parquet:"source_file_hash,optional"`

	Text       string `parquet:"text"`
	ChunkIndex int32  `parquet:"chunk_index"`

	StartIndex *int32 `parquet:"start_index,optional"`
	EndIndex   *int32 `parquet:"end_index,optional"`

	PageNumber     *int32  `parquet:"page_number,optional"`
	SourceLocation *string `parquet:"source_location,optional"`
}
