package domain

import "time"

// ProcessResult is the user-visible outcome of processing one source file,
// returned by the worker and surfaced by the CLI. Directory ingestion
// yields one such result per file, stream-by-stream.
type ProcessResult struct {
	Success        bool
	OutputPath     string
	ChunkCount     int
	SourceMetadata map[string]any
	ErrorMessage   string
	Duration       time.Duration
}
