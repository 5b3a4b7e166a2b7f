package domain

import "time"

// SourceStatus is the lifecycle state of a SourceFile.
type SourceStatus string

const (
	StatusPending    SourceStatus = "Pending"
	StatusProcessing SourceStatus = "Processing"
	StatusCompleted  SourceStatus = "Completed"
	StatusFailed     SourceStatus = "Failed"
)

// SourceFile is the index row tracking one vault path's processing state.
// Path is the relative, POSIX-style path under the vault root and is the
// primary key.
type SourceFile struct {
	Path        string
	Hash        string
	FileSize    int64
	ChunkCount  int
	ArchivePath *string
	Status      SourceStatus
	ProcessedAt *time.Time
	IsSynced    bool
}
