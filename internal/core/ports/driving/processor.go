package driving

import (
	"context"

	"github.com/veltra-labs/docvault/internal/core/domain"
)

// FileProcessor extracts, chunks, archives and indexes one task. The
// worker loop calls Process for ordinary tasks and ProcessDeletion for
// IsDeletion tasks; it never inspects the pipeline's internals.
type FileProcessor interface {
	Process(ctx context.Context, task domain.ProcessingTask) (domain.ProcessResult, error)
	ProcessDeletion(ctx context.Context, path string) error
}

// Notifier merges OS-level filesystem watch events with application-
// originated change notifications. Subscribers register a callback or
// drain Events(); both are safe for concurrent use.
type Notifier interface {
	// NotifyApplicationChange records an in-process mutation (e.g. from a
	// WebDAV handler) and suppresses the matching OS-watcher echo.
	NotifyApplicationChange(kind domain.ChangeKind, relativePath, physicalPath string, isDirectory bool)

	// Subscribe registers a synchronous observer callback, invoked for
	// every delivered event. It returns an unsubscribe function.
	Subscribe(fn func(domain.FileChangeEvent)) (unsubscribe func())

	// Events returns the bounded, drop-oldest channel fan-out.
	Events() <-chan domain.FileChangeEvent

	Close() error
}
