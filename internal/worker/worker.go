// Package worker implements the processing worker: per-path locking, the
// extract→chunk→archive→index pipeline, retry policy and
// version-mismatch detection.
package worker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/veltra-labs/docvault/internal/core/domain"
	"github.com/veltra-labs/docvault/internal/core/ports/driven"
	"github.com/veltra-labs/docvault/internal/core/ports/driving"
	"github.com/veltra-labs/docvault/internal/logger"
)

// DefaultMaxRetries is used when New is given a non-positive maxRetries.
const DefaultMaxRetries = 3

// Locker is the subset of the queue manager's lock table a Worker needs.
type Locker interface {
	TryAcquireLock(path string) bool
	ReleaseLock(path string)
	GetVersion(path string) (string, bool)
	SetVersion(path, hash string)
	RemoveVersion(path string)
	Requeue(task domain.ProcessingTask)
	EnqueueDirect(task domain.ProcessingTask)
}

var _ driving.FileProcessor = (*Worker)(nil)

// Worker drives one task through extraction → chunking → archiving →
// indexing.
type Worker struct {
	extractor driven.TextExtractor
	chunker   chunkFunc
	archive   driven.ChunkArchive
	index     driven.Index
	locks     Locker

	archiveDir string
	maxRetries int
}

// chunkFunc lets the worker depend on the chunker's Chunk method without
// importing the chunker package directly, keeping the dependency graph
// one-directional (chunker has no knowledge of the worker).
type chunkFunc func(ctx context.Context, sourceID, text string) ([]domain.Chunk, error)

// New creates a Worker. archiveDir is where per-source .parquet files are
// written, mirroring vault-relative paths. Tasks already carry resolved
// physical paths (domain.ProcessingTask.PhysicalPath), so the worker
// itself never needs the vault root. maxRetries caps how many times a
// retryable failure is requeued before the task is dropped; a
// non-positive value falls back to DefaultMaxRetries.
func New(extractor driven.TextExtractor, chunk chunkFunc, archive driven.ChunkArchive, index driven.Index, locks Locker, archiveDir string, maxRetries int) *Worker {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Worker{
		extractor:  extractor,
		chunker:    chunk,
		archive:    archive,
		index:      index,
		locks:      locks,
		archiveDir: archiveDir,
		maxRetries: maxRetries,
	}
}

// RunOnce executes one state-machine iteration for task, after the queue
// manager has already dequeued it. It requeues the task itself (via the
// Locker's Requeue or EnqueueDirect) when the lock is held, a retryable
// failure is under the retry limit, or the file changed mid-processing.
func (w *Worker) RunOnce(ctx context.Context, task domain.ProcessingTask) {
	if !w.locks.TryAcquireLock(task.RelativePath) {
		w.locks.Requeue(task)
		return
	}
	defer w.locks.ReleaseLock(task.RelativePath)

	if task.IsDeletion {
		if err := w.ProcessDeletion(ctx, task.RelativePath); err != nil {
			w.retryOrDrop(task, err)
		}
		return
	}

	if current, ok := w.locks.GetVersion(task.RelativePath); ok && current == task.FileHash {
		return // Skipped: already at this revision.
	}

	result, err := w.Process(ctx, task)
	if err != nil {
		if code, ok := domain.CodeOf(err); ok && code == domain.CodeVersionMismatch {
			w.handleVersionMismatch(task)
			return
		}
		w.retryOrDrop(task, err)
		return
	}
	_ = result

	w.locks.SetVersion(task.RelativePath, task.FileHash)
}

func (w *Worker) retryOrDrop(task domain.ProcessingTask, err error) {
	var pe *domain.ProcessingError
	if errors.As(err, &pe) && !pe.Retryable() {
		logger.Error("giving up on %s: %v", task.RelativePath, err)
		return
	}
	if task.RetryCount+1 >= w.maxRetries {
		logger.Error("giving up on %s after %d attempts: %v", task.RelativePath, task.RetryCount+1, err)
		return
	}
	w.locks.Requeue(task)
}

func (w *Worker) handleVersionMismatch(task domain.ProcessingTask) {
	currentHash, err := hashFile(task.PhysicalPath)
	if err != nil {
		return
	}
	w.locks.EnqueueDirect(domain.ProcessingTask{
		RelativePath: task.RelativePath,
		PhysicalPath: task.PhysicalPath,
		FileHash:     currentHash,
		CreatedAt:    time.Now().UTC(),
	})
}

// Process extracts, chunks, archives and indexes task, and detects
// version mismatch: if the file's content changed again while being
// processed, it returns a CodeVersionMismatch error without marking the
// source completed; RunOnce then enqueues a fresh task for the new hash.
func (w *Worker) Process(ctx context.Context, task domain.ProcessingTask) (domain.ProcessResult, error) {
	start := time.Now()

	if err := w.index.UpsertSourceFile(ctx, domain.SourceFile{
		Path:     task.RelativePath,
		Hash:     task.FileHash,
		FileSize: fileSizeOf(task.PhysicalPath),
		Status:   domain.StatusProcessing,
	}); err != nil {
		return domain.ProcessResult{}, domain.NewProcessingError(domain.CodeIndexError, "marking source processing", err)
	}

	extractions, err := w.extractor.ExtractFile(ctx, task.PhysicalPath)
	if err != nil {
		w.markFailed(ctx, task.RelativePath, err)
		return domain.ProcessResult{}, err
	}

	chunks, err := w.chunkExtractions(ctx, task, extractions)
	if err != nil {
		w.markFailed(ctx, task.RelativePath, err)
		return domain.ProcessResult{}, err
	}

	archivePath := filepath.Join(w.archiveDir, task.RelativePath+".parquet")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.archive.Write(gctx, archivePath, chunks)
	})
	g.Go(func() error {
		return w.index.InsertChunks(gctx, chunks)
	})
	if err := g.Wait(); err != nil {
		w.markFailed(ctx, task.RelativePath, err)
		return domain.ProcessResult{}, err
	}

	currentHash, err := hashFile(task.PhysicalPath)
	if err != nil {
		wrapped := domain.NewProcessingError(domain.CodeExtractionError, "rehashing after processing", err)
		w.markFailed(ctx, task.RelativePath, wrapped)
		return domain.ProcessResult{}, wrapped
	}
	if currentHash != task.FileHash {
		return domain.ProcessResult{}, domain.NewProcessingError(domain.CodeVersionMismatch, "file changed during processing", nil)
	}

	now := time.Now().UTC()
	if err := w.index.UpsertSourceFile(ctx, domain.SourceFile{
		Path:        task.RelativePath,
		Hash:        task.FileHash,
		FileSize:    fileSizeOf(task.PhysicalPath),
		ChunkCount:  len(chunks),
		ArchivePath: &archivePath,
		Status:      domain.StatusCompleted,
		ProcessedAt: &now,
	}); err != nil {
		return domain.ProcessResult{}, domain.NewProcessingError(domain.CodeIndexError, "marking source completed", err)
	}

	return domain.ProcessResult{
		Success:    true,
		OutputPath: archivePath,
		ChunkCount: len(chunks),
		Duration:   time.Since(start),
	}, nil
}

// ProcessDeletion removes path's chunks/embeddings and version entry.
func (w *Worker) ProcessDeletion(ctx context.Context, path string) error {
	if err := w.index.DeleteChunksBySourcePath(ctx, path); err != nil {
		return domain.NewProcessingError(domain.CodeIndexError, "deleting chunks for "+path, err)
	}
	w.locks.RemoveVersion(path)
	return nil
}

func (w *Worker) chunkExtractions(ctx context.Context, task domain.ProcessingTask, extractions []driven.TextExtraction) ([]domain.Chunk, error) {
	var all []domain.Chunk
	nextIndex := int32(0)

	for _, ex := range extractions {
		pageChunks, err := w.chunker(ctx, task.RelativePath, ex.Text)
		if err != nil {
			return nil, domain.NewProcessingError(domain.CodeEmbeddingError, "chunking extraction", err)
		}

		for i := range pageChunks {
			pageChunks[i].ChunkIndex = nextIndex
			nextIndex++
			pageChunks[i].SourceName = filepath.Base(task.RelativePath)
			pageChunks[i].Version = task.FileHash
			if ex.ContentType != "" {
				ct := ex.ContentType
				pageChunks[i].SourceContentType = &ct
			}
			pageChunks[i].PageNumber = ex.PageNumber
			pageChunks[i].SourceLocation = ex.SourceLocation
			hash := task.FileHash
			pageChunks[i].SourceFileHash = &hash
		}
		all = append(all, pageChunks...)
	}

	return all, nil
}

func (w *Worker) markFailed(ctx context.Context, path string, cause error) {
	logger.Error("processing %s failed: %v", path, cause)
	_ = w.index.UpsertSourceFile(ctx, domain.SourceFile{
		Path:   path,
		Status: domain.StatusFailed,
	})
}

// HashFile returns the hex-encoded SHA-256 of path's contents, the same
// content hash recorded in ProcessingTask.FileHash and SourceFile.Hash.
// Exported so callers enqueueing tasks (the notifier wiring, the CLI's
// direct-ingest path) compute it identically to the worker's own rehash.
func HashFile(path string) (string, error) {
	return hashFile(path)
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func fileSizeOf(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
