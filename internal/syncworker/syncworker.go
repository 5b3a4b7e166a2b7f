// Package syncworker implements the asynchronous embedding sync worker: a
// single background loop that backfills embeddings for chunks inserted
// by the processing worker and advances each source's is_synced flag
// once every one of its chunks carries an embedding.
package syncworker

import (
	"context"
	"sync"
	"time"

	"github.com/veltra-labs/docvault/internal/core/domain"
	"github.com/veltra-labs/docvault/internal/core/ports/driven"
)

const (
	// DefaultInterval is the tick period between backfill passes.
	DefaultInterval = 30 * time.Second
	// DefaultBatchSize is the number of chunks pulled per pass.
	DefaultBatchSize = 50
	// errorBackoff is how long the loop sleeps after an unexpected error
	// before trying again.
	errorBackoff = 10 * time.Second

	unsyncedSourcesLimit = 50
)

// warnFunc matches internal/logger.Warn's signature, passed by value so
// this package depends on no concrete logging adapter.
type warnFunc func(format string, args ...any)

// Worker runs the embedding backfill loop.
type Worker struct {
	index     driven.Index
	embedder  driven.EmbeddingService
	warn      warnFunc
	interval  time.Duration
	batchSize int

	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New creates a sync Worker. interval and batchSize of zero use the
// spec's defaults (30s, 50 chunks). warn receives non-fatal per-pass and
// per-chunk failures (e.g. internal/logger.Warn); a nil warn discards them.
func New(index driven.Index, embedder driven.EmbeddingService, warn func(format string, args ...any), interval time.Duration, batchSize int) *Worker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if warn == nil {
		warn = func(string, ...any) {}
	}
	return &Worker{
		index:     index,
		embedder:  embedder,
		warn:      warn,
		interval:  interval,
		batchSize: batchSize,
		stopCh:    make(chan struct{}),
	}
}

// Start runs the tick loop until ctx is cancelled or Stop is called. It
// blocks, so callers run it in its own goroutine.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			if err := w.runOnce(ctx); err != nil {
				w.warn("embedding sync pass failed: %v", err)
				w.sleep(ctx, errorBackoff)
			}
		}
	}
}

// Stop signals the loop to exit and waits for it to drain.
func (w *Worker) Stop() {
	w.closeOnce.Do(func() {
		close(w.stopCh)
	})
	w.wg.Wait()
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-w.stopCh:
	case <-t.C:
	}
}

// runOnce executes one full backfill pass: pull unembedded chunks, embed
// them (batch, falling back to per-chunk on batch failure), write
// vectors back, then advance is_synced for any source now fully
// embedded.
func (w *Worker) runOnce(ctx context.Context) error {
	chunks, err := w.index.GetChunksWithoutEmbedding(ctx, w.batchSize)
	if err != nil {
		return domain.NewProcessingError(domain.CodeIndexError, "loading unembedded chunks", err)
	}
	if len(chunks) == 0 {
		return w.advanceSyncedSources(ctx)
	}

	pairs, err := w.embedBatch(ctx, chunks)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		return nil
	}

	if err := w.index.SaveEmbeddingsBatch(ctx, pairs); err != nil {
		return domain.NewProcessingError(domain.CodeIndexError, "saving embeddings batch", err)
	}

	return w.advanceSyncedSources(ctx)
}

// embedBatch calls the embedding service once for the whole chunk set.
// On batch failure it degrades to per-chunk calls, accumulating
// successes and logging (not propagating) per-chunk failures.
func (w *Worker) embedBatch(ctx context.Context, chunks []domain.Chunk) ([]driven.ChunkEmbeddingPair, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := w.embedder.EmbedBatch(ctx, texts)
	if err == nil {
		pairs := make([]driven.ChunkEmbeddingPair, len(chunks))
		for i, c := range chunks {
			pairs[i] = driven.ChunkEmbeddingPair{ChunkID: c.ID, Embedding: vectors[i]}
		}
		return pairs, nil
	}

	w.warn("batch embedding failed, falling back to per-chunk: %v", err)

	var pairs []driven.ChunkEmbeddingPair
	for _, c := range chunks {
		vec, err := w.embedder.Embed(ctx, c.Text)
		if err != nil {
			w.warn("embedding chunk %s failed, skipped this pass: %v", c.ID, err)
			continue
		}
		pairs = append(pairs, driven.ChunkEmbeddingPair{ChunkID: c.ID, Embedding: vec})
	}
	return pairs, nil
}

// advanceSyncedSources marks every currently-unsynced source whose
// chunks are now fully embedded as synced.
func (w *Worker) advanceSyncedSources(ctx context.Context) error {
	sources, err := w.index.GetUnsyncedSourceFiles(ctx, unsyncedSourcesLimit)
	if err != nil {
		return domain.NewProcessingError(domain.CodeIndexError, "loading unsynced sources", err)
	}

	for _, src := range sources {
		remaining, err := w.index.CountUnembeddedChunks(ctx, src.Path)
		if err != nil {
			w.warn("counting unembedded chunks for %s failed: %v", src.Path, err)
			continue
		}
		if remaining == 0 {
			if err := w.index.MarkSourceFileAsSynced(ctx, src.Path); err != nil {
				w.warn("marking %s synced failed: %v", src.Path, err)
			}
		}
	}

	return nil
}
