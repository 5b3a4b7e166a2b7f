// Package vault is the dependency container wiring every adapter into a
// running docvaultd instance: it constructs each adapter from a
// config.Config, connects the notifier's events to the queue manager,
// runs a small worker pool against the queue, and drives the embedding
// sync worker. This is the composition root; cmd/docvaultd only calls
// into it.
package vault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/veltra-labs/docvault/internal/archive"
	"github.com/veltra-labs/docvault/internal/chunker"
	"github.com/veltra-labs/docvault/internal/config"
	"github.com/veltra-labs/docvault/internal/core/domain"
	"github.com/veltra-labs/docvault/internal/core/ports/driven"
	"github.com/veltra-labs/docvault/internal/embedding/ollama"
	"github.com/veltra-labs/docvault/internal/embedding/openai"
	"github.com/veltra-labs/docvault/internal/extractors/plaintext"
	"github.com/veltra-labs/docvault/internal/index/sqlite"
	"github.com/veltra-labs/docvault/internal/logger"
	"github.com/veltra-labs/docvault/internal/notifier"
	"github.com/veltra-labs/docvault/internal/queue"
	"github.com/veltra-labs/docvault/internal/syncworker"
	"github.com/veltra-labs/docvault/internal/worker"
)

// workerPoolSize is the number of concurrent goroutines draining the
// queue manager's ready list. Each task still takes the queue's per-path
// lock, so this only buys concurrency across distinct source paths.
const workerPoolSize = 4

// pollInterval is how often an idle worker goroutine checks the ready
// queue when TryDequeue last reported nothing ready.
const pollInterval = 200 * time.Millisecond

// Vault wires the full ingestion pipeline for one watched root directory.
type Vault struct {
	root string
	cfg  config.Config

	embedder driven.EmbeddingService
	index    *sqlite.Store
	archive  *archive.Archive
	notify   *notifier.Notifier
	queue    *queue.Manager
	proc     *worker.Worker
	sync     *syncworker.Worker

	archiveDir string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a Vault watching root, backed by cfg. It opens the
// index and version-map files under cfg.DataPath and starts the
// filesystem watcher, but does not yet run the worker pool or sync
// worker — call Serve for that.
func New(root string, cfg config.Config) (*Vault, error) {
	idx, err := sqlite.NewStore(cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		idx.Close()
		return nil, err
	}

	arc := archive.New()

	n, err := notifier.New(root)
	if err != nil {
		idx.Close()
		return nil, fmt.Errorf("starting notifier: %w", err)
	}

	q, err := queue.New(cfg.DataPath, cfg.DebounceDelay())
	if err != nil {
		n.Close()
		idx.Close()
		return nil, fmt.Errorf("starting queue manager: %w", err)
	}

	c := chunker.New(embedder,
		chunker.WithThreshold(cfg.Chunking.SimilarityThreshold),
		chunker.WithMinChunkSize(cfg.Chunking.MinChunkSize),
		chunker.WithMaxChunkSize(cfg.Chunking.MaxChunkSize),
		chunker.WithDelimiters(cfg.Chunking.Delimiters),
	)

	archiveDir := filepath.Join(cfg.DataPath, "archive")
	proc := worker.New(plaintext.New(), c.Chunk, arc, idx, q, archiveDir, cfg.MaxRetries)

	sw := syncworker.New(idx, embedder, logger.Warn, cfg.EmbeddingSyncPeriod(), cfg.EmbeddingBatchSize)

	v := &Vault{
		root:       root,
		cfg:        cfg,
		embedder:   embedder,
		index:      idx,
		archive:    arc,
		notify:     n,
		queue:      q,
		proc:       proc,
		sync:       sw,
		archiveDir: archiveDir,
	}

	n.Subscribe(v.handleEvent)

	return v, nil
}

func newEmbedder(cfg config.Config) (driven.EmbeddingService, error) {
	switch strings.ToLower(cfg.EmbeddingProvider) {
	case "", "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL: cfg.Ollama.BaseURL,
			Model:   cfg.Ollama.Model,
		}), nil
	case "openai":
		return openai.NewEmbeddingService(openai.Config{
			APIKey: cfg.OpenAI.APIKey,
			Model:  cfg.OpenAI.Model,
		})
	default:
		return nil, fmt.Errorf("unknown embedding_provider %q", cfg.EmbeddingProvider)
	}
}

// handleEvent translates a notifier FileChangeEvent into a queue
// enqueue, applying the configured allowed-extensions/exclude-patterns
// filters. Directory events and filtered-out paths are dropped.
func (v *Vault) handleEvent(ev domain.FileChangeEvent) {
	if ev.IsDirectory {
		return
	}
	if isExcluded(ev.RelativePath, v.cfg.ExcludePatterns) {
		return
	}
	if !isAllowedExtension(ev.RelativePath, v.cfg.AllowedExtensions) {
		return
	}

	if ev.Kind == domain.ChangeDeleted {
		v.queue.EnqueueChange(domain.ProcessingTask{
			RelativePath: ev.RelativePath,
			PhysicalPath: ev.PhysicalPath,
			IsDeletion:   true,
			CreatedAt:    ev.TimestampUTC,
		})
		return
	}

	hash, err := worker.HashFile(ev.PhysicalPath)
	if err != nil {
		logger.Warn("hashing %s failed, dropping change: %v", ev.PhysicalPath, err)
		return
	}

	if err := v.index.UpsertSourceFile(context.Background(), domain.SourceFile{
		Path:     ev.RelativePath,
		Hash:     hash,
		FileSize: fileSizeOrZero(ev.PhysicalPath),
		Status:   domain.StatusPending,
	}); err != nil {
		logger.Warn("recording pending status for %s: %v", ev.RelativePath, err)
	}

	v.queue.EnqueueChange(domain.ProcessingTask{
		RelativePath: ev.RelativePath,
		PhysicalPath: ev.PhysicalPath,
		FileHash:     hash,
		CreatedAt:    ev.TimestampUTC,
	})
}

func fileSizeOrZero(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func isExcluded(relativePath string, patterns []string) bool {
	segments := strings.Split(filepath.ToSlash(relativePath), "/")
	for _, seg := range segments {
		for _, pat := range patterns {
			if strings.EqualFold(seg, pat) {
				return true
			}
		}
	}
	return false
}

func isAllowedExtension(relativePath string, allowed []string) bool {
	if allowed == nil {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(relativePath)), ".")
	for _, a := range allowed {
		if strings.EqualFold(a, ext) {
			return true
		}
	}
	return false
}

// Serve runs the worker pool and embedding sync worker until ctx is
// cancelled, then calls Shutdown.
func (v *Vault) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	v.cancel = cancel

	for i := 0; i < workerPoolSize; i++ {
		v.wg.Add(1)
		go v.runWorkerLoop(ctx)
	}

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		v.sync.Start(ctx)
	}()

	<-ctx.Done()
	return v.Shutdown(context.Background())
}

func (v *Vault) runWorkerLoop(ctx context.Context) {
	defer v.wg.Done()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				task, ok := v.queue.TryDequeue()
				if !ok {
					break
				}
				v.proc.RunOnce(ctx, task)

				select {
				case <-ctx.Done():
					return
				default:
				}
			}
		}
	}
}

// IngestFile processes a single file synchronously, bypassing the
// notifier/queue entirely — used by the CLI's direct ingest commands.
func (v *Vault) IngestFile(ctx context.Context, relativePath, physicalPath string) (domain.ProcessResult, error) {
	hash, err := worker.HashFile(physicalPath)
	if err != nil {
		return domain.ProcessResult{}, fmt.Errorf("hashing %s: %w", physicalPath, err)
	}

	return v.proc.Process(ctx, domain.ProcessingTask{
		RelativePath: relativePath,
		PhysicalPath: physicalPath,
		FileHash:     hash,
	})
}

// Status returns the indexed SourceFile for path, if any.
func (v *Vault) Status(ctx context.Context, relativePath string) (*domain.SourceFile, error) {
	return v.index.GetSourceFile(ctx, relativePath)
}

// Shutdown cancels the worker pool and sync worker, waits for them to
// exit (bounded by the lock timeout or ctx), then persists the version
// map, closes the index and disposes the notifier. Tasks still in the
// ready queue are not processed, and the notifier keeps feeding events
// to the queue until it is closed last.
func (v *Vault) Shutdown(ctx context.Context) error {
	if v.cancel != nil {
		v.cancel()
	}

	drained := make(chan struct{})
	go func() {
		v.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
	case <-time.After(v.cfg.LockTimeout()):
		logger.Warn("shutdown: worker pool did not drain within %s", v.cfg.LockTimeout())
	case <-ctx.Done():
	}

	if err := v.queue.Close(); err != nil {
		logger.Warn("closing queue manager: %v", err)
	}
	if err := v.index.Close(); err != nil {
		logger.Warn("closing index: %v", err)
	}
	if err := v.notify.Close(); err != nil {
		logger.Warn("closing notifier: %v", err)
	}

	return nil
}
