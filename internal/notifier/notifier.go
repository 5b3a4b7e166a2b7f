// Package notifier implements the file-change notifier: a recursive
// fsnotify watcher rooted at the vault directory, merged with explicit
// application-originated change notifications and de-echoed against
// each other.
package notifier

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/veltra-labs/docvault/internal/core/domain"
	"github.com/veltra-labs/docvault/internal/core/ports/driving"
	"github.com/veltra-labs/docvault/internal/logger"
)

const (
	eventChannelCapacity = 1000
	echoWindow           = 5 * time.Second
	pruneInterval        = 5 * time.Second
)

var _ driving.Notifier = (*Notifier)(nil)

// Notifier merges OS watcher events with application-originated
// notifications and fans them out to subscribers.
type Notifier struct {
	root    string
	watcher *fsnotify.Watcher

	mu          sync.Mutex
	observers   map[int]func(domain.FileChangeEvent)
	nextID      int
	suppression map[echoKey]time.Time

	events    chan domain.FileChangeEvent
	closeCh   chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// echoKey is the de-duplication key: (kind, physical_path, second
// bucket).
type echoKey struct {
	kind   domain.ChangeKind
	path   string
	second int64
}

// New creates a Notifier watching root recursively.
func New(root string) (*Notifier, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, domain.NewProcessingError(domain.CodeWatcherOverflow, "creating filesystem watcher", err)
	}

	n := &Notifier{
		root:        root,
		watcher:     watcher,
		observers:   make(map[int]func(domain.FileChangeEvent)),
		suppression: make(map[echoKey]time.Time),
		events:      make(chan domain.FileChangeEvent, eventChannelCapacity),
		closeCh:     make(chan struct{}),
	}

	if err := n.addRecursive(root); err != nil {
		watcher.Close()
		return nil, err
	}

	n.wg.Add(2)
	go n.watchLoop()
	go n.pruneLoop()

	return n, nil
}

func (n *Notifier) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return n.watcher.Add(path)
		}
		return nil
	})
}

// NotifyApplicationChange records an in-process mutation and suppresses
// the matching OS-watcher echo for the current and next second.
func (n *Notifier) NotifyApplicationChange(kind domain.ChangeKind, relativePath, physicalPath string, isDirectory bool) {
	now := time.Now().UTC()

	n.mu.Lock()
	n.suppression[echoKey{kind: kind, path: physicalPath, second: now.Unix()}] = now
	n.mu.Unlock()

	if isDirectory && kind == domain.ChangeCreated {
		_ = n.watcher.Add(physicalPath)
	}

	n.deliver(domain.FileChangeEvent{
		Kind:         kind,
		Origin:       domain.OriginWebDAV,
		RelativePath: relativePath,
		PhysicalPath: physicalPath,
		IsDirectory:  isDirectory,
		TimestampUTC: now,
	})
}

// Subscribe registers a synchronous observer callback.
func (n *Notifier) Subscribe(fn func(domain.FileChangeEvent)) (unsubscribe func()) {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.observers[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.observers, id)
		n.mu.Unlock()
	}
}

// Events returns the bounded, drop-oldest event channel.
func (n *Notifier) Events() <-chan domain.FileChangeEvent {
	return n.events
}

// Close stops the watcher and background goroutines.
func (n *Notifier) Close() error {
	n.closeOnce.Do(func() {
		close(n.closeCh)
	})
	n.wg.Wait()
	return n.watcher.Close()
}

func (n *Notifier) watchLoop() {
	defer n.wg.Done()

	for {
		select {
		case <-n.closeCh:
			return

		case ev, ok := <-n.watcher.Events:
			if !ok {
				return
			}
			n.handleFsEvent(ev)

		case err, ok := <-n.watcher.Errors:
			if !ok {
				return
			}
			// A watcher error (e.g. kernel buffer overflow) may have lost
			// events. Log it and re-arm the watches from the root; the
			// queue's content-hash dedup catches any change missed here on
			// the next real event.
			logger.Warn("notifier: watcher error, re-arming: %v", err)
			_ = n.addRecursive(n.root)
		}
	}
}

func (n *Notifier) handleFsEvent(ev fsnotify.Event) {
	kind, ok := classify(ev.Op)
	if !ok {
		return
	}

	isDir := isLikelyDir(ev.Name, ev.Op)
	if isDir && kind == domain.ChangeModified {
		return
	}

	if n.isSuppressed(kind, ev.Name) {
		return
	}

	if isDir && kind == domain.ChangeCreated {
		_ = n.addRecursive(ev.Name)
	}

	n.deliver(domain.FileChangeEvent{
		Kind:         kind,
		Origin:       domain.OriginFileSystem,
		RelativePath: n.relativePath(ev.Name),
		PhysicalPath: ev.Name,
		IsDirectory:  isDir,
		TimestampUTC: time.Now().UTC(),
	})
}

func classify(op fsnotify.Op) (domain.ChangeKind, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return domain.ChangeCreated, true
	case op.Has(fsnotify.Write):
		return domain.ChangeModified, true
	case op.Has(fsnotify.Remove):
		return domain.ChangeDeleted, true
	case op.Has(fsnotify.Rename):
		return domain.ChangeDeleted, true
	default:
		return "", false
	}
}

// isLikelyDir best-efforts a directory check via stat. A Remove/Rename
// target no longer exists on disk, so such events are reported as files;
// this only affects whether a deleted directory's own event is dropped or
// forwarded, and the worker processes deletions by path regardless.
func isLikelyDir(path string, op fsnotify.Op) bool {
	if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func (n *Notifier) relativePath(path string) string {
	rel, err := filepath.Rel(n.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func (n *Notifier) isSuppressed(kind domain.ChangeKind, path string) bool {
	now := time.Now().UTC().Unix()

	n.mu.Lock()
	defer n.mu.Unlock()

	for _, sec := range []int64{now, now - 1} {
		if _, ok := n.suppression[echoKey{kind: kind, path: path, second: sec}]; ok {
			return true
		}
	}
	return false
}

func (n *Notifier) pruneLoop() {
	defer n.wg.Done()

	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-n.closeCh:
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-echoWindow)
			n.mu.Lock()
			for k, t := range n.suppression {
				if t.Before(cutoff) {
					delete(n.suppression, k)
				}
			}
			n.mu.Unlock()
		}
	}
}

func (n *Notifier) deliver(ev domain.FileChangeEvent) {
	n.mu.Lock()
	observers := make([]func(domain.FileChangeEvent), 0, len(n.observers))
	for _, fn := range n.observers {
		observers = append(observers, fn)
	}
	n.mu.Unlock()

	for _, fn := range observers {
		fn(ev)
	}

	select {
	case n.events <- ev:
	default:
		// Drop-oldest: make room for the newest event rather than
		// blocking the watch loop.
		select {
		case <-n.events:
		default:
		}
		select {
		case n.events <- ev:
		default:
		}
	}
}
