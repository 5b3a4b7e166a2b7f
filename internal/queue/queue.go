// Package queue implements the debounced, lock-mediated, persisted
// processing queue.
package queue

import (
	"container/list"
	"sync"
	"time"

	"github.com/veltra-labs/docvault/internal/core/domain"
)

const (
	debounceTick        = 100 * time.Millisecond
	persistInterval     = 30 * time.Second
	defaultDebounceWait = 1000 * time.Millisecond
)

type pendingEntry struct {
	task            domain.ProcessingTask
	earliestEnqueue time.Time
}

// Manager holds four process-local structures: a debounced pending map,
// a ready FIFO, a per-path lock table and a persisted version map.
type Manager struct {
	debounceWait time.Duration

	mu      sync.Mutex
	pending map[string]*pendingEntry
	ready   *list.List // of domain.ProcessingTask

	locks map[string]chan struct{} // binary semaphores

	versions *versionStore

	closeCh   chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New creates a Manager backed by a version map persisted under dataDir.
// debounceWait of zero uses the default of 1000ms.
func New(dataDir string, debounceWait time.Duration) (*Manager, error) {
	if debounceWait <= 0 {
		debounceWait = defaultDebounceWait
	}

	vs, err := loadVersionStore(dataDir)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		debounceWait: debounceWait,
		pending:      make(map[string]*pendingEntry),
		ready:        list.New(),
		locks:        make(map[string]chan struct{}),
		versions:     vs,
		closeCh:      make(chan struct{}),
	}

	m.wg.Add(2)
	go m.debounceLoop()
	go m.persistLoop()

	return m, nil
}

// EnqueueChange upserts task into the pending map, resetting its debounce
// timer. A second change to the same path before the debounce elapses
// collapses into this single, latest task.
func (m *Manager) EnqueueChange(task domain.ProcessingTask) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[task.RelativePath] = &pendingEntry{
		task:            task,
		earliestEnqueue: time.Now().UTC().Add(m.debounceWait),
	}
}

// EnqueueDirect bypasses the debounce and pushes task straight onto the
// ready queue, used for the version-mismatch direct-requeue.
func (m *Manager) EnqueueDirect(task domain.ProcessingTask) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, task.RelativePath)
	m.ready.PushBack(task)
}

// TryDequeue pops the next ready task, or reports false if none is ready.
func (m *Manager) TryDequeue() (domain.ProcessingTask, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	front := m.ready.Front()
	if front == nil {
		return domain.ProcessingTask{}, false
	}
	m.ready.Remove(front)
	return front.Value.(domain.ProcessingTask), true
}

// Requeue increments task's retry count and pushes it back onto the ready
// queue (used when a lock could not be acquired, or the worker decides to
// retry).
func (m *Manager) Requeue(task domain.ProcessingTask) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready.PushBack(task.WithRetry())
}

// TryAcquireLock attempts a non-blocking acquire of path's binary
// semaphore, creating it on first use.
func (m *Manager) TryAcquireLock(path string) bool {
	m.mu.Lock()
	sem, ok := m.locks[path]
	if !ok {
		sem = make(chan struct{}, 1)
		m.locks[path] = sem
	}
	m.mu.Unlock()

	select {
	case sem <- struct{}{}:
		return true
	default:
		return false
	}
}

// ReleaseLock releases path's semaphore. Releasing a lock that was not
// held is a no-op.
func (m *Manager) ReleaseLock(path string) {
	m.mu.Lock()
	sem, ok := m.locks[path]
	m.mu.Unlock()
	if !ok {
		return
	}
	select {
	case <-sem:
	default:
	}
}

// GetVersion returns the last successfully processed content hash for
// path, if any.
func (m *Manager) GetVersion(path string) (string, bool) {
	return m.versions.get(path)
}

// SetVersion records path's last successfully processed content hash.
func (m *Manager) SetVersion(path, hash string) {
	m.versions.set(path, hash)
}

// RemoveVersion forgets path's recorded version, called after a deletion
// is fully processed.
func (m *Manager) RemoveVersion(path string) {
	m.versions.remove(path)
}

// Close stops background loops and flushes the version map one final
// time.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		close(m.closeCh)
	})
	m.wg.Wait()
	return m.versions.persist()
}

func (m *Manager) debounceLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(debounceTick)
	defer ticker.Stop()

	for {
		select {
		case <-m.closeCh:
			return
		case <-ticker.C:
			m.promotePending()
		}
	}
}

func (m *Manager) promotePending() {
	now := time.Now().UTC()

	m.mu.Lock()
	defer m.mu.Unlock()

	for path, entry := range m.pending {
		if !entry.earliestEnqueue.After(now) {
			m.ready.PushBack(entry.task)
			delete(m.pending, path)
		}
	}
}

func (m *Manager) persistLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(persistInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.closeCh:
			return
		case <-ticker.C:
			_ = m.versions.persist()
		}
	}
}
