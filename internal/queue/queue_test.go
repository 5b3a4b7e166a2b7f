package queue

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veltra-labs/docvault/internal/core/domain"
)

func writeCorrupt(dir string) error {
	return os.WriteFile(filepath.Join(dir, versionsFileName), []byte("not json"), 0o644)
}

func newTestManager(t *testing.T, debounce time.Duration) *Manager {
	t.Helper()
	m, err := New(t.TempDir(), debounce)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestEnqueueChange_DebouncesToReadyQueue(t *testing.T) {
	m := newTestManager(t, 50*time.Millisecond)

	m.EnqueueChange(domain.ProcessingTask{RelativePath: "a.txt", FileHash: "h1"})

	_, ok := m.TryDequeue()
	assert.False(t, ok, "task should still be debouncing")

	require.Eventually(t, func() bool {
		task, ok := m.TryDequeue()
		return ok && task.FileHash == "h1"
	}, time.Second, 10*time.Millisecond)
}

func TestEnqueueChange_OverwritesPendingEntry(t *testing.T) {
	m := newTestManager(t, 200*time.Millisecond)

	m.EnqueueChange(domain.ProcessingTask{RelativePath: "a.txt", FileHash: "h1"})
	m.EnqueueChange(domain.ProcessingTask{RelativePath: "a.txt", FileHash: "h2"})

	var got domain.ProcessingTask
	require.Eventually(t, func() bool {
		task, ok := m.TryDequeue()
		if ok {
			got = task
		}
		return ok
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, "h2", got.FileHash)
}

func TestEnqueueDirect_BypassesDebounce(t *testing.T) {
	m := newTestManager(t, time.Hour)

	m.EnqueueDirect(domain.ProcessingTask{RelativePath: "a.txt", FileHash: "h1"})

	task, ok := m.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, "h1", task.FileHash)
}

func TestLock_AcquireReleaseAndContention(t *testing.T) {
	m := newTestManager(t, time.Hour)

	assert.True(t, m.TryAcquireLock("a.txt"))
	assert.False(t, m.TryAcquireLock("a.txt"), "already held")

	m.ReleaseLock("a.txt")
	assert.True(t, m.TryAcquireLock("a.txt"), "reacquirable after release")
}

func TestRequeue_IncrementsRetryCount(t *testing.T) {
	m := newTestManager(t, time.Hour)

	m.Requeue(domain.ProcessingTask{RelativePath: "a.txt", RetryCount: 1})

	task, ok := m.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, 2, task.RetryCount)
}

func TestVersionMap_SetGetRemove(t *testing.T) {
	m := newTestManager(t, time.Hour)

	_, ok := m.GetVersion("a.txt")
	assert.False(t, ok)

	m.SetVersion("a.txt", "hash1")
	hash, ok := m.GetVersion("a.txt")
	require.True(t, ok)
	assert.Equal(t, "hash1", hash)

	m.RemoveVersion("a.txt")
	_, ok = m.GetVersion("a.txt")
	assert.False(t, ok)
}

func TestVersionMap_PersistsAndReloads(t *testing.T) {
	dir := t.TempDir()

	m1, err := New(dir, time.Hour)
	require.NoError(t, err)
	m1.SetVersion("a.txt", "hash1")
	require.NoError(t, m1.Close())

	m2, err := New(dir, time.Hour)
	require.NoError(t, err)
	defer m2.Close()

	hash, ok := m2.GetVersion("a.txt")
	require.True(t, ok)
	assert.Equal(t, "hash1", hash)
}

func TestVersionMap_FallsBackToBackupOnCorruptPrimary(t *testing.T) {
	dir := t.TempDir()

	m1, err := New(dir, time.Hour)
	require.NoError(t, err)
	m1.SetVersion("a.txt", "hash1")
	require.NoError(t, m1.Close())

	// A second persist rotates the now-valid primary into the backup slot.
	m2, err := New(dir, time.Hour)
	require.NoError(t, err)
	m2.SetVersion("b.txt", "hash2")
	require.NoError(t, m2.Close())

	// Corrupt the primary; the backup (from m1's persist) should still
	// carry a.txt.
	require.NoError(t, writeCorrupt(dir))

	m3, err := New(dir, time.Hour)
	require.NoError(t, err)
	defer m3.Close()

	_, ok := m3.GetVersion("a.txt")
	assert.True(t, ok, "should fall back to backup on corrupt primary")
}
