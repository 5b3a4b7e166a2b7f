package notifier

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veltra-labs/docvault/internal/core/domain"
)

func waitForEvent(t *testing.T, ch <-chan domain.FileChangeEvent, timeout time.Duration) (domain.FileChangeEvent, bool) {
	t.Helper()
	select {
	case ev := <-ch:
		return ev, true
	case <-time.After(timeout):
		return domain.FileChangeEvent{}, false
	}
}

func TestNotifier_DetectsFileCreate(t *testing.T) {
	dir := t.TempDir()
	n, err := New(dir)
	require.NoError(t, err)
	defer n.Close()

	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	ev, ok := waitForEvent(t, n.Events(), 3*time.Second)
	require.True(t, ok, "expected a create/write event")
	assert.Equal(t, domain.OriginFileSystem, ev.Origin)
	assert.Equal(t, "note.txt", ev.RelativePath)
}

func TestNotifier_SuppressesApplicationEcho(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app-write.txt")
	// The file exists before the watcher starts, so rewriting it below
	// raises only Write (Modified) events: the same kind the application
	// reports.
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	n, err := New(dir)
	require.NoError(t, err)
	defer n.Close()

	n.NotifyApplicationChange(domain.ChangeModified, "app-write.txt", path, false)

	// Drain the synchronous application-origin event first.
	ev, ok := waitForEvent(t, n.Events(), time.Second)
	require.True(t, ok)
	assert.Equal(t, domain.OriginWebDAV, ev.Origin)

	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	// The OS-level echo of this same (kind, path) within the suppression
	// window must not produce a second delivered event.
	_, ok = waitForEvent(t, n.Events(), 2*time.Second)
	assert.False(t, ok, "OS echo of an application change should be suppressed")
}

func TestNotifier_SubscribeAndUnsubscribe(t *testing.T) {
	dir := t.TempDir()
	n, err := New(dir)
	require.NoError(t, err)
	defer n.Close()

	var received int
	unsubscribe := n.Subscribe(func(domain.FileChangeEvent) { received++ })

	n.NotifyApplicationChange(domain.ChangeCreated, "a.txt", filepath.Join(dir, "a.txt"), false)
	<-n.Events()
	assert.Equal(t, 1, received)

	unsubscribe()
	n.NotifyApplicationChange(domain.ChangeCreated, "b.txt", filepath.Join(dir, "b.txt"), false)
	<-n.Events()
	assert.Equal(t, 1, received, "no further callbacks after unsubscribe")
}
