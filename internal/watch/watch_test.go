package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectChanges starts a watcher on dir and returns a channel of changed paths.
func collectChanges(t *testing.T, dir string) chan string {
	t.Helper()
	w, err := NewWatcher()
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	changes := make(chan string, 16)
	require.NoError(t, w.Watch(dir, func(path string) {
		changes <- path
	}))
	return changes
}

func waitFor(t *testing.T, changes chan string, want string) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case got := <-changes:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for change event for %s", want)
		}
	}
}

func TestWatch_ReportsSupportedFileWrites(t *testing.T) {
	dir := t.TempDir()
	changes := collectChanges(t, dir)

	path := filepath.Join(dir, "a.py")
	require.NoError(t, os.WriteFile(path, []byte("# todo\n"), 0o644))

	waitFor(t, changes, path)
}

func TestWatch_IgnoresUnsupportedExtensions(t *testing.T) {
	dir := t.TempDir()
	changes := collectChanges(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("todo\n"), 0o644))

	select {
	case got := <-changes:
		t.Fatalf("unexpected change event: %s", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestStop_SafeToCallTwice(t *testing.T) {
	w, err := NewWatcher()
	require.NoError(t, err)
	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

func TestRelevant(t *testing.T) {
	t.Parallel()
	assert.True(t, relevant(filepath.Join("src", "a.py")))
	assert.False(t, relevant(filepath.Join("src", "a.txt")))
	assert.False(t, relevant(filepath.Join("node_modules", "pkg", "a.js")))
}
