package ast

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	w, err := NewWatcher(WatcherConfig{
		Root:          root,
		Extensions:    []string{".ts"},
		SkipDirs:      []string{"node_modules"},
		DebounceDelay: 50 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	require.NoError(t, w.Start(ctx))
	return w
}

// waitFor drains batches until one reports path with op.
func waitFor(t *testing.T, w *Watcher, path string, op WatchOperation) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case b, ok := <-w.Batches():
			require.True(t, ok, "batch channel closed")
			for _, ev := range b.Events {
				if ev.Path == path && ev.Operation == op {
					return
				}
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s %s", op, path)
		}
	}
}

func TestWatcher_CreateModifyDelete(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "a.service.ts")
	require.NoError(t, os.WriteFile(existing, []byte("export const a = 1;\n"), 0644))

	w := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "b.service.ts"), []byte("export const b = 1;\n"), 0644))
	waitFor(t, w, "b.service.ts", OpCreate)

	require.NoError(t, os.WriteFile(existing, []byte("export const a = 2;\n"), 0644))
	waitFor(t, w, "a.service.ts", OpModify)

	require.NoError(t, os.Remove(existing))
	waitFor(t, w, "a.service.ts", OpDelete)
}

func TestWatcher_IgnoresUnchangedAndUntargeted(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.ts")
	require.NoError(t, os.WriteFile(file, []byte("same\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "pkg"), 0755))

	w := startWatcher(t, root)

	// rewrite with identical content, touch a non-target file and a skipped dir
	require.NoError(t, os.WriteFile(file, []byte("same\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "pkg", "index.ts"), []byte("x"), 0644))

	// a real change afterwards is the only path ever reported
	require.NoError(t, os.WriteFile(filepath.Join(root, "z.ts"), []byte("new\n"), 0644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case b := <-w.Batches():
			for _, ev := range b.Events {
				require.Equal(t, "z.ts", ev.Path)
			}
			return
		case <-deadline:
			t.Fatal("timed out waiting for z.ts")
		}
	}
}

func TestWatcher_NewDirectoryIsWatched(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	dir := filepath.Join(root, "features", "comics")
	require.NoError(t, os.MkdirAll(dir, 0755))
	// give the watcher a moment to register the new directories
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.ts"), []byte("x\n"), 0644))

	waitFor(t, w, "features/comics/x.ts", OpCreate)
}

func TestWatcher_ClosesOnCancel(t *testing.T) {
	w, err := NewWatcher(WatcherConfig{Root: t.TempDir(), Extensions: []string{".ts"}})
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()

	select {
	case _, ok := <-w.Batches():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("batch channel not closed after cancel")
	}
}
