package ast

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig configures the file watcher
type WatcherConfig struct {
	// Root is the directory to watch recursively
	Root string

	// Extensions limits which files produce events (e.g. ".ts", ".tsx")
	Extensions []string

	// SkipDirs are directory base names never watched
	SkipDirs []string

	// DebounceDelay is how long to wait for more changes before emitting a batch
	DebounceDelay time.Duration

	// Logger for logging events
	Logger *slog.Logger
}

// WatchOperation indicates the type of change
type WatchOperation string

const (
	OpCreate WatchOperation = "create"
	OpModify WatchOperation = "modify"
	OpDelete WatchOperation = "delete"
)

// WatchEvent is one file change, path relative to the watched root
type WatchEvent struct {
	Path      string
	Operation WatchOperation
}

// WatchBatch is the set of changes accumulated during one debounce window
type WatchBatch struct {
	Events []WatchEvent
}

// Watcher watches for source file changes and emits debounced batches
type Watcher struct {
	config   WatcherConfig
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	// Debouncing: collect changes before emitting
	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op // path → most recent operation

	// Content hashes suppress events for saves that changed nothing
	hashMu sync.RWMutex
	hashes map[string]string

	batches chan WatchBatch
}

// NewWatcher creates a new file watcher
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	debounce := config.DebounceDelay
	if debounce == 0 {
		debounce = 200 * time.Millisecond
	}

	return &Watcher{
		config:   config,
		watcher:  fsw,
		logger:   logger,
		debounce: debounce,
		pending:  make(map[string]fsnotify.Op),
		hashes:   make(map[string]string),
		batches:  make(chan WatchBatch, 16),
	}, nil
}

// Batches returns the channel of debounced change batches
func (w *Watcher) Batches() <-chan WatchBatch {
	return w.batches
}

// Start begins watching the root for changes
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.config.Root); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("File watcher started",
		"root", w.config.Root,
		"debounce", w.debounce)

	return nil
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) skipDir(base string) bool {
	if strings.HasPrefix(base, ".") && base != "." {
		return true
	}
	for _, s := range w.config.SkipDirs {
		if base == s {
			return true
		}
	}
	return false
}

func (w *Watcher) isTarget(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range w.config.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// addWatchesRecursive adds watches to all directories
func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			if w.isTarget(path) {
				w.recordHash(path)
			}
			return nil
		}

		if path != root && w.skipDir(filepath.Base(path)) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory",
				"path", path,
				"error", err)
		} else {
			w.logger.Debug("Watching directory", "path", path)
		}

		return nil
	})
}

// processEvents handles fsnotify events with debouncing
func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.batches)

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending()
		}
	}
}

// handleFSEvent processes a single fsnotify event
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	if !w.isTarget(path) {
		// New directories need their own watch
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(path); err == nil && info.IsDir() && !w.skipDir(filepath.Base(path)) {
				if err := w.addWatchesRecursive(path); err != nil {
					w.logger.Warn("Failed to watch new directory", "path", path, "error", err)
				}
			}
		}
		return
	}

	w.pendingMu.Lock()
	w.pending[path] = event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("File change detected",
		"path", path,
		"op", event.Op.String())
}

// flushPending emits the accumulated changes as one batch
func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	var batch WatchBatch
	for path, op := range toProcess {
		relPath, err := filepath.Rel(w.config.Root, path)
		if err != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		if _, err := os.Stat(path); op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) || os.IsNotExist(err) {
			w.hashMu.Lock()
			delete(w.hashes, path)
			w.hashMu.Unlock()
			batch.Events = append(batch.Events, WatchEvent{Path: relPath, Operation: OpDelete})
			continue
		}

		oldHash, hadHash := w.hash(path)
		newHash := w.recordHash(path)
		if hadHash && oldHash == newHash {
			continue
		}

		operation := OpModify
		if op.Has(fsnotify.Create) || !hadHash {
			operation = OpCreate
		}
		batch.Events = append(batch.Events, WatchEvent{Path: relPath, Operation: operation})
	}

	if len(batch.Events) == 0 {
		return
	}
	sort.Slice(batch.Events, func(i, j int) bool { return batch.Events[i].Path < batch.Events[j].Path })

	select {
	case w.batches <- batch:
		w.logger.Debug("Sent watch batch", "changes", len(batch.Events))
	default:
		w.logger.Warn("Batch channel full, dropping batch", "changes", len(batch.Events))
	}
}

func (w *Watcher) hash(path string) (string, bool) {
	w.hashMu.RLock()
	defer w.hashMu.RUnlock()
	h, ok := w.hashes[path]
	return h, ok
}

func (w *Watcher) recordHash(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	h := ComputeHash(content)
	w.hashMu.Lock()
	w.hashes[path] = h
	w.hashMu.Unlock()
	return h
}
