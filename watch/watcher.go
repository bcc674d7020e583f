// Package watch observes the data directory and reports record files that
// were added, changed, or removed so scores can be recomputed.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// eventChannelBuffer is the size of the watch event channel.
	eventChannelBuffer = 500

	// DefaultDebounce is used when Config.Debounce is unset.
	DefaultDebounce = 500 * time.Millisecond
)

// Config configures data-directory watching.
type Config struct {
	// Debounce is how long to wait for more changes before emitting.
	Debounce time.Duration `yaml:"debounce" json:"debounce"`

	// Extensions lists file extensions to watch (e.g. [".json"]).
	Extensions []string `yaml:"extensions" json:"extensions"`

	// ExcludeDirs lists directory names to skip.
	ExcludeDirs []string `yaml:"exclude_dirs" json:"exclude_dirs"`
}

// DefaultConfig returns the default watch configuration.
func DefaultConfig() Config {
	return Config{
		Debounce:    DefaultDebounce,
		Extensions:  []string{".json"},
		ExcludeDirs: []string{".git", "node_modules"},
	}
}

// Op indicates the type of file change.
type Op string

// OpCreate, OpModify, and OpDelete enumerate the change kinds.
const (
	OpCreate Op = "create"
	OpModify Op = "modify"
	OpDelete Op = "delete"
)

// Event is one record file change.
type Event struct {
	// Path is relative to the watched directory.
	Path string

	Op Op

	AbsPath string
}

// Watcher watches a directory tree for record file changes.
type Watcher struct {
	config     Config
	dir        string
	watcher    *fsnotify.Watcher
	logger     *slog.Logger
	extensions map[string]bool
	excludes   map[string]bool

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	// Content hashes keyed by relative path. Writes that leave the
	// content unchanged are not reported.
	hashMu sync.RWMutex
	hashes map[string]string

	events chan Event

	droppedEvents atomic.Int64
}

// New creates a watcher over dir. A nil logger uses slog.Default().
func New(config Config, dir string, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	extensions := make(map[string]bool)
	exts := config.Extensions
	if len(exts) == 0 {
		exts = DefaultConfig().Extensions
	}
	for _, ext := range exts {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions[strings.ToLower(ext)] = true
	}

	excludes := make(map[string]bool)
	dirs := config.ExcludeDirs
	if len(dirs) == 0 {
		dirs = DefaultConfig().ExcludeDirs
	}
	for _, d := range dirs {
		excludes[d] = true
	}

	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}

	return &Watcher{
		config:     config,
		dir:        dir,
		watcher:    fsw,
		logger:     logger,
		extensions: extensions,
		excludes:   excludes,
		pending:    make(map[string]fsnotify.Op),
		hashes:     make(map[string]string),
		events:     make(chan Event, eventChannelBuffer),
	}, nil
}

// Events returns the channel of change events. It is closed when the
// watcher stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start records the hashes of existing files, adds watches recursively and
// begins processing events until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return err
	}
	if err := w.prime(); err != nil {
		return err
	}
	if err := w.addWatchesRecursive(w.dir); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Data watcher started",
		"dir", w.dir,
		"debounce", w.config.Debounce,
		"tracked", w.tracked())
	return nil
}

// Stop stops the watcher. The events channel is closed by the processing
// goroutine when it exits.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// Run starts the watcher and calls onChange once per debounced batch of
// events until ctx is cancelled. Errors from onChange are logged and do
// not stop the loop.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context, []Event) error) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.events:
			if !ok {
				return nil
			}
			batch := append([]Event{ev}, w.drain()...)
			if err := onChange(ctx, batch); err != nil {
				w.logger.Warn("Change handler failed", "events", len(batch), "error", err)
			}
		}
	}
}

// drain collects whatever events are already buffered without blocking.
func (w *Watcher) drain() []Event {
	var out []Event
	for {
		select {
		case ev, ok := <-w.events:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

// SetHash records the content hash for a relative path.
func (w *Watcher) SetHash(path, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[path] = hash
}

// GetHash returns the recorded content hash for a relative path.
func (w *Watcher) GetHash(path string) (string, bool) {
	w.hashMu.RLock()
	defer w.hashMu.RUnlock()
	hash, ok := w.hashes[path]
	return hash, ok
}

func (w *Watcher) tracked() int {
	w.hashMu.RLock()
	defer w.hashMu.RUnlock()
	return len(w.hashes)
}

// DroppedEvents returns the number of events dropped due to channel overflow.
func (w *Watcher) DroppedEvents() int64 {
	return w.droppedEvents.Load()
}

// ContentHash returns the hex SHA-256 of content.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func (w *Watcher) prime() error {
	return filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if w.skipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !w.watched(path) {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			w.logger.Warn("Failed to read file for hash", "path", path, "error", err)
			return nil
		}
		w.SetHash(w.rel(path), ContentHash(content))
		return nil
	})
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.skipDir(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		} else {
			w.logger.Debug("Watching directory", "path", path)
		}
		return nil
	})
}

// skipDir reports whether a directory is excluded or hidden. The root is
// never skipped.
func (w *Watcher) skipDir(path string) bool {
	if filepath.Clean(path) == filepath.Clean(w.dir) {
		return false
	}
	base := filepath.Base(path)
	return w.excludes[base] || strings.HasPrefix(base, ".")
}

func (w *Watcher) watched(path string) bool {
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.dir, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.config.Debounce)
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
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	if !w.watched(path) {
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(path); err == nil && info.IsDir() && !w.skipDir(path) {
				if err := w.addWatchesRecursive(path); err != nil {
					w.logger.Warn("Failed to watch new directory", "path", path, "error", err)
				}
			}
		}
		return
	}

	rel := w.rel(path)
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/") {
		if w.excludes[part] {
			return
		}
	}

	w.pendingMu.Lock()
	w.pending[path] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Record change detected", "path", rel, "op", event.Op.String())
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for path, op := range toProcess {
		if ctx.Err() != nil {
			return
		}

		rel := w.rel(path)
		event := Event{Path: rel, AbsPath: path}

		content, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				w.logger.Warn("Failed to read file for hash check", "path", rel, "error", err)
				continue
			}
			w.hashMu.Lock()
			_, known := w.hashes[rel]
			delete(w.hashes, rel)
			w.hashMu.Unlock()
			if known || op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
				event.Op = OpDelete
				w.sendEvent(event)
			}
			continue
		}

		newHash := ContentHash(content)
		oldHash, hadHash := w.GetHash(rel)
		if hadHash && oldHash == newHash {
			continue
		}
		w.SetHash(rel, newHash)

		if hadHash {
			event.Op = OpModify
		} else {
			event.Op = OpCreate
		}
		w.sendEvent(event)
	}
}

func (w *Watcher) sendEvent(event Event) {
	select {
	case w.events <- event:
		w.logger.Debug("Sent watch event", "path", event.Path, "op", event.Op)
	default:
		dropped := w.droppedEvents.Add(1)
		w.logger.Warn("Event channel full, dropping event",
			"path", event.Path,
			"total_dropped", dropped)
	}
}
