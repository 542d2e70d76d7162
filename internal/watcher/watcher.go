// Package watcher observes corpus input files and emits debounced change
// batches, driving incremental rebuilds in watch mode.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Operation classifies a file event.
type Operation int

const (
	// OpCreate indicates a new file appeared.
	OpCreate Operation = iota
	// OpModify indicates an existing file changed.
	OpModify
	// OpDelete indicates a file was removed.
	OpDelete
)

// String returns a human-readable operation name.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// FileEvent is one observed change.
type FileEvent struct {
	Path      string
	Operation Operation
	Timestamp time.Time
}

// DefaultDebounceWindow coalesces editor save bursts into one rebuild.
const DefaultDebounceWindow = 500 * time.Millisecond

// FileWatcher watches a fixed set of input files via fsnotify and emits
// debounced event batches. Watching the parent directories rather than
// the files themselves survives the delete+rename dance editors perform
// on save.
type FileWatcher struct {
	inputs    map[string]struct{}
	debouncer *Debouncer
	logger    *slog.Logger
}

// WatcherOption configures a FileWatcher.
type WatcherOption func(*FileWatcher)

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) WatcherOption {
	return func(w *FileWatcher) { w.logger = l }
}

// NewFileWatcher creates a watcher for the given input files.
func NewFileWatcher(inputs []string, window time.Duration, opts ...WatcherOption) (*FileWatcher, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input files to watch")
	}
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	w := &FileWatcher{
		inputs:    make(map[string]struct{}, len(inputs)),
		debouncer: NewDebouncer(window),
		logger:    slog.Default(),
	}
	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", input, err)
		}
		w.inputs[abs] = struct{}{}
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Batches returns the channel of debounced event batches.
func (w *FileWatcher) Batches() <-chan []FileEvent {
	return w.debouncer.Output()
}

// Run watches until the context is cancelled. Events for files other
// than the configured inputs are ignored.
func (w *FileWatcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()
	defer w.debouncer.Stop()

	dirs := make(map[string]struct{})
	for input := range w.inputs {
		dirs[filepath.Dir(input)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.logger.Debug("watching_directory", slog.String("dir", dir))
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher_error", slog.String("error", err.Error()))
		}
	}
}

func (w *FileWatcher) handle(event fsnotify.Event) {
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	if _, tracked := w.inputs[abs]; !tracked {
		return
	}

	var op Operation
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		op = OpDelete
	default:
		return
	}

	w.logger.Debug("file_event",
		slog.String("path", abs),
		slog.String("op", op.String()))
	w.debouncer.Add(FileEvent{Path: abs, Operation: op, Timestamp: time.Now()})
}
