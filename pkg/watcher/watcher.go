// Package watcher reloads the seed file when it changes on disk.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrFileRemoved is reported when the watched file disappears.
var ErrFileRemoved = errors.New("watched file was removed")

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the debounce duration.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithOnError sets the callback invoked for watch errors and failed
// reloads. The default logs them.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// Watcher calls onChange after the watched file is written, created or
// renamed into place. It watches the parent directory so atomic saves are
// seen.
type Watcher struct {
	path      string
	debounce  time.Duration
	onChange  func(ctx context.Context) error
	onError   func(error)
	fsWatcher *fsnotify.Watcher
	logger    *zap.Logger
}

// New starts watching path. Events are only delivered once Run is called,
// but nothing written after New returns is missed.
func New(path string, onChange func(ctx context.Context) error, logger *zap.Logger, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	w := &Watcher{
		path:     absPath,
		debounce: DefaultDebounceDuration,
		onChange: onChange,
		logger:   logger.Named("watcher"),
	}
	w.onError = func(err error) {
		w.logger.Warn("Seed watch error", zap.String("path", w.path), zap.Error(err))
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.fsWatcher = fsw
	return w, nil
}

// Path returns the watched file path.
func (w *Watcher) Path() string {
	return w.path
}

// Run delivers change notifications until ctx is done, then releases the
// underlying watcher. It always returns nil.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsWatcher.Close()

	debouncer := NewDebouncer(w.debounce)
	defer debouncer.Cancel()

	target := filepath.Base(w.path)
	w.logger.Info("Watching seed file", zap.String("path", w.path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != target {
				continue
			}

			switch {
			case event.Op&fsnotify.Remove != 0:
				w.onError(ErrFileRemoved)
			case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				debouncer.Trigger(func() { w.reload(ctx) })
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := w.onChange(ctx); err != nil {
		w.onError(fmt.Errorf("reload %s: %w", w.path, err))
		return
	}
	w.logger.Info("Seed file reloaded", zap.String("path", w.path))
}
