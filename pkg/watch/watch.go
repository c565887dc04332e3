// Package watch reloads a glyph registry file when it changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/constellation/pkg/glyph"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 250 * time.Millisecond

// ReloadFunc receives a freshly decoded registry.
type ReloadFunc func([]glyph.Glyph)

// RegistryWatcher watches one registry file. It watches the parent
// directory so that editors replacing the file by rename are still seen.
type RegistryWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onReload ReloadFunc
	logger   *log.Logger
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// Option configures a [RegistryWatcher].
type Option func(*RegistryWatcher)

// WithDebounce sets the debounce period.
func WithDebounce(d time.Duration) Option { return func(w *RegistryWatcher) { w.debounce = d } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(w *RegistryWatcher) { w.logger = l } }

// New starts watching path. onReload runs on the watcher goroutine after
// every successful reload; failed reloads are logged and the previous
// registry stays in effect.
func New(path string, onReload ReloadFunc, opts ...Option) (*RegistryWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &RegistryWatcher{
		path:     abs,
		watcher:  fw,
		onReload: onReload,
		logger:   log.Default(),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run processes events until ctx is done or the watcher is closed.
func (w *RegistryWatcher) Run(ctx context.Context) {
	defer w.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.logger.Debug("registry changed", "file", ev.Name, "op", ev.Op.String())
				w.schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("registry watcher error", "err", err)
		}
	}
}

// Close stops watching.
func (w *RegistryWatcher) Close() error {
	w.stopTimer()
	return w.watcher.Close()
}

func (w *RegistryWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *RegistryWatcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *RegistryWatcher) reload() {
	glyphs, err := glyph.Import(w.path)
	if err != nil {
		w.logger.Error("registry reload failed", "path", w.path, "err", err)
		return
	}
	w.logger.Info("registry reloaded", "path", w.path, "glyphs", len(glyphs))
	if w.onReload != nil {
		w.onReload(glyphs)
	}
}
