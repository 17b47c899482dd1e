// internal/workflow/watch.go
package workflow

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the template directory into a registry when files change.
// Edits arrive in bursts (editor save, rename dance), so reloads are
// debounced behind a single timer for the whole directory.
type Watcher struct {
	dir      string
	registry *Registry
	debounce time.Duration
	logger   *zap.Logger

	watcher *fsnotify.Watcher
	done    chan struct{}

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

// Watch starts watching dir and reloading templates into the registry.
func Watch(dir string, registry *Registry, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch template dir %s: %w", dir, err)
	}

	w := &Watcher{
		dir:      dir,
		registry: registry,
		debounce: debounce,
		logger:   logger,
		watcher:  fsw,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Close stops the watcher and cancels any pending reload.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("template watcher error", zap.Error(err))

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	templates, err := LoadDir(w.dir)
	if err != nil {
		w.logger.Warn("template reload failed", zap.Error(err))
		return
	}
	for _, t := range templates {
		if err := w.registry.Register(t); err != nil {
			w.logger.Warn("template rejected", zap.String("id", t.ID), zap.Error(err))
		}
	}
	w.logger.Info("templates reloaded", zap.Int("count", len(templates)))
}
