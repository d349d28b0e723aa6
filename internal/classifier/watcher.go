package classifier

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cardioshield/predictor/internal/logger"
)

// Watcher reloads a Registry when files in its directory change.
// Bursts of events (editors, copy tools) are collapsed into one reload.
type Watcher struct {
	registry *Registry
	watcher  *fsnotify.Watcher
	debounce time.Duration
	log      logger.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher on the registry's directory
func NewWatcher(registry *Registry, debounce time.Duration, log logger.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		registry: registry,
		watcher:  fw,
		debounce: debounce,
		log:      log.With(logger.String("component", "model_watcher")),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching, creating the directory if it does not exist yet.
// It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	if err := os.MkdirAll(w.registry.Dir(), 0o755); err != nil {
		return fmt.Errorf("failed to create model directory %s: %w", w.registry.Dir(), err)
	}
	if err := w.watcher.Add(w.registry.Dir()); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.registry.Dir(), err)
	}
	w.running = true

	go w.run(ctx)

	w.log.Info("Watching model directory", logger.String("dir", w.registry.Dir()))
	return nil
}

// Stop ends the event loop and releases the underlying watcher
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		_ = w.watcher.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.log.Error("Failed to close file watcher", logger.Error(err))
	}
	w.log.Info("Model watcher stopped")
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			if filepath.Clean(event.Name) == filepath.Clean(w.registry.Dir()) {
				w.log.Warn("Model directory removed, models reload on request from now on",
					logger.String("dir", w.registry.Dir()))
			}
			w.log.Debug("Model directory changed",
				logger.String("path", event.Name),
				logger.String("op", event.Op.String()),
			)
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
			pending = true

		case <-timer.C:
			pending = false
			available := w.registry.Reload()
			w.log.Info("Models reloaded", logger.Int("available", available))

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("File watcher error", logger.Error(err))
		}
	}
}

func relevant(event fsnotify.Event) bool {
	return event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) ||
		event.Has(fsnotify.Rename)
}
