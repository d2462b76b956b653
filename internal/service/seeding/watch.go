package seeding

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultReloadDebounce = 250 * time.Millisecond

// Watcher reloads a presets file whenever it changes on disk and hands every
// successfully loaded registry to apply. A file that fails to load is logged
// and the previous registry stays in place.
type Watcher struct {
	path     string
	apply    func(*Presets)
	debounce time.Duration
	logger   *zap.Logger
}

// NewWatcher builds a watcher for the presets file at path.
func NewWatcher(path string, apply func(*Presets), logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:     filepath.Clean(path),
		apply:    apply,
		debounce: defaultReloadDebounce,
		logger:   logger,
	}
}

// Run blocks until ctx is done. The parent directory is watched rather than the
// file so that editors replacing the file through a rename are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create presets watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("watching plate presets", zap.String("file", w.path))

	// Saves often arrive as several events; reload once they settle.
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.reload()
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("plate presets watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	presets, err := LoadPresets(w.path)
	if err != nil {
		w.logger.Warn("plate presets reload failed, keeping previous set", zap.Error(err))
		return
	}
	w.apply(presets)
	w.logger.Info("plate presets reloaded",
		zap.String("file", w.path),
		zap.Int("count", len(presets.order)))
}
