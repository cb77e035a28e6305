// Package configwatch watches the config file for changes so that the
// log level can be adjusted without a restart.
package configwatch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc is called with the config file path after a change has
// settled. It should re-read the file and apply what is safe to apply
// at runtime.
type ReloadFunc func(path string)

// Watch starts an fsnotify watcher on the config file's directory and
// calls reload after each write to the file, until ctx is cancelled.
// Watching the directory rather than the file itself survives the
// rename-and-replace pattern editors and config management tools use.
func Watch(ctx context.Context, path string, logger *slog.Logger, reload ReloadFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("configwatch: started", slog.String("path", path))

	// Debounce bursts of events from a single save.
	var settleTimer *time.Timer
	var settleCh <-chan time.Time

	scheduleReload := func() {
		if settleTimer == nil {
			settleTimer = time.NewTimer(200 * time.Millisecond)
			settleCh = settleTimer.C
		} else {
			settleTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if settleTimer != nil {
				settleTimer.Stop()
			}
			logger.Info("configwatch: stopped")
			return nil

		case <-settleCh:
			reload(path)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				logger.Debug("configwatch: change detected", slog.String("op", ev.Op.String()))
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("configwatch: error", slog.String("error", watchErr.Error()))
		}
	}
}
