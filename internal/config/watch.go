package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 200 * time.Millisecond

// Watcher calls a function after the config file changed. Bursts of
// changes, like an editor's write and rename, result in one call.
type Watcher struct {
	filePath string
	onChange func(ctx context.Context)
}

func NewWatcher(filePath string, onChange func(ctx context.Context)) Watcher {
	return Watcher{
		filePath: filepath.Clean(filePath),
		onChange: onChange,
	}
}

func (w Watcher) String() string {
	return "config.Watcher"
}

func (w Watcher) Serve(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// The directory is watched since editors replace the file.
	if err := watcher.Add(filepath.Dir(w.filePath)); err != nil {
		return err
	}

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Failed to watch config", "package", "config", "error", err)
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.filePath {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			slog.Debug("Config changed", "package", "config", "op", ev.Op.String())
			timer.Reset(watchDebounce)
		case <-timer.C:
			w.onChange(ctx)
		}
	}
}
