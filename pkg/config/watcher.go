package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchConfig initializes a filesystem watcher for the specified files.
// It returns a channel that emits an empty struct when a change is detected
// and debounced. The watcher runs in a goroutine until the context is canceled.
func WatchConfig(ctx context.Context, files ...string) <-chan struct{} {
	reloadCh := make(chan struct{}, 1)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Error("Failed to create fsnotify watcher", "error", err)
		close(reloadCh)
		return reloadCh
	}

	// Editors replace files on save, so the parent directory is watched and
	// events are filtered by name.
	wanted := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, file := range files {
		absPath, err := filepath.Abs(file)
		if err != nil {
			slog.Warn("Could not resolve absolute path for watch file", "file", file)
			continue
		}
		wanted[absPath] = true
		dirs[filepath.Dir(absPath)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			slog.Warn("Could not watch directory", "dir", dir, "error", err)
		}
	}

	go func() {
		defer watcher.Close()
		defer close(reloadCh)

		var timer *time.Timer
		debounce := 500 * time.Millisecond

		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !wanted[filepath.Clean(event.Name)] {
					continue
				}
				if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) {
					if timer != nil {
						timer.Stop()
					}
					name := event.Name
					timer = time.AfterFunc(debounce, func() {
						slog.Info("Configuration change detected", "file", name)
						select {
						case reloadCh <- struct{}{}:
						default:
						}
					})
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("Watcher encountered an error", "error", err)
			}
		}
	}()

	return reloadCh
}

// WatchSystemConfig reloads path into store whenever it changes. onReload, when
// non-nil, receives every new snapshot. It returns once ctx is canceled.
func WatchSystemConfig(ctx context.Context, store *SystemStore, path string, onReload func(*SystemConfig)) {
	for range WatchConfig(ctx, path) {
		cfg := store.Reload(path)
		slog.Info("System config reloaded",
			"max_agent_iterations", cfg.MaxAgentIterations,
			"log_level", cfg.LogLevel,
			"enable_tools", cfg.EnableTools,
		)
		if onReload != nil {
			onReload(cfg)
		}
	}
}
