package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reports eligible files created in dir until ctx is cancelled.
//
// The catalog itself is never mutated; callers decide when to rescan.
func Watch(ctx context.Context, dir string, extensions []string, logger *slog.Logger, onAdded func(Submission)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDirectory, dir, err)
	}
	if err := watcher.Add(abs); err != nil {
		return fmt.Errorf("watch %s: %w", abs, err)
	}

	allowed := extensionSet(extensions)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Base(event.Name)
			ext, ok := matchExtension(name, allowed)
			if !ok {
				continue
			}
			if logger != nil {
				logger.Debug("submission added", "path", event.Name)
			}
			if onAdded != nil {
				onAdded(Submission{Path: event.Name, Name: name, Ext: ext})
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			if logger != nil {
				logger.Warn("folder watch error", "error", err.Error())
			}
		}
	}
}
