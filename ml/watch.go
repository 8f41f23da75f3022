package ml

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchArtifact reports changes to the artifact file at path until ctx is
// done. The loaded model is never swapped; a changed artifact only takes
// effect after a restart, so changes are logged and passed to onChange.
//
// The parent directory is watched because deploy tools usually replace the
// file by rename.
func WatchArtifact(ctx context.Context, path string, logger *zap.Logger, onChange func(fsnotify.Event)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Warn("model artifact changed on disk; restart to load it",
				zap.String("path", abs),
				zap.String("op", event.Op.String()),
			)
			if onChange != nil {
				onChange(event)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("artifact watcher error", zap.Error(err))
		}
	}
}
