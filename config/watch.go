package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch calls fn with freshly loaded settings every time the file at path is
// written or replaced, until ctx is done. The parent directory is watched so
// editors that save through rename are picked up. Load errors are passed to
// fn rather than stopping the watch.
func Watch(ctx context.Context, path string, fn func(Settings, error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		_ = w.Close()
	}()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			s, err := Load(abs)
			if err == nil {
				err = s.Validate()
			}
			fn(s, err)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fn(Settings{}, fmt.Errorf("watch %s: %w", abs, err))
		}
	}
}
