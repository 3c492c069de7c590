package startup

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"photo-slideshow/internal/logging"
)

// WatchConfig watches the config file for modification and invokes onChange
// for each rewrite. The parent directory is watched rather than the file
// itself, since editors often replace the file wholesale. Close the
// returned watcher to stop.
func WatchConfig(path string, onChange func()) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				logging.Info("Config file %s changed", path)
				onChange()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Warn("Config watcher error: %v", err)
			}
		}
	}()

	return watcher, nil
}
