package touch

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"kosketin"
)

// WatchKeyboard watches a keyboard configuration file and sends a
// replacement keyboard to the engine whenever the file changes and
// parses cleanly; a malformed edit is logged and the running keyboard
// stays in place. The parent directory is watched rather than the file
// itself, so editors that replace the file (write to temp, rename over)
// keep the watch alive. Close the returned watcher to stop.
func WatchKeyboard(path string, broker *Broker, log *slog.Logger) (*fsnotify.Watcher, error) {
	if log == nil {
		log = slog.Default()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
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
				if event.Name != path || !event.Op.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					continue
				}
				data, err := os.ReadFile(path)
				if err != nil {
					log.Warn("keyboard config unreadable", "path", path, "err", err)
					continue
				}
				kb, err := kosketin.ParseKeyboard(data)
				if err != nil {
					log.Warn("keyboard config rejected", "path", path, "err", err)
					continue
				}
				log.Info("keyboard config reloaded", "path", path, "keys", kb.Count())
				broker.SendKeyboard(kb)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("keyboard config watcher", "err", err)
			}
		}
	}()
	return watcher, nil
}
