package allowlist

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// fileFormat is the YAML shape of an allowlist file:
//
//	domains:
//	  - home.example.com
//	  - nas.example.com
type fileFormat struct {
	Domains []string `yaml:"domains"`
}

// Watcher loads an allowlist file and keeps a List in sync with it.
type Watcher struct {
	path string
	list *List
}

// NewWatcher creates a Watcher for the given file path.
func NewWatcher(path string, list *List) *Watcher {
	return &Watcher{path: path, list: list}
}

// Load reads the YAML file and replaces the list contents. A missing
// file empties the list (which allows everything) rather than failing,
// so the service can start before the file is provisioned.
func (w *Watcher) Load() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("allowlist file not found, allowing all domains", "path", w.path)
			w.list.Replace(nil)
			return nil
		}
		return fmt.Errorf("read allowlist file: %w", err)
	}

	var parsed fileFormat
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse allowlist file: %w", err)
	}

	w.list.Replace(parsed.Domains)
	slog.Info("allowlist loaded", "path", w.path, "domains", w.list.Len())
	return nil
}

// Watch uses fsnotify to watch the allowlist file and reloads it on
// each write. It blocks until the context is cancelled. A reload error
// keeps the previous list in effect.
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so we catch atomic rename-based writes.
	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch directory %s: %w", dir, err)
	}

	// Debounce timer to coalesce rapid writes.
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			absEvent, _ := filepath.Abs(event.Name)
			absPath, _ := filepath.Abs(w.path)
			if absEvent != absPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(100*time.Millisecond, func() {
				if err := w.Load(); err != nil {
					slog.Error("reload allowlist", "path", w.path, "error", err)
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("fsnotify error", "error", err)
		}
	}
}
