package server

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/albertocavalcante/ccflags/internal/log"
)

// DefaultDebounce is the debounce window used when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// Watcher reports changes to a fixed set of files. It watches their parent
// directories so that files replaced by rename (as most tools do when
// regenerating compile_commands.json) are still seen.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	files     map[string]struct{}
	debouncer *Debouncer
}

// NewWatcher watches files and calls onChange with the changed subset after
// each burst of events settles. Empty entries are ignored. Files that do not
// exist yet are watched through their directory if it exists.
func NewWatcher(files []string, window time.Duration, onChange func(paths []string)) (*Watcher, error) {
	if window <= 0 {
		window = DefaultDebounce
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		files:     make(map[string]struct{}),
		debouncer: NewDebouncer(window, onChange),
	}

	logger := log.Component("watch")
	dirs := make(map[string]struct{})
	for _, f := range files {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			continue
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsWatcher.Add(dir); err != nil {
			logger.Warn("cannot watch directory", "dir", dir, "error", err)
			continue
		}
		logger.Debug("watching", "dir", dir)
	}
	return w, nil
}

// Files returns the number of watched files.
func (w *Watcher) Files() int {
	return len(w.files)
}

// Run dispatches events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.debouncer.Stop()
	logger := log.Component("watch")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	name := filepath.Clean(event.Name)
	if _, ok := w.files[name]; !ok {
		return
	}
	log.V(log.VerbosityDebug).Debug("file changed", "path", name, "op", event.Op.String())
	w.debouncer.Add(name)
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.debouncer.Stop()
	return w.fsWatcher.Close()
}
