package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watcher triggers a coalesced refresh when the workspace changes, so edits
// show up before the next timer tick. fsnotify does not recurse, so the
// root and its immediate subdirectories are watched; deeper changes are
// picked up by the periodic scan. Watcher failure degrades the daemon to
// timer-only operation.
type Watcher struct {
	watcher  *fsnotify.Watcher
	root     string
	debounce time.Duration
	onChange func()
	logger   *logrus.Entry
}

// NewWatcher watches the workspace root and its top-level directories.
func NewWatcher(root string, debounce time.Duration, onChange func(), logger *logrus.Entry) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsWatcher.Add(root); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	if entries, readErr := os.ReadDir(root); readErr == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			dir := filepath.Join(root, entry.Name())
			if err := fsWatcher.Add(dir); err != nil {
				logger.WithError(err).Debugf("Failed to watch %s", dir)
			}
		}
	}

	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &Watcher{
		watcher:  fsWatcher,
		root:     root,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}, nil
}

// Run consumes filesystem events until the context is canceled. Bursts are
// debounced into a single refresh.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			// New top-level directories need their own watch.
			if event.Has(fsnotify.Create) && filepath.Dir(event.Name) == w.root {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.watcher.Add(event.Name); err != nil {
						w.logger.WithError(err).Debugf("Failed to watch %s", event.Name)
					}
				}
			}
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("Workspace watcher error")
		case <-timer.C:
			w.logger.Debug("Workspace change detected, requesting refresh")
			w.onChange()
		}
	}
}
