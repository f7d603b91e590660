package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/concierge/internal/core/ports/driven"
	"github.com/custodia-labs/concierge/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.CorpusWatcher = (*Watcher)(nil)

// Watcher reports changes under one or more directory trees.
// New subdirectories are watched as they appear.
type Watcher struct {
	dirs []string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher over dirs. Directories that do not exist
// when Watch starts are skipped.
func NewWatcher(dirs ...string) *Watcher {
	return &Watcher{dirs: dirs}
}

// Watch starts watching and returns changed paths.
func (w *Watcher) Watch(ctx context.Context) (<-chan string, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	added := 0
	for _, dir := range w.dirs {
		n, err := addTree(fw, dir)
		if err != nil {
			fw.Close()
			return nil, err
		}
		added += n
	}
	if added == 0 {
		fw.Close()
		return nil, errors.New("no directories to watch")
	}

	w.mu.Lock()
	w.watcher = fw
	w.mu.Unlock()

	changes := make(chan string, 64)
	go w.loop(ctx, fw, changes)
	return changes, nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, changes chan<- string) {
	defer close(changes)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			path, ok := w.handleEvent(fw, event)
			if !ok {
				continue
			}
			select {
			case changes <- path:
			case <-ctx.Done():
				return
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("Corpus watcher error: %v", err)
		}
	}
}

// handleEvent filters an fsnotify event down to a changed path.
// Hidden files and permission-only changes are ignored.
func (w *Watcher) handleEvent(fw *fsnotify.Watcher, event fsnotify.Event) (string, bool) {
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return "", false
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}

	if event.Has(fsnotify.Create) && fw != nil {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if _, err := addTree(fw, event.Name); err != nil {
				logger.Warn("Failed to watch %s: %v", event.Name, err)
			}
		}
	}
	return event.Name, true
}

// Stop ends watching. Calling it more than once is safe.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	fw := w.watcher
	w.watcher = nil
	w.mu.Unlock()

	if fw == nil {
		return nil
	}
	return fw.Close()
}

// addTree watches dir and every visible subdirectory. A missing dir adds nothing.
func addTree(fw *fsnotify.Watcher, dir string) (int, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		logger.Debug("Not watching missing directory %s", dir)
		return 0, nil
	}

	added := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		added++
		return nil
	})
	return added, err
}
