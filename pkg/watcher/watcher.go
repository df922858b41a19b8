package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/awork-io/sting/pkg/logging"
)

// ChangeEvent represents a batch of TypeScript source changes
type ChangeEvent struct {
	Paths     []string
	Timestamp time.Time
}

// FileWatcher watches monorepo source trees for TypeScript changes.
// fsnotify is not recursive, so every directory under the watched roots is
// registered individually, and directories created later are added as their
// create events arrive.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	roots    []string
	skipDirs map[string]bool
	events   chan ChangeEvent
	done     chan struct{}
	mu       sync.Mutex
}

// NewFileWatcher creates a watcher over the given directory roots. Names in
// skipDirs are not watched or descended into.
func NewFileWatcher(roots []string, skipDirs []string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	skip := make(map[string]bool, len(skipDirs))
	for _, name := range skipDirs {
		skip[name] = true
	}

	fw := &FileWatcher{
		watcher:  watcher,
		roots:    roots,
		skipDirs: skip,
		events:   make(chan ChangeEvent, 100),
		done:     make(chan struct{}),
	}

	return fw, nil
}

// Start registers the directory trees and begins watching for changes.
func (fw *FileWatcher) Start(ctx context.Context) error {
	count := 0
	for _, root := range fw.roots {
		n, err := fw.watchTree(root)
		if err != nil {
			logging.Warn("failed to watch directory tree", "path", root, "error", err)
			continue
		}
		count += n
	}

	logging.Info("started watching source trees", "roots", len(fw.roots), "directories", count)

	go fw.processEvents(ctx)

	return nil
}

// watchTree registers root and every directory below it.
func (fw *FileWatcher) watchTree(root string) (int, error) {
	count := 0

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip directories we can't access
		}
		if !d.IsDir() {
			return nil
		}
		if fw.skipDirs[d.Name()] || (strings.HasPrefix(d.Name(), ".") && path != root) {
			return filepath.SkipDir
		}

		if err := fw.watcher.Add(path); err != nil {
			logging.Warn("failed to watch directory", "path", path, "error", err)
			return nil
		}
		count++
		return nil
	})

	if err != nil {
		return count, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return count, nil
}

// processEvents filters raw fsnotify events down to TypeScript sources and
// batches them before emitting.
func (fw *FileWatcher) processEvents(ctx context.Context) {
	var pending []string

	flushTimer := time.NewTimer(100 * time.Millisecond)
	flushTimer.Stop()

	flush := func() {
		if len(pending) == 0 {
			return
		}
		fw.events <- ChangeEvent{
			Paths:     pending,
			Timestamp: time.Now(),
		}
		pending = nil
	}

	for {
		select {
		case <-ctx.Done():
			fw.watcher.Close()
			close(fw.events)
			close(fw.done)
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			// New directories must be registered to keep the tree covered.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !fw.skipDirs[filepath.Base(event.Name)] {
						if _, err := fw.watchTree(event.Name); err != nil {
							logging.Warn("failed to watch new directory", "path", event.Name, "error", err)
						}
					}
					continue
				}
			}

			if !isTypeScriptSource(event.Name) {
				continue
			}

			pending = append(pending, event.Name)
			flushTimer.Reset(100 * time.Millisecond)

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

func isTypeScriptSource(path string) bool {
	return strings.HasSuffix(path, ".ts") || strings.HasSuffix(path, ".tsx")
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Stop stops the file watcher
func (fw *FileWatcher) Stop() error {
	close(fw.done)
	return fw.watcher.Close()
}
