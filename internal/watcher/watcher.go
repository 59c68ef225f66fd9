// Package watcher reloads the task snapshot when tasks.yaml changes on disk.
package watcher

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/watchfire-io/taskgraph/internal/config"
)

// DebounceInterval is how long the watcher waits for writes to settle.
const DebounceInterval = 100 * time.Millisecond

// Invalidator is anything holding a cached view of tasks.yaml.
type Invalidator interface {
	Invalidate()
}

// Event represents a settled change to the tasks file.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Watcher watches a data directory for changes to tasks.yaml.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	target     Invalidator
	tasksPath  string
	eventsChan chan Event
	done       chan struct{}
	stopOnce   sync.Once
	debounce   *time.Timer
	debounceMu sync.Mutex
}

// New creates a watcher for dataDir that invalidates target on every change.
func New(dataDir string, target Invalidator) (*Watcher, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher:  fsWatcher,
		target:     target,
		tasksPath:  filepath.Clean(config.TasksFile(dataDir)),
		eventsChan: make(chan Event, 16),
		done:       make(chan struct{}),
	}

	// Watch the directory, not the file: atomic saves replace the file inode.
	if err := fsWatcher.Add(dataDir); err != nil {
		_ = fsWatcher.Close()
		return nil, err
	}
	log.Printf("[watcher] Watching %s", dataDir)
	return w, nil
}

// Events returns the channel for receiving settled change events.
func (w *Watcher) Events() <-chan Event {
	return w.eventsChan
}

// Start starts processing file system events.
func (w *Watcher) Start() {
	go w.processEvents()
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()

		w.debounceMu.Lock()
		if w.debounce != nil {
			w.debounce.Stop()
		}
		w.debounceMu.Unlock()
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Printf("[watcher] error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.tasksPath {
		return
	}
	// Rename and Remove matter too: atomic writes rename over the target.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}

	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(DebounceInterval, func() {
		w.fire(Event{Path: event.Name, Op: event.Op})
	})
}

func (w *Watcher) fire(ev Event) {
	select {
	case <-w.done:
		return
	default:
	}

	w.target.Invalidate()

	select {
	case w.eventsChan <- ev:
	default:
		// Slow consumer; the snapshot is already invalidated.
	}
}
