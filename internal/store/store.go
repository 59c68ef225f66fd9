// Package store persists the task collection for a data directory.
package store

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/watchfire-io/taskgraph/internal/config"
	"github.com/watchfire-io/taskgraph/internal/models"
)

// ErrIO marks failures of the underlying persistence medium.
var ErrIO = errors.New("task store I/O failure")

// IOError wraps a persistence failure with the operation and file involved.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// Store owns the authoritative task collection stored in <dataDir>/tasks.yaml.
//
// Writers are serialized by writeMu. Readers are served from an in-memory
// snapshot of the last committed collection and only take the snapshot lock,
// so they never wait on a writer's compute step.
type Store struct {
	dataDir string
	path    string

	writeMu sync.Mutex

	mu       sync.RWMutex
	snapshot []*models.Task
	valid    bool
	gen      uint64
}

// New creates a store rooted at dataDir.
func New(dataDir string) (*Store, error) {
	if strings.TrimSpace(dataDir) == "" {
		return nil, errors.New("store: data dir is required")
	}
	return &Store{
		dataDir: dataDir,
		path:    config.TasksFile(dataDir),
	}, nil
}

// DataDir returns the directory the store persists into.
func (s *Store) DataDir() string { return s.dataDir }

// Path returns the tasks file path.
func (s *Store) Path() string { return s.path }

// Load returns a private copy of the committed collection in store order.
// A store with nothing persisted yields an empty slice. A file that breaks
// the collection invariants is reported as an IOError and never cached.
func (s *Store) Load() ([]*models.Task, error) {
	s.mu.RLock()
	if s.valid {
		out := models.CloneTasks(s.snapshot)
		s.mu.RUnlock()
		return out, nil
	}
	gen := s.gen
	s.mu.RUnlock()

	tasks, err := config.LoadTasks(s.path)
	if err != nil {
		return nil, &IOError{Op: "load", Path: s.path, Err: err}
	}
	if err := validateTasks(tasks); err != nil {
		return nil, &IOError{Op: "load", Path: s.path, Err: err}
	}

	s.mu.Lock()
	// Only cache if nothing committed or invalidated while we were reading.
	if s.gen == gen {
		s.snapshot = tasks
		s.valid = true
	}
	s.mu.Unlock()

	return models.CloneTasks(tasks), nil
}

// Save replaces the persisted collection.
func (s *Store) Save(tasks []*models.Task) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.commit(tasks)
}

// Update runs fn as a critical section: the collection is loaded under the
// write lock, fn computes the next collection, and the result is saved before
// the lock is released. If fn returns an error nothing is written.
func (s *Store) Update(fn func(tasks []*models.Task) ([]*models.Task, error)) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.Load()
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return s.commit(next)
}

// Backup writes a copy of tasks into the memory directory and returns its path.
func (s *Store) Backup(tasks []*models.Task, at time.Time) (string, error) {
	path, err := config.SaveTasksBackup(s.dataDir, tasks, at)
	if err != nil {
		return "", &IOError{Op: "backup", Path: config.MemoryDir(s.dataDir), Err: err}
	}
	log.Printf("[store] Backed up %d tasks to %s", len(tasks), path)
	return path, nil
}

// Invalidate drops the cached snapshot so the next Load reads from disk.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.valid = false
	s.snapshot = nil
	s.gen++
	s.mu.Unlock()
}

func (s *Store) commit(tasks []*models.Task) error {
	tasks = models.CloneTasks(tasks)
	if err := config.SaveTasks(s.path, tasks); err != nil {
		return &IOError{Op: "save", Path: s.path, Err: err}
	}

	s.mu.Lock()
	s.snapshot = tasks
	s.valid = true
	s.gen++
	s.mu.Unlock()
	return nil
}
