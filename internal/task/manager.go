// Package task is the task dependency graph and lifecycle engine.
//
// Manager is the only component that mutates the task collection. Every
// mutation runs inside the repository's critical section: load, compute the
// next collection on a private copy, validate it, then save. A rejected
// operation returns before the save, so nothing partial is ever committed.
package task

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/watchfire-io/taskgraph/internal/models"
)

// Repository is the persistence contract the engine needs.
type Repository interface {
	// Load returns a private copy of the committed collection.
	Load() ([]*models.Task, error)
	// Update loads, applies fn and saves as one serialized step.
	Update(fn func(tasks []*models.Task) ([]*models.Task, error)) error
	// Backup copies tasks aside and returns where they were written.
	Backup(tasks []*models.Task, at time.Time) (string, error)
}

// Manager handles task operations.
type Manager struct {
	repo     Repository
	settings models.Settings
	now      func() time.Time
	newID    func() string
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDGenerator overrides task id generation.
func WithIDGenerator(newID func() string) Option {
	return func(m *Manager) { m.newID = newID }
}

// NewManager creates a task manager over repo. A nil settings uses defaults.
func NewManager(repo Repository, settings *models.Settings, opts ...Option) *Manager {
	if settings == nil {
		settings = models.NewSettings()
	}
	s := *settings
	s.Normalize()

	m := &Manager{
		repo:     repo,
		settings: s,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Settings returns the effective settings.
func (m *Manager) Settings() models.Settings {
	return m.settings
}

// mutate runs fn in the repository's critical section. fn may return
// errUnchanged to finish successfully without writing.
func (m *Manager) mutate(fn func(tasks []*models.Task) ([]*models.Task, error)) error {
	err := m.repo.Update(fn)
	if errors.Is(err, errUnchanged) {
		return nil
	}
	return err
}

func findTask(tasks []*models.Task, id string) (int, *models.Task) {
	for i, t := range tasks {
		if t.ID == id {
			return i, t
		}
	}
	return -1, nil
}

func taskNames(tasks []*models.Task) []string {
	names := make([]string, 0, len(tasks))
	for _, t := range tasks {
		names = append(names, t.Name)
	}
	return names
}

func taskIDs(tasks []*models.Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}
