package models

import (
	"slices"
	"time"
)

// TaskStatus represents the status of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// TaskStatuses lists every status in lifecycle order.
var TaskStatuses = []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	return slices.Contains(TaskStatuses, s)
}

// RelationKind describes how a related file is involved in a task.
type RelationKind string

const (
	RelationToCreate  RelationKind = "to_create"
	RelationToModify  RelationKind = "to_modify"
	RelationReference RelationKind = "reference"
	RelationToDelete  RelationKind = "to_delete"
	RelationOther     RelationKind = "other"
)

// Valid reports whether k is a known relation kind.
func (k RelationKind) Valid() bool {
	switch k {
	case RelationToCreate, RelationToModify, RelationReference, RelationToDelete, RelationOther:
		return true
	}
	return false
}

// RelatedFile links a task to a file it touches.
type RelatedFile struct {
	Path        string       `yaml:"path"`
	Type        RelationKind `yaml:"type"`
	Description string       `yaml:"description,omitempty"`
}

// Task represents a single planned unit of work.
// This corresponds to one entry of the tasks list in tasks.yaml.
type Task struct {
	ID                   string        `yaml:"id"`
	Name                 string        `yaml:"name"`
	Description          string        `yaml:"description"`
	Notes                string        `yaml:"notes,omitempty"`
	Status               TaskStatus    `yaml:"status"`
	Dependencies         []string      `yaml:"dependencies,omitempty"` // task ids, never names
	CreatedAt            time.Time     `yaml:"created_at"`
	UpdatedAt            time.Time     `yaml:"updated_at"`
	CompletedAt          *time.Time    `yaml:"completed_at,omitempty"` // Only when status=completed
	Summary              string        `yaml:"summary,omitempty"`
	RelatedFiles         []RelatedFile `yaml:"related_files,omitempty"`
	ImplementationGuide  string        `yaml:"implementation_guide,omitempty"`
	VerificationCriteria string        `yaml:"verification_criteria,omitempty"`
	AnalysisResult       string        `yaml:"analysis_result,omitempty"`
}

// NewTask creates a new pending task.
func NewTask(id, name, description string, now time.Time) *Task {
	now = now.UTC()
	return &Task{
		ID:          id,
		Name:        name,
		Description: description,
		Status:      TaskStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsCompleted returns true if the task reached its terminal state.
func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

// DependsOn reports whether id is one of the task's dependencies.
func (t *Task) DependsOn(id string) bool {
	return slices.Contains(t.Dependencies, id)
}

// Touch refreshes the update timestamp.
func (t *Task) Touch(now time.Time) {
	t.UpdatedAt = now.UTC()
}

// Start moves the task into progress.
func (t *Task) Start(now time.Time) {
	t.Status = TaskStatusInProgress
	t.Touch(now)
}

// MarkCompleted marks the task as completed with its result summary.
func (t *Task) MarkCompleted(summary string, now time.Time) {
	now = now.UTC()
	t.Status = TaskStatusCompleted
	t.Summary = summary
	t.CompletedAt = &now
	t.UpdatedAt = now
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	c.Dependencies = slices.Clone(t.Dependencies)
	c.RelatedFiles = slices.Clone(t.RelatedFiles)
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}

// CloneTasks deep-copies a task collection, preserving order.
func CloneTasks(tasks []*Task) []*Task {
	out := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Clone())
	}
	return out
}
