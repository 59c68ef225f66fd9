package task

import (
	"log"
	"slices"
	"strings"

	"github.com/watchfire-io/taskgraph/internal/graph"
	"github.com/watchfire-io/taskgraph/internal/models"
)

// isAllowedTransition is the task state machine. Completed is terminal.
func isAllowedTransition(from, to models.TaskStatus) bool {
	switch from {
	case models.TaskStatusPending:
		return to == models.TaskStatusInProgress
	case models.TaskStatusInProgress:
		return to == models.TaskStatusCompleted
	default:
		return false
	}
}

// ExecuteTask moves a pending task into progress once every dependency is
// completed. Executing a task that is already in progress returns it as is.
func (m *Manager) ExecuteTask(id string) (*models.Task, error) {
	if strings.TrimSpace(id) == "" {
		return nil, validationf("task id is required")
	}

	var out *models.Task
	err := m.mutate(func(tasks []*models.Task) ([]*models.Task, error) {
		_, t := findTask(tasks, id)
		if t == nil {
			return nil, notFound(id)
		}
		if t.Status == models.TaskStatusInProgress {
			out = t
			return nil, errUnchanged
		}
		if !isAllowedTransition(t.Status, models.TaskStatusInProgress) {
			return nil, transitionf([]string{id}, "cannot execute task %q: status is %s", t.Name, t.Status)
		}

		if err := requireCompletedDeps(tasks, t, "cannot execute task"); err != nil {
			return nil, err
		}

		t.Start(m.now())
		out = t
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[task] Executing %s (%s)", out.ID, out.Name)
	return out, nil
}

// VerifyOutcome is the caller's judgement of an in-progress task.
type VerifyOutcome struct {
	// Score is 0..100; it passes at or above the configured passing score.
	Score int
	// Summary describes the result and is recorded on completion.
	Summary string
}

// VerifyTask completes an in-progress task when the outcome passes.
// Verifying an already completed task returns it unchanged.
func (m *Manager) VerifyTask(id string, outcome VerifyOutcome) (*models.Task, error) {
	if strings.TrimSpace(id) == "" {
		return nil, validationf("task id is required")
	}
	if outcome.Score < 0 || outcome.Score > 100 {
		return nil, validationf("score %d is out of range 0..100", outcome.Score)
	}
	if strings.TrimSpace(outcome.Summary) == "" {
		return nil, validationf("verification summary is required")
	}

	var out *models.Task
	err := m.mutate(func(tasks []*models.Task) ([]*models.Task, error) {
		_, t := findTask(tasks, id)
		if t == nil {
			return nil, notFound(id)
		}
		if t.IsCompleted() {
			out = t
			return nil, errUnchanged
		}
		if !isAllowedTransition(t.Status, models.TaskStatusCompleted) {
			return nil, transitionf([]string{id}, "cannot verify task %q: status is %s, execute it first", t.Name, t.Status)
		}
		if err := requireCompletedDeps(tasks, t, "cannot verify task"); err != nil {
			return nil, err
		}
		if outcome.Score < m.settings.PassingScore {
			return nil, transitionf([]string{id}, "cannot complete task %q: score %d is below passing score %d",
				t.Name, outcome.Score, m.settings.PassingScore)
		}

		t.MarkCompleted(strings.TrimSpace(outcome.Summary), m.now())
		out = t
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[task] Completed %s (%s) with score %d", out.ID, out.Name, outcome.Score)
	return out, nil
}

// DeleteOptions contains options for deleting a task.
type DeleteOptions struct {
	// Force deletes even when other tasks depend on this one, removing the
	// reference from each dependent.
	Force bool
	// Cascade deletes every task that transitively depends on this one too.
	Cascade bool
}

// DeleteResult describes a committed deletion.
type DeleteResult struct {
	// Deleted holds the target first, then any cascaded dependents.
	Deleted []*models.Task
	// Detached holds dependents whose reference to the target was removed.
	Detached []*models.Task
}

// DeleteTask removes a task that is not completed. By default it refuses while
// any other task depends on it.
func (m *Manager) DeleteTask(id string, opts DeleteOptions) (*DeleteResult, error) {
	if strings.TrimSpace(id) == "" {
		return nil, validationf("task id is required")
	}
	if opts.Force && opts.Cascade {
		return nil, validationf("force and cascade are mutually exclusive")
	}

	result := &DeleteResult{}
	err := m.mutate(func(tasks []*models.Task) ([]*models.Task, error) {
		_, target := findTask(tasks, id)
		if target == nil {
			return nil, notFound(id)
		}
		if target.IsCompleted() {
			return nil, transitionf([]string{id}, "cannot delete completed task %q", target.Name)
		}

		var dependents []*models.Task
		for _, t := range tasks {
			if t.DependsOn(id) {
				dependents = append(dependents, t)
			}
		}

		remove := map[string]bool{id: true}
		switch {
		case len(dependents) == 0:
		case opts.Cascade:
			nodes, edges := adjacency(tasks)
			for _, depID := range graph.Dependents(nodes, edges, id) {
				remove[depID] = true
			}
		case opts.Force:
		default:
			return nil, integrityf(taskIDs(dependents), "cannot delete task %q: required by %s",
				target.Name, strings.Join(taskNames(dependents), ", "))
		}

		now := m.now()
		next := make([]*models.Task, 0, len(tasks))
		for _, t := range tasks {
			if remove[t.ID] {
				if t.IsCompleted() {
					return nil, transitionf([]string{t.ID}, "cannot delete completed task %q", t.Name)
				}
				result.Deleted = append(result.Deleted, t)
				continue
			}
			if opts.Force && t.DependsOn(id) {
				if t.IsCompleted() {
					return nil, transitionf([]string{t.ID}, "cannot detach completed task %q", t.Name)
				}
				t.Dependencies = slices.DeleteFunc(t.Dependencies, func(d string) bool { return d == id })
				t.Touch(now)
				result.Detached = append(result.Detached, t)
			}
			next = append(next, t)
		}
		// Keep the requested task first.
		if i := slices.Index(result.Deleted, target); i > 0 {
			result.Deleted = slices.Delete(result.Deleted, i, i+1)
			result.Deleted = slices.Insert(result.Deleted, 0, target)
		}

		if err := validateGraph(next); err != nil {
			return nil, err
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[task] Deleted %d task(s) starting at %s, detached %d", len(result.Deleted), id, len(result.Detached))
	return result, nil
}

// ClearResult describes a committed clear-all.
type ClearResult struct {
	Removed    int
	BackupPath string
}

// ClearAllTasks removes every task. When enabled in settings and the store is
// not empty, the previous collection is backed up first.
func (m *Manager) ClearAllTasks() (*ClearResult, error) {
	result := &ClearResult{}
	err := m.mutate(func(tasks []*models.Task) ([]*models.Task, error) {
		if len(tasks) == 0 {
			return nil, errUnchanged
		}
		if m.settings.ShouldBackupOnClear() {
			path, err := m.repo.Backup(tasks, m.now())
			if err != nil {
				return nil, err
			}
			result.BackupPath = path
		}
		result.Removed = len(tasks)
		return []*models.Task{}, nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[task] Cleared %d task(s)", result.Removed)
	return result, nil
}

// requireCompletedDeps fails with an invalid transition naming every
// dependency of t that is not completed. A task that has started may only
// depend on completed tasks.
func requireCompletedDeps(tasks []*models.Task, t *models.Task, action string) error {
	var blocking []*models.Task
	for _, depID := range t.Dependencies {
		_, dep := findTask(tasks, depID)
		if dep == nil {
			return integrityf([]string{t.ID, depID}, "task %q depends on missing task %q", t.Name, depID)
		}
		if !dep.IsCompleted() {
			blocking = append(blocking, dep)
		}
	}
	if len(blocking) > 0 {
		return transitionf(taskIDs(blocking), "%s %q: waiting on %s",
			action, t.Name, strings.Join(taskNames(blocking), ", "))
	}
	return nil
}

func adjacency(tasks []*models.Task) ([]string, map[string][]string) {
	nodes := make([]string, 0, len(tasks))
	edges := make(map[string][]string, len(tasks))
	for _, t := range tasks {
		nodes = append(nodes, t.ID)
		if len(t.Dependencies) > 0 {
			edges[t.ID] = t.Dependencies
		}
	}
	return nodes, edges
}
