package store

import (
	"fmt"
	"strings"

	"github.com/watchfire-io/taskgraph/internal/graph"
	"github.com/watchfire-io/taskgraph/internal/models"
)

// validateTasks checks a collection read from disk before it is served:
// unique non-empty ids, known statuses, completion time set exactly when
// completed, dependencies that exist, and no cycle.
func validateTasks(tasks []*models.Task) error {
	seen := make(map[string]bool, len(tasks))
	nodes := make([]string, 0, len(tasks))
	edges := make(map[string][]string, len(tasks))

	for i, t := range tasks {
		if t == nil {
			return fmt.Errorf("task #%d is empty", i+1)
		}
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("task #%d (%q) has no id", i+1, t.Name)
		}
		if seen[t.ID] {
			return fmt.Errorf("task id %q is used more than once", t.ID)
		}
		seen[t.ID] = true
		if !t.Status.Valid() {
			return fmt.Errorf("task %q has unknown status %q", t.ID, t.Status)
		}
		if t.IsCompleted() != (t.CompletedAt != nil) {
			return fmt.Errorf("task %q: completed_at must be set exactly when status is completed", t.ID)
		}
		nodes = append(nodes, t.ID)
		if len(t.Dependencies) > 0 {
			edges[t.ID] = t.Dependencies
		}
	}

	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			if !seen[dep] {
				return fmt.Errorf("task %q depends on missing task %q", t.ID, dep)
			}
		}
	}

	if cycle := graph.FindCycle(nodes, edges); cycle != nil {
		return fmt.Errorf("dependency cycle: %s", strings.Join(cycle, " -> "))
	}
	return nil
}
