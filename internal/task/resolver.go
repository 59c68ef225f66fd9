package task

import (
	"fmt"
	"strings"

	"github.com/watchfire-io/taskgraph/internal/graph"
	"github.com/watchfire-io/taskgraph/internal/models"
)

// resolver rewrites dependency references to task ids against a would-be
// collection. A reference that equals an id in the collection is an id, and
// that check runs before any name lookup, batch names included. Anything else
// is a name, looked up first among the batch and then among the rest of the
// collection, where it must match exactly one task.
type resolver struct {
	ids        map[string]bool
	batchNames map[string]string
	byName     map[string][]string

	// missingKind is the error kind for a name that matches nothing.
	missingKind error
}

func newResolver(collection, batch []*models.Task) *resolver {
	r := &resolver{
		ids:         make(map[string]bool, len(collection)),
		batchNames:  make(map[string]string, len(batch)),
		byName:      make(map[string][]string, len(collection)),
		missingKind: ErrUnresolvedDependency,
	}
	inBatch := make(map[string]bool, len(batch))
	for _, t := range batch {
		r.batchNames[t.Name] = t.ID
		inBatch[t.ID] = true
	}
	for _, t := range collection {
		r.ids[t.ID] = true
		if !inBatch[t.ID] {
			r.byName[t.Name] = append(r.byName[t.Name], t.ID)
		}
	}
	return r
}

// resolve turns owner's references into an ordered, duplicate-free id list.
func (r *resolver) resolve(owner string, refs []string) ([]string, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, raw := range refs {
		ref := strings.TrimSpace(raw)
		if ref == "" {
			return nil, validationf("task %q has an empty dependency reference", owner)
		}

		id, err := r.lookup(owner, ref)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			return nil, validationf("task %q lists dependency %q more than once", owner, ref)
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

func (r *resolver) lookup(owner, ref string) (string, error) {
	if r.ids[ref] {
		return ref, nil
	}
	if id, ok := r.batchNames[ref]; ok {
		return id, nil
	}
	matches := r.byName[ref]
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		msg := fmt.Sprintf("task %q depends on %q, which matches no task id or name", owner, ref)
		if r.missingKind == ErrReferentialIntegrity {
			return "", integrityf([]string{ref}, "%s", msg)
		}
		return "", unresolvedf([]string{ref}, "%s", msg)
	default:
		return "", unresolvedf(append([]string{ref}, matches...),
			"task %q depends on %q, which matches %d tasks; reference it by id", owner, ref, len(matches))
	}
}

// validateGraph checks the invariants every committed collection must hold:
// unique ids, dependencies that resolve inside the collection, and no cycle.
func validateGraph(tasks []*models.Task) error {
	byID := make(map[string]*models.Task, len(tasks))
	nodes := make([]string, 0, len(tasks))
	edges := make(map[string][]string, len(tasks))

	for _, t := range tasks {
		if _, dup := byID[t.ID]; dup {
			return integrityf([]string{t.ID}, "task id %q is used more than once", t.ID)
		}
		byID[t.ID] = t
		nodes = append(nodes, t.ID)
		if len(t.Dependencies) > 0 {
			edges[t.ID] = t.Dependencies
		}
	}

	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			if _, ok := byID[dep]; !ok {
				return integrityf([]string{t.ID, dep}, "task %q depends on missing task %q", t.Name, dep)
			}
		}
	}

	cycle := graph.FindCycle(nodes, edges)
	if cycle == nil {
		return nil
	}
	path := make([]string, 0, len(cycle))
	for _, id := range cycle {
		path = append(path, byID[id].Name)
	}
	return cycleError(path)
}
