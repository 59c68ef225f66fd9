package task

import (
	"log"
	"slices"
	"strings"

	"github.com/watchfire-io/taskgraph/internal/models"
)

// UpdateOptions contains options for updating a task. Nil fields are left
// untouched. On a completed task only Summary and RelatedFiles may be set.
type UpdateOptions struct {
	Name                 *string
	Description          *string
	Notes                *string
	Dependencies         *[]string // ids or names; replaces the whole list
	RelatedFiles         *[]models.RelatedFile
	ImplementationGuide  *string
	VerificationCriteria *string
	Summary              *string
}

func (o UpdateOptions) empty() bool {
	return o.Name == nil && o.Description == nil && o.Notes == nil && o.Dependencies == nil &&
		o.RelatedFiles == nil && o.ImplementationGuide == nil && o.VerificationCriteria == nil &&
		o.Summary == nil
}

// immutableFields lists the set fields a completed task refuses.
func (o UpdateOptions) immutableFields() []string {
	var fields []string
	if o.Name != nil {
		fields = append(fields, "name")
	}
	if o.Description != nil {
		fields = append(fields, "description")
	}
	if o.Dependencies != nil {
		fields = append(fields, "dependencies")
	}
	if o.Notes != nil {
		fields = append(fields, "notes")
	}
	if o.ImplementationGuide != nil {
		fields = append(fields, "implementation guide")
	}
	if o.VerificationCriteria != nil {
		fields = append(fields, "verification criteria")
	}
	return fields
}

// UpdateTask changes the content of one task.
func (m *Manager) UpdateTask(id string, opts UpdateOptions) (*models.Task, error) {
	if strings.TrimSpace(id) == "" {
		return nil, validationf("task id is required")
	}
	if opts.empty() {
		return nil, validationf("no fields to update")
	}
	if opts.Name != nil && strings.TrimSpace(*opts.Name) == "" {
		return nil, validationf("task name cannot be empty")
	}
	if opts.Description != nil && strings.TrimSpace(*opts.Description) == "" {
		return nil, validationf("task description cannot be empty")
	}
	if opts.RelatedFiles != nil {
		if err := validateRelatedFiles(id, *opts.RelatedFiles); err != nil {
			return nil, err
		}
	}

	var out *models.Task
	err := m.mutate(func(tasks []*models.Task) ([]*models.Task, error) {
		_, t := findTask(tasks, id)
		if t == nil {
			return nil, notFound(id)
		}
		if t.IsCompleted() {
			if fields := opts.immutableFields(); len(fields) > 0 {
				return nil, transitionf([]string{id}, "task %q is completed; cannot change %s",
					t.Name, strings.Join(fields, ", "))
			}
		}

		if opts.Name != nil {
			t.Name = strings.TrimSpace(*opts.Name)
		}
		if opts.Description != nil {
			t.Description = *opts.Description
		}
		if opts.Notes != nil {
			t.Notes = *opts.Notes
		}
		if opts.ImplementationGuide != nil {
			t.ImplementationGuide = *opts.ImplementationGuide
		}
		if opts.VerificationCriteria != nil {
			t.VerificationCriteria = *opts.VerificationCriteria
		}
		if opts.RelatedFiles != nil {
			t.RelatedFiles = slices.Clone(*opts.RelatedFiles)
		}
		if opts.Summary != nil {
			t.Summary = *opts.Summary
		}
		if opts.Dependencies != nil {
			res := newResolver(tasks, nil)
			res.missingKind = ErrReferentialIntegrity
			deps, err := res.resolve(t.Name, *opts.Dependencies)
			if err != nil {
				return nil, err
			}
			t.Dependencies = deps
		}
		t.Touch(m.now())

		if err := validateGraph(tasks); err != nil {
			return nil, err
		}
		if opts.Dependencies != nil && t.Status == models.TaskStatusInProgress {
			if err := requireCompletedDeps(tasks, t, "cannot change dependencies of started task"); err != nil {
				return nil, err
			}
		}
		out = t
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[task] Updated %s (%s)", out.ID, out.Name)
	return out, nil
}
