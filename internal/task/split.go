package task

import (
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/watchfire-io/taskgraph/internal/models"
)

// UpdateMode selects how a proposed batch merges with the stored tasks.
type UpdateMode string

const (
	// ModeAppend adds every proposed task as new.
	ModeAppend UpdateMode = "append"
	// ModeOverwrite replaces all pending tasks with the batch. Completed and
	// in-progress tasks are kept.
	ModeOverwrite UpdateMode = "overwrite"
	// ModeSelective updates tasks matched by id or name and adds the rest.
	ModeSelective UpdateMode = "selective"
)

// UpdateModes lists the accepted modes.
var UpdateModes = []UpdateMode{ModeAppend, ModeOverwrite, ModeSelective}

// ParseUpdateMode parses a mode name.
func ParseUpdateMode(s string) (UpdateMode, error) {
	m := UpdateMode(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(UpdateModes, m) {
		return "", validationf("unknown update mode %q (want append, overwrite or selective)", s)
	}
	return m, nil
}

// TaskInput is one proposed task in a batch.
type TaskInput struct {
	// ID targets an existing task in selective mode.
	ID                   string               `yaml:"id,omitempty"`
	Name                 string               `yaml:"name"`
	Description          string               `yaml:"description"`
	Notes                string               `yaml:"notes,omitempty"`
	Dependencies         []string             `yaml:"dependencies,omitempty"` // ids or names
	RelatedFiles         []models.RelatedFile `yaml:"related_files,omitempty"`
	ImplementationGuide  string               `yaml:"implementation_guide,omitempty"`
	VerificationCriteria string               `yaml:"verification_criteria,omitempty"`
}

// SplitOptions contains options for splitting work into tasks.
type SplitOptions struct {
	Mode  UpdateMode
	Tasks []TaskInput
	// AnalysisResult is copied onto every task the batch creates or updates.
	AnalysisResult string
}

// Rejection records a proposed task that was not applied while the rest of
// the batch was.
type Rejection struct {
	Name   string
	TaskID string
	Err    error
}

// SplitResult describes a committed batch.
type SplitResult struct {
	Mode     UpdateMode
	Created  []*models.Task
	Updated  []*models.Task
	Removed  []*models.Task
	Rejected []Rejection
	// Tasks is the full committed collection.
	Tasks []*models.Task
}

type splitEntry struct {
	input    TaskInput
	task     *models.Task
	existing *models.Task
}

// SplitTasks reconciles a proposed batch against the stored tasks under the
// given mode. Any validation, resolution, or cycle error rejects the whole
// batch, as does giving a started task a dependency that is not completed.
// In selective mode a proposal that would alter a completed task is rejected
// on its own and reported in SplitResult.Rejected.
func (m *Manager) SplitTasks(opts SplitOptions) (*SplitResult, error) {
	if err := validateSplit(opts); err != nil {
		return nil, err
	}

	var result *SplitResult
	err := m.mutate(func(current []*models.Task) ([]*models.Task, error) {
		r, next, err := m.planSplit(current, opts)
		if err != nil {
			return nil, err
		}
		result = r
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[task] Split (%s): %d created, %d updated, %d removed, %d rejected",
		result.Mode, len(result.Created), len(result.Updated), len(result.Removed), len(result.Rejected))
	return result, nil
}

func validateSplit(opts SplitOptions) error {
	if !slices.Contains(UpdateModes, opts.Mode) {
		return validationf("unknown update mode %q", opts.Mode)
	}
	if len(opts.Tasks) == 0 {
		return validationf("batch contains no tasks")
	}
	names := make(map[string]int, len(opts.Tasks))
	ids := make(map[string]int, len(opts.Tasks))
	for i, in := range opts.Tasks {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return validationf("task #%d has no name", i+1)
		}
		if strings.TrimSpace(in.Description) == "" {
			return validationf("task %q has no description", name)
		}
		if prev, ok := names[name]; ok {
			return validationf("tasks #%d and #%d are both named %q", prev+1, i+1, name)
		}
		names[name] = i
		if in.ID != "" {
			if opts.Mode != ModeSelective {
				return validationf("task %q sets an id, which is only allowed in selective mode", name)
			}
			if prev, ok := ids[in.ID]; ok {
				return validationf("tasks #%d and #%d both target id %q", prev+1, i+1, in.ID)
			}
			ids[in.ID] = i
		}
		if err := validateRelatedFiles(name, in.RelatedFiles); err != nil {
			return err
		}
	}
	return nil
}

func validateRelatedFiles(owner string, files []models.RelatedFile) error {
	for _, f := range files {
		if strings.TrimSpace(f.Path) == "" {
			return validationf("task %q has a related file without a path", owner)
		}
		if !f.Type.Valid() {
			return validationf("task %q: related file %q has unknown type %q", owner, f.Path, f.Type)
		}
	}
	return nil
}

// planSplit computes the post-batch collection from a private copy of the
// current one. It has no side effects.
func (m *Manager) planSplit(current []*models.Task, opts SplitOptions) (*SplitResult, []*models.Task, error) {
	now := m.now()
	result := &SplitResult{Mode: opts.Mode}

	base := current
	if opts.Mode == ModeOverwrite {
		base = make([]*models.Task, 0, len(current))
		for _, t := range current {
			if t.Status == models.TaskStatusPending {
				result.Removed = append(result.Removed, t)
				continue
			}
			base = append(base, t)
		}
	}

	entries, err := m.matchEntries(base, opts, now)
	if err != nil {
		return nil, nil, err
	}

	// Would-be collection: matched tasks replaced in place, new ones appended.
	replaced := make(map[string]*models.Task, len(entries))
	var added []*models.Task
	batch := make([]*models.Task, 0, len(entries))
	for _, e := range entries {
		batch = append(batch, e.task)
		if e.existing != nil {
			replaced[e.task.ID] = e.task
		} else {
			added = append(added, e.task)
		}
	}
	next := make([]*models.Task, 0, len(base)+len(added))
	for _, t := range base {
		if r, ok := replaced[t.ID]; ok {
			next = append(next, r)
			continue
		}
		next = append(next, t)
	}
	next = append(next, added...)

	res := newResolver(next, batch)
	for _, e := range entries {
		deps, err := res.resolve(e.task.Name, e.input.Dependencies)
		if err != nil {
			return nil, nil, err
		}
		e.task.Dependencies = deps
	}

	// Completed tasks only take summary-class changes; anything else is
	// rejected for that task alone and the stored version is kept.
	for _, e := range entries {
		if e.existing == nil || !e.existing.IsCompleted() {
			continue
		}
		if changed := immutableChanges(e.existing, e.task); len(changed) > 0 {
			result.Rejected = append(result.Rejected, Rejection{
				Name:   e.input.Name,
				TaskID: e.existing.ID,
				Err: transitionf([]string{e.existing.ID},
					"task %q is completed; cannot change %s", e.existing.Name, strings.Join(changed, ", ")),
			})
			restoreTask(next, e.existing)
			e.task = nil
		}
	}

	if err := validateGraph(next); err != nil {
		return nil, nil, err
	}

	for _, e := range entries {
		if e.task == nil || e.existing == nil || e.existing.Status != models.TaskStatusInProgress {
			continue
		}
		if err := requireCompletedDeps(next, e.task, "cannot change dependencies of started task"); err != nil {
			return nil, nil, err
		}
	}

	for _, e := range entries {
		switch {
		case e.task == nil:
		case e.existing == nil:
			result.Created = append(result.Created, e.task)
		default:
			result.Updated = append(result.Updated, e.task)
		}
	}
	result.Tasks = next
	return result, next, nil
}

// matchEntries pairs every input with the task it will become.
func (m *Manager) matchEntries(base []*models.Task, opts SplitOptions, now time.Time) ([]*splitEntry, error) {
	entries := make([]*splitEntry, 0, len(opts.Tasks))
	claimed := make(map[string]string, len(opts.Tasks))

	for _, in := range opts.Tasks {
		in.Name = strings.TrimSpace(in.Name)

		var existing *models.Task
		if opts.Mode == ModeSelective {
			match, err := matchExisting(base, in)
			if err != nil {
				return nil, err
			}
			existing = match
		}

		if existing == nil {
			t := models.NewTask(m.newID(), in.Name, in.Description, now)
			applyInput(t, in, opts.AnalysisResult)
			entries = append(entries, &splitEntry{input: in, task: t})
			continue
		}

		if other, ok := claimed[existing.ID]; ok {
			return nil, validationf("tasks %q and %q both match existing task %q", other, in.Name, existing.ID)
		}
		claimed[existing.ID] = in.Name

		t := existing.Clone()
		if existing.IsCompleted() {
			// Summary-class fields only; the rest is compared later.
			t.Name = in.Name
			t.Description = in.Description
			t.Notes = in.Notes
			t.ImplementationGuide = in.ImplementationGuide
			t.VerificationCriteria = in.VerificationCriteria
			if in.RelatedFiles != nil {
				t.RelatedFiles = slices.Clone(in.RelatedFiles)
			}
		} else {
			applyInput(t, in, opts.AnalysisResult)
		}
		t.Touch(now)
		entries = append(entries, &splitEntry{input: in, task: t, existing: existing})
	}
	return entries, nil
}

func matchExisting(base []*models.Task, in TaskInput) (*models.Task, error) {
	if in.ID != "" {
		_, t := findTask(base, in.ID)
		if t == nil {
			return nil, notFound(in.ID)
		}
		return t, nil
	}
	var matches []*models.Task
	for _, t := range base {
		if t.Name == in.Name {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	default:
		return nil, &Error{
			Kind: ErrValidation,
			Msg:  fmt.Sprintf("task name %q matches %d existing tasks; target one by id", in.Name, len(matches)),
			Refs: taskIDs(matches),
		}
	}
}

func applyInput(t *models.Task, in TaskInput, analysis string) {
	t.Name = in.Name
	t.Description = in.Description
	t.Notes = in.Notes
	t.RelatedFiles = slices.Clone(in.RelatedFiles)
	t.ImplementationGuide = in.ImplementationGuide
	t.VerificationCriteria = in.VerificationCriteria
	if analysis != "" {
		t.AnalysisResult = analysis
	}
}

// immutableChanges lists the fields of a completed task that next alters.
func immutableChanges(prev, next *models.Task) []string {
	var changed []string
	if prev.Name != next.Name {
		changed = append(changed, "name")
	}
	if prev.Description != next.Description {
		changed = append(changed, "description")
	}
	if !slices.Equal(prev.Dependencies, next.Dependencies) {
		changed = append(changed, "dependencies")
	}
	if prev.Notes != next.Notes {
		changed = append(changed, "notes")
	}
	if prev.ImplementationGuide != next.ImplementationGuide {
		changed = append(changed, "implementation guide")
	}
	if prev.VerificationCriteria != next.VerificationCriteria {
		changed = append(changed, "verification criteria")
	}
	return changed
}

func restoreTask(tasks []*models.Task, original *models.Task) {
	if i, _ := findTask(tasks, original.ID); i >= 0 {
		tasks[i] = original
	}
}
