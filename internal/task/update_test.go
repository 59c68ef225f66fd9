package task

import (
	"reflect"
	"testing"

	"github.com/watchfire-io/taskgraph/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestUpdateTask_Pending(t *testing.T) {
	m, _ := newTestManager(t)
	seeded := seed(t, m, in("A"), in("B"))

	got, err := m.UpdateTask(seeded["B"].ID, UpdateOptions{
		Name:         ptr("B2"),
		Notes:        ptr("remember the edge cases"),
		Dependencies: &[]string{"A"},
		RelatedFiles: &[]models.RelatedFile{{Path: "b.go", Type: models.RelationToModify}},
	})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if got.Name != "B2" || got.Notes != "remember the edge cases" {
		t.Errorf("task = %+v", got)
	}
	if !reflect.DeepEqual(got.Dependencies, []string{seeded["A"].ID}) {
		t.Errorf("deps = %v", got.Dependencies)
	}
	if !got.UpdatedAt.After(seeded["B"].UpdatedAt) {
		t.Errorf("updatedAt not refreshed")
	}

	stored, err := m.GetTask(seeded["B"].ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if !reflect.DeepEqual(stored, got) {
		t.Errorf("stored = %+v, want %+v", stored, got)
	}
}

func TestUpdateTask_CompletedIsImmutable(t *testing.T) {
	m, _ := newTestManager(t)
	a := seed(t, m, in("A"))["A"]
	done := complete(t, m, a.ID)

	for name, opts := range map[string]UpdateOptions{
		"name":         {Name: ptr("renamed")},
		"description":  {Description: ptr("new description")},
		"dependencies": {Dependencies: &[]string{}},
		"mixed":        {Summary: ptr("fine"), Notes: ptr("not fine")},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.UpdateTask(a.ID, opts)
			assertKind(t, err, ErrInvalidTransition)
		})
	}

	got, err := m.UpdateTask(a.ID, UpdateOptions{Summary: ptr("revised summary")})
	if err != nil {
		t.Fatalf("UpdateTask(summary): %v", err)
	}
	if got.Summary != "revised summary" {
		t.Errorf("summary = %q", got.Summary)
	}
	if got.Name != done.Name || got.Description != done.Description || !got.IsCompleted() {
		t.Errorf("immutable fields changed: %+v", got)
	}
}

func TestUpdateTask_Rejections(t *testing.T) {
	tests := []struct {
		name string
		opts UpdateOptions
		kind error
	}{
		{name: "nothing to update", opts: UpdateOptions{}, kind: ErrValidation},
		{name: "empty name", opts: UpdateOptions{Name: ptr(" ")}, kind: ErrValidation},
		{name: "unknown dependency", opts: UpdateOptions{Dependencies: &[]string{"ghost"}}, kind: ErrReferentialIntegrity},
		{name: "cycle", opts: UpdateOptions{Dependencies: &[]string{"B"}}, kind: ErrDependencyCycle},
		{name: "self dependency", opts: UpdateOptions{Dependencies: &[]string{"A"}}, kind: ErrDependencyCycle},
		{
			name: "bad related file",
			opts: UpdateOptions{RelatedFiles: &[]models.RelatedFile{{Path: "", Type: models.RelationOther}}},
			kind: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestManager(t)
			a := seed(t, m, in("A"), in("B", "A"))["A"]
			before := mustList(t, m)

			_, err := m.UpdateTask(a.ID, tt.opts)
			assertKind(t, err, tt.kind)

			if after := mustList(t, m); !reflect.DeepEqual(before, after) {
				t.Fatalf("store changed after rejected update")
			}
		})
	}
}

func TestUpdateTask_NotFound(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.UpdateTask("missing", UpdateOptions{Notes: ptr("x")})
	assertKind(t, err, ErrNotFound)
}

func TestUpdateTask_StartedTaskOnlyGainsCompletedDeps(t *testing.T) {
	m, _ := newTestManager(t)
	seeded := seed(t, m, in("A"), in("B"), in("Done"))
	complete(t, m, seeded["Done"].ID)
	if _, err := m.ExecuteTask(seeded["A"].ID); err != nil {
		t.Fatalf("ExecuteTask: %v", err)
	}

	before := mustList(t, m)
	_, err := m.UpdateTask(seeded["A"].ID, UpdateOptions{Dependencies: &[]string{"B"}})
	assertKind(t, err, ErrInvalidTransition)
	if after := mustList(t, m); !reflect.DeepEqual(before, after) {
		t.Fatalf("store changed after rejected update")
	}

	got, err := m.UpdateTask(seeded["A"].ID, UpdateOptions{Dependencies: &[]string{"Done"}})
	if err != nil {
		t.Fatalf("UpdateTask with completed dep: %v", err)
	}
	if !reflect.DeepEqual(got.Dependencies, []string{seeded["Done"].ID}) {
		t.Fatalf("deps = %v", got.Dependencies)
	}

	// Pending tasks are still free to wait on anything.
	if _, err := m.UpdateTask(seeded["B"].ID, UpdateOptions{Dependencies: &[]string{"A"}}); err != nil {
		t.Fatalf("UpdateTask pending: %v", err)
	}

	complete(t, m, seeded["A"].ID)
	if _, err := m.SplitTasks(SplitOptions{Mode: ModeOverwrite, Tasks: []TaskInput{in("C")}}); err != nil {
		t.Fatalf("overwrite after completion: %v", err)
	}
}
