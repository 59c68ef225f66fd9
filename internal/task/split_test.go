package task

import (
	"errors"
	"reflect"
	"testing"

	"github.com/watchfire-io/taskgraph/internal/models"
)

func TestSplitTasks_AppendResolvesNamesToIDs(t *testing.T) {
	m, _ := newTestManager(t)

	res, err := m.SplitTasks(SplitOptions{
		Mode:  ModeAppend,
		Tasks: []TaskInput{in("A"), in("B", "A"), in("C", "B")},
	})
	if err != nil {
		t.Fatalf("SplitTasks: %v", err)
	}
	if len(res.Created) != 3 {
		t.Fatalf("created %d tasks, want 3", len(res.Created))
	}

	tasks := mustList(t, m)
	if len(tasks) != 3 {
		t.Fatalf("stored %d tasks, want 3", len(tasks))
	}
	a, b, c := tasks[0], tasks[1], tasks[2]
	for _, task := range tasks {
		if task.Status != models.TaskStatusPending {
			t.Errorf("task %s status = %s, want pending", task.Name, task.Status)
		}
		if task.CompletedAt != nil {
			t.Errorf("task %s has completedAt while pending", task.Name)
		}
	}
	if !reflect.DeepEqual(b.Dependencies, []string{a.ID}) {
		t.Errorf("B deps = %v, want [%s]", b.Dependencies, a.ID)
	}
	if !reflect.DeepEqual(c.Dependencies, []string{b.ID}) {
		t.Errorf("C deps = %v, want [%s]", c.Dependencies, b.ID)
	}
}

func TestSplitTasks_CycleRejectsWholeBatch(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.SplitTasks(SplitOptions{
		Mode:  ModeAppend,
		Tasks: []TaskInput{in("X", "Y"), in("Y", "X")},
	})
	assertKind(t, err, ErrDependencyCycle)

	var te *Error
	if !errors.As(err, &te) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if want := []string{"X", "Y", "X"}; !reflect.DeepEqual(te.Refs, want) {
		t.Errorf("cycle = %v, want %v", te.Refs, want)
	}
	if tasks := mustList(t, m); len(tasks) != 0 {
		t.Fatalf("store has %d tasks after rejected batch", len(tasks))
	}
}

func TestSplitTasks_CycleThroughExistingTasks(t *testing.T) {
	m, _ := newTestManager(t)
	seed(t, m, in("A"), in("B", "A"))
	before := mustList(t, m)

	_, err := m.SplitTasks(SplitOptions{
		Mode:  ModeSelective,
		Tasks: []TaskInput{in("A", "B")},
	})
	assertKind(t, err, ErrDependencyCycle)

	after := mustList(t, m)
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("store changed after rejected batch")
	}
}

func TestSplitTasks_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		setup []TaskInput
		opts  SplitOptions
		kind  error
	}{
		{
			name: "self dependency",
			opts: SplitOptions{Mode: ModeAppend, Tasks: []TaskInput{in("S", "S")}},
			kind: ErrDependencyCycle,
		},
		{
			name: "unknown dependency",
			opts: SplitOptions{Mode: ModeAppend, Tasks: []TaskInput{in("X", "nope")}},
			kind: ErrUnresolvedDependency,
		},
		{
			name:  "ambiguous existing name",
			setup: []TaskInput{in("dup"), in("dup")},
			opts:  SplitOptions{Mode: ModeAppend, Tasks: []TaskInput{in("Z", "dup")}},
			kind:  ErrUnresolvedDependency,
		},
		{
			name: "duplicate dependency",
			opts: SplitOptions{Mode: ModeAppend, Tasks: []TaskInput{in("A"), in("B", "A", "A")}},
			kind: ErrValidation,
		},
		{
			name: "duplicate names in batch",
			opts: SplitOptions{Mode: ModeAppend, Tasks: []TaskInput{in("A"), in("A")}},
			kind: ErrValidation,
		},
		{
			name: "missing description",
			opts: SplitOptions{Mode: ModeAppend, Tasks: []TaskInput{{Name: "A"}}},
			kind: ErrValidation,
		},
		{
			name: "empty batch",
			opts: SplitOptions{Mode: ModeAppend},
			kind: ErrValidation,
		},
		{
			name: "unknown mode",
			opts: SplitOptions{Mode: "merge", Tasks: []TaskInput{in("A")}},
			kind: ErrValidation,
		},
		{
			name: "id outside selective mode",
			opts: SplitOptions{Mode: ModeAppend, Tasks: []TaskInput{{ID: "x", Name: "A", Description: "a"}}},
			kind: ErrValidation,
		},
		{
			name: "bad related file type",
			opts: SplitOptions{Mode: ModeAppend, Tasks: []TaskInput{{
				Name: "A", Description: "a",
				RelatedFiles: []models.RelatedFile{{Path: "main.go", Type: "rewrite"}},
			}}},
			kind: ErrValidation,
		},
		{
			name: "selective unknown id",
			opts: SplitOptions{Mode: ModeSelective, Tasks: []TaskInput{{ID: "missing", Name: "A", Description: "a"}}},
			kind: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestManager(t)
			for _, s := range tt.setup {
				seed(t, m, s)
			}
			before := mustList(t, m)

			_, err := m.SplitTasks(tt.opts)
			assertKind(t, err, tt.kind)

			if after := mustList(t, m); !reflect.DeepEqual(before, after) {
				t.Fatalf("store changed after rejected batch")
			}
		})
	}
}

func TestSplitTasks_ReferenceByID(t *testing.T) {
	m, _ := newTestManager(t)
	seeded := seed(t, m, in("A"))
	a := seeded["A"]

	res, err := m.SplitTasks(SplitOptions{Mode: ModeAppend, Tasks: []TaskInput{in("B", a.ID)}})
	if err != nil {
		t.Fatalf("SplitTasks: %v", err)
	}
	if got := res.Created[0].Dependencies; !reflect.DeepEqual(got, []string{a.ID}) {
		t.Errorf("deps = %v, want [%s]", got, a.ID)
	}
}

func TestSplitTasks_BatchNameWinsOverExisting(t *testing.T) {
	m, _ := newTestManager(t)
	seed(t, m, in("Setup"))

	res, err := m.SplitTasks(SplitOptions{
		Mode:  ModeAppend,
		Tasks: []TaskInput{in("Setup"), in("Build", "Setup")},
	})
	if err != nil {
		t.Fatalf("SplitTasks: %v", err)
	}
	newSetup, build := res.Created[0], res.Created[1]
	if !reflect.DeepEqual(build.Dependencies, []string{newSetup.ID}) {
		t.Errorf("Build deps = %v, want batch Setup %s", build.Dependencies, newSetup.ID)
	}
}

func TestSplitTasks_OverwriteKeepsStartedAndCompleted(t *testing.T) {
	m, _ := newTestManager(t)
	seeded := seed(t, m, in("Done"), in("Running"), in("Waiting"))
	complete(t, m, seeded["Done"].ID)
	if _, err := m.ExecuteTask(seeded["Running"].ID); err != nil {
		t.Fatalf("ExecuteTask: %v", err)
	}

	res, err := m.SplitTasks(SplitOptions{
		Mode:  ModeOverwrite,
		Tasks: []TaskInput{in("Fresh", "Done")},
	})
	if err != nil {
		t.Fatalf("SplitTasks: %v", err)
	}
	if len(res.Removed) != 1 || res.Removed[0].Name != "Waiting" {
		t.Errorf("removed = %v, want [Waiting]", taskNames(res.Removed))
	}

	tasks := mustList(t, m)
	if got, want := taskNames(tasks), []string{"Done", "Running", "Fresh"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("tasks = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(tasks[2].Dependencies, []string{seeded["Done"].ID}) {
		t.Errorf("Fresh deps = %v", tasks[2].Dependencies)
	}
}

func TestSplitTasks_OverwriteCannotReferenceRemovedTask(t *testing.T) {
	m, _ := newTestManager(t)
	seed(t, m, in("Waiting"))

	_, err := m.SplitTasks(SplitOptions{
		Mode:  ModeOverwrite,
		Tasks: []TaskInput{in("Fresh", "Waiting")},
	})
	assertKind(t, err, ErrUnresolvedDependency)
}

func TestSplitTasks_SelectiveUpdatesInPlace(t *testing.T) {
	m, _ := newTestManager(t)
	seeded := seed(t, m, in("A"), in("B"), in("C"))

	res, err := m.SplitTasks(SplitOptions{
		Mode: ModeSelective,
		Tasks: []TaskInput{
			{Name: "B", Description: "rewritten", Dependencies: []string{"A"}},
			{ID: seeded["C"].ID, Name: "C2", Description: "renamed"},
			in("D", "C2"),
		},
		AnalysisResult: "shared analysis",
	})
	if err != nil {
		t.Fatalf("SplitTasks: %v", err)
	}
	if len(res.Updated) != 2 || len(res.Created) != 1 {
		t.Fatalf("updated %d created %d, want 2 and 1", len(res.Updated), len(res.Created))
	}

	tasks := mustList(t, m)
	if got, want := taskNames(tasks), []string{"A", "B", "C2", "D"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("tasks = %v, want %v", got, want)
	}
	b := tasks[1]
	if b.ID != seeded["B"].ID || b.Description != "rewritten" {
		t.Errorf("B = %+v", b)
	}
	if !reflect.DeepEqual(b.Dependencies, []string{seeded["A"].ID}) {
		t.Errorf("B deps = %v", b.Dependencies)
	}
	if !b.UpdatedAt.After(seeded["B"].UpdatedAt) {
		t.Errorf("B updatedAt not refreshed")
	}
	if !reflect.DeepEqual(tasks[3].Dependencies, []string{seeded["C"].ID}) {
		t.Errorf("D deps = %v, want renamed C", tasks[3].Dependencies)
	}
	for _, task := range tasks[1:] {
		if task.AnalysisResult != "shared analysis" {
			t.Errorf("task %s analysis = %q", task.Name, task.AnalysisResult)
		}
	}
	if tasks[0].AnalysisResult != "" {
		t.Errorf("untouched task A got analysis result")
	}
}

func TestSplitTasks_SelectiveRejectsCompletedChangePerTask(t *testing.T) {
	m, _ := newTestManager(t)
	seeded := seed(t, m, in("A"))
	done := complete(t, m, seeded["A"].ID)

	res, err := m.SplitTasks(SplitOptions{
		Mode: ModeSelective,
		Tasks: []TaskInput{
			{Name: "A", Description: "changed after completion"},
			in("D", "A"),
		},
	})
	if err != nil {
		t.Fatalf("SplitTasks: %v", err)
	}
	if len(res.Rejected) != 1 {
		t.Fatalf("rejected %d, want 1", len(res.Rejected))
	}
	assertKind(t, res.Rejected[0].Err, ErrInvalidTransition)
	if res.Rejected[0].TaskID != done.ID {
		t.Errorf("rejected task id = %s, want %s", res.Rejected[0].TaskID, done.ID)
	}
	if len(res.Created) != 1 || res.Created[0].Name != "D" {
		t.Fatalf("created = %v, want [D]", taskNames(res.Created))
	}

	a, err := m.GetTask(done.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if a.Description != done.Description || !a.IsCompleted() {
		t.Errorf("completed task changed: %+v", a)
	}
	d := res.Created[0]
	if !reflect.DeepEqual(d.Dependencies, []string{done.ID}) {
		t.Errorf("D deps = %v, want [%s]", d.Dependencies, done.ID)
	}
}

func TestSplitTasks_SelectiveCompletedRelatedFilesOnly(t *testing.T) {
	m, _ := newTestManager(t)
	seeded := seed(t, m, in("A"))
	done := complete(t, m, seeded["A"].ID)

	files := []models.RelatedFile{{Path: "README.md", Type: models.RelationReference}}
	res, err := m.SplitTasks(SplitOptions{
		Mode:  ModeSelective,
		Tasks: []TaskInput{{Name: "A", Description: done.Description, RelatedFiles: files}},
	})
	if err != nil {
		t.Fatalf("SplitTasks: %v", err)
	}
	if len(res.Rejected) != 0 || len(res.Updated) != 1 {
		t.Fatalf("rejected %d updated %d", len(res.Rejected), len(res.Updated))
	}
	got := res.Updated[0]
	if !reflect.DeepEqual(got.RelatedFiles, files) {
		t.Errorf("related files = %v", got.RelatedFiles)
	}
	if !got.IsCompleted() || got.CompletedAt == nil || !got.CompletedAt.Equal(*done.CompletedAt) {
		t.Errorf("completion changed: %+v", got)
	}
}

func TestSplitTasks_SelectiveAmbiguousName(t *testing.T) {
	m, _ := newTestManager(t)
	seed(t, m, in("dup"))
	seed(t, m, in("dup"))

	_, err := m.SplitTasks(SplitOptions{Mode: ModeSelective, Tasks: []TaskInput{in("dup")}})
	assertKind(t, err, ErrValidation)
}

func TestParseUpdateMode(t *testing.T) {
	tests := []struct {
		in      string
		want    UpdateMode
		wantErr bool
	}{
		{in: "append", want: ModeAppend},
		{in: " Overwrite ", want: ModeOverwrite},
		{in: "SELECTIVE", want: ModeSelective},
		{in: "clearAllTasks", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUpdateMode(tt.in)
			if tt.wantErr {
				assertKind(t, err, ErrValidation)
				return
			}
			if err != nil {
				t.Fatalf("ParseUpdateMode: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseUpdateMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitTasks_SelectiveStartedTaskOnlyGainsCompletedDeps(t *testing.T) {
	m, _ := newTestManager(t)
	seeded := seed(t, m, in("A"), in("B"), in("Done"))
	complete(t, m, seeded["Done"].ID)
	if _, err := m.ExecuteTask(seeded["A"].ID); err != nil {
		t.Fatalf("ExecuteTask: %v", err)
	}

	tests := []struct {
		name  string
		batch []TaskInput
	}{
		{name: "existing pending dep", batch: []TaskInput{in("A", "B")}},
		{name: "new batch dep", batch: []TaskInput{in("A", "Fresh"), in("Fresh")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := mustList(t, m)
			_, err := m.SplitTasks(SplitOptions{Mode: ModeSelective, Tasks: tt.batch})
			assertKind(t, err, ErrInvalidTransition)
			if after := mustList(t, m); !reflect.DeepEqual(before, after) {
				t.Fatalf("store changed after rejected batch")
			}
		})
	}

	res, err := m.SplitTasks(SplitOptions{Mode: ModeSelective, Tasks: []TaskInput{in("A", "Done")}})
	if err != nil {
		t.Fatalf("SplitTasks with completed dep: %v", err)
	}
	if len(res.Updated) != 1 || !reflect.DeepEqual(res.Updated[0].Dependencies, []string{seeded["Done"].ID}) {
		t.Fatalf("updated = %+v", res.Updated)
	}
}

func TestSplitTasks_ExactIDBeatsBatchName(t *testing.T) {
	m, _ := newTestManager(t)
	a := seed(t, m, in("A"))["A"]

	// A batch task named after an existing id does not shadow that id.
	res, err := m.SplitTasks(SplitOptions{
		Mode:  ModeAppend,
		Tasks: []TaskInput{in(a.ID), in("B", a.ID)},
	})
	if err != nil {
		t.Fatalf("SplitTasks: %v", err)
	}
	var b *models.Task
	for _, created := range res.Created {
		if created.Name == "B" {
			b = created
		}
	}
	if b == nil || !reflect.DeepEqual(b.Dependencies, []string{a.ID}) {
		t.Fatalf("B = %+v, want dependency on existing %s", b, a.ID)
	}
}
