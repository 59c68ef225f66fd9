package task

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/watchfire-io/taskgraph/internal/models"
	"github.com/watchfire-io/taskgraph/internal/store"
)

func newTestManager(t *testing.T) (*Manager, *store.Store) {
	t.Helper()
	s, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}

	n := 0
	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	m := NewManager(s, nil,
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("task-%d", n)
		}),
		WithClock(func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}),
	)
	return m, s
}

// seed appends tasks and returns them by name.
func seed(t *testing.T, m *Manager, inputs ...TaskInput) map[string]*models.Task {
	t.Helper()
	res, err := m.SplitTasks(SplitOptions{Mode: ModeAppend, Tasks: inputs})
	if err != nil {
		t.Fatalf("SplitTasks: %v", err)
	}
	out := make(map[string]*models.Task, len(res.Created))
	for _, created := range res.Created {
		out[created.Name] = created
	}
	return out
}

func complete(t *testing.T, m *Manager, id string) *models.Task {
	t.Helper()
	if _, err := m.ExecuteTask(id); err != nil {
		t.Fatalf("ExecuteTask(%s): %v", id, err)
	}
	done, err := m.VerifyTask(id, VerifyOutcome{Score: 95, Summary: "done and checked"})
	if err != nil {
		t.Fatalf("VerifyTask(%s): %v", id, err)
	}
	return done
}

func in(name string, deps ...string) TaskInput {
	return TaskInput{Name: name, Description: "work for " + name, Dependencies: deps}
}

func assertKind(t *testing.T, err, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil", kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("error = %v, want kind %v", err, kind)
	}
}

func mustList(t *testing.T, m *Manager) []*models.Task {
	t.Helper()
	res, err := m.ListTasks(ListOptions{})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	return res.Tasks
}

func TestNewManager_NormalizesSettings(t *testing.T) {
	s, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	m := NewManager(s, &models.Settings{PassingScore: 150, QueryPageSize: 100})
	got := m.Settings()
	if got.PassingScore != models.DefaultPassingScore {
		t.Errorf("PassingScore = %d, want %d", got.PassingScore, models.DefaultPassingScore)
	}
	if got.QueryPageSize != models.MaxQueryPageSize {
		t.Errorf("QueryPageSize = %d, want %d", got.QueryPageSize, models.MaxQueryPageSize)
	}
	if !got.ShouldBackupOnClear() {
		t.Errorf("expected backup on clear by default")
	}
}

func TestError_Format(t *testing.T) {
	err := cycleError([]string{"X", "Y", "X"})
	if got, want := err.Error(), "dependency cycle: cycle: X -> Y -> X"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	var te *Error
	if !errors.As(err, &te) {
		t.Fatalf("expected *Error")
	}
	if len(te.Refs) != 3 {
		t.Errorf("Refs = %v", te.Refs)
	}
}
