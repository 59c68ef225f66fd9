package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/watchfire-io/taskgraph/internal/models"
)

// TasksFileVersion is the current tasks.yaml schema version.
const TasksFileVersion = 1

// TasksDocument is the on-disk shape of tasks.yaml.
type TasksDocument struct {
	Version int            `yaml:"version"`
	Tasks   []*models.Task `yaml:"tasks"`
}

// LoadTasks loads the ordered task collection from a tasks file.
// A missing file is an empty collection.
func LoadTasks(path string) ([]*models.Task, error) {
	if !FileExists(path) {
		return []*models.Task{}, nil
	}

	var doc TasksDocument
	if err := LoadYAML(path, &doc); err != nil {
		return nil, err
	}
	if doc.Version > TasksFileVersion {
		return nil, fmt.Errorf("unsupported tasks file version %d in %s", doc.Version, path)
	}
	if doc.Tasks == nil {
		doc.Tasks = []*models.Task{}
	}
	return doc.Tasks, nil
}

// SaveTasks replaces the whole tasks file with the given collection.
func SaveTasks(path string, tasks []*models.Task) error {
	if tasks == nil {
		tasks = []*models.Task{}
	}
	return SaveYAML(path, &TasksDocument{Version: TasksFileVersion, Tasks: tasks})
}

// BackupFileName returns the backup file name for a point in time
// (e.g., "tasks_memory_2024-05-01T10-30-00.yaml").
func BackupFileName(at time.Time) string {
	return "tasks_memory_" + at.UTC().Format("2006-01-02T15-04-05") + ".yaml"
}

// SaveTasksBackup writes a copy of the collection into the memory directory
// and returns the backup path.
func SaveTasksBackup(dataDir string, tasks []*models.Task, at time.Time) (string, error) {
	dir := MemoryDir(dataDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create memory dir: %w", err)
	}
	path := filepath.Join(dir, BackupFileName(at))
	if err := SaveTasks(path, tasks); err != nil {
		return "", err
	}
	return path, nil
}
