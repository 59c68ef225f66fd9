// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// DataDirName is the name of the per-project data directory.
	DataDirName = ".taskgraph"

	// MemoryDirName is the name of the backup directory within the data directory.
	MemoryDirName = "memory"

	// DataDirEnv overrides the data directory for the CLI.
	DataDirEnv = "TASKGRAPH_DATA_DIR"
)

// File names
const (
	TasksFileName    = "tasks.yaml"
	SettingsFileName = "settings.yaml"
)

// ResolveDataDir picks the data directory: explicit flag value, then the
// environment override, then .taskgraph/ under the working directory.
func ResolveDataDir(flagValue string) (string, error) {
	if dir := strings.TrimSpace(flagValue); dir != "" {
		return filepath.Abs(dir)
	}
	if dir := strings.TrimSpace(os.Getenv(DataDirEnv)); dir != "" {
		return filepath.Abs(dir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DataDirName), nil
}

// TasksFile returns the path to the tasks.yaml file.
func TasksFile(dataDir string) string {
	return filepath.Join(dataDir, TasksFileName)
}

// SettingsFile returns the path to the settings.yaml file.
func SettingsFile(dataDir string) string {
	return filepath.Join(dataDir, SettingsFileName)
}

// MemoryDir returns the path to the backup directory.
func MemoryDir(dataDir string) string {
	return filepath.Join(dataDir, MemoryDirName)
}

// EnsureDataDir creates the data directory structure.
func EnsureDataDir(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}
	return os.MkdirAll(MemoryDir(dataDir), 0o755)
}
