package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/watchfire-io/taskgraph/internal/models"
)

// InitDataDir creates the data directory and a default settings.yaml.
// Existing settings are left alone. It reports whether settings were written.
func InitDataDir(dataDir string) (bool, error) {
	if err := EnsureDataDir(dataDir); err != nil {
		return false, fmt.Errorf("failed to create data dir: %w", err)
	}
	if FileExists(SettingsFile(dataDir)) {
		return false, nil
	}
	if err := SaveSettings(dataDir, models.NewSettings()); err != nil {
		return false, err
	}
	return true, nil
}

// AddToGitignore adds the data directory to the .gitignore next to it.
func AddToGitignore(dataDir string) error {
	parent := filepath.Dir(filepath.Clean(dataDir))
	entry := filepath.Base(filepath.Clean(dataDir)) + "/"
	gitignorePath := filepath.Join(parent, ".gitignore")

	var content []byte
	if FileExists(gitignorePath) {
		var err error
		content, err = os.ReadFile(gitignorePath)
		if err != nil {
			return fmt.Errorf("failed to read .gitignore: %w", err)
		}
	}

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == entry || line == strings.TrimSuffix(entry, "/") {
			return nil
		}
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open .gitignore: %w", err)
	}
	defer func() { _ = f.Close() }()

	// Add newline if file doesn't end with one
	if len(content) > 0 && content[len(content)-1] != '\n' {
		if _, err := f.WriteString("\n"); err != nil {
			return fmt.Errorf("failed to write .gitignore: %w", err)
		}
	}
	if _, err := f.WriteString(entry + "\n"); err != nil {
		return fmt.Errorf("failed to write .gitignore: %w", err)
	}
	return nil
}
