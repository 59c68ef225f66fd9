package config

import (
	"github.com/watchfire-io/taskgraph/internal/models"
)

// LoadSettings loads settings from <dataDir>/settings.yaml.
// If the file doesn't exist, returns default settings.
func LoadSettings(dataDir string) (*models.Settings, error) {
	settings, err := LoadYAMLOrDefault(SettingsFile(dataDir), models.NewSettings)
	if err != nil {
		return nil, err
	}
	settings.Normalize()
	return settings, nil
}

// SaveSettings saves settings to <dataDir>/settings.yaml.
func SaveSettings(dataDir string, settings *models.Settings) error {
	return SaveYAML(SettingsFile(dataDir), settings)
}
