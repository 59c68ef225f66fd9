package models

const (
	// DefaultPassingScore is the minimum verification score that completes a task.
	DefaultPassingScore = 80

	// DefaultQueryPageSize is the page size used when a query does not set one.
	DefaultQueryPageSize = 5

	// MaxQueryPageSize caps the number of tasks returned per query page.
	MaxQueryPageSize = 20
)

// Settings represents engine settings.
// This corresponds to settings.yaml in the data directory.
type Settings struct {
	Version       int   `yaml:"version"`
	PassingScore  int   `yaml:"passing_score"`
	QueryPageSize int   `yaml:"query_page_size"`
	BackupOnClear *bool `yaml:"backup_on_clear,omitempty"` // nil = true
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	backup := true
	return &Settings{
		Version:       1,
		PassingScore:  DefaultPassingScore,
		QueryPageSize: DefaultQueryPageSize,
		BackupOnClear: &backup,
	}
}

// Normalize fills unset or out-of-range fields with defaults.
func (s *Settings) Normalize() {
	if s.Version == 0 {
		s.Version = 1
	}
	if s.PassingScore <= 0 || s.PassingScore > 100 {
		s.PassingScore = DefaultPassingScore
	}
	if s.QueryPageSize <= 0 {
		s.QueryPageSize = DefaultQueryPageSize
	}
	if s.QueryPageSize > MaxQueryPageSize {
		s.QueryPageSize = MaxQueryPageSize
	}
	if s.BackupOnClear == nil {
		backup := true
		s.BackupOnClear = &backup
	}
}

// ShouldBackupOnClear reports whether clear-all writes a backup first.
func (s *Settings) ShouldBackupOnClear() bool {
	return s.BackupOnClear == nil || *s.BackupOnClear
}
