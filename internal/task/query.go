package task

import (
	"strings"

	"github.com/watchfire-io/taskgraph/internal/models"
)

// StatusAll is the list filter that matches every status.
const StatusAll = "all"

// ParseStatusFilter parses a list filter. "" and "all" match every status and
// yield an empty TaskStatus.
func ParseStatusFilter(s string) (models.TaskStatus, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == StatusAll {
		return "", nil
	}
	status := models.TaskStatus(strings.ReplaceAll(s, "-", "_"))
	if !status.Valid() {
		return "", validationf("unknown status filter %q (want all, pending, in_progress or completed)", s)
	}
	return status, nil
}

// ListOptions contains options for listing tasks.
type ListOptions struct {
	// Status filters by status; empty lists every task.
	Status models.TaskStatus
	// Group additionally buckets the result by status.
	Group bool
}

// StatusGroup is one status bucket of a listing.
type StatusGroup struct {
	Status models.TaskStatus
	Tasks  []*models.Task
}

// ListResult is the outcome of ListTasks.
type ListResult struct {
	// Tasks is in store order.
	Tasks []*models.Task
	// Groups is set when grouping was requested, in lifecycle order and
	// including empty buckets.
	Groups []StatusGroup
}

// ListTasks returns the tasks matching the filter in store order.
func (m *Manager) ListTasks(opts ListOptions) (*ListResult, error) {
	if opts.Status != "" && !opts.Status.Valid() {
		return nil, validationf("unknown status filter %q", opts.Status)
	}

	tasks, err := m.repo.Load()
	if err != nil {
		return nil, err
	}

	result := &ListResult{Tasks: []*models.Task{}}
	for _, t := range tasks {
		if opts.Status == "" || t.Status == opts.Status {
			result.Tasks = append(result.Tasks, t)
		}
	}

	if opts.Group {
		for _, status := range models.TaskStatuses {
			if opts.Status != "" && status != opts.Status {
				continue
			}
			group := StatusGroup{Status: status}
			for _, t := range result.Tasks {
				if t.Status == status {
					group.Tasks = append(group.Tasks, t)
				}
			}
			result.Groups = append(result.Groups, group)
		}
	}
	return result, nil
}

// GetTask retrieves a task by id.
func (m *Manager) GetTask(id string) (*models.Task, error) {
	if strings.TrimSpace(id) == "" {
		return nil, validationf("task id is required")
	}
	tasks, err := m.repo.Load()
	if err != nil {
		return nil, err
	}
	_, t := findTask(tasks, id)
	if t == nil {
		return nil, notFound(id)
	}
	return t, nil
}

// QueryOptions contains options for searching tasks.
type QueryOptions struct {
	Text string
	// IsID treats Text as an exact task id.
	IsID bool
	// IncludeSummary also searches completion summaries.
	IncludeSummary bool
	// Page is 1-based; zero means the first page.
	Page int
	// PageSize zero means the configured default.
	PageSize int
}

// QueryResult is one page of search matches.
type QueryResult struct {
	Tasks      []*models.Task
	Page       int
	PageSize   int
	Total      int
	TotalPages int
}

// QueryTasks searches name, description, and notes case-insensitively.
// Matches are returned in store order; no match is not an error.
func (m *Manager) QueryTasks(opts QueryOptions) (*QueryResult, error) {
	text := strings.TrimSpace(opts.Text)
	if text == "" {
		return nil, validationf("query text is required")
	}
	page := opts.Page
	if page == 0 {
		page = 1
	}
	if page < 0 {
		return nil, validationf("page %d must be positive", opts.Page)
	}
	size := opts.PageSize
	if size == 0 {
		size = m.settings.QueryPageSize
	}
	if size < 0 || size > models.MaxQueryPageSize {
		return nil, validationf("page size %d is out of range 1..%d", opts.PageSize, models.MaxQueryPageSize)
	}

	tasks, err := m.repo.Load()
	if err != nil {
		return nil, err
	}

	var matches []*models.Task
	needle := strings.ToLower(text)
	for _, t := range tasks {
		if opts.IsID {
			if t.ID == text {
				matches = append(matches, t)
			}
			continue
		}
		if matchesText(t, needle, opts.IncludeSummary) {
			matches = append(matches, t)
		}
	}

	result := &QueryResult{
		Tasks:    []*models.Task{},
		Page:     page,
		PageSize: size,
		Total:    len(matches),
	}
	result.TotalPages = (len(matches) + size - 1) / size
	start := (page - 1) * size
	if start < len(matches) {
		end := min(start+size, len(matches))
		result.Tasks = matches[start:end]
	}
	return result, nil
}

func matchesText(t *models.Task, needle string, includeSummary bool) bool {
	fields := []string{t.Name, t.Description, t.Notes}
	if includeSummary {
		fields = append(fields, t.Summary)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
