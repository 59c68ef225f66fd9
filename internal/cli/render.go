package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/watchfire-io/taskgraph/internal/models"
)

// shortID keeps enough of a uuid to be recognizable in listings.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printTaskLine(w io.Writer, t *models.Task, width int) {
	prefix := fmt.Sprintf("  %s %s  ", statusBadge(t.Status), styleLabel.Render(shortID(t.ID)))
	name := truncate(t.Name, width-16)
	fmt.Fprintf(w, "%s%s\n", prefix, name)
}

func printTaskGroup(w io.Writer, status models.TaskStatus, tasks []*models.Task, width int) {
	fmt.Fprintf(w, "\n%s\n", styleHeading.Render(fmt.Sprintf("%s (%d):", statusTitle(status), len(tasks))))
	for _, t := range tasks {
		printTaskLine(w, t, width)
	}
}

// printTaskDetail prints every set field of a task. names maps dependency
// ids to names for display.
func printTaskDetail(w io.Writer, t *models.Task, names map[string]string) {
	field := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(w, "%s %s\n", styleLabel.Render(fmt.Sprintf("%-14s", label+":")), styleValue.Render(value))
	}
	block := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		fmt.Fprintf(w, "\n%s\n", styleHeading.Render(label))
		for _, line := range strings.Split(strings.TrimRight(value, "\n"), "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}

	fmt.Fprintf(w, "%s %s\n", statusBadge(t.Status), styleHeading.Render(t.Name))
	field("ID", t.ID)
	field("Status", string(t.Status))
	field("Created", formatTime(t.CreatedAt))
	field("Updated", formatTime(t.UpdatedAt))
	if t.CompletedAt != nil {
		field("Completed", formatTime(*t.CompletedAt))
	}
	if len(t.Dependencies) > 0 {
		deps := make([]string, 0, len(t.Dependencies))
		for _, id := range t.Dependencies {
			if name, ok := names[id]; ok {
				deps = append(deps, fmt.Sprintf("%s (%s)", name, shortID(id)))
			} else {
				deps = append(deps, id)
			}
		}
		field("Depends on", strings.Join(deps, ", "))
	}

	block("Description", t.Description)
	block("Notes", t.Notes)
	block("Implementation guide", t.ImplementationGuide)
	block("Verification criteria", t.VerificationCriteria)
	block("Analysis", t.AnalysisResult)
	block("Summary", t.Summary)

	if len(t.RelatedFiles) > 0 {
		fmt.Fprintf(w, "\n%s\n", styleHeading.Render("Related files"))
		for _, f := range t.RelatedFiles {
			line := fmt.Sprintf("  %s %s", styleLabel.Render(fmt.Sprintf("%-10s", f.Type)), f.Path)
			if f.Description != "" {
				line += styleHint.Render(" - " + f.Description)
			}
			fmt.Fprintln(w, line)
		}
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func nameIndex(tasks []*models.Task) map[string]string {
	names := make(map[string]string, len(tasks))
	for _, t := range tasks {
		names[t.ID] = t.Name
	}
	return names
}
