package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"

	"github.com/watchfire-io/taskgraph/internal/models"
)

// Adaptive colors.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

// Semantic styles for CLI output.
var (
	styleBrand   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleVersion = lipgloss.NewStyle().Foreground(colorGreen)
	styleLabel   = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	styleHint    = lipgloss.NewStyle().Foreground(colorDim)
	styleHeading = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
)

// Task status badge styles.
var (
	badgePending    = lipgloss.NewStyle().Foreground(colorDim)
	badgeInProgress = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	badgeCompleted  = lipgloss.NewStyle().Foreground(colorGreen)
)

const defaultWidth = 100

func statusBadge(status models.TaskStatus) string {
	switch status {
	case models.TaskStatusInProgress:
		return badgeInProgress.Render("[~]")
	case models.TaskStatusCompleted:
		return badgeCompleted.Render("[✓]")
	default:
		return badgePending.Render("[ ]")
	}
}

func statusTitle(status models.TaskStatus) string {
	switch status {
	case models.TaskStatusInProgress:
		return "In progress"
	case models.TaskStatusCompleted:
		return "Completed"
	default:
		return "Pending"
	}
}

// terminalWidth returns the stdout width, or a default when not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

func truncate(s string, width int) string {
	if width <= 1 {
		return s
	}
	return ansi.Truncate(s, width, "…")
}
