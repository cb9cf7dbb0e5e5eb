// Package style provides shared UI styling primitives including brand colors
// and icons for consistent visual presentation across the CLI.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/datanode/internal/core/domain"
)

// Brand Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	White  = lipgloss.Color("#FFFFFF")
	Ink    = lipgloss.Color("#0B0F19")
	Mist   = lipgloss.Color("#F6F7FB")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check    = "✓"
	Cross    = "✗"
	Warning  = "!"
	Tilde    = "~"
	Dot      = "●"
	Circle   = "○"
	Question = "?"
)

// StatusIcon returns the icon and color used to display a task status.
// Stale running tasks get their own icon so they stand out from live ones.
func StatusIcon(state domain.TaskState) (string, lipgloss.Color) {
	switch state.Status {
	case domain.TaskCompleted:
		return Check, Green
	case domain.TaskFailed:
		return Cross, Red
	case domain.TaskRunning:
		if state.Stale {
			return Tilde, Yellow
		}
		return Dot, Yellow
	case domain.TaskCorrupt:
		return Warning, Red
	case domain.TaskForeign:
		return Question, Slate
	default:
		return Circle, Slate
	}
}
