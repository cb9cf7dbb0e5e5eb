// Package report renders node listings and audit results for the terminal or as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/datanode/internal/core/domain"
	"go.trai.ch/datanode/internal/ui/output"
	"go.trai.ch/datanode/internal/ui/style"
	"go.trai.ch/zerr"
)

// TimeLayout is the layout used for timestamps in human-readable output.
const TimeLayout = "2006-01-02 15:04:05"

// Renderer writes listings in one of the pretty, plain or JSON output modes.
// Pretty output is aligned and coloured; plain output is one tab-separated
// record per line; JSON output is one indented document per call.
type Renderer struct {
	w      io.Writer
	mode   domain.OutputMode
	output *termenv.Output
}

// NewRenderer creates a Renderer writing to w. The auto mode renders like plain.
func NewRenderer(w io.Writer, mode domain.OutputMode) *Renderer {
	if mode == domain.OutputAuto || mode == "" {
		mode = domain.OutputPlain
	}
	return &Renderer{
		w:      w,
		mode:   mode,
		output: output.New(w),
	}
}

// Mode returns the output mode of the renderer.
func (r *Renderer) Mode() domain.OutputMode {
	return r.mode
}

type tasksDocument struct {
	Node  string             `json:"node"`
	Tasks []domain.TaskEntry `json:"tasks"`
}

// Tasks renders the task listing of the node at nodePath.
func (r *Renderer) Tasks(nodePath string, entries []domain.TaskEntry) error {
	if r.mode == domain.OutputJSON {
		return r.writeJSON(tasksDocument{Node: nodePath, Tasks: nonNil(entries)})
	}

	if r.mode == domain.OutputPlain {
		for _, entry := range entries {
			r.printf("%s\t%s\t%s\n", entry.Name, entry.State.Status, describe(entry.State))
		}
		return nil
	}

	r.printf("%s\n", r.output.String(nodePath).Bold())
	if len(entries) == 0 {
		r.printf("  %s\n", r.faint("no tasks"))
		return nil
	}

	width := 0
	for _, entry := range entries {
		width = max(width, lipgloss.Width(entry.Name))
	}
	for _, entry := range entries {
		r.printRow("  ", entry.Name, width, entry.State)
	}
	return nil
}

type childrenDocument struct {
	Node     string             `json:"node"`
	Children []domain.NodeEntry `json:"children"`
}

// Children renders the child nodes of the node at nodePath.
func (r *Renderer) Children(nodePath string, children []domain.NodeEntry) error {
	switch r.mode {
	case domain.OutputJSON:
		return r.writeJSON(childrenDocument{Node: nodePath, Children: nonNil(children)})
	case domain.OutputPlain:
		for _, child := range children {
			r.printf("%s\t%s\t%s\n", child.Name, child.Class, child.Path)
		}
		return nil
	}

	r.printf("%s\n", r.output.String(nodePath).Bold())
	if len(children) == 0 {
		r.printf("  %s\n", r.faint("no child nodes"))
		return nil
	}

	width := 0
	for _, child := range children {
		width = max(width, lipgloss.Width(child.Name))
	}
	for _, child := range children {
		line := "  " + r.color(style.Dot, style.Iris) + " " + pad(child.Name, width)
		if child.Class != "" {
			line += "  " + r.faint("["+child.Class+"]")
		}
		r.printf("%s\n", strings.TrimRight(line, " "))
	}
	return nil
}

// Created renders the result of creating or opening a node.
func (r *Renderer) Created(entry domain.NodeEntry) error {
	switch r.mode {
	case domain.OutputJSON:
		return r.writeJSON(entry)
	case domain.OutputPlain:
		r.printf("%s\n", entry.Path)
		return nil
	}

	line := r.color(style.Check, style.Green) + " " + entry.Path
	if entry.Class != "" {
		line += " " + r.faint("["+entry.Class+"]")
	}
	r.printf("%s\n", line)
	return nil
}

// TaskFinished renders the final state of a task run by the CLI.
func (r *Renderer) TaskFinished(entry domain.TaskEntry) error {
	switch r.mode {
	case domain.OutputJSON:
		return r.writeJSON(entry)
	case domain.OutputPlain:
		r.printf("%s\t%s\t%s\n", entry.Path, entry.State.Status, describe(entry.State))
		return nil
	}

	r.printRow("", entry.Path, 0, entry.State)
	return nil
}

type auditDocument struct {
	Root       string                  `json:"root"`
	Incomplete []domain.IncompleteTask `json:"incomplete"`
}

// Audit renders the incomplete tasks found under root.
func (r *Renderer) Audit(root string, findings []domain.IncompleteTask) error {
	if r.mode == domain.OutputJSON {
		return r.writeJSON(auditDocument{Root: root, Incomplete: nonNil(findings)})
	}

	if r.mode == domain.OutputPlain {
		for _, finding := range findings {
			r.printf("%s\t%s\t%s\n", qualifiedName(finding), finding.State.Status, describe(finding.State))
		}
		return nil
	}

	if len(findings) == 0 {
		r.printf("%s no incomplete tasks under %s\n", r.color(style.Check, style.Green), root)
		return nil
	}

	width := 0
	for _, finding := range findings {
		width = max(width, lipgloss.Width(qualifiedName(finding)))
	}
	for _, finding := range findings {
		r.printRow("", qualifiedName(finding), width, finding.State)
	}

	noun := "tasks"
	if len(findings) == 1 {
		noun = "task"
	}
	r.printf("%s\n", r.faint(fmt.Sprintf("%d incomplete %s under %s", len(findings), noun, root)))
	return nil
}

func (r *Renderer) printRow(indent, name string, width int, state domain.TaskState) {
	icon, color := style.StatusIcon(state)
	line := fmt.Sprintf("%s%s %s  %-9s  %s",
		indent, r.color(icon, color), pad(name, width), state.Status, describe(state))
	r.printf("%s\n", strings.TrimRight(line, " "))
}

func (r *Renderer) color(s string, c lipgloss.Color) string {
	return r.output.String(s).Foreground(r.output.Color(string(c))).String()
}

func (r *Renderer) faint(s string) string {
	return r.output.String(s).Faint().String()
}

func (r *Renderer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.w, format, args...)
}

func (r *Renderer) writeJSON(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return zerr.Wrap(err, "failed to encode report")
	}
	return nil
}

// describe returns the detail column for a task state.
func describe(state domain.TaskState) string {
	switch state.Status {
	case domain.TaskRunning:
		if state.Owner == nil {
			return ""
		}
		if state.Stale {
			return state.Owner.String() + " (stale)"
		}
		return state.Owner.String()
	case domain.TaskCompleted:
		return formatTime(state.EndedAt)
	case domain.TaskFailed, domain.TaskCorrupt:
		return firstLine(state.Detail)
	default:
		return ""
	}
}

func qualifiedName(finding domain.IncompleteTask) string {
	if finding.Node == "" || finding.Node == "." {
		return finding.Name
	}
	return finding.Node + "/" + finding.Name
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func pad(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
