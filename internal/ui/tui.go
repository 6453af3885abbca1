// Package ui provides an optional terminal task browser.
package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/taskweave/taskweave/internal/deps"
	"github.com/taskweave/taskweave/internal/task"
)

// Run starts the read-only task browser over the tasks file at path.
// The file is re-read once per second so external edits show up.
func Run(ctx context.Context, path string) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("tui requires a TTY")
	}
	model := &tuiModel{path: path, tickInterval: time.Second}
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type tuiModel struct {
	path         string
	file         *task.File
	loadErr      error
	cursor       int
	filter       task.Status // empty means all
	tickInterval time.Duration
}

type tickMsg time.Time

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *tuiModel) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.tickInterval)
}

func (m *tuiModel) refresh() {
	f, err := task.Load(m.path)
	m.file, m.loadErr = f, err
	if f != nil && m.cursor >= len(f.Tasks) {
		m.cursor = len(f.Tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "f5":
			m.refresh()
			return m, nil
		case "j", "down":
			if m.file != nil && m.cursor < len(m.visible())-1 {
				m.cursor++
			}
			return m, nil
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "f":
			m.cycleFilter()
			m.cursor = 0
			return m, nil
		case "0":
			m.filter = ""
			m.cursor = 0
			return m, nil
		}
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.tickInterval)
	}
	return m, nil
}

// cycleFilter steps through the statuses present in the file.
func (m *tuiModel) cycleFilter() {
	if m.file == nil {
		return
	}
	var order []task.Status
	seen := make(map[task.Status]bool)
	for i := range m.file.Tasks {
		s := m.file.Tasks[i].Status
		if !seen[s] {
			seen[s] = true
			order = append(order, s)
		}
	}
	if len(order) == 0 {
		return
	}
	if m.filter == "" {
		m.filter = order[0]
		return
	}
	for i, s := range order {
		if s == m.filter {
			if i+1 < len(order) {
				m.filter = order[i+1]
			} else {
				m.filter = ""
			}
			return
		}
	}
	m.filter = order[0]
}

func (m *tuiModel) visible() []*task.Task {
	if m.file == nil {
		return nil
	}
	var out []*task.Task
	for i := range m.file.Tasks {
		if m.filter == "" || m.file.Tasks[i].Status == m.filter {
			out = append(out, &m.file.Tasks[i])
		}
	}
	return out
}

func (m *tuiModel) View() string {
	var b strings.Builder
	b.WriteString("taskweave\n")
	b.WriteString(strings.Repeat("=", 9) + "\n\n")

	if m.loadErr != nil {
		b.WriteString(fmt.Sprintf("Error: %v\n", m.loadErr))
		b.WriteString("\nPress q to quit, r to retry.\n")
		return b.String()
	}

	counts := make(map[task.Status]int)
	for i := range m.file.Tasks {
		counts[m.file.Tasks[i].Status]++
	}
	b.WriteString(fmt.Sprintf("%d tasks", len(m.file.Tasks)))
	for _, s := range task.DefaultStatuses() {
		if counts[s] > 0 {
			b.WriteString(fmt.Sprintf("  %s:%d", s, counts[s]))
		}
	}
	b.WriteString("\n")
	if m.filter != "" {
		b.WriteString(fmt.Sprintf("Filter: %s (0 to clear)\n", m.filter))
	}
	b.WriteString("\n")

	visible := m.visible()
	for i, t := range visible {
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		blocked := ""
		if t.Status == task.StatusPending && !deps.CanComplete(m.file, task.Node{Task: t}) {
			blocked = "  [blocked]"
		}
		b.WriteString(fmt.Sprintf("%s%s %3d  %-12s %s%s\n", marker, statusGlyph(t.Status), t.ID, t.Status, t.Title, blocked))
		if i == m.cursor {
			for j := range t.Subtasks {
				st := &t.Subtasks[j]
				b.WriteString(fmt.Sprintf("     %s %d.%d  %-12s %s\n", statusGlyph(st.Status), t.ID, st.ID, st.Status, st.Title))
			}
		}
	}
	if len(visible) == 0 {
		b.WriteString("  (no tasks)\n")
	}

	b.WriteString("\nj/k move · f filter · 0 all · r refresh · q quit\n")
	return b.String()
}

func statusGlyph(s task.Status) string {
	switch s {
	case task.StatusDone:
		return "✓"
	case task.StatusInProgress:
		return "▶"
	case task.StatusCancelled:
		return "✗"
	case task.StatusDeferred:
		return "…"
	case task.StatusReview:
		return "?"
	default:
		return "·"
	}
}
