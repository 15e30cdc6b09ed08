// Package plan renders a PlanResult inside a scrollable, render-on-set
// viewport component.
package plan

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dayplan/dayplan/internal/models"
)

var (
	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(12)

	taskStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

type Model struct {
	viewport viewport.Model
	Result   *models.PlanResult
	width    int
	height   int
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.Result == nil {
		return "No plan for today. Press 'g' to generate."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

func (m *Model) SetResult(result models.PlanResult) {
	m.Result = &result
	m.Render()
}

func (m *Model) Render() {
	if m.Result == nil {
		m.viewport.SetContent("No plan loaded.")
		return
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Scheduled %d of %d tasks\n\n", m.Result.ScheduledTasks, m.Result.TotalTasks))

	for _, st := range m.Result.Schedule {
		timeStr := st.ScheduledTime
		if timeStr == "" {
			timeStr = "(unplaced)"
		}

		status := ""
		if st.HasConflicts {
			status = string(st.ConflictSeverity)
		}

		line := fmt.Sprintf("%s %s %s\n",
			timeStyle.Render(timeStr),
			taskStyle.Render(st.TaskName),
			statusStyle.Render(status),
		)
		b.WriteString(line)
	}

	if len(m.Result.Suggestions) > 0 {
		b.WriteString("\n")
		for _, s := range m.Result.Suggestions {
			b.WriteString(warningStyle.Render("⚠ "+s) + "\n")
		}
	}

	m.viewport.SetContent(b.String())
}
