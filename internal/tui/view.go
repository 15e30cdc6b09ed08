package tui

import (
	"fmt"
	"strings"

	"github.com/dayplan/dayplan/internal/constants"
	"github.com/dayplan/dayplan/internal/models"
)

func (m Model) View() string {
	if m.err != nil && m.templates == nil {
		return fmt.Sprintf("error: %v\n", m.err)
	}

	var b strings.Builder

	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.active {
	case tabSchedule:
		b.WriteString(m.viewSchedule())
	case tabTemplates:
		b.WriteString(m.viewTemplates())
	}

	if m.status != "" {
		b.WriteString("\n\n" + m.status)
	}

	return docStyle.Render(b.String())
}

func (m Model) renderTabs() string {
	labels := []string{"Schedule", "Templates"}
	var rendered []string
	for i, label := range labels {
		if constants.SessionState(i) == m.active {
			rendered = append(rendered, activeTabStyle.Render(label))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(label))
		}
	}
	return strings.Join(rendered, "  ")
}

func (m Model) viewSchedule() string {
	return fmt.Sprintf("%s\n\n[g] generate  [a] accept\n\n%s",
		m.date.Format(constants.DateFormat), m.planModel.View())
}

func (m Model) viewTemplates() string {
	if m.formActive && m.form != nil {
		return m.form.View()
	}

	if len(m.templates) == 0 {
		return "No templates yet. Press 'n' to add one."
	}

	var b strings.Builder
	for i, t := range m.templates {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		status := "flexible"
		if t.SchedulingType == models.SchedulingFixed {
			status = "fixed@" + t.DefaultTime
		}
		if !t.IsActive {
			status = dangerStyle.Render("inactive")
		}
		mandatory := ""
		if t.IsMandatory {
			mandatory = warningStyle.Render(" (mandatory)")
		}

		fmt.Fprintf(&b, "%s%s — %dmin, p%d, %s%s\n", cursor, t.TaskName, t.DurationMinutes, t.Priority, status, mandatory)
	}
	b.WriteString("\n[n] new  [d] delete\n")
	return b.String()
}
