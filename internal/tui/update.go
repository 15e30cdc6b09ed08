package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/dayplan/dayplan/internal/models"
)

const defaultWindow = models.WindowAnytime

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.planModel.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case loadedMsg:
		m.templates = msg.templates
		if msg.result != nil {
			m.planModel.SetResult(*msg.result)
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		m.status = msg.err.Error()
		return m, nil

	case planGeneratedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = msg.err.Error()
			return m, nil
		}
		m.planModel.SetResult(*msg.result)
		m.status = "plan generated — press 'a' to accept"
		return m, nil

	case templateSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = msg.err.Error()
			return m, nil
		}
		m.formActive = false
		m.form = nil
		m.formInput = nil
		return m, m.loadAll

	case tea.KeyMsg:
		if m.formActive {
			return m.updateForm(msg)
		}
		return m.updateMain(msg)
	}

	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		id := newTemplateID()
		t, err := templateFromInput(*m.formInput, id)
		if err != nil {
			m.form.State = huh.StateNormal
			m.status = err.Error()
			return m, nil
		}
		return m, m.saveTemplate(t)
	case huh.StateAborted:
		m.formActive = false
		m.form = nil
		m.formInput = nil
		return m, nil
	}

	return m, cmd
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Tab):
		m.active = (m.active + 1) % numTabs
		return m, nil

	case key.Matches(msg, m.keys.ShiftTab):
		m.active = (m.active - 1 + numTabs) % numTabs
		return m, nil
	}

	switch m.active {
	case tabSchedule:
		return m.updateSchedule(msg)
	case tabTemplates:
		return m.updateTemplates(msg)
	}

	return m, nil
}

func (m Model) updateSchedule(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Generate):
		m.status = "generating..."
		return m, m.generatePlan

	case key.Matches(msg, m.keys.Accept):
		if m.planModel.Result == nil {
			m.status = "no plan to accept"
			return m, nil
		}
		return m, m.acceptPlan(*m.planModel.Result)
	}

	var cmd tea.Cmd
	m.planModel, cmd = m.planModel.Update(msg)
	return m, cmd
}

func (m Model) updateTemplates(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.templates)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Add):
		m.formInput = &templateFormInput{Priority: "3", Window: string(defaultWindow)}
		m.form = newTemplateForm(m.formInput)
		m.formActive = true
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		if m.cursor >= 0 && m.cursor < len(m.templates) {
			id := m.templates[m.cursor].ID
			return m, m.deleteTemplate(id)
		}
		return m, nil
	}

	return m, nil
}
