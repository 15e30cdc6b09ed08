// Package tui is the interactive terminal application: a schedule viewer and
// a template manager over two tabs.
package tui

import (
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/dayplan/dayplan/internal/constants"
	"github.com/dayplan/dayplan/internal/models"
	"github.com/dayplan/dayplan/internal/recurrence"
	"github.com/dayplan/dayplan/internal/scheduler"
	"github.com/dayplan/dayplan/internal/store"
	"github.com/dayplan/dayplan/internal/tui/components/plan"
)

// numTabs is the tab count cycled by Tab/ShiftTab, over
// constants.StatePlan/constants.StateTemplates.
const numTabs = 2

// tabSchedule and tabTemplates name the two tabs this model cycles through;
// both are constants.SessionState values so m.active can compare directly
// against them.
const (
	tabSchedule  = constants.StatePlan
	tabTemplates = constants.StateTemplates
)

type Model struct {
	store   store.Store
	planner *scheduler.Planner
	events  *store.Bus
	userID  string

	keys   KeyMap
	active constants.SessionState
	width  int
	height int

	date      time.Time
	planModel plan.Model
	templates []models.Template
	cursor    int

	form       *huh.Form
	formActive bool
	formInput  *templateFormInput

	status string
	err    error
}

// templateFormInput holds the huh-bound scratch values for the add-template
// form, converted to a models.Template on submit.
type templateFormInput struct {
	Name        string
	Duration    string
	MinDuration string
	Priority    string
	Mandatory   bool
	Fixed       bool
	DefaultTime string
	Window      string
}

// NewModel constructs the root TUI model. The signature is the one
// internal/cli/system/tui.go wires a Program around.
func NewModel(st store.Store, planner *scheduler.Planner, events *store.Bus, userID string) Model {
	return Model{
		store:     st,
		planner:   planner,
		events:    events,
		userID:    userID,
		keys:      DefaultKeyMap(),
		date:      time.Now(),
		planModel: plan.New(80, 20),
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadAll
}

type loadedMsg struct {
	templates []models.Template
	result    *models.PlanResult
}

type errMsg struct{ err error }

type planGeneratedMsg struct {
	result *models.PlanResult
	err    error
}

type templateSavedMsg struct{ err error }

// loadAll refreshes templates and today's plan (if one is already saved)
// from the store. Run as the initial Cmd and again after any mutation.
func (m Model) loadAll() tea.Msg {
	templates, err := m.store.GetTemplates(m.userID)
	if err != nil {
		return errMsg{err}
	}
	dateStr := m.date.Format(constants.DateFormat)
	result, err := m.store.GetPlan(m.userID, dateStr)
	if err != nil {
		return loadedMsg{templates: templates, result: nil}
	}
	return loadedMsg{templates: templates, result: &result}
}

func (m Model) generatePlan() tea.Msg {
	settings, err := m.store.GetSettings(m.userID)
	if err != nil {
		return planGeneratedMsg{err: err}
	}
	sleep := models.SleepSchedule{
		WakeTime:    settings.DefaultWakeTime,
		SleepTime:   settings.DefaultSleepTime,
		DurationMin: settings.DesiredSleepDurationMin,
	}
	dateStr := m.date.Format(constants.DateFormat)
	if override, ok, err := m.store.GetDailySchedule(m.userID, dateStr); err == nil && ok {
		sleep = *override
	}

	instances, err := instancesDueOn(m.store, m.userID, m.templates, dateStr, m.date)
	if err != nil {
		return planGeneratedMsg{err: err}
	}

	result, planErr := m.planner.Plan(m.templates, instances, sleep, m.date)
	if planErr != nil {
		return planGeneratedMsg{err: planErr}
	}
	return planGeneratedMsg{result: result}
}

func (m Model) acceptPlan(result models.PlanResult) tea.Cmd {
	return func() tea.Msg {
		dateStr := m.date.Format(constants.DateFormat)
		if err := m.store.SavePlan(m.userID, dateStr, result); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m Model) saveTemplate(t models.Template) tea.Cmd {
	return func() tea.Msg {
		return templateSavedMsg{err: m.store.SaveTemplate(m.userID, t)}
	}
}

func (m Model) deleteTemplate(id string) tea.Cmd {
	return func() tea.Msg {
		return templateSavedMsg{err: m.store.DeleteTemplate(m.userID, id)}
	}
}

// instancesDueOn mirrors internal/cli/plans/plan.go's materialization so the
// TUI's "generate" action produces the same schedule the CLI's plan command
// would for the same date.
func instancesDueOn(st store.Store, userID string, templates []models.Template, dateStr string, date time.Time) ([]models.Instance, error) {
	existing, err := st.GetInstancesForDate(userID, dateStr)
	if err != nil {
		return nil, err
	}
	byTemplate := make(map[string]models.Instance, len(existing))
	for _, inst := range existing {
		byTemplate[inst.TemplateID] = inst
	}

	engine := recurrence.New().WithCountOccurrences(func(templateID string, upTo time.Time) (int, error) {
		return st.CountOccurrences(templateID, upTo.Format(constants.DateFormat))
	})

	var out []models.Instance
	for _, t := range templates {
		if !t.IsActive || !engine.ShouldFireOn(t, date) {
			continue
		}
		if inst, ok := byTemplate[t.ID]; ok {
			out = append(out, inst)
			continue
		}
		out = append(out, models.Instance{
			ID:              dateStr + ":" + t.ID,
			TemplateID:      t.ID,
			Date:            dateStr,
			TaskName:        t.TaskName,
			DurationMinutes: t.DurationMinutes,
			Priority:        t.Priority,
			IsMandatory:     t.IsMandatory,
			DependsOn:       t.DependsOn,
			Status:          models.StatusPending,
		})
	}
	return out, nil
}

func newTemplateForm(input *templateFormInput) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&input.Name),
			huh.NewInput().Title("Duration (min)").Value(&input.Duration).
				Validate(validatePositiveInt),
			huh.NewInput().Title("Min duration (min, optional)").Value(&input.MinDuration),
			huh.NewInput().Title("Priority (1-5)").Value(&input.Priority).
				Validate(validatePriority),
			huh.NewConfirm().Title("Mandatory").Value(&input.Mandatory),
			huh.NewConfirm().Title("Fixed clock time").Value(&input.Fixed),
			huh.NewInput().Title("Default time (HH:MM, if fixed)").Value(&input.DefaultTime),
			huh.NewSelect[string]().
				Title("Window (if flexible)").
				Options(
					huh.NewOption(string(models.WindowMorning), string(models.WindowMorning)),
					huh.NewOption(string(models.WindowAfternoon), string(models.WindowAfternoon)),
					huh.NewOption(string(models.WindowEvening), string(models.WindowEvening)),
					huh.NewOption(string(models.WindowAnytime), string(models.WindowAnytime)),
				).
				Value(&input.Window),
		),
	).WithTheme(huh.ThemeDracula())
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if n <= 0 {
		return errPositiveInt
	}
	return nil
}

func validatePriority(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if n < 1 || n > 5 {
		return errPriorityRange
	}
	return nil
}

var (
	errPositiveInt   = &fieldError{"must be a positive number of minutes"}
	errPriorityRange = &fieldError{"priority must be 1-5"}
)

type fieldError struct{ msg string }

func (e *fieldError) Error() string { return e.msg }

func templateFromInput(input templateFormInput, id string) (models.Template, error) {
	t := models.Template{
		ID:          id,
		TaskName:    input.Name,
		IsActive:    true,
		IsMandatory: input.Mandatory,
	}

	dur, err := strconv.Atoi(input.Duration)
	if err != nil {
		return t, err
	}
	t.DurationMinutes = dur
	t.MinDurationMinutes = dur
	if input.MinDuration != "" {
		minDur, err := strconv.Atoi(input.MinDuration)
		if err != nil {
			return t, err
		}
		t.MinDurationMinutes = minDur
	}

	priority := 3
	if input.Priority != "" {
		priority, err = strconv.Atoi(input.Priority)
		if err != nil {
			return t, err
		}
	}
	t.Priority = priority

	if input.Fixed {
		t.SchedulingType = models.SchedulingFixed
		t.DefaultTime = input.DefaultTime
	} else {
		t.SchedulingType = models.SchedulingFlexible
		t.TimeWindow = models.TimeWindowName(input.Window)
		if t.TimeWindow == "" {
			t.TimeWindow = models.WindowAnytime
		}
	}

	return t, nil
}

func newTemplateID() string {
	return uuid.New().String()
}
