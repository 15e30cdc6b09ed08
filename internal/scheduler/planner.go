package scheduler

import (
	"sort"
	"time"

	"github.com/dayplan/dayplan/internal/constants"
	"github.com/dayplan/dayplan/internal/depgraph"
	"github.com/dayplan/dayplan/internal/models"
	"github.com/dayplan/dayplan/internal/recurrence"
	"github.com/dayplan/dayplan/internal/timeutil"
)

// Planner runs the five-step scheduling pipeline over a fixed set of
// templates and instances for one date. It holds no state between calls;
// every field is read-only input for the duration of Plan.
type Planner struct {
	Recurrence *recurrence.Engine
	Config     models.PlannerConfig
}

// New returns a Planner with the default recurrence engine and config.
func New() *Planner {
	return &Planner{Recurrence: recurrence.New(), Config: models.DefaultPlannerConfig()}
}

// WithRecurrence returns a copy of p using engine instead of the default.
func (p *Planner) WithRecurrence(engine *recurrence.Engine) *Planner {
	return &Planner{Recurrence: engine, Config: p.Config}
}

// WithConfig returns a copy of p using cfg instead of the default.
func (p *Planner) WithConfig(cfg models.PlannerConfig) *Planner {
	return &Planner{Recurrence: p.Recurrence, Config: cfg}
}

// taskCandidate is the planner's working representation of one active task,
// merged from a Template and its same-date Instance snapshot (if any).
type taskCandidate struct {
	ID              string
	TemplateID      string
	TaskName        string
	DurationMinutes int
	Priority        int
	IsMandatory     bool
	SchedulingType  models.SchedulingType
	DefaultTime     string
	TimeWindow      models.TimeWindowName
	DependsOn       []string
	InstanceStatus  models.InstanceStatus
}

// Plan runs the full pipeline: feasibility pre-pass, anchor placement,
// dependency resolution, flexible slotting, crunch-time, and conflict
// detection.
func (p *Planner) Plan(templates []models.Template, instances []models.Instance, sleep models.SleepSchedule, date time.Time) (*models.PlanResult, *Error) {
	candidates := buildActiveCandidates(templates, instances, date, p.Recurrence)

	if errResult := checkFeasibility(candidates, sleep); errResult != nil {
		return &models.PlanResult{
			Success:     false,
			Error:       string(KindImpossibleSchedule),
			Message:     errResult.Message,
			Suggestions: errResult.Suggestions,
		}, errResult
	}

	windows := p.Config.Windows
	if windows == nil {
		windows = models.DefaultWindows()
	}
	granularity := p.Config.SlotGranularityMinutes
	if granularity <= 0 {
		granularity = constants.SlotGranularityMin
	}

	scheduled := make(map[string]*models.ScheduledTask) // keyed by TemplateID
	var order []*models.ScheduledTask                     // preserves placement order for overlap scans

	// Step 1 — anchors: mandatory, fixed, with a default time.
	var anchors []taskCandidate
	var rest []taskCandidate
	for _, c := range candidates {
		if c.IsMandatory && c.SchedulingType == models.SchedulingFixed && c.DefaultTime != "" {
			anchors = append(anchors, c)
		} else {
			rest = append(rest, c)
		}
	}
	sort.SliceStable(anchors, func(i, j int) bool { return anchors[i].DefaultTime < anchors[j].DefaultTime })
	var warnings []string
	for _, c := range anchors {
		st := newScheduledTask(c)
		st.ScheduledTime = c.DefaultTime
		st.IsAnchor = true
		scheduled[c.TemplateID] = st
		order = append(order, st)
		if w, outside := outsideWakingHours(c.DefaultTime, c.DurationMinutes, sleep); outside {
			warnings = append(warnings, w)
		}
	}

	// Non-mandatory fixed tasks with a default time are also immovable
	// clock-time placements, but are not anchors — anchors are the
	// mandatory subset only.
	var flexibleOrUnfixed []taskCandidate
	for _, c := range rest {
		if c.SchedulingType == models.SchedulingFixed && c.DefaultTime != "" {
			st := newScheduledTask(c)
			st.ScheduledTime = c.DefaultTime
			scheduled[c.TemplateID] = st
			order = append(order, st)
			continue
		}
		flexibleOrUnfixed = append(flexibleOrUnfixed, c)
	}

	// Step 2 — resolve dependencies over the whole active set so that
	// dependencies on already-placed fixed/anchor tasks resolve correctly.
	depOrder := kahnOrder(candidates)

	// Step 3 — slot flexible tasks in dependency order.
	orderedFlexible := filterAndOrder(flexibleOrUnfixed, depOrder)
	for _, c := range orderedFlexible {
		st := slotFlexibleTask(c, scheduled, windows, granularity)
		scheduled[c.TemplateID] = st
		order = append(order, st)
	}

	// Step 4 — crunch-time: reserved extension point, currently a no-op.
	order = applyCrunchTime(order)

	// Step 5 — detect and annotate conflicts.
	annotateConflicts(order)

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].ScheduledTime == "" {
			return false
		}
		if order[j].ScheduledTime == "" {
			return true
		}
		return order[i].ScheduledTime < order[j].ScheduledTime
	})

	result := &models.PlanResult{
		Success:        true,
		SleepSchedule:  sleep,
		TotalTasks:     len(candidates),
		ScheduledTasks: 0,
		Suggestions:    warnings,
	}
	for _, st := range order {
		result.Schedule = append(result.Schedule, *st)
		if st.ScheduledTime != "" {
			result.ScheduledTasks++
		}
	}
	return result, nil
}

// outsideWakingHours reports whether an anchor's placed interval falls
// outside [wakeTime, sleepTime). Surfaces a warning rather than rejecting
// the anchor or silently ignoring it.
func outsideWakingHours(scheduledTime string, duration int, sleep models.SleepSchedule) (string, bool) {
	start, err := timeutil.ParseHHMM(scheduledTime)
	if err != nil {
		return "", false
	}
	wake, errWake := timeutil.ParseHHMM(sleep.WakeTime)
	sleepStart, errSleep := timeutil.ParseHHMM(sleep.SleepTime)
	if errWake != nil || errSleep != nil {
		return "", false
	}
	end := start + duration
	if start < wake || end > sleepStart {
		return "anchor at " + scheduledTime + " falls outside the waking interval [" + sleep.WakeTime + ", " + sleep.SleepTime + ")", true
	}
	return "", false
}

func newScheduledTask(c taskCandidate) *models.ScheduledTask {
	return &models.ScheduledTask{
		ID:              c.ID,
		TemplateID:      c.TemplateID,
		TaskName:        c.TaskName,
		DurationMinutes: c.DurationMinutes,
		Priority:        c.Priority,
		IsMandatory:     c.IsMandatory,
		IsFlexible:      c.SchedulingType == models.SchedulingFlexible,
		DependsOn:       c.DependsOn,
	}
}

// buildActiveCandidates applies the active-task filter: a template is
// active iff it fires on date and has no completed/skipped instance for
// that date already.
func buildActiveCandidates(templates []models.Template, instances []models.Instance, date time.Time, engine *recurrence.Engine) []taskCandidate {
	dateStr := timeutil.FormatDate(date)
	instanceByTemplate := make(map[string]models.Instance, len(instances))
	for _, inst := range instances {
		if inst.Date == dateStr {
			instanceByTemplate[inst.TemplateID] = inst
		}
	}

	var out []taskCandidate
	for _, t := range templates {
		if !engine.ShouldFireOn(t, date) {
			continue
		}
		inst, hasInst := instanceByTemplate[t.ID]
		if hasInst && (inst.Status == models.StatusCompleted || inst.Status == models.StatusSkipped) {
			continue
		}

		c := taskCandidate{
			TemplateID:      t.ID,
			TaskName:        t.TaskName,
			DurationMinutes: t.DurationMinutes,
			Priority:        t.Priority,
			IsMandatory:     t.IsMandatory,
			SchedulingType:  t.SchedulingType,
			DefaultTime:     t.DefaultTime,
			TimeWindow:      t.TimeWindow,
			DependsOn:       t.DependsOn,
			ID:              t.ID,
		}
		if hasInst {
			c.ID = inst.ID
			c.TaskName = inst.TaskName
			c.DurationMinutes = inst.DurationMinutes
			c.Priority = inst.Priority
			c.IsMandatory = inst.IsMandatory
			if len(inst.DependsOn) > 0 {
				c.DependsOn = inst.DependsOn
			}
			c.InstanceStatus = inst.Status
		}
		out = append(out, c)
	}
	return out
}

// checkFeasibility runs the pre-pass: total mandatory duration must fit the
// waking window derived from the sleep schedule.
func checkFeasibility(candidates []taskCandidate, sleep models.SleepSchedule) *Error {
	var mandatoryMinutes int
	for _, c := range candidates {
		if c.IsMandatory {
			mandatoryMinutes += c.DurationMinutes
		}
	}
	available := constants.MinutesPerDay - sleep.DurationMin
	if mandatoryMinutes > available {
		return newError(KindImpossibleSchedule,
			"mandatory tasks exceed the available waking window",
			"reduce desired sleep duration",
			"demote one or more mandatory tasks to optional",
			"shorten mandatory task durations",
			"postpone a mandatory task to another day",
		)
	}
	return nil
}

// kahnOrder resolves a placement order via Kahn's algorithm over in-degree,
// breaking ties within each ready queue by descending priority.
func kahnOrder(candidates []taskCandidate) []string {
	entries := make([]depgraph.Entry, len(candidates))
	byID := make(map[string]taskCandidate, len(candidates))
	for i, c := range candidates {
		entries[i] = depgraph.Entry{ID: c.TemplateID, DependsOn: c.DependsOn}
		byID[c.TemplateID] = c
	}
	g := depgraph.BuildGraph(entries)

	inDegree := make([]int, len(g.Nodes))
	for i := range g.Nodes {
		inDegree[i] = len(g.Nodes[i].Dependencies)
	}

	var queue []int
	for i, d := range inDegree {
		if d == 0 {
			queue = append(queue, i)
		}
	}

	var result []string
	visited := make([]bool, len(g.Nodes))
	for len(queue) > 0 {
		sort.SliceStable(queue, func(i, j int) bool {
			return byID[g.ID(queue[i])].Priority > byID[g.ID(queue[j])].Priority
		})
		idx := queue[0]
		queue = queue[1:]
		if visited[idx] {
			continue
		}
		visited[idx] = true
		result = append(result, g.ID(idx))
		for _, depIdx := range g.Nodes[idx].Dependents {
			inDegree[depIdx]--
			if inDegree[depIdx] == 0 {
				queue = append(queue, depIdx)
			}
		}
	}

	if len(result) < len(g.Nodes) {
		var remaining []int
		for i, v := range visited {
			if !v {
				remaining = append(remaining, i)
			}
		}
		sort.SliceStable(remaining, func(i, j int) bool {
			return byID[g.ID(remaining[i])].Priority > byID[g.ID(remaining[j])].Priority
		})
		for _, idx := range remaining {
			result = append(result, g.ID(idx))
		}
	}

	return result
}

// filterAndOrder narrows candidates to Step 3's eligible set (flexible, or
// non-mandatory with no default time) and orders them per depOrder.
func filterAndOrder(candidates []taskCandidate, depOrder []string) []taskCandidate {
	byID := make(map[string]taskCandidate, len(candidates))
	eligible := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		byID[c.TemplateID] = c
		if c.SchedulingType == models.SchedulingFlexible || (!c.IsMandatory && c.DefaultTime == "") {
			eligible[c.TemplateID] = true
		}
	}
	var out []taskCandidate
	for _, id := range depOrder {
		if eligible[id] {
			out = append(out, byID[id])
		}
	}
	return out
}
