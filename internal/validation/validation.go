// Package validation enforces the planner-relevant invariants on templates
// and instances before the scheduler runs.
package validation

import (
	"fmt"
	"time"

	"github.com/dayplan/dayplan/internal/depgraph"
	"github.com/dayplan/dayplan/internal/models"
	"github.com/dayplan/dayplan/internal/recurrence"
	"github.com/dayplan/dayplan/internal/timeutil"
)

// Kind tags one reason a Template or Instance failed validation.
type Kind string

const (
	KindEmptyName          Kind = "empty_task_name"
	KindNameTooLong        Kind = "task_name_too_long"
	KindDescriptionTooLong Kind = "description_too_long"
	KindDurationOutOfRange Kind = "duration_out_of_range"
	KindMinDurationExceeds Kind = "min_duration_exceeds_duration"
	KindPriorityOutOfRange Kind = "priority_out_of_range"
	KindInvalidDefaultTime Kind = "invalid_default_time"
	KindUnrecognisedWindow Kind = "unrecognised_time_window"
	KindEndBeforeStart     Kind = "end_time_before_start_time"
	KindSelfDependency     Kind = "self_dependency"
	KindMissingDependency  Kind = "missing_dependency"
	KindCircularDependency Kind = "circular_dependency"
	KindInvalidRecurrence  Kind = "invalid_recurrence_rule"
	KindMissingTemplateID  Kind = "missing_template_id"
	KindInvalidDate        Kind = "invalid_date"
	KindInvalidStatus      Kind = "invalid_status"
	KindNegativeActualDur  Kind = "negative_actual_duration"
	KindInvalidCompletedAt Kind = "invalid_completed_at"
)

// Issue is one validation failure, carrying enough context to report to a
// user and, where relevant, to the conflict-rendering layer.
type Issue struct {
	Kind    Kind
	Field   string
	Subject string // the template/instance id or name the issue concerns
	Message string
}

// Result aggregates every Issue found across one validation call.
type Result struct {
	Issues []Issue
}

// OK reports whether no issues were found.
func (r Result) OK() bool { return len(r.Issues) == 0 }

// Error renders Result as a multi-line human-readable report, mirroring the
// teacher's ValidationResult.FormatReport.
func (r Result) Error() string {
	if r.OK() {
		return "no validation issues"
	}
	out := "validation failed:\n"
	for _, issue := range r.Issues {
		out += fmt.Sprintf("- %s: %s\n", issue.Subject, issue.Message)
	}
	return out
}

func add(r *Result, subject string, kind Kind, field, message string) {
	r.Issues = append(r.Issues, Issue{Kind: kind, Field: field, Subject: subject, Message: message})
}

// ValidateTemplate enforces the template invariants against a single
// template. allIDs is the full set of template ids known to the
// caller, used to check dependency existence; pass nil to skip that check
// (e.g. validating a template in isolation before it is persisted).
func ValidateTemplate(t models.Template, allIDs map[string]bool) Result {
	var r Result
	subject := t.TaskName
	if subject == "" {
		subject = t.ID
	}

	if t.TaskName == "" {
		add(&r, subject, KindEmptyName, "taskName", "task name must not be empty")
	} else if len(t.TaskName) > 100 {
		add(&r, subject, KindNameTooLong, "taskName", "task name must be <= 100 characters")
	}
	if len(t.Description) > 500 {
		add(&r, subject, KindDescriptionTooLong, "description", "description must be <= 500 characters")
	}

	if t.DurationMinutes < 1 || t.DurationMinutes > 720 {
		add(&r, subject, KindDurationOutOfRange, "durationMinutes", "duration must be between 1 and 720 minutes")
	}
	if t.MinDurationMinutes > t.DurationMinutes {
		add(&r, subject, KindMinDurationExceeds, "minDurationMinutes", "minDuration must be <= duration")
	}
	if t.Priority < 1 || t.Priority > 5 {
		add(&r, subject, KindPriorityOutOfRange, "priority", "priority must be between 1 and 5")
	}

	switch t.SchedulingType {
	case models.SchedulingFixed:
		if _, err := timeutil.ParseHHMM(t.DefaultTime); err != nil {
			add(&r, subject, KindInvalidDefaultTime, "defaultTime", "fixed tasks require a valid HH:MM defaultTime")
		}
	case models.SchedulingFlexible:
		switch t.TimeWindow {
		case models.WindowMorning, models.WindowAfternoon, models.WindowEvening, models.WindowAnytime:
		default:
			add(&r, subject, KindUnrecognisedWindow, "timeWindow", "flexible tasks require a recognised timeWindow")
		}
	default:
		add(&r, subject, KindUnrecognisedWindow, "schedulingType", "schedulingType must be fixed or flexible")
	}

	seen := make(map[string]bool, len(t.DependsOn))
	for _, depID := range t.DependsOn {
		if seen[depID] {
			continue // duplicates collapsed silently
		}
		seen[depID] = true
		if depID == t.ID {
			add(&r, subject, KindSelfDependency, "dependsOn", "a template cannot depend on itself")
			continue
		}
		if allIDs != nil && !allIDs[depID] {
			add(&r, subject, KindMissingDependency, "dependsOn", fmt.Sprintf("dependency %q does not exist", depID))
		}
	}

	if ok, errs := recurrence.ValidateRule(t.Recurrence); !ok {
		for _, e := range errs {
			add(&r, subject, KindInvalidRecurrence, e.Field, e.Message)
		}
	}

	return r
}

// ValidateTemplateSet validates every template in ts, plus the circular
// dependency check that requires the whole set, using the dependency
// resolver's cycle scan.
func ValidateTemplateSet(ts []models.Template) Result {
	var r Result
	allIDs := make(map[string]bool, len(ts))
	for _, t := range ts {
		allIDs[t.ID] = true
	}
	for _, t := range ts {
		single := ValidateTemplate(t, allIDs)
		r.Issues = append(r.Issues, single.Issues...)
	}

	entries := make([]depgraph.Entry, len(ts))
	for i, t := range ts {
		entries[i] = depgraph.Entry{ID: t.ID, DependsOn: t.DependsOn}
	}
	g := depgraph.BuildGraph(entries)
	for _, cycle := range depgraph.DetectCycles(g) {
		add(&r, cycle[0], KindCircularDependency, "dependsOn", fmt.Sprintf("circular dependency: %v", cycle))
	}

	return r
}

// ValidateInstance enforces the instance invariants.
func ValidateInstance(inst models.Instance) Result {
	var r Result
	subject := inst.TaskName
	if subject == "" {
		subject = inst.ID
	}

	if inst.TemplateID == "" {
		add(&r, subject, KindMissingTemplateID, "templateId", "templateId is required")
	}
	if _, err := timeutil.ParseDate(inst.Date); err != nil {
		add(&r, subject, KindInvalidDate, "date", "date must be valid YYYY-MM-DD")
	}

	switch inst.Status {
	case models.StatusPending, models.StatusCompleted, models.StatusSkipped, models.StatusPostponed, models.StatusIncomplete:
	default:
		add(&r, subject, KindInvalidStatus, "status", fmt.Sprintf("unrecognised status %q", inst.Status))
	}

	if inst.ActualDuration != nil && *inst.ActualDuration < 0 {
		add(&r, subject, KindNegativeActualDur, "actualDuration", "actualDuration must be >= 0")
	}

	if inst.Status == models.StatusCompleted {
		if inst.CompletedAt == "" {
			add(&r, subject, KindInvalidCompletedAt, "completedAt", "completedAt is required when status is completed")
		} else if _, err := time.Parse(time.RFC3339, inst.CompletedAt); err != nil {
			add(&r, subject, KindInvalidCompletedAt, "completedAt", "completedAt must be a valid RFC3339 timestamp")
		}
	}

	return r
}
