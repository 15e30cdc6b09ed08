package tasks

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dayplan/dayplan/internal/cli"
	"github.com/dayplan/dayplan/internal/constants"
	"github.com/dayplan/dayplan/internal/models"
	"github.com/dayplan/dayplan/internal/validation"
)

// TaskAddCmd creates a new template: a flag-driven construct, validate,
// then persist flow covering fixed-vs-flexible scheduling, a dependency
// list, and a RecurrenceRule.
type TaskAddCmd struct {
	Name        string `arg:"" help:"Template task name."`
	Duration    int    `short:"d" help:"Duration in minutes." required:""`
	MinDuration int    `short:"m" help:"Minimum acceptable duration in minutes (crunch-time floor)."`
	Priority    int    `short:"p" help:"Priority (1-5, higher is placed first)." default:"3"`
	Mandatory   bool   `help:"Mark the task mandatory; the plan fails feasibility if the total mandatory duration exceeds the waking hours."`

	Fixed      bool   `help:"Pin this task to a specific clock time instead of letting the planner place it."`
	DefaultTime string `short:"t" help:"Clock time (HH:MM) this task anchors to; required with --fixed."`
	Window      string `short:"w" help:"Time-of-day window for a flexible task (morning|afternoon|evening|anytime)." default:"anytime"`

	DependsOn string `help:"Comma-separated template IDs this task depends on."`

	Frequency  string `help:"Recurrence frequency (daily|weekly|monthly|yearly); custom patterns are not accepted here. Omit for 'every day'."`
	Interval   int    `help:"Recurrence interval." default:"1"`
	Weekdays   string `help:"Comma-separated weekdays for weekly recurrence."`
	DayOfMonth int    `help:"Day of month for monthly/yearly recurrence (-1 for last day)."`
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	t := models.Template{
		ID:                 uuid.New().String(),
		TaskName:           c.Name,
		Priority:           c.Priority,
		IsActive:           true,
		IsMandatory:        c.Mandatory,
		DurationMinutes:    c.Duration,
		MinDurationMinutes: c.MinDuration,
	}
	if t.MinDurationMinutes == 0 {
		t.MinDurationMinutes = t.DurationMinutes
	}

	if c.Fixed {
		t.SchedulingType = models.SchedulingFixed
		if c.DefaultTime == "" {
			return fmt.Errorf("--default-time is required for a fixed task")
		}
		if _, err := time.Parse(constants.TimeFormat, c.DefaultTime); err != nil {
			return fmt.Errorf("invalid default time format (expected HH:MM): %w", err)
		}
		t.DefaultTime = c.DefaultTime
	} else {
		t.SchedulingType = models.SchedulingFlexible
		t.TimeWindow = models.TimeWindowName(c.Window)
	}

	if c.DependsOn != "" {
		t.DependsOn = splitCommaList(c.DependsOn)
	}

	if c.Frequency != "" {
		rule, err := parseRecurrenceFlags(c.Frequency, c.Interval, c.Weekdays, c.DayOfMonth)
		if err != nil {
			return err
		}
		t.Recurrence = rule
	}

	existing, err := ctx.Store.GetTemplates(ctx.UserID)
	if err != nil {
		return fmt.Errorf("failed to load existing templates: %w", err)
	}
	allIDs := make(map[string]bool, len(existing)+1)
	for _, e := range existing {
		allIDs[e.ID] = true
	}
	allIDs[t.ID] = true
	if result := validation.ValidateTemplate(t, allIDs); !result.OK() {
		return fmt.Errorf("invalid template:\n%s", result.Error())
	}

	if err := ctx.Store.SaveTemplate(ctx.UserID, t); err != nil {
		return err
	}

	fmt.Printf("Added template: %s (ID: %s)\n", c.Name, t.ID)
	return nil
}

func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseRecurrenceFlags(frequency string, interval int, weekdays string, dayOfMonth int) (*models.RecurrenceRule, error) {
	rule := &models.RecurrenceRule{Interval: interval}
	if rule.Interval < 1 {
		rule.Interval = 1
	}

	switch frequency {
	case "daily":
		rule.Frequency = models.FrequencyDaily
	case "weekly":
		rule.Frequency = models.FrequencyWeekly
		if weekdays == "" {
			return nil, fmt.Errorf("weekdays must be specified for weekly recurrence")
		}
		days, err := cli.ParseWeekdays(weekdays)
		if err != nil {
			return nil, err
		}
		rule.DaysOfWeek = days
	case "monthly":
		rule.Frequency = models.FrequencyMonthly
		rule.DayOfMonth = dayOfMonth
	case "yearly":
		rule.Frequency = models.FrequencyYearly
		rule.DayOfMonth = dayOfMonth
	default:
		return nil, fmt.Errorf("invalid recurrence frequency: %s", frequency)
	}

	return rule, nil
}
