package tasks

import (
	"fmt"
	"time"

	"github.com/dayplan/dayplan/internal/cli"
	"github.com/dayplan/dayplan/internal/constants"
	"github.com/dayplan/dayplan/internal/models"
	"github.com/dayplan/dayplan/internal/validation"
)

type TaskEditCmd struct {
	ID          string  `arg:"" help:"Template ID."`
	Name        *string `help:"New task name."`
	Duration    *int    `short:"d" help:"New duration in minutes."`
	MinDuration *int    `short:"m" help:"New minimum acceptable duration in minutes."`
	Priority    *int    `short:"p" help:"New priority (1-5)."`
	Active      *bool   `help:"Set active status."`
	Mandatory   *bool   `help:"Set mandatory status."`

	Fixed       *bool   `help:"Switch to a fixed clock-time anchor."`
	Flexible    *bool   `help:"Switch to a flexible, window-placed schedule."`
	DefaultTime *string `short:"t" help:"New clock time (HH:MM) for a fixed task."`
	Window      *string `short:"w" help:"New time-of-day window for a flexible task."`

	DependsOn *string `help:"New comma-separated template IDs this task depends on (replaces the existing list)."`

	Frequency  *string `help:"New recurrence frequency (daily|weekly|monthly|yearly); custom patterns are not accepted here."`
	Interval   *int    `help:"New recurrence interval."`
	Weekdays   *string `help:"New comma-separated weekdays for weekly recurrence."`
	DayOfMonth *int    `help:"New day of month for monthly/yearly recurrence."`
}

func (c *TaskEditCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	t, err := ctx.Store.GetTemplate(ctx.UserID, c.ID)
	if err != nil {
		return fmt.Errorf("failed to find template: %w", err)
	}

	if c.Name != nil {
		t.TaskName = *c.Name
	}
	if c.Duration != nil {
		if *c.Duration <= 0 {
			return fmt.Errorf("duration must be positive")
		}
		t.DurationMinutes = *c.Duration
	}
	if c.MinDuration != nil {
		t.MinDurationMinutes = *c.MinDuration
	}
	if c.Priority != nil {
		if *c.Priority < 1 || *c.Priority > 5 {
			return fmt.Errorf("priority must be between 1 and 5")
		}
		t.Priority = *c.Priority
	}
	if c.Active != nil {
		t.IsActive = *c.Active
	}
	if c.Mandatory != nil {
		t.IsMandatory = *c.Mandatory
	}

	if c.Fixed != nil && *c.Fixed {
		t.SchedulingType = models.SchedulingFixed
	}
	if c.Flexible != nil && *c.Flexible {
		t.SchedulingType = models.SchedulingFlexible
	}
	if c.DefaultTime != nil {
		if _, err := time.Parse(constants.TimeFormat, *c.DefaultTime); err != nil {
			return fmt.Errorf("invalid default time: %w", err)
		}
		t.DefaultTime = *c.DefaultTime
	}
	if c.Window != nil {
		t.TimeWindow = models.TimeWindowName(*c.Window)
	}

	if c.DependsOn != nil {
		t.DependsOn = splitCommaList(*c.DependsOn)
	}

	if c.Frequency != nil {
		interval := 1
		if c.Interval != nil {
			interval = *c.Interval
		}
		weekdays := ""
		if c.Weekdays != nil {
			weekdays = *c.Weekdays
		}
		dayOfMonth := 0
		if c.DayOfMonth != nil {
			dayOfMonth = *c.DayOfMonth
		}
		rule, err := parseRecurrenceFlags(*c.Frequency, interval, weekdays, dayOfMonth)
		if err != nil {
			return err
		}
		t.Recurrence = rule
	} else if c.Interval != nil && t.Recurrence != nil {
		t.Recurrence.Interval = *c.Interval
	}

	existing, err := ctx.Store.GetTemplates(ctx.UserID)
	if err != nil {
		return fmt.Errorf("failed to load existing templates: %w", err)
	}
	allIDs := make(map[string]bool, len(existing))
	for _, e := range existing {
		allIDs[e.ID] = true
	}
	if result := validation.ValidateTemplate(t, allIDs); !result.OK() {
		return fmt.Errorf("invalid template:\n%s", result.Error())
	}

	if err := ctx.Store.SaveTemplate(ctx.UserID, t); err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}

	fmt.Printf("Template updated: %s\n", t.TaskName)
	return nil
}
