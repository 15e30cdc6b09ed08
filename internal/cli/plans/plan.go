// Package plans holds the `plan` command: generate and accept a day's
// schedule. PlanResult is a single snapshot per date, not an append-only
// revision history, backed by the dependency/recurrence-aware template
// instantiation the planner core needs.
package plans

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dayplan/dayplan/internal/cli"
	"github.com/dayplan/dayplan/internal/models"
	"github.com/dayplan/dayplan/internal/recurrence"
)

type PlanCmd struct {
	Date string `arg:"" help:"Date to plan (YYYY-MM-DD or 'today')." default:"today"`
}

func (c *PlanCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	var planDate time.Time
	if c.Date == "today" {
		planDate = time.Now()
	} else {
		var err error
		planDate, err = time.Parse("2006-01-02", c.Date)
		if err != nil {
			return fmt.Errorf("invalid date format, use YYYY-MM-DD or 'today': %w", err)
		}
	}
	dateStr := planDate.Format("2006-01-02")

	settings, err := ctx.Store.GetSettings(ctx.UserID)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	sleep := models.SleepSchedule{
		WakeTime:    settings.DefaultWakeTime,
		SleepTime:   settings.DefaultSleepTime,
		DurationMin: settings.DesiredSleepDurationMin,
	}
	if existing, found, err := ctx.Store.GetDailySchedule(ctx.UserID, dateStr); err == nil && found {
		sleep = *existing
	}

	templates, err := ctx.Store.GetTemplates(ctx.UserID)
	if err != nil {
		return fmt.Errorf("failed to get templates: %w", err)
	}

	instances, err := instancesDueOn(ctx, templates, dateStr, planDate)
	if err != nil {
		return err
	}

	result, planErr := ctx.Planner.Plan(templates, instances, sleep, planDate)
	if planErr != nil {
		return fmt.Errorf("planning failed: %s", planErr.Message)
	}

	fmt.Printf("Proposed plan for %s:\n\n", dateStr)
	if len(result.Schedule) == 0 {
		fmt.Println("  No tasks scheduled for this day")
	} else {
		for _, st := range result.Schedule {
			marker := ""
			if st.HasConflicts {
				marker = "  ⚠"
			}
			if st.ScheduledTime == "" {
				fmt.Printf("(unplaced)  %s%s\n", st.TaskName, marker)
				continue
			}
			fmt.Printf("%s  %-30s (%3dm)%s\n", st.ScheduledTime, st.TaskName, st.DurationMinutes, marker)
		}
	}

	if len(result.Suggestions) > 0 {
		fmt.Println("\nSuggestions:")
		for _, s := range result.Suggestions {
			fmt.Printf("  - %s\n", s)
		}
	}

	fmt.Printf("\nScheduled %d of %d tasks.\n", result.ScheduledTasks, result.TotalTasks)
	fmt.Print("\nAccept this plan? [y/N]: ")

	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	response = strings.ToLower(strings.TrimSpace(response))

	if response == "y" || response == "yes" {
		if err := ctx.Store.SavePlan(ctx.UserID, dateStr, *result); err != nil {
			return err
		}
		fmt.Println("Plan accepted and saved!")
	} else {
		fmt.Println("Plan discarded. You can modify templates and regenerate.")
	}

	return nil
}

// instancesDueOn materializes one Instance per template whose recurrence
// rule fires on date, reusing any instance already persisted for that date
// (so in-progress edits like a postponed time or completed status survive
// re-planning) and snapshotting the rest fresh from the template.
func instancesDueOn(ctx *cli.Context, templates []models.Template, dateStr string, date time.Time) ([]models.Instance, error) {
	existing, err := ctx.Store.GetInstancesForDate(ctx.UserID, dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to get instances for %s: %w", dateStr, err)
	}
	byTemplate := make(map[string]models.Instance, len(existing))
	for _, inst := range existing {
		byTemplate[inst.TemplateID] = inst
	}

	engine := recurrence.New().WithCountOccurrences(func(templateID string, upTo time.Time) (int, error) {
		return ctx.Store.CountOccurrences(templateID, upTo.Format("2006-01-02"))
	})

	var result []models.Instance
	for _, t := range templates {
		if !t.IsActive {
			continue
		}
		if !engine.ShouldFireOn(t, date) {
			continue
		}
		if inst, ok := byTemplate[t.ID]; ok {
			result = append(result, inst)
			continue
		}
		result = append(result, models.Instance{
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
	return result, nil
}
