package tasks

import (
	"fmt"

	"github.com/dayplan/dayplan/internal/cli"
	"github.com/dayplan/dayplan/internal/models"
)

// TaskListCmd lists templates, with active-only and show-ids filter flags,
// showing each template's scheduling type and recurrence summary.
type TaskListCmd struct {
	ActiveOnly bool `help:"Show only active templates."`
	ShowIDs    bool `help:"Show template IDs." name:"show-ids"`
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	templates, err := ctx.Store.GetTemplates(ctx.UserID)
	if err != nil {
		return fmt.Errorf("failed to get templates: %w", err)
	}
	if len(templates) == 0 {
		fmt.Println("No templates found")
		return nil
	}

	fmt.Println("Templates:")
	for _, t := range templates {
		if c.ActiveOnly && !t.IsActive {
			continue
		}

		status := "active"
		if !t.IsActive {
			status = "inactive"
		}

		schedule := "flexible/" + string(t.TimeWindow)
		if t.SchedulingType == models.SchedulingFixed {
			schedule = "fixed@" + t.DefaultTime
		}

		recurrence := "daily"
		if t.Recurrence != nil {
			recurrence = cli.FormatRecurrence(t.Recurrence)
		}

		idStr := ""
		if c.ShowIDs {
			idStr = fmt.Sprintf(" [%s]", t.ID)
		}

		fmt.Printf("  - %s%s (%s, %dm, p%d, %s, %s)\n",
			t.TaskName, idStr, status, t.DurationMinutes, t.Priority, schedule, recurrence)
	}

	return nil
}
