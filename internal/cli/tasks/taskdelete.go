package tasks

import (
	"fmt"

	"github.com/dayplan/dayplan/internal/cli"
)

type TaskDeleteCmd struct {
	ID string `arg:"" help:"Template ID to delete."`
}

func (c *TaskDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	t, err := ctx.Store.GetTemplate(ctx.UserID, c.ID)
	if err != nil {
		return fmt.Errorf("failed to find template with ID %s: %w", c.ID, err)
	}

	if err := ctx.Store.DeleteTemplate(ctx.UserID, c.ID); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	fmt.Printf("Deleted template: %s (ID: %s)\n", t.TaskName, c.ID)
	return nil
}
