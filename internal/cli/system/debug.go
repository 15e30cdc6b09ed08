package system

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dayplan/dayplan/internal/cli"
)

// DebugCmd groups low-level store inspection commands, for scripting and
// bug reports: dump-as-JSON views of templates, instances, plans, and
// settings.
type DebugCmd struct {
	DBPath       *DebugDBPathCmd       `cmd:"" help:"Show the store's backing path or connection string."`
	DumpPlan     *DebugDumpPlanCmd     `cmd:"" help:"Dump a day's plan as JSON."`
	DumpTemplate *DebugDumpTemplateCmd `cmd:"" help:"Dump template data as JSON."`
	DumpInstance *DebugDumpInstanceCmd `cmd:"" help:"Dump a day's instances as JSON."`
	DumpSettings *DebugDumpSettingsCmd `cmd:"" help:"Dump settings data as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	output := map[string]string{
		"path": ctx.ConfigPath,
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDumpPlanCmd struct {
	Date string `arg:"" help:"Date of the plan to dump (YYYY-MM-DD or 'today')."`
}

func (cmd *DebugDumpPlanCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}

	date := cmd.Date
	if date == "today" {
		date = getCurrentDate()
	}
	if !isValidDate(date) {
		return fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD or 'today')", date)
	}

	plan, err := ctx.Store.GetPlan(ctx.UserID, date)
	if err != nil {
		return fmt.Errorf("failed to get plan for %s: %w", date, err)
	}

	jsonBytes, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDumpTemplateCmd struct {
	ID string `arg:"" optional:"" help:"ID of a single template to dump. Omit to dump all templates."`
}

func (cmd *DebugDumpTemplateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}

	if cmd.ID != "" {
		t, err := ctx.Store.GetTemplate(ctx.UserID, cmd.ID)
		if err != nil {
			return fmt.Errorf("template not found: %s: %w", cmd.ID, err)
		}
		return dumpJSON(t)
	}

	templates, err := ctx.Store.GetTemplates(ctx.UserID)
	if err != nil {
		return fmt.Errorf("failed to get templates: %w", err)
	}
	return dumpJSON(templates)
}

type DebugDumpInstanceCmd struct {
	Date string `arg:"" help:"Date of the instances to dump (YYYY-MM-DD or 'today')."`
}

func (cmd *DebugDumpInstanceCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}

	date := cmd.Date
	if date == "today" {
		date = getCurrentDate()
	}
	if !isValidDate(date) {
		return fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD or 'today')", date)
	}

	instances, err := ctx.Store.GetInstancesForDate(ctx.UserID, date)
	if err != nil {
		return fmt.Errorf("failed to get instances for %s: %w", date, err)
	}
	return dumpJSON(instances)
}

type DebugDumpSettingsCmd struct{}

func (cmd *DebugDumpSettingsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}

	settings, err := ctx.Store.GetSettings(ctx.UserID)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return dumpJSON(settings)
}

func dumpJSON(v interface{}) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

func getCurrentDate() string {
	return time.Now().Format("2006-01-02")
}

func isValidDate(dateStr string) bool {
	_, err := time.Parse("2006-01-02", dateStr)
	return err == nil
}
