package system

import (
	"fmt"
	"time"

	"github.com/dayplan/dayplan/internal/cli"
	"github.com/dayplan/dayplan/internal/depgraph"
	"github.com/dayplan/dayplan/internal/models"
	"github.com/dayplan/dayplan/internal/recurrence"
	"github.com/dayplan/dayplan/internal/validation"
)

// DoctorCmd runs a sequence of health checks over ctx.Store, printing one
// ✓/❌/⚠/⊘ status line per check and skipping dependent checks after a
// prior failure: store reachability, settings/template readability, and
// template/recurrence/dependency-graph checks over the template library.
type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	storeReachable := false

	if err := checkStoreReachable(ctx); err != nil {
		fmt.Printf("❌ Store reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Store reachable: OK\n")
		storeReachable = true
	}

	if storeReachable {
		if err := checkSettingsReadable(ctx); err != nil {
			fmt.Printf("❌ Settings readable: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Settings readable: OK\n")
		}
	} else {
		fmt.Printf("⊘ Settings readable: SKIPPED (store not reachable)\n")
	}

	var templates []models.Template
	templatesReadable := false
	if storeReachable {
		ts, err := checkTemplatesReadable(ctx)
		if err != nil {
			fmt.Printf("❌ Templates readable: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Templates readable: OK (%d templates)\n", len(ts))
			templates = ts
			templatesReadable = true
		}
	} else {
		fmt.Printf("⊘ Templates readable: SKIPPED (store not reachable)\n")
	}

	if templatesReadable {
		if err := checkNoDuplicateTemplateIDs(templates); err != nil {
			fmt.Printf("❌ Template IDs unique: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Template IDs unique: OK\n")
		}

		if err := checkRecurrenceRulesValid(templates); err != nil {
			fmt.Printf("❌ Recurrence rules valid: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Recurrence rules valid: OK\n")
		}

		if err := checkDependencyGraph(templates); err != nil {
			fmt.Printf("⚠ Dependency graph: WARNING\n")
			fmt.Printf("   %v\n", err)
		} else {
			fmt.Printf("✓ Dependency graph: OK\n")
		}
	} else {
		fmt.Printf("⊘ Template IDs unique: SKIPPED (templates not readable)\n")
		fmt.Printf("⊘ Recurrence rules valid: SKIPPED (templates not readable)\n")
		fmt.Printf("⊘ Dependency graph: SKIPPED (templates not readable)\n")
	}

	if err := checkClockTimezone(); err != nil {
		fmt.Printf("❌ Clock/timezone sanity: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone sanity: OK\n")
	}

	fmt.Println()
	if hasError {
		return fmt.Errorf("one or more diagnostics failed")
	}
	fmt.Println("All diagnostics passed.")
	return nil
}

func checkStoreReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}
	return nil
}

func checkSettingsReadable(ctx *cli.Context) error {
	if _, err := ctx.Store.GetSettings(ctx.UserID); err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return nil
}

func checkTemplatesReadable(ctx *cli.Context) ([]models.Template, error) {
	templates, err := ctx.Store.GetTemplates(ctx.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get templates: %w", err)
	}
	return templates, nil
}

func checkNoDuplicateTemplateIDs(templates []models.Template) error {
	seen := make(map[string]bool, len(templates))
	for _, t := range templates {
		if seen[t.ID] {
			return fmt.Errorf("duplicate template ID found: %s", t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

func checkRecurrenceRulesValid(templates []models.Template) error {
	var bad []string
	for _, t := range templates {
		if t.Recurrence == nil {
			continue
		}
		if ok, errs := recurrence.ValidateRule(t.Recurrence); !ok {
			bad = append(bad, fmt.Sprintf("%s: %v", t.ID, errs))
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("%d template(s) with invalid recurrence rules: %v", len(bad), bad)
	}
	return nil
}

// checkDependencyGraph validates the template set's dependency invariants
// (self/missing/circular dependency) and surfaces templates with no
// outgoing or incoming dependency edges, per the dependency-graph-statistics
// supplemented feature.
func checkDependencyGraph(templates []models.Template) error {
	result := validation.ValidateTemplateSet(templates)
	if !result.OK() {
		return fmt.Errorf("template set validation failed:\n%s", result.Error())
	}

	entries := make([]depgraph.Entry, len(templates))
	for i, t := range templates {
		entries[i] = depgraph.Entry{ID: t.ID, DependsOn: t.DependsOn}
	}
	graph := depgraph.BuildGraph(entries)
	stats := depgraph.ComputeStats(graph)

	var isolated []string
	for idx, node := range graph.Nodes {
		if len(node.Dependencies) == 0 && len(node.Dependents) == 0 {
			isolated = append(isolated, graph.ID(idx))
		}
	}

	if len(isolated) > 0 {
		return fmt.Errorf("%d template(s) have no dependency edges in or out: %v (graph: %d nodes, %d edges, density %.2f)",
			len(isolated), isolated, stats.NodeCount, stats.EdgeCount, stats.Density)
	}
	return nil
}

func checkClockTimezone() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if _, offset := now.Zone(); offset == 0 && now.Location() != time.UTC {
		return fmt.Errorf("local timezone reports a zero offset but is not UTC: %s", now.Location())
	}
	return nil
}
