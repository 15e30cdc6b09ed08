package plans

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dayplan/dayplan/internal/cli"
	"github.com/dayplan/dayplan/internal/models"
	"github.com/dayplan/dayplan/internal/scheduler"
	"github.com/dayplan/dayplan/internal/storage/sqlite"
)

func setupTestPlanDB(t *testing.T) (*cli.Context, func()) {
	t.Helper()
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	s := sqlite.New(dbPath)
	if err := s.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	ctx := &cli.Context{
		Store:      s,
		Planner:    scheduler.New(),
		UserID:     "local",
		ConfigPath: dbPath,
	}

	cleanup := func() {
		if err := s.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	}

	return ctx, cleanup
}

func withStdin(t *testing.T, input string, fn func()) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	origStdin := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = origStdin }()

	go func() {
		_, _ = io.WriteString(w, input)
		w.Close()
	}()

	fn()
}

func dailyTemplate(id, name string, duration int) models.Template {
	return models.Template{
		ID:              id,
		TaskName:        name,
		IsActive:        true,
		DurationMinutes: duration,
		Priority:        3,
		SchedulingType:  models.SchedulingFlexible,
		TimeWindow:      models.WindowAnytime,
	}
}

func TestInstancesDueOn_MaterializesActiveDailyTemplates(t *testing.T) {
	ctx, cleanup := setupTestPlanDB(t)
	defer cleanup()

	tmpl := dailyTemplate("t1", "Write journal", 20)
	if err := ctx.Store.SaveTemplate(ctx.UserID, tmpl); err != nil {
		t.Fatalf("SaveTemplate() error = %v", err)
	}

	date := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	instances, err := instancesDueOn(ctx, []models.Template{tmpl}, "2026-07-31", date)
	if err != nil {
		t.Fatalf("instancesDueOn() error = %v", err)
	}
	if len(instances) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(instances))
	}
	if instances[0].TemplateID != "t1" || instances[0].Status != models.StatusPending {
		t.Errorf("unexpected instance: %+v", instances[0])
	}
}

func TestInstancesDueOn_SkipsInactiveTemplates(t *testing.T) {
	ctx, cleanup := setupTestPlanDB(t)
	defer cleanup()

	tmpl := dailyTemplate("t1", "Dormant task", 10)
	tmpl.IsActive = false

	date := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	instances, err := instancesDueOn(ctx, []models.Template{tmpl}, "2026-07-31", date)
	if err != nil {
		t.Fatalf("instancesDueOn() error = %v", err)
	}
	if len(instances) != 0 {
		t.Fatalf("expected 0 instances for an inactive template, got %d", len(instances))
	}
}

func TestInstancesDueOn_ReusesExistingInstanceForDate(t *testing.T) {
	ctx, cleanup := setupTestPlanDB(t)
	defer cleanup()

	tmpl := dailyTemplate("t1", "Take medication", 5)
	if err := ctx.Store.SaveTemplate(ctx.UserID, tmpl); err != nil {
		t.Fatalf("SaveTemplate() error = %v", err)
	}

	existing := models.Instance{
		ID:              "2026-07-31:t1",
		TemplateID:      "t1",
		Date:            "2026-07-31",
		TaskName:        tmpl.TaskName,
		DurationMinutes: tmpl.DurationMinutes,
		Status:          models.StatusCompleted,
		ScheduledTime:   "08:00",
	}
	if err := ctx.Store.SaveInstance(ctx.UserID, existing); err != nil {
		t.Fatalf("SaveInstance() error = %v", err)
	}

	date := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	instances, err := instancesDueOn(ctx, []models.Template{tmpl}, "2026-07-31", date)
	if err != nil {
		t.Fatalf("instancesDueOn() error = %v", err)
	}
	if len(instances) != 1 || instances[0].Status != models.StatusCompleted {
		t.Fatalf("expected the already-completed instance to be reused, got %+v", instances)
	}
}

func TestPlanCmd_RunDiscardsOnDeclinedPrompt(t *testing.T) {
	ctx, cleanup := setupTestPlanDB(t)
	defer cleanup()

	tmpl := dailyTemplate("t1", "Read", 30)
	if err := ctx.Store.SaveTemplate(ctx.UserID, tmpl); err != nil {
		t.Fatalf("SaveTemplate() error = %v", err)
	}

	cmd := &PlanCmd{Date: "2026-07-31"}
	withStdin(t, "n\n", func() {
		if err := cmd.Run(ctx); err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})

	if _, err := ctx.Store.GetPlan(ctx.UserID, "2026-07-31"); err == nil {
		t.Error("expected no plan to be saved after declining the prompt")
	}
}

func TestPlanCmd_RunSavesOnAcceptedPrompt(t *testing.T) {
	ctx, cleanup := setupTestPlanDB(t)
	defer cleanup()

	tmpl := dailyTemplate("t1", "Read", 30)
	if err := ctx.Store.SaveTemplate(ctx.UserID, tmpl); err != nil {
		t.Fatalf("SaveTemplate() error = %v", err)
	}

	cmd := &PlanCmd{Date: "2026-07-31"}
	withStdin(t, "y\n", func() {
		if err := cmd.Run(ctx); err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})

	if _, err := ctx.Store.GetPlan(ctx.UserID, "2026-07-31"); err != nil {
		t.Errorf("expected a plan to be saved after accepting the prompt: %v", err)
	}
}

func TestPlanCmd_RunRejectsInvalidDate(t *testing.T) {
	ctx, cleanup := setupTestPlanDB(t)
	defer cleanup()

	cmd := &PlanCmd{Date: "not-a-date"}
	if err := cmd.Run(ctx); err == nil {
		t.Error("expected an error for an invalid date argument")
	}
}
