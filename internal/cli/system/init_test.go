package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dayplan/dayplan/internal/cli"
	"github.com/dayplan/dayplan/internal/models"
	"github.com/dayplan/dayplan/internal/scheduler"
	"github.com/dayplan/dayplan/internal/storage/sqlite"
)

func setupTestInitDB(t *testing.T) (*cli.Context, string, func()) {
	t.Helper()
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	s := sqlite.New(dbPath)

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

	return ctx, dbPath, cleanup
}

func createTestTemplate(id, name string) models.Template {
	return models.Template{
		ID:                 id,
		TaskName:           name,
		Priority:           3,
		IsActive:           true,
		DurationMinutes:    30,
		MinDurationMinutes: 15,
		SchedulingType:     models.SchedulingFlexible,
		TimeWindow:         models.WindowAnytime,
	}
}

func TestInitCmd_CreatesStore(t *testing.T) {
	ctx, dbPath, cleanup := setupTestInitDB(t)
	defer cleanup()

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected store file to exist: %v", err)
	}
}

func TestInitCmd_DoubleInitFails(t *testing.T) {
	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if err := cmd.Run(ctx); err == nil {
		t.Fatal("expected second Init() to fail without --force")
	}
}

func TestInitCmd_ForceResetsStore(t *testing.T) {
	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if err := ctx.Store.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := ctx.Store.SaveTemplate(ctx.UserID, createTestTemplate("t1", "Test")); err != nil {
		t.Fatalf("SaveTemplate() error = %v", err)
	}

	force := &InitCmd{Force: true}
	if err := force.Run(ctx); err != nil {
		t.Fatalf("forced Run() error = %v", err)
	}
	if err := ctx.Store.Load(); err != nil {
		t.Fatalf("Load() after reset error = %v", err)
	}
	templates, err := ctx.Store.GetTemplates(ctx.UserID)
	if err != nil {
		t.Fatalf("GetTemplates() error = %v", err)
	}
	if len(templates) != 0 {
		t.Errorf("expected a fresh store after --force, got %d templates", len(templates))
	}
}

func TestInitCmd_MigratesFromSource(t *testing.T) {
	srcDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "source.db")
	src := sqlite.New(srcPath)
	if err := src.Init(); err != nil {
		t.Fatalf("init source: %v", err)
	}
	if err := src.SaveTemplate("local", createTestTemplate("t1", "Source Task")); err != nil {
		t.Fatalf("seed source: %v", err)
	}
	src.Close()

	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()

	cmd := &InitCmd{Source: srcPath}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := ctx.Store.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	templates, err := ctx.Store.GetTemplates(ctx.UserID)
	if err != nil {
		t.Fatalf("GetTemplates() error = %v", err)
	}
	if len(templates) != 1 || templates[0].ID != "t1" {
		t.Errorf("expected migrated template t1, got %+v", templates)
	}
}
