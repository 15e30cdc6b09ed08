package system

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dayplan/dayplan/internal/cli"
	"github.com/dayplan/dayplan/internal/models"
	"github.com/dayplan/dayplan/internal/scheduler"
	"github.com/dayplan/dayplan/internal/storage/sqlite"
)

func setupTestDebugDB(t *testing.T) (*cli.Context, func()) {
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

func TestDebugDBPathCmd(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	cmd := &DebugDBPathCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("debug db-path command failed: %v", err)
	}
}

func TestDebugDumpTemplateCmd_Success(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	tpl := createTestTemplate("test-template-id", "Test Template")
	if err := ctx.Store.SaveTemplate(ctx.UserID, tpl); err != nil {
		t.Fatalf("failed to save test template: %v", err)
	}

	cmd := &DebugDumpTemplateCmd{ID: "test-template-id"}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("debug dump-template command failed: %v", err)
	}
}

func TestDebugDumpTemplateCmd_NotFound(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	cmd := &DebugDumpTemplateCmd{ID: "nonexistent-id"}
	err := cmd.Run(ctx)
	if err == nil {
		t.Error("debug dump-template should fail for non-existent template")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected 'not found' error, got: %v", err)
	}
}

func TestDebugDumpTemplateCmd_AllTemplates(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	if err := ctx.Store.SaveTemplate(ctx.UserID, createTestTemplate("t1", "First")); err != nil {
		t.Fatalf("save template: %v", err)
	}
	if err := ctx.Store.SaveTemplate(ctx.UserID, createTestTemplate("t2", "Second")); err != nil {
		t.Fatalf("save template: %v", err)
	}

	cmd := &DebugDumpTemplateCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("debug dump-template (all) command failed: %v", err)
	}
}

func TestDebugDumpPlanCmd_NotFound(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	cmd := &DebugDumpPlanCmd{Date: "2023-01-01"}
	if err := cmd.Run(ctx); err == nil {
		t.Error("debug dump-plan should fail for non-existent plan")
	}
}

func TestDebugDumpPlanCmd_InvalidDate(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	cmd := &DebugDumpPlanCmd{Date: "invalid-date"}
	err := cmd.Run(ctx)
	if err == nil {
		t.Error("debug dump-plan should fail for invalid date")
	}
	if !strings.Contains(err.Error(), "invalid date") {
		t.Errorf("expected 'invalid date' error, got: %v", err)
	}
}

func TestDebugDumpPlanCmd_Success(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	plan := models.PlanResult{Success: true, TotalTasks: 0}
	if err := ctx.Store.SavePlan(ctx.UserID, "2023-01-01", plan); err != nil {
		t.Fatalf("failed to save test plan: %v", err)
	}

	cmd := &DebugDumpPlanCmd{Date: "2023-01-01"}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("debug dump-plan command failed: %v", err)
	}
}

func TestDebugDumpPlanCmd_TodayAlias(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	today := getCurrentDate()
	plan := models.PlanResult{Success: true, TotalTasks: 0}
	if err := ctx.Store.SavePlan(ctx.UserID, today, plan); err != nil {
		t.Fatalf("failed to save test plan: %v", err)
	}

	cmd := &DebugDumpPlanCmd{Date: "today"}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("debug dump-plan with 'today' failed: %v", err)
	}
}

func TestDebugDumpInstanceCmd_Success(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	inst := models.Instance{
		ID:         "inst-1",
		TemplateID: "t1",
		Date:       "2023-01-01",
		Status:     models.StatusPending,
	}
	if err := ctx.Store.SaveInstance(ctx.UserID, inst); err != nil {
		t.Fatalf("failed to save test instance: %v", err)
	}

	cmd := &DebugDumpInstanceCmd{Date: "2023-01-01"}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("debug dump-instance command failed: %v", err)
	}
}

func TestDebugDumpInstanceCmd_InvalidDate(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	cmd := &DebugDumpInstanceCmd{Date: "invalid-date"}
	err := cmd.Run(ctx)
	if err == nil {
		t.Error("debug dump-instance should fail for invalid date")
	}
	if !strings.Contains(err.Error(), "invalid date") {
		t.Errorf("expected 'invalid date' error, got: %v", err)
	}
}

func TestGetCurrentDate(t *testing.T) {
	date := getCurrentDate()
	if len(date) != 10 {
		t.Errorf("expected date format YYYY-MM-DD, got: %s", date)
	}
	if !isValidDate(date) {
		t.Errorf("getCurrentDate returned invalid date: %s", date)
	}
}

func TestIsValidDate(t *testing.T) {
	tests := []struct {
		date  string
		valid bool
	}{
		{"2023-01-01", true},
		{"2023-12-31", true},
		{"2023-13-01", false},
		{"2023-01-32", false},
		{"invalid", false},
		{"2023/01/01", false},
		{"01-01-2023", false},
	}

	for _, tt := range tests {
		result := isValidDate(tt.date)
		if result != tt.valid {
			t.Errorf("isValidDate(%s) = %v, want %v", tt.date, result, tt.valid)
		}
	}
}

func TestDebugDumpTemplateCmd_JSONOutput(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	tpl := createTestTemplate("json-test-id", "JSON Test")
	tpl.Priority = 2
	if err := ctx.Store.SaveTemplate(ctx.UserID, tpl); err != nil {
		t.Fatalf("failed to save test template: %v", err)
	}

	retrieved, err := ctx.Store.GetTemplate(ctx.UserID, "json-test-id")
	if err != nil {
		t.Fatalf("failed to retrieve template: %v", err)
	}

	jsonBytes, err := json.MarshalIndent(retrieved, "", "  ")
	if err != nil {
		t.Errorf("failed to marshal template to JSON: %v", err)
	}

	jsonStr := string(jsonBytes)
	expectedFields := []string{"ID", "TaskName", "DurationMinutes", "Priority"}
	for _, field := range expectedFields {
		if !strings.Contains(jsonStr, field) {
			t.Errorf("JSON output missing field: %s", field)
		}
	}
}

func TestDebugDumpSettingsCmd_Success(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	settings := models.Settings{DayStart: "09:00", DayEnd: "17:00"}
	if err := ctx.Store.SaveSettings(ctx.UserID, settings); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}

	cmd := &DebugDumpSettingsCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("debug dump-settings command failed: %v", err)
	}
}

func TestDebugDumpSettingsCmd_JSONOutput(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	settings := models.Settings{DayStart: "08:30", DayEnd: "18:30"}
	if err := ctx.Store.SaveSettings(ctx.UserID, settings); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}

	retrieved, err := ctx.Store.GetSettings(ctx.UserID)
	if err != nil {
		t.Fatalf("failed to retrieve settings: %v", err)
	}

	jsonBytes, err := json.MarshalIndent(retrieved, "", "  ")
	if err != nil {
		t.Errorf("failed to marshal settings to JSON: %v", err)
	}

	jsonStr := string(jsonBytes)
	expectedFields := []string{"DayStart", "DayEnd"}
	for _, field := range expectedFields {
		if !strings.Contains(jsonStr, field) {
			t.Errorf("JSON output missing field: %s", field)
		}
	}
}
