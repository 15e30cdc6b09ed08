package tasks

import (
	"testing"

	"github.com/dayplan/dayplan/internal/models"
)

func TestTaskEditCmd_UpdatesFields(t *testing.T) {
	ctx, cleanup := setupTestTaskDB(t)
	defer cleanup()

	if err := (&TaskAddCmd{Name: "Old Name", Duration: 20, Priority: 3}).Run(ctx); err != nil {
		t.Fatalf("TaskAddCmd.Run() error = %v", err)
	}
	templates, _ := ctx.Store.GetTemplates(ctx.UserID)
	id := templates[0].ID

	newName := "New Name"
	newDuration := 40
	editCmd := &TaskEditCmd{ID: id, Name: &newName, Duration: &newDuration}
	if err := editCmd.Run(ctx); err != nil {
		t.Fatalf("TaskEditCmd.Run() error = %v", err)
	}

	updated, err := ctx.Store.GetTemplate(ctx.UserID, id)
	if err != nil {
		t.Fatalf("GetTemplate() error = %v", err)
	}
	if updated.TaskName != "New Name" || updated.DurationMinutes != 40 {
		t.Errorf("unexpected template after edit: %+v", updated)
	}
}

func TestTaskEditCmd_RejectsInvalidPriority(t *testing.T) {
	ctx, cleanup := setupTestTaskDB(t)
	defer cleanup()

	if err := (&TaskAddCmd{Name: "Task", Duration: 10, Priority: 3}).Run(ctx); err != nil {
		t.Fatalf("TaskAddCmd.Run() error = %v", err)
	}
	templates, _ := ctx.Store.GetTemplates(ctx.UserID)
	id := templates[0].ID

	bad := 9
	editCmd := &TaskEditCmd{ID: id, Priority: &bad}
	if err := editCmd.Run(ctx); err == nil {
		t.Error("expected an error for an out-of-range priority")
	}
}

func TestTaskEditCmd_SwitchesToFixedSchedule(t *testing.T) {
	ctx, cleanup := setupTestTaskDB(t)
	defer cleanup()

	if err := (&TaskAddCmd{Name: "Task", Duration: 10, Priority: 3, Window: "anytime"}).Run(ctx); err != nil {
		t.Fatalf("TaskAddCmd.Run() error = %v", err)
	}
	templates, _ := ctx.Store.GetTemplates(ctx.UserID)
	id := templates[0].ID

	fixed := true
	defaultTime := "08:30"
	editCmd := &TaskEditCmd{ID: id, Fixed: &fixed, DefaultTime: &defaultTime}
	if err := editCmd.Run(ctx); err != nil {
		t.Fatalf("TaskEditCmd.Run() error = %v", err)
	}

	updated, err := ctx.Store.GetTemplate(ctx.UserID, id)
	if err != nil {
		t.Fatalf("GetTemplate() error = %v", err)
	}
	if updated.SchedulingType != models.SchedulingFixed || updated.DefaultTime != "08:30" {
		t.Errorf("unexpected template after switching to fixed: %+v", updated)
	}
}

func TestTaskEditCmd_UnknownIDFails(t *testing.T) {
	ctx, cleanup := setupTestTaskDB(t)
	defer cleanup()

	editCmd := &TaskEditCmd{ID: "does-not-exist"}
	if err := editCmd.Run(ctx); err == nil {
		t.Error("expected an error editing a nonexistent template")
	}
}
