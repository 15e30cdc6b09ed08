package scheduler

import (
	"testing"
	"time"

	"github.com/dayplan/dayplan/internal/models"
	"github.com/dayplan/dayplan/internal/timeutil"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := timeutil.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func defaultSleep() models.SleepSchedule {
	return models.SleepSchedule{WakeTime: "07:00", SleepTime: "23:00", DurationMin: 8 * 60}
}

func findByTemplate(schedule []models.ScheduledTask, templateID string) (models.ScheduledTask, bool) {
	for _, st := range schedule {
		if st.TemplateID == templateID {
			return st, true
		}
	}
	return models.ScheduledTask{}, false
}

// S1 — fixed anchor + dependent flexible.
func TestPlan_AnchorPlusDependentFlexible(t *testing.T) {
	templates := []models.Template{
		{ID: "a", TaskName: "Anchor", Priority: 3, IsMandatory: true, DurationMinutes: 60,
			SchedulingType: models.SchedulingFixed, DefaultTime: "09:00"},
		{ID: "b", TaskName: "Dependent", Priority: 3, DurationMinutes: 30,
			SchedulingType: models.SchedulingFlexible, TimeWindow: models.WindowMorning, DependsOn: []string{"a"}},
	}
	p := New()
	result, planErr := p.Plan(templates, nil, defaultSleep(), mustDate(t, "2024-01-01"))
	if planErr != nil {
		t.Fatalf("unexpected error: %v", planErr)
	}

	a, ok := findByTemplate(result.Schedule, "a")
	if !ok || a.ScheduledTime != "09:00" {
		t.Fatalf("expected anchor a at 09:00, got %+v (found=%v)", a, ok)
	}
	b, ok := findByTemplate(result.Schedule, "b")
	if !ok {
		t.Fatal("expected b to be placed")
	}
	if b.ScheduledTime != "10:15" {
		t.Errorf("ScheduledTime = %s, want 10:15", b.ScheduledTime)
	}
	if a.HasConflicts || b.HasConflicts {
		t.Errorf("expected no conflicts, got a=%v b=%v", a.Conflicts, b.Conflicts)
	}
}

// S2 — cycle: both placed, schedule emitted, Step 5 flags at least one
// dependency_violation.
func TestPlan_CycleStillProducesSchedule(t *testing.T) {
	templates := []models.Template{
		{ID: "x", TaskName: "X", Priority: 3, DurationMinutes: 30,
			SchedulingType: models.SchedulingFlexible, TimeWindow: models.WindowAnytime, DependsOn: []string{"y"}},
		{ID: "y", TaskName: "Y", Priority: 3, DurationMinutes: 30,
			SchedulingType: models.SchedulingFlexible, TimeWindow: models.WindowAnytime, DependsOn: []string{"x"}},
	}
	p := New()
	result, planErr := p.Plan(templates, nil, defaultSleep(), mustDate(t, "2024-01-01"))
	if planErr != nil {
		t.Fatalf("unexpected error: %v", planErr)
	}
	if len(result.Schedule) != 2 {
		t.Fatalf("expected both cyclic tasks in the schedule, got %d", len(result.Schedule))
	}
	found := false
	for _, st := range result.Schedule {
		if st.ConflictType == models.ConflictDependencyViolation {
			found = true
		}
	}
	if !found {
		t.Error("expected at least one dependency_violation conflict from the unsatisfiable cycle")
	}
}

// S3 — time-overlap anchors.
func TestPlan_OverlappingAnchors(t *testing.T) {
	templates := []models.Template{
		{ID: "a", TaskName: "A", Priority: 3, IsMandatory: true, DurationMinutes: 60,
			SchedulingType: models.SchedulingFixed, DefaultTime: "09:00"},
		{ID: "b", TaskName: "B", Priority: 3, IsMandatory: true, DurationMinutes: 60,
			SchedulingType: models.SchedulingFixed, DefaultTime: "09:30"},
	}
	p := New()
	result, planErr := p.Plan(templates, nil, defaultSleep(), mustDate(t, "2024-01-01"))
	if planErr != nil {
		t.Fatalf("unexpected error: %v", planErr)
	}
	a, _ := findByTemplate(result.Schedule, "a")
	b, _ := findByTemplate(result.Schedule, "b")
	if a.ScheduledTime != "09:00" || b.ScheduledTime != "09:30" {
		t.Fatalf("anchors must stay at their defaultTime, got a=%s b=%s", a.ScheduledTime, b.ScheduledTime)
	}
	if !a.HasConflicts || !b.HasConflicts {
		t.Fatal("expected both anchors to be flagged with a conflict")
	}
	if a.ConflictType != models.ConflictTimeOverlap || a.ConflictSeverity != models.SeverityMedium {
		t.Errorf("a: type=%s severity=%s, want time_overlap/medium", a.ConflictType, a.ConflictSeverity)
	}
	if len(a.Conflicts) != 1 || a.Conflicts[0].OverlapMinutes != 30 {
		t.Errorf("a.Conflicts = %+v, want one record with overlapMinutes=30", a.Conflicts)
	}
}

// S4 — impossible day.
func TestPlan_ImpossibleDay(t *testing.T) {
	templates := []models.Template{
		{ID: "a", TaskName: "A", Priority: 3, IsMandatory: true, DurationMinutes: 400,
			SchedulingType: models.SchedulingFlexible, TimeWindow: models.WindowAnytime},
		{ID: "b", TaskName: "B", Priority: 3, IsMandatory: true, DurationMinutes: 400,
			SchedulingType: models.SchedulingFlexible, TimeWindow: models.WindowAnytime},
		{ID: "c", TaskName: "C", Priority: 3, IsMandatory: true, DurationMinutes: 400,
			SchedulingType: models.SchedulingFlexible, TimeWindow: models.WindowAnytime},
	}
	p := New()
	result, planErr := p.Plan(templates, nil, defaultSleep(), mustDate(t, "2024-01-01"))
	if planErr == nil {
		t.Fatal("expected an ImpossibleSchedule error")
	}
	if planErr.Kind != KindImpossibleSchedule {
		t.Errorf("Kind = %s, want impossible_schedule", planErr.Kind)
	}
	if len(planErr.Suggestions) != 4 {
		t.Errorf("len(Suggestions) = %d, want 4", len(planErr.Suggestions))
	}
	if result.Success {
		t.Error("expected success=false")
	}
	if len(result.Schedule) != 0 {
		t.Errorf("expected an empty schedule, got %d entries", len(result.Schedule))
	}
}

// S5 — a skipped template is excluded from the active set entirely; its
// mandatory dependent is reported missing its dependency.
func TestPlan_SkippedDependencyBlocksMandatoryDependent(t *testing.T) {
	templates := []models.Template{
		{ID: "t1", TaskName: "T1", Priority: 3, DurationMinutes: 30,
			SchedulingType: models.SchedulingFlexible, TimeWindow: models.WindowAnytime},
		{ID: "t2", TaskName: "T2", Priority: 3, IsMandatory: true, DurationMinutes: 30,
			SchedulingType: models.SchedulingFlexible, TimeWindow: models.WindowAnytime, DependsOn: []string{"t1"}},
	}
	instances := []models.Instance{
		{ID: "i1", TemplateID: "t1", Date: "2024-01-01", Status: models.StatusSkipped},
	}
	p := New()
	result, planErr := p.Plan(templates, instances, defaultSleep(), mustDate(t, "2024-01-01"))
	if planErr != nil {
		t.Fatalf("unexpected error: %v", planErr)
	}
	if _, ok := findByTemplate(result.Schedule, "t1"); ok {
		t.Error("skipped template t1 should not appear in the schedule")
	}
	t2, ok := findByTemplate(result.Schedule, "t2")
	if !ok {
		t.Fatal("expected t2 in the schedule")
	}
	if !t2.HasConflicts {
		t.Error("expected t2 to be flagged once its dependency is absent")
	}
}

// Testable property 5: anchor invariance.
func TestPlan_AnchorInvarianceAcrossInputOrdering(t *testing.T) {
	t1 := models.Template{ID: "a", TaskName: "A", Priority: 3, IsMandatory: true, DurationMinutes: 30,
		SchedulingType: models.SchedulingFixed, DefaultTime: "08:00"}
	t2 := models.Template{ID: "b", TaskName: "B", Priority: 1, IsMandatory: true, DurationMinutes: 30,
		SchedulingType: models.SchedulingFixed, DefaultTime: "14:00"}

	p := New()
	r1, err1 := p.Plan([]models.Template{t1, t2}, nil, defaultSleep(), mustDate(t, "2024-01-01"))
	r2, err2 := p.Plan([]models.Template{t2, t1}, nil, defaultSleep(), mustDate(t, "2024-01-01"))
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v / %v", err1, err2)
	}
	a1, _ := findByTemplate(r1.Schedule, "a")
	a2, _ := findByTemplate(r2.Schedule, "a")
	if a1.ScheduledTime != "08:00" || a2.ScheduledTime != "08:00" {
		t.Errorf("anchor invariance violated: %s vs %s", a1.ScheduledTime, a2.ScheduledTime)
	}
}

// Testable property 6: window containment.
func TestPlan_WindowContainment(t *testing.T) {
	templates := []models.Template{
		{ID: "a", TaskName: "A", Priority: 3, DurationMinutes: 45,
			SchedulingType: models.SchedulingFlexible, TimeWindow: models.WindowEvening},
	}
	p := New()
	result, planErr := p.Plan(templates, nil, defaultSleep(), mustDate(t, "2024-01-01"))
	if planErr != nil {
		t.Fatalf("unexpected error: %v", planErr)
	}
	a, ok := findByTemplate(result.Schedule, "a")
	if !ok || a.ScheduledTime == "" {
		t.Fatal("expected a to be placed")
	}
	start, _ := timeutil.ParseHHMM(a.ScheduledTime)
	window := models.DefaultWindows()[models.WindowEvening]
	if start < window.Start || start+a.DurationMinutes > window.End {
		t.Errorf("placement %d..%d escapes evening window %v", start, start+a.DurationMinutes, window)
	}
}

func TestSuggestSlotsRanksHigherScoreFirst(t *testing.T) {
	window := models.Window{Start: 6 * 60, End: 22 * 60}
	suggestions := SuggestSlots(window, 30, 15, 5, map[string]*models.ScheduledTask{})
	for i := 1; i < len(suggestions); i++ {
		if suggestions[i].Score > suggestions[i-1].Score {
			t.Errorf("suggestions not sorted descending by score: %+v", suggestions)
		}
	}
}
