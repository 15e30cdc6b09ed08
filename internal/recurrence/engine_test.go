package recurrence

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

func TestShouldFireOn_NoRuleFiresEveryDay(t *testing.T) {
	e := New()
	tmpl := models.Template{ID: "t1"}
	if !e.ShouldFireOn(tmpl, mustDate(t, "2024-03-01")) {
		t.Error("template without a rule should fire every day")
	}
}

// S6 — weekly recurrence with interval=2.
func TestShouldFireOn_WeeklyInterval(t *testing.T) {
	e := New()
	tmpl := models.Template{
		ID: "t1",
		Recurrence: &models.RecurrenceRule{
			Frequency:  models.FrequencyWeekly,
			Interval:   2,
			DaysOfWeek: []int{1, 3}, // Mon, Wed
			StartDate:  "2024-01-01",
		},
	}

	cases := []struct {
		date string
		want bool
	}{
		{"2024-01-01", true},  // Mon, week 0
		{"2024-01-03", true},  // Wed, week 0
		{"2024-01-08", false}, // Mon, week 1 -> skipped (interval 2)
		{"2024-01-15", true},  // Mon, week 2
		{"2024-01-02", false}, // Tue, not in daysOfWeek
	}
	for _, c := range cases {
		got := e.ShouldFireOn(tmpl, mustDate(t, c.date))
		if got != c.want {
			t.Errorf("ShouldFireOn(%s) = %v, want %v", c.date, got, c.want)
		}
	}
}

func TestShouldFireOn_WeeklyEmptyDaysOfWeekNeverFires(t *testing.T) {
	e := New()
	tmpl := models.Template{Recurrence: &models.RecurrenceRule{Frequency: models.FrequencyWeekly, Interval: 1}}
	if e.ShouldFireOn(tmpl, mustDate(t, "2024-01-01")) {
		t.Error("weekly rule with empty daysOfWeek should never fire")
	}
}

func TestShouldFireOn_MonthlyLastDay(t *testing.T) {
	e := New()
	tmpl := models.Template{Recurrence: &models.RecurrenceRule{
		Frequency: models.FrequencyMonthly, Interval: 1, DayOfMonth: -1, StartDate: "2024-01-01",
	}}
	if !e.ShouldFireOn(tmpl, mustDate(t, "2024-02-29")) {
		t.Error("monthly -1 should fire on Feb 29 in a leap year")
	}
	if e.ShouldFireOn(tmpl, mustDate(t, "2024-02-28")) {
		t.Error("monthly -1 should not fire on Feb 28 when Feb has 29 days")
	}
}

func TestShouldFireOn_StartEndBounds(t *testing.T) {
	e := New()
	tmpl := models.Template{Recurrence: &models.RecurrenceRule{
		Frequency: models.FrequencyDaily, Interval: 1, StartDate: "2024-01-10", EndDate: "2024-01-20",
	}}
	if e.ShouldFireOn(tmpl, mustDate(t, "2024-01-09")) {
		t.Error("should not fire before startDate")
	}
	if e.ShouldFireOn(tmpl, mustDate(t, "2024-01-21")) {
		t.Error("should not fire after endDate")
	}
	if !e.ShouldFireOn(tmpl, mustDate(t, "2024-01-15")) {
		t.Error("should fire within [startDate,endDate]")
	}
}

func TestShouldFireOn_EndAfterOccurrencesUnboundedWithoutStore(t *testing.T) {
	e := New()
	n := 3
	tmpl := models.Template{Recurrence: &models.RecurrenceRule{
		Frequency: models.FrequencyDaily, Interval: 1, EndAfterOccurrences: &n,
	}}
	// No CountOccurrences configured: per DESIGN.md decision #1, unbounded.
	if !e.ShouldFireOn(tmpl, mustDate(t, "2030-01-01")) {
		t.Error("without a store, endAfterOccurrences should not block firing")
	}
}

func TestShouldFireOn_EndAfterOccurrencesDelegatesToStore(t *testing.T) {
	n := 2
	e := New().WithCountOccurrences(func(templateID string, upTo time.Time) (int, error) {
		return 2, nil
	})
	tmpl := models.Template{ID: "t1", Recurrence: &models.RecurrenceRule{
		Frequency: models.FrequencyDaily, Interval: 1, EndAfterOccurrences: &n,
	}}
	if e.ShouldFireOn(tmpl, mustDate(t, "2024-01-01")) {
		t.Error("should not fire once the occurrence count has been reached")
	}
}

func TestCustomPatterns(t *testing.T) {
	e := New()
	weekdays := models.Template{Recurrence: &models.RecurrenceRule{Frequency: models.FrequencyCustom, Interval: 1, Custom: models.CustomWeekdays}}
	weekends := models.Template{Recurrence: &models.RecurrenceRule{Frequency: models.FrequencyCustom, Interval: 1, Custom: models.CustomWeekends}}

	mon := mustDate(t, "2024-01-01")
	sat := mustDate(t, "2024-01-06")

	if !e.ShouldFireOn(weekdays, mon) || e.ShouldFireOn(weekdays, sat) {
		t.Error("weekdays pattern mismatch")
	}
	if e.ShouldFireOn(weekends, mon) || !e.ShouldFireOn(weekends, sat) {
		t.Error("weekends pattern mismatch")
	}

	nthWeekday := models.Template{Recurrence: &models.RecurrenceRule{
		Frequency: models.FrequencyCustom, Interval: 1, Custom: models.CustomNthWeekday, NthWeek: 1, DayOfWeek: 1,
	}}
	if !e.ShouldFireOn(nthWeekday, mon) {
		t.Error("first Monday of January 2024 should match nth_weekday(1, Monday)")
	}

	lastWeekday := models.Template{Recurrence: &models.RecurrenceRule{
		Frequency: models.FrequencyCustom, Interval: 1, Custom: models.CustomLastWeekday, DayOfWeek: 1,
	}}
	if !e.ShouldFireOn(lastWeekday, mustDate(t, "2024-01-29")) {
		t.Error("2024-01-29 is the last Monday of January 2024")
	}
	if e.ShouldFireOn(lastWeekday, mon) {
		t.Error("2024-01-01 is not the last Monday of January 2024")
	}
}

// Testable property 7: occurrencesInRange == {d in [s,e] | shouldFireOn(t,d)}.
func TestOccurrencesInRangeRoundTrip(t *testing.T) {
	e := New()
	tmpl := models.Template{Recurrence: &models.RecurrenceRule{
		Frequency: models.FrequencyWeekly, Interval: 1, DaysOfWeek: []int{1, 3}, StartDate: "2024-01-01",
	}}
	start := mustDate(t, "2024-01-01")
	end := mustDate(t, "2024-01-31")

	occurrences := e.OccurrencesInRange(tmpl, start, end)

	days := timeutil.DaysBetween(start, end)
	var manual []time.Time
	for i := 0; i <= days; i++ {
		d := timeutil.AddDays(start, i)
		if e.ShouldFireOn(tmpl, d) {
			manual = append(manual, d)
		}
	}

	if len(occurrences) != len(manual) {
		t.Fatalf("len mismatch: %d vs %d", len(occurrences), len(manual))
	}
	for i := range occurrences {
		if !occurrences[i].Equal(manual[i]) {
			t.Errorf("occurrence %d mismatch: %v vs %v", i, occurrences[i], manual[i])
		}
	}
}

func TestNextOccurrence(t *testing.T) {
	e := New()
	tmpl := models.Template{Recurrence: &models.RecurrenceRule{
		Frequency: models.FrequencyWeekly, Interval: 1, DaysOfWeek: []int{5}, StartDate: "2024-01-01",
	}}
	next, ok := e.NextOccurrence(tmpl, mustDate(t, "2024-01-01"))
	if !ok {
		t.Fatal("expected a next occurrence")
	}
	if got := timeutil.FormatDate(next); got != "2024-01-05" {
		t.Errorf("NextOccurrence = %s, want 2024-01-05", got)
	}
}

func TestValidateRule(t *testing.T) {
	n := 3
	bad := &models.RecurrenceRule{Frequency: models.FrequencyDaily, Interval: 1, EndDate: "2024-01-01", EndAfterOccurrences: &n}
	if ok, errs := ValidateRule(bad); ok || len(errs) == 0 {
		t.Error("endDate and endAfterOccurrences together should be invalid")
	}

	badInterval := &models.RecurrenceRule{Frequency: models.FrequencyDaily, Interval: 0}
	if ok, _ := ValidateRule(badInterval); ok {
		t.Error("interval 0 should be invalid")
	}

	good := &models.RecurrenceRule{Frequency: models.FrequencyMonthly, Interval: 1, DayOfMonth: -1}
	if ok, errs := ValidateRule(good); !ok {
		t.Errorf("expected valid rule, got errors: %v", errs)
	}

	if ok, _ := ValidateRule(nil); !ok {
		t.Error("nil rule should validate as true (no rule attached)")
	}
}
