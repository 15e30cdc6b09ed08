// Package recurrence decides whether a template should produce an
// instance on a given date, and enumerates occurrences over a range.
package recurrence

import (
	"math"
	"time"

	"github.com/dayplan/dayplan/internal/models"
	"github.com/dayplan/dayplan/internal/timeutil"
)

// CountOccurrencesFunc counts how many instances of a template have fired
// on or before upTo. It models the Store.countOccurrences port method;
// ShouldFireOn falls back to "unbounded" when nil (see DESIGN.md).
type CountOccurrencesFunc func(templateID string, upTo time.Time) (int, error)

// Engine evaluates RecurrenceRules against calendar dates. It is stateless
// apart from the optional occurrence-counting callback, and every method
// is a pure function of its arguments.
type Engine struct {
	CountOccurrences CountOccurrencesFunc
}

// New returns an Engine with no occurrence-counting callback configured.
func New() *Engine {
	return &Engine{}
}

// WithCountOccurrences returns a copy of the engine that delegates
// endAfterOccurrences checks to fn.
func (e *Engine) WithCountOccurrences(fn CountOccurrencesFunc) *Engine {
	return &Engine{CountOccurrences: fn}
}

// ShouldFireOn reports whether template should produce an instance on date.
func (e *Engine) ShouldFireOn(template models.Template, date time.Time) bool {
	rule := template.Recurrence
	if rule == nil || rule.Frequency == models.FrequencyNone {
		// A template without a rule fires every day.
		return true
	}

	if rule.StartDate != "" {
		start, err := timeutil.ParseDate(rule.StartDate)
		if err == nil && date.Before(start) {
			return false
		}
	}
	if rule.EndDate != "" {
		end, err := timeutil.ParseDate(rule.EndDate)
		if err == nil && date.After(end) {
			return false
		}
	}
	if rule.EndAfterOccurrences != nil {
		if e.CountOccurrences == nil {
			// No store supplied: behaviour is "unbounded".
		} else {
			count, err := e.CountOccurrences(template.ID, date)
			if err == nil && count >= *rule.EndAfterOccurrences {
				return false
			}
		}
	}

	switch rule.Frequency {
	case models.FrequencyDaily:
		return matchesDaily(rule, date)
	case models.FrequencyWeekly:
		return matchesWeekly(rule, date)
	case models.FrequencyMonthly:
		return matchesMonthly(rule, date)
	case models.FrequencyYearly:
		return matchesYearly(rule, date)
	case models.FrequencyCustom:
		return matchesCustom(rule, date)
	default:
		// Unknown frequency degrades to false at evaluation time;
		// ValidateRule rejects it earlier.
		return false
	}
}

func intervalOrOne(interval int) int {
	if interval < 1 {
		return 1
	}
	return interval
}

func matchesDaily(rule *models.RecurrenceRule, date time.Time) bool {
	start, err := startOrDate(rule, date)
	if err != nil {
		return false
	}
	return mod(timeutil.DaysBetween(start, date), intervalOrOne(rule.Interval)) == 0
}

func matchesWeekly(rule *models.RecurrenceRule, date time.Time) bool {
	if len(rule.DaysOfWeek) == 0 {
		return false
	}
	wd := timeutil.DayOfWeek(date)
	found := false
	for _, d := range rule.DaysOfWeek {
		if d == wd {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	start, err := startOrDate(rule, date)
	if err != nil {
		return false
	}
	return mod(timeutil.WeeksBetween(start, date), intervalOrOne(rule.Interval)) == 0
}

func matchesMonthly(rule *models.RecurrenceRule, date time.Time) bool {
	dayMatches := false
	if rule.DayOfMonth == -1 {
		dayMatches = date.Day() == timeutil.LastDayOfMonth(date.Year(), date.Month())
	} else {
		dayMatches = date.Day() == rule.DayOfMonth
	}
	if !dayMatches {
		return false
	}
	start, err := startOrDate(rule, date)
	if err != nil {
		return false
	}
	return mod(timeutil.MonthsBetween(start, date), intervalOrOne(rule.Interval)) == 0
}

func matchesYearly(rule *models.RecurrenceRule, date time.Time) bool {
	if int(date.Month()) != rule.Month {
		return false
	}
	dayMatches := false
	if rule.DayOfMonth == -1 {
		dayMatches = date.Day() == timeutil.LastDayOfMonth(date.Year(), date.Month())
	} else {
		dayMatches = date.Day() == rule.DayOfMonth
	}
	if !dayMatches {
		return false
	}
	start, err := startOrDate(rule, date)
	if err != nil {
		return false
	}
	return mod(timeutil.YearsBetween(start, date), intervalOrOne(rule.Interval)) == 0
}

func matchesCustom(rule *models.RecurrenceRule, date time.Time) bool {
	wd := timeutil.DayOfWeek(date)
	switch rule.Custom {
	case models.CustomWeekdays, models.CustomBusinessDays:
		return wd >= 1 && wd <= 5
	case models.CustomWeekends:
		return wd == 0 || wd == 6
	case models.CustomNthWeekday:
		if wd != rule.DayOfWeek {
			return false
		}
		nth := int(math.Ceil(float64(date.Day()) / 7))
		return nth == rule.NthWeek
	case models.CustomLastWeekday:
		if wd != rule.DayOfWeek {
			return false
		}
		nextWeek := timeutil.AddDays(date, 7)
		return nextWeek.Month() != date.Month()
	default:
		return false
	}
}

// startOrDate returns rule.StartDate parsed, or date itself when no start
// date is set (so interval-modulus checks degenerate to "always matches").
func startOrDate(rule *models.RecurrenceRule, date time.Time) (time.Time, error) {
	if rule.StartDate == "" {
		return date, nil
	}
	return timeutil.ParseDate(rule.StartDate)
}

func mod(a, m int) int {
	if m <= 0 {
		m = 1
	}
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

// NextOccurrence searches forward day-by-day, up to one year, for the
// first date on or after from on which template fires.
func (e *Engine) NextOccurrence(template models.Template, from time.Time) (time.Time, bool) {
	for i := 0; i <= 365; i++ {
		candidate := timeutil.AddDays(from, i)
		if e.ShouldFireOn(template, candidate) {
			return candidate, true
		}
	}
	return time.Time{}, false
}

// OccurrencesInRange returns every date in [start,end] on which template
// fires, sorted ascending.
func (e *Engine) OccurrencesInRange(template models.Template, start, end time.Time) []time.Time {
	var out []time.Time
	days := timeutil.DaysBetween(start, end)
	if days < 0 {
		return out
	}
	for i := 0; i <= days; i++ {
		candidate := timeutil.AddDays(start, i)
		if e.ShouldFireOn(template, candidate) {
			out = append(out, candidate)
		}
	}
	return out
}

// ValidationError describes one reason a RecurrenceRule fails validation.
type ValidationError struct {
	Field   string
	Message string
}

// ValidateRule enforces the recurrence rule invariants.
func ValidateRule(rule *models.RecurrenceRule) (bool, []ValidationError) {
	if rule == nil {
		return true, nil
	}
	var errs []ValidationError

	switch rule.Frequency {
	case models.FrequencyNone, models.FrequencyDaily, models.FrequencyWeekly,
		models.FrequencyMonthly, models.FrequencyYearly, models.FrequencyCustom:
	default:
		errs = append(errs, ValidationError{Field: "frequency", Message: "unknown recurrence frequency"})
	}

	if rule.Interval < 1 {
		errs = append(errs, ValidationError{Field: "interval", Message: "interval must be >= 1"})
	}

	if rule.EndDate != "" && rule.EndAfterOccurrences != nil {
		errs = append(errs, ValidationError{Field: "endDate", Message: "endDate and endAfterOccurrences are mutually exclusive"})
	}

	var start, end time.Time
	var startOK, endOK bool
	if rule.StartDate != "" {
		if s, err := timeutil.ParseDate(rule.StartDate); err == nil {
			start, startOK = s, true
		} else {
			errs = append(errs, ValidationError{Field: "startDate", Message: "invalid date"})
		}
	}
	if rule.EndDate != "" {
		if en, err := timeutil.ParseDate(rule.EndDate); err == nil {
			end, endOK = en, true
		} else {
			errs = append(errs, ValidationError{Field: "endDate", Message: "invalid date"})
		}
	}
	if startOK && endOK && start.After(end) {
		errs = append(errs, ValidationError{Field: "startDate", Message: "startDate must be <= endDate"})
	}

	switch rule.Frequency {
	case models.FrequencyWeekly:
		for _, d := range rule.DaysOfWeek {
			if d < 0 || d > 6 {
				errs = append(errs, ValidationError{Field: "daysOfWeek", Message: "day of week must be 0..6"})
				break
			}
		}
	case models.FrequencyMonthly:
		if rule.DayOfMonth != -1 && (rule.DayOfMonth < 1 || rule.DayOfMonth > 31) {
			errs = append(errs, ValidationError{Field: "dayOfMonth", Message: "day of month must be 1..31 or -1"})
		}
	case models.FrequencyYearly:
		if rule.Month < 1 || rule.Month > 12 {
			errs = append(errs, ValidationError{Field: "month", Message: "month must be 1..12"})
		}
		if rule.DayOfMonth != -1 && (rule.DayOfMonth < 1 || rule.DayOfMonth > 31) {
			errs = append(errs, ValidationError{Field: "dayOfMonth", Message: "day of month must be 1..31 or -1"})
		}
	case models.FrequencyCustom:
		switch rule.Custom {
		case models.CustomWeekdays, models.CustomWeekends, models.CustomBusinessDays:
		case models.CustomNthWeekday:
			if rule.NthWeek < 1 || rule.NthWeek > 5 {
				errs = append(errs, ValidationError{Field: "nthWeek", Message: "nthWeek must be 1..5"})
			}
			if rule.DayOfWeek < 0 || rule.DayOfWeek > 6 {
				errs = append(errs, ValidationError{Field: "dayOfWeek", Message: "day of week must be 0..6"})
			}
		case models.CustomLastWeekday:
			if rule.DayOfWeek < 0 || rule.DayOfWeek > 6 {
				errs = append(errs, ValidationError{Field: "dayOfWeek", Message: "day of week must be 0..6"})
			}
		default:
			errs = append(errs, ValidationError{Field: "custom", Message: "unknown custom pattern"})
		}
	}

	return len(errs) == 0, errs
}
