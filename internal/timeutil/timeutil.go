// Package timeutil implements the day-planner's time model: HH:MM
// minute-of-day arithmetic and ISO-8601 calendar-date arithmetic, with an
// explicit out-of-range contract rather than silent clamping.
package timeutil

import (
	"fmt"
	"regexp"
	"time"

	"github.com/dayplan/dayplan/internal/constants"
)

var hhmmPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ErrInvalidTime is returned by ParseHHMM when the input does not match
// ^([01]\d|2[0-3]):[0-5]\d$.
type ErrInvalidTime struct{ Value string }

func (e ErrInvalidTime) Error() string {
	return fmt.Sprintf("timeutil: invalid HH:MM value %q", e.Value)
}

// ErrInvalidDate is returned by ParseDate when the input is not a valid
// YYYY-MM-DD date.
type ErrInvalidDate struct {
	Value string
	Cause error
}

func (e ErrInvalidDate) Error() string {
	return fmt.Sprintf("timeutil: invalid date %q: %v", e.Value, e.Cause)
}

func (e ErrInvalidDate) Unwrap() error { return e.Cause }

// ParseHHMM parses a "HH:MM" string into minutes since midnight (0..1439).
func ParseHHMM(s string) (int, error) {
	if !hhmmPattern.MatchString(s) {
		return 0, ErrInvalidTime{Value: s}
	}
	hours := int(s[0]-'0')*10 + int(s[1]-'0')
	mins := int(s[3]-'0')*10 + int(s[4]-'0')
	return hours*60 + mins, nil
}

// FormatHHMM formats minutes since midnight as "HH:MM". Rejects negative
// values and values >= 1440 rather than silently clamping them.
func FormatHHMM(minutes int) (string, error) {
	if minutes < 0 || minutes >= constants.MinutesPerDay {
		return "", fmt.Errorf("timeutil: minute value %d out of range [0,%d)", minutes, constants.MinutesPerDay)
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60), nil
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect. Adjacent intervals (end of one equals start of the other) do
// NOT overlap — a deliberate convention so back-to-back tasks never flag
// as conflicting.
func Overlaps(s1, e1, s2, e2 int) bool {
	return max(s1, s2) < min(e1, e2)
}

// OverlapMinutes returns the number of minutes the two half-open intervals
// share, or 0 if they do not overlap.
func OverlapMinutes(s1, e1, s2, e2 int) int {
	start := max(s1, s2)
	end := min(e1, e2)
	if start >= end {
		return 0
	}
	return end - start
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ParseDate parses a "YYYY-MM-DD" string into a UTC-anchored time.Time
// truncated to day precision.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate{Value: s, Cause: err}
	}
	return t, nil
}

// FormatDate formats a date as "YYYY-MM-DD".
func FormatDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// AddDays returns the date n days after date (n may be negative).
func AddDays(date time.Time, n int) time.Time {
	return date.AddDate(0, 0, n)
}

// DaysBetween returns the number of whole days from a to b (b - a).
// Negative if b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// WeeksBetween returns the number of whole weeks from a to b, floored
// toward zero difference (used for weekly-interval matching).
func WeeksBetween(a, b time.Time) int {
	return DaysBetween(a, b) / 7
}

// MonthsBetween returns the number of calendar months from a to b.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// YearsBetween returns the number of calendar years from a to b.
func YearsBetween(a, b time.Time) int {
	return b.Year() - a.Year()
}

// IsLeap reports whether year is a leap year.
func IsLeap(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// LastDayOfMonth returns the day-of-month number of the last day of the
// given year/month (28..31).
func LastDayOfMonth(year int, month time.Month) int {
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfNext.AddDate(0, 0, -1)
	return lastDay.Day()
}

// DayOfWeek returns the weekday of date as 0..6 with 0 = Sunday.
func DayOfWeek(date time.Time) int {
	return int(date.Weekday())
}
