// Package cli wires the kong command tree to the planner core and its
// storage port, threading a Context struct through every command.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dayplan/dayplan/internal/models"
	"github.com/dayplan/dayplan/internal/scheduler"
	"github.com/dayplan/dayplan/internal/store"
)

// Context carries the dependencies every CLI command needs: the storage
// port, the planner, and the event bus intents are recorded onto. Every
// `(cmd) Run(ctx *cli.Context) error` method receives this by pointer.
type Context struct {
	Store      store.Store
	Planner    *scheduler.Planner
	Events     *store.Bus
	UserID     string
	ConfigPath string // on-disk path or connection string backing Store, for init/doctor diagnostics
}

// ParseWeekdays parses a comma-separated list of weekday names or numbers
// (0=Sunday..6=Saturday) into the int slice models.RecurrenceRule.DaysOfWeek
// expects.
func ParseWeekdays(s string) ([]int, error) {
	dayMap := map[string]int{
		"sun": 0, "sunday": 0,
		"mon": 1, "monday": 1,
		"tue": 2, "tuesday": 2,
		"wed": 3, "wednesday": 3,
		"thu": 4, "thursday": 4,
		"fri": 5, "friday": 5,
		"sat": 6, "saturday": 6,
	}

	var days []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		if d, ok := dayMap[part]; ok {
			days = append(days, d)
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil || num < 0 || num > 6 {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
		days = append(days, num)
	}
	return days, nil
}

// FormatRecurrence renders a RecurrenceRule as a short human-readable
// summary for list/show output.
func FormatRecurrence(rule *models.RecurrenceRule) string {
	if rule == nil {
		return "every day"
	}
	switch rule.Frequency {
	case models.FrequencyDaily:
		if rule.Interval > 1 {
			return fmt.Sprintf("every %d days", rule.Interval)
		}
		return "daily"
	case models.FrequencyWeekly:
		if len(rule.DaysOfWeek) == 0 {
			return "weekly (no days set)"
		}
		names := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
		var days []string
		for _, d := range rule.DaysOfWeek {
			if d >= 0 && d <= 6 {
				days = append(days, names[d])
			}
		}
		return fmt.Sprintf("weekly on %s", strings.Join(days, ","))
	case models.FrequencyMonthly:
		if rule.DayOfMonth == -1 {
			return "monthly on the last day"
		}
		return fmt.Sprintf("monthly on day %d", rule.DayOfMonth)
	case models.FrequencyYearly:
		return fmt.Sprintf("yearly on %d/%d", rule.Month, rule.DayOfMonth)
	case models.FrequencyCustom:
		return fmt.Sprintf("custom (%s)", rule.Custom)
	default:
		return "every day"
	}
}
