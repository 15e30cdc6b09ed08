package models

// Window is a half-open [Start,End) interval in minutes-of-day.
type Window struct {
	Start int
	End   int
}

// SleepSchedule bounds the day's waking window.
type SleepSchedule struct {
	WakeTime    string // HH:MM
	SleepTime   string // HH:MM
	DurationMin int    // desired sleep duration in minutes
}

// PlannerConfig is a typed configuration record for the planner, in place
// of an options object with mixed shape.
type PlannerConfig struct {
	BufferMinutes          int
	SlotGranularityMinutes int
	Windows                map[TimeWindowName]Window
	MaxSuggestions         int
}

// DefaultWindows returns the default time-window table.
func DefaultWindows() map[TimeWindowName]Window {
	return map[TimeWindowName]Window{
		WindowMorning:   {Start: 6 * 60, End: 12 * 60},
		WindowAfternoon: {Start: 12 * 60, End: 18 * 60},
		WindowEvening:   {Start: 18 * 60, End: 23 * 60},
		WindowAnytime:   {Start: 0, End: 24 * 60},
	}
}

// DefaultPlannerConfig returns a PlannerConfig using the default windows
// and buffer/granularity values.
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		BufferMinutes:          5,
		SlotGranularityMinutes: 15,
		Windows:                DefaultWindows(),
		MaxSuggestions:         3,
	}
}

// Settings is application-wide configuration, persisted through the Store
// port, including the sleep-schedule fields the scheduling engine needs.
type Settings struct {
	DayStart                string // HH:MM
	DayEnd                  string // HH:MM
	DefaultWakeTime         string // HH:MM
	DefaultSleepTime        string // HH:MM
	DesiredSleepDurationMin int
	Timezone                string
	MaxSuggestions          int
	Preferences             map[string]string
}
