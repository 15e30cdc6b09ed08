// Package constants holds application-wide constants shared across the
// planner core, storage adapters, CLI, and TUI.
package constants

import "time"

// SessionState represents the current tab of the TUI application.
type SessionState int

const (
	AppName            = "dayplan"
	DefaultKeyringUser = "store-connection"
	DefaultConfigPath  = "~/.config/dayplan/dayplan.db"
	Version            = "v0.1.0"

	// DateFormat is the standard calendar-date format (YYYY-MM-DD).
	DateFormat = "2006-01-02"

	// TimeFormat is the standard minute-of-day format (HH:MM).
	TimeFormat = "15:04"

	// MinutesPerDay is the number of addressable minute-of-day values (0..1439).
	MinutesPerDay = 24 * 60

	// Scheduling buffers — kept distinct; each protects a different phase
	// of slot placement and must not be merged.
	SlotterDependencyBufferMin  = 5  // buffer after a dependency ends, used while probing slots
	SafeSlotFallbackBufferMin   = 10 // buffer used by the dependency-aware retry
	ResolverDependencyBufferMin = 15 // buffer used by the resolver's own suggested-start calculation

	SlotGranularityMin = 15 // candidate-start probing granularity in Step 3
)

const (
	// TUI Session States
	StatePlan SessionState = iota
	StateTemplates
	StateEditing
	StateConfirmDelete

	NotifyRetryDelay = 100 * time.Millisecond
)

// DefaultSettings holds the out-of-the-box configuration values, including
// the sleep-schedule fields the scheduling engine needs.
const (
	DefaultDayStart         = "07:00"
	DefaultDayEnd           = "23:00"
	DefaultWakeTime         = "07:00"
	DefaultSleepTime        = "23:00"
	DefaultSleepDurationMin = 8 * 60
	DefaultTimezone         = "Local"
	DefaultMaxSuggestions   = 3
)
