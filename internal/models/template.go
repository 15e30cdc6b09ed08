package models

// SchedulingType distinguishes a template with a fixed clock-time anchor
// from one the scheduler is free to place within a time window.
type SchedulingType string

const (
	SchedulingFixed    SchedulingType = "fixed"
	SchedulingFlexible SchedulingType = "flexible"
)

// TimeWindowName is one of the named half-open windows a flexible template
// may be placed within.
type TimeWindowName string

const (
	WindowMorning   TimeWindowName = "morning"
	WindowAfternoon TimeWindowName = "afternoon"
	WindowEvening   TimeWindowName = "evening"
	WindowAnytime   TimeWindowName = "anytime"
)

// Template is a recurring (or one-off) work-item definition.
type Template struct {
	ID          string
	TaskName    string // 1..100 chars
	Description string // <= 500 chars
	Priority    int    // 1..5
	IsActive    bool
	IsMandatory bool

	DurationMinutes    int // 1..720
	MinDurationMinutes int // >= 1, <= DurationMinutes — the crunch-time floor

	SchedulingType SchedulingType
	DefaultTime    string         // HH:MM, required when SchedulingType == fixed
	TimeWindow     TimeWindowName // required when SchedulingType == flexible

	DependsOn []string // template ids; duplicates collapsed by validation

	Recurrence *RecurrenceRule // nil => eligible every day
}
