package models

// Frequency is the closed tagged-variant discriminator for a RecurrenceRule.
type Frequency string

const (
	FrequencyNone    Frequency = "none"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
	FrequencyCustom  Frequency = "custom"
)

// CustomPattern names one of the recognized custom recurrence patterns.
type CustomPattern string

const (
	CustomWeekdays     CustomPattern = "weekdays"
	CustomWeekends     CustomPattern = "weekends"
	CustomNthWeekday   CustomPattern = "nth_weekday"
	CustomLastWeekday  CustomPattern = "last_weekday"
	CustomBusinessDays CustomPattern = "business_days"
)

// RecurrenceRule is a tagged variant keyed on Frequency. Only the
// fields relevant to Frequency are populated by a well-formed rule; the
// others have no effect (ValidateRule checks only the fields relevant to
// Frequency).
type RecurrenceRule struct {
	Frequency Frequency

	// Common fields.
	Interval            int // >= 1
	StartDate           string
	EndDate             string
	EndAfterOccurrences *int

	// weekly
	DaysOfWeek []int // 0..6, 0 = Sunday

	// monthly / yearly
	DayOfMonth int // 1..31, or -1 for last day of month
	Month      int // 1..12, yearly only

	// custom
	Custom     CustomPattern
	NthWeek    int // 1..5
	DayOfWeek  int // 0..6
}
