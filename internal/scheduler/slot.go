package scheduler

import (
	"github.com/dayplan/dayplan/internal/constants"
	"github.com/dayplan/dayplan/internal/models"
	"github.com/dayplan/dayplan/internal/timeutil"
)

// slotFlexibleTask places one candidate: window lookup, earliest-start from
// dependencies, granularity-stepped probing against already-scheduled
// tasks, and a dependency-violation retry.
func slotFlexibleTask(c taskCandidate, scheduled map[string]*models.ScheduledTask, windows map[models.TimeWindowName]models.Window, granularity int) *models.ScheduledTask {
	st := newScheduledTask(c)

	window, ok := windows[c.TimeWindow]
	if !ok {
		window = models.Window{Start: 0, End: constants.MinutesPerDay}
	}

	earliestStart, adjusted := earliestStartFromDeps(c.DependsOn, scheduled, constants.SlotterDependencyBufferMin)
	actualStart := window.Start
	if earliestStart > actualStart {
		actualStart = earliestStart
	}

	start, placed := probeSlot(actualStart, window.End, c.DurationMinutes, granularity, scheduled)
	if placed && !dependenciesSatisfied(c.DependsOn, scheduled, start) {
		placed = false
	}
	if !placed {
		// safe-slot fallback: retry with the wider buffer
		retryStart, retryAdjusted := earliestStartFromDeps(c.DependsOn, scheduled, constants.SafeSlotFallbackBufferMin)
		actualStart = window.Start
		if retryStart > actualStart {
			actualStart = retryStart
		}
		if start2, placed2 := probeSlot(actualStart, window.End, c.DurationMinutes, granularity, scheduled); placed2 && dependenciesSatisfied(c.DependsOn, scheduled, start2) {
			start = start2
			placed = true
			adjusted = retryAdjusted
		}
	}

	if !placed {
		// Left unplaced; the conflict annotation pass would have nothing to
		// scan since ScheduledTime stays empty, so the "no viable slot"
		// conflict is recorded here directly.
		st.HasConflicts = true
		st.ConflictType = models.ConflictDependencyViolation
		st.ConflictSeverity = models.SeverityHigh
		st.Conflicts = []models.ConflictRecord{{
			Type:  models.ConflictDependencyViolation,
			Issue: "no viable slot",
		}}
		return st
	}

	formatted, err := timeutil.FormatHHMM(start)
	if err != nil {
		st.HasConflicts = true
		st.ConflictType = models.ConflictDependencyViolation
		st.ConflictSeverity = models.SeverityHigh
		st.Conflicts = []models.ConflictRecord{{Type: models.ConflictDependencyViolation, Issue: "no viable slot"}}
		return st
	}
	st.ScheduledTime = formatted
	st.DependencyAdjusted = adjusted
	return st
}

// earliestStartFromDeps returns max(dependency end) + buffer across every
// already-scheduled dependency of deps, or 0 (meaning "no constraint yet")
// when none are placed.
func earliestStartFromDeps(deps []string, scheduled map[string]*models.ScheduledTask, buffer int) (int, bool) {
	earliest := 0
	adjusted := false
	for _, depID := range deps {
		dep, ok := scheduled[depID]
		if !ok || dep.ScheduledTime == "" {
			continue
		}
		depStart, err := timeutil.ParseHHMM(dep.ScheduledTime)
		if err != nil {
			continue
		}
		depEnd := depStart + dep.DurationMinutes
		if depEnd+buffer > earliest {
			earliest = depEnd + buffer
			adjusted = true
		}
	}
	return earliest, adjusted
}

// dependenciesSatisfied verifies start >= dep_start+dep_duration for every
// already-placed dependency.
func dependenciesSatisfied(deps []string, scheduled map[string]*models.ScheduledTask, start int) bool {
	for _, depID := range deps {
		dep, ok := scheduled[depID]
		if !ok || dep.ScheduledTime == "" {
			continue
		}
		depStart, err := timeutil.ParseHHMM(dep.ScheduledTime)
		if err != nil {
			continue
		}
		if start < depStart+dep.DurationMinutes {
			return false
		}
	}
	return true
}

// probeSlot scans candidate starts at granularity-minute steps from
// actualStart upward, accepting the first one that both fits the window
// and does not overlap any already-scheduled task.
func probeSlot(actualStart, windowEnd, duration, granularity int, scheduled map[string]*models.ScheduledTask) (int, bool) {
	if actualStart >= windowEnd {
		return 0, false
	}
	first := ceilToGranularity(actualStart, granularity)
	for start := first; start+duration <= windowEnd; start += granularity {
		if !overlapsAny(start, start+duration, scheduled) {
			return start, true
		}
	}
	return 0, false
}

// ceilToGranularity rounds minute up to the next multiple of granularity,
// so candidate starts land on absolute clock boundaries (:00/:15/:30/:45
// for the default 15-minute granularity) rather than drifting from wherever
// the dependency buffer happened to land.
func ceilToGranularity(minute, granularity int) int {
	if granularity <= 0 {
		return minute
	}
	if minute%granularity == 0 {
		return minute
	}
	return (minute/granularity + 1) * granularity
}

func overlapsAny(start, end int, scheduled map[string]*models.ScheduledTask) bool {
	for _, st := range scheduled {
		if st.ScheduledTime == "" {
			continue
		}
		bStart, err := timeutil.ParseHHMM(st.ScheduledTime)
		if err != nil {
			continue
		}
		bEnd := bStart + st.DurationMinutes
		if timeutil.Overlaps(start, end, bStart, bEnd) {
			return true
		}
	}
	return false
}
