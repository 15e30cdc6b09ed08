package scheduler

import (
	"github.com/dayplan/dayplan/internal/models"
	"github.com/dayplan/dayplan/internal/timeutil"
)

// applyCrunchTime is a reserved extension point for duration compression
// under time pressure. Currently performs no compression and leaves the
// flexible-slotting output unchanged.
func applyCrunchTime(order []*models.ScheduledTask) []*models.ScheduledTask {
	return order
}

// annotateConflicts scans the final schedule for time overlaps and
// dependency violations, mutating each task's conflict fields in place.
func annotateConflicts(order []*models.ScheduledTask) {
	byTemplateID := make(map[string]*models.ScheduledTask, len(order))
	for _, st := range order {
		byTemplateID[st.TemplateID] = st
	}

	for _, a := range order {
		if a.ScheduledTime == "" {
			continue // Step 3 already recorded this task's own conflict
		}
		aStart, err := timeutil.ParseHHMM(a.ScheduledTime)
		if err != nil {
			continue
		}
		aEnd := aStart + a.DurationMinutes

		var conflicts []models.ConflictRecord
		maxOverlap := 0
		hasDependencyIssue := false

		for _, b := range order {
			if b == a || b.ScheduledTime == "" {
				continue
			}
			bStart, err := timeutil.ParseHHMM(b.ScheduledTime)
			if err != nil {
				continue
			}
			bEnd := bStart + b.DurationMinutes
			if timeutil.Overlaps(aStart, aEnd, bStart, bEnd) {
				overlapMin := timeutil.OverlapMinutes(aStart, aEnd, bStart, bEnd)
				if overlapMin > maxOverlap {
					maxOverlap = overlapMin
				}
				conflicts = append(conflicts, models.ConflictRecord{
					Type:             models.ConflictTimeOverlap,
					ConflictWith:     b.TemplateID,
					ConflictWithName: b.TaskName,
					OverlapStart:     max(aStart, bStart),
					OverlapEnd:       min(aEnd, bEnd),
					OverlapMinutes:   overlapMin,
				})
			}
		}

		for _, depID := range a.DependsOn {
			dep, ok := byTemplateID[depID]
			if !ok {
				hasDependencyIssue = true
				conflicts = append(conflicts, models.ConflictRecord{
					Type:             models.ConflictMissingDependency,
					ConflictWith:     depID,
					Issue:            "dependency not present in schedule",
				})
				continue
			}
			if dep.ScheduledTime == "" {
				hasDependencyIssue = true
				conflicts = append(conflicts, models.ConflictRecord{
					Type:             models.ConflictMissingDependency,
					ConflictWith:     depID,
					ConflictWithName: dep.TaskName,
					Issue:            "dependency could not be scheduled",
				})
				continue
			}
			depStart, err := timeutil.ParseHHMM(dep.ScheduledTime)
			if err != nil {
				continue
			}
			depEnd := depStart + dep.DurationMinutes
			if aStart < depEnd {
				hasDependencyIssue = true
				conflicts = append(conflicts, models.ConflictRecord{
					Type:             models.ConflictDependencyViolation,
					ConflictWith:     depID,
					ConflictWithName: dep.TaskName,
					Issue:            "task starts before its dependency ends",
					TaskStart:        aStart,
					DependencyEnd:    depEnd,
					ViolationMinutes: depEnd - aStart,
				})
			}
		}

		a.Conflicts = conflicts
		a.HasConflicts = len(conflicts) > 0
		if !a.HasConflicts {
			continue
		}

		if hasDependencyIssue {
			a.ConflictType = models.ConflictDependencyViolation
			a.ConflictSeverity = models.SeverityHigh
		} else {
			a.ConflictType = models.ConflictTimeOverlap
			switch {
			case maxOverlap >= 60:
				a.ConflictSeverity = models.SeverityHigh
			case maxOverlap >= 30:
				a.ConflictSeverity = models.SeverityMedium
			default:
				a.ConflictSeverity = models.SeverityLow
			}
		}
	}
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
