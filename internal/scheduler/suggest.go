package scheduler

import (
	"sort"

	"github.com/dayplan/dayplan/internal/constants"
	"github.com/dayplan/dayplan/internal/models"
	"github.com/dayplan/dayplan/internal/timeutil"
)

// SlotSuggestion is one scored candidate start time returned by SuggestSlots,
// a "smart suggestion" API distinct from the core slotter, used by the
// CLI/TUI to offer the user a choice of times.
type SlotSuggestion struct {
	StartMinutes int
	StartTime    string
	Score        int
}

// SuggestSlots finds up to maxSuggestions scored candidate starts for a
// task of the given duration within window, avoiding overlap with already
// scheduled tasks.
func SuggestSlots(window models.Window, durationMinutes, granularity, maxSuggestions int, scheduled map[string]*models.ScheduledTask) []SlotSuggestion {
	if granularity <= 0 {
		granularity = constants.SlotGranularityMin
	}
	if maxSuggestions <= 0 {
		maxSuggestions = constants.DefaultMaxSuggestions
	}

	placed := placedIntervals(scheduled)

	var candidates []SlotSuggestion
	for start := window.Start; start+durationMinutes <= window.End; start += granularity {
		end := start + durationMinutes
		if overlapsAnyInterval(start, end, placed) {
			continue
		}
		formatted, err := timeutil.FormatHHMM(start)
		if err != nil {
			continue
		}
		candidates = append(candidates, SlotSuggestion{
			StartMinutes: start,
			StartTime:    formatted,
			Score:        scoreSlot(start, end, placed),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })
	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	return candidates
}

type interval struct{ start, end int }

func placedIntervals(scheduled map[string]*models.ScheduledTask) []interval {
	var out []interval
	for _, st := range scheduled {
		if st.ScheduledTime == "" {
			continue
		}
		s, err := timeutil.ParseHHMM(st.ScheduledTime)
		if err != nil {
			continue
		}
		out = append(out, interval{start: s, end: s + st.DurationMinutes})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

func overlapsAnyInterval(start, end int, placed []interval) bool {
	for _, iv := range placed {
		if timeutil.Overlaps(start, end, iv.start, iv.end) {
			return true
		}
	}
	return false
}

// scoreSlot scores a candidate slot: base 100; hour-of-day bonuses/penalties;
// a bonus for leaving a gap before the next task; a bonus for landing on a
// quarter-hour boundary.
func scoreSlot(start, end int, placed []interval) int {
	score := 100
	hour := start / 60

	switch {
	case hour >= 9 && hour < 17:
		score += 20
	case hour >= 8 && hour < 19:
		score += 10
	}
	if hour < 7 || hour > 21 {
		score -= 30
	}

	if gap, ok := gapToNext(end, placed); ok {
		switch {
		case gap > 30:
			score += 15
		case gap > 15:
			score += 5
		}
	}

	if start%15 == 0 {
		score += 5
	}

	return score
}

// gapToNext returns the number of minutes between end and the start of the
// next already-scheduled task after it, if any.
func gapToNext(end int, placed []interval) (int, bool) {
	best := -1
	for _, iv := range placed {
		if iv.start >= end {
			if best == -1 || iv.start < best {
				best = iv.start
			}
		}
	}
	if best == -1 {
		return 0, false
	}
	return best - end, true
}
