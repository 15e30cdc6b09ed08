package depgraph

import "github.com/dayplan/dayplan/internal/constants"

// SequencingSuggestion proposes an earlier legal start for a task than the
// one it was actually given, when its dependencies finish early enough to
// allow it.
type SequencingSuggestion struct {
	TaskID         string
	CurrentStart   int
	EarliestLegal  int
	SavingsMinutes int
}

// ScheduledInfo is the per-task placement OptimizeSequencing reasons about.
type ScheduledInfo struct {
	Start    int
	Duration int
}

// OptimizeSequencing compares each task's actual start against the earliest
// start its dependencies would legally allow — max(dependency start +
// dependency duration) + SafeSlotFallbackBufferMin — and reports any task
// that could start earlier. Tasks with no placed dependency are not
// reported. This is advisory only: the planner does not apply these
// suggestions.
func OptimizeSequencing(g *Graph, placements map[string]ScheduledInfo) []SequencingSuggestion {
	var out []SequencingSuggestion

	for idx, node := range g.Nodes {
		id := g.ID(idx)
		current, ok := placements[id]
		if !ok {
			continue
		}

		earliest := 0
		hasPlacedDep := false
		for _, depIdx := range node.Dependencies {
			depInfo, ok := placements[g.ID(depIdx)]
			if !ok {
				continue
			}
			hasPlacedDep = true
			depEnd := depInfo.Start + depInfo.Duration + constants.SafeSlotFallbackBufferMin
			if depEnd > earliest {
				earliest = depEnd
			}
		}

		if hasPlacedDep && earliest < current.Start {
			out = append(out, SequencingSuggestion{
				TaskID:         id,
				CurrentStart:   current.Start,
				EarliestLegal:  earliest,
				SavingsMinutes: current.Start - earliest,
			})
		}
	}

	return out
}
