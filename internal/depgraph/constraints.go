package depgraph

import "github.com/dayplan/dayplan/internal/constants"

// TaskInfo is the minimal per-task state ApplyConstraints needs. ScheduledEnd
// is the minute-of-day the task finishes, or -1 when the task has no
// scheduled time yet.
type TaskInfo struct {
	Status       string // mirrors models.InstanceStatus; kept as a string so depgraph has no models import cycle
	IsMandatory  bool
	ScheduledEnd int
}

// BlockReason names why a task cannot proceed as the resolver currently
// understands it.
type BlockReason string

const (
	BlockSkippedDependency    BlockReason = "skipped_dependency"
	BlockIncompleteMandatory  BlockReason = "incomplete_mandatory_dependency"
)

// ConstraintResult is ApplyConstraints' per-task verdict.
type ConstraintResult struct {
	Blocked        bool
	Reason         BlockReason
	BlockedBy      string // the dependency id responsible
	SuggestedStart int    // minute-of-day; -1 when no dependency constrains the start
}

// ApplyConstraints walks every node of g and, for each task, finds:
//   - whether any dependency was skipped (blocks the dependent)
//   - whether a mandatory dependent has a dependency that has not completed
//     (blocks the dependent)
//   - the earliest minute-of-day the task may start: max(dependency ends) +
//     ResolverDependencyBufferMin, over the dependencies that have a
//     scheduled end (whatever their status).
//
// Dependency ids without a TaskInfo entry in tasks are treated as already
// completed with no end time (keeps callers from having to special-case
// anchors with no dependencies of their own).
func ApplyConstraints(g *Graph, tasks map[string]TaskInfo) map[string]ConstraintResult {
	results := make(map[string]ConstraintResult, len(g.Nodes))

	for idx, node := range g.Nodes {
		res := ConstraintResult{SuggestedStart: -1}
		maxEnd := -1

		for _, depIdx := range node.Dependencies {
			depID := g.ID(depIdx)
			depInfo, ok := tasks[depID]
			if !ok {
				continue
			}
			if !res.Blocked && depInfo.Status == "skipped" {
				res.Blocked = true
				res.Reason = BlockSkippedDependency
				res.BlockedBy = depID
			}
			if !res.Blocked {
				dependentInfo := tasks[g.ID(idx)]
				if dependentInfo.IsMandatory && depInfo.Status != "completed" && depInfo.Status != "skipped" {
					// only mandatory dependents are blocked by an incomplete
					// (not-yet-done, not-skipped) dependency
					res.Blocked = true
					res.Reason = BlockIncompleteMandatory
					res.BlockedBy = depID
				}
			}
			if depInfo.ScheduledEnd > maxEnd {
				maxEnd = depInfo.ScheduledEnd
			}
		}

		if maxEnd >= 0 {
			res.SuggestedStart = maxEnd + constants.ResolverDependencyBufferMin
		}
		results[g.ID(idx)] = res
	}

	return results
}
