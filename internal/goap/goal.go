package goap

import "sort"

// RankGoals returns the goals whose desired state is not already satisfied,
// ordered by descending effective priority with lexical name tie-break, so
// arbitration is deterministic regardless of catalog declaration order.
func RankGoals(state WorldState, goals []Goal, ov Overrides) []Goal {
	var open []Goal
	for _, g := range goals {
		if !state.Matches(g.Desired) {
			open = append(open, g)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		pi, pj := ov.GoalPriority(open[i]), ov.GoalPriority(open[j])
		if pi != pj {
			return pi > pj
		}
		return open[i].Name < open[j].Name
	})
	return open
}

// SelectGoal picks the top-ranked unsatisfied goal. Returns false when
// every goal is satisfied or the goal set is empty.
func SelectGoal(state WorldState, goals []Goal, ov Overrides) (Goal, bool) {
	ranked := RankGoals(state, goals, ov)
	if len(ranked) == 0 {
		return Goal{}, false
	}
	return ranked[0], true
}
