package goap

// DefaultMaxPlanDepth bounds the planner's search. Plans in practice are
// one to four actions; anything deeper is a symptom of a catalog cycle.
const DefaultMaxPlanDepth = 10

// Planner performs depth-bounded backward chaining over an action catalog.
// The zero value is ready to use with DefaultMaxPlanDepth.
type Planner struct {
	MaxDepth int
}

func (p Planner) maxDepth(ov Overrides) int {
	if ov.MaxPlanDepth > 0 {
		return ov.MaxPlanDepth
	}
	if p.MaxDepth > 0 {
		return p.MaxDepth
	}
	return DefaultMaxPlanDepth
}

// Plan searches for an ordered action sequence that transforms state into
// one satisfying goal.Desired. Costs come from ov, falling back to catalog
// base costs. Returns nil when the goal is already satisfied, the catalog
// is empty, or no sequence exists within the depth bound. A nil result is
// not an error: unplannable goals are an expected runtime condition.
//
// The search works backward from the goal's unsatisfied keys but builds
// the plan forward: each iteration either executes the cheapest candidate
// whose preconditions already hold in the simulated state, or adopts the
// cheapest candidate's unmet preconditions as new subgoals. Every emitted
// step is therefore executable in the state produced by its predecessors,
// and a plan is only accepted when its simulated end state satisfies every
// key the goal specifies — including keys that held at the start and were
// regressed by a committed action's side effect.
func (p Planner) Plan(state WorldState, goal Goal, actions []Action, ov Overrides) []Action {
	remaining := NewWorldState()
	for k, want := range goal.Desired {
		if state.Get(k) != want {
			remaining[k] = want
		}
	}
	if len(remaining) == 0 {
		return nil
	}

	sim := state.Clone()
	var plan []Action

	for depth := 0; depth < p.maxDepth(ov); depth++ {
		if len(remaining) == 0 {
			if sim.Matches(goal.Desired) {
				return plan
			}
			// A committed action's side effect flipped a goal key that
			// held at the start and so never entered the open set.
			// Reopen the regressed keys and keep chaining.
			for k, want := range goal.Desired {
				if sim.Get(k) != want {
					remaining[k] = want
				}
			}
		}

		// Candidates: actions whose effects satisfy at least one open key.
		var candidates []Action
		for _, a := range actions {
			if satisfiesAny(a, remaining) {
				candidates = append(candidates, a)
			}
		}
		if len(candidates) == 0 {
			return nil
		}

		if a, ok := cheapest(candidates, sim, ov, true); ok {
			// Executable now: commit it and advance the simulated state.
			sim.Apply(a.Effects)
			plan = append(plan, a)
			for k, want := range remaining {
				if sim.Get(k) == want {
					delete(remaining, k)
				}
			}
			continue
		}

		// Nothing executable: chain backward through the cheapest
		// candidate's unmet preconditions.
		a, _ := cheapest(candidates, sim, ov, false)
		grew := false
		for k, want := range a.Preconditions {
			if sim.Get(k) == want {
				continue
			}
			if _, open := remaining[k]; open {
				continue
			}
			remaining[k] = want
			grew = true
		}
		if !grew {
			// The cheapest path needs a precondition already on the open
			// list that no action can produce, or contradicts one. Dead end.
			return nil
		}
	}

	if len(remaining) == 0 && sim.Matches(goal.Desired) {
		return plan
	}
	return nil
}

func satisfiesAny(a Action, remaining WorldState) bool {
	for k, want := range remaining {
		if v, ok := a.Effects[k]; ok && v == want {
			return true
		}
	}
	return false
}

// cheapest returns the lowest-cost candidate, filtered to actions whose
// preconditions hold in sim when executableOnly is set. Cost ties keep the
// earlier catalog entry.
func cheapest(candidates []Action, sim WorldState, ov Overrides, executableOnly bool) (Action, bool) {
	var (
		best  Action
		found bool
	)
	for _, a := range candidates {
		if executableOnly && !sim.Matches(a.Preconditions) {
			continue
		}
		if !found || ov.ActionCost(a) < ov.ActionCost(best) {
			best, found = a, true
		}
	}
	return best, found
}
