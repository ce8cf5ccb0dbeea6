package goap

// Agent owns one guard's planning state: belief map, catalogs, the current
// goal, and the plan queue with its cursor. It is purely symbolic — no
// positions, timers, or I/O — so the engine can drive it from any tick rate.
// Not safe for concurrent use; the simulation serializes access per tick.
type Agent struct {
	State   WorldState
	Actions []Action
	Goals   []Goal

	CurrentGoal string

	planner Planner
	plan    []Action
	cursor  int

	// Sparse per-agent trait adjustments, layered over runtime tuning.
	profileCosts      map[string]float64
	profilePriorities map[string]float64
}

// NewAgent returns an agent with the given catalogs and the standard
// initial belief state.
func NewAgent(actions []Action, goals []Goal) *Agent {
	return &Agent{
		State:   DefaultInitialState(),
		Actions: actions,
		Goals:   goals,
	}
}

// Fact reads one belief, absent keys reading false.
func (a *Agent) Fact(k WorldKey) bool { return a.State.Get(k) }

// SetFact writes one belief. Sensors call this every tick; writes do not
// invalidate the plan by themselves — the scheduler decides when a changed
// fact warrants a re-plan.
func (a *Agent) SetFact(k WorldKey, v bool) { a.State.Set(k, v) }

// overrides layers the agent's profile adjustments over runtime tuning.
// Profile values win: a trait rescale is computed from the tuned base, so
// by the time it lands in the map it already includes the tuning layer.
func (a *Agent) overrides(base Overrides) Overrides {
	if len(a.profileCosts) == 0 && len(a.profilePriorities) == 0 {
		return base
	}
	out := Overrides{
		ActionCosts:    make(map[string]float64, len(base.ActionCosts)+len(a.profileCosts)),
		GoalPriorities: make(map[string]float64, len(base.GoalPriorities)+len(a.profilePriorities)),
		MaxPlanDepth:   base.MaxPlanDepth,
	}
	for k, v := range base.ActionCosts {
		out.ActionCosts[k] = v
	}
	for k, v := range a.profileCosts {
		out.ActionCosts[k] = v
	}
	for k, v := range base.GoalPriorities {
		out.GoalPriorities[k] = v
	}
	for k, v := range a.profilePriorities {
		out.GoalPriorities[k] = v
	}
	return out
}

// Plan runs goal arbitration and the planner. Any previous plan is
// discarded first. Unsatisfied goals are attempted in arbitration order:
// an unplannable high-priority goal falls through to the next, so a goal
// whose actions are gated on facts the guard lacks (a panicked-flight goal
// on a calm guard, say) never starves the achievable ones below it.
// Returns true when a non-empty plan is now queued. Total failure is
// silent: CurrentGoal keeps the arbitration winner for observability and
// the guard falls back to its default behavior.
func (a *Agent) Plan(base Overrides) bool {
	a.AbortPlan()
	ov := a.overrides(base)

	ranked := RankGoals(a.State, a.Goals, ov)
	if len(ranked) == 0 {
		a.CurrentGoal = ""
		return false
	}

	for _, goal := range ranked {
		plan := a.planner.Plan(a.State, goal, a.Actions, ov)
		if len(plan) == 0 {
			continue
		}
		a.CurrentGoal = goal.Name
		a.plan = plan
		a.cursor = 0
		return true
	}
	a.CurrentGoal = ranked[0].Name
	return false
}

// HeadAction returns the next queued action without consuming it.
func (a *Agent) HeadAction() (Action, bool) {
	if a.cursor >= len(a.plan) {
		return Action{}, false
	}
	return a.plan[a.cursor], true
}

// Advance moves the cursor past the head action. Called by the executor
// when an action completes.
func (a *Agent) Advance() {
	if a.cursor < len(a.plan) {
		a.cursor++
	}
}

// AbortPlan drops the plan queue and resets the cursor. Idempotent, and
// never touches the belief state: facts outlive plans.
func (a *Agent) AbortPlan() {
	a.plan = nil
	a.cursor = 0
}

// PlanLen reports how many actions remain queued.
func (a *Agent) PlanLen() int {
	return len(a.plan) - a.cursor
}

// PlanNames returns the remaining queued action names, for logging and
// the API. Nil when no plan is queued.
func (a *Agent) PlanNames() []string {
	if a.cursor >= len(a.plan) {
		return nil
	}
	out := make([]string, 0, len(a.plan)-a.cursor)
	for _, act := range a.plan[a.cursor:] {
		out = append(out, act.Name)
	}
	return out
}
