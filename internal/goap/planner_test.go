package goap

import "testing"

// checkPlanSound verifies the two core plan properties: every step's
// preconditions hold in the state produced by its predecessors, and the
// final state satisfies the goal on every key it specifies.
func checkPlanSound(t *testing.T, start WorldState, goal Goal, plan []Action) {
	t.Helper()
	sim := start.Clone()
	for i, a := range plan {
		if !sim.Matches(a.Preconditions) {
			t.Fatalf("step %d (%s): preconditions %v not met in %v", i, a.Name, a.Preconditions.Names(), sim.Names())
		}
		sim.Apply(a.Effects)
	}
	if !sim.Matches(goal.Desired) {
		t.Fatalf("plan for %s does not converge: want %v, got %v", goal.Name, goal.Desired.Names(), sim.Names())
	}
}

func planNames(plan []Action) []string {
	out := make([]string, len(plan))
	for i, a := range plan {
		out[i] = a.Name
	}
	return out
}

func findGoal(t *testing.T, name string) Goal {
	t.Helper()
	for _, g := range DefaultGoals() {
		if g.Name == name {
			return g
		}
	}
	t.Fatalf("no goal %q in default set", name)
	return Goal{}
}

func TestPlanAttackWhenArmed(t *testing.T) {
	state := State(HasTarget, true, TargetVisible, true, HasWeapon, true, WeaponLoaded, false)
	goal := findGoal(t, "eliminate_threat")

	plan := Planner{}.Plan(state, goal, DefaultActions(), Overrides{})
	if len(plan) != 1 || plan[0].Name != "attack" {
		t.Fatalf("want [attack], got %v", planNames(plan))
	}
	checkPlanSound(t, state, goal, plan)
}

// strictActions makes attack additionally require a loaded weapon,
// forcing the planner to chain a reload in front of it.
func strictActions() []Action {
	actions := DefaultActions()
	for i, a := range actions {
		if a.Name == "attack" {
			pre := a.Preconditions.Clone()
			pre.Set(WeaponLoaded, true)
			actions[i].Preconditions = pre
		}
	}
	return actions
}

func TestPlanReloadThenAttack(t *testing.T) {
	state := State(HasTarget, true, TargetVisible, true, HasWeapon, true, WeaponLoaded, false)
	goal := findGoal(t, "eliminate_threat")

	plan := Planner{}.Plan(state, goal, strictActions(), Overrides{})
	want := []string{"reload", "attack"}
	got := planNames(plan)
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("want %v, got %v", want, got)
	}
	checkPlanSound(t, state, goal, plan)
}

func TestPlanRetreatCoverMedkit(t *testing.T) {
	state := State(
		HasTarget, true,
		IsInjured, true,
		Outnumbered, true,
		HasMedKit, true,
		CoverAvailable, true,
		HasWeapon, true,
	)
	goal := findGoal(t, "survival")

	plan := Planner{}.Plan(state, goal, DefaultActions(), Overrides{})
	want := []string{"retreat", "take_cover", "use_medkit"}
	got := planNames(plan)
	if len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Fatalf("want %v, got %v", want, got)
	}
	checkPlanSound(t, state, goal, plan)
}

func TestPlanEmptyCatalog(t *testing.T) {
	goal := findGoal(t, "eliminate_threat")
	state := State(HasTarget, true)

	if plan := (Planner{}).Plan(state, goal, nil, Overrides{}); plan != nil {
		t.Fatalf("empty catalog must yield no plan, got %v", planNames(plan))
	}
}

func TestPlanGoalAlreadySatisfied(t *testing.T) {
	goal := findGoal(t, "eliminate_threat")

	if plan := (Planner{}).Plan(NewWorldState(), goal, DefaultActions(), Overrides{}); plan != nil {
		t.Fatalf("satisfied goal must yield no plan, got %v", planNames(plan))
	}
}

func TestPlanUnreachableGoal(t *testing.T) {
	// Nothing in the catalog produces IsPanicked=false, so a panicked
	// guard cannot plan its way out of this goal.
	state := State(IsPanicked, true)
	goal := findGoal(t, "panic_survival")

	if plan := (Planner{}).Plan(state, goal, DefaultActions(), Overrides{}); plan != nil {
		t.Fatalf("unreachable goal must yield no plan, got %v", planNames(plan))
	}
}

// chainActions builds a strictly linear catalog: step_i requires the fact
// produced by step_{i-1}. Planning the full chain needs roughly two search
// iterations per link, so a six-link chain overflows the default bound.
func chainActions() ([]Action, Goal) {
	keys := []WorldKey{AtPatrolPoint, AtTarget, InCover, HasGrenade, UnderFire, ControllingArea}
	actions := make([]Action, len(keys))
	for i, k := range keys {
		a := Action{Name: "step_" + string(rune('a'+i)), Cost: 1.0, Effects: State(k, true)}
		if i == 0 {
			a.Preconditions = NewWorldState()
		} else {
			a.Preconditions = State(keys[i-1], true)
		}
		actions[i] = a
	}
	goal := Goal{Name: "deep", Priority: 1.0, Desired: State(keys[len(keys)-1], true)}
	return actions, goal
}

func TestPlanDepthBound(t *testing.T) {
	actions, goal := chainActions()

	if plan := (Planner{}).Plan(NewWorldState(), goal, actions, Overrides{}); plan != nil {
		t.Fatalf("chain should exceed default depth bound, got %v", planNames(plan))
	}

	plan := Planner{}.Plan(NewWorldState(), goal, actions, Overrides{MaxPlanDepth: 30})
	if len(plan) != len(actions) {
		t.Fatalf("want %d-step chain with raised bound, got %v", len(actions), planNames(plan))
	}
	checkPlanSound(t, NewWorldState(), goal, plan)
	if len(plan) > 30 {
		t.Fatalf("plan exceeds depth bound")
	}
}

func TestPlanRepairsRegressedGoalKey(t *testing.T) {
	// overload satisfies the open key but regresses HasWeapon, which held
	// at the start and so never entered the open set. The planner must
	// chain rearm to restore it rather than accept a non-converging plan.
	actions := []Action{
		{Name: "overload", Cost: 1.0, Preconditions: NewWorldState(), Effects: State(WeaponLoaded, true, HasWeapon, false)},
		{Name: "rearm", Cost: 1.0, Preconditions: NewWorldState(), Effects: State(HasWeapon, true)},
	}
	goal := Goal{Name: "ready", Priority: 1.0, Desired: State(HasWeapon, true, WeaponLoaded, true)}
	state := State(HasWeapon, true)

	plan := Planner{}.Plan(state, goal, actions, Overrides{})
	if len(plan) != 2 || plan[0].Name != "overload" || plan[1].Name != "rearm" {
		t.Fatalf("want [overload rearm], got %v", planNames(plan))
	}
	checkPlanSound(t, state, goal, plan)

	// With nothing able to restore HasWeapon, there is no converging plan.
	if plan := (Planner{}).Plan(state, goal, actions[:1], Overrides{}); plan != nil {
		t.Fatalf("accepted non-converging plan %v", planNames(plan))
	}
}

func TestPlanCostTieBreaksOnCatalogOrder(t *testing.T) {
	actions := []Action{
		{Name: "first", Cost: 1.0, Preconditions: NewWorldState(), Effects: State(InCover, true)},
		{Name: "second", Cost: 1.0, Preconditions: NewWorldState(), Effects: State(InCover, true)},
	}
	goal := Goal{Name: "covered", Priority: 1.0, Desired: State(InCover, true)}

	plan := Planner{}.Plan(NewWorldState(), goal, actions, Overrides{})
	if len(plan) != 1 || plan[0].Name != "first" {
		t.Fatalf("equal cost must keep catalog order, got %v", planNames(plan))
	}
}

func TestPlanHonorsCostOverrides(t *testing.T) {
	actions := []Action{
		{Name: "first", Cost: 1.0, Preconditions: NewWorldState(), Effects: State(InCover, true)},
		{Name: "second", Cost: 2.0, Preconditions: NewWorldState(), Effects: State(InCover, true)},
	}
	goal := Goal{Name: "covered", Priority: 1.0, Desired: State(InCover, true)}
	ov := Overrides{ActionCosts: map[string]float64{"first": 5.0}}

	plan := Planner{}.Plan(NewWorldState(), goal, actions, ov)
	if len(plan) != 1 || plan[0].Name != "second" {
		t.Fatalf("override should flip the winner, got %v", planNames(plan))
	}
}
