package goap

// ActionKind is the closed set of concrete behaviors an action can map to.
// The executor dispatches on this tag; action names are identifiers for
// cost/priority overrides only and are never used for dispatch.
type ActionKind uint8

const (
	KindPatrol ActionKind = iota
	KindMoveTo
	KindAttack
	KindInvestigate
	KindSearchArea
	KindReload
	KindCallForHelp
	KindTakeCover
	KindRetreat
	KindFlank
	KindUseMedKit
	KindThrowGrenade
	KindActivateAlarm
	KindFindBetterCover
	KindSuppressingFire
	KindFightingWithdrawal
	KindMaintainDistance
)

var actionKindNames = [...]string{
	KindPatrol:             "patrol",
	KindMoveTo:             "move_to",
	KindAttack:             "attack",
	KindInvestigate:        "investigate",
	KindSearchArea:         "search_area",
	KindReload:             "reload",
	KindCallForHelp:        "call_for_help",
	KindTakeCover:          "take_cover",
	KindRetreat:            "retreat",
	KindFlank:              "flank",
	KindUseMedKit:          "use_medkit",
	KindThrowGrenade:       "throw_grenade",
	KindActivateAlarm:      "activate_alarm",
	KindFindBetterCover:    "find_better_cover",
	KindSuppressingFire:    "suppressing_fire",
	KindFightingWithdrawal: "fighting_withdrawal",
	KindMaintainDistance:   "maintain_distance",
}

func (k ActionKind) String() string {
	if int(k) < len(actionKindNames) {
		return actionKindNames[k]
	}
	return "unknown"
}

// Action is one named, costed unit of guard behavior. Immutable after
// catalog construction: per-guard and runtime cost adjustments are sparse
// overrides applied at lookup time, never mutations of the record.
type Action struct {
	Name          string
	Cost          float64 // Base cost; lower is preferred. Always positive.
	Preconditions WorldState
	Effects       WorldState
	Kind          ActionKind
}

// Goal is a named, prioritized partial target state.
type Goal struct {
	Name     string
	Priority float64 // Base priority; higher wins arbitration.
	Desired  WorldState
}

// Overrides carries runtime tuning applied on top of catalog base values.
// Nil maps mean no overrides. A zero Overrides is valid.
type Overrides struct {
	ActionCosts    map[string]float64 // action name → absolute cost
	GoalPriorities map[string]float64 // goal name → absolute priority
	MaxPlanDepth   int                // 0 = planner default
}

// ActionCost resolves the effective base cost of an action under o.
func (o Overrides) ActionCost(a Action) float64 {
	if c, ok := o.ActionCosts[a.Name]; ok {
		return c
	}
	return a.Cost
}

// GoalPriority resolves the effective base priority of a goal under o.
func (o Overrides) GoalPriority(g Goal) float64 {
	if p, ok := o.GoalPriorities[g.Name]; ok {
		return p
	}
	return g.Priority
}
