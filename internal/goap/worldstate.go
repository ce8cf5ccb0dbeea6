// Package goap provides the goal-oriented action planning core: a symbolic
// world-state model, action and goal catalogs, a depth-bounded backward-chaining
// planner, and the per-guard agent that owns a plan and its lifecycle.
package goap

// WorldKey identifies one boolean fact about a guard's situation.
// The set of keys is closed; only the associated values change at runtime.
type WorldKey uint8

const (
	// Position facts.
	AtPatrolPoint WorldKey = iota
	AtLastKnownPosition
	AtTarget
	AtSafeDistance

	// Knowledge facts.
	HasTarget
	TargetVisible
	HeardSound
	AreaSearched

	// Equipment facts.
	HasWeapon
	WeaponLoaded
	HasMedKit
	HasGrenade
	HasBetterWeapon

	// Alert facts.
	IsAlert
	IsInvestigating
	FacilityAlert
	AllGuardsAlerted
	BackupCalled
	NearbyAlliesAvailable
	NearAlarmPanel

	// Cover facts.
	InCover
	CoverAvailable
	UnderFire
	BetterCoverAvailable
	InBetterCover
	SafetyImproved

	// Condition facts.
	IsInjured
	IsPanicked
	Outnumbered
	IsRetreating
	RetreatPathClear
	SafelyWithdrawing
	TacticalRetreat

	// Tactical facts.
	FlankingPosition
	TacticalAdvantage
	TargetGrouped
	SafeThrowDistance
	AlliesAdvancing
	AlliesAdvantage
	EnemySuppressed
	SuppressingTarget
	ControllingArea
	TargetsGroupedInRange

	// Weapon-range facts.
	TooClose
	TooFar
	InWeaponRange

	numWorldKeys
)

var worldKeyNames = [numWorldKeys]string{
	AtPatrolPoint:         "at_patrol_point",
	AtLastKnownPosition:   "at_last_known_position",
	AtTarget:              "at_target",
	AtSafeDistance:        "at_safe_distance",
	HasTarget:             "has_target",
	TargetVisible:         "target_visible",
	HeardSound:            "heard_sound",
	AreaSearched:          "area_searched",
	HasWeapon:             "has_weapon",
	WeaponLoaded:          "weapon_loaded",
	HasMedKit:             "has_medkit",
	HasGrenade:            "has_grenade",
	HasBetterWeapon:       "has_better_weapon",
	IsAlert:               "is_alert",
	IsInvestigating:       "is_investigating",
	FacilityAlert:         "facility_alert",
	AllGuardsAlerted:      "all_guards_alerted",
	BackupCalled:          "backup_called",
	NearbyAlliesAvailable: "nearby_allies_available",
	NearAlarmPanel:        "near_alarm_panel",
	InCover:               "in_cover",
	CoverAvailable:        "cover_available",
	UnderFire:             "under_fire",
	BetterCoverAvailable:  "better_cover_available",
	InBetterCover:         "in_better_cover",
	SafetyImproved:        "safety_improved",
	IsInjured:             "is_injured",
	IsPanicked:            "is_panicked",
	Outnumbered:           "outnumbered",
	IsRetreating:          "is_retreating",
	RetreatPathClear:      "retreat_path_clear",
	SafelyWithdrawing:     "safely_withdrawing",
	TacticalRetreat:       "tactical_retreat",
	FlankingPosition:      "flanking_position",
	TacticalAdvantage:     "tactical_advantage",
	TargetGrouped:         "target_grouped",
	SafeThrowDistance:     "safe_throw_distance",
	AlliesAdvancing:       "allies_advancing",
	AlliesAdvantage:       "allies_advantage",
	EnemySuppressed:       "enemy_suppressed",
	SuppressingTarget:     "suppressing_target",
	ControllingArea:       "controlling_area",
	TargetsGroupedInRange: "targets_grouped_in_range",
	TooClose:              "too_close",
	TooFar:                "too_far",
	InWeaponRange:         "in_weapon_range",
}

// String returns the snake_case name of the key, or "unknown".
func (k WorldKey) String() string {
	if k < numWorldKeys {
		return worldKeyNames[k]
	}
	return "unknown"
}

// NumWorldKeys is the size of the closed fact vocabulary.
const NumWorldKeys = int(numWorldKeys)

// WorldState is a sparse mapping from fact to boolean belief.
// A key absent from the map reads as false: facts never written by any
// sensor are simply unknown, which by convention means false.
type WorldState map[WorldKey]bool

// NewWorldState returns an empty belief state.
func NewWorldState() WorldState {
	return make(WorldState)
}

// Get returns the value of a fact, defaulting to false for absent keys.
func (ws WorldState) Get(k WorldKey) bool {
	return ws[k]
}

// Set records a fact.
func (ws WorldState) Set(k WorldKey, v bool) {
	ws[k] = v
}

// Matches reports whether every key present in partial has an equal value
// in ws. Keys absent from partial are "don't care".
func (ws WorldState) Matches(partial WorldState) bool {
	for k, want := range partial {
		if ws[k] != want {
			return false
		}
	}
	return true
}

// Apply writes every key of effects into ws.
func (ws WorldState) Apply(effects WorldState) {
	for k, v := range effects {
		ws[k] = v
	}
}

// Clone returns an independent copy of ws.
func (ws WorldState) Clone() WorldState {
	out := make(WorldState, len(ws))
	for k, v := range ws {
		out[k] = v
	}
	return out
}

// Names returns the state as a name→value map for logging and the API.
func (ws WorldState) Names() map[string]bool {
	out := make(map[string]bool, len(ws))
	for k, v := range ws {
		out[k.String()] = v
	}
	return out
}

// State is a convenience constructor for partial-state literals:
// goap.State(goap.HasTarget, true, goap.TargetVisible, false).
// Arguments must alternate WorldKey, bool; mismatches panic at catalog
// construction time, never during simulation.
func State(pairs ...any) WorldState {
	if len(pairs)%2 != 0 {
		panic("goap.State: odd argument count")
	}
	ws := make(WorldState, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		k, ok := pairs[i].(WorldKey)
		if !ok {
			panic("goap.State: expected WorldKey")
		}
		v, ok := pairs[i+1].(bool)
		if !ok {
			panic("goap.State: expected bool")
		}
		ws[k] = v
	}
	return ws
}
