package goap

// Default guard content: action costs and precondition/effect shapes are
// tuned as a set — changing one in isolation shifts which plans win, so
// runtime adjustments go through Overrides and Profile instead of edits here.

// DefaultActions returns the standard guard action catalog.
// Order matters only as the planner's tie-break among equal-cost candidates.
func DefaultActions() []Action {
	return []Action{
		// Baseline.
		{
			Name:          "patrol",
			Cost:          1.0,
			Preconditions: State(IsAlert, false, HasTarget, false),
			Effects:       State(AtPatrolPoint, true),
			Kind:          KindPatrol,
		},
		{
			Name:          "return_to_patrol",
			Cost:          1.5,
			Preconditions: State(HasTarget, false, AtPatrolPoint, false),
			Effects:       State(AtPatrolPoint, true, IsAlert, false),
			Kind:          KindPatrol,
		},
		{
			Name:          "calm_down",
			Cost:          0.5,
			Preconditions: State(HasTarget, false, TargetVisible, false),
			Effects:       State(IsAlert, false),
			Kind:          KindPatrol,
		},

		// Investigation.
		{
			Name:          "investigate",
			Cost:          2.0,
			Preconditions: State(HeardSound, true, IsAlert, false),
			Effects:       State(AtLastKnownPosition, true, IsInvestigating, true, HeardSound, false),
			Kind:          KindInvestigate,
		},
		{
			Name:          "search_area",
			Cost:          2.5,
			Preconditions: State(HeardSound, true, AtLastKnownPosition, true, AreaSearched, false),
			Effects:       State(AreaSearched, true, IsInvestigating, false, HeardSound, false),
			Kind:          KindSearchArea,
		},

		// Combat.
		{
			Name:          "attack",
			Cost:          1.0,
			Preconditions: State(HasTarget, true, TargetVisible, true, HasWeapon, true),
			Effects:       State(HasTarget, false),
			Kind:          KindAttack,
		},
		{
			Name:          "move_to_target",
			Cost:          3.0,
			Preconditions: State(HasTarget, true),
			Effects:       State(AtTarget, true),
			Kind:          KindMoveTo,
		},
		{
			Name:          "flank_target",
			Cost:          3.0,
			Preconditions: State(HasTarget, true, TargetVisible, true, FlankingPosition, false),
			Effects:       State(FlankingPosition, true, TacticalAdvantage, true, AtTarget, true),
			Kind:          KindFlank,
		},

		// Defensive.
		{
			Name:          "take_cover",
			Cost:          2.0,
			Preconditions: State(HasTarget, true, InCover, false, CoverAvailable, true),
			Effects:       State(InCover, true),
			Kind:          KindTakeCover,
		},
		{
			Name:          "retreat",
			Cost:          1.5,
			Preconditions: State(IsInjured, true, Outnumbered, true, IsRetreating, false),
			Effects:       State(AtSafeDistance, true, IsRetreating, true, IsAlert, false),
			Kind:          KindRetreat,
		},

		// Support.
		{
			Name:          "call_for_help",
			Cost:          1.5,
			Preconditions: State(HasTarget, true, BackupCalled, false, NearbyAlliesAvailable, true),
			Effects:       State(BackupCalled, true),
			Kind:          KindCallForHelp,
		},
		{
			Name:          "reload",
			Cost:          2.0,
			Preconditions: State(HasWeapon, true, WeaponLoaded, false),
			Effects:       State(WeaponLoaded, true),
			Kind:          KindReload,
		},
		{
			Name:          "tactical_reload",
			Cost:          1.5,
			Preconditions: State(HasWeapon, true, WeaponLoaded, true, HasTarget, false),
			Effects:       State(WeaponLoaded, true),
			Kind:          KindReload,
		},

		// Advanced tactics.
		{
			Name:          "use_medkit",
			Cost:          2.5,
			Preconditions: State(IsInjured, true, HasMedKit, true, InCover, true),
			Effects:       State(IsInjured, false, HasMedKit, false),
			Kind:          KindUseMedKit,
		},
		{
			Name:          "throw_grenade",
			Cost:          3.0,
			Preconditions: State(HasGrenade, true, TargetGrouped, true, SafeThrowDistance, true),
			Effects:       State(HasGrenade, false, TargetGrouped, false),
			Kind:          KindThrowGrenade,
		},
		{
			Name:          "activate_alarm",
			Cost:          2.0,
			Preconditions: State(HasTarget, true, NearAlarmPanel, true, FacilityAlert, false),
			Effects:       State(FacilityAlert, true, AllGuardsAlerted, true, BackupCalled, true),
			Kind:          KindActivateAlarm,
		},

		// Tactical movement.
		{
			Name:          "find_better_cover",
			Cost:          2.0,
			Preconditions: State(InCover, true, UnderFire, true, BetterCoverAvailable, true),
			Effects:       State(InBetterCover, true, SafetyImproved, true, UnderFire, false),
			Kind:          KindFindBetterCover,
		},
		{
			Name:          "suppressing_fire",
			Cost:          1.5,
			Preconditions: State(HasTarget, true, HasWeapon, true, AlliesAdvancing, true),
			Effects:       State(EnemySuppressed, true, AlliesAdvantage, true),
			Kind:          KindSuppressingFire,
		},
		{
			Name:          "fighting_withdrawal",
			Cost:          2.5,
			Preconditions: State(Outnumbered, true, IsInjured, true, RetreatPathClear, true),
			Effects:       State(SafelyWithdrawing, true, TacticalRetreat, true, AtSafeDistance, true),
			Kind:          KindFightingWithdrawal,
		},

		// Weapon handling.
		{
			Name:          "pickup_better_weapon",
			Cost:          1.0,
			Preconditions: State(HasBetterWeapon, true, IsPanicked, false),
			Effects:       State(HasBetterWeapon, false),
			Kind:          KindMoveTo,
		},
		{
			Name:          "panic_flee",
			Cost:          0.5,
			Preconditions: State(IsPanicked, true),
			Effects:       State(AtSafeDistance, true),
			Kind:          KindRetreat,
		},
		{
			Name:          "maintain_weapon_range",
			Cost:          1.5,
			Preconditions: State(HasTarget, true, TooClose, true),
			Effects:       State(InWeaponRange, true, TooClose, false),
			Kind:          KindMaintainDistance,
		},
		{
			Name:          "close_distance",
			Cost:          2.0,
			Preconditions: State(HasTarget, true, TooFar, true),
			Effects:       State(InWeaponRange, true, TooFar, false),
			Kind:          KindMoveTo,
		},

		// Heavy-weapon specials.
		{
			Name:          "flamethrower_area_denial",
			Cost:          2.0,
			Preconditions: State(HasTarget, true, TargetsGroupedInRange, true, InWeaponRange, true),
			Effects:       State(ControllingArea, true, TacticalAdvantage, true),
			Kind:          KindSuppressingFire,
		},
		{
			Name:          "minigun_suppression",
			Cost:          1.5,
			Preconditions: State(HasTarget, true, InWeaponRange, true, InCover, true),
			Effects:       State(SuppressingTarget, true, EnemySuppressed, true),
			Kind:          KindSuppressingFire,
		},
	}
}

// DefaultGoals returns the standard guard goal set.
func DefaultGoals() []Goal {
	return []Goal{
		{
			Name:     "panic_survival",
			Priority: 15.0,
			Desired:  State(IsPanicked, false, AtSafeDistance, true),
		},
		{
			Name:     "survival",
			Priority: 12.0,
			Desired:  State(AtSafeDistance, true, IsInjured, false),
		},
		{
			Name:     "eliminate_threat",
			Priority: 10.0,
			Desired:  State(HasTarget, false),
		},
		{
			Name:     "coordinate_defense",
			Priority: 9.0,
			Desired:  State(FacilityAlert, true, AllGuardsAlerted, true),
		},
		{
			Name:     "tactical_advantage",
			Priority: 8.0,
			Desired:  State(TacticalAdvantage, true, FlankingPosition, true),
		},
		{
			Name:     "area_control",
			Priority: 7.0,
			Desired:  State(ControllingArea, true, SuppressingTarget, true),
		},
		{
			Name:     "thorough_search",
			Priority: 6.0,
			Desired:  State(AreaSearched, true, HeardSound, false),
		},
		{
			Name:     "investigate_disturbance",
			Priority: 5.0,
			Desired:  State(HeardSound, false),
		},
		{
			Name:     "weapon_upgrade",
			Priority: 4.0,
			Desired:  State(HasBetterWeapon, false),
		},
		{
			Name:     "patrol_area",
			Priority: 1.0,
			Desired:  State(IsAlert, false),
		},
	}
}

// DefaultInitialState returns the belief state a freshly spawned guard
// starts with: armed, loaded, calm, on post.
func DefaultInitialState() WorldState {
	return State(
		HasWeapon, true,
		WeaponLoaded, true,
		IsAlert, false,
		HasTarget, false,
		TargetVisible, false,
		HeardSound, false,
		AtPatrolPoint, true,
		AtLastKnownPosition, false,
		AtTarget, false,
		IsInvestigating, false,
	)
}

// ValidateCatalog reports actions whose effects can satisfy neither any
// goal's desired key nor any action's precondition key. Such actions are
// never selected by the planner — a content mistake, not a runtime fault,
// so callers log the result and carry on.
func ValidateCatalog(actions []Action, goals []Goal) []string {
	var orphans []string
	for _, a := range actions {
		if catalogUses(a, actions, goals) {
			continue
		}
		orphans = append(orphans, a.Name)
	}
	return orphans
}

func catalogUses(a Action, actions []Action, goals []Goal) bool {
	for k, v := range a.Effects {
		for _, g := range goals {
			if want, ok := g.Desired[k]; ok && want == v {
				return true
			}
		}
		for _, other := range actions {
			if other.Name == a.Name {
				continue
			}
			if want, ok := other.Preconditions[k]; ok && want == v {
				return true
			}
		}
	}
	return false
}
