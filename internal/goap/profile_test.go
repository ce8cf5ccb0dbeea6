package goap

import "testing"

func TestNeutralProfileProducesNoOverrides(t *testing.T) {
	a := NewAgent(DefaultActions(), DefaultGoals())
	a.ApplyProfile(DefaultProfile(), Overrides{})

	if a.profileCosts != nil || a.profilePriorities != nil {
		t.Fatalf("neutral profile must leave the base economics untouched: %v %v", a.profileCosts, a.profilePriorities)
	}
}

func TestAggressiveProfileShiftsCosts(t *testing.T) {
	a := NewAgent(DefaultActions(), DefaultGoals())
	a.ApplyProfile(AggressiveProfile(), Overrides{})
	ov := a.overrides(Overrides{})

	attack := ov.ActionCosts["attack"]
	if attack <= 0 || attack >= 1.0 {
		t.Fatalf("aggression should cheapen attack below base 1.0, got %v", attack)
	}
	cover := ov.ActionCosts["take_cover"]
	if cover <= 2.0 {
		t.Fatalf("aggression should raise take_cover above base 2.0, got %v", cover)
	}
}

func TestProfileShiftsArbitration(t *testing.T) {
	// In a firefight the neutral ranking is led by the survival goals;
	// high aggression devalues them below eliminate_threat.
	state := State(HasTarget, true, TargetVisible, true, HasWeapon, true, AtSafeDistance, false)

	neutral := NewAgent(DefaultActions(), DefaultGoals())
	neutral.State = state.Clone()
	ranked := RankGoals(neutral.State, neutral.Goals, neutral.overrides(Overrides{}))
	if len(ranked) == 0 || ranked[0].Name != "panic_survival" {
		t.Fatalf("neutral ranking should lead with panic_survival, got %v", ranked)
	}

	hot := NewAgent(DefaultActions(), DefaultGoals())
	hot.State = state.Clone()
	hot.ApplyProfile(AggressiveProfile(), Overrides{})
	ranked = RankGoals(hot.State, hot.Goals, hot.overrides(Overrides{}))
	if len(ranked) == 0 || ranked[0].Name != "eliminate_threat" {
		t.Fatalf("aggressive ranking should lead with eliminate_threat, got %v", ranked)
	}
}

func TestApplyProfileAbortsPlan(t *testing.T) {
	a := combatAgent()
	if !a.Plan(Overrides{}) {
		t.Fatalf("expected a plan")
	}
	a.ApplyProfile(CautiousProfile(), Overrides{})
	if a.PlanLen() != 0 {
		t.Fatalf("profile change must abort the in-flight plan")
	}
}

func TestProfileScalesFromTunedBase(t *testing.T) {
	base := Overrides{ActionCosts: map[string]float64{"attack": 4.0}}
	a := NewAgent(DefaultActions(), DefaultGoals())
	a.ApplyProfile(AggressiveProfile(), base)
	ov := a.overrides(base)

	got := ov.ActionCosts["attack"]
	if got >= 4.0 || got < 2.0 {
		t.Fatalf("profile must rescale the tuned base 4.0, got %v", got)
	}
}

func TestTraitClamping(t *testing.T) {
	a := NewAgent(DefaultActions(), DefaultGoals())
	a.ApplyProfile(Profile{Aggression: 7.5, Intelligence: -3, Teamwork: 0.5, FearThreshold: 0.3}, Overrides{})
	ov := a.overrides(Overrides{})

	// Aggression clamps to 1.0, a factor of 1.5.
	if got := ov.ActionCosts["attack"]; got < 0.66 || got > 0.67 {
		t.Fatalf("clamped aggression should give attack cost 1/1.5, got %v", got)
	}
	// Intelligence clamps to 0, a factor of 0.5: flanking doubles in cost.
	if got := ov.ActionCosts["flank_target"]; got != 6.0 {
		t.Fatalf("clamped intelligence should double flank_target to 6.0, got %v", got)
	}
}
