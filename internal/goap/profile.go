package goap

// Profile describes a guard's temperament as traits in [0,1]. 0.5 is
// neutral on every axis; a neutral profile produces no overrides at all.
type Profile struct {
	Aggression   float64 `json:"aggression" yaml:"aggression"`
	Intelligence float64 `json:"intelligence" yaml:"intelligence"`
	Teamwork     float64 `json:"teamwork" yaml:"teamwork"`

	// FearThreshold is the health fraction below which the guard panics.
	FearThreshold float64 `json:"fear_threshold" yaml:"fear_threshold"`
}

// DefaultProfile is neutral on every trait.
func DefaultProfile() Profile {
	return Profile{Aggression: 0.5, Intelligence: 0.5, Teamwork: 0.5, FearThreshold: 0.3}
}

// AggressiveProfile favors direct engagement over caution.
func AggressiveProfile() Profile {
	return Profile{Aggression: 0.85, Intelligence: 0.4, Teamwork: 0.4, FearThreshold: 0.15}
}

// CautiousProfile favors cover, retreat, and calling for backup.
func CautiousProfile() Profile {
	return Profile{Aggression: 0.25, Intelligence: 0.6, Teamwork: 0.7, FearThreshold: 0.45}
}

// TacticianProfile favors flanking and coordinated play.
func TacticianProfile() Profile {
	return Profile{Aggression: 0.5, Intelligence: 0.9, Teamwork: 0.8, FearThreshold: 0.3}
}

// factor maps a trait to a cost/priority scale: 1.0 at neutral, up to 1.5
// at the top of the range, down to 0.5 at the bottom.
func factor(trait float64) float64 {
	return 0.5 + clamp01(trait)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Trait → catalog mapping. Costs divide by a factor when the trait makes
// the action more attractive, multiply when it makes it less.
var (
	aggressionCheapens = []string{"attack", "suppressing_fire", "close_distance"}
	aggressionRaises   = []string{"take_cover", "retreat", "find_better_cover"}
	teamworkCheapens   = []string{"call_for_help"}
	intellectCheapens  = []string{"flank_target"}
)

// ApplyProfile rescales the agent's effective costs and priorities from
// the profile's traits. Scales are computed from the tuned base values in
// base and stored as sparse absolute overrides; the shared catalogs are
// never mutated. Any in-flight plan is aborted so the next planning pass
// sees the new economics. A neutral profile clears all overrides.
func (a *Agent) ApplyProfile(p Profile, base Overrides) {
	a.profileCosts = make(map[string]float64)
	a.profilePriorities = make(map[string]float64)

	baseCost := func(name string) (float64, bool) {
		for _, act := range a.Actions {
			if act.Name == name {
				return base.ActionCost(act), true
			}
		}
		return 0, false
	}
	setCost := func(names []string, scale float64) {
		if scale == 1.0 {
			return
		}
		for _, n := range names {
			if c, ok := baseCost(n); ok {
				a.profileCosts[n] = c * scale
			}
		}
	}

	ag := factor(p.Aggression)
	setCost(aggressionCheapens, 1/ag)
	setCost(aggressionRaises, ag)
	setCost(teamworkCheapens, 1/factor(p.Teamwork))
	setCost(intellectCheapens, 1/factor(p.Intelligence))

	setPriority := func(name string, scale float64) {
		if scale == 1.0 {
			return
		}
		for _, g := range a.Goals {
			if g.Name == name {
				a.profilePriorities[name] = base.GoalPriority(g) * scale
				return
			}
		}
	}
	setPriority("eliminate_threat", ag)
	setPriority("panic_survival", 2.0-ag)
	setPriority("survival", 2.0-ag)
	setPriority("tactical_advantage", factor(p.Intelligence))

	if len(a.profileCosts) == 0 {
		a.profileCosts = nil
	}
	if len(a.profilePriorities) == 0 {
		a.profilePriorities = nil
	}
	a.AbortPlan()
}
