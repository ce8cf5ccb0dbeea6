// Package tuning holds the runtime-adjustable simulation parameters:
// planner economics (action cost and goal priority overrides), planning
// intervals, and sensor ranges. A generation counter tracks mutations so
// each guard can detect that its plan was built against stale numbers.
package tuning

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/notarikon-nz/subversive-sub001/internal/goap"
)

// Config is the full tunable parameter set. The zero value is not usable;
// start from Default and overlay a YAML file.
type Config struct {
	TickRateHz int `yaml:"tick_rate_hz" json:"tick_rate_hz"`

	// Seconds between scheduled re-plan attempts. The combat interval
	// applies while a guard has a live target.
	PlanningInterval       float64 `yaml:"planning_interval" json:"planning_interval"`
	CombatPlanningInterval float64 `yaml:"combat_planning_interval" json:"combat_planning_interval"`

	MaxPlanDepth int `yaml:"max_plan_depth" json:"max_plan_depth"`

	// Sparse absolute overrides of catalog base values.
	ActionCosts    map[string]float64 `yaml:"action_costs" json:"action_costs"`
	GoalPriorities map[string]float64 `yaml:"goal_priorities" json:"goal_priorities"`

	Sensors Sensors `yaml:"sensors" json:"sensors"`
}

// Sensors groups perception thresholds shared by every guard.
type Sensors struct {
	VisionRange   float64 `yaml:"vision_range" json:"vision_range"`
	VisionFOVDeg  float64 `yaml:"vision_fov_deg" json:"vision_fov_deg"`
	HearingRange  float64 `yaml:"hearing_range" json:"hearing_range"`
	DangerRadius  float64 `yaml:"danger_radius" json:"danger_radius"`
	CoverRadius   float64 `yaml:"cover_radius" json:"cover_radius"`
	AlarmRadius   float64 `yaml:"alarm_radius" json:"alarm_radius"`
	InjuredBelow  float64 `yaml:"injured_below" json:"injured_below"`
	OutnumberedAt int     `yaml:"outnumbered_at" json:"outnumbered_at"`
}

// Default returns the shipped parameter set.
func Default() Config {
	return Config{
		TickRateHz:             10,
		PlanningInterval:       2.0,
		CombatPlanningInterval: 0.5,
		MaxPlanDepth:           goap.DefaultMaxPlanDepth,
		ActionCosts:            map[string]float64{},
		GoalPriorities:         map[string]float64{},
		Sensors: Sensors{
			VisionRange:   12.0,
			VisionFOVDeg:  110.0,
			HearingRange:  18.0,
			DangerRadius:  6.0,
			CoverRadius:   4.0,
			AlarmRadius:   2.0,
			InjuredBelow:  0.6,
			OutnumberedAt: 2,
		},
	}
}

// Load reads a YAML tuning file, validates it against the embedded schema,
// and overlays it onto the defaults. A missing file is not an error: the
// defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	// Validate the loose document first so schema errors name the field
	// rather than surfacing as type mismatches during decode.
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return cfg, fmt.Errorf("tuning %s: %w", path, err)
	}
	if err := validate(doc); err != nil {
		return cfg, fmt.Errorf("tuning %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("tuning %s: %w", path, err)
	}
	if cfg.ActionCosts == nil {
		cfg.ActionCosts = map[string]float64{}
	}
	if cfg.GoalPriorities == nil {
		cfg.GoalPriorities = map[string]float64{}
	}
	return cfg, nil
}

// Tuning is the live, shared parameter store. Reads take a snapshot;
// every mutation bumps the generation counter, which the scheduler uses
// to abort plans built under the previous economics.
type Tuning struct {
	mu  sync.RWMutex
	cfg Config
	gen atomic.Uint64
}

func New(cfg Config) *Tuning {
	return &Tuning{cfg: cfg}
}

// Generation returns the current mutation counter.
func (t *Tuning) Generation() uint64 {
	return t.gen.Load()
}

// Snapshot returns an independent copy of the current configuration.
func (t *Tuning) Snapshot() Config {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cfg := t.cfg
	cfg.ActionCosts = copyMap(t.cfg.ActionCosts)
	cfg.GoalPriorities = copyMap(t.cfg.GoalPriorities)
	return cfg
}

// Overrides renders the current configuration as planner overrides.
func (t *Tuning) Overrides() goap.Overrides {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return goap.Overrides{
		ActionCosts:    copyMap(t.cfg.ActionCosts),
		GoalPriorities: copyMap(t.cfg.GoalPriorities),
		MaxPlanDepth:   t.cfg.MaxPlanDepth,
	}
}

// Patch is a partial update; nil fields are left untouched. Map entries
// overlay per key; a negative value removes the override.
type Patch struct {
	PlanningInterval       *float64           `json:"planning_interval,omitempty"`
	CombatPlanningInterval *float64           `json:"combat_planning_interval,omitempty"`
	MaxPlanDepth           *int               `json:"max_plan_depth,omitempty"`
	ActionCosts            map[string]float64 `json:"action_costs,omitempty"`
	GoalPriorities         map[string]float64 `json:"goal_priorities,omitempty"`
}

// Apply merges a patch and bumps the generation exactly once. Returns the
// new generation value.
func (t *Tuning) Apply(p Patch) (uint64, error) {
	if err := p.check(); err != nil {
		return t.gen.Load(), err
	}

	t.mu.Lock()
	if p.PlanningInterval != nil {
		t.cfg.PlanningInterval = *p.PlanningInterval
	}
	if p.CombatPlanningInterval != nil {
		t.cfg.CombatPlanningInterval = *p.CombatPlanningInterval
	}
	if p.MaxPlanDepth != nil {
		t.cfg.MaxPlanDepth = *p.MaxPlanDepth
	}
	for name, cost := range p.ActionCosts {
		if cost < 0 {
			delete(t.cfg.ActionCosts, name)
			continue
		}
		t.cfg.ActionCosts[name] = cost
	}
	for name, prio := range p.GoalPriorities {
		if prio < 0 {
			delete(t.cfg.GoalPriorities, name)
			continue
		}
		t.cfg.GoalPriorities[name] = prio
	}
	t.mu.Unlock()

	return t.gen.Add(1), nil
}

func (p Patch) check() error {
	if p.PlanningInterval != nil && *p.PlanningInterval <= 0 {
		return fmt.Errorf("planning_interval must be positive")
	}
	if p.CombatPlanningInterval != nil && *p.CombatPlanningInterval <= 0 {
		return fmt.Errorf("combat_planning_interval must be positive")
	}
	if p.MaxPlanDepth != nil && (*p.MaxPlanDepth < 1 || *p.MaxPlanDepth > 64) {
		return fmt.Errorf("max_plan_depth must be in 1..64")
	}
	for name, cost := range p.ActionCosts {
		if cost == 0 {
			return fmt.Errorf("action cost for %q must be positive (negative removes the override)", name)
		}
	}
	return nil
}

func copyMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
