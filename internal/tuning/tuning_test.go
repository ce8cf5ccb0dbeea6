package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if cfg.PlanningInterval != 2.0 || cfg.CombatPlanningInterval != 0.5 || cfg.MaxPlanDepth != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := writeFile(t, `
planning_interval: 3.5
action_costs:
  attack: 0.8
goal_priorities:
  patrol_area: 2.0
sensors:
  vision_range: 20
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PlanningInterval != 3.5 {
		t.Fatalf("planning_interval not overlaid: %v", cfg.PlanningInterval)
	}
	if cfg.CombatPlanningInterval != 0.5 {
		t.Fatalf("unset field must keep default: %v", cfg.CombatPlanningInterval)
	}
	if cfg.ActionCosts["attack"] != 0.8 || cfg.GoalPriorities["patrol_area"] != 2.0 {
		t.Fatalf("override maps not overlaid: %+v", cfg)
	}
	if cfg.Sensors.VisionRange != 20 || cfg.Sensors.HearingRange != 18 {
		t.Fatalf("sensors not merged: %+v", cfg.Sensors)
	}
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	for _, body := range []string{
		"planning_interval: -1\n",
		"max_plan_depth: 200\n",
		"action_costs:\n  attack: 0\n",
		"tick_rate_hz: not_a_number\n",
	} {
		if _, err := Load(writeFile(t, body)); err == nil {
			t.Fatalf("expected schema rejection for %q", body)
		}
	}
}

func TestApplyBumpsGenerationOnce(t *testing.T) {
	tn := New(Default())
	if tn.Generation() != 0 {
		t.Fatalf("fresh tuning must start at generation 0")
	}

	interval := 1.0
	gen, err := tn.Apply(Patch{
		PlanningInterval: &interval,
		ActionCosts:      map[string]float64{"attack": 0.5, "reload": 1.0},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if gen != 1 || tn.Generation() != 1 {
		t.Fatalf("one patch must bump generation once, got %d", gen)
	}

	cfg := tn.Snapshot()
	if cfg.PlanningInterval != 1.0 || cfg.ActionCosts["attack"] != 0.5 {
		t.Fatalf("patch not applied: %+v", cfg)
	}
}

func TestApplyNegativeRemovesOverride(t *testing.T) {
	cfg := Default()
	cfg.ActionCosts["attack"] = 0.5
	tn := New(cfg)

	if _, err := tn.Apply(Patch{ActionCosts: map[string]float64{"attack": -1}}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, ok := tn.Snapshot().ActionCosts["attack"]; ok {
		t.Fatalf("negative value must remove the override")
	}
}

func TestApplyRejectsBadPatch(t *testing.T) {
	tn := New(Default())
	zero := 0.0
	if _, err := tn.Apply(Patch{PlanningInterval: &zero}); err == nil {
		t.Fatalf("zero interval must be rejected")
	}
	if tn.Generation() != 0 {
		t.Fatalf("rejected patch must not bump generation")
	}
}

func TestOverridesReflectConfig(t *testing.T) {
	cfg := Default()
	cfg.ActionCosts["attack"] = 0.25
	cfg.GoalPriorities["survival"] = 20
	cfg.MaxPlanDepth = 12
	tn := New(cfg)

	ov := tn.Overrides()
	if ov.ActionCosts["attack"] != 0.25 || ov.GoalPriorities["survival"] != 20 || ov.MaxPlanDepth != 12 {
		t.Fatalf("overrides out of sync: %+v", ov)
	}

	// The returned maps are copies.
	ov.ActionCosts["attack"] = 99
	if tn.Snapshot().ActionCosts["attack"] != 0.25 {
		t.Fatalf("overrides must not alias internal state")
	}
}
