package engine

import (
	"strings"
	"testing"

	"github.com/notarikon-nz/subversive-sub001/internal/entropy"
	"github.com/notarikon-nz/subversive-sub001/internal/goap"
	"github.com/notarikon-nz/subversive-sub001/internal/tuning"
	"github.com/notarikon-nz/subversive-sub001/internal/world"
)

const testDT = 0.1

// testMap builds a single open 20x12 room with one cover tile and one
// alarm panel, bypassing procedural generation for determinism.
func testMap() *world.Map {
	m := world.NewMap(20, 12)
	for y := 1; y < 11; y++ {
		for x := 1; x < 19; x++ {
			m.Set(world.TileCoord{X: x, Y: y}, world.TileFloor)
		}
	}
	m.Set(world.TileCoord{X: 10, Y: 8}, world.TileCover)
	m.CoverPoints = []world.TileCoord{{X: 10, Y: 8}}
	m.Set(world.TileCoord{X: 2, Y: 2}, world.TileAlarmPanel)
	m.AlarmPanels = []world.TileCoord{{X: 2, Y: 2}}
	return m
}

func testGuard(id GuardID, pos world.Vec2) *Guard {
	return NewGuard(id, pos, nil, WeaponRifle, goap.DefaultProfile(), goap.Overrides{})
}

func testSim(guards []*Guard, intruders []*Intruder) *Simulation {
	return NewSimulation(testMap(), guards, intruders, tuning.New(tuning.Default()), entropy.NewSource(7))
}

func runTicks(s *Simulation, n int) {
	for i := 1; i <= n; i++ {
		s.TickStep(uint64(i), testDT)
	}
}

func TestGuardEngagesIntruder(t *testing.T) {
	g := testGuard(1, world.Vec2{X: 5.5, Y: 5.5})
	in := NewIntruder(1, []world.Vec2{{X: 9.5, Y: 5.5}})
	in.Health = 0.25
	s := testSim([]*Guard{g}, []*Intruder{in})

	runTicks(s, 100)

	planned := false
	for _, e := range s.Events {
		if e.Category == "plan" && strings.Contains(e.Description, "eliminate_threat") {
			planned = true
			break
		}
	}
	if !planned {
		t.Fatalf("no plan for eliminate_threat in the event log")
	}
	if in.Alive {
		t.Fatalf("intruder survived 10s at health 0.25 against a rifle")
	}
	if !g.Alive {
		t.Fatalf("guard died against a near-dead intruder")
	}
	if s.Stats.PlansBuilt == 0 {
		t.Fatalf("no plans built")
	}
	if s.Stats.ShotsFired < 2 {
		t.Fatalf("ShotsFired = %d, want >= 2", s.Stats.ShotsFired)
	}
}

func TestEmptyMagReloadsInPlace(t *testing.T) {
	g := testGuard(1, world.Vec2{X: 5.5, Y: 5.5})
	g.Ammo = 0
	in := NewIntruder(1, []world.Vec2{{X: 9.5, Y: 5.5}})
	in.Health = 0.2
	s := testSim([]*Guard{g}, []*Intruder{in})

	runTicks(s, 60)

	if g.Ammo <= 0 {
		t.Fatalf("guard never reloaded, ammo = %d", g.Ammo)
	}
	if in.Alive {
		t.Fatalf("intruder alive after reload-and-reengage window")
	}
}

func TestIdleGuardWalksPatrol(t *testing.T) {
	patrol := []world.Vec2{{X: 3.5, Y: 3.5}, {X: 16.5, Y: 3.5}}
	g := NewGuard(1, patrol[0], patrol, WeaponPistol, goap.DefaultProfile(), goap.Overrides{})
	s := testSim([]*Guard{g}, nil)

	runTicks(s, 30)

	if g.Pos.X < 4.5 {
		t.Fatalf("idle guard did not advance along patrol, pos = %+v", g.Pos)
	}
	if !g.Alive || g.Health != 1.0 {
		t.Fatalf("calm patrol damaged the guard somehow")
	}
}

func TestCallForHelpSharesThreatPosition(t *testing.T) {
	a := testGuard(1, world.Vec2{X: 5.5, Y: 5.5})
	b := testGuard(2, world.Vec2{X: 7.5, Y: 5.5})
	a.LastKnown = world.Vec2{X: 9.5, Y: 9.5}
	a.HasLastKnown = true
	s := testSim([]*Guard{a, b}, nil)

	s.broadcast(1, a, goap.KindCallForHelp)

	if !s.Alert.BackupCalled {
		t.Fatalf("BackupCalled not set")
	}
	if !b.HasLastKnown || b.LastKnown != a.LastKnown {
		t.Fatalf("ally did not receive the shared threat position: %+v", b.LastKnown)
	}
	if !b.Agent.Fact(goap.IsAlert) {
		t.Fatalf("ally not alerted")
	}
}

func TestFacilityAlarmAlertsEveryGuard(t *testing.T) {
	a := testGuard(1, world.Vec2{X: 5.5, Y: 5.5})
	b := testGuard(2, world.Vec2{X: 15.5, Y: 9.5})
	s := testSim([]*Guard{a, b}, nil)

	s.raiseAlarm(3, "test")
	cfg := s.Tuning.Snapshot()
	s.senseGuard(b, cfg, testDT)

	if !b.Agent.Fact(goap.FacilityAlert) || !b.Agent.Fact(goap.IsAlert) {
		t.Fatalf("guard across the map not alerted by the facility alarm")
	}
	if !b.Agent.Fact(goap.AllGuardsAlerted) {
		t.Fatalf("AllGuardsAlerted not propagated")
	}
}

func TestIntruderDiesToGrenadeArea(t *testing.T) {
	g := testGuard(1, world.Vec2{X: 5.5, Y: 5.5})
	g.Kit.Grenade = true
	in := NewIntruder(1, []world.Vec2{{X: 9.5, Y: 5.5}})
	s := testSim([]*Guard{g}, []*Intruder{in})

	g.Intent = &Intent{
		Kind:     IntentAreaEffect,
		Action:   goap.Action{Name: "throw_grenade", Kind: goap.KindThrowGrenade},
		Target:   in.Pos,
		TimeLeft: 0.1,
	}
	s.guardCombat(1, g, testDT)

	if g.Kit.Grenade {
		t.Fatalf("grenade not consumed")
	}
	if in.Health >= 1.0 {
		t.Fatalf("grenade did no damage, intruder health = %.2f", in.Health)
	}
	if g.Intent != nil {
		t.Fatalf("grenade intent not completed")
	}
}
