package persistence

import (
	"path/filepath"
	"testing"

	"github.com/notarikon-nz/subversive-sub001/internal/engine"
	"github.com/notarikon-nz/subversive-sub001/internal/entropy"
	"github.com/notarikon-nz/subversive-sub001/internal/goap"
	"github.com/notarikon-nz/subversive-sub001/internal/tuning"
	"github.com/notarikon-nz/subversive-sub001/internal/world"
)

func smallSim() *engine.Simulation {
	m := world.NewMap(8, 8)
	for y := 1; y < 7; y++ {
		for x := 1; x < 7; x++ {
			m.Set(world.TileCoord{X: x, Y: y}, world.TileFloor)
		}
	}
	g := engine.NewGuard(1, world.Vec2{X: 2.5, Y: 2.5}, nil, engine.WeaponPistol, goap.DefaultProfile(), goap.Overrides{})
	in := engine.NewIntruder(1, []world.Vec2{{X: 5.5, Y: 5.5}})
	return engine.NewSimulation(m, []*engine.Guard{g}, []*engine.Intruder{in}, tuning.New(tuning.Default()), entropy.NewSource(1))
}

func TestSaveAndReadBack(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "run.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	sim := smallSim()
	sim.Events = []engine.Event{
		{Tick: 1, Description: "guard-1 plans [attack] for eliminate_threat", Category: "plan"},
		{Tick: 2, Description: "intruder was taken down by guard-1", Category: "death"},
	}

	if err := db.SaveRunState(sim); err != nil {
		t.Fatalf("save: %v", err)
	}

	events, err := db.RecentEvents(10)
	if err != nil {
		t.Fatalf("recent events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Category != "death" {
		t.Fatalf("events not newest-first: %+v", events[0])
	}

	tick, err := db.GetMeta("last_tick")
	if err != nil || tick != "0" {
		t.Fatalf("last_tick = %q, err %v", tick, err)
	}
}

func TestRunIDStable(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "run.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	first, err := db.RunID()
	if err != nil {
		t.Fatalf("mint run id: %v", err)
	}
	if first == "" {
		t.Fatalf("empty run id")
	}
	second, err := db.RunID()
	if err != nil || second != first {
		t.Fatalf("run id changed between calls: %q vs %q", first, second)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	sim := smallSim()
	sim.Guards[0].Health = 0.45
	sim.Alert.Active = true
	path := filepath.Join(t.TempDir(), "snap", "run.snap.zst")

	snap := BuildSnapshot(sim, "test-run")
	if err := WriteSnapshot(path, snap); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Header.RunID != "test-run" || got.Header.Version != snapshotVersion {
		t.Fatalf("header mismatch: %+v", got.Header)
	}
	if len(got.Guards) != 1 || got.Guards[0].Health != 0.45 {
		t.Fatalf("guard state mismatch: %+v", got.Guards)
	}
	if !got.Alert.Active {
		t.Fatalf("alert state lost")
	}
	if got.Map.Width != 8 || len(got.Map.Tiles) != 64 {
		t.Fatalf("map dims mismatch: %dx%d", got.Map.Width, got.Map.Height)
	}
}
