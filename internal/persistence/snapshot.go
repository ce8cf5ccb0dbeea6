package persistence

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/notarikon-nz/subversive-sub001/internal/engine"
	"github.com/notarikon-nz/subversive-sub001/internal/goap"
	"github.com/notarikon-nz/subversive-sub001/internal/world"
)

// Snapshot files are zstd-compressed: a JSON header line for cheap
// inspection (zstdcat file | head -1) followed by a gob body.

const snapshotVersion = 1

type SnapshotHeader struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id"`
	Tick    uint64 `json:"tick"`
	SavedAt string `json:"saved_at"`
}

// SnapshotV1 is the full serialized run state.
type SnapshotV1 struct {
	Header SnapshotHeader

	Map       MapV1
	Guards    []GuardV1
	Intruders []IntruderV1
	Alert     engine.AlertState
	Stats     engine.SimStats
}

type MapV1 struct {
	Width       int
	Height      int
	Tiles       []world.TileKind
	CoverPoints []world.TileCoord
	AlarmPanels []world.TileCoord
	Entries     []world.TileCoord
}

type GuardV1 struct {
	ID      engine.GuardID
	Name    string
	Pos     world.Vec2
	Health  float64
	Morale  float64
	Alive   bool
	Weapon  string
	Ammo    int
	Patrol  []world.Vec2
	Profile goap.Profile
	Goal    string
	PlanLen int
	Beliefs map[string]bool
}

type IntruderV1 struct {
	ID        engine.IntruderID
	Name      string
	Pos       world.Vec2
	Health    float64
	Alive     bool
	Waypoints []world.Vec2
}

// guardRow copies one guard into its serialized form. Caller holds the
// simulation lock.
func guardRow(g *engine.Guard) GuardV1 {
	return GuardV1{
		ID:      g.ID,
		Name:    g.Name,
		Pos:     g.Pos,
		Health:  g.Health,
		Morale:  g.Morale,
		Alive:   g.Alive,
		Weapon:  g.Weapon.Name,
		Ammo:    g.Ammo,
		Patrol:  append([]world.Vec2(nil), g.Patrol...),
		Profile: g.Profile,
		Goal:    g.Agent.CurrentGoal,
		PlanLen: g.Agent.PlanLen(),
		Beliefs: g.Agent.State.Names(),
	}
}

func intruderRow(in *engine.Intruder) IntruderV1 {
	return IntruderV1{
		ID:        in.ID,
		Name:      in.Name,
		Pos:       in.Pos,
		Health:    in.Health,
		Alive:     in.Alive,
		Waypoints: append([]world.Vec2(nil), in.Waypoints...),
	}
}

// BuildSnapshot captures the simulation into a serializable form. The
// copy happens under the simulation read lock so a running tick loop
// cannot tear it; callers serialize the result at leisure.
func BuildSnapshot(sim *engine.Simulation, runID string) SnapshotV1 {
	var snap SnapshotV1
	sim.ReadScope(func() {
		snap = SnapshotV1{
			Header: SnapshotHeader{
				Version: snapshotVersion,
				RunID:   runID,
				Tick:    sim.LastTick,
				SavedAt: time.Now().UTC().Format(time.RFC3339),
			},
			Map: MapV1{
				Width:       sim.WorldMap.Width,
				Height:      sim.WorldMap.Height,
				Tiles:       sim.WorldMap.Tiles,
				CoverPoints: sim.WorldMap.CoverPoints,
				AlarmPanels: sim.WorldMap.AlarmPanels,
				Entries:     sim.WorldMap.Entries,
			},
			Alert: sim.Alert,
			Stats: sim.Stats,
		}
		for _, g := range sim.Guards {
			snap.Guards = append(snap.Guards, guardRow(g))
		}
		for _, in := range sim.Intruders {
			snap.Intruders = append(snap.Intruders, intruderRow(in))
		}
	})
	return snap
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// Skip the header line; the gob body carries the header too.
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}
