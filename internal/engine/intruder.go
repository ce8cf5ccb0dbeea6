package engine

import (
	"github.com/notarikon-nz/subversive-sub001/internal/world"
)

// IntruderID identifies a hostile for the lifetime of a run.
type IntruderID uint64

// Intruder is a scripted hostile: it walks a waypoint path through the
// facility, makes noise, and shoots back at guards that close in. It has
// no planner of its own — it exists to exercise the guards'.
type Intruder struct {
	ID        IntruderID   `json:"id"`
	Name      string       `json:"name"`
	Pos       world.Vec2   `json:"pos"`
	Speed     float64      `json:"speed"`
	Health    float64      `json:"health"`
	Alive     bool         `json:"alive"`
	Waypoints []world.Vec2 `json:"waypoints"`

	wpIdx      int
	noiseTimer float64
	fireTimer  float64
}

const (
	intruderNoiseEvery  = 1.2 // Seconds between footstep noises
	intruderNoiseRadius = 8.0
	intruderFireDelay   = 0.8
	intruderFireRange   = 7.0
	intruderDamage      = 0.15
)

// NewIntruder creates a live intruder walking the given path.
func NewIntruder(id IntruderID, path []world.Vec2) *Intruder {
	pos := world.Vec2{}
	if len(path) > 0 {
		pos = path[0]
	}
	return &Intruder{
		ID:        id,
		Name:      "intruder",
		Pos:       pos,
		Speed:     1.8,
		Health:    1.0,
		Alive:     true,
		Waypoints: path,
	}
}

// tickIntruders walks every living intruder along its path, emits
// footstep noise, and fires on exposed guards.
func (s *Simulation) tickIntruders(tick uint64, dt float64) {
	for _, in := range s.Intruders {
		if !in.Alive {
			continue
		}

		// Path following; intruders that finish their route hold position.
		if in.wpIdx < len(in.Waypoints) {
			wp := in.Waypoints[in.wpIdx]
			to := wp.Sub(in.Pos)
			if to.Len() < 0.3 {
				in.wpIdx++
			} else {
				step := to.Normalize().Scale(in.Speed * dt)
				next := in.Pos.Add(step)
				if s.WorldMap.WalkableAt(next) {
					in.Pos = next
				} else {
					in.wpIdx++ // Path clipped a wall; skip ahead.
				}
			}

			in.noiseTimer -= dt
			if in.noiseTimer <= 0 {
				in.noiseTimer = intruderNoiseEvery
				s.emitNoise(in.Pos, intruderNoiseRadius)
			}
		}

		s.intruderFire(tick, in, dt)
	}
}

// intruderFire shoots the nearest exposed guard inside range.
func (s *Simulation) intruderFire(tick uint64, in *Intruder, dt float64) {
	in.fireTimer -= dt
	if in.fireTimer > 0 {
		return
	}

	var target *Guard
	best := intruderFireRange
	for _, g := range s.Guards {
		if !g.Alive {
			continue
		}
		d := world.Dist(g.Pos, in.Pos)
		if d <= best && s.WorldMap.LineOfSight(in.Pos, g.Pos) {
			target, best = g, d
		}
	}
	if target == nil {
		return
	}

	in.fireTimer = intruderFireDelay
	s.emitNoise(in.Pos, intruderNoiseRadius*1.5)
	s.Stats.ShotsFired++

	// Cover halves incoming damage.
	dmg := intruderDamage
	if s.WorldMap.At(world.TileOf(target.Pos)) == world.TileCover {
		dmg *= 0.5
	}
	s.damageGuard(tick, target, dmg, in.Pos)
}
