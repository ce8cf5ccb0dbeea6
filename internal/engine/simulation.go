// Simulation ties together the facility map, guards, intruders, and the
// per-tick AI pipeline.
package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/notarikon-nz/subversive-sub001/internal/entropy"
	"github.com/notarikon-nz/subversive-sub001/internal/tuning"
	"github.com/notarikon-nz/subversive-sub001/internal/world"
)

// Noise is a transient sound stimulus guards can hear.
type Noise struct {
	Pos    world.Vec2 `json:"pos"`
	Radius float64    `json:"radius"`
	TTL    float64    `json:"ttl"` // Seconds of remaining audibility
}

// AlertState is the facility-wide alarm condition.
type AlertState struct {
	Active       bool    `json:"active"`
	BackupCalled bool    `json:"backup_called"`
	SinceTick    uint64  `json:"since_tick"`
	Decay        float64 `json:"-"` // Seconds until the alarm stands down
}

// SimStats tracks aggregate run statistics.
type SimStats struct {
	GuardsAlive    int    `json:"guards_alive"`
	IntrudersAlive int    `json:"intruders_alive"`
	PlansBuilt     uint64 `json:"plans_built"`
	PlansFailed    uint64 `json:"plans_failed"`
	PlansAborted   uint64 `json:"plans_aborted"`
	ShotsFired     uint64 `json:"shots_fired"`
}

// Simulation holds the complete run state and wires systems together.
// TickStep and the read accessors share a lock so the HTTP API can
// observe a consistent snapshot between ticks.
type Simulation struct {
	mu sync.RWMutex

	WorldMap  *world.Map
	Guards    []*Guard
	GuardIdx  map[GuardID]*Guard
	Intruders []*Intruder
	Noises    []Noise
	Alert     AlertState
	Events    []Event // Recent events (trimmed periodically)
	LastTick  uint64
	Stats     SimStats

	Tuning *tuning.Tuning
	Rand   *entropy.Source
}

// NewSimulation assembles a run from generated components.
func NewSimulation(m *world.Map, guards []*Guard, intruders []*Intruder, tn *tuning.Tuning, src *entropy.Source) *Simulation {
	idx := make(map[GuardID]*Guard, len(guards))
	for _, g := range guards {
		idx[g.ID] = g
	}
	s := &Simulation{
		WorldMap:  m,
		Guards:    guards,
		GuardIdx:  idx,
		Intruders: intruders,
		Tuning:    tn,
		Rand:      src,
	}
	s.updateStats()
	return s
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastTick
}

// TickStep advances the run by one tick. Phase order is a contract:
// sensor writes must land before the scheduler reads them, the scheduler
// must settle plans before the executor dispatches, and physical systems
// run last so their outcomes are observed by next tick's sensors.
func (s *Simulation) TickStep(tick uint64, dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.LastTick = tick
	cfg := s.Tuning.Snapshot()

	s.decayNoises(dt)

	for _, g := range s.Guards {
		if !g.Alive {
			continue
		}
		s.senseGuard(g, cfg, dt)
	}
	for _, g := range s.Guards {
		if !g.Alive {
			continue
		}
		s.schedule(tick, g, cfg, dt)
		s.dispatch(tick, g)
	}
	for _, g := range s.Guards {
		if !g.Alive {
			continue
		}
		s.moveGuard(g, dt)
		s.guardCombat(tick, g, dt)
	}

	s.tickIntruders(tick, dt)
	s.decayAlert(dt)
	s.updateStats()

	if tick%600 == 0 {
		s.logDigest(tick)
	}
	// Trim old events to prevent unbounded growth (keep last 1000).
	if len(s.Events) > 1500 {
		s.Events = s.Events[len(s.Events)-1000:]
	}
}

func (s *Simulation) decayNoises(dt float64) {
	live := s.Noises[:0]
	for _, n := range s.Noises {
		n.TTL -= dt
		if n.TTL > 0 {
			live = append(live, n)
		}
	}
	s.Noises = live
}

func (s *Simulation) emitNoise(pos world.Vec2, radius float64) {
	s.Noises = append(s.Noises, Noise{Pos: pos, Radius: radius, TTL: 0.5})
}

// raiseAlarm puts the whole facility on alert. Idempotent while active.
func (s *Simulation) raiseAlarm(tick uint64, source string) {
	if !s.Alert.Active {
		s.Alert.Active = true
		s.Alert.SinceTick = tick
		s.addEvent(tick, "alert", fmt.Sprintf("facility alarm raised by %s", source))
		slog.Info("facility alarm raised", "tick", tick, "source", source)
	}
	s.Alert.Decay = 30.0
}

func (s *Simulation) decayAlert(dt float64) {
	if !s.Alert.Active {
		return
	}
	// The alarm stays up while any intruder is known alive.
	for _, in := range s.Intruders {
		if in.Alive {
			return
		}
	}
	s.Alert.Decay -= dt
	if s.Alert.Decay <= 0 {
		s.Alert = AlertState{}
	}
}

func (s *Simulation) damageGuard(tick uint64, g *Guard, dmg float64, from world.Vec2) {
	g.Health -= dmg
	g.underFire = 2.0
	g.LastKnown = from
	g.HasLastKnown = true
	if g.Health <= 0 {
		g.Health = 0
		g.Alive = false
		g.abortPlan()
		s.addEvent(tick, "death", fmt.Sprintf("%s was killed", g.Name))
		slog.Info("guard down", "tick", tick, "guard", g.Name)
	}
}

func (s *Simulation) updateStats() {
	guards, intruders := 0, 0
	for _, g := range s.Guards {
		if g.Alive {
			guards++
		}
	}
	for _, in := range s.Intruders {
		if in.Alive {
			intruders++
		}
	}
	s.Stats.GuardsAlive = guards
	s.Stats.IntrudersAlive = intruders
}

func (s *Simulation) logDigest(tick uint64) {
	slog.Info("simulation digest",
		"tick", tick,
		"guards_alive", s.Stats.GuardsAlive,
		"intruders_alive", s.Stats.IntrudersAlive,
		"alert", s.Alert.Active,
		"plans_built", s.Stats.PlansBuilt,
		"plans_aborted", s.Stats.PlansAborted,
		"shots_fired", s.Stats.ShotsFired,
	)
}
