package engine

import (
	"github.com/notarikon-nz/subversive-sub001/internal/goap"
	"github.com/notarikon-nz/subversive-sub001/internal/world"
)

// Read-consistent copies of run state for observers. TickStep mutates
// belief maps and plan queues under the simulation lock, so HTTP handlers
// and the watch feed must never walk Guards or Events directly — they go
// through these accessors, which copy what they expose under RLock.

// GuardView is one guard's externally visible state.
type GuardView struct {
	ID     GuardID    `json:"id"`
	Name   string     `json:"name"`
	Pos    world.Vec2 `json:"pos"`
	Health float64    `json:"health"`
	Morale float64    `json:"morale"`
	Alive  bool       `json:"alive"`
	Weapon string     `json:"weapon"`
	Ammo   int        `json:"ammo"`
	Goal   string     `json:"goal"`
	Plan   []string   `json:"plan,omitempty"`
	Intent string     `json:"intent,omitempty"`
}

// GuardDetailView adds the planning internals to a guard view.
type GuardDetailView struct {
	GuardView
	Profile goap.Profile    `json:"profile"`
	Patrol  []world.Vec2    `json:"patrol"`
	Beliefs map[string]bool `json:"beliefs"`
}

// IntruderView is one intruder's externally visible state.
type IntruderView struct {
	ID     IntruderID `json:"id"`
	Name   string     `json:"name"`
	Pos    world.Vec2 `json:"pos"`
	Health float64    `json:"health"`
	Alive  bool       `json:"alive"`
}

// RunDigest is one consistent frame of run state, built under a single
// lock acquisition for stream observers.
type RunDigest struct {
	Tick      uint64         `json:"tick"`
	Alert     AlertState     `json:"alert"`
	Stats     SimStats       `json:"stats"`
	Guards    []GuardView    `json:"guards"`
	Intruders []IntruderView `json:"intruders"`
	Events    []Event        `json:"events,omitempty"` // Events since the previous frame
}

// viewGuard copies a guard's observable state. Caller holds the lock.
func viewGuard(g *Guard) GuardView {
	v := GuardView{
		ID:     g.ID,
		Name:   g.Name,
		Pos:    g.Pos,
		Health: g.Health,
		Morale: g.Morale,
		Alive:  g.Alive,
		Weapon: g.Weapon.Name,
		Ammo:   g.Ammo,
		Goal:   g.Agent.CurrentGoal,
		Plan:   g.Agent.PlanNames(),
	}
	if g.Intent != nil {
		v.Intent = g.Intent.Action.Name
	}
	return v
}

func viewIntruder(in *Intruder) IntruderView {
	return IntruderView{ID: in.ID, Name: in.Name, Pos: in.Pos, Health: in.Health, Alive: in.Alive}
}

// GuardViews returns a copy of every guard's observable state.
func (s *Simulation) GuardViews() []GuardView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]GuardView, 0, len(s.Guards))
	for _, g := range s.Guards {
		out = append(out, viewGuard(g))
	}
	return out
}

// GuardDetailOf returns one guard's full observable state including its
// belief map. The second return is false for unknown IDs.
func (s *Simulation) GuardDetailOf(id GuardID) (GuardDetailView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.GuardIdx[id]
	if !ok {
		return GuardDetailView{}, false
	}
	return GuardDetailView{
		GuardView: viewGuard(g),
		Profile:   g.Profile,
		Patrol:    append([]world.Vec2(nil), g.Patrol...),
		Beliefs:   g.Agent.State.Names(),
	}, true
}

// IntruderViews returns a copy of every intruder's observable state.
func (s *Simulation) IntruderViews() []IntruderView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]IntruderView, 0, len(s.Intruders))
	for _, in := range s.Intruders {
		out = append(out, viewIntruder(in))
	}
	return out
}

// StatsView returns the current aggregate statistics.
func (s *Simulation) StatsView() SimStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Stats
}

// AlertView returns the current facility alarm condition.
func (s *Simulation) AlertView() AlertState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Alert
}

// EventsTail returns a copy of the newest events, optionally filtered by
// category, at most limit entries.
func (s *Simulation) EventsTail(limit int, category string) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.Events
	if category != "" {
		var filtered []Event
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	start := 0
	if limit > 0 && len(events) > limit {
		start = len(events) - limit
	}
	return append([]Event(nil), events[start:]...)
}

// Digest builds one stream frame. sinceEvents is the event-log length at
// the previous frame; the returned length feeds the next call. A log trim
// between frames resets the window to the whole retained log.
func (s *Simulation) Digest(sinceEvents int) (RunDigest, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d := RunDigest{
		Tick:  s.LastTick,
		Alert: s.Alert,
		Stats: s.Stats,
	}
	for _, g := range s.Guards {
		d.Guards = append(d.Guards, viewGuard(g))
	}
	for _, in := range s.Intruders {
		d.Intruders = append(d.Intruders, viewIntruder(in))
	}
	if sinceEvents > len(s.Events) {
		sinceEvents = 0
	}
	d.Events = append(d.Events, s.Events[sinceEvents:]...)
	return d, len(s.Events)
}

// ReadScope runs fn while holding the simulation read lock. Persistence
// walks Guards and Intruders directly; it copies what it needs inside fn
// and does its I/O after, so the lock is never held across a disk write.
func (s *Simulation) ReadScope(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}
