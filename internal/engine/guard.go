package engine

import (
	"fmt"

	"github.com/notarikon-nz/subversive-sub001/internal/goap"
	"github.com/notarikon-nz/subversive-sub001/internal/world"
)

// GuardID identifies a guard for the lifetime of a run.
type GuardID uint64

// WeaponSpec defines a weapon's engagement envelope. Distances inside
// MinRange read as too close, beyond MaxRange as too far; the executor
// maneuvers guards back into the band between them.
type WeaponSpec struct {
	Name      string  `json:"name"`
	MinRange  float64 `json:"min_range"`
	MaxRange  float64 `json:"max_range"`
	Damage    float64 `json:"damage"`
	MagSize   int     `json:"mag_size"`
	FireDelay float64 `json:"fire_delay"` // Seconds between shots
}

// Standard issue weapons.
var (
	WeaponPistol       = WeaponSpec{Name: "pistol", MinRange: 0, MaxRange: 9, Damage: 0.12, MagSize: 12, FireDelay: 0.6}
	WeaponRifle        = WeaponSpec{Name: "rifle", MinRange: 2, MaxRange: 14, Damage: 0.18, MagSize: 30, FireDelay: 0.4}
	WeaponShotgun      = WeaponSpec{Name: "shotgun", MinRange: 0, MaxRange: 5, Damage: 0.35, MagSize: 6, FireDelay: 1.0}
	WeaponFlamethrower = WeaponSpec{Name: "flamethrower", MinRange: 0, MaxRange: 4, Damage: 0.10, MagSize: 60, FireDelay: 0.1}
	WeaponMinigun      = WeaponSpec{Name: "minigun", MinRange: 3, MaxRange: 12, Damage: 0.08, MagSize: 120, FireDelay: 0.1}
)

// Guard is one planner-driven facility guard: a physical body plus the
// symbolic agent that decides what the body should be doing.
type Guard struct {
	ID     GuardID      `json:"id"`
	Name   string       `json:"name"`
	Pos    world.Vec2   `json:"pos"`
	Facing world.Vec2   `json:"facing"`
	Speed  float64      `json:"speed"` // Tiles per second
	Health float64      `json:"health"`
	Morale float64      `json:"morale"`
	Alive  bool         `json:"alive"`
	Weapon WeaponSpec   `json:"weapon"`
	Ammo   int          `json:"ammo"`
	Kit    Kit          `json:"kit"`
	Patrol []world.Vec2 `json:"patrol"`

	Profile goap.Profile `json:"profile"`
	Agent   *goap.Agent  `json:"-"`

	// Execution state.
	Intent    *Intent `json:"-"`
	patrolIdx int
	fireTimer float64

	// Scheduler state.
	Cooldown float64 `json:"-"` // Seconds until the next scheduled re-plan
	LastGen  uint64  `json:"-"` // Tuning generation the plan was built under

	// Sensor memory.
	LastKnown    world.Vec2 `json:"-"`
	HasLastKnown bool       `json:"-"`
	targetMemory float64    // Seconds left before a lost target is forgotten
	underFire    float64    // Seconds left on the recently-shot-at flag
}

// Kit is a guard's consumable loadout.
type Kit struct {
	MedKit  bool `json:"medkit"`
	Grenade bool `json:"grenade"`
}

// NewGuard creates a live guard with a fresh planning agent and the
// profile's economics applied.
func NewGuard(id GuardID, pos world.Vec2, patrol []world.Vec2, weapon WeaponSpec, profile goap.Profile, base goap.Overrides) *Guard {
	g := &Guard{
		ID:      id,
		Name:    fmt.Sprintf("guard-%d", id),
		Pos:     pos,
		Speed:   2.5,
		Health:  1.0,
		Morale:  1.0,
		Alive:   true,
		Weapon:  weapon,
		Ammo:    weapon.MagSize,
		Kit:     Kit{MedKit: true},
		Patrol:  patrol,
		Profile: profile,
		Agent:   goap.NewAgent(goap.DefaultActions(), goap.DefaultGoals()),
	}
	g.Agent.ApplyProfile(profile, base)
	return g
}

// abortPlan drops the guard's plan and any in-flight intent, and clears
// the scheduler cooldown so the next tick may re-plan immediately.
func (g *Guard) abortPlan() {
	g.Agent.AbortPlan()
	g.Intent = nil
	g.Cooldown = 0
}

// currentWaypoint returns the active patrol waypoint, if any.
func (g *Guard) currentWaypoint() (world.Vec2, bool) {
	if len(g.Patrol) == 0 {
		return world.Vec2{}, false
	}
	return g.Patrol[g.patrolIdx%len(g.Patrol)], true
}

// advanceWaypoint moves the patrol cursor to the next loop point.
func (g *Guard) advanceWaypoint() {
	if len(g.Patrol) > 0 {
		g.patrolIdx = (g.patrolIdx + 1) % len(g.Patrol)
	}
}
