package engine

import (
	"math"

	"github.com/notarikon-nz/subversive-sub001/internal/goap"
	"github.com/notarikon-nz/subversive-sub001/internal/tuning"
	"github.com/notarikon-nz/subversive-sub001/internal/world"
)

// How long a guard keeps believing in a target after losing sight of it.
const targetMemoryWindow = 5.0

// setFact writes a belief without disturbing the plan. The executor's
// optimistic effects stay until a sensor contradicts them.
func setFact(g *Guard, k goap.WorldKey, v bool) {
	g.Agent.SetFact(k, v)
}

// setTrigger writes a belief and aborts the guard's plan when the value
// actually changed. Only stimulus keys go through here; routine fact
// refreshes must not churn plans every tick.
func (s *Simulation) setTrigger(g *Guard, k goap.WorldKey, v bool) {
	if g.Agent.Fact(k) == v {
		return
	}
	g.Agent.SetFact(k, v)
	if g.Agent.PlanLen() > 0 || g.Intent != nil {
		g.abortPlan()
		s.Stats.PlansAborted++
	}
}

// senseGuard refreshes one guard's belief state from the physical world.
// Sensors are authoritative: whatever the executor promised, reality wins.
func (s *Simulation) senseGuard(g *Guard, cfg tuning.Config, dt float64) {
	g.targetMemory = math.Max(0, g.targetMemory-dt)
	g.underFire = math.Max(0, g.underFire-dt)

	sn := cfg.Sensors

	// Vision: nearest living intruder inside the cone with clear sight.
	var seen *Intruder
	seenDist := sn.VisionRange
	visibleCount := 0
	halfFOV := sn.VisionFOVDeg * math.Pi / 360.0
	for _, in := range s.Intruders {
		if !in.Alive {
			continue
		}
		d := world.Dist(g.Pos, in.Pos)
		if d > sn.VisionRange {
			continue
		}
		if !world.InVisionCone(g.Pos, g.Facing, in.Pos, halfFOV, sn.VisionRange) {
			continue
		}
		if !s.WorldMap.LineOfSight(g.Pos, in.Pos) {
			continue
		}
		visibleCount++
		if d <= seenDist {
			seen, seenDist = in, d
		}
	}

	if seen != nil {
		g.LastKnown = seen.Pos
		g.HasLastKnown = true
		g.targetMemory = targetMemoryWindow
		setFact(g, goap.HasTarget, true)
		setFact(g, goap.IsAlert, true)
		s.setTrigger(g, goap.TargetVisible, true)
	} else {
		s.setTrigger(g, goap.TargetVisible, false)
		if g.targetMemory <= 0 {
			setFact(g, goap.HasTarget, false)
		}
	}

	// Hearing. A noise a guard can already see the source of tells it
	// nothing new, but the fact is set regardless; investigation actions
	// are gated off by HasTarget preconditions anyway.
	heard := false
	for _, n := range s.Noises {
		d := world.Dist(g.Pos, n.Pos)
		if d <= n.Radius && d <= sn.HearingRange {
			heard = true
			if seen == nil {
				g.LastKnown = n.Pos
				g.HasLastKnown = true
			}
			break
		}
	}
	if heard {
		s.setTrigger(g, goap.HeardSound, true)
		setFact(g, goap.IsAlert, true)
		setFact(g, goap.AreaSearched, false)
	}

	// Condition.
	setFact(g, goap.WeaponLoaded, g.Ammo > 0)
	setFact(g, goap.IsInjured, g.Health < sn.InjuredBelow)
	s.setTrigger(g, goap.IsPanicked, g.Health > 0 && g.Health < g.Profile.FearThreshold)
	setFact(g, goap.UnderFire, g.underFire > 0)
	setFact(g, goap.Outnumbered, visibleCount >= sn.OutnumberedAt)
	setFact(g, goap.HasMedKit, g.Kit.MedKit)
	setFact(g, goap.HasGrenade, g.Kit.Grenade)

	// Cover and facility geometry.
	onCover := s.WorldMap.At(world.TileOf(g.Pos)) == world.TileCover
	setFact(g, goap.InCover, onCover)
	nearCover, coverCount := s.coverWithin(g.Pos, sn.CoverRadius)
	setFact(g, goap.CoverAvailable, nearCover)
	setFact(g, goap.BetterCoverAvailable, onCover && coverCount > 1)
	_, ok := s.WorldMap.NearestAlarmPanel(g.Pos, sn.AlarmRadius)
	setFact(g, goap.NearAlarmPanel, ok)

	// Threat ranges.
	if g.HasLastKnown && (seen != nil || g.targetMemory > 0) {
		d := world.Dist(g.Pos, g.LastKnown)
		setFact(g, goap.AtSafeDistance, d > sn.DangerRadius)
		s.setTrigger(g, goap.TooClose, d < g.Weapon.MinRange)
		s.setTrigger(g, goap.TooFar, d > g.Weapon.MaxRange)
		setFact(g, goap.InWeaponRange, d >= g.Weapon.MinRange && d <= g.Weapon.MaxRange)
		setFact(g, goap.SafeThrowDistance, d > 4.0)
	} else {
		setFact(g, goap.AtSafeDistance, true)
		setFact(g, goap.TooClose, false)
		setFact(g, goap.TooFar, false)
		setFact(g, goap.IsRetreating, false)
	}
	setFact(g, goap.TargetGrouped, s.intrudersGrouped())
	setFact(g, goap.TargetsGroupedInRange, visibleCount >= 2)

	// Retreat geometry: a flee ray that moves the guard at all counts
	// as a clear path.
	setFact(g, goap.RetreatPathClear, s.fleeTarget(g, 6.0) != g.Pos)

	// Patrol anchor.
	if wp, ok := g.currentWaypoint(); ok {
		setFact(g, goap.AtPatrolPoint, world.Dist(g.Pos, wp) < 1.0)
	}

	// Team awareness.
	allies := 0
	for _, other := range s.Guards {
		if other.ID != g.ID && other.Alive && world.Dist(g.Pos, other.Pos) <= sn.VisionRange {
			allies++
		}
	}
	setFact(g, goap.NearbyAlliesAvailable, allies > 0)

	// Facility alarm state is shared truth, not perception.
	setFact(g, goap.FacilityAlert, s.Alert.Active)
	setFact(g, goap.BackupCalled, s.Alert.BackupCalled)
	if s.Alert.Active {
		s.setTrigger(g, goap.AllGuardsAlerted, true)
		setFact(g, goap.IsAlert, true)
	} else {
		setFact(g, goap.AllGuardsAlerted, false)
	}
}

// coverWithin reports whether any cover tile sits inside radius, and how
// many do.
func (s *Simulation) coverWithin(pos world.Vec2, radius float64) (bool, int) {
	count := 0
	for _, c := range s.WorldMap.CoverPoints {
		if world.Dist(pos, c.Center()) <= radius {
			count++
		}
	}
	return count > 0, count
}

// intrudersGrouped reports two or more living intruders within grenade
// spread of each other.
func (s *Simulation) intrudersGrouped() bool {
	for i, a := range s.Intruders {
		if !a.Alive {
			continue
		}
		for _, b := range s.Intruders[i+1:] {
			if b.Alive && world.Dist(a.Pos, b.Pos) <= 3.0 {
				return true
			}
		}
	}
	return false
}
