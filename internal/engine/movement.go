package engine

import (
	"github.com/notarikon-nz/subversive-sub001/internal/goap"
	"github.com/notarikon-nz/subversive-sub001/internal/world"
)

const arriveRadius = 0.3

// completeIntent finishes the in-flight action and advances the plan.
func (g *Guard) completeIntent() {
	g.Intent = nil
	g.Agent.Advance()
}

// moveGuard steps the guard's body. Move intents walk toward their
// target; guards with nothing queued at all fall back to walking their
// patrol loop, which keeps a calm facility in motion without the planner
// ever producing a plan for it.
func (s *Simulation) moveGuard(g *Guard, dt float64) {
	if in := g.Intent; in != nil {
		if in.Kind != IntentMoveTo {
			// Combat-side intents may still want facing updates.
			if g.HasLastKnown {
				s.face(g, g.LastKnown)
			}
			return
		}
		arrived := s.stepToward(g, in.Target, dt)
		if arrived {
			if in.Action.Kind == goap.KindPatrol {
				g.advanceWaypoint()
			}
			g.completeIntent()
		}
		return
	}

	// Idle fallback: no plan, no intent. Walk the beat.
	if g.Agent.PlanLen() > 0 {
		return
	}
	wp, ok := g.currentWaypoint()
	if !ok {
		return
	}
	if s.stepToward(g, wp, dt) {
		g.advanceWaypoint()
	}
}

// stepToward moves the guard one tick toward target, returning true on
// arrival. A blocked step counts as arrival so intents cannot wedge a
// guard against a wall forever.
func (s *Simulation) stepToward(g *Guard, target world.Vec2, dt float64) bool {
	to := target.Sub(g.Pos)
	if to.Len() < arriveRadius {
		return true
	}
	s.face(g, target)
	step := to.Normalize().Scale(g.Speed * dt)
	if step.Len() > to.Len() {
		step = to
	}
	next := g.Pos.Add(step)
	if s.WorldMap.WalkableAt(next) {
		g.Pos = next
		return false
	}
	// Try sliding along one axis before giving up.
	slideX := world.Vec2{X: next.X, Y: g.Pos.Y}
	if s.WorldMap.WalkableAt(slideX) && slideX != g.Pos {
		g.Pos = slideX
		return false
	}
	slideY := world.Vec2{X: g.Pos.X, Y: next.Y}
	if s.WorldMap.WalkableAt(slideY) && slideY != g.Pos {
		g.Pos = slideY
		return false
	}
	return true
}

func (s *Simulation) face(g *Guard, at world.Vec2) {
	d := at.Sub(g.Pos)
	if d.Len() > 0.01 {
		g.Facing = d.Normalize()
	}
}
