package engine

import (
	"fmt"

	"github.com/notarikon-nz/subversive-sub001/internal/goap"
	"github.com/notarikon-nz/subversive-sub001/internal/world"
)

// IntentKind is the small set of physical behaviors plan actions compile
// down to. Several symbolic actions share one kind and differ only in
// their target computation.
type IntentKind uint8

const (
	IntentMoveTo IntentKind = iota
	IntentAttack
	IntentReload
	IntentBroadcast
	IntentAreaEffect
	IntentHold
)

var intentKindNames = [...]string{
	IntentMoveTo:     "move_to",
	IntentAttack:     "attack",
	IntentReload:     "reload",
	IntentBroadcast:  "broadcast",
	IntentAreaEffect: "area_effect",
	IntentHold:       "hold",
}

func (k IntentKind) String() string {
	if int(k) < len(intentKindNames) {
		return intentKindNames[k]
	}
	return "unknown"
}

// Intent is the in-flight physical realization of one plan action. It
// lives on the guard until movement or combat completes it, at which
// point the plan cursor advances.
type Intent struct {
	Kind     IntentKind
	Action   goap.Action
	Target   world.Vec2
	TimeLeft float64 // Seconds remaining for timed intents
}

// dispatch turns the head of an idle guard's plan into an intent.
// Symbolic effects land optimistically here; sensors are authoritative
// and overwrite any effect the world contradicts on the next tick.
func (s *Simulation) dispatch(tick uint64, g *Guard) {
	if g.Intent != nil {
		return
	}
	head, ok := g.Agent.HeadAction()
	if !ok {
		return
	}
	g.Agent.State.Apply(head.Effects)
	g.Intent = s.intentFor(g, head)
	s.addEvent(tick, "plan", fmt.Sprintf("%s begins %s", g.Name, head.Name))
}

// intentFor maps an action to its physical intent. Dispatch is on the
// closed kind tag, never the name: renaming or re-costing an action must
// not change what a guard's body does.
func (s *Simulation) intentFor(g *Guard, act goap.Action) *Intent {
	in := &Intent{Action: act}

	switch act.Kind {
	case goap.KindPatrol:
		in.Kind = IntentMoveTo
		wp, ok := g.currentWaypoint()
		if !ok {
			in.Kind = IntentHold
			in.TimeLeft = 0.5
			break
		}
		in.Target = wp

	case goap.KindMoveTo, goap.KindInvestigate:
		in.Kind = IntentMoveTo
		in.Target = s.pursuitTarget(g)

	case goap.KindAttack:
		in.Kind = IntentAttack

	case goap.KindSearchArea:
		in.Kind = IntentHold
		in.TimeLeft = 2.5

	case goap.KindReload:
		in.Kind = IntentReload
		in.TimeLeft = 1.5

	case goap.KindCallForHelp, goap.KindActivateAlarm:
		in.Kind = IntentBroadcast
		in.TimeLeft = 0.8

	case goap.KindTakeCover, goap.KindFindBetterCover:
		in.Kind = IntentMoveTo
		in.Target = s.coverTarget(g)

	case goap.KindRetreat, goap.KindFightingWithdrawal:
		in.Kind = IntentMoveTo
		in.Target = s.fleeTarget(g, 6.0)

	case goap.KindMaintainDistance:
		in.Kind = IntentMoveTo
		in.Target = s.fleeTarget(g, g.Weapon.MinRange+1.0)

	case goap.KindFlank:
		in.Kind = IntentMoveTo
		in.Target = s.flankTarget(g)

	case goap.KindUseMedKit:
		in.Kind = IntentHold
		in.TimeLeft = 3.0

	case goap.KindThrowGrenade:
		in.Kind = IntentAreaEffect
		in.TimeLeft = 0.8
		in.Target = s.pursuitTarget(g)

	case goap.KindSuppressingFire:
		in.Kind = IntentAreaEffect
		in.TimeLeft = 2.0
		in.Target = s.pursuitTarget(g)

	default:
		in.Kind = IntentHold
		in.TimeLeft = 0.5
	}

	return in
}

// pursuitTarget is where the guard believes the threat is. Falls back to
// the guard's own position, which completes the move immediately.
func (s *Simulation) pursuitTarget(g *Guard) world.Vec2 {
	if g.HasLastKnown {
		return g.LastKnown
	}
	return g.Pos
}

// fleeTarget picks a walkable point roughly dist tiles away from the
// threat. With no known threat the guard backs toward its patrol anchor.
func (s *Simulation) fleeTarget(g *Guard, dist float64) world.Vec2 {
	away := world.Vec2{X: 1, Y: 0}
	if g.HasLastKnown {
		d := g.Pos.Sub(g.LastKnown)
		if d.Len() > 0.01 {
			away = d.Normalize()
		}
	} else if wp, ok := g.currentWaypoint(); ok {
		d := wp.Sub(g.Pos)
		if d.Len() > 0.01 {
			away = d.Normalize()
		}
	}

	// Walk the ray back until it lands on a walkable tile.
	for step := dist; step > 0.5; step -= 1.0 {
		cand := g.Pos.Add(away.Scale(step))
		if s.WorldMap.WalkableAt(cand) {
			return cand
		}
	}
	return g.Pos
}

// coverTarget aims at the nearest cover tile, preferring one that is not
// the tile the guard already stands on.
func (s *Simulation) coverTarget(g *Guard) world.Vec2 {
	here := world.TileOf(g.Pos)
	best, ok := world.Vec2{}, false
	bestD := 1e9
	for _, c := range s.WorldMap.CoverPoints {
		if c == here {
			continue
		}
		d := world.Dist(g.Pos, c.Center())
		if d < bestD {
			best, bestD, ok = c.Center(), d, true
		}
	}
	if !ok {
		return s.fleeTarget(g, 3.0)
	}
	return best
}

// flankTarget swings perpendicular to the threat axis, side chosen at
// random so repeated flanks do not always circle the same way.
func (s *Simulation) flankTarget(g *Guard) world.Vec2 {
	if !g.HasLastKnown {
		return g.Pos
	}
	axis := g.LastKnown.Sub(g.Pos)
	if axis.Len() < 0.01 {
		return g.Pos
	}
	perp := world.Vec2{X: -axis.Y, Y: axis.X}.Normalize()
	if s.Rand.Float() < 0.5 {
		perp = perp.Scale(-1)
	}
	for step := 4.0; step > 0.5; step -= 1.0 {
		cand := g.LastKnown.Add(perp.Scale(step))
		if s.WorldMap.WalkableAt(cand) {
			return cand
		}
	}
	return g.Pos
}
