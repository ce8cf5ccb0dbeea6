package engine

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/notarikon-nz/subversive-sub001/internal/goap"
	"github.com/notarikon-nz/subversive-sub001/internal/world"
)

const (
	gunshotNoiseRadius = 14.0
	grenadeRadius      = 2.5
	grenadeDamage      = 0.6
	medkitHeal         = 0.5
	suppressionDamage  = 0.03 // Chip damage per suppressing burst
)

// guardCombat runs the timed, non-movement side of the guard's intent.
func (s *Simulation) guardCombat(tick uint64, g *Guard, dt float64) {
	g.fireTimer = math.Max(0, g.fireTimer-dt)
	in := g.Intent
	if in == nil {
		return
	}

	switch in.Kind {
	case IntentAttack:
		s.attack(tick, g)

	case IntentReload:
		in.TimeLeft -= dt
		if in.TimeLeft <= 0 {
			g.Ammo = g.Weapon.MagSize
			s.addEvent(tick, "combat", fmt.Sprintf("%s reloaded", g.Name))
			if in.Action.Kind == goap.KindAttack {
				// Mid-attack reload; pick the fight back up.
				g.Intent = &Intent{Kind: IntentAttack, Action: in.Action}
			} else {
				g.completeIntent()
			}
		}

	case IntentHold:
		in.TimeLeft -= dt
		if in.TimeLeft <= 0 {
			if in.Action.Kind == goap.KindUseMedKit && g.Kit.MedKit {
				g.Kit.MedKit = false
				g.Health = math.Min(1.0, g.Health+medkitHeal)
				s.addEvent(tick, "combat", fmt.Sprintf("%s used a medkit", g.Name))
			}
			g.completeIntent()
		}

	case IntentBroadcast:
		in.TimeLeft -= dt
		if in.TimeLeft <= 0 {
			s.broadcast(tick, g, in.Action.Kind)
			g.completeIntent()
		}

	case IntentAreaEffect:
		s.areaEffect(tick, g, dt)
	}
}

// attack fires at the nearest visible intruder. The intent completes
// when the threat is down or lost, or the magazine runs dry; sensors and
// the scheduler sort out what comes next.
func (s *Simulation) attack(tick uint64, g *Guard) {
	target := s.nearestVisibleIntruder(g, g.Weapon.MaxRange)
	if target == nil {
		if !g.Agent.Fact(goap.TargetVisible) {
			g.completeIntent()
		}
		return
	}
	if g.Ammo <= 0 {
		// Dry magazine mid-fight: reload in place and resume the attack
		// rather than failing the plan back to the scheduler.
		g.Intent = &Intent{Kind: IntentReload, Action: g.Intent.Action, TimeLeft: 1.5}
		return
	}
	if g.fireTimer > 0 {
		return
	}

	g.fireTimer = g.Weapon.FireDelay
	g.Ammo--
	s.Stats.ShotsFired++
	s.emitNoise(g.Pos, gunshotNoiseRadius)
	s.damageIntruder(tick, target, g.Weapon.Damage, g.Name)

	if !target.Alive {
		g.completeIntent()
	}
}

// broadcast resolves the alarm-family actions.
func (s *Simulation) broadcast(tick uint64, g *Guard, kind goap.ActionKind) {
	switch kind {
	case goap.KindActivateAlarm:
		s.raiseAlarm(tick, g.Name)
		s.Alert.BackupCalled = true
	case goap.KindCallForHelp:
		if !s.Alert.BackupCalled {
			s.Alert.BackupCalled = true
			s.addEvent(tick, "alert", fmt.Sprintf("%s called for backup", g.Name))
		}
		// Share the threat position with everyone in earshot.
		if g.HasLastKnown {
			for _, ally := range s.Guards {
				if ally.ID == g.ID || !ally.Alive {
					continue
				}
				if world.Dist(g.Pos, ally.Pos) <= gunshotNoiseRadius && !ally.HasLastKnown {
					ally.LastKnown = g.LastKnown
					ally.HasLastKnown = true
					ally.Agent.SetFact(goap.IsAlert, true)
				}
			}
		}
	}
}

// areaEffect resolves grenades and suppressing fire.
func (s *Simulation) areaEffect(tick uint64, g *Guard, dt float64) {
	in := g.Intent
	in.TimeLeft -= dt

	if in.Action.Kind == goap.KindThrowGrenade {
		if in.TimeLeft > 0 {
			return
		}
		if g.Kit.Grenade {
			g.Kit.Grenade = false
			s.emitNoise(in.Target, gunshotNoiseRadius*1.5)
			s.addEvent(tick, "combat", fmt.Sprintf("%s threw a grenade", g.Name))
			for _, hostile := range s.Intruders {
				if hostile.Alive && world.Dist(hostile.Pos, in.Target) <= grenadeRadius {
					s.damageIntruder(tick, hostile, grenadeDamage, g.Name)
				}
			}
		}
		g.completeIntent()
		return
	}

	// Suppressing-fire family: sustained bursts toward the target point
	// for the intent's duration, chip damage to anyone caught near it.
	if g.Ammo <= 0 {
		g.completeIntent()
		return
	}
	if g.fireTimer <= 0 {
		g.fireTimer = g.Weapon.FireDelay
		g.Ammo--
		s.Stats.ShotsFired++
		s.emitNoise(g.Pos, gunshotNoiseRadius)
		for _, hostile := range s.Intruders {
			if hostile.Alive && world.Dist(hostile.Pos, in.Target) <= 1.5 && s.WorldMap.LineOfSight(g.Pos, hostile.Pos) {
				s.damageIntruder(tick, hostile, suppressionDamage, g.Name)
			}
		}
	}
	if in.TimeLeft <= 0 {
		g.completeIntent()
	}
}

func (s *Simulation) nearestVisibleIntruder(g *Guard, maxRange float64) *Intruder {
	var best *Intruder
	bestD := maxRange
	for _, in := range s.Intruders {
		if !in.Alive {
			continue
		}
		d := world.Dist(g.Pos, in.Pos)
		if d <= bestD && s.WorldMap.LineOfSight(g.Pos, in.Pos) {
			best, bestD = in, d
		}
	}
	return best
}

func (s *Simulation) damageIntruder(tick uint64, in *Intruder, dmg float64, by string) {
	if !in.Alive {
		return
	}
	// Intruders use cover too.
	if s.WorldMap.At(world.TileOf(in.Pos)) == world.TileCover {
		dmg *= 0.5
	}
	in.Health -= dmg
	if in.Health <= 0 {
		in.Health = 0
		in.Alive = false
		s.addEvent(tick, "death", fmt.Sprintf("%s was taken down by %s", in.Name, by))
		slog.Info("intruder down", "tick", tick, "intruder", in.ID, "by", by)
	}
}
