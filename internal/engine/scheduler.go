package engine

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/notarikon-nz/subversive-sub001/internal/goap"
	"github.com/notarikon-nz/subversive-sub001/internal/tuning"
)

// schedule decides whether a guard re-plans this tick. Re-planning is
// interval-gated; outside the interval only two things force it early: a
// tuning mutation (the plan's economics are stale) and a queued head
// action whose preconditions no longer hold.
func (s *Simulation) schedule(tick uint64, g *Guard, cfg tuning.Config, dt float64) {
	gen := s.Tuning.Generation()
	if g.LastGen != gen && (g.Agent.PlanLen() > 0 || g.Intent != nil) {
		g.abortPlan()
		s.Stats.PlansAborted++
	}
	g.Cooldown = math.Max(0, g.Cooldown-dt)

	if g.Intent == nil {
		if head, ok := g.Agent.HeadAction(); ok && !g.Agent.State.Matches(head.Preconditions) {
			g.abortPlan()
			s.Stats.PlansAborted++
		}
	}

	if g.Intent != nil || g.Agent.PlanLen() > 0 || g.Cooldown > 0 {
		return
	}

	ov := goap.Overrides{
		ActionCosts:    cfg.ActionCosts,
		GoalPriorities: cfg.GoalPriorities,
		MaxPlanDepth:   cfg.MaxPlanDepth,
	}
	planned := g.Agent.Plan(ov)
	g.LastGen = gen

	// Guards with a live target re-plan on the tighter combat interval.
	interval := cfg.PlanningInterval
	if g.Agent.Fact(goap.HasTarget) {
		interval = cfg.CombatPlanningInterval
	}
	g.Cooldown = interval

	if planned {
		s.Stats.PlansBuilt++
		names := g.Agent.PlanNames()
		s.addEvent(tick, "plan", fmt.Sprintf("%s plans [%s] for %s", g.Name, strings.Join(names, " "), g.Agent.CurrentGoal))
		slog.Debug("plan built", "tick", tick, "guard", g.Name, "goal", g.Agent.CurrentGoal, "plan", names)
	} else {
		s.Stats.PlansFailed++
	}
}
