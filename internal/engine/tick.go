// Package engine provides the tick-based simulation loop and the guard
// AI systems that run inside it: sensors, the re-planning scheduler, the
// action executor, movement, and combat.
package engine

import (
	"log/slog"
	"math"
	"sync/atomic"
	"time"
)

// Engine drives the simulation forward at a fixed tick rate.
// Speed and the running flag are written by HTTP handlers while Run
// spins, so both live behind atomics.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Interval time.Duration // Base tick interval

	// Per-tick callback, invoked with the tick number and the simulated
	// time step in seconds (constant regardless of Speed; Speed only
	// changes wall-clock pacing).
	OnTick func(tick uint64, dt float64)

	speed   atomic.Uint64 // float64 bits
	running atomic.Bool
}

// NewEngine creates an engine ticking at the given rate.
func NewEngine(tickRateHz int) *Engine {
	if tickRateHz <= 0 {
		tickRateHz = 10
	}
	e := &Engine{Interval: time.Second / time.Duration(tickRateHz)}
	e.SetSpeed(1.0)
	return e
}

// DT returns the simulated seconds per tick.
func (e *Engine) DT() float64 {
	return e.Interval.Seconds()
}

// Speed returns the current pacing multiplier: 1.0 = real-time, 0 = paused.
func (e *Engine) Speed() float64 {
	return math.Float64frombits(e.speed.Load())
}

// SetSpeed changes the pacing multiplier. Takes effect on the next tick.
func (e *Engine) SetSpeed(v float64) {
	e.speed.Store(math.Float64bits(v))
}

// Running reports whether the loop is active.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Run starts the simulation loop. Blocks until Stop() is called.
func (e *Engine) Run() {
	e.running.Store(true)
	slog.Info("simulation engine started", "tick", e.Tick, "interval", e.Interval, "speed", e.Speed())

	for e.running.Load() {
		speed := e.Speed()
		if speed <= 0 {
			// Paused — sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.Tick++
		if e.OnTick != nil {
			e.OnTick(e.Tick, e.DT())
		}

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation engine stopped", "tick", e.Tick)
}

// Stop halts the simulation loop.
func (e *Engine) Stop() {
	e.running.Store(false)
}
