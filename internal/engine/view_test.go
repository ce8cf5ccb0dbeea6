package engine

import (
	"sync"
	"testing"

	"github.com/notarikon-nz/subversive-sub001/internal/world"
)

func TestGuardDetailCopiesState(t *testing.T) {
	g := testGuard(1, world.Vec2{X: 5.5, Y: 5.5})
	in := NewIntruder(1, []world.Vec2{{X: 9.5, Y: 5.5}})
	s := testSim([]*Guard{g}, []*Intruder{in})
	runTicks(s, 5)

	detail, ok := s.GuardDetailOf(1)
	if !ok {
		t.Fatalf("guard 1 not found")
	}
	if detail.Name != "guard-1" || detail.Weapon != "rifle" {
		t.Fatalf("detail mismatch: %+v", detail.GuardView)
	}
	if len(detail.Beliefs) == 0 {
		t.Fatalf("belief map empty after five ticks")
	}

	// Mutating the returned copy must not reach the live agent.
	detail.Beliefs["has_target"] = !detail.Beliefs["has_target"]
	fresh, _ := s.GuardDetailOf(1)
	if fresh.Beliefs["has_target"] == detail.Beliefs["has_target"] {
		t.Fatalf("detail shares the live belief map")
	}

	if _, ok := s.GuardDetailOf(99); ok {
		t.Fatalf("unknown guard id must not resolve")
	}
}

// Observer accessors run on HTTP goroutines while the tick loop mutates
// belief maps and plan queues; under -race this fails if any view walks
// live state unlocked.
func TestViewsConcurrentWithTicks(t *testing.T) {
	g := testGuard(1, world.Vec2{X: 5.5, Y: 5.5})
	g2 := testGuard(2, world.Vec2{X: 14.5, Y: 8.5})
	in := NewIntruder(1, []world.Vec2{{X: 9.5, Y: 5.5}, {X: 3.5, Y: 9.5}})
	s := testSim([]*Guard{g, g2}, []*Intruder{in})

	const ticks = 200
	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		runTicks(s, ticks)
	}()

	readers := []func(){
		func() { s.GuardViews() },
		func() { s.GuardDetailOf(1) },
		func() { s.IntruderViews() },
		func() { s.EventsTail(20, "") },
		func() { s.StatsView(); s.AlertView(); s.CurrentTick() },
	}
	since := 0
	readers = append(readers, func() {
		_, since = s.Digest(since)
	})

	for _, read := range readers {
		wg.Add(1)
		go func(read func()) {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					read()
				}
			}
		}(read)
	}

	wg.Wait()

	views := s.GuardViews()
	if len(views) != 2 {
		t.Fatalf("got %d guard views, want 2", len(views))
	}
	if s.CurrentTick() != ticks {
		t.Fatalf("tick = %d, want %d", s.CurrentTick(), ticks)
	}
}

func TestDigestEventWindow(t *testing.T) {
	g := testGuard(1, world.Vec2{X: 5.5, Y: 5.5})
	s := testSim([]*Guard{g}, nil)

	s.addEvent(1, "alert", "first")
	d, n := s.Digest(0)
	if len(d.Events) != 1 || n != 1 {
		t.Fatalf("first frame: %d events, cursor %d", len(d.Events), n)
	}

	s.addEvent(2, "alert", "second")
	d, n = s.Digest(n)
	if len(d.Events) != 1 || d.Events[0].Description != "second" {
		t.Fatalf("second frame should carry only the new event: %+v", d.Events)
	}

	// A trim shrinks the log below the cursor; the window resets.
	s.Events = s.Events[:1]
	d, _ = s.Digest(n)
	if len(d.Events) != 1 {
		t.Fatalf("trimmed log should replay the retained tail: %+v", d.Events)
	}
}
