package goap

import "testing"

func TestAbsentKeyReadsFalse(t *testing.T) {
	ws := NewWorldState()
	if ws.Get(HasTarget) {
		t.Fatalf("absent key must read false")
	}
	ws.Set(HasTarget, true)
	if !ws.Get(HasTarget) {
		t.Fatalf("set key must read back")
	}
	ws.Set(HasTarget, false)
	if ws.Get(HasTarget) {
		t.Fatalf("explicit false must read false")
	}
}

func TestMatchesPartial(t *testing.T) {
	ws := State(HasTarget, true, WeaponLoaded, false)

	if !ws.Matches(State(HasTarget, true)) {
		t.Fatalf("present key should match")
	}
	if !ws.Matches(State(WeaponLoaded, false, IsAlert, false)) {
		t.Fatalf("absent partial key must compare against implicit false")
	}
	if ws.Matches(State(HasTarget, false)) {
		t.Fatalf("value mismatch should not match")
	}
	if !ws.Matches(NewWorldState()) {
		t.Fatalf("empty partial matches everything")
	}
}

func TestApplyOverwrites(t *testing.T) {
	ws := State(WeaponLoaded, false, HasTarget, true)
	ws.Apply(State(WeaponLoaded, true, InCover, true))

	if !ws.Get(WeaponLoaded) || !ws.Get(InCover) || !ws.Get(HasTarget) {
		t.Fatalf("apply must overwrite listed keys and leave others: %v", ws.Names())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	ws := State(HasTarget, true)
	cp := ws.Clone()
	cp.Set(HasTarget, false)
	cp.Set(InCover, true)

	if !ws.Get(HasTarget) || ws.Get(InCover) {
		t.Fatalf("mutating a clone leaked into the original")
	}
}

func TestWorldKeyNamesComplete(t *testing.T) {
	for k := WorldKey(0); k < numWorldKeys; k++ {
		if k.String() == "" || k.String() == "unknown" {
			t.Fatalf("key %d has no name", k)
		}
	}
	if WorldKey(255).String() != "unknown" {
		t.Fatalf("out-of-range key must stringify as unknown")
	}
}
