package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fixedClock lets the tests move time forward without sleeping.
type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time          { return c.t }
func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func testLimiter(burst int, per time.Duration) (*patchLimiter, *fixedClock) {
	clock := &fixedClock{t: time.Unix(1000, 0)}
	l := newPatchLimiter(burst, per)
	l.now = clock.now
	return l, clock
}

func TestPatchBudgetSpendsThenRefuses(t *testing.T) {
	l, _ := testLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if ok, _ := l.allow("token:abc"); !ok {
			t.Fatalf("patch %d refused inside the burst", i+1)
		}
	}
	ok, retry := l.allow("token:abc")
	if ok {
		t.Fatalf("fourth patch admitted past an exhausted budget")
	}
	if retry <= 0 {
		t.Fatalf("refusal must say when to retry, got %d", retry)
	}
}

func TestPatchBudgetRefillsOverTime(t *testing.T) {
	l, clock := testLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		l.allow("token:abc")
	}
	if ok, _ := l.allow("token:abc"); ok {
		t.Fatalf("budget should be empty")
	}

	// Refill rate is burst/period = one patch every 20s.
	clock.advance(21 * time.Second)
	if ok, _ := l.allow("token:abc"); !ok {
		t.Fatalf("budget did not refill after the refill interval")
	}
	if ok, _ := l.allow("token:abc"); ok {
		t.Fatalf("only one patch should have refilled")
	}
}

func TestPatchBudgetIsPerCaller(t *testing.T) {
	l, _ := testLimiter(1, time.Minute)

	if ok, _ := l.allow("token:abc"); !ok {
		t.Fatalf("first caller refused")
	}
	if ok, _ := l.allow("token:abc"); ok {
		t.Fatalf("first caller should be exhausted")
	}
	if ok, _ := l.allow("addr:10.0.0.9"); !ok {
		t.Fatalf("second caller must have its own budget")
	}
}

func TestPatchCallerIdentity(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/tuning", nil)
	r.RemoteAddr = "10.0.0.9:52011"
	if got := patchCaller(r); got != "addr:10.0.0.9" {
		t.Fatalf("caller = %q", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := patchCaller(r); got != "addr:203.0.113.7" {
		t.Fatalf("forwarded caller = %q", got)
	}

	r.Header.Set("Authorization", "Bearer sekrit")
	if got := patchCaller(r); got != "token:sekrit" {
		t.Fatalf("bearer caller = %q", got)
	}
}

func TestLimitPatchesPassesReads(t *testing.T) {
	l, _ := testLimiter(1, time.Minute)
	handler := limitPatches(l, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	post := httptest.NewRequest(http.MethodPost, "/api/v1/tuning", nil)
	post.RemoteAddr = "10.0.0.9:52011"

	rec := httptest.NewRecorder()
	handler(rec, post)
	if rec.Code != http.StatusOK {
		t.Fatalf("first mutation refused: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler(rec, post)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second mutation admitted past the budget: %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("refusal missing Retry-After")
	}

	// Reads are never metered, exhausted budget or not.
	get := httptest.NewRequest(http.MethodGet, "/api/v1/tuning", nil)
	get.RemoteAddr = "10.0.0.9:52011"
	rec = httptest.NewRecorder()
	handler(rec, get)
	if rec.Code != http.StatusOK {
		t.Fatalf("read refused: %d", rec.Code)
	}
}
