package api

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// A tuning patch is expensive out of proportion to its payload: each
// accepted patch bumps the tuning generation, which aborts every guard's
// plan on the next scheduler pass. patchLimiter meters patch admission
// per caller with a continuously refilling budget, so a short burst of
// legitimate edits is absorbed while sustained thrash is refused.
type patchLimiter struct {
	mu      sync.Mutex
	budgets map[string]*patchBudget
	burst   float64 // bucket capacity, in patches
	refill  float64 // patches regained per second
	now     func() time.Time
}

type patchBudget struct {
	tokens float64
	last   time.Time
}

// newPatchLimiter allows burst patches at once, regaining the full burst
// over the given period.
func newPatchLimiter(burst int, per time.Duration) *patchLimiter {
	return &patchLimiter{
		budgets: make(map[string]*patchBudget),
		burst:   float64(burst),
		refill:  float64(burst) / per.Seconds(),
		now:     time.Now,
	}
}

// allow spends one patch from the caller's budget. When refused, the
// second return is the whole seconds until a patch becomes available.
func (l *patchLimiter) allow(caller string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t := l.now()
	b, ok := l.budgets[caller]
	if !ok {
		if len(l.budgets) > 1024 {
			l.sweepLocked(t)
		}
		b = &patchBudget{tokens: l.burst, last: t}
		l.budgets[caller] = b
	}
	b.tokens = math.Min(l.burst, b.tokens+t.Sub(b.last).Seconds()*l.refill)
	b.last = t

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	return false, int(math.Ceil((1 - b.tokens) / l.refill))
}

// sweepLocked drops budgets that have refilled completely; they behave
// identically to absent entries.
func (l *patchLimiter) sweepLocked(t time.Time) {
	for caller, b := range l.budgets {
		if b.tokens+t.Sub(b.last).Seconds()*l.refill >= l.burst {
			delete(l.budgets, caller)
		}
	}
}

// patchCaller keys the budget: the bearer credential when one is sent,
// otherwise the client address, so an operator script and an anonymous
// client never share a bucket.
func patchCaller(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return "token:" + strings.TrimPrefix(auth, "Bearer ")
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			xff = xff[:i]
		}
		host = strings.TrimSpace(xff)
	}
	return "addr:" + host
}

// limitPatches meters mutations through the limiter; reads pass through
// untouched. Refusals carry a Retry-After header.
func limitPatches(l *patchLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if ok, retry := l.allow(patchCaller(r)); !ok {
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				http.Error(w, "tuning patch budget exhausted", http.StatusTooManyRequests)
				return
			}
		}
		next(w, r)
	}
}
