// Package leaktest catches goroutines left running by session, worker and
// pool tests.
package leaktest

import (
	"runtime"
	"testing"
	"time"
)

const (
	settleTimeout = time.Second
	pollInterval  = 10 * time.Millisecond
)

// GoroutineChecker records a goroutine baseline and later waits for the
// count to return to it.
type GoroutineChecker struct {
	before int
	t      testing.TB
}

// NewGoroutineChecker records the current goroutine count
func NewGoroutineChecker(t testing.TB) *GoroutineChecker {
	t.Helper()
	runtime.Gosched()
	return &GoroutineChecker{before: runtime.NumGoroutine(), t: t}
}

// Check polls until at most tolerance extra goroutines remain, failing the
// test if they are still running after settleTimeout.
func (g *GoroutineChecker) Check(tolerance int) {
	g.t.Helper()

	after := settle(g.before+tolerance, settleTimeout)
	if leaked := after - g.before; leaked > tolerance {
		g.t.Errorf("Potential goroutine leak: before=%d, after=%d, leaked=%d (tolerance=%d)",
			g.before, after, leaked, tolerance)
	}
}

// CheckNoGoroutineLeak runs fn and requires every goroutine it started to
// have exited.
func CheckNoGoroutineLeak(t testing.TB, fn func()) {
	t.Helper()
	checker := NewGoroutineChecker(t)
	fn()
	checker.Check(0)
}

// settle returns the goroutine count once it drops to target or the
// timeout passes, whichever comes first.
func settle(target int, timeout time.Duration) int {
	deadline := time.Now().Add(timeout)
	for {
		runtime.Gosched()
		n := runtime.NumGoroutine()
		if n <= target || time.Now().After(deadline) {
			return n
		}
		time.Sleep(pollInterval)
	}
}
