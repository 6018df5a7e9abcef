package middleware

import (
	"testing"
	"time"
)

func TestMemoryRateLimiterWindow(t *testing.T) {
	l := NewMemoryRateLimiter(2, time.Minute)
	now := time.Now()

	if !l.allow("1.2.3.4", now) {
		t.Fatal("first call blocked")
	}
	if !l.allow("1.2.3.4", now) {
		t.Fatal("second call blocked")
	}
	if l.allow("1.2.3.4", now) {
		t.Fatal("third call within window must be blocked")
	}

	// other clients have their own window
	if !l.allow("5.6.7.8", now) {
		t.Fatal("unrelated client blocked")
	}

	// the window rolls over after it elapses
	later := now.Add(time.Minute + time.Second)
	if !l.allow("1.2.3.4", later) {
		t.Fatal("call after window rollover blocked")
	}
}

func TestMemoryRateLimiterPrune(t *testing.T) {
	l := NewMemoryRateLimiter(1, time.Second)
	now := time.Now()

	l.allow("a", now)
	l.allow("b", now)

	// a rollover for one client sweeps every expired window
	l.allow("a", now.Add(2*time.Second))

	l.mu.Lock()
	_, bAlive := l.clients["b"]
	l.mu.Unlock()
	if bAlive {
		t.Fatal("expired window survived prune")
	}
}
