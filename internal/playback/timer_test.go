package playback

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimerTicksAndExpiresOnce(t *testing.T) {
	timer := NewQuestionTimer(5 * time.Millisecond)

	var ticks, expiries atomic.Int32
	timer.Start(3,
		func() { ticks.Add(1) },
		func() { expiries.Add(1) },
	)

	deadline := time.After(time.Second)
	for expiries.Load() == 0 {
		select {
		case <-deadline:
			t.Fatalf("timer never expired")
		case <-time.After(time.Millisecond):
		}
	}
	time.Sleep(30 * time.Millisecond)

	if got := expiries.Load(); got != 1 {
		t.Fatalf("expected exactly one expiry, got %d", got)
	}
	if got := ticks.Load(); got != 3 {
		t.Fatalf("expected 3 ticks, got %d", got)
	}
}

func TestTimerCancelSuppressesExpiry(t *testing.T) {
	timer := NewQuestionTimer(5 * time.Millisecond)

	var expiries atomic.Int32
	timer.Start(2, func() {}, func() { expiries.Add(1) })
	timer.Cancel()

	time.Sleep(50 * time.Millisecond)
	if got := expiries.Load(); got != 0 {
		t.Fatalf("expected no expiry after cancel, got %d", got)
	}
}

func TestTimerRestartReplacesCountdown(t *testing.T) {
	timer := NewQuestionTimer(5 * time.Millisecond)

	var firstExpiries, secondExpiries atomic.Int32
	timer.Start(1, func() {}, func() { firstExpiries.Add(1) })
	timer.Start(2, func() {}, func() { secondExpiries.Add(1) })

	time.Sleep(80 * time.Millisecond)
	if got := firstExpiries.Load(); got != 0 {
		t.Fatalf("replaced countdown must not expire, got %d", got)
	}
	if got := secondExpiries.Load(); got != 1 {
		t.Fatalf("expected replacement countdown to expire once, got %d", got)
	}
}

func TestTimerCancelIsIdempotent(t *testing.T) {
	timer := NewQuestionTimer(5 * time.Millisecond)
	timer.Start(1, func() {}, func() {})
	timer.Cancel()
	timer.Cancel()
}
