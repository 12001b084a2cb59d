package playback

import (
	"sync"
	"time"
)

// MediaController relays playback commands for the current question to the
// media surface (the browser's video/audio element). Implementations carry
// the question ID so the surface can discard commands for media it has
// already switched away from.
type MediaController interface {
	Play(questionID string)
	Pause(questionID string)
	Seek(questionID string, seconds float64)
}

// NopMediaController discards all commands (text-only quizzes, tests).
type NopMediaController struct{}

func (NopMediaController) Play(string)          {}
func (NopMediaController) Pause(string)         {}
func (NopMediaController) Seek(string, float64) {}

// Tuning collects the presentation-tuning constants of the engine. They are
// configurable, not policy.
type Tuning struct {
	// AnswerSeconds is the countdown once a question freezes.
	AnswerSeconds int
	// AdvanceDelay completes the scene after an answer for questions without
	// an end position to wait for (image/text, errored media).
	AdvanceDelay time.Duration
	// TextSettleDelay is the UI-settle pause before a text question freezes.
	TextSettleDelay time.Duration
	// TickInterval is the countdown granularity; shortened in tests.
	TickInterval time.Duration
}

// DefaultTuning matches the reference behavior.
func DefaultTuning() Tuning {
	return Tuning{
		AnswerSeconds:   DefaultAnswerSeconds,
		AdvanceDelay:    2 * time.Second,
		TextSettleDelay: 500 * time.Millisecond,
		TickInterval:    time.Second,
	}
}

func (t Tuning) withDefaults() Tuning {
	def := DefaultTuning()
	if t.AnswerSeconds <= 0 {
		t.AnswerSeconds = def.AnswerSeconds
	}
	if t.AdvanceDelay <= 0 {
		t.AdvanceDelay = def.AdvanceDelay
	}
	if t.TextSettleDelay <= 0 {
		t.TextSettleDelay = def.TextSettleDelay
	}
	if t.TickInterval <= 0 {
		t.TickInterval = def.TickInterval
	}
	return t
}

// delayClock fires a one-shot callback after a delay, keyed by question ID.
// Scheduling replaces any pending shot; Stop silences it. Late fires for a
// replaced question are additionally dropped by the engine's identity check.
type delayClock struct {
	mu    sync.Mutex
	timer *time.Timer
}

func (c *delayClock) schedule(d time.Duration, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(d, fn)
}

func (c *delayClock) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
