package playback

import (
	"sync"
	"time"
)

// QuestionTimer is the per-question answer countdown. It ticks once per
// interval and fires onExpire exactly once at zero unless cancelled first.
// Start/Cancel are safe for concurrent use; callbacks run on the timer
// goroutine and are expected to post events into the session loop.
type QuestionTimer struct {
	interval time.Duration

	mu   sync.Mutex
	gen  int
	stop chan struct{}
}

// NewQuestionTimer builds a timer ticking at interval. Production sessions
// use one second; tests shorten it.
func NewQuestionTimer(interval time.Duration) *QuestionTimer {
	if interval <= 0 {
		interval = time.Second
	}
	return &QuestionTimer{interval: interval}
}

// Start begins a countdown of seconds ticks, replacing any countdown still
// running. onTick fires after every elapsed interval, onExpire once when the
// countdown reaches zero.
func (t *QuestionTimer) Start(seconds int, onTick func(), onExpire func()) {
	t.mu.Lock()
	t.cancelLocked()
	t.gen++
	gen := t.gen
	stop := make(chan struct{})
	t.stop = stop
	t.mu.Unlock()

	go t.run(gen, seconds, stop, onTick, onExpire)
}

// Cancel stops the countdown. A callback already in flight may still be
// delivered; consumers drop it by phase check, so an explicit answer racing
// the expiry always wins.
func (t *QuestionTimer) Cancel() {
	t.mu.Lock()
	t.cancelLocked()
	t.mu.Unlock()
}

func (t *QuestionTimer) cancelLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

// current reports whether the countdown generation is still the live one, so
// a replaced or cancelled countdown stops firing.
func (t *QuestionTimer) current(gen int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return gen == t.gen && t.stop != nil
}

func (t *QuestionTimer) run(gen, seconds int, stop chan struct{}, onTick, onExpire func()) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	remaining := seconds
	for remaining > 0 {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !t.current(gen) {
				return
			}
			remaining--
			onTick()
		}
	}
	if t.current(gen) {
		onExpire()
	}
}
