package playback

import (
	"sync"

	"github.com/google/uuid"

	"quizreel-web/internal/domain"
)

type eventKind int

const (
	evPosition eventKind = iota
	evMediaLoaded
	evMediaError
	evSettled
	evAnswer
	evTick
	evExpired
	evAdvanceDelay
)

type event struct {
	kind       eventKind
	questionID string
	seconds    float64
	optionID   *string
}

// Session is the runtime around one Engine: a single goroutine consumes all
// events (media positions, timer ticks, answers) so transitions never
// overlap, and drives media commands, the countdown, and the scene delays.
// One Session exists per playback attempt; closing it discards all progress.
type Session struct {
	ID     string
	engine *Engine
	timer  *QuestionTimer
	media  MediaController
	tuning Tuning
	delay  delayClock

	events    chan event
	done      chan struct{}
	closeOnce sync.Once

	mu          sync.Mutex
	lastSnap    Snapshot
	subscribers map[chan Snapshot]struct{}
}

// NewSession starts playback of quiz at question 0. The media controller
// receives seek/play/pause commands; fx receives fire-and-forget telemetry.
func NewSession(quiz domain.Quiz, media MediaController, fx Effects, tuning Tuning) (*Session, error) {
	tuning = tuning.withDefaults()
	engine, err := NewEngine(quiz, fx, tuning.AnswerSeconds)
	if err != nil {
		return nil, err
	}
	if media == nil {
		media = NopMediaController{}
	}
	s := &Session{
		ID:          uuid.NewString(),
		engine:      engine,
		timer:       NewQuestionTimer(tuning.TickInterval),
		media:       media,
		tuning:      tuning,
		events:      make(chan event, 64),
		done:        make(chan struct{}),
		subscribers: make(map[chan Snapshot]struct{}),
	}
	s.lastSnap = engine.Snapshot()
	go s.loop()
	return s, nil
}

// Quiz returns the quiz under playback.
func (s *Session) Quiz() domain.Quiz {
	return s.engine.Quiz()
}

// Position reports a media playback position from the surface.
func (s *Session) Position(questionID string, seconds float64) {
	s.post(event{kind: evPosition, questionID: questionID, seconds: seconds})
}

// MediaLoaded reports that the surface finished loading the question's media.
func (s *Session) MediaLoaded(questionID string) {
	s.post(event{kind: evMediaLoaded, questionID: questionID})
}

// MediaError reports a load or playback failure from the surface.
func (s *Session) MediaError(questionID string) {
	s.post(event{kind: evMediaError, questionID: questionID})
}

// Answer submits an option selection; nil means no selection.
func (s *Session) Answer(optionID *string) {
	s.post(event{kind: evAnswer, optionID: optionID})
}

// Snapshot returns the most recently published session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSnap
}

// Subscribe returns a channel of state snapshots, primed with the current
// one. The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	ch <- s.lastSnap
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Close tears down the session: the media source is discarded, the countdown
// cancelled, and all subscriber channels closed. Progress is not persisted;
// resuming means starting over from question 0.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.timer.Cancel()
		s.delay.stop()

		s.mu.Lock()
		for ch := range s.subscribers {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	})
}

func (s *Session) post(ev event) {
	select {
	case <-s.done:
	case s.events <- ev:
	}
}

func (s *Session) loop() {
	s.setupQuestion()
	s.broadcast()
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.events:
			s.dispatch(ev)
			s.broadcast()
		}
	}
}

func (s *Session) dispatch(ev event) {
	switch ev.kind {
	case evPosition:
		s.apply(s.engine.HandlePosition(ev.questionID, ev.seconds))
	case evMediaLoaded:
		s.apply(s.engine.HandleMediaLoaded(ev.questionID))
	case evMediaError:
		s.apply(s.engine.HandleMediaError(ev.questionID))
	case evSettled:
		s.apply(s.engine.HandleSettled(ev.questionID))
	case evAnswer:
		s.apply(s.engine.HandleAnswer(ev.optionID))
	case evTick:
		s.engine.HandleTick(ev.questionID)
	case evExpired:
		s.apply(s.engine.HandleTimerExpired(ev.questionID))
	case evAdvanceDelay:
		s.apply(s.engine.HandleAdvanceDelay(ev.questionID))
	}
}

// apply reacts to an engine transition with the runtime side of the state
// machine: pausing/resuming media, running the countdown, and scheduling the
// delay-driven scene completions.
func (s *Session) apply(t Transition) {
	switch t {
	case TransitionFroze:
		q := s.engine.Current()
		if q.Kind.HasMediaClock() && !s.engine.Snapshot().MediaError {
			s.media.Pause(q.ID)
		}
		qid := q.ID
		s.timer.Start(s.tuning.AnswerSeconds,
			func() { s.post(event{kind: evTick, questionID: qid}) },
			func() { s.post(event{kind: evExpired, questionID: qid}) },
		)
	case TransitionAnswered:
		s.timer.Cancel()
		q := s.engine.Current()
		if q.Kind.HasMediaClock() && !s.engine.Snapshot().MediaError && q.MediaURL != "" {
			// Run the scene out to its end position.
			s.media.Play(q.ID)
			return
		}
		qid := q.ID
		s.delay.schedule(s.tuning.AdvanceDelay, func() {
			s.post(event{kind: evAdvanceDelay, questionID: qid})
		})
	case TransitionSceneDone:
		s.delay.stop()
		s.apply(s.engine.Advance())
	case TransitionAdvanced:
		s.setupQuestion()
	case TransitionCompleted:
		s.timer.Cancel()
		s.delay.stop()
	}
}

// setupQuestion begins playback of the current question. A media-kind
// question without a URL degrades immediately through the media-error path so
// the player is never stuck.
func (s *Session) setupQuestion() {
	q := s.engine.Current()
	if q.Kind.RequiresMediaURL() && q.MediaURL == "" {
		s.apply(s.engine.HandleMediaError(q.ID))
		return
	}
	switch q.Kind {
	case domain.KindVideo, domain.KindAudio:
		s.media.Seek(q.ID, q.StartTime)
		s.media.Play(q.ID)
	case domain.KindText:
		qid := q.ID
		s.delay.schedule(s.tuning.TextSettleDelay, func() {
			s.post(event{kind: evSettled, questionID: qid})
		})
	case domain.KindImage:
		// Nothing to drive: the surface's load signal is the freeze point.
	}
}

// broadcast publishes the current snapshot to all subscribers, dropping a
// stale buffered snapshot rather than blocking on a slow consumer.
func (s *Session) broadcast() {
	snap := s.engine.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSnap = snap
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
