// Package playback implements the quiz playback engine: a per-session state
// machine driven by media-position events, countdown ticks, and answer
// selections. The Engine itself is pure and synchronous; the Session runtime
// serializes events onto it and owns timers and media commands.
package playback

import (
	"quizreel-web/internal/domain"
)

// DefaultAnswerSeconds is the countdown granted once a question freezes.
const DefaultAnswerSeconds = 15

// Effects receives the fire-and-forget side effects of transitions. Failures
// must be swallowed by the implementation; the engine never observes them.
type Effects interface {
	ReportAttempt(questionID string, correct bool)
}

// NopEffects discards all effects.
type NopEffects struct{}

func (NopEffects) ReportAttempt(string, bool) {}

// Transition labels the state change produced by one engine event.
type Transition int

const (
	TransitionNone Transition = iota
	// TransitionFroze: Playing -> QuestionActive (options revealed, countdown due).
	TransitionFroze
	// TransitionAnswered: QuestionActive -> Answered.
	TransitionAnswered
	// TransitionSceneDone: Answered -> SceneComplete.
	TransitionSceneDone
	// TransitionAdvanced: SceneComplete -> Playing on the next question.
	TransitionAdvanced
	// TransitionCompleted: SceneComplete -> QuizComplete (terminal).
	TransitionCompleted
)

// Snapshot is the observable state of a playback session.
type Snapshot struct {
	QuizID           string       `json:"quizId"`
	QuestionIndex    int          `json:"questionIndex"`
	TotalQuestions   int          `json:"totalQuestions"`
	Phase            domain.Phase `json:"phase"`
	SelectedOptionID *string      `json:"selectedOptionId"`
	Correct          *bool        `json:"correct"`
	Score            int          `json:"score"`
	TimeRemaining    int          `json:"timeRemaining"`
	MediaError       bool         `json:"mediaError"`
	QuizComplete     bool         `json:"quizComplete"`
}

// Engine owns the state of one playback session. It is not safe for
// concurrent use; the Session runtime funnels all events through a single
// goroutine, which also realizes the no-overlapping-transitions guarantee.
type Engine struct {
	quiz          domain.Quiz
	fx            Effects
	answerSeconds int

	idx           int
	phase         domain.Phase
	selected      *string
	correct       *bool
	score         int
	timeRemaining int
	mediaError    bool
	complete      bool
}

// NewEngine builds an engine for quiz. Quizzes without questions are invalid
// input and must be rejected by the loader; the engine refuses them too.
func NewEngine(quiz domain.Quiz, fx Effects, answerSeconds int) (*Engine, error) {
	if len(quiz.Questions) == 0 {
		return nil, domain.ErrQuizEmpty
	}
	if fx == nil {
		fx = NopEffects{}
	}
	if answerSeconds <= 0 {
		answerSeconds = DefaultAnswerSeconds
	}
	return &Engine{
		quiz:          quiz,
		fx:            fx,
		answerSeconds: answerSeconds,
		phase:         domain.PhasePlaying,
		timeRemaining: answerSeconds,
	}, nil
}

// Current returns the active question. Valid until QuizComplete, after which
// it keeps returning the last question.
func (e *Engine) Current() domain.Question {
	return e.quiz.Questions[e.idx]
}

// Quiz returns the immutable quiz under playback.
func (e *Engine) Quiz() domain.Quiz {
	return e.quiz
}

// Snapshot returns a copy of the observable session state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		QuizID:           e.quiz.ID,
		QuestionIndex:    e.idx,
		TotalQuestions:   len(e.quiz.Questions),
		Phase:            e.phase,
		SelectedOptionID: e.selected,
		Correct:          e.correct,
		Score:            e.score,
		TimeRemaining:    e.timeRemaining,
		MediaError:       e.mediaError,
		QuizComplete:     e.complete,
	}
}

// active reports whether questionID addresses the current question. Events
// carrying a stale question ID come from torn-down media sources and are
// dropped by identity mismatch.
func (e *Engine) active(questionID string) bool {
	return !e.complete && questionID == e.Current().ID
}

// HandlePosition consumes a media playback position for a question with a
// continuous clock (video/audio). Reaching the freeze point reveals the
// question; reaching the end point after an answer completes the scene.
func (e *Engine) HandlePosition(questionID string, seconds float64) Transition {
	if !e.active(questionID) {
		return TransitionNone
	}
	q := e.Current()
	if !q.Kind.HasMediaClock() {
		return TransitionNone
	}
	switch e.phase {
	case domain.PhasePlaying:
		if seconds >= q.StopTime {
			return e.freeze()
		}
	case domain.PhaseAnswered:
		if seconds >= q.EndTime {
			return e.sceneDone()
		}
	}
	return TransitionNone
}

// HandleMediaLoaded consumes an image-load signal: for image questions,
// loading is the freeze point.
func (e *Engine) HandleMediaLoaded(questionID string) Transition {
	if !e.active(questionID) || e.phase != domain.PhasePlaying {
		return TransitionNone
	}
	if e.Current().Kind != domain.KindImage {
		return TransitionNone
	}
	return e.freeze()
}

// HandleSettled consumes the text settle-delay signal: text questions have no
// media clock and freeze immediately after it.
func (e *Engine) HandleSettled(questionID string) Transition {
	if !e.active(questionID) || e.phase != domain.PhasePlaying {
		return TransitionNone
	}
	if e.Current().Kind != domain.KindText {
		return TransitionNone
	}
	return e.freeze()
}

// HandleMediaError records a media failure for the current question and fails
// open: during Playing the question is revealed immediately with the error
// flag set, and after an answer the scene completes so the player is never
// stuck waiting for a position that will not arrive.
func (e *Engine) HandleMediaError(questionID string) Transition {
	if !e.active(questionID) {
		return TransitionNone
	}
	switch e.phase {
	case domain.PhasePlaying:
		e.mediaError = true
		return e.freeze()
	case domain.PhaseAnswered:
		e.mediaError = true
		return e.sceneDone()
	}
	return TransitionNone
}

// HandleAnswer records an explicit option selection, or the timeout
// auto-submission when optionID is nil. Outside QuestionActive it is a no-op,
// which makes repeated selections idempotent.
func (e *Engine) HandleAnswer(optionID *string) Transition {
	if e.phase != domain.PhaseQuestionActive {
		return TransitionNone
	}
	correct := optionID != nil && e.Current().OptionCorrect(*optionID)
	e.selected = optionID
	e.correct = &correct
	if correct {
		e.score++
	}
	e.phase = domain.PhaseAnswered
	e.fx.ReportAttempt(e.Current().ID, correct)
	return TransitionAnswered
}

// HandleTick decrements the countdown while the question is active. Ticks
// from a torn-down countdown carry a stale question ID and are dropped.
func (e *Engine) HandleTick(questionID string) {
	if !e.active(questionID) {
		return
	}
	if e.phase == domain.PhaseQuestionActive && e.timeRemaining > 0 {
		e.timeRemaining--
	}
}

// HandleTimerExpired auto-submits a null answer on countdown expiry. An
// answer processed in the same tick wins: once the phase has left
// QuestionActive the expiry is ignored. An expiry posted by a countdown that
// was cancelled during advance carries the old question ID and is dropped by
// identity mismatch, never landing on the question that replaced it.
func (e *Engine) HandleTimerExpired(questionID string) Transition {
	if !e.active(questionID) || e.phase != domain.PhaseQuestionActive {
		return TransitionNone
	}
	e.timeRemaining = 0
	return e.HandleAnswer(nil)
}

// HandleAdvanceDelay completes the scene for questions without an end
// position to wait for (image/text, or errored media).
func (e *Engine) HandleAdvanceDelay(questionID string) Transition {
	if !e.active(questionID) || e.phase != domain.PhaseAnswered {
		return TransitionNone
	}
	return e.sceneDone()
}

// Advance moves from SceneComplete to the next question, or to QuizComplete
// when the current question was the last. Advancing resets all per-question
// fields and increments the index by exactly one.
func (e *Engine) Advance() Transition {
	if e.phase != domain.PhaseSceneComplete {
		return TransitionNone
	}
	if e.idx == len(e.quiz.Questions)-1 {
		e.phase = domain.PhaseQuizComplete
		e.complete = true
		return TransitionCompleted
	}
	e.idx++
	e.selected = nil
	e.correct = nil
	e.mediaError = false
	e.timeRemaining = e.answerSeconds
	e.phase = domain.PhasePlaying
	return TransitionAdvanced
}

func (e *Engine) freeze() Transition {
	e.phase = domain.PhaseQuestionActive
	e.selected = nil
	e.correct = nil
	e.timeRemaining = e.answerSeconds
	return TransitionFroze
}

func (e *Engine) sceneDone() Transition {
	e.phase = domain.PhaseSceneComplete
	return TransitionSceneDone
}
