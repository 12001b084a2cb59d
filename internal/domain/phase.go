package domain

// Phase is one state of the per-question playback state machine.
type Phase int

const (
	// PhasePlaying: media is running toward the freeze point.
	PhasePlaying Phase = iota
	// PhaseQuestionActive: options are revealed, the countdown is running.
	PhaseQuestionActive
	// PhaseAnswered: an answer (or timeout) was recorded, media runs out the scene.
	PhaseAnswered
	// PhaseSceneComplete: the scene finished; the session may advance.
	PhaseSceneComplete
	// PhaseQuizComplete: terminal, all questions played.
	PhaseQuizComplete
)

func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhaseQuestionActive:
		return "questionActive"
	case PhaseAnswered:
		return "answered"
	case PhaseSceneComplete:
		return "sceneComplete"
	case PhaseQuizComplete:
		return "quizComplete"
	}
	return "unknown"
}

// MarshalText lets Phase serialize as its wire name in JSON snapshots.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
