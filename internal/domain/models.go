package domain

// QuestionKind distinguishes how a question's media is driven during playback.
type QuestionKind string

const (
	KindVideo QuestionKind = "video"
	KindImage QuestionKind = "image"
	KindAudio QuestionKind = "audio"
	KindText  QuestionKind = "text"
)

// HasMediaClock reports whether the kind produces continuous playback positions.
func (k QuestionKind) HasMediaClock() bool {
	return k == KindVideo || k == KindAudio
}

// RequiresMediaURL reports whether a question of this kind is unplayable without media.
func (k QuestionKind) RequiresMediaURL() bool {
	return k != KindText
}

// Translation holds the localized fields of an entity for one language.
type Translation struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Text        string `json:"text,omitempty"`
}

// Translations maps lowercase ISO 639-1 codes to localized fields.
// Loaders normalize legacy payload shapes into this form at the boundary;
// nothing past the loader branches on payload shape.
type Translations map[string]Translation

// Resolve returns the translation for lang, falling back to English and then
// to any available language. The second result is false when the map is empty.
func (t Translations) Resolve(lang string) (Translation, bool) {
	if tr, ok := t[lang]; ok {
		return tr, true
	}
	if tr, ok := t["en"]; ok {
		return tr, true
	}
	for _, tr := range t {
		return tr, true
	}
	return Translation{}, false
}

// Option represents a possible answer for a question.
type Option struct {
	ID           string       `json:"id"`
	Correct      bool         `json:"isCorrect"`
	Translations Translations `json:"translations"`
}

// Question models one timed scene of a quiz. StartTime is where media playback
// begins, StopTime is the freeze point at which options are revealed and the
// countdown starts, and EndTime is where the scene is allowed to complete once
// answered. Offsets satisfy 0 <= StartTime <= StopTime <= EndTime in
// well-formed data; loaders clamp negatives but do not reorder.
type Question struct {
	ID           string       `json:"id"`
	Kind         QuestionKind `json:"type"`
	MediaURL     string       `json:"mediaUrl,omitempty"`
	StartTime    float64      `json:"startTime"`
	StopTime     float64      `json:"stopTime"`
	EndTime      float64      `json:"endTime"`
	Translations Translations `json:"translations"`
	Options      []Option     `json:"options"`
}

// OptionCorrect reports whether optionID identifies a correct option of q.
// Uniqueness of the correct flag is not enforced; each option answers for itself.
func (q Question) OptionCorrect(optionID string) bool {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return opt.Correct
		}
	}
	return false
}

// Quiz is an immutable, ordered sequence of questions attached to a content item.
type Quiz struct {
	ID           string       `json:"id"`
	Slug         string       `json:"slug,omitempty"`
	PosterURL    string       `json:"posterUrl,omitempty"`
	ContentID    string       `json:"contentId"`
	Translations Translations `json:"translations"`
	Questions    []Question   `json:"questions"`
}

// MaxGuestNameLen bounds the guest display name on score submissions.
const MaxGuestNameLen = 20

// ScoreSubmission is a guest leaderboard entry request. GuestName must be
// non-empty after trimming and at most MaxGuestNameLen runes; re-submitting
// the same session produces a duplicate entry by design.
type ScoreSubmission struct {
	ContentID string `json:"contentId"`
	Score     int    `json:"score"`
	GuestName string `json:"guestName"`
}

// ScoreEntry is one row of the top-scores list, kept in backend order.
type ScoreEntry struct {
	GuestName string `json:"guestName"`
	Score     int    `json:"score"`
}
