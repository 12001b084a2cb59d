// Package backend is the HTTP client for the external content/score API.
// Everything this service cannot answer locally (quiz content, score
// persistence, leaderboards, telemetry) lives behind it.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/imroc/req/v3"
	"github.com/pkg/errors"

	"quizreel-web/internal/domain"
	"quizreel-web/internal/i18n"
)

// placeholderTitle is shown when a quiz payload violates the title contract.
const placeholderTitle = "Untitled quiz"

type Client struct {
	http *req.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	httpClient := req.C().SetBaseURL(baseURL)
	if timeout > 0 {
		httpClient = httpClient.SetTimeout(timeout)
	}
	return &Client{http: httpClient}
}

// Wire shapes. Translations stay raw here; i18n.Normalize owns the
// object-or-array ambiguity.
type quizPayload struct {
	ID           string            `json:"id"`
	Slug         string            `json:"slug"`
	PosterURL    string            `json:"posterUrl"`
	ContentID    string            `json:"contentId"`
	Translations json.RawMessage   `json:"translations"`
	Questions    []questionPayload `json:"questions"`
}

type questionPayload struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	VideoURL     string          `json:"videoUrl"`
	ImageURL     string          `json:"imageUrl"`
	AudioURL     string          `json:"audioUrl"`
	StartTime    float64         `json:"startTime"`
	StopTime     float64         `json:"stopTime"`
	EndTime      float64         `json:"endTime"`
	Translations json.RawMessage `json:"translations"`
	Options      []optionPayload `json:"options"`
}

type optionPayload struct {
	ID           string          `json:"id"`
	IsCorrect    bool            `json:"isCorrect"`
	Translations json.RawMessage `json:"translations"`
}

// LoadQuiz fetches and normalizes a quiz. Malformed payloads and quizzes
// without questions are reported as not found / empty so a broken session is
// never partially hydrated.
func (c *Client) LoadQuiz(ctx context.Context, quizID, lang string) (domain.Quiz, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("lang", lang).
		Get("/quiz/" + quizID)
	if err != nil {
		return domain.Quiz{}, errors.Wrapf(err, "quiz request failed for %v", quizID)
	}
	if resp.StatusCode == http.StatusNotFound {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Quiz{}, errors.Errorf("quiz request for %v failed with status %v", quizID, resp.StatusCode)
	}

	body, err := resp.ToString()
	if err != nil {
		return domain.Quiz{}, errors.Wrapf(err, "read quiz body for %v", quizID)
	}
	var payload quizPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		log.Printf("malformed quiz payload for %s: %v", quizID, err)
		return domain.Quiz{}, domain.ErrQuizNotFound
	}

	quiz, err := buildQuiz(payload, lang)
	if err != nil {
		log.Printf("invalid quiz payload for %s: %v", quizID, err)
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if len(quiz.Questions) == 0 {
		return domain.Quiz{}, domain.ErrQuizEmpty
	}
	return quiz, nil
}

func buildQuiz(payload quizPayload, lang string) (domain.Quiz, error) {
	if payload.ID == "" {
		return domain.Quiz{}, errors.New("missing quiz id")
	}

	translations, err := i18n.Normalize(payload.Translations)
	if err != nil {
		return domain.Quiz{}, errors.Wrap(err, "quiz translations")
	}

	quiz := domain.Quiz{
		ID:           payload.ID,
		Slug:         payload.Slug,
		PosterURL:    payload.PosterURL,
		ContentID:    payload.ContentID,
		Translations: translations,
	}

	for _, qp := range payload.Questions {
		question, err := buildQuestion(qp)
		if err != nil {
			return domain.Quiz{}, errors.Wrapf(err, "question %v", qp.ID)
		}
		quiz.Questions = append(quiz.Questions, question)
	}

	// A quiz without a resolvable title is a backend contract violation;
	// degrade to a placeholder rather than failing the load.
	if tr, ok := quiz.Translations.Resolve(i18n.CanonicalLang(lang)); !ok || tr.Title == "" {
		log.Printf("quiz %s has no title for lang %q, using placeholder", quiz.ID, lang)
		if quiz.Translations == nil {
			quiz.Translations = domain.Translations{}
		}
		tr.Title = placeholderTitle
		quiz.Translations[i18n.CanonicalLang(lang)] = tr
	}

	return quiz, nil
}

func buildQuestion(qp questionPayload) (domain.Question, error) {
	kind := domain.QuestionKind(strings.ToLower(qp.Type))
	var mediaURL string
	switch kind {
	case domain.KindVideo:
		mediaURL = qp.VideoURL
	case domain.KindImage:
		mediaURL = qp.ImageURL
	case domain.KindAudio:
		mediaURL = qp.AudioURL
	case domain.KindText:
	default:
		return domain.Question{}, errors.Errorf("unknown question type %q", qp.Type)
	}

	translations, err := i18n.Normalize(qp.Translations)
	if err != nil {
		return domain.Question{}, errors.Wrap(err, "question translations")
	}

	question := domain.Question{
		ID:           qp.ID,
		Kind:         kind,
		MediaURL:     mediaURL,
		StartTime:    clampOffset(qp.StartTime),
		StopTime:     clampOffset(qp.StopTime),
		EndTime:      clampOffset(qp.EndTime),
		Translations: translations,
	}
	for _, op := range qp.Options {
		optTranslations, err := i18n.Normalize(op.Translations)
		if err != nil {
			return domain.Question{}, errors.Wrapf(err, "option %v translations", op.ID)
		}
		question.Options = append(question.Options, domain.Option{
			ID:           op.ID,
			Correct:      op.IsCorrect,
			Translations: optTranslations,
		})
	}
	return question, nil
}

// clampOffset clamps a time offset to non-negative. Ordering violations are an
// upstream data-quality concern and pass through.
func clampOffset(seconds float64) float64 {
	if seconds < 0 {
		return 0
	}
	return seconds
}

// SubmitScore creates a guest leaderboard entry.
func (c *Client) SubmitScore(ctx context.Context, sub domain.ScoreSubmission) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(sub).
		Post("/score")
	if err != nil {
		return errors.Wrapf(err, "score submission failed for content %v", sub.ContentID)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return errors.Errorf("score submission for content %v failed with status %v", sub.ContentID, resp.StatusCode)
	}
	return nil
}

// TopScores fetches the leaderboard for a content item, already ordered by
// the backend; the client does not re-sort.
func (c *Client) TopScores(ctx context.Context, contentID string) ([]domain.ScoreEntry, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/score/top/" + contentID)
	if err != nil {
		return nil, errors.Wrapf(err, "top scores request failed for content %v", contentID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("top scores request for content %v failed with status %v", contentID, resp.StatusCode)
	}
	body, err := resp.ToString()
	if err != nil {
		return nil, errors.Wrap(err, "read top scores body")
	}
	var entries []domain.ScoreEntry
	if err := json.Unmarshal([]byte(body), &entries); err != nil {
		return nil, errors.Wrap(err, "decode top scores")
	}
	return entries, nil
}

// Percentile fetches the 0-100 percentile of score among all scores for the
// content item.
func (c *Client) Percentile(ctx context.Context, contentID string, score int) (int, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/score/percentile/%s/%d", contentID, score))
	if err != nil {
		return 0, errors.Wrapf(err, "percentile request failed for content %v", contentID)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, errors.Errorf("percentile request for content %v failed with status %v", contentID, resp.StatusCode)
	}
	body, err := resp.ToString()
	if err != nil {
		return 0, errors.Wrap(err, "read percentile body")
	}
	var pct int
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &pct); err != nil {
		return 0, errors.Wrap(err, "decode percentile")
	}
	return pct, nil
}

type attemptPayload struct {
	QuestionID string `json:"questionId"`
	IsCorrect  bool   `json:"isCorrect"`
}

// ReportAttempt posts the per-question statistics hook. Callers treat it as
// fire-and-forget.
func (c *Client) ReportAttempt(ctx context.Context, questionID string, correct bool) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(attemptPayload{QuestionID: questionID, IsCorrect: correct}).
		Post("/quiz/attempt")
	if err != nil {
		return errors.Wrapf(err, "attempt report failed for question %v", questionID)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return errors.Errorf("attempt report for question %v failed with status %v", questionID, resp.StatusCode)
	}
	return nil
}

// TrackView posts the popularity increment, once per session start. Callers
// treat it as fire-and-forget.
func (c *Client) TrackView(ctx context.Context, contentID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Post("/content/" + contentID + "/view")
	if err != nil {
		return errors.Wrapf(err, "view track failed for content %v", contentID)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return errors.Errorf("view track for content %v failed with status %v", contentID, resp.StatusCode)
	}
	return nil
}
