package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quizreel-web/internal/domain"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	return New(server.URL, 5*time.Second), server
}

func TestLoadQuizNormalizesPayload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quiz/quiz-1", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "tr", r.URL.Query().Get("lang"))
		w.Write([]byte(`{
			"id": "quiz-1",
			"slug": "blockbusters",
			"contentId": "content-1",
			"translations": {"turkish": {"title": "Film"}, "en": {"title": "Movie"}},
			"questions": [
				{
					"id": "q1",
					"type": "VIDEO",
					"videoUrl": "https://cdn.example/clip.mp4",
					"startTime": -3,
					"stopTime": 10,
					"endTime": 20,
					"translations": [{"language": "EN", "text": "Which film is this?"}],
					"options": [
						{"id": "o1", "isCorrect": true, "translations": {"en": {"text": "Heat"}}},
						{"id": "o2", "isCorrect": false}
					]
				}
			]
		}`))
	})
	client, server := newTestClient(mux)
	defer server.Close()

	quiz, err := client.LoadQuiz(context.Background(), "quiz-1", "tr")
	require.NoError(t, err)

	require.Equal(t, "quiz-1", quiz.ID)
	require.Equal(t, "content-1", quiz.ContentID)
	require.Equal(t, "Film", quiz.Translations["tr"].Title)

	require.Len(t, quiz.Questions, 1)
	q := quiz.Questions[0]
	require.Equal(t, domain.KindVideo, q.Kind)
	require.Equal(t, "https://cdn.example/clip.mp4", q.MediaURL)
	require.Equal(t, 0.0, q.StartTime, "negative offsets are clamped")
	require.Equal(t, 10.0, q.StopTime)
	require.Equal(t, "Which film is this?", q.Translations["en"].Text)
	require.True(t, q.OptionCorrect("o1"))
	require.False(t, q.OptionCorrect("o2"))
}

func TestLoadQuizNotFound(t *testing.T) {
	client, server := newTestClient(http.NotFoundHandler())
	defer server.Close()

	_, err := client.LoadQuiz(context.Background(), "nope", "en")
	require.ErrorIs(t, err, domain.ErrQuizNotFound)
}

func TestLoadQuizMalformedPayloadIsNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quiz/quiz-1", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"id": "quiz-1", "questions": "oops"`))
	})
	client, server := newTestClient(mux)
	defer server.Close()

	_, err := client.LoadQuiz(context.Background(), "quiz-1", "en")
	require.ErrorIs(t, err, domain.ErrQuizNotFound)
}

func TestLoadQuizUnknownQuestionTypeIsNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quiz/quiz-1", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"id": "quiz-1", "questions": [{"id": "q1", "type": "hologram"}]}`))
	})
	client, server := newTestClient(mux)
	defer server.Close()

	_, err := client.LoadQuiz(context.Background(), "quiz-1", "en")
	require.ErrorIs(t, err, domain.ErrQuizNotFound)
}

func TestLoadQuizRejectsEmptyQuiz(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quiz/quiz-1", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"id": "quiz-1", "translations": {"en": {"title": "Movie"}}, "questions": []}`))
	})
	client, server := newTestClient(mux)
	defer server.Close()

	_, err := client.LoadQuiz(context.Background(), "quiz-1", "en")
	require.ErrorIs(t, err, domain.ErrQuizEmpty)
}

func TestLoadQuizMissingTitleGetsPlaceholder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quiz/quiz-1", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"id": "quiz-1", "questions": [{"id": "q1", "type": "text", "options": [{"id": "o1", "isCorrect": true}]}]}`))
	})
	client, server := newTestClient(mux)
	defer server.Close()

	quiz, err := client.LoadQuiz(context.Background(), "quiz-1", "en")
	require.NoError(t, err)
	tr, ok := quiz.Translations.Resolve("en")
	require.True(t, ok)
	require.Equal(t, "Untitled quiz", tr.Title)
}

func TestSubmitScore(t *testing.T) {
	var got domain.ScoreSubmission
	mux := http.NewServeMux()
	mux.HandleFunc("/score", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})
	client, server := newTestClient(mux)
	defer server.Close()

	err := client.SubmitScore(context.Background(), domain.ScoreSubmission{
		ContentID: "content-1", Score: 2, GuestName: "Alice",
	})
	require.NoError(t, err)
	require.Equal(t, "Alice", got.GuestName)
	require.Equal(t, 2, got.Score)
}

func TestSubmitScoreServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/score", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client, server := newTestClient(mux)
	defer server.Close()

	err := client.SubmitScore(context.Background(), domain.ScoreSubmission{ContentID: "c", Score: 1, GuestName: "A"})
	require.Error(t, err)
}

func TestTopScoresPreservesBackendOrder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/score/top/content-1", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"guestName":"Bob","score":3},{"guestName":"Zoe","score":3},{"guestName":"Alice","score":1}]`))
	})
	client, server := newTestClient(mux)
	defer server.Close()

	entries, err := client.TopScores(context.Background(), "content-1")
	require.NoError(t, err)
	require.Equal(t, []domain.ScoreEntry{
		{GuestName: "Bob", Score: 3},
		{GuestName: "Zoe", Score: 3},
		{GuestName: "Alice", Score: 1},
	}, entries)
}

func TestPercentileReadsBareInteger(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/score/percentile/content-1/2", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("87\n"))
	})
	client, server := newTestClient(mux)
	defer server.Close()

	pct, err := client.Percentile(context.Background(), "content-1", 2)
	require.NoError(t, err)
	require.Equal(t, 87, pct)
}

func TestReportAttemptAndTrackView(t *testing.T) {
	var attempts, views int
	mux := http.NewServeMux()
	mux.HandleFunc("/quiz/attempt", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			QuestionID string `json:"questionId"`
			IsCorrect  bool   `json:"isCorrect"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "q1", payload.QuestionID)
		attempts++
	})
	mux.HandleFunc("/content/content-1/view", func(w http.ResponseWriter, _ *http.Request) {
		views++
	})
	client, server := newTestClient(mux)
	defer server.Close()

	require.NoError(t, client.ReportAttempt(context.Background(), "q1", true))
	require.NoError(t, client.TrackView(context.Background(), "content-1"))
	require.Equal(t, 1, attempts)
	require.Equal(t, 1, views)
}
