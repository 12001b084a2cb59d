package memory

import (
	"context"
	"testing"
	"time"

	"quizreel-web/internal/domain"
)

func TestQuizCacheCaches(t *testing.T) {
	loader := &countingLoader{
		QuizLoader: NewStaticQuizLoader(map[string]domain.Quiz{
			"quiz-1": sampleQuiz(),
		}),
	}
	cache := NewQuizCache(loader, time.Minute)

	if _, err := cache.GetQuiz(context.Background(), "quiz-1", "en"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := cache.GetQuiz(context.Background(), "quiz-1", "en"); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}

	// A different language is a different cache entry.
	if _, err := cache.GetQuiz(context.Background(), "quiz-1", "tr"); err != nil {
		t.Fatalf("get quiz tr: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected loader again for new lang, got %d", loader.calls)
	}
}

func TestQuizCachePropagatesNotFound(t *testing.T) {
	cache := NewQuizCache(NewStaticQuizLoader(nil), time.Minute)
	if _, err := cache.GetQuiz(context.Background(), "missing", "en"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

type countingLoader struct {
	QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID, lang string) (domain.Quiz, error) {
	l.calls++
	return l.QuizLoader.LoadQuiz(ctx, quizID, lang)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:        "quiz-1",
		ContentID: "content-1",
		Questions: []domain.Question{
			{
				ID:       "q1",
				Kind:     domain.KindVideo,
				MediaURL: "https://cdn.example/clip.mp4",
				StopTime: 10,
				EndTime:  20,
				Options: []domain.Option{
					{ID: "o1", Correct: false},
					{ID: "o2", Correct: true},
				},
			},
		},
	}
}
