// Package results turns a completed playback session into the final score
// presentation and drives the guest leaderboard submission flow.
package results

import (
	"context"
	"log"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"quizreel-web/internal/domain"
)

// ScoreAPI is the slice of the backend the aggregator needs.
type ScoreAPI interface {
	SubmitScore(ctx context.Context, sub domain.ScoreSubmission) error
	TopScores(ctx context.Context, contentID string) ([]domain.ScoreEntry, error)
	Percentile(ctx context.Context, contentID string, score int) (int, error)
}

// Tier is the presentation theme for a final percentage. Boundaries are
// inclusive on the lower bound.
type Tier string

const (
	TierGold   Tier = "gold"   // >= 90
	TierSilver Tier = "silver" // >= 70
	TierBronze Tier = "bronze" // >= 50
	TierNone   Tier = "none"
)

// Summary is the computed outcome of a completed quiz.
type Summary struct {
	Score          int  `json:"score"`
	TotalQuestions int  `json:"totalQuestions"`
	Percentage     int  `json:"percentage"`
	IncorrectCount int  `json:"incorrectCount"`
	Tier           Tier `json:"tier"`
}

// Summarize computes percentage, incorrect count, and tier for a final score.
func Summarize(score, total int) Summary {
	pct := 0
	if total > 0 {
		pct = int(math.Round(100 * float64(score) / float64(total)))
	}
	return Summary{
		Score:          score,
		TotalQuestions: total,
		Percentage:     pct,
		IncorrectCount: total - score,
		Tier:           tierFor(pct),
	}
}

func tierFor(pct int) Tier {
	switch {
	case pct >= 90:
		return TierGold
	case pct >= 70:
		return TierSilver
	case pct >= 50:
		return TierBronze
	}
	return TierNone
}

// Submission is the merged result of a successful score submission.
// Percentile is nil when the percentile read failed (hidden, not zero-filled);
// TopScores is empty when the leaderboard read failed (empty-state message).
type Submission struct {
	Summary    Summary             `json:"summary"`
	TopScores  []domain.ScoreEntry `json:"topScores"`
	Percentile *int                `json:"percentile,omitempty"`
}

// Aggregator submits guest scores and merges the follow-up reads.
type Aggregator struct {
	api ScoreAPI
}

func NewAggregator(api ScoreAPI) *Aggregator {
	return &Aggregator{api: api}
}

// Submit validates the guest name, posts the score, and then fetches the
// top-scores list and the percentile in parallel. The submission itself
// failing is returned to the caller (the form stays re-submittable); the
// follow-up reads degrade independently and never fail the submission.
func (a *Aggregator) Submit(ctx context.Context, guestName, contentID string, score, total int) (Submission, error) {
	name := strings.TrimSpace(guestName)
	if name == "" {
		return Submission{}, domain.ErrEmptyGuestName
	}
	if utf8.RuneCountInString(name) > domain.MaxGuestNameLen {
		return Submission{}, domain.ErrGuestNameTooLong
	}

	if err := a.api.SubmitScore(ctx, domain.ScoreSubmission{
		ContentID: contentID,
		Score:     score,
		GuestName: name,
	}); err != nil {
		return Submission{}, err
	}

	result := Submission{Summary: Summarize(score, total)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		entries, err := a.api.TopScores(gctx, contentID)
		if err != nil {
			log.Printf("top scores fetch failed for content %s: %v", contentID, err)
			return nil
		}
		result.TopScores = entries
		return nil
	})
	g.Go(func() error {
		pct, err := a.api.Percentile(gctx, contentID, score)
		if err != nil {
			log.Printf("percentile fetch failed for content %s: %v", contentID, err)
			return nil
		}
		result.Percentile = &pct
		return nil
	})
	_ = g.Wait()

	return result, nil
}
