// Package scoring derives review scores and address ratings from raw answers
// and collapses duplicate review rows. Every endpoint that aggregates reviews
// goes through SummarizeAddressReviews.
package scoring

import (
	"math"
	"time"

	"github.com/utafrali/neighborly/internal/domain"
)

const dayLayout = "2006-01-02"

// Round1 rounds v to one decimal place, halves away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ComputeReviewScore returns the mean of the rated (score > 0) answers,
// rounded to one decimal, or 0 when nothing was rated. Scores above the
// maximum count as the maximum.
func ComputeReviewScore(answers []domain.Answer) float64 {
	var sum, n int
	for _, a := range answers {
		if a.Score <= domain.MinScore {
			continue
		}
		sum += min(a.Score, domain.MaxScore)
		n++
	}
	if n == 0 {
		return 0
	}
	return Round1(float64(sum) / float64(n))
}

// ComputeAddressRating averages the scored (AverageScore > 0) reviews. The
// count covers every review passed in.
func ComputeAddressRating(reviews []domain.ScoredReview) domain.Rating {
	var sum float64
	var n int
	for _, r := range reviews {
		if r.AverageScore <= 0 {
			continue
		}
		sum += r.AverageScore
		n++
	}

	rating := domain.Rating{ReviewCount: len(reviews)}
	if n > 0 {
		rating.AverageRating = Round1(sum / float64(n))
	}
	return rating
}

// Score attaches the average score to each review, preserving order.
func Score(reviews []domain.Review) []domain.ScoredReview {
	out := make([]domain.ScoredReview, len(reviews))
	for i, r := range reviews {
		out[i] = domain.ScoredReview{Review: r, AverageScore: ComputeReviewScore(r.Answers)}
	}
	return out
}

// Aggregator buckets reviews by calendar day in a fixed location.
type Aggregator struct {
	loc *time.Location
}

// New returns an Aggregator using loc for calendar days. A nil loc means UTC.
func New(loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{loc: loc}
}

// Location returns the location calendar days are computed in.
func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// DedupKey is "<identity>-<YYYY-MM-DD>" for r.
func (a *Aggregator) DedupKey(r domain.Review) string {
	return r.IdentityKey() + "-" + r.CreatedAt.In(a.loc).Format(dayLayout)
}

// DeduplicateReviews keeps one review per identity and calendar day. A later
// review replaces the kept one only when it has strictly more answers, and
// takes over its position. Output follows first-occurrence order of the keys.
func (a *Aggregator) DeduplicateReviews(reviews []domain.ScoredReview) []domain.ScoredReview {
	out := make([]domain.ScoredReview, 0, len(reviews))
	slot := make(map[string]int, len(reviews))

	for _, r := range reviews {
		key := a.DedupKey(r.Review)
		i, ok := slot[key]
		if !ok {
			slot[key] = len(out)
			out = append(out, r)
			continue
		}
		if len(r.Answers) > len(out[i].Answers) {
			out[i] = r
		}
	}
	return out
}

// SummarizeAddressReviews scores, deduplicates and rates raw reviews.
func (a *Aggregator) SummarizeAddressReviews(raw []domain.Review) domain.Summary {
	reviews := a.DeduplicateReviews(Score(raw))
	return domain.Summary{
		Reviews: reviews,
		Rating:  ComputeAddressRating(reviews),
	}
}
