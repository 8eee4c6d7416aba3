package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/utafrali/neighborly/internal/domain"
	"github.com/utafrali/neighborly/internal/repository"
	"github.com/utafrali/neighborly/internal/scoring"
)

const (
	// topAddressCandidates is how many reviewed addresses are ranked.
	topAddressCandidates = 50
	topAddressCount      = 3
)

// DashboardService assembles the admin dashboard.
type DashboardService struct {
	reviews    repository.ReviewRepository
	questions  repository.QuestionRepository
	answers    repository.AnswerRepository
	addresses  repository.AddressRepository
	aggregator *scoring.Aggregator
	logger     *slog.Logger
	now        func() time.Time
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(
	reviews repository.ReviewRepository,
	questions repository.QuestionRepository,
	answers repository.AnswerRepository,
	addresses repository.AddressRepository,
	aggregator *scoring.Aggregator,
	logger *slog.Logger,
) *DashboardService {
	return &DashboardService{
		reviews:    reviews,
		questions:  questions,
		answers:    answers,
		addresses:  addresses,
		aggregator: aggregator,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Get computes statistics over the last month compared with the month
// before, the latest activity and the best rated addresses.
func (s *DashboardService) Get(ctx context.Context) (*domain.Dashboard, error) {
	now := s.now()
	oneMonthAgo := now.AddDate(0, -1, 0)
	twoMonthsAgo := oneMonthAgo.AddDate(0, -1, 0)

	var (
		all         repository.TimeRange
		lastMonth   = repository.Since(oneMonthAgo)
		monthBefore = repository.Between(twoMonthsAgo, oneMonthAgo)

		totalReviews, reviewsLast, reviewsBefore int
		totalUsers, usersLast, usersBefore       int
		avgAll, avgLast, avgBefore               float64
		activeQuestions, newQuestions            int
		recent                                   []domain.Review
		latestQuestion                           *domain.Question
		candidates                               []domain.AddressWithReviews
	)

	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int, f func(context.Context, repository.TimeRange) (int, error), r repository.TimeRange) {
		g.Go(func() error {
			n, err := f(gctx, r)
			*dst = n
			return err
		})
	}
	average := func(dst *float64, r repository.TimeRange) {
		g.Go(func() error {
			avg, _, err := s.answers.AverageScore(gctx, r)
			*dst = avg
			return err
		})
	}

	count(&totalReviews, s.reviews.Count, all)
	count(&reviewsLast, s.reviews.Count, lastMonth)
	count(&reviewsBefore, s.reviews.Count, monthBefore)
	count(&totalUsers, s.reviews.CountDistinctUsers, all)
	count(&usersLast, s.reviews.CountDistinctUsers, lastMonth)
	count(&usersBefore, s.reviews.CountDistinctUsers, monthBefore)
	count(&activeQuestions, s.questions.CountActive, all)
	count(&newQuestions, s.questions.CountActive, lastMonth)
	average(&avgAll, all)
	average(&avgLast, lastMonth)
	average(&avgBefore, monthBefore)

	g.Go(func() (err error) {
		recent, err = s.reviews.ListRecent(gctx, 1)
		return err
	})
	g.Go(func() (err error) {
		latestQuestion, err = s.questions.LatestUpdated(gctx)
		return err
	})
	g.Go(func() (err error) {
		candidates, err = s.addresses.ListWithReviews(gctx, topAddressCandidates)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	dash := &domain.Dashboard{
		Statistics: domain.DashboardStats{
			TotalReviews:          totalReviews,
			ReviewGrowthRate:      domain.GrowthRate(reviewsBefore, reviewsLast),
			TotalUsers:            totalUsers,
			UserGrowthRate:        domain.GrowthRate(usersBefore, usersLast),
			AverageRating:         scoring.Round1(avgAll),
			RatingTrend:           domain.TrendOf(avgBefore, avgLast),
			ActiveQuestions:       activeQuestions,
			NewQuestionsThisMonth: newQuestions,
		},
		RecentActivity: domain.RecentActivity{LatestQuestion: latestQuestion},
		TopAddresses:   s.topAddresses(candidates),
	}

	if len(recent) > 0 {
		latest := scoring.Score(redactAll(recent[:1]))[0]
		dash.RecentActivity.LatestReview = &latest
		if latest.UserID != nil {
			u := &domain.LatestUser{ID: *latest.UserID, CreatedAt: latest.CreatedAt}
			if latest.UserEmail != nil {
				u.Email = *latest.UserEmail
			}
			dash.RecentActivity.LatestUser = u
		}
	}

	s.logger.DebugContext(ctx, "dashboard computed",
		slog.Int("total_reviews", totalReviews),
		slog.Int("candidates", len(candidates)),
	)
	return dash, nil
}

// topAddresses ranks addresses by average rating, then review count.
func (s *DashboardService) topAddresses(candidates []domain.AddressWithReviews) []domain.TopAddress {
	top := make([]domain.TopAddress, 0, len(candidates))
	for _, a := range candidates {
		if len(a.Reviews) == 0 {
			continue
		}
		summary := s.aggregator.SummarizeAddressReviews(redactAll(a.Reviews))
		top = append(top, domain.TopAddress{
			ID:            a.ID,
			Address:       a.StreetAddress,
			City:          a.City,
			ReviewCount:   summary.ReviewCount,
			AverageRating: summary.AverageRating,
			Reviews:       summary.Reviews,
		})
	}

	slices.SortStableFunc(top, func(a, b domain.TopAddress) int {
		if c := cmp.Compare(b.AverageRating, a.AverageRating); c != 0 {
			return c
		}
		return b.ReviewCount - a.ReviewCount
	})
	if len(top) > topAddressCount {
		top = top[:topAddressCount]
	}
	return top
}
