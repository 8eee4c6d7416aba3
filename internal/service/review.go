package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/utafrali/neighborly/internal/domain"
	"github.com/utafrali/neighborly/internal/repository"
	"github.com/utafrali/neighborly/internal/scoring"
	apperrors "github.com/utafrali/neighborly/pkg/errors"
)

const (
	DefaultRecentLimit = 3
	MaxRecentLimit     = 50
)

// ReviewEvents publishes review lifecycle events.
type ReviewEvents interface {
	PublishReviewCreated(ctx context.Context, review *domain.ScoredReview) error
	PublishReviewDeleted(ctx context.Context, review *domain.Review, deletedBy string) error
}

// SubmissionGuard remembers submission keys so a retried request is not
// stored twice.
type SubmissionGuard interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// AnswerInput is the score given to one question.
type AnswerInput struct {
	QuestionID string
	Score      int
	Notes      *string
}

// SubmitReviewInput holds the parameters for submitting a review.
type SubmitReviewInput struct {
	StreetAddress  string
	City           string
	State          string
	ZipCode        string
	IsAnonymous    bool
	Answers        []AnswerInput
	IdempotencyKey string
}

// ReviewService implements the business logic for review operations.
type ReviewService struct {
	reviews    repository.ReviewRepository
	questions  repository.QuestionRepository
	aggregator *scoring.Aggregator
	cache      SummaryStore
	events     ReviewEvents
	guard      SubmissionGuard
	admins     *AdminPolicy
	logger     *slog.Logger
	now        func() time.Time
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviews repository.ReviewRepository,
	questions repository.QuestionRepository,
	aggregator *scoring.Aggregator,
	cache SummaryStore,
	events ReviewEvents,
	guard SubmissionGuard,
	admins *AdminPolicy,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:    reviews,
		questions:  questions,
		aggregator: aggregator,
		cache:      cache,
		events:     events,
		guard:      guard,
		admins:     admins,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ListForAddress returns the deduplicated, scored reviews of an address.
func (s *ReviewService) ListForAddress(ctx context.Context, addressID string) ([]domain.ScoredReview, error) {
	if strings.TrimSpace(addressID) == "" {
		return nil, apperrors.InvalidInput("address id is required")
	}

	reviews, err := s.reviews.ListByAddress(ctx, addressID)
	if err != nil {
		return nil, fmt.Errorf("list reviews by address: %w", err)
	}
	return s.aggregator.SummarizeAddressReviews(redactAll(reviews)).Reviews, nil
}

// ListRecent returns the newest reviews. limit defaults to
// DefaultRecentLimit and is capped at MaxRecentLimit.
func (s *ReviewService) ListRecent(ctx context.Context, limit int) ([]domain.ScoredReview, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	limit = min(limit, MaxRecentLimit)

	reviews, err := s.reviews.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent reviews: %w", err)
	}
	return scoring.Score(redactAll(reviews)), nil
}

// ListMine returns every review written by the caller.
func (s *ReviewService) ListMine(ctx context.Context, caller *domain.Identity) ([]domain.ScoredReview, error) {
	if caller == nil {
		return nil, apperrors.Unauthorized("authentication required")
	}
	if caller.Email == "" {
		return nil, apperrors.InvalidInput("user email not found")
	}

	reviews, err := s.reviews.ListByUserEmail(ctx, caller.Email)
	if err != nil {
		return nil, fmt.Errorf("list reviews by user: %w", err)
	}
	return scoring.Score(reviews), nil
}

// Submit stores a review and its answers. caller may be nil for a signed-out
// visitor.
func (s *ReviewService) Submit(ctx context.Context, caller *domain.Identity, input *SubmitReviewInput) (*domain.ScoredReview, error) {
	street := strings.TrimSpace(input.StreetAddress)
	city := strings.TrimSpace(input.City)
	state := strings.TrimSpace(input.State)
	zip := strings.TrimSpace(input.ZipCode)
	if street == "" || city == "" || state == "" || zip == "" {
		return nil, apperrors.InvalidInput("missing required address fields")
	}
	if err := s.validateAnswers(ctx, input.Answers); err != nil {
		return nil, err
	}

	if input.IdempotencyKey != "" {
		claimed, err := s.guard.Claim(ctx, input.IdempotencyKey)
		if err != nil {
			s.logger.WarnContext(ctx, "idempotency claim failed, accepting submission",
				slog.String("error", err.Error()),
			)
		} else if !claimed {
			return nil, apperrors.Conflict("review submission already received")
		}
	}

	now := s.now()
	address := &domain.Address{
		ID:               uuid.New().String(),
		StreetAddress:    street,
		City:             city,
		State:            state,
		ZipCode:          zip,
		FormattedAddress: domain.FormatAddress(street, city, state, zip),
		CreatedAt:        now,
	}

	review := &domain.Review{
		ID:          uuid.New().String(),
		IsAnonymous: input.IsAnonymous,
		CreatedAt:   now,
		Answers:     make([]domain.Answer, 0, len(input.Answers)),
	}
	if caller != nil {
		if userID := caller.UserID; userID != "" {
			review.UserID = &userID
		}
		if email := caller.Email; email != "" {
			review.UserEmail = &email
		}
	}
	for _, a := range input.Answers {
		review.Answers = append(review.Answers, domain.Answer{
			ID:         uuid.New().String(),
			ReviewID:   review.ID,
			QuestionID: a.QuestionID,
			Score:      a.Score,
			Notes:      a.Notes,
			CreatedAt:  now,
		})
	}

	if err := s.reviews.CreateWithAnswers(ctx, review, address); err != nil {
		if input.IdempotencyKey != "" {
			if rerr := s.guard.Release(ctx, input.IdempotencyKey); rerr != nil {
				s.logger.WarnContext(ctx, "failed to release idempotency key",
					slog.String("error", rerr.Error()),
				)
			}
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	scored := &domain.ScoredReview{
		Review:       *review,
		AverageScore: scoring.ComputeReviewScore(review.Answers),
	}

	if err := s.events.PublishReviewCreated(ctx, scored); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}
	s.invalidate(ctx, review.AddressID)

	s.logger.InfoContext(ctx, "review submitted",
		slog.String("review_id", review.ID),
		slog.String("address_id", review.AddressID),
		slog.Int("answers", len(review.Answers)),
		slog.Bool("anonymous", review.IsAnonymous),
	)

	out := *scored
	out.Review = out.Review.Redacted()
	return &out, nil
}

func (s *ReviewService) validateAnswers(ctx context.Context, answers []AnswerInput) error {
	if len(answers) == 0 {
		return apperrors.InvalidInput("at least one answer is required")
	}

	ids := make([]string, 0, len(answers))
	seen := make(map[string]struct{}, len(answers))
	for _, a := range answers {
		if a.QuestionID == "" {
			return apperrors.InvalidInput("question id is required")
		}
		if a.Score < domain.MinScore || a.Score > domain.MaxScore {
			return apperrors.InvalidInput(fmt.Sprintf("score for question %s must be between %d and %d", a.QuestionID, domain.MinScore, domain.MaxScore))
		}
		if a.Notes != nil && utf8.RuneCountInString(*a.Notes) > domain.MaxNotesLength {
			return apperrors.InvalidInput(fmt.Sprintf("notes for question %s must be at most %d characters", a.QuestionID, domain.MaxNotesLength))
		}
		if _, dup := seen[a.QuestionID]; dup {
			return apperrors.InvalidInput(fmt.Sprintf("question %s answered more than once", a.QuestionID))
		}
		seen[a.QuestionID] = struct{}{}
		ids = append(ids, a.QuestionID)
	}

	active, err := s.questions.ActiveIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("check questions: %w", err)
	}
	for _, id := range ids {
		if !active[id] {
			return apperrors.InvalidInput(fmt.Sprintf("question %s does not exist or is inactive", id))
		}
	}
	return nil
}

// Delete removes a review. Only its author or an administrator may do so.
func (s *ReviewService) Delete(ctx context.Context, caller *domain.Identity, id string) error {
	if caller == nil {
		return apperrors.Unauthorized("authentication required")
	}

	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get review by id: %w", err)
	}

	if !review.OwnedBy(caller.UserID, caller.Email) && !s.admins.IsAdmin(caller.Email) {
		return apperrors.Forbidden("you can only delete your own reviews")
	}

	if err := s.reviews.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if err := s.events.PublishReviewDeleted(ctx, review, caller.UserID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.deleted event",
			slog.String("review_id", id),
			slog.String("error", err.Error()),
		)
	}
	s.invalidate(ctx, review.AddressID)

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("review_id", id),
		slog.String("address_id", review.AddressID),
	)
	return nil
}

// AdminList returns a page of reviews, newest first, with the total count.
func (s *ReviewService) AdminList(ctx context.Context, filter repository.ReviewFilter) ([]domain.ScoredReview, int, error) {
	reviews, total, err := s.reviews.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	return scoring.Score(reviews), total, nil
}

func (s *ReviewService) invalidate(ctx context.Context, addressID string) {
	if err := s.cache.Invalidate(ctx, addressID); err != nil {
		s.logger.WarnContext(ctx, "summary cache invalidation failed",
			slog.String("address_id", addressID),
			slog.String("error", err.Error()),
		)
	}
}
