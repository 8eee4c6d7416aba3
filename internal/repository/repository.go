package repository

import (
	"context"
	"time"

	"github.com/utafrali/neighborly/internal/domain"
)

// TimeRange bounds created_at. A zero From or To leaves that side open.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// Since returns the range [from, now).
func Since(from time.Time) TimeRange {
	return TimeRange{From: from}
}

// Between returns the range [from, to).
func Between(from, to time.Time) TimeRange {
	return TimeRange{From: from, To: to}
}

// ReviewFilter defines filter criteria for listing reviews.
type ReviewFilter struct {
	AddressID *string
	Limit     int
	Offset    int
}

// AddressRepository defines the interface for address persistence operations.
type AddressRepository interface {
	// GetByID retrieves an address by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Address, error)

	// GetByFormatted retrieves an address by its normalised key.
	GetByFormatted(ctx context.Context, formatted string) (*domain.Address, error)

	// Create inserts the address, or loads the existing row with the same
	// formatted address, and sets a.ID.
	Create(ctx context.Context, a *domain.Address) error

	// Search matches query case-insensitively against every address column,
	// ordered by city, with each address's reviews and answers loaded.
	Search(ctx context.Context, query string, limit int) ([]domain.AddressWithReviews, error)

	// Suggest matches like Search but only returns review counts.
	Suggest(ctx context.Context, query string, limit int) ([]domain.AddressSuggestion, error)

	// ListWithReviews returns addresses that have reviews, with reviews and
	// answers loaded.
	ListWithReviews(ctx context.Context, limit int) ([]domain.AddressWithReviews, error)
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// CreateWithAnswers stores the address (if new), the review and its
	// answers in a single transaction.
	CreateWithAnswers(ctx context.Context, review *domain.Review, address *domain.Address) error

	// GetByID retrieves a review with its answers.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// ListByAddress returns an address's reviews, newest first, with answers
	// and their questions.
	ListByAddress(ctx context.Context, addressID string) ([]domain.Review, error)

	// ListRecent returns the newest reviews with address and answers.
	ListRecent(ctx context.Context, limit int) ([]domain.Review, error)

	// ListByUserEmail returns every review attributed to email, newest first.
	ListByUserEmail(ctx context.Context, email string) ([]domain.Review, error)

	// List returns reviews matching the filter along with the total count.
	List(ctx context.Context, filter ReviewFilter) ([]domain.Review, int, error)

	// Delete removes a review and its answers.
	Delete(ctx context.Context, id string) error

	// Count returns the number of reviews created in r.
	Count(ctx context.Context, r TimeRange) (int, error)

	// CountDistinctUsers returns the number of distinct signed-in reviewers in r.
	CountDistinctUsers(ctx context.Context, r TimeRange) (int, error)

	// CountByUserEmail returns review counts keyed by email.
	CountByUserEmail(ctx context.Context, emails []string) (map[string]int, error)
}

// QuestionRepository defines the interface for question persistence operations.
type QuestionRepository interface {
	ListActive(ctx context.Context) ([]domain.Question, error)
	ListAll(ctx context.Context) ([]domain.Question, error)
	GetByID(ctx context.Context, id string) (*domain.Question, error)

	// ActiveIDs returns which of ids name active questions.
	ActiveIDs(ctx context.Context, ids []string) (map[string]bool, error)

	Create(ctx context.Context, q *domain.Question) error
	Update(ctx context.Context, q *domain.Question) error
	Delete(ctx context.Context, id string) error

	// CountAnswers returns how many answers reference the question.
	CountAnswers(ctx context.Context, id string) (int, error)

	// CountActive returns the number of active questions created in r.
	CountActive(ctx context.Context, r TimeRange) (int, error)

	// LatestUpdated returns the most recently updated question, or nil.
	LatestUpdated(ctx context.Context) (*domain.Question, error)
}

// AnswerRepository exposes answer statistics.
type AnswerRepository interface {
	// AverageScore returns the mean rated (score > 0) answer in r and the
	// number of answers it covers.
	AverageScore(ctx context.Context, r TimeRange) (float64, int, error)
}
