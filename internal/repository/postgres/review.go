package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/neighborly/internal/domain"
	"github.com/utafrali/neighborly/internal/repository"
	"github.com/utafrali/neighborly/pkg/database"
	apperrors "github.com/utafrali/neighborly/pkg/errors"
)

// ReviewRepository implements review persistence operations using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

const reviewWithAddressFrom = `
	SELECT ` + reviewColumns + `, ` + addressColumns + `
	FROM reviews r
	JOIN addresses a ON a.id = r.address_id`

// CreateWithAnswers stores the address, the review and its answers in one
// transaction. review.AddressID is taken from the stored address.
func (r *ReviewRepository) CreateWithAnswers(ctx context.Context, review *domain.Review, address *domain.Address) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateReview", "INSERT INTO reviews")
	defer func() { end(err) }()

	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := ensureAddress(ctx, tx, address); err != nil {
			return err
		}
		review.AddressID = address.ID
		review.Address = address

		_, err := tx.Exec(ctx, `
			INSERT INTO reviews (id, address_id, user_id, user_email, is_anonymous, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			review.ID,
			review.AddressID,
			review.UserID,
			review.UserEmail,
			review.IsAnonymous,
			review.CreatedAt,
		)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return apperrors.AlreadyExists("review", "id", review.ID)
			}
			return fmt.Errorf("insert review: %w", err)
		}

		for i := range review.Answers {
			a := &review.Answers[i]
			a.ReviewID = review.ID
			_, err := tx.Exec(ctx, `
				INSERT INTO answers (id, review_id, question_id, score, notes, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				a.ID,
				a.ReviewID,
				a.QuestionID,
				a.Score,
				a.Notes,
				a.CreatedAt,
			)
			if err != nil {
				if database.IsUniqueViolation(err) {
					return apperrors.InvalidInput("question " + a.QuestionID + " answered more than once")
				}
				return fmt.Errorf("insert answer: %w", err)
			}
		}
		return nil
	})
}

// GetByID retrieves a review with its address and answers.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (_ *domain.Review, err error) {
	query := reviewWithAddressFrom + ` WHERE r.id = $1`

	ctx, end := database.TraceQuery(ctx, "GetReview", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	reviews, err := collectReviews(rows, true)
	if err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return nil, apperrors.NotFound("review", id)
	}
	if err := loadAnswers(ctx, r.pool, reviews); err != nil {
		return nil, err
	}
	return &reviews[0], nil
}

// ListByAddress returns an address's reviews, newest first.
func (r *ReviewRepository) ListByAddress(ctx context.Context, addressID string) (_ []domain.Review, err error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews r
		WHERE r.address_id = $1
		ORDER BY r.created_at DESC, r.id`

	ctx, end := database.TraceQuery(ctx, "ListReviewsByAddress", query)
	defer func() { end(err) }()

	return r.list(ctx, query, false, addressID)
}

// ListRecent returns the newest reviews.
func (r *ReviewRepository) ListRecent(ctx context.Context, limit int) (_ []domain.Review, err error) {
	query := reviewWithAddressFrom + ` ORDER BY r.created_at DESC, r.id LIMIT $1`

	ctx, end := database.TraceQuery(ctx, "ListRecentReviews", query)
	defer func() { end(err) }()

	return r.list(ctx, query, true, limit)
}

// ListByUserEmail returns reviews attributed to email, newest first.
func (r *ReviewRepository) ListByUserEmail(ctx context.Context, email string) (_ []domain.Review, err error) {
	query := reviewWithAddressFrom + ` WHERE r.user_email = $1 ORDER BY r.created_at DESC, r.id`

	ctx, end := database.TraceQuery(ctx, "ListReviewsByUser", query)
	defer func() { end(err) }()

	return r.list(ctx, query, true, email)
}

// List returns a page of reviews matching the filter and the total count.
func (r *ReviewRepository) List(ctx context.Context, filter repository.ReviewFilter) (_ []domain.Review, _ int, err error) {
	var (
		where []string
		args  []any
	)
	if filter.AddressID != nil {
		args = append(args, *filter.AddressID)
		where = append(where, "r.address_id = $"+strconv.Itoa(len(args)))
	}
	cond := whereClause(where)

	countQuery := `SELECT COUNT(*) FROM reviews r` + cond

	ctx, end := database.TraceQuery(ctx, "ListReviews", countQuery)
	defer func() { end(err) }()

	var total int
	if err = r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := reviewWithAddressFrom + cond + fmt.Sprintf(
		" ORDER BY r.created_at DESC, r.id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	reviews, err := r.list(ctx, query, true, args...)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *ReviewRepository) list(ctx context.Context, query string, withAddress bool, args ...any) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	reviews, err := collectReviews(rows, withAddress)
	if err != nil {
		return nil, err
	}
	if err := loadAnswers(ctx, r.pool, reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// Delete removes a review's answers and then the review in one transaction.
func (r *ReviewRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, end := database.TraceQuery(ctx, "DeleteReview", "DELETE FROM reviews")
	defer func() { end(err) }()

	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM answers WHERE review_id = $1`, id); err != nil {
			return fmt.Errorf("delete answers: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete review: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound("review", id)
		}
		return nil
	})
}

// Count returns the number of reviews created in tr.
func (r *ReviewRepository) Count(ctx context.Context, tr repository.TimeRange) (_ int, err error) {
	where, args := appendRange(nil, nil, "created_at", tr)
	query := `SELECT COUNT(*) FROM reviews` + whereClause(where)

	ctx, end := database.TraceQuery(ctx, "CountReviews", query)
	defer func() { end(err) }()

	var n int
	if err = r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return n, nil
}

// CountDistinctUsers returns the number of distinct user ids reviewing in tr.
func (r *ReviewRepository) CountDistinctUsers(ctx context.Context, tr repository.TimeRange) (_ int, err error) {
	where, args := appendRange([]string{"user_id IS NOT NULL"}, nil, "created_at", tr)
	query := `SELECT COUNT(DISTINCT user_id) FROM reviews` + whereClause(where)

	ctx, end := database.TraceQuery(ctx, "CountReviewUsers", query)
	defer func() { end(err) }()

	var n int
	if err = r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count review users: %w", err)
	}
	return n, nil
}

// CountByUserEmail returns review counts for the given emails. Emails without
// reviews are absent from the result.
func (r *ReviewRepository) CountByUserEmail(ctx context.Context, emails []string) (_ map[string]int, err error) {
	counts := make(map[string]int, len(emails))
	if len(emails) == 0 {
		return counts, nil
	}

	query := `SELECT user_email, COUNT(*) FROM reviews WHERE user_email = ANY($1) GROUP BY user_email`

	ctx, end := database.TraceQuery(ctx, "CountReviewsByUser", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, emails)
	if err != nil {
		return nil, fmt.Errorf("count reviews by user: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			email string
			n     int
		)
		if err := rows.Scan(&email, &n); err != nil {
			return nil, fmt.Errorf("scan review count row: %w", err)
		}
		counts[email] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review count rows: %w", err)
	}
	return counts, nil
}
