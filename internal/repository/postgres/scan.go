package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/neighborly/internal/domain"
	"github.com/utafrali/neighborly/internal/repository"
	"github.com/utafrali/neighborly/pkg/database"
)

const (
	addressColumns  = `a.id, a.street_address, a.city, a.state, a.zip_code, a.formatted_address, a.created_at`
	reviewColumns   = `r.id, r.address_id, r.user_id, r.user_email, r.is_anonymous, r.created_at`
	questionColumns = `q.id, q.text, q.description, q.category, q.is_active, q.created_at, q.updated_at`
)

// queryer is satisfied by both pools and transactions.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func addressDest(a *domain.Address) []any {
	return []any{&a.ID, &a.StreetAddress, &a.City, &a.State, &a.ZipCode, &a.FormattedAddress, &a.CreatedAt}
}

func reviewDest(r *domain.Review) []any {
	return []any{&r.ID, &r.AddressID, &r.UserID, &r.UserEmail, &r.IsAnonymous, &r.CreatedAt}
}

func questionDest(q *domain.Question) []any {
	return []any{&q.ID, &q.Text, &q.Description, &q.Category, &q.IsActive, &q.CreatedAt, &q.UpdatedAt}
}

// appendRange adds created_at bounds for r to where, numbering placeholders
// after the existing args.
func appendRange(where []string, args []any, column string, r repository.TimeRange) ([]string, []any) {
	if !r.From.IsZero() {
		args = append(args, r.From)
		where = append(where, column+" >= $"+strconv.Itoa(len(args)))
	}
	if !r.To.IsZero() {
		args = append(args, r.To)
		where = append(where, column+" < $"+strconv.Itoa(len(args)))
	}
	return where, args
}

func whereClause(where []string) string {
	if len(where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(where, " AND ")
}

// collectReviews scans rows of reviewColumns, optionally followed by
// addressColumns.
func collectReviews(rows pgx.Rows, withAddress bool) ([]domain.Review, error) {
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		dest := reviewDest(&rv)
		if withAddress {
			rv.Address = &domain.Address{}
			dest = append(dest, addressDest(rv.Address)...)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		rv.Answers = []domain.Answer{}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}
	return reviews, nil
}

const answersByReviewQuery = `
	SELECT ans.id, ans.review_id, ans.question_id, ans.score, ans.notes, ans.created_at,
	       ` + questionColumns + `
	FROM answers ans
	JOIN questions q ON q.id = ans.question_id
	WHERE ans.review_id = ANY($1)
	ORDER BY ans.created_at, ans.id`

// loadAnswers attaches answers, with their questions, to reviews.
func loadAnswers(ctx context.Context, db queryer, reviews []domain.Review) (err error) {
	if len(reviews) == 0 {
		return nil
	}

	ctx, end := database.TraceQuery(ctx, "LoadAnswers", answersByReviewQuery)
	defer func() { end(err) }()

	ids := make([]string, len(reviews))
	index := make(map[string]int, len(reviews))
	for i, r := range reviews {
		ids[i] = r.ID
		index[r.ID] = i
	}

	rows, err := db.Query(ctx, answersByReviewQuery, ids)
	if err != nil {
		return fmt.Errorf("load answers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a domain.Answer
		q := &domain.Question{}
		dest := append([]any{&a.ID, &a.ReviewID, &a.QuestionID, &a.Score, &a.Notes, &a.CreatedAt}, questionDest(q)...)
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("scan answer row: %w", err)
		}
		a.Question = q
		if i, ok := index[a.ReviewID]; ok {
			reviews[i].Answers = append(reviews[i].Answers, a)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate answer rows: %w", err)
	}
	return nil
}
