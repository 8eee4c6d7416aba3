package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/neighborly/internal/domain"
	"github.com/utafrali/neighborly/internal/repository"
	"github.com/utafrali/neighborly/pkg/database"
	apperrors "github.com/utafrali/neighborly/pkg/errors"
)

// QuestionRepository implements question persistence operations using PostgreSQL.
type QuestionRepository struct {
	pool database.DBTX
}

// NewQuestionRepository creates a new PostgreSQL-backed question repository.
func NewQuestionRepository(pool database.DBTX) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListActive returns active questions ordered by category then age.
func (r *QuestionRepository) ListActive(ctx context.Context) (_ []domain.Question, err error) {
	query := `SELECT ` + questionColumns + ` FROM questions q
		WHERE q.is_active
		ORDER BY q.category ASC, q.created_at ASC, q.id`

	ctx, end := database.TraceQuery(ctx, "ListActiveQuestions", query)
	defer func() { end(err) }()

	return r.list(ctx, query)
}

// ListAll returns every question ordered by category, newest first.
func (r *QuestionRepository) ListAll(ctx context.Context) (_ []domain.Question, err error) {
	query := `SELECT ` + questionColumns + ` FROM questions q
		ORDER BY q.category ASC, q.created_at DESC, q.id`

	ctx, end := database.TraceQuery(ctx, "ListQuestions", query)
	defer func() { end(err) }()

	return r.list(ctx, query)
}

func (r *QuestionRepository) list(ctx context.Context, query string, args ...any) ([]domain.Question, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	questions := []domain.Question{}
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(questionDest(&q)...); err != nil {
			return nil, fmt.Errorf("scan question row: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate question rows: %w", err)
	}
	return questions, nil
}

// GetByID retrieves a question by its identifier.
func (r *QuestionRepository) GetByID(ctx context.Context, id string) (_ *domain.Question, err error) {
	query := `SELECT ` + questionColumns + ` FROM questions q WHERE q.id = $1`

	ctx, end := database.TraceQuery(ctx, "GetQuestion", query)
	defer func() { end(err) }()

	var q domain.Question
	if err = r.pool.QueryRow(ctx, query, id).Scan(questionDest(&q)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("question", id)
		}
		return nil, fmt.Errorf("get question: %w", err)
	}
	return &q, nil
}

// ActiveIDs reports which of ids are active questions.
func (r *QuestionRepository) ActiveIDs(ctx context.Context, ids []string) (_ map[string]bool, err error) {
	found := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	query := `SELECT id FROM questions WHERE is_active AND id = ANY($1)`

	ctx, end := database.TraceQuery(ctx, "ActiveQuestionIDs", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan question id: %w", err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate question ids: %w", err)
	}
	return found, nil
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *domain.Question) (err error) {
	query := `
		INSERT INTO questions (id, text, description, category, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	ctx, end := database.TraceQuery(ctx, "CreateQuestion", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query,
		q.ID,
		q.Text,
		q.Description,
		q.Category,
		q.IsActive,
		q.CreatedAt,
		q.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.AlreadyExists("question", "id", q.ID)
		}
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

// Update overwrites a question's editable fields.
func (r *QuestionRepository) Update(ctx context.Context, q *domain.Question) (err error) {
	query := `
		UPDATE questions
		SET text = $2, description = $3, category = $4, is_active = $5, updated_at = $6
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "UpdateQuestion", query)
	defer func() { end(err) }()

	tag, err := r.pool.Exec(ctx, query,
		q.ID,
		q.Text,
		q.Description,
		q.Category,
		q.IsActive,
		q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("question", q.ID)
	}
	return nil
}

// Delete removes a question.
func (r *QuestionRepository) Delete(ctx context.Context, id string) (err error) {
	query := `DELETE FROM questions WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteQuestion", query)
	defer func() { end(err) }()

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("question", id)
	}
	return nil
}

// CountAnswers returns how many answers reference the question.
func (r *QuestionRepository) CountAnswers(ctx context.Context, id string) (_ int, err error) {
	query := `SELECT COUNT(*) FROM answers WHERE question_id = $1`

	ctx, end := database.TraceQuery(ctx, "CountQuestionAnswers", query)
	defer func() { end(err) }()

	var n int
	if err = r.pool.QueryRow(ctx, query, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("count answers: %w", err)
	}
	return n, nil
}

// CountActive returns the number of active questions created in tr.
func (r *QuestionRepository) CountActive(ctx context.Context, tr repository.TimeRange) (_ int, err error) {
	where, args := appendRange([]string{"is_active"}, nil, "created_at", tr)
	query := `SELECT COUNT(*) FROM questions` + whereClause(where)

	ctx, end := database.TraceQuery(ctx, "CountActiveQuestions", query)
	defer func() { end(err) }()

	var n int
	if err = r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

// LatestUpdated returns the most recently updated question, or nil when
// there are none.
func (r *QuestionRepository) LatestUpdated(ctx context.Context) (_ *domain.Question, err error) {
	query := `SELECT ` + questionColumns + ` FROM questions q ORDER BY q.updated_at DESC LIMIT 1`

	ctx, end := database.TraceQuery(ctx, "LatestQuestion", query)
	defer func() { end(err) }()

	var q domain.Question
	if err = r.pool.QueryRow(ctx, query).Scan(questionDest(&q)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest question: %w", err)
	}
	return &q, nil
}
