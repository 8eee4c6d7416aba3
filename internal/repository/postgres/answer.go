package postgres

import (
	"context"
	"fmt"

	"github.com/utafrali/neighborly/internal/repository"
	"github.com/utafrali/neighborly/pkg/database"
)

// AnswerRepository exposes answer statistics from PostgreSQL.
type AnswerRepository struct {
	pool database.DBTX
}

// NewAnswerRepository creates a new PostgreSQL-backed answer repository.
func NewAnswerRepository(pool database.DBTX) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

// AverageScore returns the unrounded mean of rated answers created in tr and
// how many were averaged. With no rated answers the mean is 0.
func (r *AnswerRepository) AverageScore(ctx context.Context, tr repository.TimeRange) (_ float64, _ int, err error) {
	where, args := appendRange([]string{"score > 0"}, nil, "created_at", tr)
	query := `SELECT COALESCE(AVG(score), 0)::float8, COUNT(*) FROM answers` + whereClause(where)

	ctx, end := database.TraceQuery(ctx, "AverageAnswerScore", query)
	defer func() { end(err) }()

	var (
		avg float64
		n   int
	)
	if err = r.pool.QueryRow(ctx, query, args...).Scan(&avg, &n); err != nil {
		return 0, 0, fmt.Errorf("average answer score: %w", err)
	}
	return avg, n, nil
}
