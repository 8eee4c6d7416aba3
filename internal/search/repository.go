package search

import (
	"context"
	"log/slog"

	"github.com/utafrali/neighborly/internal/domain"
	"github.com/utafrali/neighborly/internal/repository"
)

// Suggester is the read side of the index.
type Suggester interface {
	Suggest(ctx context.Context, query string, limit int) ([]domain.AddressSuggestion, error)
}

// SuggestingRepository serves autocomplete from the search index and every
// other call from the wrapped repository. Index errors fall back to the
// database.
type SuggestingRepository struct {
	repository.AddressRepository
	index  Suggester
	logger *slog.Logger
}

// WithSuggestions wraps repo so Suggest reads from index.
func WithSuggestions(repo repository.AddressRepository, index Suggester, logger *slog.Logger) *SuggestingRepository {
	return &SuggestingRepository{AddressRepository: repo, index: index, logger: logger}
}

// Suggest queries the index, falling back to the database on error.
func (r *SuggestingRepository) Suggest(ctx context.Context, query string, limit int) ([]domain.AddressSuggestion, error) {
	suggestions, err := r.index.Suggest(ctx, query, limit)
	if err == nil {
		return suggestions, nil
	}

	r.logger.WarnContext(ctx, "search index unavailable, suggesting from database",
		slog.String("error", err.Error()),
	)
	return r.AddressRepository.Suggest(ctx, query, limit)
}
