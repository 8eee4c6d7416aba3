package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/utafrali/neighborly/internal/domain"
	"github.com/utafrali/neighborly/internal/repository"
	"github.com/utafrali/neighborly/internal/scoring"
	apperrors "github.com/utafrali/neighborly/pkg/errors"
)

const (
	MinSearchLength       = 3
	MaxSearchResults      = 10
	MinAutocompleteLength = 5
	MaxSuggestions        = 5
)

// SummaryStore caches aggregated address payloads.
type SummaryStore interface {
	Get(ctx context.Context, addressID string) (*domain.AddressResult, error)
	Set(ctx context.Context, res *domain.AddressResult) error
	Invalidate(ctx context.Context, addressIDs ...string) error
}

// AddressService implements address search and detail lookups.
type AddressService struct {
	addresses  repository.AddressRepository
	reviews    repository.ReviewRepository
	aggregator *scoring.Aggregator
	cache      SummaryStore
	logger     *slog.Logger
}

// NewAddressService creates a new address service.
func NewAddressService(
	addresses repository.AddressRepository,
	reviews repository.ReviewRepository,
	aggregator *scoring.Aggregator,
	cache SummaryStore,
	logger *slog.Logger,
) *AddressService {
	return &AddressService{
		addresses:  addresses,
		reviews:    reviews,
		aggregator: aggregator,
		cache:      cache,
		logger:     logger,
	}
}

// Search returns up to MaxSearchResults addresses matching query, each with
// its aggregated reviews.
func (s *AddressService) Search(ctx context.Context, query string) ([]domain.AddressResult, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinSearchLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("search query must be at least %d characters", MinSearchLength))
	}

	found, err := s.addresses.Search(ctx, query, MaxSearchResults)
	if err != nil {
		return nil, fmt.Errorf("search addresses: %w", err)
	}

	results := make([]domain.AddressResult, 0, len(found))
	for _, a := range found {
		results = append(results, s.summarize(a.Address, a.Reviews))
	}
	return results, nil
}

// Autocomplete returns suggestions for query, most reviewed first. Short
// queries yield no suggestions.
func (s *AddressService) Autocomplete(ctx context.Context, query string) ([]domain.AddressSuggestion, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinAutocompleteLength {
		return []domain.AddressSuggestion{}, nil
	}

	suggestions, err := s.addresses.Suggest(ctx, query, MaxSuggestions)
	if err != nil {
		return nil, fmt.Errorf("suggest addresses: %w", err)
	}
	if suggestions == nil {
		suggestions = []domain.AddressSuggestion{}
	}

	slices.SortStableFunc(suggestions, func(a, b domain.AddressSuggestion) int {
		return b.ReviewCount - a.ReviewCount
	})
	return suggestions, nil
}

// GetAddress returns the address with its deduplicated, scored reviews.
// Results are served from the summary cache when present.
func (s *AddressService) GetAddress(ctx context.Context, id string) (*domain.AddressResult, error) {
	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "summary cache read failed",
			slog.String("address_id", id),
			slog.String("error", err.Error()),
		)
	}
	if cached != nil {
		return cached, nil
	}

	address, err := s.addresses.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get address by id: %w", err)
	}

	reviews, err := s.reviews.ListByAddress(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list address reviews: %w", err)
	}

	res := s.summarize(*address, reviews)
	if err := s.cache.Set(ctx, &res); err != nil {
		s.logger.WarnContext(ctx, "summary cache write failed",
			slog.String("address_id", id),
			slog.String("error", err.Error()),
		)
	}
	return &res, nil
}

func (s *AddressService) summarize(address domain.Address, reviews []domain.Review) domain.AddressResult {
	return domain.AddressResult{
		Address: address,
		Summary: s.aggregator.SummarizeAddressReviews(redactAll(reviews)),
	}
}

// redactAll strips the identity of anonymous reviews.
func redactAll(reviews []domain.Review) []domain.Review {
	out := make([]domain.Review, len(reviews))
	for i, r := range reviews {
		out[i] = r.Redacted()
	}
	return out
}
