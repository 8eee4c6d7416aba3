package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/neighborly/internal/domain"
	"github.com/utafrali/neighborly/internal/repository"
)

// --- Mock Repositories ---

type mockAddressRepository struct {
	mock.Mock
}

func (m *mockAddressRepository) GetByID(ctx context.Context, id string) (*domain.Address, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}

func (m *mockAddressRepository) GetByFormatted(ctx context.Context, formatted string) (*domain.Address, error) {
	args := m.Called(ctx, formatted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}

func (m *mockAddressRepository) Create(ctx context.Context, a *domain.Address) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAddressRepository) Search(ctx context.Context, query string, limit int) ([]domain.AddressWithReviews, error) {
	args := m.Called(ctx, query, limit)
	return args.Get(0).([]domain.AddressWithReviews), args.Error(1)
}

func (m *mockAddressRepository) Suggest(ctx context.Context, query string, limit int) ([]domain.AddressSuggestion, error) {
	args := m.Called(ctx, query, limit)
	return args.Get(0).([]domain.AddressSuggestion), args.Error(1)
}

func (m *mockAddressRepository) ListWithReviews(ctx context.Context, limit int) ([]domain.AddressWithReviews, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.AddressWithReviews), args.Error(1)
}

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) CreateWithAnswers(ctx context.Context, review *domain.Review, address *domain.Address) error {
	return m.Called(ctx, review, address).Error(0)
}

func (m *mockReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) ListByAddress(ctx context.Context, addressID string) ([]domain.Review, error) {
	args := m.Called(ctx, addressID)
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) ListRecent(ctx context.Context, limit int) ([]domain.Review, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) ListByUserEmail(ctx context.Context, email string) ([]domain.Review, error) {
	args := m.Called(ctx, email)
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) List(ctx context.Context, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockReviewRepository) Count(ctx context.Context, r repository.TimeRange) (int, error) {
	args := m.Called(ctx, r)
	return args.Int(0), args.Error(1)
}

func (m *mockReviewRepository) CountDistinctUsers(ctx context.Context, r repository.TimeRange) (int, error) {
	args := m.Called(ctx, r)
	return args.Int(0), args.Error(1)
}

func (m *mockReviewRepository) CountByUserEmail(ctx context.Context, emails []string) (map[string]int, error) {
	args := m.Called(ctx, emails)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

type mockQuestionRepository struct {
	mock.Mock
}

func (m *mockQuestionRepository) ListActive(ctx context.Context) ([]domain.Question, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Question), args.Error(1)
}

func (m *mockQuestionRepository) ListAll(ctx context.Context) ([]domain.Question, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Question), args.Error(1)
}

func (m *mockQuestionRepository) GetByID(ctx context.Context, id string) (*domain.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Question), args.Error(1)
}

func (m *mockQuestionRepository) ActiveIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *mockQuestionRepository) Create(ctx context.Context, q *domain.Question) error {
	return m.Called(ctx, q).Error(0)
}

func (m *mockQuestionRepository) Update(ctx context.Context, q *domain.Question) error {
	return m.Called(ctx, q).Error(0)
}

func (m *mockQuestionRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockQuestionRepository) CountAnswers(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *mockQuestionRepository) CountActive(ctx context.Context, r repository.TimeRange) (int, error) {
	args := m.Called(ctx, r)
	return args.Int(0), args.Error(1)
}

func (m *mockQuestionRepository) LatestUpdated(ctx context.Context) (*domain.Question, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Question), args.Error(1)
}

type mockAnswerRepository struct {
	mock.Mock
}

func (m *mockAnswerRepository) AverageScore(ctx context.Context, r repository.TimeRange) (float64, int, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(float64), args.Int(1), args.Error(2)
}

// --- Mock Collaborators ---

type mockSummaryStore struct {
	mock.Mock
}

func (m *mockSummaryStore) Get(ctx context.Context, addressID string) (*domain.AddressResult, error) {
	args := m.Called(ctx, addressID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AddressResult), args.Error(1)
}

func (m *mockSummaryStore) Set(ctx context.Context, res *domain.AddressResult) error {
	return m.Called(ctx, res).Error(0)
}

func (m *mockSummaryStore) Invalidate(ctx context.Context, addressIDs ...string) error {
	return m.Called(ctx, addressIDs).Error(0)
}

type mockReviewEvents struct {
	mock.Mock
}

func (m *mockReviewEvents) PublishReviewCreated(ctx context.Context, review *domain.ScoredReview) error {
	return m.Called(ctx, review).Error(0)
}

func (m *mockReviewEvents) PublishReviewDeleted(ctx context.Context, review *domain.Review, deletedBy string) error {
	return m.Called(ctx, review, deletedBy).Error(0)
}

type mockQuestionEvents struct {
	mock.Mock
}

func (m *mockQuestionEvents) PublishQuestionChanged(ctx context.Context, q *domain.Question, action string) error {
	return m.Called(ctx, q, action).Error(0)
}

type mockGuard struct {
	mock.Mock
}

func (m *mockGuard) Claim(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *mockGuard) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) GetIdentity(ctx context.Context, userID string) (*domain.Identity, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *mockDirectory) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]domain.User), args.Error(1)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}

func answers(scores ...int) []domain.Answer {
	out := make([]domain.Answer, len(scores))
	for i, s := range scores {
		out[i] = domain.Answer{QuestionID: "q" + string(rune('1'+i)), Score: s}
	}
	return out
}
