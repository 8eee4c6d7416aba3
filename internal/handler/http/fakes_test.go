package http

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/utafrali/neighborly/internal/domain"
	"github.com/utafrali/neighborly/internal/repository"
	apperrors "github.com/utafrali/neighborly/pkg/errors"
)

// store is an in-memory stand-in for the PostgreSQL repositories.
type store struct {
	mu        sync.Mutex
	addresses map[string]domain.Address
	reviews   []domain.Review
	questions map[string]domain.Question
	published []string
}

func newStore() *store {
	return &store{
		addresses: map[string]domain.Address{},
		questions: map[string]domain.Question{},
	}
}

type addressRepo struct{ *store }
type reviewRepo struct{ *store }
type questionRepo struct{ *store }
type answerRepo struct{ *store }

func (s *store) reviewsOf(addressID string) []domain.Review {
	var out []domain.Review
	for _, r := range s.reviews {
		if r.AddressID == addressID {
			out = append(out, r)
		}
	}
	return out
}

func matches(a domain.Address, query string) bool {
	q := strings.ToLower(query)
	for _, f := range []string{a.StreetAddress, a.City, a.State, a.ZipCode, a.FormattedAddress} {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func (r addressRepo) GetByID(_ context.Context, id string) (*domain.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.addresses[id]
	if !ok {
		return nil, apperrors.NotFound("address", id)
	}
	return &a, nil
}

func (r addressRepo) GetByFormatted(_ context.Context, formatted string) (*domain.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.addresses {
		if a.FormattedAddress == formatted {
			return &a, nil
		}
	}
	return nil, apperrors.NotFound("address", formatted)
}

func (r addressRepo) Create(_ context.Context, a *domain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addresses[a.ID] = *a
	return nil
}

func (r addressRepo) Search(_ context.Context, query string, limit int) ([]domain.AddressWithReviews, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AddressWithReviews
	for _, a := range r.addresses {
		if matches(a, query) && len(out) < limit {
			out = append(out, domain.AddressWithReviews{Address: a, Reviews: r.reviewsOf(a.ID)})
		}
	}
	return out, nil
}

func (r addressRepo) Suggest(_ context.Context, query string, limit int) ([]domain.AddressSuggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AddressSuggestion
	for _, a := range r.addresses {
		if matches(a, query) && len(out) < limit {
			out = append(out, domain.AddressSuggestion{ID: a.ID, Display: a.StreetAddress, ReviewCount: len(r.reviewsOf(a.ID))})
		}
	}
	return out, nil
}

func (r addressRepo) ListWithReviews(_ context.Context, limit int) ([]domain.AddressWithReviews, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AddressWithReviews
	for _, a := range r.addresses {
		if reviews := r.reviewsOf(a.ID); len(reviews) > 0 && len(out) < limit {
			out = append(out, domain.AddressWithReviews{Address: a, Reviews: reviews})
		}
	}
	return out, nil
}

func (r reviewRepo) CreateWithAnswers(_ context.Context, review *domain.Review, address *domain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.addresses {
		if a.FormattedAddress == address.FormattedAddress {
			*address = a
		}
	}
	r.addresses[address.ID] = *address
	review.AddressID = address.ID
	r.reviews = append(r.reviews, *review)
	return nil
}

func (r reviewRepo) GetByID(_ context.Context, id string) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rv := range r.reviews {
		if rv.ID == id {
			return &rv, nil
		}
	}
	return nil, apperrors.NotFound("review", id)
}

func (r reviewRepo) ListByAddress(_ context.Context, addressID string) ([]domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reviewsOf(addressID), nil
}

func (r reviewRepo) ListRecent(_ context.Context, limit int) ([]domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := slices.Clone(r.reviews)
	slices.Reverse(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r reviewRepo) ListByUserEmail(_ context.Context, email string) ([]domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Review
	for _, rv := range r.reviews {
		if rv.UserEmail != nil && *rv.UserEmail == email {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (r reviewRepo) List(_ context.Context, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []domain.Review
	for _, rv := range r.reviews {
		if filter.AddressID == nil || rv.AddressID == *filter.AddressID {
			all = append(all, rv)
		}
	}
	start := min(filter.Offset, len(all))
	end := min(start+filter.Limit, len(all))
	return all[start:end], len(all), nil
}

func (r reviewRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.IndexFunc(r.reviews, func(rv domain.Review) bool { return rv.ID == id })
	if i < 0 {
		return apperrors.NotFound("review", id)
	}
	r.reviews = slices.Delete(r.reviews, i, i+1)
	return nil
}

func (r reviewRepo) Count(context.Context, repository.TimeRange) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reviews), nil
}

func (r reviewRepo) CountDistinctUsers(context.Context, repository.TimeRange) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := map[string]struct{}{}
	for _, rv := range r.reviews {
		if rv.UserID != nil {
			users[*rv.UserID] = struct{}{}
		}
	}
	return len(users), nil
}

func (r reviewRepo) CountByUserEmail(_ context.Context, emails []string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int{}
	for _, rv := range r.reviews {
		if rv.UserEmail != nil && slices.Contains(emails, *rv.UserEmail) {
			out[*rv.UserEmail]++
		}
	}
	return out, nil
}

func (r questionRepo) ListActive(context.Context) ([]domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Question
	for _, q := range r.questions {
		if q.IsActive {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r questionRepo) ListAll(context.Context) ([]domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Question
	for _, q := range r.questions {
		out = append(out, q)
	}
	return out, nil
}

func (r questionRepo) GetByID(_ context.Context, id string) (*domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.questions[id]
	if !ok {
		return nil, apperrors.NotFound("question", id)
	}
	return &q, nil
}

func (r questionRepo) ActiveIDs(_ context.Context, ids []string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]bool{}
	for _, id := range ids {
		if q, ok := r.questions[id]; ok && q.IsActive {
			out[id] = true
		}
	}
	return out, nil
}

func (r questionRepo) Create(_ context.Context, q *domain.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions[q.ID] = *q
	return nil
}

func (r questionRepo) Update(_ context.Context, q *domain.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions[q.ID] = *q
	return nil
}

func (r questionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.questions, id)
	return nil
}

func (r questionRepo) CountAnswers(_ context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rv := range r.reviews {
		for _, a := range rv.Answers {
			if a.QuestionID == id {
				n++
			}
		}
	}
	return n, nil
}

func (r questionRepo) CountActive(context.Context, repository.TimeRange) (int, error) {
	qs, _ := r.ListActive(context.Background())
	return len(qs), nil
}

func (r questionRepo) LatestUpdated(context.Context) (*domain.Question, error) {
	return nil, nil
}

func (r answerRepo) AverageScore(context.Context, repository.TimeRange) (float64, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum, n := 0, 0
	for _, rv := range r.reviews {
		for _, a := range rv.Answers {
			if a.Score > 0 {
				sum += a.Score
				n++
			}
		}
	}
	if n == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(n), n, nil
}

// --- Collaborators ---

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*domain.AddressResult, error) { return nil, nil }
func (noopCache) Set(context.Context, *domain.AddressResult) error           { return nil }
func (noopCache) Invalidate(context.Context, ...string) error                { return nil }

type recordingEvents struct{ *store }

func (e recordingEvents) PublishReviewCreated(_ context.Context, r *domain.ScoredReview) error {
	e.record("review.created:" + r.ID)
	return nil
}

func (e recordingEvents) PublishReviewDeleted(_ context.Context, r *domain.Review, _ string) error {
	e.record("review.deleted:" + r.ID)
	return nil
}

func (e recordingEvents) PublishQuestionChanged(_ context.Context, q *domain.Question, action string) error {
	e.record("question." + action + ":" + q.ID)
	return nil
}

func (s *store) record(ev string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, ev)
}

type memoryGuard struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (g *memoryGuard) Claim(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.keys[key] {
		return false, nil
	}
	g.keys[key] = true
	return true, nil
}

func (g *memoryGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
	return nil
}

type staticDirectory struct {
	identities map[string]domain.Identity
	users      []domain.User
}

func (d staticDirectory) GetIdentity(_ context.Context, userID string) (*domain.Identity, error) {
	id, ok := d.identities[userID]
	if !ok {
		return nil, apperrors.NotFound("user", userID)
	}
	return &id, nil
}

func (d staticDirectory) ListUsers(_ context.Context, limit, offset int) ([]domain.User, error) {
	start := min(offset, len(d.users))
	end := min(start+limit, len(d.users))
	return slices.Clone(d.users[start:end]), nil
}
