package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/neighborly/internal/domain"
	"github.com/utafrali/neighborly/internal/identity"
	"github.com/utafrali/neighborly/internal/scoring"
	"github.com/utafrali/neighborly/internal/service"
	"github.com/utafrali/neighborly/pkg/health"
	"github.com/utafrali/neighborly/pkg/httputil"
	"github.com/utafrali/neighborly/pkg/middleware"
)

const (
	testSecret = "test-secret"
	adminEmail = "admin@example.com"

	questionSafety  = "6f1c0a52-0000-4000-8000-000000000a01"
	questionNoise   = "6f1c0a52-0000-4000-8000-000000000a02"
	questionRetired = "6f1c0a52-0000-4000-8000-000000000a03"
)

var (
	alice = domain.Identity{UserID: "user_alice", Email: "alice@example.com", Name: "Alice"}
	bob   = domain.Identity{UserID: "user_bob", Email: "bob@example.com", Name: "Bob"}
	admin = domain.Identity{UserID: "user_admin", Email: adminEmail, Name: "Admin"}
)

type testServer struct {
	store    *store
	handler  http.Handler
	verifier *identity.Verifier
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := newTestLogger()

	st := newStore()
	now := time.Now().UTC()
	st.questions[questionSafety] = domain.Question{ID: questionSafety, Text: "How safe is it?", Category: domain.CategorySafety, IsActive: true, CreatedAt: now, UpdatedAt: now}
	st.questions[questionNoise] = domain.Question{ID: questionNoise, Text: "How quiet is it?", Category: domain.CategoryNoise, IsActive: true, CreatedAt: now, UpdatedAt: now}
	st.questions[questionRetired] = domain.Question{ID: questionRetired, Text: "Retired", Category: domain.CategoryGeneral, IsActive: false, CreatedAt: now, UpdatedAt: now}

	agg := scoring.New(time.UTC)
	admins := service.NewAdminPolicy(map[string]struct{}{adminEmail: {}})
	events := recordingEvents{st}
	dir := staticDirectory{
		identities: map[string]domain.Identity{
			"user_noemail": {UserID: "user_noemail", Email: "late@example.com", Name: "Late Bloomer"},
		},
		users: []domain.User{
			{ID: alice.UserID, Email: alice.Email},
			{ID: admin.UserID, Email: admin.Email},
		},
	}

	reg := prometheus.NewRegistry()
	metrics, err := middleware.NewHTTPMetrics("review-service", reg)
	require.NoError(t, err)

	verifier := identity.NewVerifier(testSecret, "")
	h := NewRouter(RouterConfig{
		ServiceName: "review-service",
		Addresses:   service.NewAddressService(addressRepo{st}, reviewRepo{st}, agg, noopCache{}, logger),
		Reviews: service.NewReviewService(reviewRepo{st}, questionRepo{st}, agg, noopCache{}, events,
			&memoryGuard{keys: map[string]bool{}}, admins, logger),
		Questions:     service.NewQuestionService(questionRepo{st}, events, logger),
		Dashboard:     service.NewDashboardService(reviewRepo{st}, questionRepo{st}, answerRepo{st}, addressRepo{st}, agg, logger),
		Users:         service.NewUserService(dir, reviewRepo{st}, admins, logger),
		Admins:        admins,
		Verifier:      verifier,
		Directory:     dir,
		Health:        health.NewHandler(),
		Metrics:       metrics,
		Gatherer:      reg,
		ReviewLimiter: middleware.NewRateLimiter(600, 100, logger),
		CORS:          middleware.DefaultCORSConfig(),
		Logger:        logger,
	})

	return &testServer{store: st, handler: h, verifier: verifier}
}

func (ts *testServer) token(t *testing.T, id domain.Identity) string {
	t.Helper()
	tok, err := ts.verifier.Sign(id, "", time.Hour)
	require.NoError(t, err)
	return tok
}

type requestOption func(*http.Request)

func withToken(token string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withHeader(k, v string) requestOption {
	return func(r *http.Request) { r.Header.Set(k, v) }
}

func (ts *testServer) do(t *testing.T, method, path string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, o := range opts {
		o(req)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

type envelope[T any] struct {
	Data  T                       `json:"data"`
	Error *httputil.ErrorResponse `json:"error"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func reviewBody(street string, anonymous bool, answers map[string]int) map[string]any {
	a := map[string]any{}
	for qid, score := range answers {
		a[qid] = map[string]any{"score": score}
	}
	return map[string]any{
		"street_address": street,
		"city":           "Austin",
		"state":          "TX",
		"zip_code":       "78701",
		"is_anonymous":   anonymous,
		"answers":        a,
	}
}

func (ts *testServer) submit(t *testing.T, body map[string]any, opts ...requestOption) domain.ScoredReview {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/v1/reviews", body, opts...)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[domain.ScoredReview](t, rec).Data
}

// ============================================================================
// Infrastructure
// ============================================================================

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/health/live", nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/health/ready", nil).Code)

	ts.do(t, http.MethodGet, "/api/v1/questions", nil)
	rec := ts.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `path="/api/v1/questions"`)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodOptions, "/api/v1/reviews", nil,
		withHeader("Origin", "https://neighborly.example.com"),
		withHeader("Access-Control-Request-Method", http.MethodPost),
	)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
}

// ============================================================================
// Public endpoints
// ============================================================================

func TestListQuestions_OnlyActive(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/questions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=300", rec.Header().Get("Cache-Control"))

	questions := decode[[]domain.Question](t, rec).Data
	assert.Len(t, questions, 2)
	for _, q := range questions {
		assert.True(t, q.IsActive)
	}
}

func TestSubmitReview_AnonymousVisitor(t *testing.T) {
	ts := newTestServer(t)

	review := ts.submit(t, reviewBody("12 Main St", false, map[string]int{questionSafety: 4, questionNoise: 0}))
	assert.Equal(t, 4.0, review.AverageScore)
	assert.Nil(t, review.UserID)
	assert.Contains(t, ts.store.published, "review.created:"+review.ID)

	rec := ts.do(t, http.MethodGet, "/api/v1/addresses/"+review.AddressID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[domain.AddressResult](t, rec).Data
	assert.Equal(t, "12 main st, austin, tx 78701", res.FormattedAddress)
	assert.Equal(t, 1, res.ReviewCount)
	assert.Equal(t, 4.0, res.AverageRating)
}

func TestSubmitReview_SameAddressIsReused(t *testing.T) {
	ts := newTestServer(t)

	first := ts.submit(t, reviewBody("12 Main St", false, map[string]int{questionSafety: 4}), withToken(ts.token(t, alice)))
	second := ts.submit(t, reviewBody(" 12 MAIN ST ", false, map[string]int{questionSafety: 2}), withToken(ts.token(t, bob)))
	assert.Equal(t, first.AddressID, second.AddressID)

	rec := ts.do(t, http.MethodGet, "/api/v1/reviews?addressId="+first.AddressID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.ScoredReview](t, rec).Data, 2)
}

func TestSubmitReview_SameDayDuplicatesCollapse(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, alice)

	first := ts.submit(t, reviewBody("12 Main St", false, map[string]int{questionSafety: 5}), withToken(token))
	second := ts.submit(t, reviewBody("12 Main St", false, map[string]int{questionSafety: 1, questionNoise: 2}), withToken(token))

	rec := ts.do(t, http.MethodGet, "/api/v1/addresses/"+first.AddressID, nil)
	res := decode[domain.AddressResult](t, rec).Data
	require.Len(t, res.Reviews, 1)
	assert.Equal(t, second.ID, res.Reviews[0].ID)
	assert.Equal(t, 1.5, res.AverageRating)
}

func TestSubmitReview_AnonymousFlagHidesIdentity(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, alice)

	review := ts.submit(t, reviewBody("12 Main St", true, map[string]int{questionSafety: 3}), withToken(token))
	assert.Nil(t, review.UserEmail)

	rec := ts.do(t, http.MethodGet, "/api/v1/reviews?addressId="+review.AddressID, nil)
	listed := decode[[]domain.ScoredReview](t, rec).Data
	require.Len(t, listed, 1)
	assert.Nil(t, listed[0].UserEmail)
	assert.Nil(t, listed[0].UserID)

	rec = ts.do(t, http.MethodGet, "/api/v1/reviews/recent", nil)
	recent := decode[[]domain.ScoredReview](t, rec).Data
	require.Len(t, recent, 1)
	assert.Nil(t, recent[0].UserEmail)

	rec = ts.do(t, http.MethodGet, "/api/v1/reviews/mine", nil, withToken(token))
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[[]domain.ScoredReview](t, rec).Data
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].UserEmail)
	assert.Equal(t, alice.Email, *mine[0].UserEmail)
}

func TestSubmitReview_Validation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name     string
		body     map[string]any
		wantCode string
	}{
		{"missing street", reviewBody("", false, map[string]int{questionSafety: 3}), "VALIDATION_ERROR"},
		{"blank street", reviewBody("   ", false, map[string]int{questionSafety: 3}), "VALIDATION_ERROR"},
		{"no answers", reviewBody("12 Main St", false, map[string]int{}), "VALIDATION_ERROR"},
		{"score out of range", reviewBody("12 Main St", false, map[string]int{questionSafety: 6}), "VALIDATION_ERROR"},
		{"negative score", reviewBody("12 Main St", false, map[string]int{questionSafety: -2}), "VALIDATION_ERROR"},
		{"question id not a uuid", reviewBody("12 Main St", false, map[string]int{"safety": 3}), "VALIDATION_ERROR"},
		{"inactive question", reviewBody("12 Main St", false, map[string]int{questionRetired: 3}), "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/v1/reviews", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, decode[any](t, rec).Error.Code)
		})
	}
	assert.Empty(t, ts.store.reviews)
}

func TestSubmitReview_NotesTooLong(t *testing.T) {
	ts := newTestServer(t)
	body := reviewBody("12 Main St", false, nil)
	body["answers"] = map[string]any{
		questionSafety: map[string]any{"score": 3, "notes": strings.Repeat("x", 10000)},
	}

	rec := ts.do(t, http.MethodPost, "/api/v1/reviews", body)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	resp := decode[any](t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "must be at most 2000 characters", resp.Error.Fields["answers["+questionSafety+"].notes"])
	assert.Empty(t, ts.store.reviews)
}

func TestSubmitReview_MalformedJSON(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitReview_IdempotencyKey(t *testing.T) {
	ts := newTestServer(t)
	body := reviewBody("12 Main St", false, map[string]int{questionSafety: 3})

	ts.submit(t, body, withHeader("Idempotency-Key", "submit-1"))

	rec := ts.do(t, http.MethodPost, "/api/v1/reviews", body, withHeader("Idempotency-Key", "submit-1"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Len(t, ts.store.reviews, 1)

	ts.submit(t, body, withHeader("Idempotency-Key", "submit-2"))
	assert.Len(t, ts.store.reviews, 2)
}

func TestInvalidTokenIsRejected(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/questions", nil, withToken("garbage"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired, err := ts.verifier.Sign(alice, "", -time.Hour)
	require.NoError(t, err)
	rec = ts.do(t, http.MethodPost, "/api/v1/reviews", reviewBody("12 Main St", false, map[string]int{questionSafety: 3}), withToken(expired))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAddressSearchAndAutocomplete(t *testing.T) {
	ts := newTestServer(t)
	ts.submit(t, reviewBody("12 Main St", false, map[string]int{questionSafety: 3}))

	rec := ts.do(t, http.MethodGet, "/api/v1/addresses?query=ma", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/addresses?query=main", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	results := decode[[]domain.AddressResult](t, rec).Data
	require.Len(t, results, 1)
	assert.Equal(t, 3.0, results[0].AverageRating)

	rec = ts.do(t, http.MethodGet, "/api/v1/addresses/autocomplete?query=main", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]domain.AddressSuggestion](t, rec).Data)

	rec = ts.do(t, http.MethodGet, "/api/v1/addresses/autocomplete?query=main%20st", nil)
	suggestions := decode[[]domain.AddressSuggestion](t, rec).Data
	require.Len(t, suggestions, 1)
	assert.Equal(t, 1, suggestions[0].ReviewCount)
}

func TestGetAddress_Errors(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/addresses/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/addresses/6f1c0a52-0000-4000-8000-00000000ffff", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/reviews", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ============================================================================
// Authenticated endpoints
// ============================================================================

func TestRequireUser(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/v1/reviews/mine", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/v1/me", nil).Code)
}

func TestDeleteReview_Ownership(t *testing.T) {
	ts := newTestServer(t)
	review := ts.submit(t, reviewBody("12 Main St", false, map[string]int{questionSafety: 3}), withToken(ts.token(t, alice)))
	path := "/api/v1/reviews/" + review.ID

	rec := ts.do(t, http.MethodDelete, path, nil, withToken(ts.token(t, bob)))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodDelete, path, nil, withToken(ts.token(t, alice)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, ts.store.reviews)
	assert.Contains(t, ts.store.published, "review.deleted:"+review.ID)

	rec = ts.do(t, http.MethodDelete, path, nil, withToken(ts.token(t, alice)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMe_FillsMissingEmail(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/me", nil, withToken(ts.token(t, domain.Identity{UserID: "user_noemail"})))
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[domain.Profile](t, rec).Data
	assert.Equal(t, "late@example.com", profile.Email)
	assert.Equal(t, "Late Bloomer", profile.Name)
	assert.False(t, profile.IsAdmin)

	rec = ts.do(t, http.MethodGet, "/api/v1/me", nil, withToken(ts.token(t, admin)))
	assert.True(t, decode[domain.Profile](t, rec).Data.IsAdmin)
}

// ============================================================================
// Admin endpoints
// ============================================================================

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	ts := newTestServer(t)

	paths := []string{
		"/api/v1/admin/dashboard",
		"/api/v1/admin/questions",
		"/api/v1/admin/reviews",
		"/api/v1/admin/users",
	}
	for _, p := range paths {
		assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, p, nil).Code, p)
		assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodGet, p, nil, withToken(ts.token(t, alice))).Code, p)
		assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, p, nil, withToken(ts.token(t, admin))).Code, p)
	}
}

func TestAdminQuestions_Lifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := withToken(ts.token(t, admin))

	rec := ts.do(t, http.MethodPost, "/api/v1/admin/questions", map[string]any{
		"text": "Is parking easy?", "category": "parking",
	}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/admin/questions", map[string]any{
		"text": "Is it walkable?", "category": domain.CategoryTransit,
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[domain.Question](t, rec).Data
	assert.True(t, created.IsActive)

	rec = ts.do(t, http.MethodPut, "/api/v1/admin/questions/"+created.ID, map[string]any{
		"text": "Is it walkable at night?", "category": domain.CategorySafety, "is_active": false,
	}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[domain.Question](t, rec).Data
	assert.Equal(t, "Is it walkable at night?", updated.Text)
	assert.False(t, updated.IsActive)

	rec = ts.do(t, http.MethodDelete, "/api/v1/admin/questions/"+created.ID, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[service.DeleteQuestionResult](t, rec).Data.Deactivated)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/questions/"+created.ID, nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminQuestions_DeleteAnsweredDeactivates(t *testing.T) {
	ts := newTestServer(t)
	ts.submit(t, reviewBody("12 Main St", false, map[string]int{questionSafety: 3}))

	rec := ts.do(t, http.MethodDelete, "/api/v1/admin/questions/"+questionSafety, nil, withToken(ts.token(t, admin)))
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[service.DeleteQuestionResult](t, rec).Data
	assert.True(t, res.Deactivated)
	assert.False(t, ts.store.questions[questionSafety].IsActive)
	assert.Contains(t, ts.store.published, "question.deactivated:"+questionSafety)
}

func TestAdminReviews_ListAndDelete(t *testing.T) {
	ts := newTestServer(t)
	token := withToken(ts.token(t, admin))

	first := ts.submit(t, reviewBody("12 Main St", true, map[string]int{questionSafety: 3}), withToken(ts.token(t, alice)))
	ts.submit(t, reviewBody("99 Oak Ave", false, map[string]int{questionSafety: 5}))

	rec := ts.do(t, http.MethodGet, "/api/v1/admin/reviews?limit=1", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[struct {
		Items   []domain.ScoredReview `json:"items"`
		Total   int                   `json:"total"`
		HasMore bool                  `json:"has_more"`
	}](t, rec).Data
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Total)
	assert.True(t, page.HasMore)
	require.NotNil(t, page.Items[0].UserEmail)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/reviews?addressId="+first.AddressID, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/v1/admin/reviews/"+first.ID, nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, ts.store.reviews, 1)
}

func TestAdminDashboard(t *testing.T) {
	ts := newTestServer(t)
	ts.submit(t, reviewBody("12 Main St", false, map[string]int{questionSafety: 4, questionNoise: 2}), withToken(ts.token(t, alice)))
	ts.submit(t, reviewBody("99 Oak Ave", false, map[string]int{questionSafety: 5}), withToken(ts.token(t, bob)))

	rec := ts.do(t, http.MethodGet, "/api/v1/admin/dashboard", nil, withToken(ts.token(t, admin)))
	require.Equal(t, http.StatusOK, rec.Code)

	dash := decode[domain.Dashboard](t, rec).Data
	assert.Equal(t, 2, dash.Statistics.TotalReviews)
	assert.Equal(t, 2, dash.Statistics.TotalUsers)
	assert.Equal(t, 3.7, dash.Statistics.AverageRating)
	assert.Equal(t, 2, dash.Statistics.ActiveQuestions)
	require.Len(t, dash.TopAddresses, 2)
	assert.Equal(t, "99 Oak Ave", dash.TopAddresses[0].Address)
	require.NotNil(t, dash.RecentActivity.LatestReview)
}

func TestAdminUsers_MergesReviewCounts(t *testing.T) {
	ts := newTestServer(t)
	ts.submit(t, reviewBody("12 Main St", false, map[string]int{questionSafety: 4}), withToken(ts.token(t, alice)))

	rec := ts.do(t, http.MethodGet, "/api/v1/admin/users", nil, withToken(ts.token(t, admin)))
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[struct {
		Items []domain.User `json:"items"`
	}](t, rec).Data
	require.Len(t, page.Items, 2)
	assert.Equal(t, 1, page.Items[0].ReviewCount)
	assert.False(t, page.Items[0].IsAdmin)
	assert.True(t, page.Items[1].IsAdmin)
}
