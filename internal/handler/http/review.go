package http

import (
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/neighborly/internal/service"
	apperrors "github.com/utafrali/neighborly/pkg/errors"
	"github.com/utafrali/neighborly/pkg/httputil"
	"github.com/utafrali/neighborly/pkg/validator"
)

const idempotencyHeader = "Idempotency-Key"

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AnswerRequest is the answer to one question.
type AnswerRequest struct {
	Score int     `json:"score" validate:"gte=0,lte=5"`
	Notes *string `json:"notes" validate:"omitempty,max=2000"`
}

// SubmitReviewRequest is the JSON request body for submitting a review.
// Answers are keyed by question id.
type SubmitReviewRequest struct {
	StreetAddress string                   `json:"street_address" validate:"notblank,max=255"`
	City          string                   `json:"city" validate:"notblank,max=100"`
	State         string                   `json:"state" validate:"notblank,max=100"`
	ZipCode       string                   `json:"zip_code" validate:"notblank,max=20"`
	IsAnonymous   bool                     `json:"is_anonymous"`
	Answers       map[string]AnswerRequest `json:"answers" validate:"required,min=1,max=50,dive,keys,uuid,endkeys"`
}

// validateAnswers checks each answer; the struct tags on the map field only
// reach its keys.
func (req *SubmitReviewRequest) validateAnswers() error {
	return validator.ValidateValues("answers", req.Answers)
}

func (req *SubmitReviewRequest) toInput(idempotencyKey string) *service.SubmitReviewInput {
	in := &service.SubmitReviewInput{
		StreetAddress:  req.StreetAddress,
		City:           req.City,
		State:          req.State,
		ZipCode:        req.ZipCode,
		IsAnonymous:    req.IsAnonymous,
		Answers:        make([]service.AnswerInput, 0, len(req.Answers)),
		IdempotencyKey: idempotencyKey,
	}
	for _, qid := range slices.Sorted(maps.Keys(req.Answers)) {
		a := req.Answers[qid]
		in.Answers = append(in.Answers, service.AnswerInput{QuestionID: qid, Score: a.Score, Notes: a.Notes})
	}
	return in
}

// --- Handlers ---

// ListForAddress handles GET /api/v1/reviews?addressId=
func (h *ReviewHandler) ListForAddress(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("addressId")
	if raw == "" {
		httputil.WriteError(w, r, apperrors.InvalidInput("address id is required"), h.logger)
		return
	}
	id, ok := httputil.ParseUUID(w, raw)
	if !ok {
		return
	}

	reviews, err := h.service.ListForAddress(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, reviews)
}

// ListRecent handles GET /api/v1/reviews/recent?limit=
func (h *ReviewHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httputil.WriteError(w, r, apperrors.InvalidInput("limit must be an integer"), h.logger)
			return
		}
		limit = n
	}

	reviews, err := h.service.ListRecent(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, reviews)
}

// ListMine handles GET /api/v1/reviews/mine
func (h *ReviewHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.ListMine(r.Context(), IdentityFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, reviews)
}

// Submit handles POST /api/v1/reviews
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	if err := req.validateAnswers(); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	key := r.Header.Get(idempotencyHeader)
	if len(key) > 255 {
		httputil.WriteError(w, r, apperrors.InvalidInput("idempotency key must be at most 255 characters"), h.logger)
		return
	}

	review, err := h.service.Submit(r.Context(), IdentityFromContext(r.Context()), req.toInput(key))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, review)
}

// Delete handles DELETE /api/v1/reviews/{reviewId} and its admin twin.
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "reviewId"))
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), IdentityFromContext(r.Context()), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]any{
		"id":      id.String(),
		"deleted": true,
		"message": "review and all associated answers have been deleted",
	})
}
