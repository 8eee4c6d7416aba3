package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/neighborly/internal/service"
	"github.com/utafrali/neighborly/pkg/httputil"
	"github.com/utafrali/neighborly/pkg/validator"
)

// QuestionHandler handles HTTP requests for question endpoints.
type QuestionHandler struct {
	service *service.QuestionService
	logger  *slog.Logger
}

// NewQuestionHandler creates a new question HTTP handler.
func NewQuestionHandler(svc *service.QuestionService, logger *slog.Logger) *QuestionHandler {
	return &QuestionHandler{
		service: svc,
		logger:  logger,
	}
}

// QuestionRequest is the JSON request body for creating or updating a
// question.
type QuestionRequest struct {
	Text        string  `json:"text" validate:"notblank,max=500"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Category    string  `json:"category" validate:"required,oneof=safety noise community amenities transit maintenance general"`
	IsActive    *bool   `json:"is_active"`
}

func (req *QuestionRequest) toInput() *service.QuestionInput {
	return &service.QuestionInput{
		Text:        req.Text,
		Description: req.Description,
		Category:    req.Category,
		IsActive:    req.IsActive,
	}
}

// ListActive handles GET /api/v1/questions
func (h *QuestionHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.ListActive(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, questions)
}

// List handles GET /api/v1/admin/questions
func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, questions)
}

// Get handles GET /api/v1/admin/questions/{id}
func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	q, err := h.service.Get(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, q)
}

// Create handles POST /api/v1/admin/questions
func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	q, err := h.service.Create(r.Context(), req.toInput())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, q)
}

// Update handles PUT /api/v1/admin/questions/{id}
func (h *QuestionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req QuestionRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	q, err := h.service.Update(r.Context(), id.String(), req.toInput())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, q)
}

// Delete handles DELETE /api/v1/admin/questions/{id}
func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	res, err := h.service.Delete(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, res)
}
