package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/neighborly/internal/domain"
	"github.com/utafrali/neighborly/internal/repository"
	"github.com/utafrali/neighborly/internal/service"
	"github.com/utafrali/neighborly/pkg/httputil"
	"github.com/utafrali/neighborly/pkg/pagination"
)

// AdminHandler serves the dashboard and the admin listings.
type AdminHandler struct {
	dashboard *service.DashboardService
	reviews   *service.ReviewService
	users     *service.UserService
	logger    *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(dashboard *service.DashboardService, reviews *service.ReviewService, users *service.UserService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		dashboard: dashboard,
		reviews:   reviews,
		users:     users,
		logger:    logger,
	}
}

// Dashboard handles GET /api/v1/admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.dashboard.Get(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, dash)
}

// ListReviews handles GET /api/v1/admin/reviews?limit=&offset=&addressId=
func (h *AdminHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	p := pagination.FromRequest(r)
	filter := repository.ReviewFilter{Limit: p.Limit, Offset: p.Offset}

	if raw := r.URL.Query().Get("addressId"); raw != "" {
		id, ok := httputil.ParseUUID(w, raw)
		if !ok {
			return
		}
		addressID := id.String()
		filter.AddressID = &addressID
	}

	reviews, total, err := h.reviews.AdminList(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, pagination.NewResult(reviews, total, p))
}

// ListUsers handles GET /api/v1/admin/users?limit=&offset=
// The identity provider does not report a total, so HasMore is set when the
// page is full.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	p := pagination.FromRequest(r)

	users, err := h.users.ListUsers(r.Context(), p.Limit, p.Offset)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, pagination.Result[domain.User]{
		Items:   users,
		Total:   p.Offset + len(users),
		Limit:   p.Limit,
		Offset:  p.Offset,
		HasMore: len(users) == p.Limit,
	})
}
