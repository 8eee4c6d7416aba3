package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/neighborly/internal/service"
	"github.com/utafrali/neighborly/pkg/health"
	"github.com/utafrali/neighborly/pkg/middleware"
)

// questionsMaxAge is how long clients may cache the public question list.
const questionsMaxAge = 300

// RouterConfig carries everything the router mounts.
type RouterConfig struct {
	ServiceName string

	Addresses *service.AddressService
	Reviews   *service.ReviewService
	Questions *service.QuestionService
	Dashboard *service.DashboardService
	Users     *service.UserService
	Admins    *service.AdminPolicy

	Verifier  TokenVerifier
	Directory IdentityLookup

	Health        *health.Handler
	Metrics       *middleware.HTTPMetrics
	Gatherer      prometheus.Gatherer
	ReviewLimiter *middleware.RateLimiter
	CORS          middleware.CORSConfig
	PprofCIDRs    []string

	Logger *slog.Logger
}

// NewRouter creates a chi router with all review service routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	addressHandler := NewAddressHandler(cfg.Addresses, logger)
	reviewHandler := NewReviewHandler(cfg.Reviews, logger)
	questionHandler := NewQuestionHandler(cfg.Questions, logger)
	userHandler := NewUserHandler(cfg.Users, logger)
	adminHandler := NewAdminHandler(cfg.Dashboard, cfg.Reviews, cfg.Users, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Authenticate(cfg.Verifier, cfg.Directory, logger))

		r.With(middleware.CacheControl(questionsMaxAge)).Get("/questions", questionHandler.ListActive)

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", addressHandler.Search)
			r.Get("/autocomplete", addressHandler.Autocomplete)
			r.Get("/{addressId}", addressHandler.Get)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", reviewHandler.ListForAddress)
			r.Get("/recent", reviewHandler.ListRecent)

			submit := r.With()
			if cfg.ReviewLimiter != nil {
				submit = r.With(cfg.ReviewLimiter.Middleware)
			}
			submit.Post("/", reviewHandler.Submit)

			r.Group(func(r chi.Router) {
				r.Use(RequireUser)
				r.Get("/mine", reviewHandler.ListMine)
				r.Delete("/{reviewId}", reviewHandler.Delete)
			})
		})

		r.With(RequireUser).Get("/me", userHandler.Me)

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin(cfg.Admins))

			r.Get("/dashboard", adminHandler.Dashboard)

			r.Get("/questions", questionHandler.List)
			r.Post("/questions", questionHandler.Create)
			r.Get("/questions/{id}", questionHandler.Get)
			r.Put("/questions/{id}", questionHandler.Update)
			r.Delete("/questions/{id}", questionHandler.Delete)

			r.Get("/reviews", adminHandler.ListReviews)
			r.Delete("/reviews/{reviewId}", reviewHandler.Delete)

			r.Get("/users", adminHandler.ListUsers)
		})
	})

	return r
}
