package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/utafrali/neighborly/internal/domain"
	"github.com/utafrali/neighborly/internal/service"
	apperrors "github.com/utafrali/neighborly/pkg/errors"
	"github.com/utafrali/neighborly/pkg/httputil"
	"github.com/utafrali/neighborly/pkg/logger"
	"github.com/utafrali/neighborly/pkg/middleware"
)

// TokenVerifier validates a session token issued by the identity provider.
type TokenVerifier interface {
	Verify(token string) (*domain.Identity, error)
}

// IdentityLookup resolves account details the token did not carry.
type IdentityLookup interface {
	GetIdentity(ctx context.Context, userID string) (*domain.Identity, error)
}

type identityKey struct{}

// WithIdentity stores the authenticated caller in ctx.
func WithIdentity(ctx context.Context, id *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the authenticated caller, or nil.
func IdentityFromContext(ctx context.Context) *domain.Identity {
	id, _ := ctx.Value(identityKey{}).(*domain.Identity)
	return id
}

// Authenticate resolves the caller from a bearer token when one is sent.
// Requests without a token pass through anonymously; invalid tokens are
// rejected. Tokens without an email claim are completed from lookup.
func Authenticate(verifier TokenVerifier, lookup IdentityLookup, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := middleware.BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			id, err := verifier.Verify(token)
			if err != nil {
				httputil.WriteError(w, r, err, l)
				return
			}

			ctx := r.Context()
			if id.Email == "" && lookup != nil {
				fetched, err := lookup.GetIdentity(ctx, id.UserID)
				if err != nil {
					l.WarnContext(ctx, "could not resolve caller email",
						slog.String("user_id", id.UserID),
						slog.String("error", err.Error()),
					)
				} else {
					id.Email = fetched.Email
					if id.Name == "" {
						id.Name = fetched.Name
					}
				}
			}

			ctx = logger.WithUserID(ctx, id.UserID)
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(slog.String("user_id", id.UserID)))
			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, id)))
		})
	}
}

// RequireUser rejects requests without an authenticated caller.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromContext(r.Context()) == nil {
			httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects callers whose email is not on the admin allow-list.
func RequireAdmin(admins *service.AdminPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromContext(r.Context())
			if id == nil {
				httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), nil)
				return
			}
			if !admins.IsAdmin(id.Email) {
				httputil.WriteError(w, r, apperrors.Forbidden("administrator access required"), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
