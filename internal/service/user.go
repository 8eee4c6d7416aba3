package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/neighborly/internal/domain"
	"github.com/utafrali/neighborly/internal/repository"
	apperrors "github.com/utafrali/neighborly/pkg/errors"
)

// Directory looks up accounts at the identity provider.
type Directory interface {
	GetIdentity(ctx context.Context, userID string) (*domain.Identity, error)
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)
}

// UserService serves profile and account listings.
type UserService struct {
	directory Directory
	reviews   repository.ReviewRepository
	admins    *AdminPolicy
	logger    *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(directory Directory, reviews repository.ReviewRepository, admins *AdminPolicy, logger *slog.Logger) *UserService {
	return &UserService{
		directory: directory,
		reviews:   reviews,
		admins:    admins,
		logger:    logger,
	}
}

// Me returns the caller's profile. Fields the token did not carry are read
// from the identity provider.
func (s *UserService) Me(ctx context.Context, caller *domain.Identity) (*domain.Profile, error) {
	if caller == nil {
		return nil, apperrors.Unauthorized("authentication required")
	}

	id := *caller
	if id.Email == "" || id.Name == "" {
		fetched, err := s.directory.GetIdentity(ctx, id.UserID)
		switch {
		case err != nil && id.Email == "":
			return nil, fmt.Errorf("get identity: %w", err)
		case err != nil:
			s.logger.WarnContext(ctx, "identity lookup failed, using token claims",
				slog.String("user_id", id.UserID),
				slog.String("error", err.Error()),
			)
		default:
			id = mergeIdentity(id, *fetched)
		}
	}

	return &domain.Profile{Identity: id, IsAdmin: s.admins.IsAdmin(id.Email)}, nil
}

// ListUsers returns a page of accounts with their local review counts.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users, err := s.directory.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	emails := make([]string, 0, len(users))
	for _, u := range users {
		if u.Email != "" {
			emails = append(emails, u.Email)
		}
	}

	counts := map[string]int{}
	if len(emails) > 0 {
		counts, err = s.reviews.CountByUserEmail(ctx, emails)
		if err != nil {
			return nil, fmt.Errorf("count reviews by user: %w", err)
		}
	}

	for i := range users {
		users[i].ReviewCount = counts[users[i].Email]
		users[i].IsAdmin = s.admins.IsAdmin(users[i].Email)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// mergeIdentity fills empty fields of token with those of fetched.
func mergeIdentity(token, fetched domain.Identity) domain.Identity {
	if token.Email == "" {
		token.Email = fetched.Email
	}
	if token.Name == "" {
		token.Name = fetched.Name
	}
	if token.ImageURL == "" {
		token.ImageURL = fetched.ImageURL
	}
	return token
}
