package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/utafrali/neighborly/internal/domain"
	apperrors "github.com/utafrali/neighborly/pkg/errors"
	"github.com/utafrali/neighborly/pkg/httpclient"
)

const upstreamName = "identity provider"

// Doer sends a request. *httpclient.CircuitBreakerClient satisfies it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client reads user accounts from the identity provider's backend API.
type Client struct {
	http      Doer
	baseURL   string
	secretKey string
	logger    *slog.Logger
}

// NewClient creates an identity provider client.
func NewClient(doer Doer, baseURL, secretKey string, logger *slog.Logger) *Client {
	return &Client{
		http:      doer,
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		logger:    logger,
	}
}

type emailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type apiUser struct {
	ID                    string         `json:"id"`
	Username              *string        `json:"username"`
	FirstName             *string        `json:"first_name"`
	LastName              *string        `json:"last_name"`
	ImageURL              string         `json:"image_url"`
	PrimaryEmailAddressID *string        `json:"primary_email_address_id"`
	EmailAddresses        []emailAddress `json:"email_addresses"`
	CreatedAt             int64          `json:"created_at"`
	LastSignInAt          *int64         `json:"last_sign_in_at"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// primaryEmail returns the primary address, falling back to the first one.
func (u apiUser) primaryEmail() string {
	if u.PrimaryEmailAddressID != nil {
		for _, e := range u.EmailAddresses {
			if e.ID == *u.PrimaryEmailAddressID {
				return e.EmailAddress
			}
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

func (u apiUser) displayName() string {
	if name := strings.TrimSpace(deref(u.FirstName) + " " + deref(u.LastName)); name != "" {
		return name
	}
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return "Unknown User"
}

func (u apiUser) toUser() domain.User {
	return domain.User{
		ID:           u.ID,
		Email:        u.primaryEmail(),
		FirstName:    deref(u.FirstName),
		LastName:     deref(u.LastName),
		ImageURL:     u.ImageURL,
		CreatedAt:    u.CreatedAt,
		LastSignInAt: u.LastSignInAt,
	}
}

// GetIdentity fetches a user and resolves primary email and display name.
func (c *Client) GetIdentity(ctx context.Context, userID string) (*domain.Identity, error) {
	var u apiUser
	if err := c.get(ctx, "/v1/users/"+url.PathEscape(userID), nil, &u); err != nil {
		return nil, err
	}
	return &domain.Identity{
		UserID:   u.ID,
		Email:    u.primaryEmail(),
		Name:     u.displayName(),
		ImageURL: u.ImageURL,
	}, nil
}

// ListUsers returns one page of accounts.
func (c *Client) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var page []apiUser
	if err := c.get(ctx, "/v1/users", q, &page); err != nil {
		return nil, err
	}

	users := make([]domain.User, len(page))
	for i, u := range page {
		users[i] = u.toUser()
	}
	return users, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build identity request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.secretKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.secretKey)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		c.logger.WarnContext(ctx, "identity provider request failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		if errors.Is(err, httpclient.ErrCircuitOpen) {
			return apperrors.ServiceUnavailable("identity provider temporarily unavailable")
		}
		return apperrors.ServiceUnavailable("identity provider unavailable")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, upstreamName)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode identity response: %w", err)
	}
	return nil
}
