package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/utafrali/neighborly/internal/domain"
	apperrors "github.com/utafrali/neighborly/pkg/errors"
)

// Claims are the session token claims issued by the identity provider.
type Claims struct {
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates HMAC-signed session tokens.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier creates a verifier for tokens signed with secret. When issuer
// is non-empty the iss claim must match it.
func NewVerifier(secret, issuer string) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(opts...),
	}
}

// Verify parses token and returns the identity it asserts. Email may be
// empty when the token does not carry one.
func (v *Verifier) Verify(token string) (*domain.Identity, error) {
	var claims Claims
	_, err := v.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Unauthorized("token expired")
		}
		return nil, apperrors.Unauthorized("invalid token")
	}
	if claims.Subject == "" {
		return nil, apperrors.Unauthorized("token has no subject")
	}

	return &domain.Identity{
		UserID:   claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		ImageURL: claims.ImageURL,
	}, nil
}

// Sign issues a token for id that expires after ttl. It is used by tests
// and local tooling; production tokens come from the identity provider.
func (v *Verifier) Sign(id domain.Identity, issuer string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		Email:    id.Email,
		Name:     id.Name,
		ImageURL: id.ImageURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
