// Package auth issues and verifies the HS256 bearer tokens used by the API
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/toyz/receitas/pkg/axon"
)

const (
	bearerPrefix = "Bearer "
	refreshType  = "refresh"
)

// ErrMissingSecret is returned by New when no signing secret is configured
var ErrMissingSecret = errors.New("auth: JWT secret is not configured")

// ErrInvalidToken is returned when a token fails verification
var ErrInvalidToken = errors.New("auth: invalid token")

// Config configures token lifetimes and signing
type Config struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
	// Now overrides the clock, used by tests
	Now func() time.Time
}

// Claims is the token payload
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Type   string `json:"typ,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator signs and verifies tokens; it implements axon.Authenticator
type Authenticator struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	now        func() time.Time
}

var _ axon.Authenticator = (*Authenticator)(nil)

// New creates an Authenticator. An empty secret is a fatal configuration error.
func New(cfg Config) (*Authenticator, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, ErrMissingSecret
	}
	a := &Authenticator{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		issuer:     cfg.Issuer,
		now:        cfg.Now,
	}
	if a.accessTTL <= 0 {
		a.accessTTL = 24 * time.Hour
	}
	if a.refreshTTL <= 0 {
		a.refreshTTL = time.Hour
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a, nil
}

// Issue signs an access token for identity
func (a *Authenticator) Issue(identity axon.Identity) (string, error) {
	return a.sign(identity, "", a.accessTTL)
}

// IssueShortLived signs a refresh token; Verify rejects it as an access token
func (a *Authenticator) IssueShortLived(identity axon.Identity) (string, error) {
	return a.sign(identity, refreshType, a.refreshTTL)
}

// Verify extracts and verifies the token of an "Authorization: Bearer <token>" header.
// It returns nil for a missing, malformed, expired or refresh token.
func (a *Authenticator) Verify(header string) *axon.Identity {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || strings.TrimSpace(token) == "" {
		return nil
	}
	claims, err := a.parse(token)
	if err != nil || claims.Type == refreshType {
		return nil
	}
	return toIdentity(claims)
}

// VerifyRefresh verifies a raw refresh token
func (a *Authenticator) VerifyRefresh(token string) (*axon.Identity, error) {
	claims, err := a.parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Type != refreshType {
		return nil, fmt.Errorf("%w: not a refresh token", ErrInvalidToken)
	}
	return toIdentity(claims), nil
}

func (a *Authenticator) sign(identity axon.Identity, typ string, ttl time.Duration) (string, error) {
	now := a.now()
	claims := Claims{
		UserID: identity.SubjectID,
		Email:  identity.Email,
		Role:   string(identity.Role),
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity.SubjectID,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (a *Authenticator) parse(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func toIdentity(claims *Claims) *axon.Identity {
	identity := &axon.Identity{
		SubjectID: claims.UserID,
		Email:     claims.Email,
		Role:      axon.Role(claims.Role),
	}
	if claims.IssuedAt != nil {
		identity.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity
}
