package authn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/splitbook/splitbook-services/models"
)

// Claims are the token claims read by the local strategies.
type Claims struct {
	Email        string         `json:"email"`
	Role         string         `json:"role,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// LocalAuthenticator resolves users from the token payload without a network
// call. When Secret is empty the signature is NOT checked and any party able
// to craft a token can impersonate any user; this mode exists for development
// against a trusted gateway and must be enabled with allowUnverified.
type LocalAuthenticator struct {
	Secret []byte
	Now    func() time.Time
}

// NewLocalAuthenticator returns a verifying authenticator when secret is
// non-empty. An empty secret is only accepted if allowUnverified is set.
func NewLocalAuthenticator(secret string, allowUnverified bool) (*LocalAuthenticator, error) {
	if secret == "" && !allowUnverified {
		return nil, errors.New("local authentication without a signing secret requires allowUnverified")
	}
	return &LocalAuthenticator{Secret: []byte(secret), Now: time.Now}, nil
}

// Verifying reports whether signatures are checked.
func (a *LocalAuthenticator) Verifying() bool {
	return len(a.Secret) > 0
}

func (a *LocalAuthenticator) Authenticate(_ context.Context, token string) (*models.User, error) {
	claims, err := a.ParseClaims(token)
	if err != nil {
		return nil, err
	}
	return &models.User{
		ID:           claims.Subject,
		Email:        claims.Email,
		UserMetadata: claims.UserMetadata,
	}, nil
}

// ParseClaims decodes the token and validates subject and expiry, plus the
// signature when a secret is configured.
func (a *LocalAuthenticator) ParseClaims(token string) (*Claims, error) {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}

	claims := &Claims{}
	if a.Verifying() {
		parser := jwt.NewParser(
			jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(now),
			jwt.WithPaddingAllowed(),
		)
		_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
			return a.Secret, nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return nil, ErrExpiredToken
			}
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	} else {
		parser := jwt.NewParser(jwt.WithPaddingAllowed())
		if _, _, err := parser.ParseUnverified(token, claims); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		if claims.ExpiresAt == nil {
			return nil, fmt.Errorf("%w: missing exp claim", ErrInvalidToken)
		}
		if !now().Before(claims.ExpiresAt.Time) {
			return nil, ErrExpiredToken
		}
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub claim", ErrInvalidToken)
	}
	return claims, nil
}
