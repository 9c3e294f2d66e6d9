package identity

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/astrolive/loyalty-engine/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Provider resolves an auth token to a viewer identity.
type Provider interface {
	Verify(ctx context.Context, token string) (domain.Viewer, error)
}

// Claims represents the JWT claims issued by the platform's auth service.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// JWTProvider verifies HMAC-signed platform tokens locally.
type JWTProvider struct {
	secret []byte
	issuer string
}

// NewJWTProvider creates a provider for the given shared secret. An empty
// issuer disables issuer checking.
func NewJWTProvider(secret, issuer string) *JWTProvider {
	return &JWTProvider{secret: []byte(secret), issuer: issuer}
}

// Verify validates the token signature, expiry and issuer, and returns the
// viewer it identifies.
func (p *JWTProvider) Verify(_ context.Context, tokenString string) (domain.Viewer, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return p.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Viewer{}, ErrExpiredToken
		}
		return domain.Viewer{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return domain.Viewer{}, ErrInvalidToken
	}
	if p.issuer != "" && claims.Issuer != p.issuer {
		return domain.Viewer{}, ErrInvalidToken
	}

	id := claims.UserID
	if id == "" {
		id = claims.Subject
	}
	if id == "" {
		return domain.Viewer{}, ErrInvalidToken
	}

	return domain.Viewer{ID: id, Name: claims.Username}, nil
}
