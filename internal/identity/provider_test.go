package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims *Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims() *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "astrolive",
			Subject:   "v1",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID:   "v1",
		Username: "Ana",
	}
}

func TestVerifyValidToken(t *testing.T) {
	p := NewJWTProvider(testSecret, "astrolive")

	viewer, err := p.Verify(context.Background(), signToken(t, validClaims(), testSecret))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if viewer.ID != "v1" || viewer.Name != "Ana" {
		t.Fatalf("viewer = %+v", viewer)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	p := NewJWTProvider(testSecret, "astrolive")

	_, err := p.Verify(context.Background(), signToken(t, validClaims(), "other-secret"))
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	p := NewJWTProvider(testSecret, "astrolive")

	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	_, err := p.Verify(context.Background(), signToken(t, claims, testSecret))
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("err = %v, want ErrExpiredToken", err)
	}
}

func TestVerifyWrongIssuer(t *testing.T) {
	p := NewJWTProvider(testSecret, "astrolive")

	claims := validClaims()
	claims.Issuer = "someone-else"

	_, err := p.Verify(context.Background(), signToken(t, claims, testSecret))
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyFallsBackToSubject(t *testing.T) {
	p := NewJWTProvider(testSecret, "astrolive")

	claims := validClaims()
	claims.UserID = ""

	viewer, err := p.Verify(context.Background(), signToken(t, claims, testSecret))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if viewer.ID != "v1" {
		t.Fatalf("viewer.ID = %q, want subject fallback v1", viewer.ID)
	}
}

func TestVerifyGarbage(t *testing.T) {
	p := NewJWTProvider(testSecret, "")

	_, err := p.Verify(context.Background(), "not-a-token")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}
