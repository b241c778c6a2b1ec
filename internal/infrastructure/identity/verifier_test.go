package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quotable/quotes-platform/internal/core/domain"
)

func mintToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestVerifierAcceptsValidToken(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	raw := mintToken(t, "secret", jwt.MapClaims{
		"sub":   "subj-1",
		"email": "ada@example.net",
		"exp":   exp.Unix(),
	})

	claims, err := NewVerifier("secret").Verify(context.Background(), raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.SubjectID != "subj-1" || claims.Email != "ada@example.net" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.ExpiresAt.Unix() != exp.Unix() {
		t.Errorf("expiry = %v", claims.ExpiresAt)
	}
}

func TestVerifierRejectsWrongSecret(t *testing.T) {
	raw := mintToken(t, "other-secret", jwt.MapClaims{"sub": "subj-1", "exp": time.Now().Add(time.Hour).Unix()})
	if _, err := NewVerifier("secret").Verify(context.Background(), raw); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestVerifierRejectsExpiredToken(t *testing.T) {
	raw := mintToken(t, "secret", jwt.MapClaims{"sub": "subj-1", "exp": time.Now().Add(-time.Hour).Unix()})
	if _, err := NewVerifier("secret").Verify(context.Background(), raw); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestVerifierRequiresSubject(t *testing.T) {
	raw := mintToken(t, "secret", jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	if _, err := NewVerifier("secret").Verify(context.Background(), raw); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestVerifierRejectsGarbage(t *testing.T) {
	if _, err := NewVerifier("secret").Verify(context.Background(), "not.a.jwt"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}
