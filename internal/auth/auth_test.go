package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokens_IssueAndParse(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens := NewTokens([]byte("secret"), time.Hour, func() time.Time { return now })

	raw, err := tokens.Issue("user-1", "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := tokens.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "user-1" || claims.Username != "alice" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestTokens_Rejects(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	tokens := NewTokens([]byte("secret"), time.Hour, clock)

	raw, err := tokens.Issue("user-1", "alice")
	if err != nil {
		t.Fatal(err)
	}

	later := NewTokens([]byte("secret"), time.Hour, func() time.Time { return now.Add(2 * time.Hour) })
	if _, err := later.Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: got %v", err)
	}

	other := NewTokens([]byte("other"), time.Hour, clock)
	if _, err := other.Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret: got %v", err)
	}

	if _, err := tokens.Parse("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage: got %v", err)
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tokens.Parse(none); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("alg none: got %v", err)
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "hunter22" {
		t.Fatal("password stored in clear")
	}
	if !VerifyPassword(hash, "hunter22") {
		t.Error("expected match")
	}
	if VerifyPassword(hash, "hunter23") {
		t.Error("expected mismatch")
	}
}
