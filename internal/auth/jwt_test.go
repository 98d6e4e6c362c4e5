package auth

import (
	"errors"
	"testing"
	"time"

	"water-admin/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	return token
}

func TestParseSessionUnverified(t *testing.T) {
	exp := time.Date(2024, 3, 11, 12, 0, 0, 0, time.UTC)
	token := signToken(t, jwt.MapClaims{
		"user_id":   42,
		"name":      "Asha",
		"role":      "manager",
		"client_id": "c-9",
		"exp":       exp.Unix(),
	}, "backend-secret")

	s, err := NewJWTManager("").ParseSession(token)
	if err != nil {
		t.Fatalf("ParseSession failed: %v", err)
	}
	if s.UserID != "42" || s.Role != models.RoleManager || s.ClientID != "c-9" || s.Name != "Asha" {
		t.Fatalf("unexpected session %+v", s)
	}
	if !s.ExpiresAt.Equal(exp) {
		t.Fatalf("expected expiry %v, got %v", exp, s.ExpiresAt)
	}
	if s.Token != token {
		t.Fatalf("token not kept on session")
	}
}

func TestParseSessionVerified(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"user_id": "7", "role": "admin"}, "shared")

	if _, err := NewJWTManager("shared").ParseSession(token); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}
	if _, err := NewJWTManager("other").ParseSession(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for wrong secret, got %v", err)
	}
}

func TestParseSessionDoesNotEnforceExpiry(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"user_id": 1, "role": "driver", "exp": 1}, "shared")
	s, err := NewJWTManager("shared").ParseSession(token)
	if err != nil {
		t.Fatalf("expired tokens must still decode, got %v", err)
	}
	if !s.Expired(time.Now()) {
		t.Fatalf("expected session to report expired")
	}
}

func TestParseSessionRejectsGarbage(t *testing.T) {
	if _, err := NewJWTManager("").ParseSession("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
	if _, err := NewJWTManager("").ParseSession(" "); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected missing token, got %v", err)
	}
}

func TestParseSessionUnknownRoleAndSubject(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": "99", "role": "superuser"}, "x")
	s, err := NewJWTManager("").ParseSession(token)
	if err != nil {
		t.Fatalf("ParseSession failed: %v", err)
	}
	if s.Role != models.RoleUnknown || s.UserID != "99" {
		t.Fatalf("unexpected session %+v", s)
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
		err    error
	}{
		{"Bearer abc", "abc", nil},
		{"bearer abc", "abc", nil},
		{"", "", ErrMissingToken},
		{"Token abc", "", ErrMalformedToken},
		{"Bearer", "", ErrMalformedToken},
	}
	for _, tc := range cases {
		got, err := BearerToken(tc.header)
		if !errors.Is(err, tc.err) || got != tc.want {
			t.Fatalf("BearerToken(%q) = %q, %v", tc.header, got, err)
		}
	}
}
