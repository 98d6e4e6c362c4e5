package auth

import (
	"errors"
	"fmt"
	"strings"

	"water-admin/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken   = errors.New("authorization header required")
	ErrMalformedToken = errors.New("invalid authorization format")
	ErrInvalidToken   = errors.New("invalid token")
)

// Claims is the payload the backend puts in its access tokens.
type Claims struct {
	UserID   models.ID   `json:"user_id"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	ClientID models.ID   `json:"client_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager reads backend-issued tokens. Tokens are only decoded unless a
// shared secret is configured, in which case the HS256 signature is checked.
// Expiry is never enforced here; callers use IsExpired with their own clock.
type JWTManager struct {
	secret []byte
}

func NewJWTManager(secret string) *JWTManager {
	return &JWTManager{secret: []byte(strings.TrimSpace(secret))}
}

// Verifies reports whether signatures are checked.
func (j *JWTManager) Verifies() bool {
	return len(j.secret) > 0
}

// ParseSession turns a raw token into a Session.
func (j *JWTManager) ParseSession(tokenString string) (*Session, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	if j.Verifies() {
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid signing method")
			}
			return j.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		if !token.Valid {
			return nil, ErrInvalidToken
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	if claims.UserID == "" {
		claims.UserID = models.ID(claims.Subject)
	}
	s := &Session{
		UserID:   claims.UserID,
		Name:     claims.Name,
		Email:    claims.Email,
		Role:     claims.Role,
		ClientID: claims.ClientID,
		Token:    tokenString,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMalformedToken
	}
	return parts[1], nil
}
