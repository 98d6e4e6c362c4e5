package auth

import (
	"context"
	"time"

	"water-admin/internal/models"
)

// Session is the signed-in user as described by the bearer token. It is
// passed explicitly through the request context, never held globally.
type Session struct {
	UserID    models.ID   `json:"user_id"`
	Name      string      `json:"name,omitempty"`
	Email     string      `json:"email,omitempty"`
	Role      models.Role `json:"role"`
	ClientID  models.ID   `json:"client_id,omitempty"`
	ExpiresAt time.Time   `json:"-"`
	Token     string      `json:"-"`
}

// IsExpired reports whether expiry has been reached at now.
func IsExpired(now, expiry time.Time) bool {
	return !now.Before(expiry)
}

// Expired treats a token without exp as never expiring.
func (s *Session) Expired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return IsExpired(now, s.ExpiresAt)
}

// ExpiresIn is the remaining lifetime, or false when the token has no expiry.
func (s *Session) ExpiresIn(now time.Time) (time.Duration, bool) {
	if s.ExpiresAt.IsZero() {
		return 0, false
	}
	d := s.ExpiresAt.Sub(now)
	if d < 0 {
		d = 0
	}
	return d, true
}

func (s *Session) HasRole(roles ...models.Role) bool {
	for _, role := range roles {
		if s.Role == role {
			return true
		}
	}
	return false
}

// Key identifies the session for per-user view state.
func (s *Session) Key() string {
	return s.Role.String() + ":" + s.UserID.String()
}

type sessionKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
