package middleware

import (
	"errors"
	"net/http"
	"time"

	"water-admin/internal/auth"
	"water-admin/internal/logger"
	"water-admin/internal/models"
	"water-admin/internal/timeutil"
	"water-admin/pkg/utils"
)

type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	now        func() time.Time
}

func NewAuthMiddleware(jwtManager *auth.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager, now: timeutil.Now}
}

// WithClock replaces the expiry clock, for tests.
func (m *AuthMiddleware) WithClock(now func() time.Time) *AuthMiddleware {
	m.now = now
	return m
}

// Authenticate turns the bearer token into a Session on the request context.
// Expired sessions are rejected on every request.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.BearerToken(r.Header.Get("Authorization"))
		if errors.Is(err, auth.ErrMissingToken) {
			utils.Error(w, http.StatusUnauthorized, "Authorization header required")
			return
		}
		if err != nil {
			utils.Error(w, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		session, err := m.jwtManager.ParseSession(token)
		if err != nil {
			utils.Error(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		if session.Expired(m.now()) {
			utils.Error(w, http.StatusUnauthorized, "Session expired. Please log in again.")
			return
		}
		if session.Role == models.RoleUnknown {
			utils.Error(w, http.StatusForbidden, "Forbidden: unknown role")
			return
		}

		logger.Annotate(r.Context(), "user_id", session.UserID.String())
		logger.Annotate(r.Context(), "role", session.Role.String())
		next.ServeHTTP(w, r.WithContext(auth.NewContext(r.Context(), session)))
	})
}

// RequireRole authenticates and then checks the session role.
func (m *AuthMiddleware) RequireRole(allowedRoles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := auth.FromContext(r.Context())
			if !ok {
				utils.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !session.HasRole(allowedRoles...) {
				utils.Error(w, http.StatusForbidden, "Forbidden: Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// RequireAdmin is a middleware that ensures the user has admin role
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireRole(models.RoleAdmin)(next)
}
