package handlers

import (
	"net/http"
	"time"

	"water-admin/internal/auth"
	"water-admin/internal/logger"
	"water-admin/pkg/utils"
)

// Forgetter drops cached view state for a session.
type Forgetter interface {
	Forget(session string)
}

type SessionHandler struct {
	views []Forgetter
	now   func() time.Time
}

func NewSessionHandler(views ...Forgetter) *SessionHandler {
	return &SessionHandler{views: views, now: time.Now}
}

type sessionResponse struct {
	*auth.Session
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	ExpiresInSeconds *int64     `json:"expires_in_seconds,omitempty"`
}

// GetSession returns the caller's identity and how long the token has left so
// the browser can schedule its own logout.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	resp := sessionResponse{Session: session}
	if remaining, ok := session.ExpiresIn(h.now()); ok {
		secs := int64(remaining / time.Second)
		expiresAt := session.ExpiresAt
		resp.ExpiresAt = &expiresAt
		resp.ExpiresInSeconds = &secs
	}
	utils.JSON(w, http.StatusOK, resp)
}

// EndSession forgets every dashboard snapshot held for the caller.
func (h *SessionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	for _, v := range h.views {
		v.Forget(session.Key())
	}
	logger.FromContext(r.Context()).Info().Msg("session views cleared")
	w.WriteHeader(http.StatusNoContent)
}
