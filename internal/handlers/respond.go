package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode"

	"water-admin/internal/auth"
	"water-admin/internal/backend"
	"water-admin/internal/logger"
	"water-admin/internal/metrics"
	"water-admin/internal/models"
	"water-admin/internal/reporting"
	"water-admin/internal/services"
	"water-admin/internal/viewstate"
	"water-admin/pkg/utils"

	"github.com/gorilla/mux"
)

const (
	maxBodyBytes = 1 << 20
	maxIDLength  = 128
)

// staleView is sent when a dashboard fetch fails but an earlier result exists.
type staleView struct {
	Error     string    `json:"error"`
	Stale     bool      `json:"stale"`
	UpdatedAt time.Time `json:"updated_at"`
	Data      any       `json:"data"`
}

// writeError maps service and backend failures to a JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classify(err)
	event := logger.FromContext(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = logger.FromContext(r.Context()).Error()
	}
	event.Err(err).Int("status", status).Msg("request failed")
	utils.Error(w, status, message)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest, inputMessage(err, services.ErrInvalidInput)
	case errors.Is(err, reporting.ErrInvalidPeriod):
		return http.StatusBadRequest, inputMessage(err, reporting.ErrInvalidPeriod)
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, context.Canceled):
		return 499, "Request cancelled"
	}
	return backend.HTTPStatus(err), backend.UserMessage(err)
}

// inputMessage drops the sentinel prefix so the toast reads naturally.
func inputMessage(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" {
		return sentinel.Error()
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

func isRequestError(err error) bool {
	return errors.Is(err, services.ErrInvalidInput) ||
		errors.Is(err, reporting.ErrInvalidPeriod) ||
		errors.Is(err, services.ErrNotFound)
}

// serveView runs fetch under the session's last-fetch-wins guard. A backend
// failure falls back to the previous result marked stale.
func serveView[T any](w http.ResponseWriter, r *http.Request, reg *viewstate.Registry[T], view string, fetch func(ctx context.Context, token string) (T, error)) {
	session, ok := auth.FromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	store := reg.Store(session.Key(), view)
	seq := store.Begin()
	data, err := fetch(r.Context(), session.Token)
	if err != nil {
		store.Fail(seq, err)
		snap := store.Snapshot()
		if isRequestError(err) || !snap.Loaded {
			writeError(w, r, err)
			return
		}
		metrics.StaleViewsServed.WithLabelValues(view).Inc()
		logger.FromContext(r.Context()).Warn().Err(err).Str("view", view).Msg("serving stale view")
		utils.JSON(w, backend.HTTPStatus(err), staleView{
			Error:     backend.UserMessage(err),
			Stale:     true,
			UpdatedAt: snap.UpdatedAt,
			Data:      snap.Data,
		})
		return
	}

	if !store.Commit(seq, data, time.Now()) {
		logger.FromContext(r.Context()).Debug().Str("view", view).Msg("superseded fetch not stored")
	}
	utils.JSON(w, http.StatusOK, data)
}

func parsePeriod(r *http.Request) (reporting.Period, error) {
	q := r.URL.Query()
	return reporting.ParsePeriod(q.Get("period"), q.Get("start"), q.Get("end"))
}

// pathID reads an id path variable. Backend ids may be numbers, UUIDs or
// slugs; anything non-empty without path or control characters is passed on.
func pathID(r *http.Request, name string) (models.ID, bool) {
	raw := mux.Vars(r)[name]
	if raw == "" || strings.TrimSpace(raw) != raw || len(raw) > maxIDLength {
		return "", false
	}
	for _, c := range raw {
		if c == '/' || c == '\\' || c == '?' || c == '#' || unicode.IsControl(c) || unicode.IsSpace(c) {
			return "", false
		}
	}
	if raw == "." || raw == ".." {
		return "", false
	}
	return models.ID(raw), true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func sessionFrom(w http.ResponseWriter, r *http.Request) (*auth.Session, bool) {
	session, ok := auth.FromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
	}
	return session, ok
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
}
