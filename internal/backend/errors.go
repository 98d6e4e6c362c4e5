package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// FallbackMessage is shown when a failure carries no readable detail.
const FallbackMessage = "Something went wrong. Please try again."

var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrUnexpectedPayload = errors.New("unexpected response payload")
	ErrUnavailable       = errors.New("backend unavailable")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
}

// UserMessage is the toast text for err.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return FallbackMessage
}

// HTTPStatus maps err to the status the BFF should answer with: backend 4xx
// pass through, everything else is a bad gateway.
func HTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return apiErr.StatusCode
	}
	return http.StatusBadGateway
}

// parseErrorDetail pulls a message out of the usual error bodies:
// {"detail": ...}, {"error": ...}, {"message": ...}, {"non_field_errors": [...]}
// or field errors like {"amount": ["..."]}.
func parseErrorDetail(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "error", "message", "non_field_errors"} {
		if raw, ok := fields[key]; ok {
			if msg := firstMessage(raw); msg != "" {
				return msg
			}
		}
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if msg := firstMessage(fields[name]); msg != "" {
			return name + ": " + msg
		}
	}
	return ""
}

func firstMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.TrimSpace(list[0])
	}
	return ""
}
