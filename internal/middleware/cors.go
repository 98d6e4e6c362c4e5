package middleware

import (
	"net/http"
	"strings"

	"water-admin/internal/config"
	"water-admin/internal/logger"

	"github.com/rs/cors"
)

// dashboardHeaders are always allowed so a trimmed config can't break bearer auth.
var dashboardHeaders = []string{"Authorization", "Content-Type", RequestIDHeader}

// NewCORS builds the dashboard's CORS policy. A "*" origin turns off
// credentials since browsers refuse that combination.
func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	origins := cfg.Server.CorsAllowedOrigins
	wildcard := false
	for _, o := range origins {
		if strings.TrimSpace(o) == "*" {
			wildcard = true
		}
	}

	opts := cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   withDefaults(cfg.Server.CorsAllowedMethods, http.MethodOptions),
		AllowedHeaders:   withDefaults(cfg.Server.CorsAllowedHeaders, dashboardHeaders...),
		ExposedHeaders:   []string{RequestIDHeader, "Content-Disposition"},
		AllowCredentials: !wildcard,
		MaxAge:           300,
	}

	log := logger.WithComponent("cors")
	log.Debug().
		Strs("origins", opts.AllowedOrigins).
		Strs("methods", opts.AllowedMethods).
		Bool("credentials", opts.AllowCredentials).
		Msg("cors policy")

	return cors.New(opts).Handler
}

// withDefaults appends extra values missing from list, case-insensitively.
func withDefaults(list []string, extra ...string) []string {
	out := append([]string(nil), list...)
	for _, e := range extra {
		found := false
		for _, v := range out {
			if strings.EqualFold(strings.TrimSpace(v), e) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, e)
		}
	}
	return out
}
