package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// CORS allows browser clients of the sweets API. Origins come from
// CORS_ORIGINS; an empty list allows any origin. Credentials are never
// allowed because the API authenticates with bearer tokens only.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(corsOptions(origins)).Handler
}

func corsOptions(origins []string) cors.Options {
	allowed := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" {
			allowed = append(allowed, origin)
		}
	}
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}

	return cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		// Retry-After accompanies 429 from the login and register limiter.
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:         3600,
	}
}
