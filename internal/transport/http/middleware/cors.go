package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the listed browser origins to call the API with a bearer token.
// Origins may contain one "*" wildcard, e.g. "https://*.jiayou.example".
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", HeaderXRequestID},
		ExposedHeaders: []string{HeaderXRequestID, "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		// bearer tokens travel in a header, never in cookies
		AllowCredentials: false,
		MaxAge:           300,
	})
}
