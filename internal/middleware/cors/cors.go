// Package cors configures Cross-Origin Resource Sharing for the read-only API.
package cors

import (
	"net/http"

	"github.com/go-chi/cors"
)

// Middleware allows the listed origins. "*" allows any origin and an empty
// list adds no CORS headers at all.
func Middleware(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	})
}
