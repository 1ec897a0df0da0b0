// Package recovery turns handler panics into 500 responses.
package recovery

import (
	"net/http"
	"runtime/debug"

	applog "tally/internal/log"
)

// Middleware recovers from panics, logs them with the request logger and
// calls onPanic to write the response.
func Middleware(onPanic func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					applog.FromContext(r.Context()).ErrorContext(r.Context(), "Panic recovered",
						applog.FieldError, rec,
						applog.FieldMethod, r.Method,
						applog.FieldPath, r.URL.Path,
						"stack", string(debug.Stack()))
					onPanic(w, r)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
