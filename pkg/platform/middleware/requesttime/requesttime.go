// Package requesttime pins a single "now" for the lifetime of a request so that
// every timestamp written while serving it agrees.
package requesttime

import (
	"net/http"
	"time"

	"civicdesk/pkg/requestcontext"
)

// Middleware stores the arrival time in the request context.
func Middleware(next http.Handler) http.Handler {
	return WithClock(time.Now)(next)
}

// WithClock is Middleware with an injectable time source.
func WithClock(now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), now().UTC())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
