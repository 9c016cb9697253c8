package testutil

import (
	"net/http"
	"time"

	"healthreg/pkg/requestcontext"
)

// FixedTime is middleware that pins the request clock to at, so derived
// values like ages and visit dates are stable in handler tests.
func FixedTime(at time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(requestcontext.WithTime(r.Context(), at)))
		})
	}
}
