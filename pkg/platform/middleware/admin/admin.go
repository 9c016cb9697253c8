package admin

import (
	"crypto/subtle"
	"net/http"

	"go.uber.org/zap"

	"healthreg/pkg/requestcontext"
)

// HeaderOperatorToken carries the shared secret for sync bookkeeping routes.
const HeaderOperatorToken = "X-Operator-Token"

// RequireOperatorToken guards destructive sync routes (confirm, prune).
// An empty expectedToken disables the guard.
func RequireOperatorToken(expectedToken string, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		if expectedToken == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(HeaderOperatorToken)
			if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				logger.Warn("operator token mismatch",
					zap.String("request_id", requestcontext.RequestID(r.Context())),
					zap.String("path", r.URL.Path),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"operator token required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
