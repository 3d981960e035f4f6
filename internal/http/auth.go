package httpapi

import (
	"context"
	"net/http"
	"strings"

	"piaopiao-backend-go/internal/services"
)

const TokenIssuer = "piaopiao"

type contextKey string

const ctxCaller contextKey = "caller"

// RequirePushToken checks the Bearer token when tokens are enabled. With no
// secret configured every request passes.
func RequirePushToken(tokens services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tokens.Enabled() {
				next.ServeHTTP(w, r)
				return
			}
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				WriteError(w, http.StatusUnauthorized, "Authentication failed")
				return
			}
			subject, err := tokens.VerifyPushToken(strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
			if err != nil {
				writeServiceError(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), ctxCaller, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentCaller is the token subject, or "" when tokens are disabled.
func CurrentCaller(r *http.Request) string {
	if value, ok := r.Context().Value(ctxCaller).(string); ok {
		return value
	}
	return ""
}
