package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gobarber/gobarber/libs/auth"
	"github.com/gobarber/gobarber/libs/httpx"
)

type ctxKey int

const ctxKeyCaller ctxKey = iota

// CallerID returns the authenticated user id, or 0 outside RequireAuth.
func CallerID(ctx context.Context) int64 {
	claims, _ := ctx.Value(ctxKeyCaller).(*auth.Claims)
	if claims == nil {
		return 0
	}
	return claims.UserID()
}

// RequireAuth verifies the Bearer token and attaches the caller identity to
// the request context.
func RequireAuth(jwtSecret string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") || len(strings.TrimSpace(header)) <= len("Bearer ") {
				writeError(w, http.StatusUnauthorized, "Token not provided")
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			claims, err := auth.ParseAndVerifyHS256(token, jwtSecret)
			if err != nil || claims.UserID() == 0 {
				writeError(w, http.StatusUnauthorized, "Token invalid")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyCaller, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
