package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const (
	userIDKey contextKey = "auth.userID"
	tokenKey  contextKey = "auth.token"
)

// WithUserID returns a context carrying the authenticated user id, as
// Middleware does after verifying a token.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user id placed by Middleware.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// TokenFromContext returns the verified claims placed by Middleware.
func TokenFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(tokenKey).(*Claims)
	return claims, ok
}

// Middleware verifies the Bearer token, rejects blocklisted tokens and puts
// the caller identity on the request context.
func Middleware(maker *JWTMaker, blocklist TokenBlocklist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, `{"error":"unauthorized access"}`, http.StatusUnauthorized)
				return
			}

			claims, err := maker.VerifyToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				http.Error(w, `{"error":"unauthorized access"}`, http.StatusUnauthorized)
				return
			}

			if blocklist != nil {
				blocked, err := blocklist.IsBlocked(r.Context(), claims.ID)
				if err != nil {
					http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
					return
				}
				if blocked {
					http.Error(w, `{"error":"unauthorized access"}`, http.StatusUnauthorized)
					return
				}
			}

			ctx := WithUserID(r.Context(), claims.UserID)
			ctx = context.WithValue(ctx, tokenKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
