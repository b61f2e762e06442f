package middleware

import (
	"context"
	"net/http"

	"ordersvc/internal/auth"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	SubjectKey     contextKey = "subject"
	TokenClaimsKey contextKey = "jwtClaims"
)

// RequireAuth rejects requests that do not carry a valid bearer token.
// Claims are stored in the request context for downstream handlers.
func RequireAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
				return secret, nil
			})
			if err != nil || !token.Valid {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			ctx := r.Context()
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				ctx = context.WithValue(ctx, TokenClaimsKey, claims)
				if sub, ok := claims["sub"].(string); ok {
					ctx = context.WithValue(ctx, SubjectKey, sub)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
