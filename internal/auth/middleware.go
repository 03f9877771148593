package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ajeetyadav200/sarkari-job-backend/internal/models"
)

// contextKey is a custom type for context keys
type contextKey string

const claimsContextKey contextKey = "claims"

// Middleware validates the bearer token (Authorization header or auth
// cookie) and injects the claims into the request context.
func Middleware(tm *TokenManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				http.Error(w, "missing credentials", http.StatusUnauthorized)
				return
			}

			claims, err := tm.Validate(tokenString)
			if err != nil {
				if errors.Is(err, ErrTokenExpired) {
					http.Error(w, "session expired, please log in again", http.StatusUnauthorized)
					return
				}
				http.Error(w, "invalid credentials, please log in", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole enforces role-based access on top of Middleware. Roles come
// from the verified token claims; a fresh DB read is not needed because a
// role change ships with the next issued token.
func RequireRole(roles ...string) func(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromRequest(r)
			if claims == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if !allowed[claims.Role] {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WithClaims returns a context carrying verified claims.
func WithClaims(ctx context.Context, claims *models.TokenClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromRequest returns the verified claims added by Middleware, or nil.
func ClaimsFromRequest(r *http.Request) *models.TokenClaims {
	claims, _ := r.Context().Value(claimsContextKey).(*models.TokenClaims)
	return claims
}

// RoleFromClaims maps claims to the closed role set, defaulting to "" for
// anything unrecognized.
func RoleFromClaims(claims *models.TokenClaims) string {
	if claims == nil || !models.ValidRole(claims.AccountType, claims.Role) {
		return ""
	}
	return claims.Role
}

func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	if cookie, err := r.Cookie(TokenCookieName); err == nil {
		return cookie.Value
	}

	return ""
}
