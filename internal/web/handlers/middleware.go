package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/TheDevBianchi/rifa-camiari/internal/token"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsContextKey stores the validated token claims in request context.
	ClaimsContextKey contextKey = "claims"
)

// AuthMiddleware requires a valid Bearer token.
// On failure it returns 401 Unauthorized.
func AuthMiddleware(tokens *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				jsonError(w, "Missing bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				log.Printf("Token validation error: %v", err)
				jsonError(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminMiddleware requires the validated claims to carry the admin role.
// MUST be used after AuthMiddleware so the claims are already in context.
// Returns 403 Forbidden otherwise.
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaimsFromContext(r.Context())
		if !ok || claims == nil {
			jsonError(w, "Forbidden", http.StatusForbidden)
			return
		}
		if !claims.HasRole(token.RoleAdmin) {
			jsonError(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetClaimsFromContext extracts the validated claims from request context.
func GetClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*token.Claims)
	return claims, ok
}
