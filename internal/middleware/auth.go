package middleware

import (
	"context"
	"net"
	"net/http"
	"slices"
	"strings"

	"github.com/adminpanel/backend/internal/models"
)

// AccessTokenValidator validates access tokens and extracts the user id and role key
type AccessTokenValidator interface {
	ValidateAccessToken(token string) (int, string, error)
}

// RoleMiddleware validates the access token and checks the user's role is one of allowedRoles.
// On success the request-scoped actor is stored in the request context.
func RoleMiddleware(validator AccessTokenValidator, allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			userID, role, err := validator.ValidateAccessToken(token)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			if len(allowedRoles) > 0 && !slices.Contains(allowedRoles, role) {
				writeJSONError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			ctx := WithActor(r.Context(), models.Actor{
				ID:        userID,
				Role:      role,
				IPAddress: clientIP(r),
				RequestID: GetRequestID(r.Context()),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken reads the bearer token from the Authorization header, falling back to the access_token cookie
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// clientIP returns the originating client address of the request
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// WithActor stores the actor in the context and records it for the request
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	if info, ok := ctx.Value(requestKey).(*requestInfo); ok {
		info.actor = &actor
	}
	return context.WithValue(ctx, actorKey, actor)
}

// GetActor retrieves the actor from context
func GetActor(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(models.Actor)
	return actor, ok
}
