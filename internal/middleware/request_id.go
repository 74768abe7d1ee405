// Package middleware contains the HTTP middleware chain of the service
package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/adminpanel/backend/internal/models"
	"github.com/google/uuid"
)

type contextKey string

const (
	requestKey contextKey = "request"
	actorKey   contextKey = "actor"
)

// incoming ids are echoed in headers and logs, so only short tokens are accepted
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// requestInfo is shared by the whole middleware chain of one request.
// Outer middlewares read what inner ones record, e.g. the actor after authentication.
type requestInfo struct {
	id    string
	actor *models.Actor
}

// RequestIDMiddleware assigns the request id, reusing a well formed X-Request-ID header
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if !requestIDPattern.MatchString(requestID) {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), requestKey, &requestInfo{id: requestID})
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if info, ok := ctx.Value(requestKey).(*requestInfo); ok {
		return info.id
	}
	return ""
}

// authenticatedActor returns the actor recorded for the request, also when called
// from a middleware that runs before authentication
func authenticatedActor(ctx context.Context) (models.Actor, bool) {
	if info, ok := ctx.Value(requestKey).(*requestInfo); ok && info.actor != nil {
		return *info.actor, true
	}
	return GetActor(ctx)
}
