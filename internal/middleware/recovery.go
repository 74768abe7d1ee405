package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

// RecoveryMiddleware turns a panic into a 500 response and logs it with the
// request id and, once authenticated, the acting user
func RecoveryMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				fields := []zap.Field{
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("ip", clientIP(r)),
					zap.Any("error", rec),
					zap.Stack("stack"),
				}
				if actor, ok := authenticatedActor(r.Context()); ok {
					fields = append(fields, zap.Int("actor_id", actor.ID), zap.String("actor_role", actor.Role))
				}
				logger.Error("panic recovered", fields...)

				writeJSONError(w, http.StatusInternalServerError, "internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
