package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"alpharesearch/gateway/pkg/proxy/types"
)

// Recovery recovers from panics in HTTP handlers and returns a 500
// response in the gateway's error envelope format. The panic and stack
// trace go to the log; the client sees a generic message.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				requestID := GetRequestID(r.Context())
				stack := debug.Stack()

				slog.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"request_id", requestID,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(stack),
				)

				envelope := &types.ErrorEnvelope{
					Error:  "internal gateway error",
					Status: http.StatusInternalServerError,
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(envelope)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
