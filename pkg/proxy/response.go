package proxy

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"alpharesearch/gateway/pkg/backend"
	"alpharesearch/gateway/pkg/proxy/types"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// WriteError writes an error envelope with its embedded status.
func WriteError(w http.ResponseWriter, envelope *types.ErrorEnvelope) {
	WriteJSON(w, envelope.HTTPStatusCode(), envelope)
}

// WriteRelay forwards a successful backend payload to the client.
// The body is written byte for byte and the backend's content type is
// preserved; a missing content type falls back to application/json.
// Successful relays always answer 200 regardless of the backend's exact
// 2xx status, which keeps the frontend contract simple.
func WriteRelay(w http.ResponseWriter, payload *backend.Payload) {
	contentType := payload.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload.Body); err != nil {
		slog.Error("failed to write relayed payload", "error", err)
	}
}
