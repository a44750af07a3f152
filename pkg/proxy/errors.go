package proxy

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"alpharesearch/gateway/pkg/backend"
	"alpharesearch/gateway/pkg/proxy/types"
)

// companionProject names the sibling installation where backend Python
// dependencies live. It appears verbatim in rewritten dependency errors.
const companionProject = "research-tracker"

// moduleNotFoundPattern matches the Python interpreter's missing-module
// signature as it appears in backend stderr or error messages.
var moduleNotFoundPattern = regexp.MustCompile(`No module named '(\w+)'`)

// HandleError maps any handler error to the client-facing envelope.
func HandleError(err error) *types.ErrorEnvelope {
	var requestErr *RequestError
	if errors.As(err, &requestErr) {
		return &types.ErrorEnvelope{
			Error:  requestErr.Message,
			Status: http.StatusBadRequest,
		}
	}

	var backendErr *backend.Error
	if errors.As(err, &backendErr) {
		return NormalizeBackendError(backendErr)
	}

	// A response whose body could not be read is as unusable as no
	// response at all, so it gets the same fixed envelope.
	var transportErr *backend.TransportError
	var parseErr *backend.ParseError
	if errors.As(err, &transportErr) || errors.As(err, &parseErr) {
		return &types.ErrorEnvelope{
			Error:  types.TransportFailureMessage,
			Status: http.StatusInternalServerError,
		}
	}

	// Anything else is a gateway-side fault. Keep the message generic;
	// the underlying error goes to the log, not the client.
	return &types.ErrorEnvelope{
		Error:  "internal gateway error",
		Status: http.StatusInternalServerError,
	}
}

// NormalizeBackendError converts a backend error response into the
// client envelope, applying the missing-dependency rewrite and trace-ID
// suffix rules. The backend's HTTP status is preserved.
func NormalizeBackendError(err *backend.Error) *types.ErrorEnvelope {
	envelope := &types.ErrorEnvelope{Status: err.StatusCode}

	if err.Detail.IsStructured() {
		detail := err.Detail.Structured
		envelope.Detail = detail

		if module, found := findMissingModule(detail.Stderr, detail.Error); found {
			envelope.Error = missingDependencyMessage(module)
			return envelope
		}

		message := detail.Error
		if message == "" {
			message = fmt.Sprintf("Backend request failed with status %d", err.StatusCode)
		}
		if detail.TraceID != "" {
			message = fmt.Sprintf("%s (trace ID: %s)", message, detail.TraceID)
		}
		envelope.Error = message
		return envelope
	}

	message := err.Detail.Message
	if message == "" {
		message = fmt.Sprintf("Backend request failed with status %d", err.StatusCode)
	}
	if module, found := findMissingModule(message); found {
		envelope.Error = missingDependencyMessage(module)
		return envelope
	}
	envelope.Error = message
	return envelope
}

// findMissingModule scans the given texts, in order, for the Python
// missing-module signature and returns the first captured module name.
func findMissingModule(texts ...string) (string, bool) {
	for _, text := range texts {
		if match := moduleNotFoundPattern.FindStringSubmatch(text); match != nil {
			return match[1], true
		}
	}
	return "", false
}

func missingDependencyMessage(module string) string {
	return fmt.Sprintf("Missing dependency: %s. Please install it in %s.", module, companionProject)
}
