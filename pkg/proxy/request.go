package proxy

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxBodyBytes bounds inbound JSON bodies. Article markdown runs a few
// hundred KB at most; 1 MiB leaves ample headroom.
const maxBodyBytes = 1 << 20

// RequestError is a request-validation failure. It is raised before any
// backend call and maps to a 400 response.
type RequestError struct {
	// Message is the client-facing explanation.
	Message string
	// Param names the offending parameter, when there is one.
	Param string
}

func (e *RequestError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("invalid request parameter %q: %s", e.Param, e.Message)
	}
	return e.Message
}

// NewRequestError creates a validation failure for the named parameter.
func NewRequestError(param, message string) *RequestError {
	return &RequestError{Param: param, Message: message}
}

// DecodeJSONBody reads and decodes a JSON request body into v, enforcing
// the body size limit. Unknown fields are tolerated so the frontend can
// evolve ahead of the gateway.
func DecodeJSONBody(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return &RequestError{Message: "failed to read request body"}
	}
	if len(body) > maxBodyBytes {
		return &RequestError{Message: "request body too large"}
	}
	if len(body) == 0 {
		return &RequestError{Message: "request body is required"}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &RequestError{Message: "request body is not valid JSON"}
	}
	return nil
}

// ValidateFilename checks an article filename path parameter. Filenames
// come from the listing endpoint and always carry the .html suffix;
// anything with path separators is rejected outright.
func ValidateFilename(filename string) error {
	if filename == "" {
		return NewRequestError("filename", "filename is required")
	}
	if strings.ContainsAny(filename, "/\\") {
		return NewRequestError("filename", "filename must not contain path separators")
	}
	if !strings.HasSuffix(filename, ".html") {
		return NewRequestError("filename", "filename must end with .html")
	}
	return nil
}

// ParseSymbols splits and normalizes a comma-separated symbols query
// parameter. Symbols are upper-cased; empty segments are dropped.
func ParseSymbols(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, NewRequestError("symbols", "symbols parameter is required")
	}
	var symbols []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		symbols = append(symbols, strings.ToUpper(part))
	}
	if len(symbols) == 0 {
		return nil, NewRequestError("symbols", "symbols parameter is required")
	}
	return symbols, nil
}
