package proxy

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"alpharesearch/gateway/pkg/backend"
	"alpharesearch/gateway/pkg/proxy/types"
)

func TestHandleError_RequestError(t *testing.T) {
	envelope := HandleError(NewRequestError("filename", "filename is required"))

	if envelope.Status != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", envelope.Status)
	}
	if envelope.Error != "filename is required" {
		t.Errorf("unexpected message: %q", envelope.Error)
	}
	if envelope.Detail != nil {
		t.Error("validation errors must not carry backend detail")
	}
}

func TestHandleError_TransportFailure(t *testing.T) {
	envelope := HandleError(&backend.TransportError{
		Op:      backend.OpListArticles,
		Elapsed: 30 * time.Millisecond,
		Cause:   errors.New("dial tcp 127.0.0.1:8000: connect: connection refused"),
	})

	if envelope.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", envelope.Status)
	}
	if envelope.Error != types.TransportFailureMessage {
		t.Errorf("unexpected message: %q", envelope.Error)
	}
	if envelope.Detail != nil {
		t.Error("transport failures must not carry backend detail")
	}
}

func TestHandleError_ParseFailure(t *testing.T) {
	envelope := HandleError(&backend.ParseError{
		Op:    backend.OpListArticles,
		Cause: errors.New("unexpected EOF"),
	})

	if envelope.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", envelope.Status)
	}
	if envelope.Error != types.TransportFailureMessage {
		t.Errorf("unexpected message: %q", envelope.Error)
	}
	if envelope.Detail != nil {
		t.Error("parse failures must not carry backend detail")
	}
}

func TestHandleError_UnknownError(t *testing.T) {
	envelope := HandleError(errors.New("something unexpected"))

	if envelope.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", envelope.Status)
	}
	if envelope.Error != "internal gateway error" {
		t.Errorf("unexpected message: %q", envelope.Error)
	}
}

func TestNormalizeBackendError(t *testing.T) {
	exitCode := 1

	tests := []struct {
		name        string
		err         *backend.Error
		wantStatus  int
		wantMessage string
		wantDetail  bool
	}{
		{
			name: "missing module in stderr rewritten",
			err: &backend.Error{
				Op:         backend.OpGenerateArticle,
				StatusCode: http.StatusInternalServerError,
				Detail: backend.Detail{Structured: &backend.StructuredDetail{
					Error:    "Generation failed",
					TraceID:  "a3b5c7d9",
					Stderr:   "Traceback (most recent call last):\nModuleNotFoundError: No module named 'apscheduler'",
					ExitCode: &exitCode,
				}},
			},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Missing dependency: apscheduler. Please install it in research-tracker.",
			wantDetail:  true,
		},
		{
			name: "missing module in message rewritten",
			err: &backend.Error{
				Op:         backend.OpGenerateArticle,
				StatusCode: http.StatusInternalServerError,
				Detail: backend.Detail{Structured: &backend.StructuredDetail{
					Error:   "subprocess failed: No module named 'yfinance'",
					TraceID: "deadbeef",
				}},
			},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Missing dependency: yfinance. Please install it in research-tracker.",
			wantDetail:  true,
		},
		{
			name: "structured error gets trace suffix",
			err: &backend.Error{
				Op:         backend.OpGenerateArticle,
				StatusCode: http.StatusInternalServerError,
				Detail: backend.Detail{Structured: &backend.StructuredDetail{
					Error:   "Generation script exited with code 2",
					TraceID: "a3b5c7d9",
				}},
			},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Generation script exited with code 2 (trace ID: a3b5c7d9)",
			wantDetail:  true,
		},
		{
			name: "structured error without trace kept verbatim",
			err: &backend.Error{
				Op:         backend.OpSearchTheme,
				StatusCode: http.StatusBadGateway,
				Detail: backend.Detail{Structured: &backend.StructuredDetail{
					Error: "arXiv API unavailable",
				}},
			},
			wantStatus:  http.StatusBadGateway,
			wantMessage: "arXiv API unavailable",
			wantDetail:  true,
		},
		{
			name: "plain string detail relayed with original status",
			err: &backend.Error{
				Op:         backend.OpGetArticle,
				StatusCode: http.StatusNotFound,
				Detail:     backend.Detail{Message: "Article not found"},
			},
			wantStatus:  http.StatusNotFound,
			wantMessage: "Article not found",
		},
		{
			name: "plain string with missing module rewritten",
			err: &backend.Error{
				Op:         backend.OpGenerateArticle,
				StatusCode: http.StatusInternalServerError,
				Detail:     backend.Detail{Message: "ModuleNotFoundError: No module named 'pandas'"},
			},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Missing dependency: pandas. Please install it in research-tracker.",
		},
		{
			name: "empty detail falls back to status message",
			err: &backend.Error{
				Op:         backend.OpStats,
				StatusCode: http.StatusServiceUnavailable,
				Detail:     backend.Detail{},
			},
			wantStatus:  http.StatusServiceUnavailable,
			wantMessage: "Backend request failed with status 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envelope := NormalizeBackendError(tt.err)
			if envelope.Status != tt.wantStatus {
				t.Errorf("status = %d, want %d", envelope.Status, tt.wantStatus)
			}
			if envelope.Error != tt.wantMessage {
				t.Errorf("message = %q, want %q", envelope.Error, tt.wantMessage)
			}
			if tt.wantDetail && envelope.Detail == nil {
				t.Error("expected structured detail to be forwarded")
			}
			if !tt.wantDetail && envelope.Detail != nil {
				t.Error("unexpected structured detail")
			}
		})
	}
}

func TestNormalizeBackendError_DetailPreserved(t *testing.T) {
	// The rewrite changes the message only; the structured diagnostics
	// must survive untouched so the dashboard can show raw stderr.
	exitCode := 1
	err := &backend.Error{
		Op:         backend.OpGenerateArticle,
		StatusCode: http.StatusInternalServerError,
		Detail: backend.Detail{Structured: &backend.StructuredDetail{
			Error:      "Generation failed",
			TraceID:    "a3b5c7d9",
			Stderr:     "ModuleNotFoundError: No module named 'apscheduler'",
			Stdout:     "loading config...\n",
			Suggestion: "pip install -r requirements.txt",
			ExitCode:   &exitCode,
		}},
	}

	envelope := NormalizeBackendError(err)
	if envelope.Detail.Stderr != "ModuleNotFoundError: No module named 'apscheduler'" {
		t.Errorf("stderr altered: %q", envelope.Detail.Stderr)
	}
	if envelope.Detail.Stdout != "loading config...\n" {
		t.Errorf("stdout altered: %q", envelope.Detail.Stdout)
	}
	if envelope.Detail.Suggestion != "pip install -r requirements.txt" {
		t.Errorf("suggestion altered: %q", envelope.Detail.Suggestion)
	}
	if envelope.Detail.TraceID != "a3b5c7d9" {
		t.Errorf("trace_id altered: %q", envelope.Detail.TraceID)
	}
}
