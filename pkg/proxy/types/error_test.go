package types

import (
	"encoding/json"
	"testing"

	"alpharesearch/gateway/pkg/backend"
)

func TestErrorEnvelope_HTTPStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		envelope ErrorEnvelope
		want     int
	}{
		{
			name:     "zero status defaults to 500",
			envelope: ErrorEnvelope{Error: "boom"},
			want:     500,
		},
		{
			name:     "explicit status preserved",
			envelope: ErrorEnvelope{Error: "not found", Status: 404},
			want:     404,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.envelope.HTTPStatusCode(); got != tt.want {
				t.Errorf("HTTPStatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorEnvelope_JSONShape(t *testing.T) {
	exitCode := 1
	envelope := ErrorEnvelope{
		Error:  "Generation failed (trace ID: a3b5c7d9)",
		Status: 500,
		Detail: &backend.StructuredDetail{
			Error:    "Generation failed",
			TraceID:  "a3b5c7d9",
			Stderr:   "ModuleNotFoundError: No module named 'apscheduler'",
			ExitCode: &exitCode,
		},
	}

	raw, err := json.Marshal(&envelope)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["error"] != "Generation failed (trace ID: a3b5c7d9)" {
		t.Errorf("unexpected error field: %v", decoded["error"])
	}
	detail, ok := decoded["detail"].(map[string]interface{})
	if !ok {
		t.Fatal("detail field missing or not an object")
	}
	if detail["trace_id"] != "a3b5c7d9" {
		t.Errorf("unexpected trace_id: %v", detail["trace_id"])
	}

	// Minimal envelopes must not leak empty optional fields.
	minimal, err := json.Marshal(&ErrorEnvelope{Error: TransportFailureMessage})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var minimalDecoded map[string]interface{}
	if err := json.Unmarshal(minimal, &minimalDecoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, present := minimalDecoded["detail"]; present {
		t.Error("detail should be omitted when nil")
	}
	if _, present := minimalDecoded["status"]; present {
		t.Error("status should be omitted when zero")
	}
}
