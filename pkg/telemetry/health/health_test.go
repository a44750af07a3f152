package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestChecker_Liveness(t *testing.T) {
	checker := New(time.Second)

	w := httptest.NewRecorder()
	checker.LivenessHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	var status Status
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if status.Status != "ok" {
		t.Errorf("status = %q, want ok", status.Status)
	}
}

func TestChecker_ReadinessAllHealthy(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("backend", func(context.Context) error { return nil })
	checker.RegisterCheck("audit", func(context.Context) error { return nil })

	w := httptest.NewRecorder()
	checker.ReadinessHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	var status Status
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if status.Status != "ready" {
		t.Errorf("status = %q, want ready", status.Status)
	}
	if len(status.Checks) != 2 {
		t.Errorf("expected 2 checks, got %d", len(status.Checks))
	}
}

func TestChecker_ReadinessDegraded(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("backend", func(context.Context) error {
		return errors.New("backend unreachable for 3 consecutive requests")
	})

	w := httptest.NewRecorder()
	checker.ReadinessHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}

	var status Status
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if status.Status != "degraded" {
		t.Errorf("status = %q, want degraded", status.Status)
	}
	check := status.Checks["backend"]
	if check.Status != "unhealthy" || check.Message == "" {
		t.Errorf("unexpected backend check: %+v", check)
	}
}

func TestVersionHandler(t *testing.T) {
	handler := VersionHandler("1.2.3", "abc1234", "2026-08-01T00:00:00Z")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/version", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var info VersionInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if info.Version != "1.2.3" || info.Commit != "abc1234" {
		t.Errorf("unexpected info: %+v", info)
	}
	if info.GoVersion == "" {
		t.Error("go version missing")
	}
}
