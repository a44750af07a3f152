package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestClient_SingleAttempt(t *testing.T) {
	attemptCount := int32(0)

	// Server that always fails with 500. The client must not retry.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attemptCount, 1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail": "backend exploded"}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.ListArticles(context.Background())
	if err == nil {
		t.Fatal("expected error for 500 response")
	}

	if count := atomic.LoadInt32(&attemptCount); count != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", count)
	}
}

func TestClient_SuccessPayloadPreserved(t *testing.T) {
	body := `{"articles":[{"filename":"wechat_20250115.html","date":"20250115","title":"AI Semiconductor Outlook"}]}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/research/wechat/list" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	payload, err := client.ListArticles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payload.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", payload.StatusCode)
	}
	// The body must be relayed byte for byte, not re-encoded.
	if string(payload.Body) != body {
		t.Errorf("payload body altered:\nwant %s\ngot  %s", body, payload.Body)
	}

	var list ArticleList
	if err := payload.Decode(&list); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(list.Articles) != 1 || list.Articles[0].Filename != "wechat_20250115.html" {
		t.Errorf("unexpected decoded list: %+v", list)
	}
}

func TestClient_HTMLPassthrough(t *testing.T) {
	html := "<html><body><h1>Weekly Research</h1></body></html>"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/research/wechat/wechat_20250115.html" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	payload, err := client.GetArticle(context.Background(), "wechat_20250115.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payload.ContentType != "text/html; charset=utf-8" {
		t.Errorf("content type not preserved: %s", payload.ContentType)
	}
	if string(payload.Body) != html {
		t.Errorf("html body altered: %s", payload.Body)
	}
}

func TestClient_StructuredErrorDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail": {
			"error": "Generation failed",
			"trace_id": "a3b5c7d9",
			"stderr": "ModuleNotFoundError: No module named 'apscheduler'",
			"exit_code": 1
		}}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.GenerateArticle(context.Background())

	var backendErr *Error
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if backendErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", backendErr.StatusCode)
	}
	if !backendErr.Detail.IsStructured() {
		t.Fatal("expected structured detail")
	}
	detail := backendErr.Detail.Structured
	if detail.TraceID != "a3b5c7d9" {
		t.Errorf("expected trace_id a3b5c7d9, got %q", detail.TraceID)
	}
	if !strings.Contains(detail.Stderr, "No module named 'apscheduler'") {
		t.Errorf("stderr not preserved: %q", detail.Stderr)
	}
	if detail.ExitCode == nil || *detail.ExitCode != 1 {
		t.Errorf("exit_code not preserved: %v", detail.ExitCode)
	}
	if backendErr.TraceID() != "a3b5c7d9" {
		t.Errorf("TraceID() = %q", backendErr.TraceID())
	}
}

func TestClient_StringErrorDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail": "Article not found"}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.GetArticle(context.Background(), "wechat_19990101.html")

	var backendErr *Error
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if backendErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", backendErr.StatusCode)
	}
	if backendErr.Detail.IsStructured() {
		t.Error("expected plain string detail")
	}
	if backendErr.Detail.Message != "Article not found" {
		t.Errorf("unexpected detail: %q", backendErr.Detail.Message)
	}
}

func TestClient_UnparseableErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream proxy error"))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.Stats(context.Background())

	var backendErr *Error
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if backendErr.StatusCode != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", backendErr.StatusCode)
	}
	if backendErr.Detail.Message != "upstream proxy error" {
		t.Errorf("raw body not kept as detail: %q", backendErr.Detail.Message)
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	// Grab a port that nothing listens on.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to allocate port: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	client := NewClient(Config{BaseURL: "http://" + addr, Timeout: 2 * time.Second})
	_, err = client.ListArticles(context.Background())

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
	if transportErr.Op != OpListArticles {
		t.Errorf("expected op %s, got %s", OpListArticles, transportErr.Op)
	}
	if transportErr.Timeout {
		t.Error("connection refusal should not be flagged as timeout")
	}

	// Health must reflect the failure.
	health := client.Health()
	if health.FailedRequests != 1 {
		t.Errorf("expected 1 failed request, got %d", health.FailedRequests)
	}
}

func TestClient_TimeoutClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	_, err := client.Trending(context.Background())

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
	if !transportErr.Timeout {
		t.Error("expected Timeout to be set for a deadline failure")
	}
}

func TestClient_HealthTransitions(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to allocate port: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	client := NewClient(Config{BaseURL: "http://" + addr, Timeout: time.Second})

	if !client.Health().Healthy {
		t.Error("client should start healthy")
	}

	// Fail up to the threshold.
	for i := 0; i < unhealthyThreshold; i++ {
		_, _ = client.ListArticles(context.Background())
	}
	health := client.Health()
	if health.Healthy {
		t.Errorf("expected unhealthy after %d consecutive failures", unhealthyThreshold)
	}
	if health.ConsecutiveFailures != unhealthyThreshold {
		t.Errorf("expected %d consecutive failures, got %d", unhealthyThreshold, health.ConsecutiveFailures)
	}

	// A single reachable response restores health, even a 500.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail": "still broken internally"}`))
	}))
	defer server.Close()

	recovered := NewClient(Config{BaseURL: server.URL})
	recovered.health = health // carry over the failed state
	_, _ = recovered.ListArticles(context.Background())

	after := recovered.Health()
	if !after.Healthy {
		t.Error("an HTTP response of any status should restore reachability")
	}
	if after.ConsecutiveFailures != 0 {
		t.Errorf("expected failure streak reset, got %d", after.ConsecutiveFailures)
	}
}

func TestClient_QueryEncoding(t *testing.T) {
	var gotQuery string
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	if _, err := client.Quotes(context.Background(), []string{"NVDA", "AMD", "TSM"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "symbols=NVDA%2CAMD%2CTSM" {
		t.Errorf("unexpected quotes query: %s", gotQuery)
	}

	if _, err := client.History(context.Background(), "NVDA", "1mo", "1d"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/api/market/history/NVDA" {
		t.Errorf("unexpected history path: %s", gotPath)
	}
	if gotQuery != "interval=1d&period=1mo" {
		t.Errorf("unexpected history query: %s", gotQuery)
	}

	if _, err := client.TailLog(context.Background(), "generate", 200); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/api/research/logs/generate" || gotQuery != "lines=200" {
		t.Errorf("unexpected log request: %s?%s", gotPath, gotQuery)
	}
}

func TestClient_RequestBodies(t *testing.T) {
	var gotBody map[string]interface{}
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotBody = nil
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"success": true}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	_, err := client.CreateArticle(context.Background(), &CreateArticleRequest{
		Title:   "Fed Policy Notes",
		Content: "# Notes\n\nRates held steady.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/research/wechat/create" {
		t.Errorf("unexpected request: %s %s", gotMethod, gotPath)
	}
	if gotBody["title"] != "Fed Policy Notes" {
		t.Errorf("title not sent: %v", gotBody)
	}
	if _, present := gotBody["url"]; present {
		t.Error("empty url should be omitted")
	}

	_, err = client.SearchTheme(context.Background(), &ThemeSearchRequest{
		Theme:      "quantitative momentum",
		MaxResults: 20,
		Source:     SourceArxiv,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/api/research/search/theme" {
		t.Errorf("unexpected search path: %s", gotPath)
	}
	if gotBody["theme"] != "quantitative momentum" || gotBody["source"] != "arxiv" {
		t.Errorf("search body not sent: %v", gotBody)
	}
}

func TestClient_SetBaseURLRedirectsRequests(t *testing.T) {
	firstHits := int32(0)
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&firstHits, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"articles":[],"count":0}`))
	}))
	defer first.Close()

	secondHits := int32(0)
	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&secondHits, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"articles":[],"count":0}`))
	}))
	defer second.Close()

	client := NewClient(Config{BaseURL: first.URL})
	if _, err := client.ListArticles(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	client.SetBaseURL(second.URL + "/")
	if client.BaseURL() != second.URL {
		t.Errorf("BaseURL = %q, want %q without trailing slash", client.BaseURL(), second.URL)
	}

	if _, err := client.ListArticles(context.Background()); err != nil {
		t.Fatalf("unexpected error after rebase: %v", err)
	}

	if hits := atomic.LoadInt32(&firstHits); hits != 1 {
		t.Errorf("first backend hits = %d, want 1", hits)
	}
	if hits := atomic.LoadInt32(&secondHits); hits != 1 {
		t.Errorf("second backend hits = %d, want 1", hits)
	}
}

func TestClient_DefaultsApplied(t *testing.T) {
	client := NewClient(Config{})
	if client.config.BaseURL != "http://localhost:8000" {
		t.Errorf("unexpected default base URL: %s", client.config.BaseURL)
	}
	if client.config.Timeout != 5*time.Minute {
		t.Errorf("unexpected default timeout: %s", client.config.Timeout)
	}

	trimmed := NewClient(Config{BaseURL: "http://api.internal:8000/"})
	if trimmed.config.BaseURL != "http://api.internal:8000" {
		t.Errorf("trailing slash not trimmed: %s", trimmed.config.BaseURL)
	}
}
