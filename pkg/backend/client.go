package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config contains configuration for the backend client.
type Config struct {
	// BaseURL is the backend's base address, e.g. "http://localhost:8000".
	// Resolved once from configuration; no trailing slash.
	BaseURL string

	// Timeout is the per-request ceiling. The default is generous because
	// the article-generation workflow runs synchronously on the backend
	// and can take minutes.
	// Default: 5m
	Timeout time.Duration

	// MaxIdleConns is the connection pool size.
	// Default: 10
	MaxIdleConns int

	// MaxIdleConnsPerHost is the per-host connection pool size.
	// Default: 10
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long idle connections are kept.
	// Default: 90s
	IdleConnTimeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:             "http://localhost:8000",
		Timeout:             5 * time.Minute,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
}

// Client is the HTTP client for the Alpha Research backend API.
// It is safe for concurrent use.
type Client struct {
	config   Config
	configMu sync.RWMutex
	client   *http.Client

	health   Health
	healthMu sync.RWMutex
}

// NewClient creates a backend client with connection pooling.
func NewClient(config Config) *Client {
	defaults := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = defaults.MaxIdleConns
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = defaults.MaxIdleConnsPerHost
	}
	if config.IdleConnTimeout == 0 {
		config.IdleConnTimeout = defaults.IdleConnTimeout
	}

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		health: Health{
			Healthy:   true, // Start optimistic
			LastCheck: time.Now(),
		},
	}
}

// BaseURL returns the resolved backend base address.
func (c *Client) BaseURL() string {
	c.configMu.RLock()
	defer c.configMu.RUnlock()
	return c.config.BaseURL
}

// SetBaseURL swaps the backend base address. In-flight requests keep the
// address they started with; health tracking carries over unchanged.
func (c *Client) SetBaseURL(raw string) {
	c.configMu.Lock()
	c.config.BaseURL = strings.TrimRight(raw, "/")
	c.configMu.Unlock()
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// do performs a single backend request. There is no retry: the first
// failure is surfaced immediately as a typed error.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body interface{}) (*Payload, error) {
	target := c.BaseURL() + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s request body: %w", op, err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.DebugContext(ctx, "sending backend request",
		"operation", op,
		"method", method,
		"url", target,
	)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.recordResult(false, err)
		return nil, &TransportError{
			Op:      op,
			Timeout: ctx.Err() == context.DeadlineExceeded || isTimeout(err),
			Elapsed: time.Since(start),
			Cause:   err,
		}
	}
	defer resp.Body.Close()

	// Any response at all means the backend is reachable.
	c.recordResult(true, nil)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ParseError{Op: op, Cause: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &Payload{
			StatusCode:  resp.StatusCode,
			ContentType: resp.Header.Get("Content-Type"),
			Body:        raw,
		}, nil
	}

	return nil, parseErrorResponse(op, resp.StatusCode, raw)
}

// parseErrorResponse builds an *Error from a non-2xx backend response.
// The backend wraps error details as {"detail": ...}; anything else is kept
// verbatim as a plain-string detail.
func parseErrorResponse(op string, status int, raw []byte) *Error {
	var envelope struct {
		Detail Detail `json:"detail"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil &&
		(envelope.Detail.Structured != nil || envelope.Detail.Message != "") {
		return &Error{Op: op, StatusCode: status, Detail: envelope.Detail}
	}

	return &Error{
		Op:         op,
		StatusCode: status,
		Detail:     Detail{Message: strings.TrimSpace(string(raw))},
	}
}

// isTimeout reports whether err is a transport-level timeout.
func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	for e := err; e != nil; {
		if t, ok := e.(timeout); ok && t.Timeout() {
			return true
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	return false
}

// ListArticles fetches the article listing, latest first.
func (c *Client) ListArticles(ctx context.Context) (*Payload, error) {
	return c.do(ctx, OpListArticles, http.MethodGet, "/api/research/wechat/list", nil, nil)
}

// GetArticle fetches one article body. The backend answers with rendered
// HTML; the payload's content type is relayed as-is.
func (c *Client) GetArticle(ctx context.Context, filename string) (*Payload, error) {
	return c.do(ctx, OpGetArticle, http.MethodGet, "/api/research/wechat/"+url.PathEscape(filename), nil, nil)
}

// DeleteArticle removes an article and its markdown source.
func (c *Client) DeleteArticle(ctx context.Context, filename string) (*Payload, error) {
	return c.do(ctx, OpDeleteArticle, http.MethodDelete, "/api/research/wechat/"+url.PathEscape(filename), nil, nil)
}

// CreateArticle creates an article from user-supplied content.
func (c *Client) CreateArticle(ctx context.Context, req *CreateArticleRequest) (*Payload, error) {
	return c.do(ctx, OpCreateArticle, http.MethodPost, "/api/research/wechat/create", nil, req)
}

// GenerateArticle triggers the backend's article-generation workflow.
// The workflow is synchronous on the backend and may take minutes; the
// gateway performs a single attempt and relays whatever comes back.
func (c *Client) GenerateArticle(ctx context.Context) (*Payload, error) {
	return c.do(ctx, OpGenerateArticle, http.MethodPost, "/api/research/wechat/generate", nil, nil)
}

// SearchTheme runs a research-theme paper search.
func (c *Client) SearchTheme(ctx context.Context, req *ThemeSearchRequest) (*Payload, error) {
	return c.do(ctx, OpSearchTheme, http.MethodPost, "/api/research/search/theme", nil, req)
}

// Quotes fetches real-time quotes for the given ticker symbols.
func (c *Client) Quotes(ctx context.Context, symbols []string) (*Payload, error) {
	query := url.Values{"symbols": []string{strings.Join(symbols, ",")}}
	return c.do(ctx, OpQuotes, http.MethodGet, "/api/market/quotes", query, nil)
}

// Quote fetches a real-time quote for a single ticker symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (*Payload, error) {
	return c.do(ctx, OpQuote, http.MethodGet, "/api/market/quote/"+url.PathEscape(symbol), nil, nil)
}

// History fetches historical price data for a symbol.
func (c *Client) History(ctx context.Context, symbol, period, interval string) (*Payload, error) {
	query := url.Values{}
	if period != "" {
		query.Set("period", period)
	}
	if interval != "" {
		query.Set("interval", interval)
	}
	return c.do(ctx, OpHistory, http.MethodGet, "/api/market/history/"+url.PathEscape(symbol), query, nil)
}

// Trending fetches the backend's trending stock list.
func (c *Client) Trending(ctx context.Context) (*Payload, error) {
	return c.do(ctx, OpTrending, http.MethodGet, "/api/market/trending", nil, nil)
}

// ListPapers fetches research papers from the research-tracker database.
func (c *Client) ListPapers(ctx context.Context, opts ListPapersOptions) (*Payload, error) {
	query := url.Values{}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.ProcessedOnly {
		query.Set("processed_only", "true")
	}
	return c.do(ctx, OpListPapers, http.MethodGet, "/api/research/papers", query, nil)
}

// GetPaper fetches a single research paper by ID.
func (c *Client) GetPaper(ctx context.Context, id int) (*Payload, error) {
	return c.do(ctx, OpGetPaper, http.MethodGet, "/api/research/papers/"+strconv.Itoa(id), nil, nil)
}

// Stats fetches summary statistics for the research database.
func (c *Client) Stats(ctx context.Context) (*Payload, error) {
	return c.do(ctx, OpStats, http.MethodGet, "/api/research/stats", nil, nil)
}

// TailLog fetches the tail of a backend log stream.
func (c *Client) TailLog(ctx context.Context, logType string, lines int) (*Payload, error) {
	query := url.Values{}
	if lines > 0 {
		query.Set("lines", strconv.Itoa(lines))
	}
	return c.do(ctx, OpTailLog, http.MethodGet, "/api/research/logs/"+url.PathEscape(logType), query, nil)
}
