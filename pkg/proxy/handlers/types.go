package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"alpharesearch/gateway/pkg/audit"
	"alpharesearch/gateway/pkg/backend"
	"alpharesearch/gateway/pkg/proxy"
	"alpharesearch/gateway/pkg/proxy/middleware"
)

// Backend is the set of research-backend operations the handlers proxy.
// *backend.Client implements it.
type Backend interface {
	ListArticles(ctx context.Context) (*backend.Payload, error)
	GetArticle(ctx context.Context, filename string) (*backend.Payload, error)
	DeleteArticle(ctx context.Context, filename string) (*backend.Payload, error)
	CreateArticle(ctx context.Context, req *backend.CreateArticleRequest) (*backend.Payload, error)
	GenerateArticle(ctx context.Context) (*backend.Payload, error)
	SearchTheme(ctx context.Context, req *backend.ThemeSearchRequest) (*backend.Payload, error)
	Quotes(ctx context.Context, symbols []string) (*backend.Payload, error)
	Quote(ctx context.Context, symbol string) (*backend.Payload, error)
	History(ctx context.Context, symbol, period, interval string) (*backend.Payload, error)
	Trending(ctx context.Context) (*backend.Payload, error)
	ListPapers(ctx context.Context, opts backend.ListPapersOptions) (*backend.Payload, error)
	GetPaper(ctx context.Context, id int) (*backend.Payload, error)
	Stats(ctx context.Context) (*backend.Payload, error)
	TailLog(ctx context.Context, logType string, lines int) (*backend.Payload, error)
}

// Auditor accepts audit trail records. Implementations must not block.
type Auditor interface {
	Record(ctx context.Context, record audit.Record)
}

// BackendObserver receives per-operation latency observations.
type BackendObserver interface {
	ObserveBackendRequest(operation, outcome string, elapsed time.Duration)
}

// Proxy holds the handler dependencies. Auditor and observer are
// optional; nil disables them.
type Proxy struct {
	backend  Backend
	auditor  Auditor
	observer BackendObserver
}

// Option configures a Proxy.
type Option func(*Proxy)

// WithAuditor attaches an audit trail recorder.
func WithAuditor(a Auditor) Option {
	return func(p *Proxy) { p.auditor = a }
}

// WithObserver attaches a metrics observer for backend operations.
func WithObserver(o BackendObserver) Option {
	return func(p *Proxy) { p.observer = o }
}

// NewProxy creates the handler set backed by the given client.
func NewProxy(b Backend, opts ...Option) *Proxy {
	p := &Proxy{backend: b}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// relay runs one backend call and writes the outcome. This is the single
// success and failure path shared by every handler.
func (p *Proxy) relay(w http.ResponseWriter, r *http.Request, op string, call func(ctx context.Context) (*backend.Payload, error)) {
	start := time.Now()
	payload, err := call(r.Context())
	elapsed := time.Since(start)

	if err != nil {
		outcome := classifyOutcome(err)
		envelope := proxy.HandleError(err)

		slog.WarnContext(r.Context(), "backend operation failed",
			"operation", op,
			"outcome", outcome,
			"status", envelope.HTTPStatusCode(),
			"latency_ms", elapsed.Milliseconds(),
			"error", err,
		)

		p.observe(op, outcome, elapsed)
		p.record(r, op, envelope.HTTPStatusCode(), elapsed, outcome, envelope.Error, traceIDFrom(err))
		proxy.WriteError(w, envelope)
		return
	}

	p.observe(op, audit.OutcomeOK, elapsed)
	p.record(r, op, http.StatusOK, elapsed, audit.OutcomeOK, "", "")
	proxy.WriteRelay(w, payload)
}

// reject writes a validation failure without touching the backend.
func (p *Proxy) reject(w http.ResponseWriter, r *http.Request, op string, err error) {
	envelope := proxy.HandleError(err)
	p.record(r, op, envelope.HTTPStatusCode(), 0, audit.OutcomeBadInput, envelope.Error, "")
	proxy.WriteError(w, envelope)
}

func (p *Proxy) observe(op, outcome string, elapsed time.Duration) {
	if p.observer != nil {
		p.observer.ObserveBackendRequest(op, outcome, elapsed)
	}
}

func (p *Proxy) record(r *http.Request, op string, status int, elapsed time.Duration, outcome, errMsg, traceID string) {
	if p.auditor == nil {
		return
	}
	p.auditor.Record(r.Context(), audit.Record{
		RequestID:    middleware.GetRequestID(r.Context()),
		TraceID:      traceID,
		Operation:    op,
		Method:       r.Method,
		Path:         r.URL.Path,
		Status:       status,
		LatencyMS:    elapsed.Milliseconds(),
		Outcome:      outcome,
		ErrorMessage: errMsg,
		RemoteAddr:   r.RemoteAddr,
	})
}

func classifyOutcome(err error) string {
	var requestErr *proxy.RequestError
	if errors.As(err, &requestErr) {
		return audit.OutcomeBadInput
	}
	var backendErr *backend.Error
	if errors.As(err, &backendErr) {
		return audit.OutcomeBackend
	}
	var transportErr *backend.TransportError
	var parseErr *backend.ParseError
	if errors.As(err, &transportErr) || errors.As(err, &parseErr) {
		return audit.OutcomeTransport
	}
	return audit.OutcomeInternal
}

func traceIDFrom(err error) string {
	var backendErr *backend.Error
	if errors.As(err, &backendErr) {
		return backendErr.TraceID()
	}
	return ""
}
