package handlers

import (
	"context"
	"net/http"
	"strings"

	"alpharesearch/gateway/pkg/backend"
	"alpharesearch/gateway/pkg/proxy"
)

// Quotes handles GET /api/market/quotes?symbols=NVDA,AMD. The symbols
// parameter is required; a missing one is rejected before any backend
// call.
func (p *Proxy) Quotes(w http.ResponseWriter, r *http.Request) {
	symbols, err := proxy.ParseSymbols(r.URL.Query().Get("symbols"))
	if err != nil {
		p.reject(w, r, backend.OpQuotes, err)
		return
	}
	p.relay(w, r, backend.OpQuotes, func(ctx context.Context) (*backend.Payload, error) {
		return p.backend.Quotes(ctx, symbols)
	})
}

// Quote handles GET /api/market/quote/{symbol}.
func (p *Proxy) Quote(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(r.PathValue("symbol")))
	if symbol == "" {
		p.reject(w, r, backend.OpQuote, proxy.NewRequestError("symbol", "symbol is required"))
		return
	}
	p.relay(w, r, backend.OpQuote, func(ctx context.Context) (*backend.Payload, error) {
		return p.backend.Quote(ctx, symbol)
	})
}

// History handles GET /api/market/history/{symbol}?period=1mo&interval=1d.
// Period and interval are passed through; the backend validates the
// exact values its data source accepts.
func (p *Proxy) History(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(r.PathValue("symbol")))
	if symbol == "" {
		p.reject(w, r, backend.OpHistory, proxy.NewRequestError("symbol", "symbol is required"))
		return
	}
	period := r.URL.Query().Get("period")
	interval := r.URL.Query().Get("interval")
	p.relay(w, r, backend.OpHistory, func(ctx context.Context) (*backend.Payload, error) {
		return p.backend.History(ctx, symbol, period, interval)
	})
}

// Trending handles GET /api/market/trending.
func (p *Proxy) Trending(w http.ResponseWriter, r *http.Request) {
	p.relay(w, r, backend.OpTrending, func(ctx context.Context) (*backend.Payload, error) {
		return p.backend.Trending(ctx)
	})
}
