package handlers

import (
	"context"
	"net/http"
	"strconv"

	"alpharesearch/gateway/pkg/backend"
	"alpharesearch/gateway/pkg/proxy"
)

// ListPapers handles GET /api/research/papers with optional limit,
// offset and processed_only query parameters.
func (p *Proxy) ListPapers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var opts backend.ListPapersOptions

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			p.reject(w, r, backend.OpListPapers, proxy.NewRequestError("limit", "limit must be a non-negative integer"))
			return
		}
		opts.Limit = limit
	}
	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			p.reject(w, r, backend.OpListPapers, proxy.NewRequestError("offset", "offset must be a non-negative integer"))
			return
		}
		opts.Offset = offset
	}
	if raw := query.Get("processed_only"); raw != "" {
		processed, err := strconv.ParseBool(raw)
		if err != nil {
			p.reject(w, r, backend.OpListPapers, proxy.NewRequestError("processed_only", "processed_only must be a boolean"))
			return
		}
		opts.ProcessedOnly = processed
	}

	p.relay(w, r, backend.OpListPapers, func(ctx context.Context) (*backend.Payload, error) {
		return p.backend.ListPapers(ctx, opts)
	})
}

// GetPaper handles GET /api/research/papers/{id}.
func (p *Proxy) GetPaper(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		p.reject(w, r, backend.OpGetPaper, proxy.NewRequestError("id", "id must be a positive integer"))
		return
	}
	p.relay(w, r, backend.OpGetPaper, func(ctx context.Context) (*backend.Payload, error) {
		return p.backend.GetPaper(ctx, id)
	})
}

// Stats handles GET /api/research/stats.
func (p *Proxy) Stats(w http.ResponseWriter, r *http.Request) {
	p.relay(w, r, backend.OpStats, func(ctx context.Context) (*backend.Payload, error) {
		return p.backend.Stats(ctx)
	})
}
