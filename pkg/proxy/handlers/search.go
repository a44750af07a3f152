package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"alpharesearch/gateway/pkg/backend"
	"alpharesearch/gateway/pkg/proxy"
)

const (
	defaultSearchResults = 10
	maxSearchResults     = 50
)

// SearchTheme handles POST /api/research/search/theme. The theme is
// required; max_results defaults to 10 and is capped, and the source
// selector must be one of the known scrapers.
func (p *Proxy) SearchTheme(w http.ResponseWriter, r *http.Request) {
	var req backend.ThemeSearchRequest
	if err := proxy.DecodeJSONBody(r, &req); err != nil {
		p.reject(w, r, backend.OpSearchTheme, err)
		return
	}

	req.Theme = strings.TrimSpace(req.Theme)
	if req.Theme == "" {
		p.reject(w, r, backend.OpSearchTheme, proxy.NewRequestError("theme", "theme is required"))
		return
	}

	if req.MaxResults < 0 {
		p.reject(w, r, backend.OpSearchTheme, proxy.NewRequestError("max_results", "max_results must not be negative"))
		return
	}
	if req.MaxResults == 0 {
		req.MaxResults = defaultSearchResults
	}
	if req.MaxResults > maxSearchResults {
		req.MaxResults = maxSearchResults
	}

	if req.Source == "" {
		req.Source = backend.SourceAll
	}
	switch req.Source {
	case backend.SourceAll, backend.SourceArxiv, backend.SourceSemanticScholar:
	default:
		p.reject(w, r, backend.OpSearchTheme, proxy.NewRequestError("source",
			fmt.Sprintf("source must be one of %q, %q or %q",
				backend.SourceAll, backend.SourceArxiv, backend.SourceSemanticScholar)))
		return
	}

	p.relay(w, r, backend.OpSearchTheme, func(ctx context.Context) (*backend.Payload, error) {
		return p.backend.SearchTheme(ctx, &req)
	})
}
