package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"alpharesearch/gateway/pkg/backend"
	"alpharesearch/gateway/pkg/proxy"
)

const (
	defaultLogLines = 100
	maxLogLines     = 2000
)

// TailLog handles GET /api/research/logs/{type}?lines=200. The log type
// names a backend log stream, e.g. "generate" or "scheduler".
func (p *Proxy) TailLog(w http.ResponseWriter, r *http.Request) {
	logType := strings.TrimSpace(r.PathValue("type"))
	if logType == "" {
		p.reject(w, r, backend.OpTailLog, proxy.NewRequestError("type", "log type is required"))
		return
	}
	if strings.ContainsAny(logType, "/\\.") {
		p.reject(w, r, backend.OpTailLog, proxy.NewRequestError("type", "log type must be a bare stream name"))
		return
	}

	lines := defaultLogLines
	if raw := r.URL.Query().Get("lines"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			p.reject(w, r, backend.OpTailLog, proxy.NewRequestError("lines", "lines must be a positive integer"))
			return
		}
		lines = parsed
	}
	if lines > maxLogLines {
		lines = maxLogLines
	}

	p.relay(w, r, backend.OpTailLog, func(ctx context.Context) (*backend.Payload, error) {
		return p.backend.TailLog(ctx, logType, lines)
	})
}
