package handlers

import (
	"context"
	"net/http"
	"strings"

	"alpharesearch/gateway/pkg/backend"
	"alpharesearch/gateway/pkg/proxy"
)

// ListArticles handles GET /api/research/wechat/list.
func (p *Proxy) ListArticles(w http.ResponseWriter, r *http.Request) {
	p.relay(w, r, backend.OpListArticles, func(ctx context.Context) (*backend.Payload, error) {
		return p.backend.ListArticles(ctx)
	})
}

// GetArticle handles GET /api/research/wechat/{filename}. The backend
// answers with rendered HTML which is relayed as-is.
func (p *Proxy) GetArticle(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	if err := proxy.ValidateFilename(filename); err != nil {
		p.reject(w, r, backend.OpGetArticle, err)
		return
	}
	p.relay(w, r, backend.OpGetArticle, func(ctx context.Context) (*backend.Payload, error) {
		return p.backend.GetArticle(ctx, filename)
	})
}

// DeleteArticle handles DELETE /api/research/wechat/{filename}.
func (p *Proxy) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	if err := proxy.ValidateFilename(filename); err != nil {
		p.reject(w, r, backend.OpDeleteArticle, err)
		return
	}
	p.relay(w, r, backend.OpDeleteArticle, func(ctx context.Context) (*backend.Payload, error) {
		return p.backend.DeleteArticle(ctx, filename)
	})
}

// CreateArticle handles POST /api/research/wechat/create. Title and
// content are required; the backend assigns the filename.
func (p *Proxy) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var req backend.CreateArticleRequest
	if err := proxy.DecodeJSONBody(r, &req); err != nil {
		p.reject(w, r, backend.OpCreateArticle, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		p.reject(w, r, backend.OpCreateArticle, proxy.NewRequestError("title", "title is required"))
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		p.reject(w, r, backend.OpCreateArticle, proxy.NewRequestError("content", "content is required"))
		return
	}
	p.relay(w, r, backend.OpCreateArticle, func(ctx context.Context) (*backend.Payload, error) {
		return p.backend.CreateArticle(ctx, &req)
	})
}

// GenerateArticle handles POST /api/research/wechat/generate. The
// backend runs its generation workflow synchronously, so this request
// can take minutes; the generous client timeout covers it.
func (p *Proxy) GenerateArticle(w http.ResponseWriter, r *http.Request) {
	p.relay(w, r, backend.OpGenerateArticle, func(ctx context.Context) (*backend.Payload, error) {
		return p.backend.GenerateArticle(ctx)
	})
}
