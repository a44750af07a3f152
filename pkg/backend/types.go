package backend

import (
	"encoding/json"
	"fmt"
)

// Operation names used for logging, metrics, and audit records.
// One constant per backend capability the gateway proxies.
const (
	OpListArticles    = "list_articles"
	OpGetArticle      = "get_article"
	OpDeleteArticle   = "delete_article"
	OpCreateArticle   = "create_article"
	OpGenerateArticle = "generate_article"
	OpSearchTheme     = "search_theme"
	OpQuotes          = "quotes"
	OpQuote           = "quote"
	OpHistory         = "history"
	OpTrending        = "trending"
	OpListPapers      = "list_papers"
	OpGetPaper        = "get_paper"
	OpStats           = "stats"
	OpTailLog         = "tail_log"
)

// Payload is a successful (2xx) backend response, kept opaque so the gateway
// can relay it without re-encoding. Body is the raw response body.
type Payload struct {
	// StatusCode is the backend's HTTP status code (always 2xx).
	StatusCode int

	// ContentType is the backend's Content-Type header value.
	// Empty if the backend did not set one.
	ContentType string

	// Body is the raw response body.
	Body []byte
}

// Decode unmarshals the payload body as JSON into v.
// It is primarily useful in tests and diagnostics; the proxy handlers relay
// the raw body instead of decoding it.
func (p *Payload) Decode(v interface{}) error {
	if err := json.Unmarshal(p.Body, v); err != nil {
		return fmt.Errorf("failed to decode backend payload: %w", err)
	}
	return nil
}

// ArticleRef identifies one generated research article.
// The filename is unique and acts as the article's ID.
type ArticleRef struct {
	// Filename is the article file name, e.g. "wechat_20251212.html".
	Filename string `json:"filename"`

	// Date is an 8-digit YYYYMMDD string extracted from the filename.
	Date string `json:"date"`

	// Title is the article title, e.g. "AI Research - 2025-12-12".
	Title string `json:"title"`
}

// ArticleList is the backend's article listing, latest first.
type ArticleList struct {
	Articles []ArticleRef `json:"articles"`
}

// CreateArticleRequest is the body for creating an article by hand.
type CreateArticleRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
}

// CreateArticleResult acknowledges a created article.
type CreateArticleResult struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	Message  string `json:"message"`
}

// DeleteArticleResult acknowledges a deleted article. Deleted lists the
// actual files removed (the HTML body and its markdown source).
type DeleteArticleResult struct {
	Success bool     `json:"success"`
	Deleted []string `json:"deleted"`
}

// GenerateResult acknowledges a triggered article-generation workflow.
// The workflow runs server-side and may take minutes; TraceID correlates
// the run with the backend's logs.
type GenerateResult struct {
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// Theme search sources accepted by the backend.
const (
	SourceAll             = "all"
	SourceArxiv           = "arxiv"
	SourceSemanticScholar = "semantic_scholar"
)

// ThemeSearchRequest is the body for a research-theme paper search.
type ThemeSearchRequest struct {
	Theme      string `json:"theme"`
	MaxResults int    `json:"max_results"`
	Source     string `json:"source"`
}

// SearchPaper is one paper returned by a theme search.
type SearchPaper struct {
	Title    string `json:"title"`
	Authors  string `json:"authors"`
	Year     int    `json:"year,omitempty"`
	URL      string `json:"url,omitempty"`
	Abstract string `json:"abstract,omitempty"`
	Source   string `json:"source,omitempty"`
}

// ThemeSearchResult is the backend's theme search response.
type ThemeSearchResult struct {
	Papers []SearchPaper `json:"papers"`
}

// Quote is a real-time quote for a single ticker symbol.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        int64   `json:"volume,omitempty"`
	MarketCap     int64   `json:"marketCap,omitempty"`
	UpdatedAt     string  `json:"updated_at,omitempty"`
}

// Bar is one row of historical price data.
type Bar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Paper is a research paper from the research-tracker database.
type Paper struct {
	ID                 int    `json:"id"`
	Title              string `json:"title"`
	Authors            string `json:"authors"`
	Year               *int   `json:"year"`
	Venue              string `json:"venue,omitempty"`
	Abstract           string `json:"abstract,omitempty"`
	URL                string `json:"url,omitempty"`
	CitationCount      int    `json:"citation_count"`
	SummaryZH          string `json:"summary_zh,omitempty"`
	InvestmentInsights string `json:"investment_insights,omitempty"`
	FetchedAt          string `json:"fetched_at"`
	Processed          bool   `json:"processed"`
}

// ResearchStats summarizes the research-tracker database.
type ResearchStats struct {
	TotalPapers     int     `json:"total_papers"`
	ProcessedPapers int     `json:"processed_papers"`
	AvgCitations    float64 `json:"avg_citations"`
	LatestFetch     string  `json:"latest_fetch,omitempty"`
}

// ListPapersOptions are the paging options for the papers listing.
type ListPapersOptions struct {
	Limit         int
	Offset        int
	ProcessedOnly bool
}
