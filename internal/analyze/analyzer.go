// Package analyze implements the website analysis features: structure,
// SEO, UX, competitor intelligence, improvement plans, and the combined
// full-analysis run. Every entry point returns a populated result, never an
// error; degraded analyses carry their failure inside the result.
package analyze

import (
	"context"

	"github.com/sells-group/sitecoach/internal/ai"
	"github.com/sells-group/sitecoach/internal/config"
	"github.com/sells-group/sitecoach/internal/fetch"
)

// Fetcher retrieves HTML for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) fetch.Result
}

// Invoker issues model calls. Satisfied by *ai.Invoker.
type Invoker interface {
	Invoke(ctx context.Context, prompt string, opts ai.CallOptions) string
	SafeJSON(ctx context.Context, prompt string, opts ai.CallOptions) map[string]any
	DefaultModel() string
	CheapModel() string
}

// Analyzer wires the fetcher and model invoker into the analysis features.
type Analyzer struct {
	fetcher Fetcher
	invoker Invoker
	cache   *ai.Cache
	cfg     config.AnalyzeConfig
}

// New creates an Analyzer. The cache handle is used only for the explicit
// clear at the start of a full-analysis run.
func New(fetcher Fetcher, invoker Invoker, cache *ai.Cache, cfg config.AnalyzeConfig) *Analyzer {
	if cfg.HTMLLimit <= 0 {
		cfg.HTMLLimit = 8000
	}
	if cfg.MaxCompetitors <= 0 {
		cfg.MaxCompetitors = 2
	}
	return &Analyzer{fetcher: fetcher, invoker: invoker, cache: cache, cfg: cfg}
}

// Fetch exposes the underlying fetcher for handlers that need the raw HTML.
func (a *Analyzer) Fetch(ctx context.Context, url string) fetch.Result {
	return a.fetcher.Fetch(ctx, url)
}
