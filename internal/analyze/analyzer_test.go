package analyze

import (
	"context"

	"github.com/sells-group/sitecoach/internal/ai"
	"github.com/sells-group/sitecoach/internal/config"
	"github.com/sells-group/sitecoach/internal/fetch"
)

type stubFetcher struct {
	pages map[string]fetch.Result
}

func (f *stubFetcher) Fetch(_ context.Context, url string) fetch.Result {
	if r, ok := f.pages[url]; ok {
		return r
	}
	return fetch.Result{Success: false, Error: "connection refused"}
}

// stubInvoker returns canned responses keyed by cache key. Keys with no
// canned response behave like an exhausted model call.
type stubInvoker struct {
	textOut string
	jsonOut map[string]map[string]any
	calls   []ai.CallOptions
}

func (s *stubInvoker) Invoke(_ context.Context, _ string, opts ai.CallOptions) string {
	s.calls = append(s.calls, opts)
	return s.textOut
}

func (s *stubInvoker) SafeJSON(_ context.Context, _ string, opts ai.CallOptions) map[string]any {
	s.calls = append(s.calls, opts)
	if out, ok := s.jsonOut[opts.CacheKey]; ok {
		return out
	}
	return map[string]any{"error": "AI failed after retries", "raw": ""}
}

func (s *stubInvoker) DefaultModel() string { return "model-default" }
func (s *stubInvoker) CheapModel() string   { return "model-cheap" }

func newTestAnalyzer(f Fetcher, inv Invoker) *Analyzer {
	return New(f, inv, ai.NewCache(), config.AnalyzeConfig{})
}
