package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sitecoach/internal/ai"
	"github.com/sells-group/sitecoach/internal/analyze"
	"github.com/sells-group/sitecoach/internal/builder"
	"github.com/sells-group/sitecoach/internal/fetch"
	"github.com/sells-group/sitecoach/pkg/anthropic"
)

// env bundles the wired feature layers shared by all commands.
type env struct {
	cache    *ai.Cache
	analyzer *analyze.Analyzer
	builder  *builder.Builder
	tester   *analyze.AutoTester
}

func newEnv() *env {
	cache := ai.NewCache()
	invoker := ai.NewInvoker(anthropic.NewClient(cfg.Anthropic.Key), cache, cfg.Anthropic)
	fetcher := fetch.New(cfg.Fetch)

	return &env{
		cache:    cache,
		analyzer: analyze.New(fetcher, invoker, cache, cfg.Analyze),
		builder:  builder.New(invoker),
		tester:   analyze.NewAutoTester(),
	}
}

// fetchHTML fetches a URL for the CLI commands that need raw HTML up front.
func (e *env) fetchHTML(ctx context.Context, url string) (string, error) {
	res := e.analyzer.Fetch(ctx, url)
	if !res.Success {
		return "", eris.Errorf("fetch %s: %s", url, res.Error)
	}
	return res.HTML, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
