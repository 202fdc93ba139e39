package analyze

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sitecoach/internal/ai"
	"github.com/sells-group/sitecoach/internal/config"
	"github.com/sells-group/sitecoach/internal/fetch"
)

func TestRunFull_FetchFailure(t *testing.T) {
	a := newTestAnalyzer(&stubFetcher{}, &stubInvoker{})

	_, errMsg, ok := a.RunFull(context.Background(), "https://down.example.com")

	assert.False(t, ok)
	assert.Equal(t, "connection refused", errMsg)
}

func TestRunFull_MergesAllSections(t *testing.T) {
	mainHTML := `<html><body><h1>Hi</h1><p>content</p></body></html>`
	f := &stubFetcher{pages: map[string]fetch.Result{
		"https://example.com": {Success: true, HTML: mainHTML},
		"https://rival-a.com": {Success: true, HTML: "<html><body>rival</body></html>"},
	}}
	inv := &stubInvoker{
		textOut: "EXPLANATION: matters\nPROMPT: fix it",
		jsonOut: map[string]map[string]any{
			"ux-detailed-https://example.com": {
				"summary": "ok",
				"issues":  []any{map[string]any{"title": "Tiny text", "description": "Hard to read"}},
			},
			"seo-detailed-https://example.com": {
				"summary": "ok",
				"score":   float64(80),
				"issues":  []any{map[string]any{"title": "Weak title", "description": "No keywords"}},
			},
			"competitors-discover-https://example.com": {
				"category":    "portfolio",
				"competitors": []any{"https://rival-a.com"},
			},
			"comp-strategic-https://example.com": {
				"summary": "ok",
				"feature_gaps": []any{
					map[string]any{"title": "No contact form", "description": "Visitors cannot reach you", "priority": "high"},
				},
			},
		},
	}

	cache := ai.NewCache()
	cache.Put("stale-key", "stale")
	a := New(f, inv, cache, config.AnalyzeConfig{})

	report, errMsg, ok := a.RunFull(context.Background(), "https://example.com")

	require.True(t, ok, errMsg)
	assert.True(t, report.Success)
	assert.Equal(t, "https://example.com", report.URL)

	// cache is cleared at the start of every full run
	assert.Zero(t, cache.Stats().Count)

	// missing title and meta description produce basic tasks
	assert.NotEmpty(t, report.Basic.Tasks)
	require.NotNil(t, report.UX)
	require.NotNil(t, report.SEO)
	assert.Equal(t, 80, report.SEO.Score)
	require.NotNil(t, report.Competitor)
	assert.Equal(t, []string{"https://rival-a.com"}, report.Competitor.AutoDetected)

	bySource := map[string]int{}
	for _, task := range report.AllTasks {
		bySource[task.Source]++
		assert.NotEmpty(t, task.Category)
	}
	assert.Equal(t, len(report.Basic.Tasks), bySource["basic"])
	assert.Equal(t, 1, bySource["ux"])
	assert.Equal(t, 1, bySource["seo"])
	assert.Equal(t, 1, bySource["competitor"])

	assert.Equal(t, len(report.AllTasks), report.Stats.TotalTasks)
	assert.Equal(t, bySource, report.Stats.BySource)
	assert.Equal(t, 80, report.Stats.SEOScore)
}

func TestRunFull_CompetitorSectionOmittedWhenNoneFetched(t *testing.T) {
	f := &stubFetcher{pages: map[string]fetch.Result{
		"https://example.com": {Success: true, HTML: "<html><body><p>x</p></body></html>"},
	}}
	inv := &stubInvoker{
		textOut: "EXPLANATION: a\nPROMPT: b",
		jsonOut: map[string]map[string]any{
			"competitors-discover-https://example.com": {
				"competitors": []any{"https://unreachable.example.com"},
			},
		},
	}
	a := New(f, inv, ai.NewCache(), config.AnalyzeConfig{})

	report, _, ok := a.RunFull(context.Background(), "https://example.com")

	require.True(t, ok)
	assert.Nil(t, report.Competitor)
	assert.Zero(t, report.Stats.BySource["competitor"])
}
