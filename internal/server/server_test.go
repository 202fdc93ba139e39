package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sitecoach/internal/ai"
	"github.com/sells-group/sitecoach/internal/analyze"
	"github.com/sells-group/sitecoach/internal/builder"
	"github.com/sells-group/sitecoach/internal/config"
	"github.com/sells-group/sitecoach/internal/fetch"
	"github.com/sells-group/sitecoach/internal/model"
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
}

func (s *stubInvoker) Invoke(_ context.Context, _ string, _ ai.CallOptions) string {
	return s.textOut
}

func (s *stubInvoker) SafeJSON(_ context.Context, _ string, opts ai.CallOptions) map[string]any {
	if out, ok := s.jsonOut[opts.CacheKey]; ok {
		return out
	}
	return map[string]any{"error": "AI failed after retries", "raw": ""}
}

func (s *stubInvoker) DefaultModel() string { return "model-default" }
func (s *stubInvoker) CheapModel() string   { return "model-cheap" }

const testPage = `<html lang="en"><head>
<title>Go Bakery in Springfield | Fresh Bread</title>
<meta name="description" content="Order fresh sourdough and pastries baked daily in Springfield.">
<meta name="viewport" content="width=device-width, initial-scale=1">
</head><body>
<h1>Fresh Bread Daily</h1>
<p>We bake sourdough every morning.</p>
<a href="/menu">Menu</a>
</body></html>`

func newTestRouter(f analyze.Fetcher, inv *stubInvoker) http.Handler {
	cache := ai.NewCache()
	analyzer := analyze.New(f, inv, cache, config.AnalyzeConfig{})
	srv := New(analyzer, builder.New(inv), analyze.NewAutoTester(), cache)
	return srv.Router()
}

func postJSON(t *testing.T, router http.Handler, path string, body any) (int, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec.Code, out
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&stubFetcher{}, &stubInvoker{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDEchoed(t *testing.T) {
	router := newTestRouter(&stubFetcher{}, &stubInvoker{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}

func TestAnalyse_FetchFailure(t *testing.T) {
	router := newTestRouter(&stubFetcher{}, &stubInvoker{})

	code, out := postJSON(t, router, "/analyse", map[string]string{"url": "https://down.example"})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "connection refused", out["error"])
	assert.Nil(t, out["structure"])
	assert.Empty(t, out["tasks"])
}

func TestAnalyse_Success(t *testing.T) {
	f := &stubFetcher{pages: map[string]fetch.Result{
		"https://ok.example": {Success: true, StatusCode: 200, HTML: testPage},
	}}
	router := newTestRouter(f, &stubInvoker{})

	code, out := postJSON(t, router, "/analyse", map[string]string{"url": "https://ok.example"})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])
	structure := out["structure"].(map[string]any)
	assert.Equal(t, "Go Bakery in Springfield | Fresh Bread", structure["title"])
}

func TestAnalyse_MissingURL(t *testing.T) {
	router := newTestRouter(&stubFetcher{}, &stubInvoker{})

	code, out := postJSON(t, router, "/analyse", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "url is required", out["error"])
}

func TestAnalyse_MalformedBody(t *testing.T) {
	router := newTestRouter(&stubFetcher{}, &stubInvoker{})

	req := httptest.NewRequest(http.MethodPost, "/analyse", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUXRules_Success(t *testing.T) {
	messy := `<html><head></head><body style="font-size: 10px"><img src="a.png"></body></html>`
	f := &stubFetcher{pages: map[string]fetch.Result{
		"https://messy.example": {Success: true, HTML: messy},
	}}
	router := newTestRouter(f, &stubInvoker{})

	code, out := postJSON(t, router, "/ux-check", map[string]string{"url": "https://messy.example"})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])
	summary := out["summary"].(map[string]any)
	assert.Greater(t, summary["total_issues"].(float64), float64(0))
}

func TestUXRules_FetchFailure(t *testing.T) {
	router := newTestRouter(&stubFetcher{}, &stubInvoker{})

	code, out := postJSON(t, router, "/ux", map[string]string{"url": "https://down.example"})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, out["success"])
	assert.Nil(t, out["issues"])
	assert.Nil(t, out["summary"])
}

func TestSEO_Success(t *testing.T) {
	url := "https://ok.example"
	f := &stubFetcher{pages: map[string]fetch.Result{
		url: {Success: true, HTML: testPage},
	}}
	inv := &stubInvoker{jsonOut: map[string]map[string]any{
		"seo-detailed-" + url: {
			"summary": "Solid local-business page",
			"score":   float64(81),
			"issues":  []any{},
		},
	}}
	router := newTestRouter(f, inv)

	code, out := postJSON(t, router, "/seo", map[string]string{"url": url})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])
	seo := out["seo_data"].(map[string]any)
	assert.Equal(t, "Solid local-business page", seo["summary"])
	assert.Equal(t, float64(81), seo["score"])
}

func TestSEO_FetchFailure(t *testing.T) {
	router := newTestRouter(&stubFetcher{}, &stubInvoker{})

	code, out := postJSON(t, router, "/seo-ai", map[string]string{"url": "https://down.example"})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, out["success"])
	assert.Nil(t, out["seo_data"])
}

func TestUXAI_DegradesToFallback(t *testing.T) {
	url := "https://ok.example"
	f := &stubFetcher{pages: map[string]fetch.Result{
		url: {Success: true, HTML: testPage},
	}}
	router := newTestRouter(f, &stubInvoker{})

	code, out := postJSON(t, router, "/ux-ai", map[string]string{"url": url})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])
	assert.NotNil(t, out["ux_data"])
}

func TestCompetitors_Success(t *testing.T) {
	url := "https://ok.example"
	f := &stubFetcher{pages: map[string]fetch.Result{
		url:                    {Success: true, HTML: testPage},
		"https://rival.example": {Success: true, HTML: "<html><body>Rival</body></html>"},
	}}
	inv := &stubInvoker{
		jsonOut: map[string]map[string]any{
			"competitors-discover-" + url: {
				"category":    "bakery",
				"competitors": []any{"https://rival.example"},
			},
			"comp-strategic-" + url: {
				"summary":           "You compete in local bakeries",
				"category_detected": "bakery",
			},
		},
	}
	router := newTestRouter(f, inv)

	code, out := postJSON(t, router, "/competitors", map[string]string{"url": url})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, []any{"https://rival.example"}, out["auto_detected_competitors"])
	data := out["competitor_data"].(map[string]any)
	assert.Equal(t, "You compete in local bakeries", data["summary"])

	fetched := out["competitors_fetched"].([]any)
	require.Len(t, fetched, 1)
	assert.Equal(t, true, fetched[0].(map[string]any)["success"])
}

func TestCompetitors_FetchFailure(t *testing.T) {
	router := newTestRouter(&stubFetcher{}, &stubInvoker{})

	code, out := postJSON(t, router, "/competitor-ai", map[string]string{"url": "https://down.example"})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, out["success"])
	assert.Nil(t, out["competitor_data"])
}

func TestPlan_Success(t *testing.T) {
	url := "https://ok.example"
	f := &stubFetcher{pages: map[string]fetch.Result{
		url: {Success: true, HTML: testPage},
	}}
	inv := &stubInvoker{jsonOut: map[string]map[string]any{
		"plan-" + url: {
			"summary":    "A small bakery site",
			"priorities": []any{"Add online ordering"},
		},
	}}
	router := newTestRouter(f, inv)

	code, out := postJSON(t, router, "/plan", map[string]string{"url": url})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])
	plan := out["plan"].(map[string]any)
	assert.Equal(t, "A small bakery site", plan["summary"])
}

func TestFullAnalysis_Success(t *testing.T) {
	url := "https://ok.example"
	f := &stubFetcher{pages: map[string]fetch.Result{
		url: {Success: true, HTML: testPage},
	}}
	router := newTestRouter(f, &stubInvoker{})

	code, out := postJSON(t, router, "/full-analysis", map[string]string{"url": url})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, url, out["url"])
	assert.NotNil(t, out["stats"])
	assert.NotNil(t, out["ux"])
	assert.NotNil(t, out["seo"])
}

func TestFullAnalysis_FetchFailure(t *testing.T) {
	router := newTestRouter(&stubFetcher{}, &stubInvoker{})

	code, out := postJSON(t, router, "/full-analysis", map[string]string{"url": "https://down.example"})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, out["success"])
	assert.Nil(t, out["data"])
}

func TestAutoTest_AgainstLiveBackend(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testPage)
	}))
	defer backend.Close()

	router := newTestRouter(&stubFetcher{}, &stubInvoker{})

	code, out := postJSON(t, router, "/autotest", map[string]string{"url": backend.URL})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Healthy", out["status"])
}

func TestBuildPlan_EmptyIdea(t *testing.T) {
	router := newTestRouter(&stubFetcher{}, &stubInvoker{})

	code, out := postJSON(t, router, "/build-plan", map[string]string{"idea": "   "})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Please tell me what app you want to build!", out["error"])
	assert.Nil(t, out["blueprint"])
}

func TestBuildPlan_SparseModelOutputGetsDefaults(t *testing.T) {
	inv := &stubInvoker{jsonOut: map[string]map[string]any{
		"blueprint-expert-a recipe box": {
			"app_summary": "A recipe box app",
		},
	}}
	router := newTestRouter(&stubFetcher{}, inv)

	code, out := postJSON(t, router, "/build-plan", map[string]string{"idea": "a recipe box"})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "a recipe box", out["idea"])
	bp := out["blueprint"].(map[string]any)
	assert.Equal(t, "A recipe box app", bp["app_summary"])
	assert.NotEmpty(t, bp["build_steps"])
}

func TestWorkflow_Success(t *testing.T) {
	inv := &stubInvoker{jsonOut: map[string]map[string]any{
		"blueprint-expert-a recipe box": {
			"app_summary": "A recipe box app",
		},
	}}
	router := newTestRouter(&stubFetcher{}, inv)

	code, out := postJSON(t, router, "/workflow", map[string]string{"idea": "a recipe box"})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])

	wf := out["workflow"].(map[string]any)
	progress := wf["progress"].(map[string]any)
	assert.Greater(t, progress["total"].(float64), float64(0))
	assert.Equal(t, float64(0), progress["completed"])

	assert.NotEmpty(t, out["prompts"])
	next := out["next_step"].(map[string]any)
	assert.Equal(t, true, next["success"])
	assert.NotEmpty(t, next["prompt"])
}

func TestWorkflowUpdate_Roundtrip(t *testing.T) {
	inv := &stubInvoker{jsonOut: map[string]map[string]any{
		"blueprint-expert-a recipe box": {
			"app_summary": "A recipe box app",
		},
	}}
	router := newTestRouter(&stubFetcher{}, inv)

	bp, err := builder.New(inv).GenerateBlueprint(context.Background(), "a recipe box")
	require.NoError(t, err)
	wf, err := builder.CreateWorkflow(bp, "a recipe box")
	require.NoError(t, err)

	code, out := postJSON(t, router, "/workflow/update", map[string]any{
		"workflow": wf,
		"step_id":  wf.BuildSteps[0].ID,
		"status":   model.StepCompleted,
	})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])

	updated := out["workflow"].(map[string]any)
	progress := updated["progress"].(map[string]any)
	assert.Equal(t, float64(1), progress["completed"])
	assert.Equal(t, false, out["testing_unlocked"])
}

func TestGeneratePrompt_UsesCannedPrompt(t *testing.T) {
	router := newTestRouter(&stubFetcher{}, &stubInvoker{})

	code, out := postJSON(t, router, "/generate-prompt", map[string]any{
		"step": map[string]any{
			"id":           1,
			"title":        "Create the homepage",
			"build_prompt": "Create index.html with a hero section.",
		},
	})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Create index.html with a hero section.", out["prompt"])
	step := out["step"].(map[string]any)
	assert.Equal(t, "Create the homepage", step["title"])
}

func TestFixError(t *testing.T) {
	router := newTestRouter(&stubFetcher{}, &stubInvoker{})

	code, out := postJSON(t, router, "/fix-error", map[string]string{
		"error_message": "TypeError: x is undefined",
		"context":       "building the cart page",
	})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])
	prompt := out["prompt"].(string)
	assert.Contains(t, prompt, "TypeError: x is undefined")
	assert.Contains(t, prompt, "building the cart page")
}

func TestFixError_EmptyMessage(t *testing.T) {
	router := newTestRouter(&stubFetcher{}, &stubInvoker{})

	code, out := postJSON(t, router, "/fix-error", map[string]string{"error_message": ""})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Please paste the error message you're seeing.", out["prompt"])
}

func TestCacheStats(t *testing.T) {
	router := newTestRouter(&stubFetcher{}, &stubInvoker{})

	req := httptest.NewRequest(http.MethodGet, "/cache/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var stats ai.CacheStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Zero(t, stats.Count)
}
