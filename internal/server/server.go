// Package server exposes the analysis and build-coaching features over
// HTTP. Every analysis endpoint returns 200 with a JSON body even when the
// underlying fetch or model call fails; the failure travels inside the body
// as success=false plus an error string. Only malformed requests get a 4xx.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sells-group/sitecoach/internal/ai"
	"github.com/sells-group/sitecoach/internal/analyze"
	"github.com/sells-group/sitecoach/internal/builder"
)

// Server holds the wired feature layers behind the HTTP surface.
type Server struct {
	analyzer *analyze.Analyzer
	builder  *builder.Builder
	tester   *analyze.AutoTester
	cache    *ai.Cache
}

// New creates a Server. The cache handle backs the stats endpoint only.
func New(analyzer *analyze.Analyzer, b *builder.Builder, tester *analyze.AutoTester, cache *ai.Cache) *Server {
	return &Server{analyzer: analyzer, builder: b, tester: tester, cache: cache}
}

// Router builds the full route tree with middleware applied.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestSize(1 * 1024 * 1024))

	r.Get("/health", s.handleHealth)
	r.Get("/cache/stats", s.handleCacheStats)

	r.Post("/analyse", s.handleAnalyse)
	r.Post("/autotest", s.handleAutoTest)
	r.Post("/auto-test", s.handleAutoTest)
	r.Post("/ux", s.handleUXRules)
	r.Post("/ux-check", s.handleUXRules)
	r.Post("/ux-ai", s.handleUXAI)
	r.Post("/seo", s.handleSEO)
	r.Post("/seo-check", s.handleSEO)
	r.Post("/seo-ai", s.handleSEO)
	r.Post("/competitors", s.handleCompetitors)
	r.Post("/competitor-ai", s.handleCompetitors)
	r.Post("/plan", s.handlePlan)
	r.Post("/full-analysis", s.handleFullAnalysis)

	r.Post("/build-plan", s.handleBuildPlan)
	r.Post("/workflow", s.handleWorkflow)
	r.Post("/workflow/update", s.handleWorkflowUpdate)
	r.Post("/generate-prompt", s.handleGeneratePrompt)
	r.Post("/fix-error", s.handleFixError)

	return r
}
