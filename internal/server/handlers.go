package server

import (
	"net/http"

	"github.com/sells-group/sitecoach/internal/analyze"
	"github.com/sells-group/sitecoach/internal/fetch"
	"github.com/sells-group/sitecoach/internal/model"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Stats())
}

func fetchError(res fetch.Result, fallback string) string {
	if res.Error != "" {
		return res.Error
	}
	return fallback
}

func (s *Server) handleAnalyse(w http.ResponseWriter, r *http.Request) {
	url, ok := decodeURL(w, r)
	if !ok {
		return
	}

	res := s.analyzer.Fetch(r.Context(), url)
	if !res.Success {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":   false,
			"error":     fetchError(res, "Failed to fetch URL"),
			"fetch":     res,
			"structure": nil,
			"tasks":     []model.Task{},
		})
		return
	}

	structure := analyze.AnalyzeStructure(res.HTML)
	tasks := s.analyzer.GenerateTasks(r.Context(), structure.BasicIssues)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"fetch":     res,
		"structure": structure,
		"tasks":     tasks,
	})
}

func (s *Server) handleAutoTest(w http.ResponseWriter, r *http.Request) {
	url, ok := decodeURL(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.tester.Run(r.Context(), url))
}

func (s *Server) handleUXRules(w http.ResponseWriter, r *http.Request) {
	url, ok := decodeURL(w, r)
	if !ok {
		return
	}

	res := s.analyzer.Fetch(r.Context(), url)
	if !res.Success {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   fetchError(res, "Failed to fetch URL"),
			"issues":  nil,
			"summary": nil,
		})
		return
	}

	issues := analyze.RunUXRules(res.HTML)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"url":     url,
		"issues":  issues,
		"summary": analyze.UXRuleSummary(issues),
	})
}

func (s *Server) handleUXAI(w http.ResponseWriter, r *http.Request) {
	url, ok := decodeURL(w, r)
	if !ok {
		return
	}

	res := s.analyzer.Fetch(r.Context(), url)
	if !res.Success {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   fetchError(res, "Failed to fetch URL"),
			"ux_data": nil,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"url":     url,
		"ux_data": s.analyzer.RunUX(r.Context(), res.HTML, url),
	})
}

func (s *Server) handleSEO(w http.ResponseWriter, r *http.Request) {
	url, ok := decodeURL(w, r)
	if !ok {
		return
	}

	res := s.analyzer.Fetch(r.Context(), url)
	if !res.Success {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  false,
			"error":    fetchError(res, "Failed to fetch URL"),
			"seo_data": nil,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"url":      url,
		"seo_data": s.analyzer.RunSEO(r.Context(), res.HTML, url),
	})
}

func (s *Server) handleCompetitors(w http.ResponseWriter, r *http.Request) {
	url, ok := decodeURL(w, r)
	if !ok {
		return
	}

	res := s.analyzer.Fetch(r.Context(), url)
	if !res.Success {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":         false,
			"error":           fetchError(res, "Failed to fetch main URL"),
			"competitor_data": nil,
		})
		return
	}

	ctx := r.Context()
	competitors := s.analyzer.DiscoverCompetitors(ctx, url, res.HTML)
	fetched, statuses := s.analyzer.FetchCompetitors(ctx, competitors)
	report := s.analyzer.RunCompetitorAnalysis(ctx, res.HTML, url, fetched)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":                   true,
		"url":                       url,
		"auto_detected_competitors": competitors,
		"competitors_fetched":       statuses,
		"competitor_data":           report,
	})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	url, ok := decodeURL(w, r)
	if !ok {
		return
	}

	res := s.analyzer.Fetch(r.Context(), url)
	if !res.Success {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   fetchError(res, "Failed to fetch URL"),
			"plan":    nil,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"url":     url,
		"plan":    s.analyzer.GeneratePlan(r.Context(), res.HTML, url),
	})
}

func (s *Server) handleFullAnalysis(w http.ResponseWriter, r *http.Request) {
	url, ok := decodeURL(w, r)
	if !ok {
		return
	}

	report, errMsg, succeeded := s.analyzer.RunFull(r.Context(), url)
	if !succeeded {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   errMsg,
			"data":    nil,
		})
		return
	}
	writeJSON(w, http.StatusOK, report)
}
