package analyze

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/sitecoach/internal/model"
)

// RunFull performs the combined analysis: structure, UX, SEO, and the
// competitor comparison. The response cache is cleared first so every
// section reflects the live page. Returns ok=false with an error message
// only when the target page itself cannot be fetched.
func (a *Analyzer) RunFull(ctx context.Context, url string) (model.FullReport, string, bool) {
	zap.L().Info("full analysis started", zap.String("url", url))

	if a.cache != nil {
		a.cache.Clear()
	}

	res := a.fetcher.Fetch(ctx, url)
	if !res.Success {
		zap.L().Warn("full analysis fetch failed", zap.String("url", url), zap.String("error", res.Error))
		return model.FullReport{}, res.Error, false
	}
	html := res.HTML

	structure := AnalyzeStructure(html)
	basicTasks := a.GenerateTasks(ctx, structure.BasicIssues)

	uxReport := a.RunUX(ctx, html, url)
	seoReport := a.RunSEO(ctx, html, url)

	var competitor *model.CompetitorSection
	detected := a.DiscoverCompetitors(ctx, url, html)
	if len(detected) > 0 {
		fetched, _ := a.FetchCompetitors(ctx, detected)
		if len(fetched) > 0 {
			report := a.RunCompetitorAnalysis(ctx, html, url, fetched)
			competitor = &model.CompetitorSection{AutoDetected: detected, Data: &report}
		}
	}

	var allTasks []model.SourcedTask
	for _, t := range basicTasks {
		allTasks = append(allTasks, model.SourcedTask{
			Source:   "basic",
			Task:     t.Task,
			Priority: "medium",
			Category: "Structure",
		})
	}
	for _, t := range uxReport.AITasks {
		allTasks = append(allTasks, sourcedTask("ux", "UX", t))
	}
	for _, t := range seoReport.AITasks {
		allTasks = append(allTasks, sourcedTask("seo", "SEO", t))
	}
	if competitor != nil {
		for _, t := range competitor.Data.AITasks {
			allTasks = append(allTasks, sourcedTask("competitor", "Competitor", t))
		}
	}

	bySource := map[string]int{"basic": 0, "ux": 0, "seo": 0, "competitor": 0}
	for _, t := range allTasks {
		bySource[t.Source]++
	}

	report := model.FullReport{
		Success:    true,
		URL:        url,
		Basic:      model.BasicAnalysis{Structure: structure, Tasks: basicTasks},
		UX:         &uxReport,
		SEO:        &seoReport,
		Competitor: competitor,
		AllTasks:   allTasks,
		Stats: model.FullStats{
			TotalTasks: len(allTasks),
			BySource:   bySource,
			SEOScore:   seoReport.Score,
		},
	}

	zap.L().Info("full analysis complete", zap.String("url", url), zap.Int("tasks", len(allTasks)))
	return report, "", true
}

func sourcedTask(source, category string, t model.AITask) model.SourcedTask {
	priority := t.Priority
	if priority == "" {
		priority = "medium"
	}
	return model.SourcedTask{
		Source:   source,
		Task:     t.Task,
		Priority: priority,
		Category: category,
	}
}
