package analyze

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/sitecoach/internal/ai"
	"github.com/sells-group/sitecoach/internal/content"
	"github.com/sells-group/sitecoach/internal/model"
)

// CompetitorHTML pairs a fetched competitor URL with its capped HTML.
type CompetitorHTML struct {
	URL  string
	HTML string
}

// DiscoverCompetitors asks the model for real competitor URLs based on the
// page content. Always returns a list, possibly empty.
func (a *Analyzer) DiscoverCompetitors(ctx context.Context, url, html string) []string {
	zap.L().Info("competitor discovery started", zap.String("url", url))

	limited := content.Reduce(html, 2000)
	if len(limited) > 1500 {
		limited = limited[:1500]
	}

	prompt := fmt.Sprintf(`You are a competitive intelligence analyst.
Analyze this website and identify its category, then find 3-5 of its REAL top competitors.

Website: %s

HTML snippet:
%s

RULES:
1. First detect the category (e.g., portfolio, e-commerce, SaaS, blog, booking, learning platform, etc.)
2. Find 3-5 REAL competitor URLs that are:
   - In the same category
   - Well-known alternatives users would consider
   - Active and legitimate websites
3. Do NOT make up fake URLs
4. Prefer well-known competitors in the space

Respond ONLY with valid JSON. No markdown:
{
  "category": "detected category",
  "competitors": ["https://competitor1.com", "https://competitor2.com", "https://competitor3.com"]
}`, url, limited)

	result := a.invoker.SafeJSON(ctx, prompt, ai.CallOptions{
		Model:     a.invoker.DefaultModel(),
		CacheKey:  "competitors-discover-" + url,
		MaxTokens: 300,
		Feature:   "competitor_discovery",
	})

	if errMsg, ok := result["error"]; ok {
		zap.L().Warn("competitor discovery failed", zap.String("url", url), zap.Any("error", errMsg))
		return nil
	}

	var valid []string
	for _, c := range asStringSlice(result["competitors"], 5) {
		if strings.HasPrefix(c, "http") {
			valid = append(valid, c)
		}
	}
	zap.L().Info("competitor discovery complete",
		zap.String("url", url),
		zap.String("category", asString(result["category"], "unknown")),
		zap.Int("found", len(valid)))
	return valid
}

// FetchCompetitors fetches up to the configured number of competitor pages
// one at a time, isolating per-competitor failures. HTML is capped so
// prompts stay small.
func (a *Analyzer) FetchCompetitors(ctx context.Context, competitors []string) ([]CompetitorHTML, []model.FetchStatus) {
	if len(competitors) > a.cfg.MaxCompetitors {
		competitors = competitors[:a.cfg.MaxCompetitors]
	}

	var fetched []CompetitorHTML
	var statuses []model.FetchStatus

	for _, compURL := range competitors {
		res := a.fetcher.Fetch(ctx, compURL)
		if !res.Success {
			statuses = append(statuses, model.FetchStatus{URL: compURL, Success: false, Error: res.Error})
			continue
		}
		html := res.HTML
		if len(html) > 3000 {
			html = html[:3000]
		}
		fetched = append(fetched, CompetitorHTML{URL: compURL, HTML: html})
		statuses = append(statuses, model.FetchStatus{URL: compURL, Success: true})
	}

	return fetched, statuses
}

// RunCompetitorAnalysis runs the strategic comparison against fetched
// competitor pages. Always returns a populated report.
func (a *Analyzer) RunCompetitorAnalysis(ctx context.Context, mainHTML, mainURL string, competitors []CompetitorHTML) model.CompetitorReport {
	zap.L().Info("competitor analysis started",
		zap.String("url", mainURL), zap.Int("competitors", len(competitors)))

	if len(competitors) == 0 {
		return NoCompetitorsReport()
	}

	result := a.invoker.SafeJSON(ctx, competitorPrompt(mainHTML, mainURL, competitors), ai.CallOptions{
		Model:     a.invoker.DefaultModel(),
		CacheKey:  "comp-strategic-" + mainURL,
		MaxTokens: 2500,
		Feature:   "competitor_analysis",
	})

	if errMsg, ok := result["error"]; ok {
		zap.L().Warn("competitor analysis failed, using fallback",
			zap.String("url", mainURL), zap.Any("error", errMsg))
		return competitorFallback()
	}

	report := parseCompetitorResult(result, mainURL)
	zap.L().Info("competitor analysis complete",
		zap.String("url", mainURL), zap.Int("gaps", len(report.FeatureGaps)))
	return report
}

func competitorPrompt(mainHTML, mainURL string, competitors []CompetitorHTML) string {
	limitedMain := content.Reduce(mainHTML, 2500)
	if len(limitedMain) > 2000 {
		limitedMain = limitedMain[:2000]
	}

	var comp strings.Builder
	for i, c := range competitors {
		if i >= 3 {
			break
		}
		snippet := content.Reduce(c.HTML, 1200)
		if len(snippet) > 1000 {
			snippet = snippet[:1000]
		}
		fmt.Fprintf(&comp, "\n--- %s ---\n%s\n", c.URL, snippet)
	}
	compText := comp.String()
	if len(compText) > 3000 {
		compText = compText[:3000]
	}

	return fmt.Sprintf(`You are a senior product strategist and competitive intelligence analyst.

Analyze this website against its competitors and provide strategic insights.

TARGET SITE: %s
%s

COMPETITORS:
%s

ANALYSIS REQUIREMENTS:
1. Identify the category and market position
2. For each competitor, extract:
   - Key features the target is missing
   - UX/UI advantages
   - Content and conversion strengths
3. Identify specific feature gaps with implementation steps
4. Provide actionable business opportunities

Respond ONLY with valid JSON (no markdown, no explanation):
{
  "summary": "One paragraph strategic assessment of competitive position",
  "category_detected": "e.g., SaaS, Portfolio, E-commerce",
  "competitors_analyzed": [
    {
      "name": "Competitor Name",
      "url": "https://...",
      "key_features": ["specific feature 1", "specific feature 2"],
      "ux_strengths": ["specific UX advantage"],
      "what_to_copy": ["specific pattern or feature to implement"]
    }
  ],
  "feature_gaps": [
    {
      "title": "Missing Feature Name",
      "description": "What is missing and why it matters",
      "competitors_who_have_it": ["competitor1", "competitor2"],
      "priority": "high",
      "why_you_need_it": "Business reason",
      "steps_to_fix": [
        "Step 1: ...",
        "Step 2: ...",
        "Step 3: ..."
      ],
      "code_fix": "`+"```html\\n<exact code example>\\n```"+`",
      "files_to_modify": ["index.html"],
      "prompt_to_apply_fix": "AI prompt to implement this feature"
    }
  ],
  "strengths": ["What target site does well vs competitors"],
  "weaknesses": ["Where target site falls short"],
  "business_opportunities": ["Strategic product direction ideas"],
  "final_recommendations": ["Most important changes to implement first"]
}

Provide 2-4 feature gaps with specific implementation steps.
Focus on high-impact, actionable improvements.`, mainURL, limitedMain, compText)
}

func parseCompetitorResult(result map[string]any, mainURL string) model.CompetitorReport {
	var profiles []model.CompetitorProfile
	for _, m := range asMapSlice(result["competitors_analyzed"], 5) {
		profiles = append(profiles, model.CompetitorProfile{
			Name:        asString(m["name"], "Competitor"),
			URL:         asString(m["url"], ""),
			KeyFeatures: asStringSlice(m["key_features"], 5),
			UXStrengths: asStringSlice(m["ux_strengths"], 5),
			WhatToCopy:  asStringSlice(m["what_to_copy"], 5),
		})
	}

	var gaps []model.FeatureGap
	for _, m := range asMapSlice(result["feature_gaps"], 6) {
		title := asString(m["title"], "")
		if title == "" {
			title = asString(m["gap"], "Feature Gap")
		}
		steps := asStringSlice(m["steps_to_fix"], 10)
		if len(steps) == 0 {
			steps = asStringSlice(m["how_to_add_it"], 10)
		}
		codeFix := asString(m["code_fix"], "")
		if codeFix == "" {
			codeFix = asString(m["code_patch"], "")
		}
		files := asStringSlice(m["files_to_modify"], 10)
		if len(files) == 0 {
			files = []string{"index.html"}
		}
		gaps = append(gaps, model.FeatureGap{
			Title:                title,
			Description:          asString(m["description"], ""),
			CompetitorsWhoHaveIt: asStringSlice(m["competitors_who_have_it"], 5),
			Priority:             asString(m["priority"], "medium"),
			WhyYouNeedIt:         asString(m["why_you_need_it"], ""),
			StepsToFix:           steps,
			CodeFix:              codeFix,
			FilesToModify:        files,
			PromptToApplyFix:     asString(m["prompt_to_apply_fix"], ""),
		})
	}

	var tasks []model.AITask
	for i, gap := range gaps {
		if i >= 4 {
			break
		}
		task := gap.Description
		if task == "" {
			task = gap.WhyYouNeedIt
		}
		element := ""
		if len(gap.CompetitorsWhoHaveIt) > 0 {
			n := len(gap.CompetitorsWhoHaveIt)
			if n > 2 {
				n = 2
			}
			element = strings.Join(gap.CompetitorsWhoHaveIt[:n], ", ")
		}
		tasks = append(tasks, model.AITask{
			Issue:    gap.Title,
			Task:     task,
			Priority: gap.Priority,
			Element:  element,
		})
	}

	strengths := asStringSlice(result["strengths"], 5)
	if len(strengths) == 0 {
		strengths = []string{"Site is online and functional"}
	}
	weaknesses := asStringSlice(result["weaknesses"], 5)
	if len(weaknesses) == 0 {
		weaknesses = []string{"Analysis needed"}
	}

	finalRecs := asStringSlice(result["final_recommendations"], 5)
	improvements := finalRecs
	if len(improvements) > 3 {
		improvements = improvements[:3]
	}
	if len(improvements) == 0 {
		for i, gap := range gaps {
			if i >= 3 {
				break
			}
			improvements = append(improvements, gap.Title)
		}
	}

	return model.CompetitorReport{
		Summary:               asString(result["summary"], "Analysis complete"),
		CategoryDetected:      asString(result["category_detected"], "Unknown"),
		CompetitorsAnalyzed:   profiles,
		FeatureGaps:           gaps,
		Strengths:             strengths,
		Weaknesses:            weaknesses,
		Improvements:          improvements,
		BusinessOpportunities: asStringSlice(result["business_opportunities"], 5),
		FinalRecommendations:  finalRecs,
		AITasks:               tasks,
		FixPrompt:             gapFixPrompt(gaps, mainURL),
	}
}

func gapFixPrompt(gaps []model.FeatureGap, url string) string {
	if len(gaps) == 0 {
		return "No feature gaps identified - your site is competitive!"
	}

	lines := []string{fmt.Sprintf("Implement these competitive improvements for %s:\n", url)}
	for i, gap := range gaps {
		if i >= 4 {
			break
		}
		lines = append(lines, fmt.Sprintf("## Gap %d: %s", i+1, gap.Title))
		if gap.Description != "" {
			lines = append(lines, "Problem: "+gap.Description)
		}
		if gap.WhyYouNeedIt != "" {
			lines = append(lines, "Why: "+gap.WhyYouNeedIt)
		}
		if len(gap.CompetitorsWhoHaveIt) > 0 {
			n := len(gap.CompetitorsWhoHaveIt)
			if n > 3 {
				n = 3
			}
			lines = append(lines, "Competitors with this: "+strings.Join(gap.CompetitorsWhoHaveIt[:n], ", "))
		}
		lines = append(lines, "")
		if len(gap.StepsToFix) > 0 {
			lines = append(lines, "Steps:")
			for _, step := range gap.StepsToFix {
				lines = append(lines, "  "+step)
			}
			lines = append(lines, "")
		}
		if gap.CodeFix != "" {
			lines = append(lines, "Code: "+gap.CodeFix)
		}
		lines = append(lines, "")
	}
	lines = append(lines, "Apply these changes to match or exceed your competitors.")
	return strings.Join(lines, "\n")
}

func competitorFallback() model.CompetitorReport {
	return model.CompetitorReport{
		Summary:              "Could not complete competitive analysis. Please try again.",
		CategoryDetected:     "Unknown",
		Strengths:            []string{"Your site is online and accessible"},
		Weaknesses:           []string{"Full analysis unavailable"},
		Improvements:         []string{"Retry the competitive analysis"},
		FinalRecommendations: []string{"Run analysis again for insights"},
		AITasks: []model.AITask{{
			Issue:    "Analysis incomplete",
			Task:     "Try running competitor analysis again",
			Priority: "medium",
		}},
		FixPrompt: "Competitive analysis needs to be retried for actionable insights.",
	}
}

// NoCompetitorsReport is returned when nothing could be fetched to compare
// against.
func NoCompetitorsReport() model.CompetitorReport {
	return model.CompetitorReport{
		Summary:      "No competitors could be fetched for comparison.",
		Improvements: []string{"Try again with a different URL"},
		FixPrompt:    "Competitor analysis unavailable.",
	}
}
