package analyze

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/sitecoach/internal/ai"
	"github.com/sells-group/sitecoach/internal/content"
	"github.com/sells-group/sitecoach/internal/model"
)

const seoHTMLLimit = 3000

var ogPropRe = regexp.MustCompile(`^og:`)

// RunSEO runs the combined rule-based and model-driven SEO analysis.
// Always returns a populated report; model failures degrade to the
// rule-derived fallback.
func (a *Analyzer) RunSEO(ctx context.Context, html, url string) model.SEOReport {
	zap.L().Info("seo analysis started", zap.String("url", url))

	data := ExtractSEOData(html, url)
	ruleIssues := seoRuleCheck(data)

	result := a.invoker.SafeJSON(ctx, seoPrompt(data, ruleIssues, content.Reduce(html, seoHTMLLimit), url), ai.CallOptions{
		Model:     a.invoker.DefaultModel(),
		CacheKey:  "seo-detailed-" + url,
		MaxTokens: 2000,
		Feature:   "seo",
	})

	if errMsg, ok := result["error"]; ok {
		zap.L().Warn("seo model call failed, using rule-based fallback",
			zap.String("url", url), zap.Any("error", errMsg))
		return seoFallback(data, ruleIssues, url)
	}

	report := parseSEOResult(result, data, url)
	zap.L().Info("seo analysis complete",
		zap.String("url", url),
		zap.Int("score", report.Score),
		zap.Int("issues", len(report.Issues)))
	return report
}

// ExtractSEOData pulls everything SEO-relevant out of a page.
func ExtractSEOData(html, url string) model.SEOData {
	data := model.SEOData{URL: url, Headings: map[string][]string{}}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return data
	}

	data.Title = strings.TrimSpace(doc.Find("title").First().Text())
	data.TitleLength = len(data.Title)

	data.MetaDescription, _ = doc.Find(`meta[name="description"]`).First().Attr("content")
	data.MetaDescriptionLength = len(data.MetaDescription)

	for i := 1; i <= 6; i++ {
		tag := fmt.Sprintf("h%d", i)
		var texts []string
		doc.Find(tag).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			t := strings.TrimSpace(s.Text())
			if len(t) > 50 {
				t = t[:50]
			}
			texts = append(texts, t)
			return len(texts) < 3
		})
		data.Headings[tag] = texts
	}
	data.H1Count = doc.Find("h1").Length()

	bodyText := strings.TrimSpace(doc.Find("body").Text())
	data.WordCount = len(strings.Fields(bodyText))

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		data.TotalImages++
		if alt, _ := s.Attr("alt"); alt == "" {
			data.ImagesWithoutAlt++
		}
	})

	data.Canonical, _ = doc.Find(`link[rel="canonical"]`).First().Attr("href")

	doc.Find("meta[property]").Each(func(_ int, s *goquery.Selection) {
		prop, _ := s.Attr("property")
		if !ogPropRe.MatchString(prop) {
			return
		}
		if data.OGTags == nil {
			data.OGTags = map[string]string{}
		}
		c, _ := s.Attr("content")
		if len(c) > 50 {
			c = c[:50]
		}
		data.OGTags[prop] = c
	})

	data.HasSchema = doc.Find(`script[type="application/ld+json"]`).Length() > 0
	data.HasViewport = doc.Find(`meta[name="viewport"]`).Length() > 0
	data.Lang, _ = doc.Find("html").First().Attr("lang")

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		data.TotalLinks++
		href, _ := s.Attr("href")
		if strings.HasPrefix(href, "/") || (url != "" && strings.Contains(href, url)) {
			data.InternalLinks++
		}
	})

	return data
}

func seoRuleCheck(d model.SEOData) []model.RuleIssue {
	var issues []model.RuleIssue
	add := func(typ, severity, message string) {
		issues = append(issues, model.RuleIssue{Type: typ, Severity: severity, Message: message})
	}

	switch {
	case d.Title == "":
		add("missing_title", "high", "Missing page title")
	case d.TitleLength < 30:
		add("short_title", "medium", fmt.Sprintf("Title too short (%d chars)", d.TitleLength))
	case d.TitleLength > 60:
		add("long_title", "low", fmt.Sprintf("Title may be truncated (%d chars)", d.TitleLength))
	}

	switch {
	case d.MetaDescription == "":
		add("missing_meta", "high", "Missing meta description")
	case d.MetaDescriptionLength < 120:
		add("short_meta", "medium", fmt.Sprintf("Meta description too short (%d chars)", d.MetaDescriptionLength))
	case d.MetaDescriptionLength > 160:
		add("long_meta", "low", fmt.Sprintf("Meta description may be truncated (%d chars)", d.MetaDescriptionLength))
	}

	if d.H1Count == 0 {
		add("missing_h1", "high", "Missing H1 heading")
	} else if d.H1Count > 1 {
		add("multiple_h1", "medium", fmt.Sprintf("Multiple H1 headings (%d)", d.H1Count))
	}

	if d.Canonical == "" {
		add("missing_canonical", "medium", "Missing canonical link")
	}
	if len(d.OGTags) == 0 {
		add("missing_og", "medium", "Missing Open Graph tags")
	}
	if !d.HasSchema {
		add("missing_schema", "low", "No schema markup found")
	}
	if d.ImagesWithoutAlt > 0 {
		add("missing_alt", "high", fmt.Sprintf("%d images missing alt text", d.ImagesWithoutAlt))
	}
	if !d.HasViewport {
		add("missing_viewport", "high", "Missing viewport meta tag")
	}
	if d.WordCount < 300 {
		add("thin_content", "medium", fmt.Sprintf("Low content (%d words)", d.WordCount))
	}
	if d.Lang == "" {
		add("missing_lang", "low", "Missing lang attribute on <html>")
	}

	return issues
}

func seoPrompt(d model.SEOData, ruleIssues []model.RuleIssue, limitedHTML, url string) string {
	var issuesContext string
	if len(ruleIssues) > 0 {
		lines := []string{"Rule-based issues detected:"}
		for i, iss := range ruleIssues {
			if i >= 8 {
				break
			}
			lines = append(lines, fmt.Sprintf("- %s (%s priority)", iss.Message, iss.Severity))
		}
		issuesContext = strings.Join(lines, "\n")
	}

	yesNo := func(b bool) string {
		if b {
			return "Yes"
		}
		return "No"
	}
	metaPreview := d.MetaDescription
	if len(metaPreview) > 100 {
		metaPreview = metaPreview[:100]
	}
	h1s := d.Headings["h1"]
	if len(h1s) == 0 {
		h1s = []string{"None"}
	}

	return fmt.Sprintf(`You are a senior SEO specialist and full-stack engineer.
Analyze the site for REAL SEO issues and provide exact, detailed fixes.

STRICT RULES:
- NEVER say "improve SEO" - be specific about WHAT to improve.
- ALWAYS show exact meta tags to add.
- ALWAYS show exact <head> edits.
- ALWAYS give exact keywords based on the page content.
- ALWAYS include code patches with minimal, working updates.
- ALWAYS output valid JSON only.

Website URL: %s

Current SEO Data:
- Title: %q (%d chars)
- Meta Description: "%s..." (%d chars)
- H1 Tags: %d found - %v
- Word Count: %d
- Images without alt: %d of %d
- Has Canonical: %s
- Has OG Tags: %s
- Has Schema: %s
- Has Viewport: %s
- Language: %s

%s

HTML snippet:
`+"```html\n%s\n```"+`

Check for:
1. Missing or weak title tag (should be 50-60 chars, include primary keyword)
2. Missing or weak meta description (should be 150-160 chars)
3. Missing Open Graph tags (og:title, og:description, og:image)
4. Missing or multiple H1 tags
5. Weak or missing keywords in content
6. Images missing alt text
7. Missing canonical URL
8. Bad link structure

Respond ONLY with this exact JSON structure (no markdown, no explanation):
{
  "summary": "One sentence summary of the most critical SEO issues.",
  "score": 75,
  "suggested_keywords": ["keyword1", "keyword2", "keyword3"],
  "issues": [
    {
      "title": "Short issue title (5-7 words)",
      "description": "What is wrong and why it matters for search rankings.",
      "location": "Exact location (e.g., index.html > <head>, index.html > <body> > first section)",
      "why_it_matters": "How this affects Google ranking or user clicks.",
      "steps_to_fix": [
        "Step 1: Open index.html",
        "Step 2: Find the <head> section",
        "Step 3: Add the code below"
      ],
      "code_fix": "`+"```html\\n<exact meta tag or code to add>\\n```"+`",
      "files_to_modify": ["index.html"],
      "prompt_to_apply_fix": "A ready-to-use prompt for AI to apply this exact fix."
    }
  ]
}

Return 3-6 issues maximum, ordered by impact. Every issue MUST have working code_fix.`,
		url,
		d.Title, d.TitleLength,
		metaPreview, d.MetaDescriptionLength,
		d.H1Count, h1s,
		d.WordCount,
		d.ImagesWithoutAlt, d.TotalImages,
		yesNo(d.Canonical != ""),
		yesNo(len(d.OGTags) > 0),
		yesNo(d.HasSchema),
		yesNo(d.HasViewport),
		langOrNotSet(d.Lang),
		issuesContext,
		limitedHTML,
	)
}

func langOrNotSet(lang string) string {
	if lang == "" {
		return "Not set"
	}
	return lang
}

// issueFromMap validates one model-produced issue object.
func issueFromMap(m map[string]any, defaultTitle, defaultLocation string) model.Issue {
	iss := model.Issue{
		Title:            asString(m["title"], defaultTitle),
		Description:      asString(m["description"], ""),
		Location:         asString(m["location"], defaultLocation),
		WhyItMatters:     asString(m["why_it_matters"], ""),
		StepsToFix:       asStringSlice(m["steps_to_fix"], 10),
		CodeFix:          asString(m["code_fix"], ""),
		FilesToModify:    asStringSlice(m["files_to_modify"], 10),
		PromptToApplyFix: asString(m["prompt_to_apply_fix"], ""),
	}
	if len(iss.FilesToModify) == 0 {
		iss.FilesToModify = []string{"index.html"}
	}
	return iss
}

func tasksFromIssues(issues []model.Issue) []model.AITask {
	tasks := make([]model.AITask, 0, len(issues))
	for _, iss := range issues {
		tasks = append(tasks, model.AITask{
			Issue:    iss.Title,
			Task:     iss.Description,
			Priority: "high",
			Element:  iss.Location,
		})
	}
	return tasks
}

func fixesFromIssues(issues []model.Issue) []model.Fix {
	fixes := make([]model.Fix, 0, len(issues))
	for _, iss := range issues {
		fixes = append(fixes, model.Fix{
			Selector: iss.Location,
			Fix:      iss.Title,
			Code:     iss.CodeFix,
			Steps:    iss.StepsToFix,
		})
	}
	return fixes
}

func titlesOf(issues []model.Issue, max int) []string {
	out := make([]string, 0, max)
	for _, iss := range issues {
		if len(out) >= max {
			break
		}
		out = append(out, iss.Title)
	}
	return out
}

func parseSEOResult(result map[string]any, data model.SEOData, url string) model.SEOReport {
	var issues []model.Issue
	for _, m := range asMapSlice(result["issues"], 6) {
		issues = append(issues, issueFromMap(m, "SEO Issue", "index.html > <head>"))
	}

	return model.SEOReport{
		Summary:           asString(result["summary"], "SEO analysis complete."),
		Score:             asScore(result["score"], 50),
		SuggestedKeywords: asStringSlice(result["suggested_keywords"], 5),
		Issues:            issues,
		Recommendations:   titlesOf(issues, 3),
		AITasks:           tasksFromIssues(issues),
		ExactFixes:        fixesFromIssues(issues),
		FixPrompt:         masterFixPrompt(issues, url),
		ExtractedData:     &data,
	}
}

// masterFixPrompt renders a single copy-paste prompt covering all fixes.
func masterFixPrompt(issues []model.Issue, url string) string {
	if len(issues) == 0 {
		return "No SEO fixes needed - your page is well optimized!"
	}

	lines := []string{fmt.Sprintf("Fix these SEO issues for %s:\n", url)}
	for i, iss := range issues {
		lines = append(lines,
			fmt.Sprintf("## Issue %d: %s", i+1, iss.Title),
			"Location: "+iss.Location,
			"Problem: "+iss.Description,
			"",
			"Steps:")
		for _, step := range iss.StepsToFix {
			lines = append(lines, "  "+step)
		}
		lines = append(lines, "")
		if iss.CodeFix != "" {
			lines = append(lines, "Code: "+iss.CodeFix)
		}
		lines = append(lines, "")
	}
	lines = append(lines, "Apply all these fixes to improve search engine rankings.")
	return strings.Join(lines, "\n")
}

var fallbackSteps = []string{
	"Step 1: Open index.html in your code editor",
	"Step 2: Find the location mentioned above",
	"Step 3: Add or modify the code as shown below",
	"Step 4: Save the file and refresh your page",
}

// seoFallback builds a report from the rule-based findings alone.
func seoFallback(data model.SEOData, ruleIssues []model.RuleIssue, url string) model.SEOReport {
	var issues []model.Issue
	for i, ri := range ruleIssues {
		if i >= 6 {
			break
		}
		g := guidanceFor(ri.Type)
		title := ri.Message
		if len(title) > 50 {
			title = title[:50]
		}
		if title == "" {
			title = "SEO Issue"
		}
		issues = append(issues, model.Issue{
			Title:            title,
			Description:      "This issue was detected: " + ri.Message,
			Location:         g.Location,
			WhyItMatters:     g.WhyItMatters,
			StepsToFix:       fallbackSteps,
			CodeFix:          g.CodeFix,
			FilesToModify:    []string{"index.html"},
			PromptToApplyFix: "Fix this SEO issue in my HTML: " + ri.Message,
		})
	}

	var high, medium int
	for _, ri := range ruleIssues {
		switch ri.Severity {
		case "high":
			high++
		case "medium":
			medium++
		}
	}
	score := 100 - high*15 - medium*8
	if score < 0 {
		score = 0
	}

	return model.SEOReport{
		Summary:         fmt.Sprintf("Found %d SEO issues that need attention.", len(issues)),
		Score:           score,
		Issues:          issues,
		Recommendations: titlesOf(issues, 3),
		AITasks:         tasksFromIssues(issues),
		ExactFixes:      fixesFromIssues(issues),
		FixPrompt:       masterFixPrompt(issues, url),
		ExtractedData:   &data,
	}
}
