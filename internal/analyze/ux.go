package analyze

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/sitecoach/internal/ai"
	"github.com/sells-group/sitecoach/internal/content"
	"github.com/sells-group/sitecoach/internal/model"
)

const uxHTMLLimit = 4000

var (
	smallFontRe  = regexp.MustCompile(`(?i)font-size:\s*(\d+)(px|pt)`)
	fixedWidthRe = regexp.MustCompile(`width:\s*(\d{4,})px`)
)

// RunUXRules runs the fast rule-based UX checks without any model call.
func RunUXRules(html string) model.UXRuleResults {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		doc = nil
	}

	return model.UXRuleResults{
		ReadabilityIssues:   checkReadability(doc, html),
		LayoutIssues:        checkLayout(html),
		MobileIssues:        checkMobile(doc, html),
		AccessibilityIssues: checkAccessibility(doc),
	}
}

// UXRuleSummary aggregates rule findings into the overview shape.
func UXRuleSummary(results model.UXRuleResults) model.UXSummary {
	bySeverity := map[string]int{"high": 0, "medium": 0, "low": 0}
	total := 0
	for _, iss := range results.All() {
		bySeverity[iss.Severity]++
		total++
	}
	return model.UXSummary{
		TotalIssues:    total,
		BySeverity:     bySeverity,
		NeedsAttention: bySeverity["high"] > 0,
	}
}

func checkReadability(doc *goquery.Document, html string) []model.RuleIssue {
	var issues []model.RuleIssue

	for _, m := range smallFontRe.FindAllStringSubmatch(html, -1) {
		size, _ := strconv.Atoi(m[1])
		if strings.EqualFold(m[2], "px") && size < 14 {
			issues = append(issues, model.RuleIssue{
				Type:     "small_font",
				Severity: "medium",
				Message:  fmt.Sprintf("Text is too small (%dpx)", size),
				Element:  "font-size CSS",
			})
			break
		}
	}

	if doc != nil {
		doc.Find("p").EachWithBreak(func(i int, s *goquery.Selection) bool {
			if i >= 5 {
				return false
			}
			if len(strings.TrimSpace(s.Text())) > 300 {
				issues = append(issues, model.RuleIssue{
					Type:     "text_wall",
					Severity: "low",
					Message:  "Very long paragraph found",
					Element:  fmt.Sprintf("Paragraph %d", i+1),
				})
				return false
			}
			return true
		})
	}

	return issues
}

func checkLayout(html string) []model.RuleIssue {
	if strings.Contains(html, "margin: 0") && strings.Contains(html, "padding: 0") {
		return []model.RuleIssue{{
			Type:     "missing_spacing",
			Severity: "medium",
			Message:  "No spacing between elements",
			Element:  "CSS layout",
		}}
	}
	return nil
}

func checkMobile(doc *goquery.Document, html string) []model.RuleIssue {
	var issues []model.RuleIssue

	if doc == nil || doc.Find(`meta[name="viewport"]`).Length() == 0 {
		issues = append(issues, model.RuleIssue{
			Type:     "missing_viewport",
			Severity: "high",
			Message:  "Missing viewport meta tag",
			Element:  "<head>",
		})
	}

	if fixedWidthRe.MatchString(html) {
		issues = append(issues, model.RuleIssue{
			Type:     "fixed_width",
			Severity: "medium",
			Message:  "Fixed pixel widths may break on mobile",
			Element:  "CSS width",
		})
	}

	return issues
}

func checkAccessibility(doc *goquery.Document) []model.RuleIssue {
	if doc == nil {
		return nil
	}
	var issues []model.RuleIssue

	missingAlt := 0
	doc.Find("img").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= 10 {
			return false
		}
		if alt, _ := s.Attr("alt"); strings.TrimSpace(alt) == "" {
			missingAlt++
		}
		return true
	})
	if missingAlt > 0 {
		issues = append(issues, model.RuleIssue{
			Type:     "missing_alt",
			Severity: "high",
			Message:  fmt.Sprintf("%d images missing alt text", missingAlt),
			Element:  "<img> tags",
		})
	}

	doc.Find("button").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= 5 {
			return false
		}
		aria, _ := s.Attr("aria-label")
		if strings.TrimSpace(s.Text()) == "" && aria == "" {
			issues = append(issues, model.RuleIssue{
				Type:     "empty_button",
				Severity: "high",
				Message:  "Button has no text or label",
				Element:  fmt.Sprintf("Button %d", i+1),
			})
			return false
		}
		return true
	})

	return issues
}

// RunUX runs the model-driven UX review. Always returns a populated report;
// model failures degrade to the rule-derived fallback.
func (a *Analyzer) RunUX(ctx context.Context, html, url string) model.UXReport {
	zap.L().Info("ux analysis started", zap.String("url", url))

	ruleIssues := RunUXRules(html).All()

	result := a.invoker.SafeJSON(ctx, uxPrompt(ruleIssues, content.Reduce(html, uxHTMLLimit), url), ai.CallOptions{
		Model:     a.invoker.DefaultModel(),
		CacheKey:  "ux-detailed-" + url,
		MaxTokens: 2000,
		Feature:   "ux",
	})

	if errMsg, ok := result["error"]; ok {
		zap.L().Warn("ux model call failed, using rule-based fallback",
			zap.String("url", url), zap.Any("error", errMsg))
		return uxFallback(ruleIssues, url)
	}

	var issues []model.Issue
	for _, m := range asMapSlice(result["issues"], 6) {
		issues = append(issues, issueFromMap(m, "UX Issue", "index.html"))
	}

	report := model.UXReport{
		Summary:         asString(result["summary"], "UX analysis complete."),
		Issues:          issues,
		Recommendations: titlesOf(issues, 3),
		AITasks:         tasksFromIssues(issues),
		ExactFixes:      fixesFromIssues(issues),
		FixPrompt:       uxMasterFixPrompt(issues, url),
	}
	zap.L().Info("ux analysis complete", zap.String("url", url), zap.Int("issues", len(issues)))
	return report
}

func uxPrompt(ruleIssues []model.RuleIssue, limitedHTML, url string) string {
	var issuesContext string
	if len(ruleIssues) > 0 {
		lines := []string{"Rule-based issues detected:"}
		for i, iss := range ruleIssues {
			if i >= 8 {
				break
			}
			lines = append(lines, fmt.Sprintf("- %s (in %s)", iss.Message, iss.Element))
		}
		issuesContext = strings.Join(lines, "\n")
	}

	return fmt.Sprintf(`You are a senior UX/UI designer and front-end engineer.
Your job is to deeply analyze the website HTML and generate specific, detailed, actionable UX improvements.

STRICT RULES:
- NEVER be vague.
- ALWAYS give exact steps.
- ALWAYS include exact code fixes.
- ALWAYS include exact file + location (e.g., "index.html > .hero-title", "style.css > .btn-primary")
- ALWAYS explain like teaching a 12-year-old.
- ALWAYS output only valid JSON.

Website URL: %s

%s

HTML to analyze:
`+"```html\n%s\n```"+`

Analyze:
1. Visual hierarchy - Are important things big and obvious?
2. Spacing - Is there enough room between things?
3. Color contrast - Can you read everything easily?
4. Section layout - Does the page flow logically?
5. Typography - Are fonts readable and consistent?
6. Button clarity - Are buttons obvious and clickable?
7. Mobile responsiveness - Will it work on phones?
8. Interaction feedback - Do buttons show when clicked?

Respond ONLY with this exact JSON structure (no markdown, no explanation):
{
  "summary": "Short 1-2 sentence explanation of the main UX problems found.",
  "issues": [
    {
      "title": "Short issue title (5-7 words max)",
      "description": "What is wrong in plain English. Be specific about what you see.",
      "location": "Exact file and element path (e.g., index.html > section.hero > h1.title)",
      "why_it_matters": "Simple, clear reason why this hurts the user experience.",
      "steps_to_fix": [
        "Step 1: Open the file...",
        "Step 2: Find the element...",
        "Step 3: Change the value..."
      ],
      "code_fix": "`+"```html\\n<exact code to copy-paste>\\n```"+`",
      "files_to_modify": ["index.html"],
      "prompt_to_apply_fix": "A ready-to-use prompt for an AI assistant to apply this exact fix."
    }
  ]
}

Return 3-6 issues maximum. Focus on the most impactful problems first.
If the page looks good, return fewer issues.
Every issue MUST have a specific code_fix with working code.`, url, issuesContext, limitedHTML)
}

func uxMasterFixPrompt(issues []model.Issue, url string) string {
	if len(issues) == 0 {
		return "No fixes needed - your UX looks good!"
	}

	lines := []string{fmt.Sprintf("Fix these UX issues for %s:\n", url)}
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
	lines = append(lines, "Apply all these fixes to improve the user experience.")
	return strings.Join(lines, "\n")
}

func uxFallback(ruleIssues []model.RuleIssue, url string) model.UXReport {
	var issues []model.Issue
	for i, ri := range ruleIssues {
		if i >= 5 {
			break
		}
		title := ri.Message
		if len(title) > 50 {
			title = title[:50]
		}
		if title == "" {
			title = "UX Issue"
		}
		location := "index.html"
		if ri.Element != "" {
			location = "index.html > " + ri.Element
		}
		issues = append(issues, model.Issue{
			Title:        title,
			Description:  "This issue was detected: " + ri.Message,
			Location:     location,
			WhyItMatters: "This affects how users experience your website.",
			StepsToFix: []string{
				"Step 1: Open the file mentioned in location",
				"Step 2: Find the element or CSS property",
				"Step 3: Apply the code fix below",
			},
			CodeFix:          uxFallbackCodeFix(ri.Message),
			FilesToModify:    []string{"index.html", "style.css"},
			PromptToApplyFix: "Fix this UX issue: " + ri.Message,
		})
	}

	tasks := make([]model.AITask, 0, len(issues))
	for _, iss := range issues {
		tasks = append(tasks, model.AITask{
			Issue:    iss.Title,
			Task:     iss.Description,
			Priority: "medium",
			Element:  iss.Location,
		})
	}

	return model.UXReport{
		Summary:         fmt.Sprintf("Found %d UX issues that need attention.", len(issues)),
		Issues:          issues,
		Recommendations: titlesOf(issues, 3),
		AITasks:         tasks,
		ExactFixes:      fixesFromIssues(issues),
		FixPrompt:       uxMasterFixPrompt(issues, url),
	}
}

func uxFallbackCodeFix(message string) string {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "viewport"):
		return "```html\n<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n```"
	case strings.Contains(msg, "alt"):
		return "```html\n<img src=\"your-image.jpg\" alt=\"Descriptive text about this image\">\n```"
	case strings.Contains(msg, "small"), strings.Contains(msg, "font"):
		return "```css\nbody {\n  font-size: 16px;\n  line-height: 1.6;\n}\n```"
	case strings.Contains(msg, "button"):
		return "```html\n<button type=\"button\" aria-label=\"Click to submit\">Submit</button>\n```"
	case strings.Contains(msg, "spacing"):
		return "```css\n.container {\n  padding: 20px;\n  margin: 0 auto;\n  gap: 16px;\n}\n```"
	case strings.Contains(msg, "width"), strings.Contains(msg, "mobile"):
		return "```css\n.container {\n  width: 100%;\n  max-width: 1200px;\n}\n```"
	default:
		return "```css\n/* Review and update this element */\n```"
	}
}
