package analyze

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/sitecoach/internal/model"
)

const autotestTimeout = 10 * time.Second

// AutoTester runs the fast QA health check against a live site. It keeps its
// own HTTP client so the tiered retry logic of the main fetcher does not
// distort the measured response time.
type AutoTester struct {
	client *http.Client
	now    func() time.Time
}

// NewAutoTester creates an AutoTester with the standard 10 second budget.
func NewAutoTester() *AutoTester {
	return &AutoTester{
		client: &http.Client{Timeout: autotestTimeout},
		now:    time.Now,
	}
}

// Run performs the health check and returns the report. Never returns an
// error; connectivity failures are reported inside the result.
func (t *AutoTester) Run(ctx context.Context, url string) model.AutoTestReport {
	zap.L().Info("autotest started", zap.String("url", url))

	report := model.AutoTestReport{
		Success:    true,
		URL:        url,
		Status:     "Working",
		StatusCode: 200,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return connectionFailedReport(url, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/119.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en")

	start := t.now()
	resp, err := t.client.Do(req)
	if err != nil {
		if isTimeoutErr(err) {
			return timeoutReport(url)
		}
		return connectionFailedReport(url, err)
	}
	defer resp.Body.Close()

	elapsed := t.now().Sub(start)
	report.ResponseTimeMS = int(elapsed.Milliseconds())
	report.StatusCode = resp.StatusCode

	if elapsed > 3*time.Second {
		report.Status = "Slow"
		report.Issues = append(report.Issues, slowLoadIssue(elapsed))
	} else {
		report.ChecksPassed = append(report.ChecksPassed,
			fmt.Sprintf("Fast load time (%dms)", report.ResponseTimeMS))
	}

	if resp.StatusCode >= 400 {
		report.Success = false
		report.Status = "Error"
		report.Summary = fmt.Sprintf("Critical: Server returned error %d", resp.StatusCode)
		report.Issues = append(report.Issues, serverErrorIssue(resp.StatusCode))
		return report
	}
	report.ChecksPassed = append(report.ChecksPassed,
		fmt.Sprintf("Status code OK (%d)", resp.StatusCode))

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err == nil {
		passed, issues := runHealthChecks(doc)
		report.ChecksPassed = append(report.ChecksPassed, passed...)
		report.Issues = append(report.Issues, issues...)
	}

	switch n := len(report.Issues); {
	case n == 0:
		report.Summary = "All QA tests passed! Your website looks healthy."
		report.Status = "Healthy"
	case n <= 2:
		report.Summary = fmt.Sprintf("Found %d minor issue(s) to fix.", n)
		report.Status = "Needs attention"
	default:
		report.Summary = fmt.Sprintf("Found %d issues that should be fixed.", n)
		report.Status = "Needs work"
	}

	zap.L().Info("autotest complete",
		zap.String("url", url),
		zap.Int("passed", len(report.ChecksPassed)),
		zap.Int("issues", len(report.Issues)))
	return report
}

func isTimeoutErr(err error) bool {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) ||
		strings.Contains(err.Error(), "Client.Timeout exceeded")
}

func runHealthChecks(doc *goquery.Document) (passed []string, issues []model.Issue) {
	record := func(ok bool, okMsg string, issue model.Issue) {
		if ok {
			passed = append(passed, okMsg)
		} else {
			issues = append(issues, issue)
		}
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	record(title != "",
		fmt.Sprintf("Title tag exists (%d chars)", len(title)),
		model.Issue{
			Title:       "Missing page title",
			Description: "Your page has no <title> tag. This is what appears in browser tabs and Google search results.",
			Location:    "index.html > <head>",
			StepsToFix: []string{
				"Step 1: Open index.html",
				"Step 2: Find the <head> section",
				"Step 3: Add a <title> tag with your page name",
			},
			CodeFix:          "```html\n<head>\n  <title>Your Page Title | Your Brand</title>\n</head>\n```",
			FilesToModify:    []string{"index.html"},
			PromptToApplyFix: "Add a descriptive title tag to my HTML page in the <head> section.",
		})

	metaDesc, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	record(metaDesc != "",
		fmt.Sprintf("Meta description exists (%d chars)", len(metaDesc)),
		model.Issue{
			Title:       "Missing meta description",
			Description: "Your page has no meta description. This text appears under your title in Google search results.",
			Location:    "index.html > <head>",
			StepsToFix: []string{
				"Step 1: Open index.html",
				"Step 2: Find the <head> section",
				"Step 3: Add a meta description tag (150-160 characters)",
			},
			CodeFix:          "```html\n<head>\n  <meta name=\"description\" content=\"Write a compelling description of your page here. Keep it between 150-160 characters for best results in search engines.\">\n</head>\n```",
			FilesToModify:    []string{"index.html"},
			PromptToApplyFix: "Add a meta description tag to my HTML page that describes what the page is about.",
		})

	switch h1Count := doc.Find("h1").Length(); {
	case h1Count == 1:
		passed = append(passed, "Has one H1 heading")
	case h1Count > 1:
		issues = append(issues, model.Issue{
			Title:       fmt.Sprintf("Multiple H1 headings (%d)", h1Count),
			Description: fmt.Sprintf("Your page has %d H1 tags. You should only have one main heading per page.", h1Count),
			Location:    "index.html > <body>",
			StepsToFix: []string{
				"Step 1: Find all <h1> tags in your HTML",
				"Step 2: Keep only the most important one as <h1>",
				"Step 3: Change the others to <h2> or <h3>",
			},
			CodeFix:          "```html\n<!-- Keep ONE h1 for your main heading -->\n<h1>Your Main Page Title</h1>\n\n<!-- Use h2 for section headings -->\n<h2>Section Heading</h2>\n```",
			FilesToModify:    []string{"index.html"},
			PromptToApplyFix: "Fix my HTML so there is only one H1 heading. Change extra H1s to H2 tags.",
		})
	default:
		issues = append(issues, model.Issue{
			Title:       "Missing H1 heading",
			Description: "Your page has no H1 heading. The H1 tells search engines and users what your page is about.",
			Location:    "index.html > <body>",
			StepsToFix: []string{
				"Step 1: Open index.html",
				"Step 2: Find the main content area",
				"Step 3: Add an <h1> tag with your main page title",
			},
			CodeFix:          "```html\n<body>\n  <h1>Your Main Page Heading</h1>\n  <!-- rest of your content -->\n</body>\n```",
			FilesToModify:    []string{"index.html"},
			PromptToApplyFix: "Add an H1 heading to my HTML page that describes the main topic.",
		})
	}

	record(doc.Find(`meta[name="viewport"]`).Length() > 0,
		"Has viewport meta (mobile-friendly)",
		model.Issue{
			Title:       "Not mobile-friendly",
			Description: "Your page is missing the viewport meta tag. Without it, your site won't display correctly on phones and tablets.",
			Location:    "index.html > <head>",
			StepsToFix: []string{
				"Step 1: Open index.html",
				"Step 2: Find the <head> section",
				"Step 3: Add the viewport meta tag",
			},
			CodeFix:          "```html\n<head>\n  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n</head>\n```",
			FilesToModify:    []string{"index.html"},
			PromptToApplyFix: "Add a viewport meta tag to make my page mobile-friendly.",
		})

	checkPageLinks(doc, &passed, &issues)
	checkImageAlt(doc, &passed, &issues)

	lang, _ := doc.Find("html").First().Attr("lang")
	record(lang != "",
		fmt.Sprintf("Has lang attribute (%s)", lang),
		model.Issue{
			Title:       "Missing language attribute",
			Description: "Your HTML tag is missing the lang attribute. This helps screen readers and search engines understand what language your page is in.",
			Location:    "index.html > <html>",
			StepsToFix: []string{
				"Step 1: Open index.html",
				"Step 2: Find the opening <html> tag",
				"Step 3: Add the lang attribute with your language code",
			},
			CodeFix:          "```html\n<!-- For English -->\n<html lang=\"en\">\n\n<!-- For Spanish -->\n<html lang=\"es\">\n\n<!-- For French -->\n<html lang=\"fr\">\n```",
			FilesToModify:    []string{"index.html"},
			PromptToApplyFix: "Add a lang attribute to my HTML tag to specify the page language.",
		})

	return passed, issues
}

func checkPageLinks(doc *goquery.Document, passed *[]string, issues *[]model.Issue) {
	links := doc.Find("a[href]")
	total := links.Length()

	if total == 0 {
		*issues = append(*issues, model.Issue{
			Title:       "No links on page",
			Description: "Your page has no links. Links help users navigate and help search engines understand your site structure.",
			Location:    "index.html > <body>",
			StepsToFix: []string{
				"Step 1: Add navigation links to other pages",
				"Step 2: Add links to relevant external resources",
				"Step 3: Make sure all links have descriptive text",
			},
			CodeFix:          "```html\n<nav>\n  <a href=\"/\">Home</a>\n  <a href=\"/about\">About</a>\n  <a href=\"/contact\">Contact</a>\n</nav>\n```",
			FilesToModify:    []string{"index.html"},
			PromptToApplyFix: "Add navigation links to my HTML page.",
		})
		return
	}

	empty := 0
	links.Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		text := strings.TrimSpace(s.Text())
		if (href == "#" || href == "" || href == "javascript:void(0)") && text == "" {
			empty++
		}
	})

	if empty > 0 {
		*passed = append(*passed, fmt.Sprintf("Has %d links", total))
		*issues = append(*issues, model.Issue{
			Title:       fmt.Sprintf("%d empty or broken links", empty),
			Description: "Some links on your page are empty or have no destination. These confuse users and hurt accessibility.",
			Location:    "index.html > <a> tags",
			StepsToFix: []string{
				"Step 1: Find all links with href='#' or empty href",
				"Step 2: Either add a real destination or remove the link",
				"Step 3: Make sure all links have descriptive text",
			},
			CodeFix:          "```html\n<!-- Bad: empty link -->\n<a href=\"#\">Click here</a>\n\n<!-- Good: real destination -->\n<a href=\"/about\">Learn more about us</a>\n```",
			FilesToModify:    []string{"index.html"},
			PromptToApplyFix: "Fix empty and broken links in my HTML. Replace # links with real destinations.",
		})
		return
	}

	*passed = append(*passed, fmt.Sprintf("Has %d valid links", total))
}

func checkImageAlt(doc *goquery.Document, passed *[]string, issues *[]model.Issue) {
	images := doc.Find("img")
	total := images.Length()
	if total == 0 {
		*passed = append(*passed, "No images to check")
		return
	}

	missing := 0
	images.Each(func(_ int, s *goquery.Selection) {
		if alt, exists := s.Attr("alt"); !exists || strings.TrimSpace(alt) == "" {
			missing++
		}
	})

	if missing == 0 {
		*passed = append(*passed, fmt.Sprintf("All %d images have alt text", total))
		return
	}

	*issues = append(*issues, model.Issue{
		Title:       fmt.Sprintf("%d images missing alt text", missing),
		Description: "Some images don't have alt text. Alt text is required for accessibility and helps with SEO.",
		Location:    "index.html > <img> tags",
		StepsToFix: []string{
			"Step 1: Find all <img> tags in your HTML",
			"Step 2: Add an alt attribute to each one",
			"Step 3: Write a brief description of what the image shows",
		},
		CodeFix:          "```html\n<!-- Add alt text describing the image -->\n<img src=\"team-photo.jpg\" alt=\"Our team members standing in the office\">\n\n<!-- For decorative images, use empty alt -->\n<img src=\"decorative-line.png\" alt=\"\">\n```",
		FilesToModify:    []string{"index.html"},
		PromptToApplyFix: fmt.Sprintf("Add alt text to the %d images that are missing it. Describe what each image shows.", missing),
	})
}

func slowLoadIssue(elapsed time.Duration) model.Issue {
	return model.Issue{
		Title:       "Page loads too slowly",
		Description: fmt.Sprintf("Your page took %.1f seconds to load. Users expect pages to load in under 3 seconds.", elapsed.Seconds()),
		Location:    "Server / Assets",
		StepsToFix: []string{
			"Step 1: Compress your images using tools like TinyPNG",
			"Step 2: Minimize your CSS and JavaScript files",
			"Step 3: Enable browser caching on your server",
			"Step 4: Consider using a CDN for static assets",
		},
		CodeFix:          "```html\n<!-- Add to <head> to preload critical assets -->\n<link rel=\"preload\" href=\"style.css\" as=\"style\">\n<link rel=\"preload\" href=\"main.js\" as=\"script\">\n```",
		FilesToModify:    []string{"index.html"},
		PromptToApplyFix: "Optimize my website loading speed by compressing images and minifying CSS/JS files.",
	}
}

func serverErrorIssue(statusCode int) model.Issue {
	return model.Issue{
		Title:       fmt.Sprintf("Server error %d", statusCode),
		Description: fmt.Sprintf("The server returned error code %d. This means visitors cannot access your page.", statusCode),
		Location:    "Server configuration",
		StepsToFix: []string{
			"Step 1: Check if your server is running",
			"Step 2: Verify the URL is correct",
			"Step 3: Check server logs for errors",
			"Step 4: Ensure your hosting is active",
		},
		CodeFix:          "```\n# Check server status and logs\n# This is a server configuration issue\n```",
		FilesToModify:    []string{},
		PromptToApplyFix: fmt.Sprintf("Debug why my server is returning a %d error.", statusCode),
	}
}

func timeoutReport(url string) model.AutoTestReport {
	return model.AutoTestReport{
		Success:        false,
		URL:            url,
		Summary:        "Website timed out - could not connect within 10 seconds.",
		Status:         "Timeout",
		ResponseTimeMS: int(autotestTimeout.Milliseconds()),
		ChecksPassed:   []string{},
		Issues: []model.Issue{{
			Title:       "Website timeout",
			Description: "Your website took too long to respond. This could mean the server is down or overloaded.",
			Location:    "Server",
			StepsToFix: []string{
				"Step 1: Check if your server is running",
				"Step 2: Check your hosting provider's status page",
				"Step 3: Look at server resource usage (CPU, memory)",
				"Step 4: Check if the domain DNS is configured correctly",
			},
			CodeFix:          "```\n# Server configuration issue - no code fix available\n# Contact your hosting provider if the issue persists\n```",
			FilesToModify:    []string{},
			PromptToApplyFix: "Debug why my website is timing out and not responding.",
		}},
	}
}

func connectionFailedReport(url string, err error) model.AutoTestReport {
	msg := err.Error()
	short := msg
	if len(short) > 50 {
		short = short[:50]
	}
	if len(msg) > 100 {
		msg = msg[:100]
	}
	return model.AutoTestReport{
		Success:      false,
		URL:          url,
		Summary:      "Could not connect to website: " + short,
		Status:       "Error",
		ChecksPassed: []string{},
		Issues: []model.Issue{{
			Title:       "Connection failed",
			Description: "Could not connect to the website. Error: " + msg,
			Location:    "URL / Network",
			StepsToFix: []string{
				"Step 1: Verify the URL is correct and includes https://",
				"Step 2: Check if the website is accessible in a browser",
				"Step 3: Ensure there are no firewall blocks",
				"Step 4: Try again in a few minutes",
			},
			CodeFix:          "```\n# Network or URL issue - verify the URL is correct\n```",
			FilesToModify:    []string{},
			PromptToApplyFix: "Help me debug why I cannot connect to my website.",
		}},
	}
}
