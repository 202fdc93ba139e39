package analyze

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/sitecoach/internal/model"
)

// AnalyzeStructure extracts the basic page structure and flags common
// problems. Pure function; a malformed document degrades to a parse issue
// rather than an error.
func AnalyzeStructure(html string) model.Structure {
	result := model.Structure{
		H1:          []string{},
		H2:          []string{},
		BasicIssues: []string{},
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		result.BasicIssues = append(result.BasicIssues, "parsing error: "+err.Error())
		return result
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title != "" {
		result.Title = title
	} else {
		result.BasicIssues = append(result.BasicIssues, "missing title")
	}

	desc, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	if desc != "" {
		result.Description = desc
	} else {
		result.BasicIssues = append(result.BasicIssues, "missing meta description")
	}

	doc.Find("h1").Each(func(_ int, s *goquery.Selection) {
		result.H1 = append(result.H1, strings.TrimSpace(s.Text()))
	})
	switch {
	case len(result.H1) == 0:
		result.BasicIssues = append(result.BasicIssues, "no H1 tags")
	case len(result.H1) > 1:
		result.BasicIssues = append(result.BasicIssues, "multiple H1 tags")
	}

	doc.Find("h2").Each(func(_ int, s *goquery.Selection) {
		result.H2 = append(result.H2, strings.TrimSpace(s.Text()))
	})

	result.PCount = doc.Find("p").Length()

	body := doc.Find("body")
	if body.Length() == 0 || strings.TrimSpace(body.Text()) == "" {
		result.BasicIssues = append(result.BasicIssues, "empty body")
	}

	return result
}
