package analyze

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed guidance.yaml
var guidanceYAML []byte

// issueGuidance holds the fix guidance shipped with the binary for each
// rule-based issue type. Used to enrich rule issues and to build the
// fallback report when the model call fails.
type issueGuidance struct {
	Location     string `yaml:"location"`
	WhyItMatters string `yaml:"why_it_matters"`
	CodeFix      string `yaml:"code_fix"`
}

var guidance = func() map[string]issueGuidance {
	m := make(map[string]issueGuidance)
	if err := yaml.Unmarshal(guidanceYAML, &m); err != nil {
		panic("analyze: bad embedded guidance.yaml: " + err.Error())
	}
	return m
}()

func guidanceFor(issueType string) issueGuidance {
	if g, ok := guidance[issueType]; ok {
		return g
	}
	return issueGuidance{
		Location:     "index.html",
		WhyItMatters: "This issue affects how search engines understand your page.",
		CodeFix:      "Review the issue description and update the relevant HTML.",
	}
}
