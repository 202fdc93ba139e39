// Package model defines the result types produced by the analysis and
// planning layers. Shapes mirror what the HTTP surface serializes, so every
// field carries a json tag.
package model

// Task is an actionable item derived from a detected issue.
type Task struct {
	Issue         string `json:"issue"`
	Task          string `json:"task"`
	Prompt        string `json:"prompt"`
	AIExplanation string `json:"ai_explanation"`
	AIPrompt      string `json:"ai_prompt"`
	Done          bool   `json:"done"`
}

// SourcedTask is a task in the merged full-analysis list, tagged with the
// module that produced it.
type SourcedTask struct {
	Source   string `json:"source"`
	Task     string `json:"task"`
	Priority string `json:"priority"`
	Category string `json:"category"`
}

// Structure is the basic HTML structure report.
type Structure struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	H1          []string `json:"h1"`
	H2          []string `json:"h2"`
	PCount      int      `json:"p_count"`
	BasicIssues []string `json:"basic_issues"`
}

// RuleIssue is a single finding from a rule-based check.
type RuleIssue struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Element  string `json:"element,omitempty"`
}

// Issue is a detailed, actionable finding with an exact fix.
type Issue struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Location         string   `json:"location"`
	WhyItMatters     string   `json:"why_it_matters"`
	StepsToFix       []string `json:"steps_to_fix"`
	CodeFix          string   `json:"code_fix"`
	FilesToModify    []string `json:"files_to_modify"`
	PromptToApplyFix string   `json:"prompt_to_apply_fix"`
}

// Fix pairs a selector with the code that fixes it.
type Fix struct {
	Selector string   `json:"selector"`
	Fix      string   `json:"fix"`
	Code     string   `json:"code"`
	Steps    []string `json:"steps"`
}

// AITask is a compact task derived from a detailed issue.
type AITask struct {
	Issue    string `json:"issue"`
	Task     string `json:"task"`
	Priority string `json:"priority"`
	Element  string `json:"element"`
}

// SEOData holds everything SEO-relevant extracted from a page.
type SEOData struct {
	URL                   string              `json:"url"`
	Title                 string              `json:"title"`
	TitleLength           int                 `json:"title_length"`
	MetaDescription       string              `json:"meta_description"`
	MetaDescriptionLength int                 `json:"meta_description_length"`
	Headings              map[string][]string `json:"headings"`
	H1Count               int                 `json:"h1_count"`
	WordCount             int                 `json:"word_count"`
	TotalImages           int                 `json:"total_images"`
	ImagesWithoutAlt      int                 `json:"images_without_alt"`
	Canonical             string              `json:"canonical"`
	OGTags                map[string]string   `json:"og_tags"`
	HasSchema             bool                `json:"has_schema"`
	HasViewport           bool                `json:"has_viewport"`
	Lang                  string              `json:"lang"`
	InternalLinks         int                 `json:"internal_links"`
	TotalLinks            int                 `json:"total_links"`
}

// SEOReport is the full SEO analysis result.
type SEOReport struct {
	Summary           string   `json:"summary"`
	Score             int      `json:"score"`
	SuggestedKeywords []string `json:"suggested_keywords"`
	Issues            []Issue  `json:"issues"`
	Recommendations   []string `json:"recommendations"`
	AITasks           []AITask `json:"ai_tasks"`
	ExactFixes        []Fix    `json:"exact_fixes"`
	FixPrompt         string   `json:"fix_prompt"`
	ExtractedData     *SEOData `json:"extracted_data,omitempty"`
	Error             string   `json:"error,omitempty"`
}

// UXRuleResults groups rule-based UX findings by category.
type UXRuleResults struct {
	ReadabilityIssues   []RuleIssue `json:"readability_issues"`
	LayoutIssues        []RuleIssue `json:"layout_issues"`
	MobileIssues        []RuleIssue `json:"mobile_issues"`
	AccessibilityIssues []RuleIssue `json:"accessibility_issues"`
}

// All flattens the grouped findings, tagging each with its category.
func (r UXRuleResults) All() []RuleIssue {
	var out []RuleIssue
	add := func(category string, issues []RuleIssue) {
		for _, i := range issues {
			i.Type = category + ":" + i.Type
			out = append(out, i)
		}
	}
	add("readability", r.ReadabilityIssues)
	add("layout", r.LayoutIssues)
	add("mobile", r.MobileIssues)
	add("accessibility", r.AccessibilityIssues)
	return out
}

// UXSummary aggregates rule-based UX findings.
type UXSummary struct {
	TotalIssues    int            `json:"total_issues"`
	BySeverity     map[string]int `json:"by_severity"`
	NeedsAttention bool           `json:"needs_attention"`
}

// UXReport is the full UX analysis result.
type UXReport struct {
	Summary         string   `json:"summary"`
	Issues          []Issue  `json:"issues"`
	Recommendations []string `json:"recommendations"`
	AITasks         []AITask `json:"ai_tasks"`
	ExactFixes      []Fix    `json:"exact_fixes"`
	FixPrompt       string   `json:"fix_prompt"`
	Error           string   `json:"error,omitempty"`
}

// CompetitorProfile describes one analyzed competitor.
type CompetitorProfile struct {
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	KeyFeatures []string `json:"key_features"`
	UXStrengths []string `json:"ux_strengths"`
	WhatToCopy  []string `json:"what_to_copy"`
}

// FeatureGap is a feature competitors have that the target site lacks.
type FeatureGap struct {
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	CompetitorsWhoHaveIt []string `json:"competitors_who_have_it"`
	Priority             string   `json:"priority"`
	WhyYouNeedIt         string   `json:"why_you_need_it"`
	StepsToFix           []string `json:"steps_to_fix"`
	CodeFix              string   `json:"code_fix"`
	FilesToModify        []string `json:"files_to_modify"`
	PromptToApplyFix     string   `json:"prompt_to_apply_fix"`
}

// CompetitorReport is the strategic competitor analysis result.
type CompetitorReport struct {
	Summary               string              `json:"summary"`
	CategoryDetected      string              `json:"category_detected"`
	CompetitorsAnalyzed   []CompetitorProfile `json:"competitors_analyzed"`
	FeatureGaps           []FeatureGap        `json:"feature_gaps"`
	Strengths             []string            `json:"strengths"`
	Weaknesses            []string            `json:"weaknesses"`
	Improvements          []string            `json:"improvements"`
	BusinessOpportunities []string            `json:"business_opportunities"`
	FinalRecommendations  []string            `json:"final_recommendations"`
	AITasks               []AITask            `json:"ai_tasks"`
	FixPrompt             string              `json:"fix_prompt"`
}

// FetchStatus records the outcome of one competitor fetch.
type FetchStatus struct {
	URL     string `json:"url"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// PlanTask is one item in an improvement plan.
type PlanTask struct {
	Issue    string `json:"issue"`
	Task     string `json:"task"`
	Priority string `json:"priority"`
}

// Plan is a short improvement plan for a site.
type Plan struct {
	Summary    string     `json:"summary"`
	Priorities []string   `json:"priorities"`
	QuickWins  []string   `json:"quick_wins"`
	LongTerm   []string   `json:"long_term"`
	Tasks      []PlanTask `json:"tasks"`
}

// AutoTestReport is the result of the fast QA health check.
type AutoTestReport struct {
	Success        bool     `json:"success"`
	URL            string   `json:"url"`
	Summary        string   `json:"summary"`
	Status         string   `json:"status"`
	ResponseTimeMS int      `json:"response_time_ms"`
	StatusCode     int      `json:"status_code"`
	ChecksPassed   []string `json:"checks_passed"`
	Issues         []Issue  `json:"issues"`
}

// FullStats summarizes a full-analysis run.
type FullStats struct {
	TotalTasks int            `json:"total_tasks"`
	BySource   map[string]int `json:"by_source"`
	UXScore    int            `json:"ux_score"`
	SEOScore   int            `json:"seo_score"`
}

// BasicAnalysis pairs the structure report with its derived tasks.
type BasicAnalysis struct {
	Structure Structure `json:"structure"`
	Tasks     []Task    `json:"tasks"`
}

// CompetitorSection is the competitor part of a full analysis.
type CompetitorSection struct {
	AutoDetected []string          `json:"auto_detected"`
	Data         *CompetitorReport `json:"data"`
}

// FullReport is the combined output of a full-analysis run.
type FullReport struct {
	Success    bool               `json:"success"`
	URL        string             `json:"url"`
	Basic      BasicAnalysis      `json:"basic"`
	UX         *UXReport          `json:"ux"`
	SEO        *SEOReport         `json:"seo"`
	Competitor *CompetitorSection `json:"competitor,omitempty"`
	AllTasks   []SourcedTask      `json:"all_tasks"`
	Stats      FullStats          `json:"stats"`
}
