package analyze

import (
	"context"
	"fmt"
	"strings"

	"github.com/sells-group/sitecoach/internal/ai"
	"github.com/sells-group/sitecoach/internal/model"
)

// taskMappings turn known structure issues into concrete tasks.
var taskMappings = map[string]struct{ task, prompt string }{
	"missing title": {
		task:   "Add a title tag to the page.",
		prompt: "Add a <title>Your Page Title</title> tag inside the <head> section. Make it descriptive and under 60 characters.",
	},
	"missing meta description": {
		task:   "Add a meta description tag.",
		prompt: "Add a <meta name='description' content='Brief description of your page'> tag inside the <head> section. Keep it under 160 characters.",
	},
	"no H1 tags": {
		task:   "Add a main heading (H1) to the page.",
		prompt: "Add one clear <h1> tag that describes the main topic of the page. This should be unique and meaningful.",
	},
	"multiple H1 tags": {
		task:   "Use only one H1 tag per page.",
		prompt: "Review your page and keep only one <h1> tag. The other heading levels should be <h2>, <h3>, etc. H1 should be for the main page title only.",
	},
	"empty body": {
		task:   "Add meaningful content to the page body.",
		prompt: "Add content inside the <body> tag. The page appears empty or has no visible text content.",
	},
}

// GenerateTasks converts structure issues into actionable tasks, enriching
// each with a model-written explanation via the cheap model.
func (a *Analyzer) GenerateTasks(ctx context.Context, basicIssues []string) []model.Task {
	tasks := make([]model.Task, 0, len(basicIssues))

	for _, issue := range basicIssues {
		baseTask := "Fix: " + issue
		basePrompt := "Address the following issue: " + issue
		if m, ok := taskMappings[issue]; ok {
			baseTask = m.task
			basePrompt = m.prompt
		}

		explanation, aiPrompt := a.improveTask(ctx, issue, baseTask)

		tasks = append(tasks, model.Task{
			Issue:         issue,
			Task:          baseTask,
			Prompt:        basePrompt,
			AIExplanation: explanation,
			AIPrompt:      aiPrompt,
		})
	}

	return tasks
}

// improveTask asks the cheap model for a short explanation and an improved
// fix prompt. Falls back to the rule-based task text when the output doesn't
// match the expected format.
func (a *Analyzer) improveTask(ctx context.Context, issue, baseTask string) (explanation, aiPrompt string) {
	prompt := fmt.Sprintf(`You are a website improvement assistant. Given an issue and a basic task, provide:
1. A brief explanation (1-2 sentences) of why this issue matters for the website
2. A simple, clear prompt that a developer can copy-paste to fix it

Keep both responses short and avoid code blocks. Use plain English.

Issue: %s
Basic task: %s

Respond in this exact format:
EXPLANATION: [brief explanation]
PROMPT: [copy-paste prompt]`, issue, baseTask)

	key := "improve-task-" + issue
	if len(key) > 63 {
		key = key[:63]
	}

	out := a.invoker.Invoke(ctx, prompt, ai.CallOptions{
		Model:     a.invoker.CheapModel(),
		CacheKey:  key,
		MaxTokens: 200,
		Feature:   "task_improvement",
	})

	if !strings.Contains(out, "EXPLANATION:") || !strings.Contains(out, "PROMPT:") {
		return baseTask, baseTask
	}

	parts := strings.SplitN(out, "PROMPT:", 2)
	explanation = strings.TrimSpace(strings.Replace(parts[0], "EXPLANATION:", "", 1))
	aiPrompt = strings.TrimSpace(parts[1])

	if len(explanation) > 200 {
		explanation = explanation[:200]
	}
	if len(aiPrompt) > 300 {
		aiPrompt = aiPrompt[:300]
	}
	return explanation, aiPrompt
}
