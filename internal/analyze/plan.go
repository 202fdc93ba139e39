package analyze

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/sitecoach/internal/ai"
	"github.com/sells-group/sitecoach/internal/content"
	"github.com/sells-group/sitecoach/internal/model"
)

// GeneratePlan produces a short improvement plan from the page content.
// Always returns a populated plan; on model failure the lists are empty.
func (a *Analyzer) GeneratePlan(ctx context.Context, html, url string) model.Plan {
	zap.L().Info("plan generation started", zap.String("url", url))

	limited := content.Reduce(html, 2000)
	if len(limited) > 1500 {
		limited = limited[:1500]
	}

	prompt := fmt.Sprintf(`Analyze this website and create a short improvement plan.

URL: %s
HTML snippet:
%s

Respond ONLY with valid JSON. No markdown, no explanation:
{
  "summary": "One sentence about the website",
  "priorities": ["priority 1", "priority 2", "priority 3"],
  "quick_wins": ["quick win 1", "quick win 2"],
  "long_term": ["long term goal 1", "long term goal 2"],
  "tasks": [
    {"issue": "Problem", "task": "What to do", "priority": "high"}
  ]
}

Keep everything SHORT. Maximum 5 tasks.`, url, limited)

	result := a.invoker.SafeJSON(ctx, prompt, ai.CallOptions{
		Model:     a.invoker.DefaultModel(),
		CacheKey:  "plan-" + url,
		MaxTokens: 600,
		Feature:   "plan",
	})

	if errMsg, ok := result["error"]; ok {
		zap.L().Warn("plan model call failed", zap.String("url", url), zap.Any("error", errMsg))
	}

	var tasks []model.PlanTask
	for _, m := range asMapSlice(result["tasks"], 5) {
		tasks = append(tasks, model.PlanTask{
			Issue:    asString(m["issue"], "Issue"),
			Task:     asString(m["task"], ""),
			Priority: asString(m["priority"], "medium"),
		})
	}

	return model.Plan{
		Summary:    asString(result["summary"], "Plan generated"),
		Priorities: asStringSlice(result["priorities"], 5),
		QuickWins:  asStringSlice(result["quick_wins"], 3),
		LongTerm:   asStringSlice(result["long_term"], 3),
		Tasks:      tasks,
	}
}
