package builder

import (
	"fmt"
	"strings"

	"github.com/sells-group/sitecoach/internal/model"
)

// StepPrompt returns the ready-to-use prompt for a step, rendering a
// minimal one when the blueprint did not ship its own.
func StepPrompt(step model.BuildStep) string {
	if step.BuildPrompt != "" {
		return step.BuildPrompt
	}

	files := step.FilesToEdit
	if len(files) == 0 {
		files = []string{"main.py"}
	}
	if len(files) > 2 {
		files = files[:2]
	}

	return fmt.Sprintf(`%s

%s

Files: %s

Keep changes minimal. Do only this task.`, step.Title, step.WhyItMatters, strings.Join(files, ", "))
}

// FixPrompt renders a minimal prompt asking for the smallest possible fix
// for an error. Context is optional and truncated hard to keep cost down.
func FixPrompt(errorMessage, context string) string {
	if strings.TrimSpace(errorMessage) == "" {
		return "Please paste the error message you're seeing."
	}

	short := errorMessage
	if len(short) > 400 {
		short = short[:400]
	}

	contextLine := ""
	if context != "" {
		if len(context) > 150 {
			context = context[:150]
		}
		contextLine = "Context: " + context
	}

	return fmt.Sprintf(`Fix this error:

%s

%s

Rules:
- Smallest fix only
- Don't change other things
- Explain in 1 sentence what you fixed`, short, contextLine)
}

// StepFixPrompt builds a fix prompt scoped to the step being worked on.
func StepFixPrompt(errorMessage string, step *model.BuildStep) string {
	context := ""
	if step != nil {
		context = fmt.Sprintf("Working on: %s - %s", step.Title, step.WhyItMatters)
	}
	return FixPrompt(errorMessage, context)
}
