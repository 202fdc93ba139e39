package builder

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sitecoach/internal/ai"
	"github.com/sells-group/sitecoach/internal/model"
)

const maxBlueprintSteps = 50

// GenerateBlueprint converts an app idea into a complete phased build plan.
// The plan covers the whole system, with each step small enough to apply in
// one sitting.
func (b *Builder) GenerateBlueprint(ctx context.Context, idea string) (model.Blueprint, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return model.Blueprint{}, eris.New("Please tell me what app you want to build!")
	}
	zap.L().Info("blueprint generation started", zap.String("idea", prefix(idea, 80)))

	result := b.invoker.SafeJSON(ctx, blueprintPrompt(idea), ai.CallOptions{
		Model:     b.invoker.DefaultModel(),
		CacheKey:  "blueprint-expert-" + prefix(idea, 100),
		MaxTokens: 6000,
		Feature:   "blueprint",
	})

	if errMsg, ok := result["error"]; ok {
		msg := str(errMsg, "blueprint generation failed")
		zap.L().Warn("blueprint model call failed", zap.String("error", msg))
		return model.Blueprint{}, eris.New(msg)
	}

	bp := parseBlueprint(result, idea)
	zap.L().Info("blueprint generation complete",
		zap.Int("steps", len(bp.BuildSteps)), zap.Int("phases", len(bp.Phases)))
	return bp, nil
}

func blueprintPrompt(idea string) string {
	return fmt.Sprintf(`You are a senior full-stack engineer who explains things so a 12-year-old can follow.

The user wants to build:
%q

Create a COMPLETE build plan that covers the ENTIRE system architecture.

CRITICAL RULES:
1. Cover ALL features mentioned in the idea - do NOT stop after login/homepage
2. Plan until a working MVP of the WHOLE system is possible
3. For complex systems (AI agents, multi-user, dashboards), you MUST include ALL components
4. Each step modifies only 1-2 files
5. Each step does ONE thing only
6. Use simple words a 12-year-old can understand, but keep the engineering professional
7. Keep build_prompt under 50 words
8. Aim for 25-40 solid steps that cover the whole system

SELF-CHECK BEFORE RESPONDING:
Ask yourself: "If this were my production app, is anything big missing?"
- Did I cover frontend, backend, database, AI logic (if any), storage, and basic testing?
- Does every core feature from the idea have at least one build step?
- If the user mentioned AI agents, did I include ALL of them?
- If the user mentioned dashboards, did I include the dashboard views?
- If the user mentioned file uploads, did I include upload AND processing flows?

If anything important is missing, ADD the missing steps.

PHASES (use these exact names):
- Phase A – Foundation: project structure, basic frontend shell, basic backend, routing, auth
- Phase B – Core Data & Storage: database tables, storage setup, table relationships
- Phase C – File Upload & Organization: upload flows, file processing, organization logic
- Phase D – AI Agents: each agent's logic, how they communicate, database interactions
- Phase E – Student Dashboard & UI: main views, lists, progress displays, action buttons
- Phase F – Lessons & Quizzes: content generation, scoring, feedback, progress updates
- Phase G – Quality & Polish: error states, loading states, basic tests, dark mode

Skip phases that don't apply to the idea (e.g., skip Phase C if no file uploads).

OUTPUT FORMAT (STRICT JSON ONLY):
{
  "app_summary": "1-2 sentence overview in simple language",
  "tech_stack": {
    "frontend": "HTML/CSS/JS or React",
    "backend": "Python/FastAPI",
    "database": "PostgreSQL or Supabase",
    "ai": "OpenAI API or none",
    "storage": "local or Supabase Storage or none"
  },
  "directory_structure": [
    "main.py - The brain of your app",
    "templates/ - HTML pages your users see"
  ],
  "phases": [
    {
      "id": "A",
      "name": "Phase A – Foundation",
      "description": "Setting up the basics - like building the foundation of a house!",
      "steps": [1, 2, 3]
    }
  ],
  "build_steps": [
    {
      "id": 1,
      "title": "Create the homepage",
      "area": "frontend",
      "why_it_matters": "Every app needs a front door - this is yours!",
      "files_to_edit": ["templates/index.html"],
      "micro_step_instructions": [
        "Step 1: Create a new file called index.html",
        "Step 2: Add a welcome message",
        "Step 3: Add a button for the main action"
      ],
      "build_prompt": "Create templates/index.html with a welcome page. Add heading and button. Keep minimal.",
      "validation_check": [
        "Page loads without errors",
        "Welcome message is visible",
        "Button appears and can be clicked"
      ]
    }
  ],
  "user_flow": ["Step 1: User does X", "Step 2: User sees Y"],
  "progress_hint": "These steps will build your complete working app!"
}

AREA VALUES (pick one per step):
- frontend: UI components, pages, styling
- backend: API routes, server logic
- database: tables, queries, migrations
- ai_logic: AI agent code, prompts, responses
- integration: connecting parts together
- ux: polish, error states, loading states

STEP TONE EXAMPLES:
- "This step makes a home page – like the front door of your app."
- "This step teaches the computer how to store student progress."
- "This step creates the AI teacher's brain – it decides what to teach next."

STRICT JSON RULES:
1. Output ONLY valid JSON - no markdown, no code blocks, no text before or after
2. Start with { and end with }
3. All arrays contain only strings (except build_steps and phases which contain objects)
4. NO trailing commas
5. Escape quotes with \"
6. NO comments in JSON

Your response must be 100%% valid JSON starting with { and ending with }.`, idea)
}

func parseBlueprint(result map[string]any, idea string) model.Blueprint {
	summary := str(result["app_summary"], "Building: "+prefix(idea, 50))

	stack, _ := result["tech_stack"].(map[string]any)
	techStack := model.TechStack{
		Frontend: str(stack["frontend"], "HTML/CSS/JS"),
		Backend:  str(stack["backend"], "Python/FastAPI"),
		Database: str(stack["database"], "PostgreSQL"),
		AI:       str(stack["ai"], "none"),
		Storage:  str(stack["storage"], "local"),
	}

	dirs := strList(result["directory_structure"])
	if len(dirs) == 0 {
		dirs = []string{
			"main.py - Your app's brain",
			"templates/ - HTML pages",
			"static/ - CSS and images",
			"models/ - Database structures",
		}
	}
	if len(dirs) > 12 {
		dirs = dirs[:12]
	}

	var steps []model.BuildStep
	for i, m := range mapList(result["build_steps"]) {
		if i >= maxBlueprintSteps {
			break
		}
		step := model.BuildStep{
			ID:              intVal(m["id"], i+1),
			Title:           str(m["title"], fmt.Sprintf("Step %d", i+1)),
			Area:            str(m["area"], "feature"),
			WhyItMatters:    str(m["why_it_matters"], str(m["why_this_step_matters"], "")),
			FilesToEdit:     strList(m["files_to_edit"]),
			MicroSteps:      strList(m["micro_step_instructions"]),
			BuildPrompt:     str(m["build_prompt"], str(m["replit_prompt"], "")),
			ValidationCheck: strList(m["validation_check"]),
			Status:          model.StepPending,
		}
		if len(step.FilesToEdit) == 0 {
			step.FilesToEdit = []string{"main.py"}
		}
		if len(step.ValidationCheck) == 0 {
			step.ValidationCheck = []string{"Check if it works"}
		}
		if len(step.MicroSteps) == 0 {
			step.MicroSteps = []string{
				"Step 1: Open " + step.FilesToEdit[0],
				"Step 2: Make the changes described",
				"Step 3: Save and test",
			}
		}
		steps = append(steps, step)
	}
	if len(steps) == 0 {
		steps = defaultSteps(idea)
	}

	var phases []model.Phase
	for _, m := range mapList(result["phases"]) {
		phases = append(phases, model.Phase{
			ID:          str(m["id"], "A"),
			Name:        str(m["name"], "Phase"),
			Description: str(m["description"], "Building this part of your app"),
			Steps:       intList(m["steps"]),
		})
	}
	if len(phases) == 0 {
		phases = phasesFromSteps(steps)
	}

	flow := strList(result["user_flow"])
	if len(flow) == 0 {
		flow = []string{"Open the app", "Use the main feature", "See the result"}
	}
	if len(flow) > 8 {
		flow = flow[:8]
	}

	return model.Blueprint{
		AppSummary:         summary,
		TechStack:          techStack,
		DirectoryStructure: dirs,
		Phases:             phases,
		BuildSteps:         steps,
		UserFlow:           flow,
		ProgressHint:       str(result["progress_hint"], "Follow each step to build your complete app!"),
	}
}

// defaultSteps is the minimal plan used when the model returns no steps.
func defaultSteps(idea string) []model.BuildStep {
	return []model.BuildStep{
		{
			ID:           1,
			Title:        "Set up project structure",
			Area:         "backend",
			WhyItMatters: "Like building a house - you need the foundation first!",
			FilesToEdit:  []string{"main.py"},
			MicroSteps: []string{
				"Step 1: Create main.py if it doesn't exist",
				"Step 2: Add the basic FastAPI setup",
				"Step 3: Run it to make sure it works",
			},
			BuildPrompt:     "Create FastAPI app in main.py with '/' route returning 'Hello World'. Run on port 5000.",
			ValidationCheck: []string{"Server starts without errors", "Visiting / shows Hello World"},
			Status:          model.StepPending,
		},
		{
			ID:           2,
			Title:        "Create the homepage",
			Area:         "frontend",
			WhyItMatters: "This is the front door of your app!",
			FilesToEdit:  []string{"templates/index.html"},
			MicroSteps: []string{
				"Step 1: Create templates folder",
				"Step 2: Create index.html inside it",
				"Step 3: Add a welcome message",
			},
			BuildPrompt:     fmt.Sprintf("Create templates/index.html for: %s. Add heading and button.", prefix(idea, 50)),
			ValidationCheck: []string{"Page loads", "Heading is visible", "Button appears"},
			Status:          model.StepPending,
		},
		{
			ID:           3,
			Title:        "Add basic styling",
			Area:         "frontend",
			WhyItMatters: "People like apps that look good!",
			FilesToEdit:  []string{"static/style.css"},
			MicroSteps: []string{
				"Step 1: Create static folder",
				"Step 2: Create style.css",
				"Step 3: Add modern styling",
			},
			BuildPrompt:     "Create static/style.css with modern styling: nice fonts, colors, button effects.",
			ValidationCheck: []string{"CSS file loads", "Page looks styled"},
			Status:          model.StepPending,
		},
		{
			ID:           4,
			Title:        "Set up database",
			Area:         "database",
			WhyItMatters: "Your app needs to remember things!",
			FilesToEdit:  []string{"models.py", "database.py"},
			MicroSteps: []string{
				"Step 1: Create database.py for connection",
				"Step 2: Create models.py for tables",
				"Step 3: Test the connection",
			},
			BuildPrompt:     "Create database.py with PostgreSQL connection using SQLAlchemy. Add models.py with basic User table.",
			ValidationCheck: []string{"Database connects", "Tables exist"},
			Status:          model.StepPending,
		},
		{
			ID:           5,
			Title:        "Add main feature",
			Area:         "backend",
			WhyItMatters: "This is what makes your app special!",
			FilesToEdit:  []string{"main.py"},
			MicroSteps: []string{
				"Step 1: Add the main API route",
				"Step 2: Connect to database",
				"Step 3: Return the result",
			},
			BuildPrompt:     fmt.Sprintf("Add main feature for: %s. Create POST route, connect to database, return JSON.", prefix(idea, 40)),
			ValidationCheck: []string{"Route responds", "Returns correct data"},
			Status:          model.StepPending,
		},
	}
}
