package builder

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sitecoach/internal/model"
)

var areaToPriority = map[string]string{
	"frontend":    "A",
	"backend":     "A",
	"database":    "A",
	"ai_logic":    "B",
	"integration": "B",
	"ux":          "C",
}

// CreateWorkflow turns a blueprint into a trackable guided workflow with
// phase progress, step grouping, and prompt generation.
func CreateWorkflow(bp model.Blueprint, idea string) (model.Workflow, error) {
	if len(bp.BuildSteps) == 0 && len(bp.Phases) == 0 && bp.AppSummary == "" {
		return model.Workflow{}, eris.New("No building plan provided")
	}

	steps := make([]model.BuildStep, len(bp.BuildSteps))
	copy(steps, bp.BuildSteps)
	if len(steps) == 0 {
		steps = defaultSteps(idea)
	}

	for i := range steps {
		steps[i].Order = i + 1
		if steps[i].Status == "" {
			steps[i].Status = model.StepPending
		}
		if steps[i].ID == 0 {
			steps[i].ID = i + 1
		}
		if steps[i].Priority == "" {
			steps[i].Priority = priorityFor(steps[i].Area)
		}
		if steps[i].Category == "" {
			steps[i].Category = steps[i].Area
		}
	}

	phases := bp.Phases
	if len(phases) == 0 {
		phases = phasesFromSteps(steps)
	}

	summary := bp.AppSummary
	if summary == "" {
		summary = "Let's build something awesome!"
	}

	w := model.Workflow{
		Idea:               idea,
		AppSummary:         summary,
		TechStack:          bp.TechStack,
		DirectoryStructure: bp.DirectoryStructure,
		UserFlow:           bp.UserFlow,
		Phases:             phases,
		BuildSteps:         steps,
		ProgressHint:       bp.ProgressHint,
	}
	if w.ProgressHint == "" {
		w.ProgressHint = "Follow each step to build your app!"
	}
	recalcWorkflow(&w)

	zap.L().Info("workflow created",
		zap.Int("steps", len(steps)), zap.Int("phases", len(phases)))
	return w, nil
}

func priorityFor(area string) string {
	if p, ok := areaToPriority[area]; ok {
		return p
	}
	return "B"
}

// UpdateStepStatus sets a step's status and recalculates all progress
// tracking. Unknown step IDs leave the workflow unchanged apart from the
// recalculation.
func UpdateStepStatus(w model.Workflow, stepID int, status string) model.Workflow {
	for i := range w.BuildSteps {
		if w.BuildSteps[i].ID == stepID {
			w.BuildSteps[i].Status = status
			break
		}
	}
	recalcWorkflow(&w)
	return w
}

// recalcWorkflow rebuilds every derived field from the step list.
func recalcWorkflow(w *model.Workflow) {
	total := len(w.BuildSteps)
	completed := 0
	for _, s := range w.BuildSteps {
		if s.Status == model.StepCompleted {
			completed++
		}
	}
	percent := 0
	if total > 0 {
		percent = completed * 100 / total
	}

	w.Progress = model.Progress{
		Total:       total,
		Completed:   completed,
		Percent:     percent,
		CurrentStep: currentStepNumber(w.BuildSteps),
		NextStep:    nextStepID(w.BuildSteps),
	}

	w.PhaseProgress = calcPhaseProgress(w.Phases, w.BuildSteps)
	w.CurrentPhase = currentPhase(w.PhaseProgress)

	grouped := map[string][]model.BuildStep{"A": {}, "B": {}, "C": {}}
	for _, s := range w.BuildSteps {
		grouped[s.Priority] = append(grouped[s.Priority], s)
	}
	w.GroupedSteps = grouped

	w.TestingUnlocked = percent >= 70
}

func currentStepNumber(steps []model.BuildStep) int {
	for _, s := range steps {
		if s.Status != model.StepCompleted {
			if s.Order > 0 {
				return s.Order
			}
			return 1
		}
	}
	return len(steps)
}

func nextStepID(steps []model.BuildStep) int {
	for _, s := range steps {
		if s.Status != model.StepCompleted {
			return s.ID
		}
	}
	return 0
}

func calcPhaseProgress(phases []model.Phase, steps []model.BuildStep) []model.PhaseProgress {
	statusByID := make(map[int]string, len(steps))
	for _, s := range steps {
		statusByID[s.ID] = s.Status
	}

	progress := make([]model.PhaseProgress, 0, len(phases))
	for _, p := range phases {
		total := len(p.Steps)
		completed := 0
		for _, id := range p.Steps {
			if statusByID[id] == model.StepCompleted {
				completed++
			}
		}
		percent := 0
		if total > 0 {
			percent = completed * 100 / total
		}
		status := model.StepPending
		switch {
		case total > 0 && percent == 100:
			status = model.StepCompleted
		case percent > 0:
			status = model.StepInProgress
		}
		progress = append(progress, model.PhaseProgress{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Total:       total,
			Completed:   completed,
			Percent:     percent,
			Status:      status,
		})
	}
	return progress
}

func currentPhase(progress []model.PhaseProgress) model.PhaseStatus {
	for _, p := range progress {
		if p.Status != model.StepCompleted {
			return model.PhaseStatus{
				ID:            p.ID,
				Name:          p.Name,
				Description:   p.Description,
				Percent:       p.Percent,
				Encouragement: encouragement(p.Percent),
			}
		}
	}
	return model.PhaseStatus{
		ID:            "Z",
		Name:          "Complete",
		Description:   "Your app is ready!",
		Percent:       100,
		Encouragement: "Congratulations! You built an app! Time to publish!",
	}
}

func encouragement(percent int) string {
	switch {
	case percent == 0:
		return "Let's get started! This is going to be awesome!"
	case percent < 50:
		return "Great progress! Keep going, you're doing amazing!"
	case percent < 100:
		return "Almost done with this phase! You're so close!"
	default:
		return "Phase complete! On to the next adventure!"
	}
}

// NextStep returns the first uncompleted step with its prompt, or a
// completion message when everything is done.
func NextStep(w model.Workflow) model.NextStep {
	for i := range w.BuildSteps {
		if w.BuildSteps[i].Status != model.StepCompleted {
			step := w.BuildSteps[i]
			return model.NextStep{
				Success: true,
				Step:    &step,
				Prompt:  StepPrompt(step),
			}
		}
	}
	return model.NextStep{
		Success: true,
		Message: "All steps completed! Your app is ready for testing and publishing!",
	}
}

// GenerateAllPrompts pre-renders the build prompt for every step, keyed by
// step ID.
func GenerateAllPrompts(w model.Workflow) map[int]string {
	prompts := make(map[int]string, len(w.BuildSteps))
	for _, s := range w.BuildSteps {
		prompts[s.ID] = StepPrompt(s)
	}
	return prompts
}
