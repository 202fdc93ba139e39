package server

import (
	"net/http"

	"github.com/sells-group/sitecoach/internal/builder"
	"github.com/sells-group/sitecoach/internal/model"
)

type ideaRequest struct {
	Idea string `json:"idea"`
}

func (s *Server) handleBuildPlan(w http.ResponseWriter, r *http.Request) {
	var req ideaRequest
	if !decode(w, r, &req) {
		return
	}

	bp, err := s.builder.GenerateBlueprint(r.Context(), req.Idea)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":   false,
			"error":     err.Error(),
			"blueprint": nil,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"idea":      req.Idea,
		"blueprint": bp,
	})
}

func (s *Server) handleWorkflow(w http.ResponseWriter, r *http.Request) {
	var req ideaRequest
	if !decode(w, r, &req) {
		return
	}

	bp, err := s.builder.GenerateBlueprint(r.Context(), req.Idea)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  false,
			"error":    err.Error(),
			"workflow": nil,
		})
		return
	}

	wf, err := builder.CreateWorkflow(bp, req.Idea)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  false,
			"error":    err.Error(),
			"workflow": nil,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"idea":      req.Idea,
		"blueprint": bp,
		"workflow":  wf,
		"prompts":   builder.GenerateAllPrompts(wf),
		"next_step": builder.NextStep(wf),
	})
}

type workflowUpdateRequest struct {
	Workflow model.Workflow `json:"workflow"`
	StepID   int            `json:"step_id"`
	Status   string         `json:"status"`
}

func (s *Server) handleWorkflowUpdate(w http.ResponseWriter, r *http.Request) {
	var req workflowUpdateRequest
	if !decode(w, r, &req) {
		return
	}

	updated := builder.UpdateStepStatus(req.Workflow, req.StepID, req.Status)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"workflow":         updated,
		"next_step":        builder.NextStep(updated),
		"testing_unlocked": updated.TestingUnlocked,
	})
}

type promptRequest struct {
	Step    model.BuildStep `json:"step"`
	Context string          `json:"context"`
}

func (s *Server) handleGeneratePrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if !decode(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"prompt":  builder.StepPrompt(req.Step),
		"step":    req.Step,
	})
}

type fixErrorRequest struct {
	ErrorMessage string `json:"error_message"`
	Context      string `json:"context"`
}

func (s *Server) handleFixError(w http.ResponseWriter, r *http.Request) {
	var req fixErrorRequest
	if !decode(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"prompt":  builder.FixPrompt(req.ErrorMessage, req.Context),
	})
}
