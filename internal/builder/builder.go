// Package builder turns an app idea into a phased build plan and tracks it
// as a guided workflow. The model proposes the plan; everything here
// validates, defaults, and recomputes progress so callers always get a
// usable structure back.
package builder

import (
	"context"
	"fmt"
	"sort"

	"github.com/sells-group/sitecoach/internal/ai"
	"github.com/sells-group/sitecoach/internal/model"
)

// Invoker issues model calls. Satisfied by *ai.Invoker.
type Invoker interface {
	SafeJSON(ctx context.Context, prompt string, opts ai.CallOptions) map[string]any
	DefaultModel() string
}

// Builder generates blueprints and workflows.
type Builder struct {
	invoker Invoker
}

// New creates a Builder.
func New(invoker Invoker) *Builder {
	return &Builder{invoker: invoker}
}

func str(v any, fallback string) string {
	switch s := v.(type) {
	case nil:
		return fallback
	case string:
		if s == "" {
			return fallback
		}
		return s
	default:
		return fmt.Sprintf("%v", s)
	}
}

func strList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, str(item, ""))
	}
	return out
}

func mapList(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func intVal(v any, fallback int) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return fallback
	}
}

func intList(v any) []int {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(list))
	for _, item := range list {
		out = append(out, intVal(item, 0))
	}
	return out
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var phaseDescriptions = map[string]string{
	"A": "Setting up the basics - like building the foundation of a house!",
	"B": "Adding the main features - your app is taking shape!",
	"C": "Setting up file uploads - so your app can receive files!",
	"D": "Creating the AI brains - this is where the magic happens!",
	"E": "Building the main screens - what your users will see!",
	"F": "Adding lessons and quizzes - the learning parts!",
	"G": "Making it perfect - the final polish!",
}

func phaseDescription(id string) string {
	if d, ok := phaseDescriptions[id]; ok {
		return d
	}
	return "Building more features!"
}

var areaToPhase = map[string]struct{ id, name string }{
	"frontend":    {"A", "Phase A – Foundation"},
	"backend":     {"B", "Phase B – Core Logic"},
	"database":    {"B", "Phase B – Core Data"},
	"ai_logic":    {"D", "Phase D – AI Agents"},
	"integration": {"E", "Phase E – Integration"},
	"ux":          {"G", "Phase G – Polish"},
}

// phasesFromSteps derives phases when the model did not supply them,
// grouping steps by their area.
func phasesFromSteps(steps []model.BuildStep) []model.Phase {
	groups := make(map[string]*model.Phase)
	for _, s := range steps {
		id, name := "B", "Phase B – Building"
		if p, ok := areaToPhase[s.Area]; ok {
			id, name = p.id, p.name
		}
		g, ok := groups[id]
		if !ok {
			g = &model.Phase{ID: id, Name: name, Description: phaseDescription(id)}
			groups[id] = g
		}
		g.Steps = append(g.Steps, s.ID)
	}

	phases := make([]model.Phase, 0, len(groups))
	for _, g := range groups {
		phases = append(phases, *g)
	}
	sort.Slice(phases, func(i, j int) bool { return phases[i].ID < phases[j].ID })
	return phases
}
