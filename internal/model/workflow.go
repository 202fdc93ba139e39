package model

// TechStack is the recommended stack for a blueprint.
type TechStack struct {
	Frontend string `json:"frontend"`
	Backend  string `json:"backend"`
	Database string `json:"database"`
	AI       string `json:"ai"`
	Storage  string `json:"storage"`
}

// Phase groups build steps into a named stage of the plan.
type Phase struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Steps       []int  `json:"steps"`
}

// Step statuses as tracked by the workflow.
const (
	StepPending    = "pending"
	StepInProgress = "in_progress"
	StepCompleted  = "completed"
)

// BuildStep is one small unit of work in a blueprint.
type BuildStep struct {
	ID              int      `json:"id"`
	Title           string   `json:"title"`
	Area            string   `json:"area"`
	WhyItMatters    string   `json:"why_it_matters"`
	FilesToEdit     []string `json:"files_to_edit"`
	MicroSteps      []string `json:"micro_step_instructions"`
	BuildPrompt     string   `json:"build_prompt"`
	ValidationCheck []string `json:"validation_check"`
	Status          string   `json:"status"`
	Order           int      `json:"order,omitempty"`
	Priority        string   `json:"priority,omitempty"`
	Category        string   `json:"category,omitempty"`
}

// Blueprint is a complete build plan for an app idea.
type Blueprint struct {
	AppSummary         string      `json:"app_summary"`
	TechStack          TechStack   `json:"tech_stack"`
	DirectoryStructure []string    `json:"directory_structure"`
	Phases             []Phase     `json:"phases"`
	BuildSteps         []BuildStep `json:"build_steps"`
	UserFlow           []string    `json:"user_flow"`
	ProgressHint       string      `json:"progress_hint"`
}

// Progress tracks overall workflow completion.
type Progress struct {
	Total       int `json:"total"`
	Completed   int `json:"completed"`
	Percent     int `json:"percent"`
	CurrentStep int `json:"current_step"`
	NextStep    int `json:"next_step"`
}

// PhaseProgress tracks completion within one phase.
type PhaseProgress struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Total       int    `json:"total"`
	Completed   int    `json:"completed"`
	Percent     int    `json:"percent"`
	Status      string `json:"status"`
}

// PhaseStatus describes the phase the user is currently in.
type PhaseStatus struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Percent       int    `json:"percent"`
	Encouragement string `json:"encouragement"`
}

// Workflow is a blueprint turned into a trackable guided build.
type Workflow struct {
	Idea               string                 `json:"idea"`
	AppSummary         string                 `json:"app_summary"`
	TechStack          TechStack              `json:"tech_stack"`
	DirectoryStructure []string               `json:"directory_structure"`
	UserFlow           []string               `json:"user_flow"`
	Phases             []Phase                `json:"phases"`
	PhaseProgress      []PhaseProgress        `json:"phase_progress"`
	BuildSteps         []BuildStep            `json:"build_steps"`
	GroupedSteps       map[string][]BuildStep `json:"grouped_steps"`
	Progress           Progress               `json:"progress"`
	CurrentPhase       PhaseStatus            `json:"phase"`
	ProgressHint       string                 `json:"progress_hint"`
	TestingUnlocked    bool                   `json:"testing_unlocked"`
}

// NextStep is the next actionable step in a workflow, with its prompt ready.
type NextStep struct {
	Success bool       `json:"success"`
	Step    *BuildStep `json:"step"`
	Prompt  string     `json:"prompt,omitempty"`
	Message string     `json:"message,omitempty"`
}
