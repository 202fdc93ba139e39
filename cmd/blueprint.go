package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/sitecoach/internal/builder"
	"github.com/sells-group/sitecoach/internal/model"
)

var blueprintAsWorkflow bool

var blueprintCmd = &cobra.Command{
	Use:   "blueprint <idea...>",
	Short: "Turn an app idea into a step-by-step build plan",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := newEnv()
		idea := strings.Join(args, " ")

		bp, err := e.builder.GenerateBlueprint(cmd.Context(), idea)
		if err != nil {
			return err
		}

		if !blueprintAsWorkflow {
			return printJSON(bp)
		}

		wf, err := builder.CreateWorkflow(bp, idea)
		if err != nil {
			return err
		}
		return printJSON(struct {
			Workflow model.Workflow `json:"workflow"`
			Prompts  map[int]string `json:"prompts"`
			NextStep model.NextStep `json:"next_step"`
		}{wf, builder.GenerateAllPrompts(wf), builder.NextStep(wf)})
	},
}

func init() {
	blueprintCmd.Flags().BoolVar(&blueprintAsWorkflow, "workflow", false, "convert the blueprint into a trackable workflow")
	rootCmd.AddCommand(blueprintCmd)
}
