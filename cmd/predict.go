package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/adaptlearn/skilltrace/internal/dkt"
)

var predictCmd = &cobra.Command{
	Use:   "predict <script.yaml>",
	Short: "Run a one-shot sequence-model prediction",
	Long: "Feeds a scripted interaction sequence straight to the in-process " +
		"sequence model and prints the raw prediction. Useful for inspecting " +
		"model behavior without running a full simulation.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		var script simScript
		if err := yaml.Unmarshal(raw, &script); err != nil {
			return fmt.Errorf("parse script: %w", err)
		}

		if len(cfg.TrackedSkills) == 0 {
			cfg.TrackedSkills = scriptSkills(script)
		}
		model, err := buildModel(cfg)
		if err != nil {
			return err
		}

		steps := make([]dkt.Step, len(script.Interactions))
		for i, in := range script.Interactions {
			steps[i] = dkt.Step{SkillID: in.Skill, Correct: in.Correct}
		}

		out, err := json.MarshalIndent(model.Predict(steps), "", "  ")
		if err != nil {
			return fmt.Errorf("marshal prediction: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}
