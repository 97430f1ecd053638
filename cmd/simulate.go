package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/adaptlearn/skilltrace/internal/adaptive"
	"github.com/adaptlearn/skilltrace/internal/config"
	"github.com/adaptlearn/skilltrace/internal/knowledge"
)

// simScript is the YAML shape a simulation run consumes.
type simScript struct {
	StudentID    string `yaml:"student_id"`
	Interactions []struct {
		Skill        string   `yaml:"skill"`
		Correct      bool     `yaml:"correct"`
		ResponseTime *float64 `yaml:"response_time"`
	} `yaml:"interactions"`
}

var simulateCmd = &cobra.Command{
	Use:   "simulate <script.yaml>",
	Short: "Replay an interaction script through the engine",
	Long: "Runs a scripted answer sequence through a fresh session and prints the " +
		"engine's per-turn decisions. Stands in for the application that would " +
		"normally call the engine per answered question.",
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
		if len(script.Interactions) == 0 {
			return fmt.Errorf("script has no interactions")
		}

		// A script can stand on its own: when the config does not pin
		// the tracked skills, derive them from the script.
		if len(cfg.TrackedSkills) == 0 {
			cfg.TrackedSkills = scriptSkills(script)
		}

		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		gw, err := buildGateway(cfg, log)
		if err != nil {
			return err
		}
		engine := adaptive.New(gw, tunablesFrom(cfg), log)
		state := knowledge.NewState(cfg.Mastery.Threshold)

		ctx := cmd.Context()
		fmt.Printf("%-4s  %-20s  %-3s  %-10s  %-6s  %s\n", "#", "Skill", "OK", "Next", "Conf", "Reason")
		for i, in := range script.Interactions {
			d := engine.ProcessInteraction(ctx, state, in.Skill, in.Correct, in.ResponseTime)
			ok := "✓"
			if !in.Correct {
				ok = "✗"
			}
			fmt.Printf("%-4d  %-20s  %-3s  %-10s  %.3f  %s\n",
				i+1, in.Skill, ok, d.NextDifficulty, d.CombinedConfidence, d.AdaptiveReason)
		}

		if out, _ := cmd.Flags().GetString("state-out"); out != "" {
			snap, err := json.MarshalIndent(state, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal state: %w", err)
			}
			if err := os.WriteFile(out, snap, 0o644); err != nil {
				return fmt.Errorf("write state snapshot: %w", err)
			}
			fmt.Printf("\nstate snapshot written to %s\n", out)
		}
		return nil
	},
}

func init() {
	simulateCmd.Flags().String("state-out", "", "Write the final session state snapshot to this JSON file")
}

func scriptSkills(script simScript) []string {
	seen := make(map[string]bool)
	var skills []string
	for _, in := range script.Interactions {
		if !seen[in.Skill] {
			seen[in.Skill] = true
			skills = append(skills, in.Skill)
		}
	}
	return skills
}

func tunablesFrom(cfg *config.Config) adaptive.Tunables {
	return adaptive.Tunables{
		BKTWeight:      cfg.Fusion.BKTWeight,
		SequenceWeight: cfg.Fusion.SequenceWeight,
		VeryEasyMax:    cfg.Bands.VeryEasyMax,
		EasyMax:        cfg.Bands.EasyMax,
		ModerateMax:    cfg.Bands.ModerateMax,
		StreakTarget:   cfg.Mastery.StreakTarget,
		BKTOverrides:   cfg.BKTOverrides,
	}
}
