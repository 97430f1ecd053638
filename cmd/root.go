package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adaptlearn/skilltrace/internal/config"
	"github.com/adaptlearn/skilltrace/internal/dkt"
	"github.com/adaptlearn/skilltrace/internal/gateway"
	"github.com/adaptlearn/skilltrace/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "skilltrace",
	Short: "Knowledge-tracing and adaptive-selection engine",
	Long: "Skilltrace fuses Bayesian and sequence-model knowledge tracing to pick " +
		"the next question difficulty and track per-skill mastery.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides SKILLTRACE_* env vars)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	log, err := logging.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return log, nil
}

// buildModel constructs the sequence model from configuration: seeded
// weights by default, trained weights when a path is configured.
func buildModel(cfg *config.Config) (*dkt.Model, error) {
	if len(cfg.TrackedSkills) == 0 {
		return nil, fmt.Errorf("tracked_skills must be set (the sequence model needs a fixed skill layout)")
	}
	enc, err := dkt.NewEncoder(cfg.TrackedSkills)
	if err != nil {
		return nil, fmt.Errorf("build encoder: %w", err)
	}

	var net *dkt.Network
	if cfg.Model.WeightsPath != "" {
		net, err = dkt.LoadNetwork(cfg.Model.WeightsPath)
	} else {
		net, err = dkt.NewNetwork(enc.InputWidth(), cfg.Model.HiddenSize, cfg.Model.Layers, cfg.Model.Seed)
	}
	if err != nil {
		return nil, fmt.Errorf("build network: %w", err)
	}
	return dkt.NewModel(enc, net), nil
}

// buildGateway wires the configured predictor behind the fallback
// boundary: an HTTP client in sidecar mode, the in-process model
// otherwise.
func buildGateway(cfg *config.Config, log *zap.Logger) (*gateway.Gateway, error) {
	model, err := buildModel(cfg)
	if err != nil {
		return nil, err
	}

	var predictor gateway.Predictor
	switch cfg.Gateway.Mode {
	case "sidecar":
		predictor, err = gateway.NewClient(gateway.ClientOptions{
			BaseURL: cfg.Gateway.BaseURL,
			Timeout: cfg.Gateway.Timeout,
			Encoder: model.Encoder(),
		})
		if err != nil {
			return nil, fmt.Errorf("build gateway client: %w", err)
		}
	default:
		predictor = gateway.Local{Model: model}
	}

	return gateway.New(predictor, cfg.TrackedSkills, log), nil
}
