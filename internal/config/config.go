// Package config loads and validates engine configuration. Validation
// happens once at load time: the per-interaction path assumes a valid
// Config and never re-checks it.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/adaptlearn/skilltrace/internal/bkt"
	"github.com/adaptlearn/skilltrace/internal/dkt"
	"github.com/adaptlearn/skilltrace/internal/gateway"
)

// Config holds every tunable the engine exposes. The fusion weights and
// band thresholds are empirical defaults; deployments are expected to
// tune them, which is why they live here instead of in code.
type Config struct {
	// TrackedSkills fixes the sequence model's skill index layout. The
	// engine itself accepts any skill ID; skills outside this list just
	// get no sequence-model signal.
	TrackedSkills []string `mapstructure:"tracked_skills"`

	Fusion  FusionConfig  `mapstructure:"fusion"`
	Bands   BandsConfig   `mapstructure:"bands"`
	Mastery MasteryConfig `mapstructure:"mastery"`

	// BKTOverrides replaces default BKT parameters per skill.
	BKTOverrides map[string]bkt.Overrides `mapstructure:"bkt_overrides"`

	Gateway GatewayConfig `mapstructure:"gateway"`
	Model   ModelConfig   `mapstructure:"model"`
	Sidecar SidecarConfig `mapstructure:"sidecar"`

	// LogMode selects the zap profile: "dev" or "prod".
	LogMode string `mapstructure:"log_mode"`
}

// FusionConfig weights the two mastery estimates. BKT is weighted
// higher because it updates on a single clean signal while the sequence
// model needs more history to stabilize.
type FusionConfig struct {
	BKTWeight      float64 `mapstructure:"bkt_weight"`
	SequenceWeight float64 `mapstructure:"sequence_weight"`
}

// BandsConfig holds the combined-confidence cutoffs between difficulty
// bands. A confidence below VeryEasyMax selects very_easy, below
// EasyMax easy, below ModerateMax moderate, and difficult otherwise.
type BandsConfig struct {
	VeryEasyMax float64 `mapstructure:"very_easy_max"`
	EasyMax     float64 `mapstructure:"easy_max"`
	ModerateMax float64 `mapstructure:"moderate_max"`
}

// MasteryConfig drives the level-unlock state machine.
type MasteryConfig struct {
	// Threshold is the combined-confidence bar in (0,1].
	Threshold float64 `mapstructure:"threshold"`
	// StreakTarget is how many consecutive correct answers at the same
	// or higher band unlock the next level.
	StreakTarget int `mapstructure:"streak_target"`
}

// GatewayConfig configures how the engine reaches the sequence model.
type GatewayConfig struct {
	// Mode is "sidecar" (HTTP to a separate process) or "local"
	// (in-process model).
	Mode    string        `mapstructure:"mode"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ModelConfig shapes the recurrent network.
type ModelConfig struct {
	HiddenSize int   `mapstructure:"hidden_size"`
	Layers     int   `mapstructure:"layers"`
	Seed       int64 `mapstructure:"seed"`
	// WeightsPath optionally loads trained weights instead of the
	// seeded initialization.
	WeightsPath string `mapstructure:"weights_path"`
}

// SidecarConfig configures the sequence-model service process.
type SidecarConfig struct {
	Addr string `mapstructure:"addr"`
}

// Default returns the configuration the engine ships with.
func Default() *Config {
	return &Config{
		TrackedSkills: nil,
		Fusion:        FusionConfig{BKTWeight: 0.6, SequenceWeight: 0.4},
		Bands:         BandsConfig{VeryEasyMax: 0.3, EasyMax: 0.5, ModerateMax: 0.75},
		Mastery:       MasteryConfig{Threshold: 0.8, StreakTarget: 3},
		Gateway:       GatewayConfig{Mode: "local", BaseURL: "http://localhost:9090", Timeout: gateway.DefaultTimeout},
		Model:         ModelConfig{HiddenSize: dkt.DefaultHiddenSize, Layers: dkt.DefaultLayers, Seed: dkt.DefaultSeed},
		Sidecar:       SidecarConfig{Addr: ":9090"},
		LogMode:       "dev",
	}
}

// Load reads a YAML config file, layering it over the defaults and
// under SKILLTRACE_* environment variables, and validates the result.
// An empty path returns validated defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SKILLTRACE")
	v.AutomaticEnv()

	v.SetDefault("fusion.bkt_weight", cfg.Fusion.BKTWeight)
	v.SetDefault("fusion.sequence_weight", cfg.Fusion.SequenceWeight)
	v.SetDefault("bands.very_easy_max", cfg.Bands.VeryEasyMax)
	v.SetDefault("bands.easy_max", cfg.Bands.EasyMax)
	v.SetDefault("bands.moderate_max", cfg.Bands.ModerateMax)
	v.SetDefault("mastery.threshold", cfg.Mastery.Threshold)
	v.SetDefault("mastery.streak_target", cfg.Mastery.StreakTarget)
	v.SetDefault("gateway.mode", cfg.Gateway.Mode)
	v.SetDefault("gateway.base_url", cfg.Gateway.BaseURL)
	v.SetDefault("gateway.timeout", cfg.Gateway.Timeout)
	v.SetDefault("model.hidden_size", cfg.Model.HiddenSize)
	v.SetDefault("model.layers", cfg.Model.Layers)
	v.SetDefault("model.seed", cfg.Model.Seed)
	v.SetDefault("sidecar.addr", cfg.Sidecar.Addr)
	v.SetDefault("log_mode", cfg.LogMode)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on caller contract violations so the engine's hot
// path never has to defend against them.
func (c *Config) Validate() error {
	if c.Mastery.Threshold <= 0 || c.Mastery.Threshold > 1 {
		return fmt.Errorf("mastery.threshold must be in (0,1], got %v", c.Mastery.Threshold)
	}
	if c.Mastery.StreakTarget < 1 {
		return fmt.Errorf("mastery.streak_target must be ≥ 1, got %d", c.Mastery.StreakTarget)
	}

	if c.Fusion.BKTWeight < 0 || c.Fusion.SequenceWeight < 0 {
		return fmt.Errorf("fusion weights must be non-negative, got %v/%v",
			c.Fusion.BKTWeight, c.Fusion.SequenceWeight)
	}
	if sum := c.Fusion.BKTWeight + c.Fusion.SequenceWeight; sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("fusion weights must sum to 1, got %v", sum)
	}

	b := c.Bands
	if !(0 < b.VeryEasyMax && b.VeryEasyMax < b.EasyMax && b.EasyMax < b.ModerateMax && b.ModerateMax < 1) {
		return fmt.Errorf("band cutoffs must satisfy 0 < very_easy < easy < moderate < 1, got %v/%v/%v",
			b.VeryEasyMax, b.EasyMax, b.ModerateMax)
	}

	switch c.Gateway.Mode {
	case "local", "sidecar":
	default:
		return fmt.Errorf("gateway.mode must be \"local\" or \"sidecar\", got %q", c.Gateway.Mode)
	}
	if c.Gateway.Mode == "sidecar" && c.Gateway.BaseURL == "" {
		return fmt.Errorf("gateway.base_url required in sidecar mode")
	}
	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("gateway.timeout must be positive, got %v", c.Gateway.Timeout)
	}

	if c.Model.HiddenSize < 1 {
		return fmt.Errorf("model.hidden_size must be ≥ 1, got %d", c.Model.HiddenSize)
	}
	if c.Model.Layers < 1 {
		return fmt.Errorf("model.layers must be ≥ 1, got %d", c.Model.Layers)
	}

	for skill, o := range c.BKTOverrides {
		for name, p := range map[string]*float64{"p_l0": o.PL0, "p_t": o.PT, "p_g": o.PG, "p_s": o.PS} {
			if p != nil && (*p < 0 || *p > 1) {
				return fmt.Errorf("bkt_overrides[%s].%s must be in [0,1], got %v", skill, name, *p)
			}
		}
	}

	return nil
}
