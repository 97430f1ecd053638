package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaptlearn/skilltrace/internal/bkt"
)

func TestLoad_DefaultsAreValid(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 0.6, cfg.Fusion.BKTWeight)
	assert.Equal(t, 0.4, cfg.Fusion.SequenceWeight)
	assert.Equal(t, 0.8, cfg.Mastery.Threshold)
	assert.Equal(t, 3, cfg.Mastery.StreakTarget)
	assert.Equal(t, 2*time.Second, cfg.Gateway.Timeout)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skilltrace.yaml")
	content := `
tracked_skills: [fractions, decimals]
fusion:
  bkt_weight: 0.5
  sequence_weight: 0.5
mastery:
  threshold: 0.9
gateway:
  mode: sidecar
  base_url: http://model:9090
  timeout: 1s
bkt_overrides:
  fractions:
    p_l0: 0.2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"fractions", "decimals"}, cfg.TrackedSkills)
	assert.Equal(t, 0.5, cfg.Fusion.BKTWeight)
	assert.Equal(t, 0.9, cfg.Mastery.Threshold)
	assert.Equal(t, "sidecar", cfg.Gateway.Mode)
	assert.Equal(t, time.Second, cfg.Gateway.Timeout)
	// Untouched keys keep defaults.
	assert.Equal(t, 3, cfg.Mastery.StreakTarget)

	require.Contains(t, cfg.BKTOverrides, "fractions")
	require.NotNil(t, cfg.BKTOverrides["fractions"].PL0)
	assert.Equal(t, 0.2, *cfg.BKTOverrides["fractions"].PL0)
}

func TestValidate_FailsFast(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold zero", func(c *Config) { c.Mastery.Threshold = 0 }},
		{"threshold above one", func(c *Config) { c.Mastery.Threshold = 1.2 }},
		{"streak target zero", func(c *Config) { c.Mastery.StreakTarget = 0 }},
		{"weights not summing", func(c *Config) { c.Fusion.BKTWeight = 0.9 }},
		{"negative weight", func(c *Config) { c.Fusion.BKTWeight = -0.2; c.Fusion.SequenceWeight = 1.2 }},
		{"bands out of order", func(c *Config) { c.Bands.EasyMax = 0.2 }},
		{"band above one", func(c *Config) { c.Bands.ModerateMax = 1.5 }},
		{"bad gateway mode", func(c *Config) { c.Gateway.Mode = "carrier-pigeon" }},
		{"sidecar without url", func(c *Config) { c.Gateway.Mode = "sidecar"; c.Gateway.BaseURL = "" }},
		{"non-positive timeout", func(c *Config) { c.Gateway.Timeout = 0 }},
		{"zero hidden size", func(c *Config) { c.Model.HiddenSize = 0 }},
		{"override out of range", func(c *Config) {
			bad := 1.5
			c.BKTOverrides = map[string]bkt.Overrides{"fractions": {PG: &bad}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
