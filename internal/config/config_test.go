package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/focuscrop/pkg/types"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	ratio, err := cfg.Ratio()
	require.NoError(t, err)
	assert.Equal(t, 1.0, ratio)

	methods, err := cfg.Methods()
	require.NoError(t, err)
	assert.Equal(t, []types.Method{types.MethodFace, types.MethodObject, types.MethodAttention}, methods)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"no workers", func(c *Config) { c.Workers = 0 }},
		{"bad ratio", func(c *Config) { c.Crop.TargetRatio = "4:0" }},
		{"negative budget", func(c *Config) { c.Crop.PixelBudget = -1 }},
		{"edge threshold", func(c *Config) { c.Crop.EdgeThreshold = 0.5 }},
		{"unknown method", func(c *Config) { c.Detection.Methods = []string{"face", "saliency"} }},
		{"geometric method", func(c *Config) { c.Detection.Methods = []string{"geometric"} }},
		{"zero timeout", func(c *Config) { c.Detection.StepTimeout = 0 }},
		{"min confidence", func(c *Config) { c.Detection.MinConfidence = 1.1 }},
		{"attention confidence", func(c *Config) { c.Detection.AttentionConfidence = 0 }},
		{"backend", func(c *Config) { c.Vision.Backend = "openai" }},
		{"backend url", func(c *Config) { c.Vision.Backend = "ollama"; c.Vision.URL = "" }},
		{"origin", func(c *Config) { c.Vision.Origin = "center" }},
		{"output format", func(c *Config) { c.Output.Format = "gif" }},
		{"output quality", func(c *Config) { c.Output.Quality = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := NewLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focuscrop.yaml")
	yaml := `
log_level: debug
crop:
  target_ratio: "16:9"
  fill: false
detection:
  methods: [attention]
  step_timeout: 500ms
  global_timeout: 2s
vision:
  backend: llamacpp
  url: http://gpu-box:8080
output:
  format: webp
  debug: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	loader := NewLoader()
	cfg, err := loader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, loader.ConfigFileUsed())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "16:9", cfg.Crop.TargetRatio)
	assert.False(t, cfg.Crop.Fill)
	assert.Equal(t, []string{"attention"}, cfg.Detection.Methods)
	assert.Equal(t, 500*time.Millisecond, cfg.Detection.StepTimeout)
	assert.Equal(t, 2*time.Second, cfg.Detection.GlobalTimeout)
	assert.Equal(t, "llamacpp", cfg.Vision.Backend)
	assert.Equal(t, "webp", cfg.Output.Format)
	assert.True(t, cfg.Output.Debug)

	// untouched keys keep their defaults
	assert.Equal(t, Default().Crop.PixelBudget, cfg.Crop.PixelBudget)
	assert.Equal(t, Default().Output.Quality, cfg.Output.Quality)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FOCUSCROP_CROP_TARGET_RATIO", "portrait")
	t.Setenv("FOCUSCROP_DETECTION_STEP_TIMEOUT", "1s")
	t.Setenv("FOCUSCROP_WORKERS", "8")

	cfg, err := NewLoader().Load("")
	require.NoError(t, err)

	assert.Equal(t, "portrait", cfg.Crop.TargetRatio)
	assert.Equal(t, time.Second, cfg.Detection.StepTimeout)
	assert.Equal(t, 8, cfg.Workers)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader().Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "does not exist")
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focuscrop.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 0\n"), 0o644))

	_, err := NewLoader().Load(path)
	assert.ErrorContains(t, err, "validation failed")
}
