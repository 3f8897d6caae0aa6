package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/menta2k/focuscrop/pkg/cropper"
	"github.com/menta2k/focuscrop/pkg/detection"
	"github.com/menta2k/focuscrop/pkg/geometry"
	"github.com/menta2k/focuscrop/pkg/resize"
	"github.com/menta2k/focuscrop/pkg/types"
)

// Config holds the application configuration
type Config struct {
	LogLevel  string          `mapstructure:"log_level"`
	Workers   int             `mapstructure:"workers"`
	Crop      CropConfig      `mapstructure:"crop"`
	Detection DetectionConfig `mapstructure:"detection"`
	Vision    VisionConfig    `mapstructure:"vision"`
	Output    OutputConfig    `mapstructure:"output"`
}

// CropConfig holds the geometry settings
type CropConfig struct {
	// TargetRatio is a preset name ("square"), "W:H" or a decimal
	TargetRatio   string  `mapstructure:"target_ratio"`
	PixelBudget   int     `mapstructure:"pixel_budget"`
	EdgeThreshold float64 `mapstructure:"edge_threshold"`
	Fill          bool    `mapstructure:"fill"`
}

// DetectionConfig holds the fallback chain settings
type DetectionConfig struct {
	Methods             []string      `mapstructure:"methods"`
	StepTimeout         time.Duration `mapstructure:"step_timeout"`
	GlobalTimeout       time.Duration `mapstructure:"global_timeout"`
	MinConfidence       float64       `mapstructure:"min_confidence"`
	MergeDistance       float64       `mapstructure:"merge_distance"`
	AttentionConfidence float64       `mapstructure:"attention_confidence"`
}

// VisionConfig selects and configures the vision model backend
type VisionConfig struct {
	// Backend is "ollama", "llamacpp" or "none"
	Backend     string `mapstructure:"backend"`
	URL         string `mapstructure:"url"`
	FaceModel   string `mapstructure:"face_model"`
	ObjectModel string `mapstructure:"object_model"`
	// Origin is the corner model boxes are measured from
	Origin      string `mapstructure:"origin"`
	SendFormat  string `mapstructure:"send_format"`
	SendSize    int    `mapstructure:"send_size"`
	SendQuality int    `mapstructure:"send_quality"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Dir      string `mapstructure:"dir"`
	Format   string `mapstructure:"format"`
	Quality  int    `mapstructure:"quality"`
	Lossless bool   `mapstructure:"lossless"`
	Suffix   string `mapstructure:"suffix"`
	Debug    bool   `mapstructure:"debug"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Workers:  4,
		Crop: CropConfig{
			TargetRatio:   "square",
			PixelBudget:   resize.DefaultBudget,
			EdgeThreshold: cropper.DefaultEdgeThreshold,
			Fill:          true,
		},
		Detection: DetectionConfig{
			Methods:             []string{"face", "object", "attention"},
			StepTimeout:         detection.DefaultStepTimeout,
			GlobalTimeout:       detection.DefaultGlobalTimeout,
			MinConfidence:       detection.DefaultMinConfidence,
			MergeDistance:       detection.DefaultMergeDistance,
			AttentionConfidence: detection.DefaultAttentionConfidence,
		},
		Vision: VisionConfig{
			Backend:     "none",
			URL:         "http://localhost:11434",
			FaceModel:   "qwen2.5vl:7b",
			ObjectModel: "qwen2.5vl:7b",
			Origin:      geometry.TopLeft.String(),
			SendFormat:  "jpg",
			SendSize:    1024,
			SendQuality: 85,
		},
		Output: OutputConfig{
			Dir:     "./output",
			Format:  "jpg",
			Quality: 90,
			Suffix:  "_crop",
		},
	}
}

// Ratio parses the configured target ratio
func (c *Config) Ratio() (float64, error) {
	return cropper.ParseRatio(c.Crop.TargetRatio)
}

// Methods parses the configured detection chain
func (c *Config) Methods() ([]types.Method, error) {
	methods := make([]types.Method, 0, len(c.Detection.Methods))
	for _, name := range c.Detection.Methods {
		m, err := types.ParseMethod(strings.ToLower(strings.TrimSpace(name)))
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, nil
}

// Level parses the configured log level
func (c *Config) Level() (zerolog.Level, error) {
	return zerolog.ParseLevel(strings.ToLower(c.LogLevel))
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}

	if _, err := c.Ratio(); err != nil {
		return fmt.Errorf("crop.target_ratio: %w", err)
	}
	if c.Crop.PixelBudget < 0 {
		return fmt.Errorf("crop.pixel_budget must not be negative")
	}
	if c.Crop.EdgeThreshold <= 0 || c.Crop.EdgeThreshold >= 0.5 {
		return fmt.Errorf("crop.edge_threshold must be between 0 and 0.5")
	}

	methods, err := c.Methods()
	if err != nil {
		return fmt.Errorf("detection.methods: %w", err)
	}
	for _, m := range methods {
		if m == types.MethodGeometric {
			return fmt.Errorf("detection.methods: geometric is the implicit fallback and cannot be listed")
		}
	}
	if c.Detection.StepTimeout <= 0 || c.Detection.GlobalTimeout <= 0 {
		return fmt.Errorf("detection timeouts must be positive")
	}
	if c.Detection.MinConfidence < 0 || c.Detection.MinConfidence > 1 {
		return fmt.Errorf("detection.min_confidence must be between 0 and 1")
	}
	if c.Detection.AttentionConfidence <= 0 || c.Detection.AttentionConfidence > 1 {
		return fmt.Errorf("detection.attention_confidence must be between 0 and 1")
	}

	switch c.Vision.Backend {
	case "none":
	case "ollama", "llamacpp":
		if c.Vision.URL == "" {
			return fmt.Errorf("vision.url is required for backend %s", c.Vision.Backend)
		}
	default:
		return fmt.Errorf("vision.backend must be one of ollama, llamacpp, none")
	}
	if _, err := geometry.ParseOrigin(c.Vision.Origin); err != nil {
		return fmt.Errorf("vision.origin: %w", err)
	}

	switch strings.ToLower(c.Output.Format) {
	case "jpg", "jpeg", "png", "webp":
	default:
		return fmt.Errorf("output.format must be one of jpg, png, webp")
	}
	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	return nil
}

// GetConfigPath returns the per-user configuration directory
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", AppName)
}
