package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	// AppName is the base name for configuration files and directories
	AppName = "focuscrop"

	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "FOCUSCROP"
)

// Loader handles loading configuration from defaults, a config file and
// the environment, in increasing order of precedence
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader on its own viper instance
func NewLoader() *Loader {
	return NewLoaderWith(viper.New())
}

// NewLoaderWith creates a loader on v, so that flags bound to v take part
func NewLoaderWith(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// Viper returns the underlying viper instance
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load reads configuration. An empty configFile searches the standard
// locations and tolerates a missing file.
func (l *Loader) Load(configFile string) (*Config, error) {
	l.setupEnvironmentVariables()
	l.setDefaults()

	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			return nil, fmt.Errorf("config file does not exist: %s", configFile)
		}
		l.v.SetConfigFile(configFile)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	} else {
		l.v.SetConfigName(AppName)
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		l.v.AddConfigPath(GetConfigPath())
		l.v.AddConfigPath("/etc/" + AppName)

		if err := l.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// ConfigFileUsed returns the path of the config file read, if any
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func (l *Loader) setDefaults() {
	defaults := Default()

	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("workers", defaults.Workers)

	l.v.SetDefault("crop.target_ratio", defaults.Crop.TargetRatio)
	l.v.SetDefault("crop.pixel_budget", defaults.Crop.PixelBudget)
	l.v.SetDefault("crop.edge_threshold", defaults.Crop.EdgeThreshold)
	l.v.SetDefault("crop.fill", defaults.Crop.Fill)

	l.v.SetDefault("detection.methods", defaults.Detection.Methods)
	l.v.SetDefault("detection.step_timeout", defaults.Detection.StepTimeout)
	l.v.SetDefault("detection.global_timeout", defaults.Detection.GlobalTimeout)
	l.v.SetDefault("detection.min_confidence", defaults.Detection.MinConfidence)
	l.v.SetDefault("detection.merge_distance", defaults.Detection.MergeDistance)
	l.v.SetDefault("detection.attention_confidence", defaults.Detection.AttentionConfidence)

	l.v.SetDefault("vision.backend", defaults.Vision.Backend)
	l.v.SetDefault("vision.url", defaults.Vision.URL)
	l.v.SetDefault("vision.face_model", defaults.Vision.FaceModel)
	l.v.SetDefault("vision.object_model", defaults.Vision.ObjectModel)
	l.v.SetDefault("vision.origin", defaults.Vision.Origin)
	l.v.SetDefault("vision.send_format", defaults.Vision.SendFormat)
	l.v.SetDefault("vision.send_size", defaults.Vision.SendSize)
	l.v.SetDefault("vision.send_quality", defaults.Vision.SendQuality)

	l.v.SetDefault("output.dir", defaults.Output.Dir)
	l.v.SetDefault("output.format", defaults.Output.Format)
	l.v.SetDefault("output.quality", defaults.Output.Quality)
	l.v.SetDefault("output.lossless", defaults.Output.Lossless)
	l.v.SetDefault("output.suffix", defaults.Output.Suffix)
	l.v.SetDefault("output.debug", defaults.Output.Debug)
}
