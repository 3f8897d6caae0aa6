package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/menta2k/focuscrop/internal/config"
)

var (
	// Configuration file path.
	cfgFile string
	// Prometheus text file written after each run.
	metricsFile string
	verbose     bool

	// Configuration resolved for the running command.
	globalConfig *config.Config
)

// flagKeys maps command-line flags to configuration keys. Flags that are set
// take precedence over the environment and the config file.
var flagKeys = map[string]string{
	"log-level":      "log_level",
	"workers":        "workers",
	"ratio":          "crop.target_ratio",
	"budget":         "crop.pixel_budget",
	"fill":           "crop.fill",
	"methods":        "detection.methods",
	"step-timeout":   "detection.step_timeout",
	"global-timeout": "detection.global_timeout",
	"min-confidence": "detection.min_confidence",
	"backend":        "vision.backend",
	"url":            "vision.url",
	"face-model":     "vision.face_model",
	"object-model":   "vision.object_model",
	"origin":         "vision.origin",
	"send-format":    "vision.send_format",
	"send-size":      "vision.send_size",
	"send-quality":   "vision.send_quality",
	"out":            "output.dir",
	"format":         "output.format",
	"quality":        "output.quality",
	"lossless":       "output.lossless",
	"suffix":         "output.suffix",
	"debug":          "output.debug",
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "focuscrop",
	Short: "Subject-aware fixed-ratio image cropping",
	Long: `focuscrop finds the subject of an image and cuts a crop of an exact
aspect ratio around it.

Detection runs as a fallback chain (face, object, attention) under a per-step
and a global timeout. When nothing is found in time the crop is centered on
the image. Face and object detection need a vision model backend (ollama or
llamacpp); attention detection runs locally.

Examples:
  focuscrop crop photo.jpg
  focuscrop crop photos/ --ratio 16:9 --out cropped --workers 8
  focuscrop crop https://example.com/cat.jpg --backend ollama --debug
  focuscrop plan photo.jpg --ratio portrait`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: writeMetrics,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

// GetRootCommand returns the root command for testing purposes.
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	defaults := config.Default()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is search in ., $HOME/.config/focuscrop, /etc/focuscrop)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", defaults.LogLevel, "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file when the command finishes")
}

// addPlanFlags registers the flags shared by every command that plans crops
func addPlanFlags(cmd *cobra.Command) {
	d := config.Default()
	f := cmd.Flags()

	f.String("ratio", d.Crop.TargetRatio, "target aspect ratio: a preset (square, portrait, landscape, widescreen, instagram, story), W:H or a decimal")
	f.Int("budget", d.Crop.PixelBudget, "maximum output pixel area, 0 disables downsampling")
	f.Bool("fill", d.Crop.Fill, "grow the crop to the largest box of the target ratio")

	f.StringSlice("methods", d.Detection.Methods, "detection chain order")
	f.Duration("step-timeout", d.Detection.StepTimeout, "timeout of a single detection step")
	f.Duration("global-timeout", d.Detection.GlobalTimeout, "timeout of the whole detection chain")
	f.Float64("min-confidence", d.Detection.MinConfidence, "minimum confidence for a detected region")

	f.String("backend", d.Vision.Backend, "vision backend: ollama, llamacpp or none")
	f.String("url", d.Vision.URL, "vision backend URL")
	f.String("face-model", d.Vision.FaceModel, "model used for face detection")
	f.String("object-model", d.Vision.ObjectModel, "model used for object detection")
	f.String("origin", d.Vision.Origin, "corner model boxes are measured from: top-left or bottom-left")
	f.String("send-format", d.Vision.SendFormat, "image format sent to the model: jpg, png or webp")
	f.Int("send-size", d.Vision.SendSize, "max dimension of the image sent to the model")
	f.Int("send-quality", d.Vision.SendQuality, "quality of the image sent to the model")
}

// setup loads .env, resolves configuration and installs the logger on the
// command context
func setup(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	v := viper.New()
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	loader := config.NewLoaderWith(v)
	cfg, err := loader.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	level, _ := cfg.Level()
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).Level(level)
	zerolog.DefaultContextLogger = &log.Logger

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(log.Logger.WithContext(ctx))

	if used := loader.ConfigFileUsed(); used != "" {
		log.Debug().Str("file", used).Msg("configuration loaded")
	}

	globalConfig = cfg
	return nil
}

func writeMetrics(_ *cobra.Command, _ []string) error {
	if metricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(metricsFile, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	log.Debug().Str("file", metricsFile).Msg("metrics written")
	return nil
}

// GetConfig returns the configuration of the running command
func GetConfig() *config.Config {
	if globalConfig == nil {
		return config.Default()
	}
	return globalConfig
}
