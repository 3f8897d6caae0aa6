package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/menta2k/focuscrop"
	"github.com/menta2k/focuscrop/internal/config"
	"github.com/menta2k/focuscrop/internal/utils"
)

// cropCmd crops images and writes them to the output directory.
var cropCmd = &cobra.Command{
	Use:   "crop [files|dirs|urls...]",
	Short: "Crop images around their subject",
	Long: `Crop one or more images around their detected subject.

Directories are searched recursively for jpg, png and webp files. URLs are
downloaded. Images are processed in parallel and written to the output
directory as <name><suffix>.<format>.

With --debug an overlay marking the salient region and the crop is written
next to each crop, together with the crop plan as JSON.

Examples:
  focuscrop crop photo.jpg
  focuscrop crop photos/ --ratio 4:5 --format webp --lossless
  focuscrop crop a.jpg b.png --out cropped --budget 0`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCrop,
}

func init() {
	addPlanFlags(cropCmd)

	d := config.Default()
	f := cropCmd.Flags()
	f.StringP("out", "o", d.Output.Dir, "output directory")
	f.String("format", d.Output.Format, "output format: jpg, png or webp")
	f.Int("quality", d.Output.Quality, "output quality (jpg, lossy webp)")
	f.Bool("lossless", d.Output.Lossless, "lossless webp output")
	f.String("suffix", d.Output.Suffix, "suffix added to output file names")
	f.Bool("debug", d.Output.Debug, "write debug overlays and crop plans")
	f.IntP("workers", "w", d.Workers, "number of images processed in parallel")

	rootCmd.AddCommand(cropCmd)
}

func runCrop(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	ctx := cmd.Context()

	svc, err := focuscrop.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	inputs, err := utils.ExpandInputs(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no images found in %v", args)
	}
	if err := utils.EnsureDir(cfg.Output.Dir); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", cfg.Output.Dir, err)
	}

	log.Ctx(ctx).Info().
		Int("images", len(inputs)).
		Int("workers", cfg.Workers).
		Str("ratio", cfg.Crop.TargetRatio).
		Str("backend", cfg.Vision.Backend).
		Msg("cropping")

	start := time.Now()
	var written atomic.Int64

	pooler := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(cfg.Workers)
	for _, src := range inputs {
		pooler.Go(func(ctx context.Context) error {
			if err := cropOne(ctx, svc, cfg.Output, src); err != nil {
				log.Ctx(ctx).Error().Err(err).Str("source", src).Msg("failed to crop")
				return fmt.Errorf("%s: %w", src, err)
			}
			written.Add(1)
			return nil
		})
	}

	err = pooler.Wait()
	log.Ctx(ctx).Info().
		Int64("written", written.Load()).
		Int("failed", len(inputs)-int(written.Load())).
		Dur("elapsed", time.Since(start)).
		Msg("done")
	if err != nil {
		return fmt.Errorf("finished with errors: %w", err)
	}
	return nil
}

func cropOne(ctx context.Context, svc *focuscrop.Service, out config.OutputConfig, src string) error {
	proc := svc.Processor()

	img, err := proc.LoadImageSmart(ctx, src)
	if err != nil {
		return err
	}

	res, err := svc.Process(ctx, img)
	if err != nil {
		return err
	}

	path := utils.GenerateOutputFilename(src, out.Dir, out.Suffix, out.Format)
	if err := proc.SaveImage(res.Image, path, out.Format, out.Quality, out.Lossless); err != nil {
		return err
	}

	logger := log.Ctx(ctx).With().Str("source", src).Logger()
	ev := logger.Info().
		Str("output", path).
		Stringer("method", res.Plan.Crop.Method).
		Stringer("crop", res.Plan.Crop.Rect).
		Int("width", res.Plan.Crop.OutputWidth).
		Int("height", res.Plan.Crop.OutputHeight)
	if info, err := os.Stat(path); err == nil {
		ev = ev.Str("size", utils.FormatFileSize(info.Size()))
	}
	ev.Msg("wrote crop")

	if !out.Debug {
		return nil
	}

	dbgPath := utils.GenerateOutputFilename(src, out.Dir, out.Suffix+"_debug", out.Format)
	if err := proc.SaveImage(svc.DebugOverlay(img, res.Plan), dbgPath, out.Format, out.Quality, out.Lossless); err != nil {
		logger.Warn().Err(err).Msg("debug overlay save failed")
	} else {
		logger.Debug().Str("output", dbgPath).Msg("wrote debug overlay")
	}

	js, err := json.MarshalIndent(res.Plan, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	planPath := utils.GenerateOutputFilename(src, out.Dir, out.Suffix, "json")
	if err := os.WriteFile(planPath, js, 0o644); err != nil {
		logger.Warn().Err(err).Msg("plan save failed")
	}
	return nil
}
