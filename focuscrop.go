// Package focuscrop computes subject-aware crop regions for images.
//
// A Service runs a fallback chain of detectors (face, object, attention) to
// find the salient region of an image, then turns that region into a crop of
// an exact aspect ratio that lies entirely inside the image:
//
//	svc, err := focuscrop.NewFromConfig(config.Default())
//	if err != nil {
//		log.Fatal(err)
//	}
//	res, err := svc.Process(ctx, img)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(res.Plan.Crop.Rect, res.Plan.Crop.Method)
//
// Detection failures never surface as errors. When no detector produces a
// confident region the crop is centered on the image.
package focuscrop

import (
	"context"
	"fmt"
	"image"

	"github.com/rs/zerolog/log"

	"github.com/menta2k/focuscrop/pkg/cropper"
	"github.com/menta2k/focuscrop/pkg/detection"
	"github.com/menta2k/focuscrop/pkg/geometry"
	"github.com/menta2k/focuscrop/pkg/processing"
	"github.com/menta2k/focuscrop/pkg/resize"
	"github.com/menta2k/focuscrop/pkg/types"
)

// Version of the focuscrop library
const Version = "1.0.0"

// ErrInvalidImage is returned for images with no area
var ErrInvalidImage = cropper.ErrInvalidImage

// Config holds the geometry settings of a Service
type Config struct {
	TargetRatio float64
	// PixelBudget caps the output pixel area. Zero disables the cap.
	PixelBudget int
	Crop        cropper.CropConfig
}

// DefaultConfig returns square crops under the default pixel budget
func DefaultConfig() Config {
	return Config{
		TargetRatio: 1,
		PixelBudget: resize.DefaultBudget,
		Crop:        cropper.DefaultConfig(),
	}
}

// Service plans and renders crops. Construct it once and share it; it is
// safe for concurrent use.
type Service struct {
	config       Config
	orchestrator *detection.Orchestrator
	pipeline     *cropper.Pipeline
	processor    *processing.Processor
	resizer      *resize.Resizer
}

// Plan is the crop chosen for an image, with the detection run behind it
type Plan struct {
	Image     geometry.Dimensions   `json:"image"`
	Crop      types.CropRegion      `json:"crop"`
	Detection *detection.Resolution `json:"detection"`
	Trace     cropper.Trace         `json:"trace"`
}

// Result is a rendered crop
type Result struct {
	Plan  *Plan
	Image image.Image
}

// New creates a Service with the default configuration
func New(orchestrator *detection.Orchestrator) *Service {
	s, _ := NewWithConfig(orchestrator, DefaultConfig())
	return s
}

// NewWithConfig creates a Service with custom configuration
func NewWithConfig(orchestrator *detection.Orchestrator, config Config) (*Service, error) {
	if orchestrator == nil {
		return nil, fmt.Errorf("orchestrator is required")
	}
	if config.TargetRatio <= 0 {
		return nil, fmt.Errorf("%w: %v", cropper.ErrInvalidRatio, config.TargetRatio)
	}

	pipeline := cropper.NewWithConfig(config.Crop)
	config.Crop = pipeline.Config()

	resizer := resize.New()
	resizer.Budget = config.PixelBudget

	return &Service{
		config:       config,
		orchestrator: orchestrator,
		pipeline:     pipeline,
		processor:    processing.NewProcessor(),
		resizer:      resizer,
	}, nil
}

// Config returns the effective configuration
func (s *Service) Config() Config {
	return s.config
}

// Processor returns the image processor used for cutting
func (s *Service) Processor() *processing.Processor {
	return s.processor
}

// Plan detects the subject of img and computes its crop without touching
// pixels
func (s *Service) Plan(ctx context.Context, img image.Image) (*Plan, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	d := geometry.DimensionsOf(img)
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidImage, d)
	}

	resolution, err := s.orchestrator.Resolve(ctx, img)
	if err != nil {
		return nil, err
	}

	crop, trace, err := s.pipeline.ComputeTrace(d, resolution.Region, s.config.TargetRatio, s.config.PixelBudget)
	if err != nil {
		return nil, fmt.Errorf("computing crop: %w", err)
	}
	cropAreaRatio.WithLabelValues(crop.Method.String()).Observe(crop.Rect.Area() / d.Area())

	log.Ctx(ctx).Debug().
		Str("run_id", resolution.RunID).
		Stringer("image", d).
		Str("zone", trace.Zone).
		Stringer("vector", trace.Vector).
		Stringer("expanded", trace.Expanded).
		Stringer("crop", crop.Rect).
		Float64("scale", crop.Scale).
		Msg("crop planned")

	return &Plan{
		Image:     d,
		Crop:      crop,
		Detection: resolution,
		Trace:     trace,
	}, nil
}

// Process plans the crop, cuts it from img and downsamples it to the pixel
// budget
func (s *Service) Process(ctx context.Context, img image.Image) (*Result, error) {
	plan, err := s.Plan(ctx, img)
	if err != nil {
		return nil, err
	}

	cut, err := s.processor.Cut(img, plan.Crop)
	if err != nil {
		return nil, fmt.Errorf("cutting crop: %w", err)
	}

	return &Result{
		Plan:  plan,
		Image: s.resizer.Fit(cut),
	}, nil
}

// DebugOverlay draws plan's salient region and crop on a copy of img
func (s *Service) DebugOverlay(img image.Image, plan *Plan) image.Image {
	return s.processor.CreateDebugOverlay(img, plan.Detection.Region.Rect, plan.Crop.Rect)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
