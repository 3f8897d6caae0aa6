package focuscrop

import (
	"fmt"

	"github.com/menta2k/focuscrop/internal/config"
	"github.com/menta2k/focuscrop/pkg/client"
	"github.com/menta2k/focuscrop/pkg/cropper"
	"github.com/menta2k/focuscrop/pkg/detection"
	"github.com/menta2k/focuscrop/pkg/geometry"
	"github.com/menta2k/focuscrop/pkg/llamacpp"
	"github.com/menta2k/focuscrop/pkg/ollama"
	"github.com/menta2k/focuscrop/pkg/types"
)

// NewFromConfig wires the vision backend, detectors and orchestrator
// described by cfg into a Service
func NewFromConfig(cfg *config.Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	orchestrator, err := NewOrchestrator(cfg)
	if err != nil {
		return nil, err
	}

	ratio, err := cfg.Ratio()
	if err != nil {
		return nil, err
	}

	return NewWithConfig(orchestrator, Config{
		TargetRatio: ratio,
		PixelBudget: cfg.Crop.PixelBudget,
		Crop: cropper.CropConfig{
			EdgeThreshold: cfg.Crop.EdgeThreshold,
			Fill:          cfg.Crop.Fill,
		},
	})
}

// NewOrchestrator builds the detection chain described by cfg. Vision
// methods are left without a detector when no backend is configured, which
// makes the chain skip them.
func NewOrchestrator(cfg *config.Config) (*detection.Orchestrator, error) {
	methods, err := cfg.Methods()
	if err != nil {
		return nil, err
	}
	ratio, err := cfg.Ratio()
	if err != nil {
		return nil, err
	}

	vc, err := NewVisionClient(cfg.Vision)
	if err != nil {
		return nil, err
	}
	origin, err := geometry.ParseOrigin(cfg.Vision.Origin)
	if err != nil {
		return nil, err
	}

	var detectors []detection.Detector
	for _, m := range methods {
		switch m {
		case types.MethodFace, types.MethodObject:
			if vc == nil {
				continue
			}
			model := cfg.Vision.ObjectModel
			if m == types.MethodFace {
				model = cfg.Vision.FaceModel
			}
			det, err := detection.NewVisionDetector(vc, m, detection.VisionOptions{
				Model:       model,
				Origin:      origin,
				SendFormat:  cfg.Vision.SendFormat,
				SendSize:    cfg.Vision.SendSize,
				SendQuality: cfg.Vision.SendQuality,
			})
			if err != nil {
				return nil, err
			}
			detectors = append(detectors, det)
		case types.MethodAttention:
			detectors = append(detectors, detection.NewAttentionDetector(ratio, cfg.Detection.AttentionConfidence))
		}
	}

	return detection.NewOrchestrator(detection.Config{
		Order:         methods,
		StepTimeout:   cfg.Detection.StepTimeout,
		GlobalTimeout: cfg.Detection.GlobalTimeout,
		MinConfidence: cfg.Detection.MinConfidence,
		MergeDistance: cfg.Detection.MergeDistance,
	}, detectors...)
}

// NewVisionClient returns the configured backend, or nil for "none"
func NewVisionClient(cfg config.VisionConfig) (client.VisionClient, error) {
	switch cfg.Backend {
	case "ollama":
		return ollama.NewClient(cfg.URL)
	case "llamacpp":
		return llamacpp.NewClient(cfg.URL)
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported vision backend: %s", cfg.Backend)
	}
}
