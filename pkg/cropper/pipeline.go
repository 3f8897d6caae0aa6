package cropper

import (
	"fmt"
	"math"

	"github.com/menta2k/focuscrop/pkg/geometry"
	"github.com/menta2k/focuscrop/pkg/resize"
	"github.com/menta2k/focuscrop/pkg/types"
)

// boundsEpsilon is the slack allowed when checking the final invariants
const boundsEpsilon = 1e-6

// CropConfig holds configuration for crop computation
type CropConfig struct {
	// EdgeThreshold is the fraction of each side treated as an edge band
	EdgeThreshold float64
	// Fill grows the crop to the largest target-ratio box that fits the
	// image. When false the tight, ratio-corrected expansion is returned.
	Fill bool
}

// DefaultConfig returns the configuration used by New
func DefaultConfig() CropConfig {
	return CropConfig{
		EdgeThreshold: DefaultEdgeThreshold,
		Fill:          true,
	}
}

// Pipeline turns a salient region into a crop. It holds no mutable state and
// is safe for concurrent use.
type Pipeline struct {
	config CropConfig
}

// New creates a Pipeline with default configuration
func New() *Pipeline {
	return &Pipeline{config: DefaultConfig()}
}

// NewWithConfig creates a Pipeline with custom configuration
func NewWithConfig(config CropConfig) *Pipeline {
	if config.EdgeThreshold <= 0 || config.EdgeThreshold >= 0.5 {
		config.EdgeThreshold = DefaultEdgeThreshold
	}
	return &Pipeline{config: config}
}

// Config returns the pipeline configuration
func (p *Pipeline) Config() CropConfig {
	return p.config
}

// Trace records the intermediate values of one Compute call
type Trace struct {
	Region    geometry.Rect `json:"region"`
	Zone      string        `json:"zone"`
	Vector    Vector        `json:"vector"`
	Expanded  geometry.Rect `json:"expanded"`
	Corrected geometry.Rect `json:"corrected"`
}

// Compute returns the crop for region inside an image of dimensions d.
// budget caps the output pixel area; zero or less disables the cap.
func (p *Pipeline) Compute(d geometry.Dimensions, region types.SalientRegion, targetRatio float64, budget int) (types.CropRegion, error) {
	crop, _, err := p.ComputeTrace(d, region, targetRatio, budget)
	return crop, err
}

// ComputeTrace is Compute that also returns every intermediate stage
func (p *Pipeline) ComputeTrace(d geometry.Dimensions, region types.SalientRegion, targetRatio float64, budget int) (types.CropRegion, Trace, error) {
	if !d.Valid() {
		return types.CropRegion{}, Trace{}, fmt.Errorf("%w: %s", ErrInvalidImage, d)
	}
	if targetRatio <= 0 || math.IsNaN(targetRatio) || math.IsInf(targetRatio, 0) {
		return types.CropRegion{}, Trace{}, fmt.Errorf("%w: %v", ErrInvalidRatio, targetRatio)
	}

	r := region.Rect.ClampTo(d)
	zone := Classify(r, d, p.config.EdgeThreshold)
	vec := ExpansionVector(r, d, zone, targetRatio, region.Method)
	expanded := ApplyAndClamp(r, vec, d)
	corrected := CorrectAspect(expanded, targetRatio, d)

	final := corrected
	if p.config.Fill || final.Empty() {
		final = FillContext(corrected, targetRatio, d)
	}

	trace := Trace{
		Region:    r,
		Zone:      zone.String(),
		Vector:    vec,
		Expanded:  expanded,
		Corrected: corrected,
	}

	if err := checkInvariants(final, targetRatio, d); err != nil {
		return types.CropRegion{}, trace, err
	}

	px := final.Image()
	w, h, scale := resize.ScaledSize(px.Dx(), px.Dy(), budget)

	return types.CropRegion{
		Rect:         final,
		Method:       region.Method,
		TargetRatio:  targetRatio,
		OutputWidth:  w,
		OutputHeight: h,
		Scale:        scale,
	}, trace, nil
}

func checkInvariants(r geometry.Rect, targetRatio float64, d geometry.Dimensions) error {
	if r.Empty() || !d.Bounds().Contains(r, boundsEpsilon) {
		return fmt.Errorf("%w: %s not inside %s", ErrCropOutOfBounds, r, d)
	}
	if math.Abs(r.Ratio()-targetRatio) > boundsEpsilon*math.Max(1, targetRatio) {
		return fmt.Errorf("%w: ratio %.6f, want %.6f", ErrCropOutOfBounds, r.Ratio(), targetRatio)
	}
	return nil
}
