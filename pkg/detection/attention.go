package detection

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"

	"github.com/menta2k/focuscrop/pkg/geometry"
	"github.com/menta2k/focuscrop/pkg/types"
)

// DefaultAttentionConfidence is the confidence attached to saliency regions.
// smartcrop reports no score of its own.
const DefaultAttentionConfidence = 0.75

// AttentionDetector finds the most interesting area of an image with
// content-aware saliency analysis. It needs no external service.
type AttentionDetector struct {
	analyzer   smartcrop.Analyzer
	ratio      float64
	confidence float64
}

// NewAttentionDetector returns a detector that looks for the best window of
// the given aspect ratio. Non-positive values fall back to defaults.
func NewAttentionDetector(ratio, confidence float64) *AttentionDetector {
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		ratio = 1
	}
	if confidence <= 0 || confidence > 1 {
		confidence = DefaultAttentionConfidence
	}
	return &AttentionDetector{
		analyzer:   smartcrop.NewAnalyzer(&resizer{filter: imaging.Lanczos}),
		ratio:      ratio,
		confidence: confidence,
	}
}

func (a *AttentionDetector) Method() types.Method {
	return types.MethodAttention
}

// Detect runs the analysis on its own goroutine so a cancelled context
// returns at once. The analysis itself cannot be interrupted.
func (a *AttentionDetector) Detect(ctx context.Context, img image.Image) ([]types.SalientRegion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := img.Bounds()
	w, h := windowSize(b.Dx(), b.Dy(), a.ratio)
	if w <= 0 || h <= 0 {
		return nil, nil
	}

	type cropResult struct {
		crop image.Rectangle
		err  error
	}
	resultChan := make(chan cropResult, 1)

	go func() {
		crop, err := a.analyzer.FindBestCrop(img, w, h)
		resultChan <- cropResult{crop: crop, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		if res.err != nil {
			return nil, fmt.Errorf("finding best crop: %w", res.err)
		}
		if res.crop.Empty() {
			return nil, nil
		}
		return []types.SalientRegion{{
			Rect:       geometry.FromImageRect(res.crop.Sub(b.Min)),
			Method:     types.MethodAttention,
			Confidence: a.confidence,
			Label:      "saliency",
		}}, nil
	}
}

// windowSize returns the largest width × height of the given ratio that fits
func windowSize(width, height int, ratio float64) (int, int) {
	w := math.Min(float64(width), float64(height)*ratio)
	h := w / ratio
	return int(math.Floor(w)), int(math.Floor(h))
}

// resizer implements the smartcrop resizer with imaging
type resizer struct {
	filter imaging.ResampleFilter
}

func (r *resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.filter)
}
