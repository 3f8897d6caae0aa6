// Package resize keeps rendered crops under a platform pixel-area ceiling.
//
// Go images are addressed in physical pixels, so the reported dimensions are
// exactly the dimensions of the resampled image; there is no device scale.
package resize

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// DefaultBudget is about 90% of the largest image some widget hosts accept
const DefaultBudget = 1_900_000

// ScaledSize returns the dimensions that fit width×height into budget pixels
// while preserving the aspect ratio. A non-positive budget disables the limit.
func ScaledSize(width, height, budget int) (w, h int, scale float64) {
	area := width * height
	if budget <= 0 || area <= budget {
		return width, height, 1
	}

	scale = math.Sqrt(float64(budget) / float64(area))
	w = max(1, int(math.Round(float64(width)*scale)))
	h = max(1, int(math.Round(float64(height)*scale)))
	return w, h, scale
}

// Resizer downsamples images that exceed a pixel budget
type Resizer struct {
	Budget int
	Filter imaging.ResampleFilter
}

// New returns a Resizer with the default budget and a Lanczos filter
func New() *Resizer {
	return &Resizer{Budget: DefaultBudget, Filter: imaging.Lanczos}
}

// Fit returns img unchanged when it is within budget, otherwise a uniformly
// downsampled copy.
func (r *Resizer) Fit(img image.Image) image.Image {
	return r.FitBudget(img, r.Budget)
}

// FitBudget is Fit with an explicit budget
func (r *Resizer) FitBudget(img image.Image, budget int) image.Image {
	b := img.Bounds()
	w, h, scale := ScaledSize(b.Dx(), b.Dy(), budget)
	if scale >= 1 {
		return img
	}
	return imaging.Resize(img, w, h, r.Filter)
}
