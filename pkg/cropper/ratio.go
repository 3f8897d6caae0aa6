package cropper

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AspectRatio represents common aspect ratios
type AspectRatio struct {
	Width  int
	Height int
	Name   string
}

// Common aspect ratios
var (
	Square     = AspectRatio{1, 1, "square"}
	Portrait   = AspectRatio{3, 4, "portrait"}
	Landscape  = AspectRatio{4, 3, "landscape"}
	Widescreen = AspectRatio{16, 9, "widescreen"}
	Instagram  = AspectRatio{4, 5, "instagram"}
	Story      = AspectRatio{9, 16, "story"}
)

// CommonAspectRatios returns a list of commonly used aspect ratios
func CommonAspectRatios() []AspectRatio {
	return []AspectRatio{Square, Portrait, Landscape, Widescreen, Instagram, Story}
}

// Value returns width / height
func (a AspectRatio) Value() float64 {
	return float64(a.Width) / float64(a.Height)
}

// ParseRatio accepts a preset name ("square"), a W:H pair ("4:5") or a
// decimal ("1.91").
func ParseRatio(s string) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	for _, a := range CommonAspectRatios() {
		if a.Name == s {
			return a.Value(), nil
		}
	}

	if w, h, ok := strings.Cut(s, ":"); ok {
		fw, err1 := strconv.ParseFloat(w, 64)
		fh, err2 := strconv.ParseFloat(h, 64)
		if err1 != nil || err2 != nil || fh == 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidRatio, s)
		}
		return validRatio(fw/fh, s)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRatio, s)
	}
	return validRatio(v, s)
}

func validRatio(v float64, src string) (float64, error) {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRatio, src)
	}
	return v, nil
}
