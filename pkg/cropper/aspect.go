package cropper

import "github.com/menta2k/focuscrop/pkg/geometry"

// CorrectAspect shrinks the longer side of r so that w/h equals targetRatio,
// keeping the center, then translates the result back inside the image.
// A rectangle without area cannot be corrected and is only translated.
func CorrectAspect(r geometry.Rect, targetRatio float64, d geometry.Dimensions) geometry.Rect {
	if r.Empty() {
		return r.Translate(d)
	}

	switch ratio := r.Ratio(); {
	case ratio > targetRatio:
		w := r.H * targetRatio
		r.X = r.MidX() - w/2
		r.W = w
	case ratio < targetRatio:
		h := r.W / targetRatio
		r.Y = r.MidY() - h/2
		r.H = h
	}

	return r.Translate(d)
}

// MaxSize returns the largest w×h with w/h == targetRatio that fits in d
func MaxSize(targetRatio float64, d geometry.Dimensions) (w, h float64) {
	if d.Ratio() > targetRatio {
		return d.Height * targetRatio, d.Height
	}
	return d.Width, d.Width / targetRatio
}

// FillContext replaces r with the largest targetRatio rectangle that fits
// the image, centered on r as closely as the bounds allow.
func FillContext(r geometry.Rect, targetRatio float64, d geometry.Dimensions) geometry.Rect {
	w, h := MaxSize(targetRatio, d)
	return geometry.RectCenteredAt(r.Center(), w, h).Translate(d)
}
