package cropper

import "github.com/menta2k/focuscrop/pkg/geometry"

// ApplyAndClamp grows r by v and fits the result inside the image. Growth
// that would cross an edge is moved to the opposite side instead of being
// dropped; only what cannot fit on either side is truncated. The horizontal
// axis resolves left overflow before right, the vertical axis top before bottom.
func ApplyAndClamp(r geometry.Rect, v Vector, d geometry.Dimensions) geometry.Rect {
	r = r.ClampTo(d)

	left := r.W * (v.Left - 1) / 2
	right := r.W * (v.Right - 1) / 2
	top := r.H * (v.Top - 1) / 2
	bottom := r.H * (v.Bottom - 1) / 2

	x0, x1 := redistribute(r.X-left, r.MaxX()+right, d.Width)
	y0, y1 := redistribute(r.Y-top, r.MaxY()+bottom, d.Height)

	return geometry.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// redistribute fits the span [start, end] into [0, limit]
func redistribute(start, end, limit float64) (float64, float64) {
	if end < start {
		mid := (start + end) / 2
		start, end = mid, mid
	}
	if start < 0 {
		end -= start
		start = 0
	}
	if end > limit {
		start -= end - limit
		end = limit
		if start < 0 {
			start = 0
		}
	}
	return start, end
}
