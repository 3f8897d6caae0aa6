// Package geometry provides the rectangle and point primitives used by the
// crop computation. All coordinates are absolute, top-left origin, in the
// same units as the image dimensions they are compared against.
package geometry

import (
	"fmt"
	"image"
	"math"
)

// Point is a location in image space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the euclidean distance between two points
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Dimensions describes the size of an image
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DimensionsOf returns the pixel dimensions of img
func DimensionsOf(img image.Image) Dimensions {
	b := img.Bounds()
	return Dimensions{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// Valid reports whether both sides are positive finite numbers
func (d Dimensions) Valid() bool {
	return finite(d.Width) && finite(d.Height) && d.Width > 0 && d.Height > 0
}

// Area returns width × height
func (d Dimensions) Area() float64 {
	return d.Width * d.Height
}

// Ratio returns width / height
func (d Dimensions) Ratio() float64 {
	if d.Height == 0 {
		return 0
	}
	return d.Width / d.Height
}

// Diagonal returns the length of the image diagonal
func (d Dimensions) Diagonal() float64 {
	return math.Hypot(d.Width, d.Height)
}

// Center returns the geometric center of the image
func (d Dimensions) Center() Point {
	return Point{X: d.Width / 2, Y: d.Height / 2}
}

// Bounds returns the full image as a rectangle
func (d Dimensions) Bounds() Rect {
	return Rect{W: d.Width, H: d.Height}
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%gx%g", d.Width, d.Height)
}

// Rect is an axis-aligned rectangle. A zero-size Rect is a point.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// PointRect returns a zero-size rectangle at p
func PointRect(p Point) Rect {
	return Rect{X: p.X, Y: p.Y}
}

// RectCenteredAt returns a w×h rectangle whose center is c
func RectCenteredAt(c Point, w, h float64) Rect {
	return Rect{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
}

// MaxX returns the right edge
func (r Rect) MaxX() float64 { return r.X + r.W }

// MaxY returns the bottom edge
func (r Rect) MaxY() float64 { return r.Y + r.H }

// MidX returns the horizontal center
func (r Rect) MidX() float64 { return r.X + r.W/2 }

// MidY returns the vertical center
func (r Rect) MidY() float64 { return r.Y + r.H/2 }

// Center returns the center point of the rectangle
func (r Rect) Center() Point {
	return Point{X: r.MidX(), Y: r.MidY()}
}

// Area returns the area of the rectangle
func (r Rect) Area() float64 {
	return r.W * r.H
}

// Ratio returns w/h, or 0 for a rectangle without height
func (r Rect) Ratio() float64 {
	if r.H == 0 {
		return 0
	}
	return r.W / r.H
}

// Empty reports whether the rectangle encloses no area
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Union returns the smallest rectangle containing both r and s.
// Zero-size rectangles still contribute their position.
func (r Rect) Union(s Rect) Rect {
	x0 := math.Min(r.X, s.X)
	y0 := math.Min(r.Y, s.Y)
	x1 := math.Max(r.MaxX(), s.MaxX())
	y1 := math.Max(r.MaxY(), s.MaxY())
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Intersect returns the overlap of r and s. ok is false when they are disjoint.
func (r Rect) Intersect(s Rect) (Rect, bool) {
	x0 := math.Max(r.X, s.X)
	y0 := math.Max(r.Y, s.Y)
	x1 := math.Min(r.MaxX(), s.MaxX())
	y1 := math.Min(r.MaxY(), s.MaxY())
	if x1 < x0 || y1 < y0 {
		return Rect{}, false
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}, true
}

// Contains reports whether s lies within r, allowing eps of slack on each edge
func (r Rect) Contains(s Rect, eps float64) bool {
	return s.X >= r.X-eps && s.Y >= r.Y-eps &&
		s.MaxX() <= r.MaxX()+eps && s.MaxY() <= r.MaxY()+eps
}

// Translate moves the origin so the rectangle lies within d without resizing.
// Sides longer than the image are truncated.
func (r Rect) Translate(d Dimensions) Rect {
	r.W = Clamp(r.W, 0, d.Width)
	r.H = Clamp(r.H, 0, d.Height)
	r.X = Clamp(r.X, 0, d.Width-r.W)
	r.Y = Clamp(r.Y, 0, d.Height-r.H)
	return r
}

// ClampTo truncates r to the image bounds. A rectangle entirely outside the
// image collapses to the nearest in-bounds point.
func (r Rect) ClampTo(d Dimensions) Rect {
	if in, ok := r.Intersect(d.Bounds()); ok {
		return in
	}
	return PointRect(Point{
		X: Clamp(r.MidX(), 0, d.Width),
		Y: Clamp(r.MidY(), 0, d.Height),
	})
}

// Image converts the rectangle to integer pixel bounds, rounding each edge
// to the nearest pixel.
func (r Rect) Image() image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)),
		int(math.Round(r.Y)),
		int(math.Round(r.MaxX())),
		int(math.Round(r.MaxY())),
	)
}

func (r Rect) String() string {
	return fmt.Sprintf("(%.1f,%.1f %.1fx%.1f)", r.X, r.Y, r.W, r.H)
}

// FromImageRect converts integer pixel bounds to a Rect
func FromImageRect(r image.Rectangle) Rect {
	return Rect{
		X: float64(r.Min.X),
		Y: float64(r.Min.Y),
		W: float64(r.Dx()),
		H: float64(r.Dy()),
	}
}

// UnionAll returns the union of all rectangles. ok is false for an empty slice.
func UnionAll(rects []Rect) (Rect, bool) {
	if len(rects) == 0 {
		return Rect{}, false
	}
	u := rects[0]
	for _, r := range rects[1:] {
		u = u.Union(r)
	}
	return u, true
}

// Clamp limits v to [lo, hi]. When hi < lo the result is lo.
func Clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
