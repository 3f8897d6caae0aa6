package geometry

import "fmt"

// Origin names the corner a normalized coordinate system is anchored to
type Origin int

const (
	// TopLeft is the image-space convention used everywhere in this module
	TopLeft Origin = iota
	// BottomLeft is used by platform vision frameworks that report boxes
	// with y growing upwards
	BottomLeft
)

func (o Origin) String() string {
	if o == BottomLeft {
		return "bottom-left"
	}
	return "top-left"
}

// FromNormalized converts a box with coordinates in [0,1] to an absolute
// top-left-origin rectangle inside d. Values outside [0,1] are clamped.
func FromNormalized(n Rect, d Dimensions, origin Origin) Rect {
	x := Clamp(n.X, 0, 1)
	y := Clamp(n.Y, 0, 1)
	w := Clamp(n.W, 0, 1-x)
	h := Clamp(n.H, 0, 1-y)

	if origin == BottomLeft {
		y = 1 - y - h
	}

	return Rect{
		X: x * d.Width,
		Y: y * d.Height,
		W: w * d.Width,
		H: h * d.Height,
	}
}

// ToNormalized is the inverse of FromNormalized for the top-left origin
func ToNormalized(r Rect, d Dimensions) Rect {
	if !d.Valid() {
		return Rect{}
	}
	return Rect{
		X: r.X / d.Width,
		Y: r.Y / d.Height,
		W: r.W / d.Width,
		H: r.H / d.Height,
	}
}

// ParseOrigin parses "top-left" or "bottom-left"
func ParseOrigin(s string) (Origin, error) {
	switch s {
	case "", "top-left":
		return TopLeft, nil
	case "bottom-left":
		return BottomLeft, nil
	default:
		return TopLeft, fmt.Errorf("unknown coordinate origin %q", s)
	}
}
