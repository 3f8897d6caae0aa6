package cropper

import "github.com/menta2k/focuscrop/pkg/geometry"

// DefaultEdgeThreshold is the fraction of each image side treated as an edge band
const DefaultEdgeThreshold = 0.15

// Zone classifies where a region's center sits relative to the image edges
type Zone int

const (
	ZoneCenter Zone = iota
	ZoneLeftEdge
	ZoneRightEdge
	ZoneTopEdge
	ZoneBottomEdge
	ZoneTopLeft
	ZoneTopRight
	ZoneBottomLeft
	ZoneBottomRight
)

var zoneNames = [...]string{
	ZoneCenter:      "center",
	ZoneLeftEdge:    "leftEdge",
	ZoneRightEdge:   "rightEdge",
	ZoneTopEdge:     "topEdge",
	ZoneBottomEdge:  "bottomEdge",
	ZoneTopLeft:     "topLeft",
	ZoneTopRight:    "topRight",
	ZoneBottomLeft:  "bottomLeft",
	ZoneBottomRight: "bottomRight",
}

func (z Zone) String() string {
	if int(z) >= 0 && int(z) < len(zoneNames) {
		return zoneNames[z]
	}
	return "unknown"
}

// Classify returns the zone of r's center. Corners win over single edges;
// single edges are checked left, right, top, bottom.
func Classify(r geometry.Rect, d geometry.Dimensions, threshold float64) Zone {
	c := r.Center()

	left := c.X < d.Width*threshold
	right := c.X > d.Width*(1-threshold)
	top := c.Y < d.Height*threshold
	bottom := c.Y > d.Height*(1-threshold)

	switch {
	case top && left:
		return ZoneTopLeft
	case top && right:
		return ZoneTopRight
	case bottom && left:
		return ZoneBottomLeft
	case bottom && right:
		return ZoneBottomRight
	case left:
		return ZoneLeftEdge
	case right:
		return ZoneRightEdge
	case top:
		return ZoneTopEdge
	case bottom:
		return ZoneBottomEdge
	default:
		return ZoneCenter
	}
}
