package cropper

import (
	"fmt"
	"math"

	"github.com/menta2k/focuscrop/pkg/geometry"
	"github.com/menta2k/focuscrop/pkg/types"
)

const (
	edgeAmplification   = 1.5
	cornerAmplification = 1.8

	widerBias  = 1.2
	narrowBias = 0.9

	ratioEpsilon = 1e-9
)

// Vector holds per-side growth multipliers. 1.0 means no growth on that side.
type Vector struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Identity leaves a rectangle unchanged
var Identity = Vector{Left: 1, Right: 1, Top: 1, Bottom: 1}

func (v Vector) String() string {
	return fmt.Sprintf("[l=%.3f r=%.3f t=%.3f b=%.3f]", v.Left, v.Right, v.Top, v.Bottom)
}

// floor keeps every side at 1.0 or above so a bias never trims the subject
func (v Vector) floor() Vector {
	return Vector{
		Left:   math.Max(1, v.Left),
		Right:  math.Max(1, v.Right),
		Top:    math.Max(1, v.Top),
		Bottom: math.Max(1, v.Bottom),
	}
}

// band maps a lower area-ratio bound to a base factor. Bands are ordered
// from the largest bound down.
type band struct {
	min    float64
	factor float64
}

var (
	generalBands = []band{{0.7, 1.05}, {0.4, 1.15}, {0.2, 1.30}, {0, 1.50}}
	faceBands    = []band{{0.3, 1.1}, {0.1, 1.3}, {0.05, 1.6}, {0, 2.0}}
)

func baseFactor(areaRatio float64, bands []band) float64 {
	for _, b := range bands {
		if areaRatio >= b.min {
			return b.factor
		}
	}
	return bands[len(bands)-1].factor
}

// BaseFactor returns the general area-ratio growth factor
func BaseFactor(areaRatio float64) float64 {
	return baseFactor(areaRatio, generalBands)
}

// FaceBaseFactor returns the growth factor used for face regions
func FaceBaseFactor(areaRatio float64) float64 {
	return baseFactor(areaRatio, faceBands)
}

// Bias compares the target ratio with the rectangle's own ratio and returns
// the horizontal and vertical multipliers.
func Bias(targetRatio, rectRatio float64) (horizontal, vertical float64) {
	switch {
	case math.Abs(targetRatio-rectRatio) <= ratioEpsilon:
		return 1, 1
	case targetRatio > rectRatio:
		return widerBias, narrowBias
	default:
		return narrowBias, widerBias
	}
}

// ExpansionVector computes how much each side of r should grow. Face regions
// use their own table; every other method uses the general one.
func ExpansionVector(r geometry.Rect, d geometry.Dimensions, zone Zone, targetRatio float64, method types.Method) Vector {
	areaRatio := 0.0
	if d.Area() > 0 {
		areaRatio = r.Area() / d.Area()
	}
	hb, vb := Bias(targetRatio, r.Ratio())

	if method == types.MethodFace {
		return faceVector(FaceBaseFactor(areaRatio), hb, vb, zone).floor()
	}
	return generalVector(BaseFactor(areaRatio), hb, vb, zone).floor()
}

func generalVector(base, hb, vb float64, zone Zone) Vector {
	h := base * hb
	v := base * vb

	switch zone {
	case ZoneLeftEdge:
		return Vector{Left: 1, Right: h * edgeAmplification, Top: v, Bottom: v}
	case ZoneRightEdge:
		return Vector{Left: h * edgeAmplification, Right: 1, Top: v, Bottom: v}
	case ZoneTopEdge:
		return Vector{Left: h, Right: h, Top: 1, Bottom: v * edgeAmplification}
	case ZoneBottomEdge:
		return Vector{Left: h, Right: h, Top: v * edgeAmplification, Bottom: 1}
	case ZoneTopLeft:
		return Vector{Left: 1, Right: h * cornerAmplification, Top: 1, Bottom: v * cornerAmplification}
	case ZoneTopRight:
		return Vector{Left: h * cornerAmplification, Right: 1, Top: 1, Bottom: v * cornerAmplification}
	case ZoneBottomLeft:
		return Vector{Left: 1, Right: h * cornerAmplification, Top: v * cornerAmplification, Bottom: 1}
	case ZoneBottomRight:
		return Vector{Left: h * cornerAmplification, Right: 1, Top: v * cornerAmplification, Bottom: 1}
	default:
		return Vector{Left: h, Right: h, Top: v, Bottom: v}
	}
}

// faceZone collapses the nine zones to the three a face vector distinguishes
func faceZone(zone Zone) Zone {
	switch zone {
	case ZoneTopLeft, ZoneTopEdge, ZoneTopRight:
		return ZoneTopEdge
	case ZoneBottomLeft, ZoneBottomEdge, ZoneBottomRight:
		return ZoneBottomEdge
	default:
		return ZoneCenter
	}
}

// faceVector grows downwards more than upwards to keep the torso in frame
func faceVector(base, hb, vb float64, zone Zone) Vector {
	h := base * hb
	v := base * vb

	switch faceZone(zone) {
	case ZoneTopEdge:
		return Vector{Left: h, Right: h, Top: 1, Bottom: v * cornerAmplification}
	case ZoneBottomEdge:
		return Vector{Left: h, Right: h, Top: v * edgeAmplification, Bottom: 1}
	default:
		return Vector{Left: h, Right: h, Top: v, Bottom: v * edgeAmplification}
	}
}
