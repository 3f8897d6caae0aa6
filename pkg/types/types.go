package types

import (
	"fmt"

	"github.com/menta2k/focuscrop/pkg/geometry"
)

// Method identifies how a salient region was found
type Method int

const (
	MethodGeometric Method = iota
	MethodFace
	MethodObject
	MethodAttention
)

var methodNames = map[Method]string{
	MethodGeometric: "geometric",
	MethodFace:      "face",
	MethodObject:    "object",
	MethodAttention: "attention",
}

func (m Method) String() string {
	if s, ok := methodNames[m]; ok {
		return s
	}
	return fmt.Sprintf("method(%d)", int(m))
}

// ParseMethod parses the lowercase method name used in configuration
func ParseMethod(s string) (Method, error) {
	for m, name := range methodNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown detection method %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Method) UnmarshalText(b []byte) error {
	parsed, err := ParseMethod(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// SalientRegion is a detector-reported area believed to contain the subject.
// Rect may be zero-size, in which case it is a point.
type SalientRegion struct {
	Rect       geometry.Rect `json:"rect"`
	Method     Method        `json:"method"`
	Confidence float64       `json:"confidence"`
	Label      string        `json:"label,omitempty"`
}

// GeometricCenter returns the fallback region used when no detector succeeds
func GeometricCenter(d geometry.Dimensions) SalientRegion {
	return SalientRegion{
		Rect:   geometry.PointRect(d.Center()),
		Method: MethodGeometric,
	}
}

// CropRegion is the final crop computed for an image
type CropRegion struct {
	Rect        geometry.Rect `json:"rect"`
	Method      Method        `json:"method"`
	TargetRatio float64       `json:"target_ratio"`

	// OutputWidth and OutputHeight are the pixel dimensions after the
	// pixel budget has been applied. Scale is 1 when no downsampling is needed.
	OutputWidth  int     `json:"output_width"`
	OutputHeight int     `json:"output_height"`
	Scale        float64 `json:"scale"`
}

// Downsampled reports whether the crop must be resampled to fit the pixel budget
func (c CropRegion) Downsampled() bool {
	return c.Scale < 1
}
