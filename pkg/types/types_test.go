package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/focuscrop/pkg/geometry"
)

func TestParseMethod(t *testing.T) {
	for _, m := range []Method{MethodGeometric, MethodFace, MethodObject, MethodAttention} {
		parsed, err := ParseMethod(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}

	_, err := ParseMethod("saliency")
	assert.Error(t, err)
	assert.Equal(t, "method(9)", Method(9).String())
}

func TestMethodJSON(t *testing.T) {
	region := SalientRegion{Method: MethodFace, Confidence: 0.9}

	data, err := json.Marshal(region)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"method":"face"`)

	var decoded SalientRegion
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, MethodFace, decoded.Method)
}

func TestGeometricCenter(t *testing.T) {
	r := GeometricCenter(geometry.Dimensions{Width: 300, Height: 200})

	assert.Equal(t, MethodGeometric, r.Method)
	assert.Equal(t, geometry.Point{X: 150, Y: 100}, r.Rect.Center())
	assert.Equal(t, 0.0, r.Rect.Area())
}

func TestCropRegionDownsampled(t *testing.T) {
	assert.False(t, CropRegion{Scale: 1}.Downsampled())
	assert.True(t, CropRegion{Scale: 0.5}.Downsampled())
}
