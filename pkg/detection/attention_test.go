package detection

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/focuscrop/pkg/geometry"
	"github.com/menta2k/focuscrop/pkg/types"
)

// createTestImage returns a flat grey image with a detailed patch on the right
func createTestImage(width, height int) image.Image {
	img := imaging.New(width, height, color.NRGBA{128, 128, 128, 255})
	for y := height / 4; y < height*3/4; y++ {
		for x := width * 3 / 4; x < width-4; x++ {
			if (x/3+y/3)%2 == 0 {
				img.SetNRGBA(x, y, color.NRGBA{230, 40, 40, 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{20, 20, 200, 255})
			}
		}
	}
	return img
}

func TestAttentionDetector(t *testing.T) {
	det := NewAttentionDetector(1, 0)
	assert.Equal(t, types.MethodAttention, det.Method())

	img := createTestImage(320, 160)
	regions, err := det.Detect(context.Background(), img)
	require.NoError(t, err)
	require.Len(t, regions, 1)

	r := regions[0]
	d := geometry.DimensionsOf(img)
	assert.Equal(t, DefaultAttentionConfidence, r.Confidence)
	assert.Equal(t, types.MethodAttention, r.Method)
	assert.True(t, d.Bounds().Contains(r.Rect, 1e-9), "region %s outside %s", r.Rect, d)
	assert.Greater(t, r.Rect.Area(), 0.0)
}

func TestAttentionDetectorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAttentionDetector(1, 0.6).Detect(ctx, createTestImage(64, 64))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWindowSize(t *testing.T) {
	w, h := windowSize(2000, 1000, 1)
	assert.Equal(t, 1000, w)
	assert.Equal(t, 1000, h)

	w, h = windowSize(1000, 1000, 16.0/9.0)
	assert.Equal(t, 1000, w)
	assert.Equal(t, 562, h)

	w, h = windowSize(1000, 2000, 0.5)
	assert.Equal(t, 1000, w)
	assert.Equal(t, 2000, h)
}

func TestNewAttentionDetectorDefaults(t *testing.T) {
	det := NewAttentionDetector(-1, 2)
	assert.Equal(t, 1.0, det.ratio)
	assert.Equal(t, DefaultAttentionConfidence, det.confidence)
}
