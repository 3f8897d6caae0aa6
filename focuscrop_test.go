package focuscrop

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/focuscrop/internal/config"
	"github.com/menta2k/focuscrop/pkg/cropper"
	"github.com/menta2k/focuscrop/pkg/detection"
	"github.com/menta2k/focuscrop/pkg/geometry"
	"github.com/menta2k/focuscrop/pkg/llamacpp"
	"github.com/menta2k/focuscrop/pkg/ollama"
	"github.com/menta2k/focuscrop/pkg/types"
)

// createTestImage creates a simple test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// Create a pattern with a bright subject in the center
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x > width/3 && x < 2*width/3 && y > height/3 && y < 2*height/3 {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{64, 64, 64, 255})
			}
		}
	}

	return img
}

type stubDetector struct {
	method  types.Method
	regions []types.SalientRegion
	err     error
}

func (s stubDetector) Method() types.Method { return s.method }

func (s stubDetector) Detect(ctx context.Context, img image.Image) ([]types.SalientRegion, error) {
	return s.regions, s.err
}

func newService(t *testing.T, config Config, detectors ...detection.Detector) *Service {
	t.Helper()
	o, err := detection.NewOrchestrator(detection.DefaultConfig(), detectors...)
	require.NoError(t, err)
	s, err := NewWithConfig(o, config)
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	o, err := detection.NewOrchestrator(detection.DefaultConfig())
	require.NoError(t, err)

	s := New(o)
	require.NotNil(t, s)
	assert.Equal(t, DefaultConfig(), s.Config())
	assert.NotNil(t, s.Processor())
}

func TestNewWithConfigValidation(t *testing.T) {
	_, err := NewWithConfig(nil, DefaultConfig())
	assert.Error(t, err)

	o, _ := detection.NewOrchestrator(detection.DefaultConfig())
	_, err = NewWithConfig(o, Config{TargetRatio: 0})
	assert.ErrorIs(t, err, cropper.ErrInvalidRatio)
}

func TestPlanCornerSubject(t *testing.T) {
	object := stubDetector{method: types.MethodObject, regions: []types.SalientRegion{
		{Rect: geometry.Rect{X: 50, Y: 50, W: 100, H: 100}, Confidence: 0.9, Label: "ball"},
	}}
	face := stubDetector{method: types.MethodFace, err: errors.New("no faces")}
	s := newService(t, DefaultConfig(), face, object)

	plan, err := s.Plan(context.Background(), createTestImage(2000, 1000))
	require.NoError(t, err)

	assert.Equal(t, types.MethodObject, plan.Crop.Method)
	assert.Equal(t, "topLeft", plan.Trace.Zone)
	assert.InDelta(t, 0, plan.Crop.Rect.X, 1e-9)
	assert.InDelta(t, 0, plan.Crop.Rect.Y, 1e-9)
	assert.InDelta(t, 1000, plan.Crop.Rect.W, 1e-9)
	assert.InDelta(t, 1000, plan.Crop.Rect.H, 1e-9)
	assert.Equal(t, detection.StateResolved, plan.Detection.State)
	assert.Len(t, plan.Detection.Attempts, 2)
}

func TestPlanGeometricFallback(t *testing.T) {
	s := newService(t, DefaultConfig(),
		stubDetector{method: types.MethodFace},
		stubDetector{method: types.MethodObject, err: errors.New("timeout")},
		stubDetector{method: types.MethodAttention, regions: []types.SalientRegion{{Confidence: 0.1}}},
	)

	plan, err := s.Plan(context.Background(), createTestImage(800, 600))
	require.NoError(t, err)

	assert.Equal(t, types.MethodGeometric, plan.Crop.Method)
	assert.Equal(t, detection.StateGeometricFallback, plan.Detection.State)
	assert.InDelta(t, 400, plan.Crop.Rect.MidX(), 1e-9)
	assert.InDelta(t, 300, plan.Crop.Rect.MidY(), 1e-9)
	assert.InDelta(t, 600, plan.Crop.Rect.W, 1e-9)
	assert.InDelta(t, 600, plan.Crop.Rect.H, 1e-9)
}

func TestPlanInvalidImage(t *testing.T) {
	s := newService(t, DefaultConfig())

	_, err := s.Plan(context.Background(), image.NewRGBA(image.Rect(0, 0, 0, 0)))
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = s.Process(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestPlanCancelled(t *testing.T) {
	s := newService(t, DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Plan(ctx, createTestImage(100, 100))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessAppliesBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PixelBudget = 250_000
	s := newService(t, cfg)

	res, err := s.Process(context.Background(), createTestImage(2000, 1000))
	require.NoError(t, err)

	assert.True(t, res.Plan.Crop.Downsampled())
	assert.Equal(t, 500, res.Plan.Crop.OutputWidth)
	assert.Equal(t, 500, res.Plan.Crop.OutputHeight)
	assert.Equal(t, image.Rect(0, 0, 500, 500), res.Image.Bounds())
}

func TestProcessWideRatio(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TargetRatio = 16.0 / 9.0
	cfg.PixelBudget = 0
	s := newService(t, cfg)

	res, err := s.Process(context.Background(), createTestImage(900, 900))
	require.NoError(t, err)

	b := res.Image.Bounds()
	assert.Equal(t, 900, b.Dx())
	assert.Equal(t, 506, b.Dy())
	assert.False(t, res.Plan.Crop.Downsampled())
}

func TestDebugOverlay(t *testing.T) {
	s := newService(t, DefaultConfig())
	img := createTestImage(300, 200)

	plan, err := s.Plan(context.Background(), img)
	require.NoError(t, err)

	overlay := s.DebugOverlay(img, plan)
	assert.Equal(t, img.Bounds(), overlay.Bounds())
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()

	s, err := NewFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Config().TargetRatio)
	assert.True(t, s.Config().Crop.Fill)

	plan, err := s.Plan(context.Background(), createTestImage(400, 300))
	require.NoError(t, err)

	// no vision backend: face and object are skipped, attention runs
	require.Len(t, plan.Detection.Attempts, 3)
	assert.Equal(t, detection.OutcomeSkipped, plan.Detection.Attempts[0].Outcome)
	assert.Equal(t, detection.OutcomeSkipped, plan.Detection.Attempts[1].Outcome)
	assert.Equal(t, types.MethodAttention, plan.Crop.Method)
}

func TestNewFromConfigInvalid(t *testing.T) {
	cfg := config.Default()
	cfg.Crop.TargetRatio = "sideways"

	_, err := NewFromConfig(cfg)
	assert.Error(t, err)
}

func TestNewVisionClient(t *testing.T) {
	c, err := NewVisionClient(config.VisionConfig{Backend: "ollama", URL: "http://localhost:11434"})
	require.NoError(t, err)
	assert.IsType(t, &ollama.Client{}, c)

	c, err = NewVisionClient(config.VisionConfig{Backend: "llamacpp", URL: "http://localhost:8080"})
	require.NoError(t, err)
	assert.IsType(t, &llamacpp.Client{}, c)

	c, err = NewVisionClient(config.VisionConfig{Backend: "none"})
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = NewVisionClient(config.VisionConfig{Backend: "gpt"})
	assert.Error(t, err)
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, Version, GetVersion())
}
