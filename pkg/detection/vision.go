package detection

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/menta2k/focuscrop/pkg/client"
	"github.com/menta2k/focuscrop/pkg/geometry"
	"github.com/menta2k/focuscrop/pkg/processing"
	"github.com/menta2k/focuscrop/pkg/types"
)

// SimpleTestPrompt for testing if the model can see images
const SimpleTestPrompt = `What do you see in this image? Describe it briefly.`

// FacePrompt asks for every human face in the image
const FacePrompt = `You are a face locator.

Return JSON only:
{
  "subjects": [
    {"label": "face", "confidence": 0.0, "box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0}}
  ],
  "description": "short neutral sentence (≤ 20 words)",
  "tags": ["tag1", "tag2", "tag3"]
}

HARD RULES
- One entry per visible human face, tightly boxed from forehead to chin.
- All coordinates are normalized to [0,1] (NOT pixels), origin at the top-left corner.
- confidence is your certainty in [0,1] that the box holds a real face.
- Do not guess identities.
- If no face is visible, return {"subjects": [], "description": "no face", "tags": []}.
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// ObjectPrompt asks for the visually dominant subjects in the image
const ObjectPrompt = `You are an image subject locator.

Return JSON only:
{
  "subjects": [
    {"label": "string", "confidence": 0.0, "box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0}}
  ],
  "description": "short neutral sentence (≤ 20 words)",
  "tags": ["tag1", "tag2", "tag3", "tag4", "tag5"]
}

HARD RULES
- List at most 3 subjects, most important first (prefer people, animals, vehicles; else the most salient object).
- All coordinates are normalized to [0,1] (NOT pixels), origin at the top-left corner.
- Each box should tightly include its subject.
- confidence is your certainty in [0,1].
- Tags: lowercase, concise, no punctuation or duplicates.
- If no subject is found, return {"subjects": [], "description": "generic scene", "tags": []}.
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

var fallbackIndicators = []string{"unclear", "empty", "parse", "error", "fallback", "non-json", "generic"}

// VisionOptions configures a VisionDetector
type VisionOptions struct {
	Model string
	// Prompt overrides the built-in prompt for the method
	Prompt string
	// Origin is the corner the model measures boxes from
	Origin      geometry.Origin
	SendFormat  string
	SendSize    int
	SendQuality int
}

// VisionDetector locates faces or objects with a vision language model
type VisionDetector struct {
	client    client.VisionClient
	processor *processing.Processor
	method    types.Method
	opts      VisionOptions
}

// NewVisionDetector creates a face or object detector backed by c
func NewVisionDetector(c client.VisionClient, method types.Method, opts VisionOptions) (*VisionDetector, error) {
	if c == nil {
		return nil, fmt.Errorf("vision client is required")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("%s detector: model is required", method)
	}
	if opts.Prompt == "" {
		switch method {
		case types.MethodFace:
			opts.Prompt = FacePrompt
		case types.MethodObject:
			opts.Prompt = ObjectPrompt
		default:
			return nil, fmt.Errorf("vision detector does not support method %s", method)
		}
	}
	if opts.SendFormat == "" {
		opts.SendFormat = "jpg"
	}
	if opts.SendSize <= 0 {
		opts.SendSize = 1024
	}
	if opts.SendQuality <= 0 {
		opts.SendQuality = 85
	}

	return &VisionDetector{
		client:    c,
		processor: processing.NewProcessor(),
		method:    method,
		opts:      opts,
	}, nil
}

func (v *VisionDetector) Method() types.Method {
	return v.method
}

// Detect sends img to the model and converts the reported boxes to pixel
// regions of img
func (v *VisionDetector) Detect(ctx context.Context, img image.Image) ([]types.SalientRegion, error) {
	b64, err := v.processor.PrepareImageForModel(img, v.opts.SendFormat, v.opts.SendSize, v.opts.SendQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare image: %w", err)
	}

	resp, err := v.client.Detect(ctx, v.opts.Model, v.opts.Prompt, b64)
	if err != nil {
		return nil, err
	}

	d := geometry.DimensionsOf(img)
	sent := sentDimensions(d, v.opts.SendSize)

	regions := make([]types.SalientRegion, 0, len(resp.Subjects))
	for _, s := range resp.Subjects {
		if isFallback(s.Label) {
			continue
		}
		n, ok := normalizeBox(s.Box, sent)
		if !ok {
			continue
		}
		regions = append(regions, types.SalientRegion{
			Rect:       geometry.FromNormalized(n, d, v.opts.Origin),
			Method:     v.method,
			Confidence: geometry.Clamp(s.Confidence, 0, 1),
			Label:      strings.ToLower(strings.TrimSpace(s.Label)),
		})
	}

	log.Ctx(ctx).Debug().
		Stringer("method", v.method).
		Str("model", v.opts.Model).
		Int("subjects", len(resp.Subjects)).
		Int("kept", len(regions)).
		Str("description", resp.Description).
		Msg("vision detection")

	return regions, nil
}

// TestVision checks that the model can see images at all
func (v *VisionDetector) TestVision(ctx context.Context, img image.Image) (string, error) {
	b64, err := v.processor.PrepareImageForModel(img, v.opts.SendFormat, v.opts.SendSize, v.opts.SendQuality)
	if err != nil {
		return "", err
	}
	return v.client.SimpleQuery(ctx, v.opts.Model, SimpleTestPrompt, b64)
}

func isFallback(label string) bool {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "none" {
		return true
	}
	for _, indicator := range fallbackIndicators {
		if strings.Contains(l, indicator) {
			return true
		}
	}
	return false
}

// sentDimensions returns the size of the image the model actually saw
func sentDimensions(d geometry.Dimensions, maxDim int) geometry.Dimensions {
	longest := math.Max(d.Width, d.Height)
	if maxDim <= 0 || longest <= float64(maxDim) {
		return d
	}
	scale := float64(maxDim) / longest
	return geometry.Dimensions{Width: d.Width * scale, Height: d.Height * scale}
}

// normalizeBox returns b in [0,1] units. Models sometimes answer in pixels
// of the image they were sent; any coordinate above 1 is taken as that.
func normalizeBox(b types.Box, sent geometry.Dimensions) (geometry.Rect, bool) {
	for _, v := range []float64{b.X, b.Y, b.W, b.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return geometry.Rect{}, false
		}
	}
	if b.W < 0 || b.H < 0 {
		return geometry.Rect{}, false
	}

	n := geometry.Rect{X: b.X, Y: b.Y, W: b.W, H: b.H}
	if b.X > 1 || b.Y > 1 || b.W > 1 || b.H > 1 {
		n = geometry.Rect{
			X: b.X / sent.Width,
			Y: b.Y / sent.Height,
			W: b.W / sent.Width,
			H: b.H / sent.Height,
		}
	}
	return n, true
}
