package client

import (
	"context"

	"github.com/menta2k/focuscrop/pkg/types"
)

// VisionClient is a backend that can answer prompts about an image
type VisionClient interface {
	SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error)
	Detect(ctx context.Context, model, prompt, imgB64 string) (*types.DetectionResponse, error)
}
