package cropper

import "errors"

var (
	// ErrInvalidImage is returned when the image has no area
	ErrInvalidImage = errors.New("invalid image dimensions")

	// ErrInvalidRatio is returned when the target aspect ratio is not a positive finite number
	ErrInvalidRatio = errors.New("invalid target aspect ratio")

	// ErrCropOutOfBounds means the computed crop violated its bounds or ratio
	// invariant. It indicates a defect, not a recoverable condition.
	ErrCropOutOfBounds = errors.New("crop out of bounds")
)
