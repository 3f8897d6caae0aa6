package detection

import "errors"

var (
	// ErrDetectionTimeout is reported when a detector misses its step
	// deadline or the chain misses its global deadline
	ErrDetectionTimeout = errors.New("detection timed out")
	// ErrDetectionFailure covers detector errors and unusable results
	ErrDetectionFailure = errors.New("detection failed")
	// ErrNoDetector is reported for a chain method with no registered detector
	ErrNoDetector = errors.New("no detector registered")
)
