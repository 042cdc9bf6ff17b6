package resume

import "errors"

// Sentinel kinds for resume errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported resume format")
	ErrExtraction        = errors.New("resume text extraction failed")
)
