package simulate

import "time"

// Client defaults.
const (
	DefaultTimeout = 90 * time.Second
	DefaultRetries = 2
	retryDelay     = time.Second
	maxErrorBody   = 512
)
