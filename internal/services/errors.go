package services

import "errors"

// Export service errors
var (
	ErrNoDeliverer = errors.New("no delivery target")
)
