package domain

import "errors"

// Error kinds shared by all layers. Package-level sentinels wrap these so that
// callers can match either the precise error or its kind with errors.Is.
var (
	ErrValidation     = errors.New("validation error")
	ErrNotFound       = errors.New("not found")
	ErrHoldInactive   = errors.New("hold is not active")
	ErrHoldExpired    = errors.New("hold has expired")
	ErrHoldOwnership  = errors.New("hold belongs to another customer")
	ErrConflict       = errors.New("slot is no longer available")
	ErrTransientStore = errors.New("transient store failure")
	ErrAccessDenied   = errors.New("access denied")

	ErrPayRunConfiguration = errors.New("pay run configuration is incomplete")
)
