package model

import "errors"

// Sentinel kinds for model validation.
var (
	ErrUnknownVenue    = errors.New("unknown venue context")
	ErrInvalidInterval = errors.New("invalid interval")
	ErrUnknownInterval = errors.New("unknown interval")
	ErrInvalidProfile  = errors.New("invalid profile")
	ErrInvalidRecord   = errors.New("invalid match record")
	ErrInvalidCounter  = errors.New("invalid momentum counter")
)
