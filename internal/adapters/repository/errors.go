package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound = errors.New("profile not found")
	ErrClosed   = errors.New("store closed")
)
