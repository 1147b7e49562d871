package saturation

import "errors"

// Sentinel kinds for saturation policy errors.
var (
	ErrInvalidTable = errors.New("invalid expected-count table")
	ErrInvalidTiers = errors.New("invalid saturation tiers")
)
