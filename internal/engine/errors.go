package engine

import "errors"

var (
	// ErrInvalidState is returned when Advance receives a level outside
	// [0,100] or an hour outside [0,23]. Input is never corrected.
	ErrInvalidState = errors.New("invalid tank state")
	// ErrInvalidConfig is returned for out-of-range thresholds or engine constants.
	ErrInvalidConfig = errors.New("invalid tank config")
)
