package cleaning

import "errors"

var (
	// ErrEmptySeries is returned when a stage has no samples left to work on.
	ErrEmptySeries = errors.New("light curve has no samples")
	// ErrZeroMaximum is returned when the flux maximum cannot be used as a divisor.
	ErrZeroMaximum = errors.New("flux maximum is not a positive finite number")
)
