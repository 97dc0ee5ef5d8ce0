package calc

import "errors"

// Sentinel errors for the scoring core. The core never recovers locally;
// every error is returned to the orchestration layer wrapped with context.
var (
	// ErrInvalidInput marks a numeric domain violation, e.g. a non-positive
	// base for a fractional-exponent root.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientData marks a series too short (or too filtered) to
	// support the requested calculation.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrMisalignedSeries marks an earnings/price fiscal-year mismatch.
	ErrMisalignedSeries = errors.New("misaligned series")
)
