package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrMalformedRow  = errors.New("malformed input row")
	ErrInvalidKey    = errors.New("invalid identifying key")
	ErrNonNumeric    = errors.New("non-numeric metric value")
	ErrEmptyInput    = errors.New("input contains no session rows")
	ErrUnknownColumn = errors.New("unexpected column layout")

	// Configuration errors
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrSeasonOverlap     = fmt.Errorf("%w: overlapping season ranges", ErrInvalidConfig)
	ErrNonPositiveSpan   = fmt.Errorf("%w: EWMA span must be positive", ErrInvalidConfig)
	ErrEmptyCategory     = fmt.Errorf("%w: empty metric category", ErrInvalidConfig)
	ErrInvalidHorizon    = fmt.Errorf("%w: horizon end before start", ErrInvalidConfig)
	ErrInvalidThresholds = fmt.Errorf("%w: ACWR upper bound must exceed lower bound", ErrInvalidConfig)

	// Pipeline errors
	ErrUnsortedSeries = errors.New("player series not date-ascending")
	ErrUnknownMetric  = errors.New("unknown metric name")
)

// NewRowError describes a rejected input row with its position.
func NewRowError(line int, err error) error {
	return fmt.Errorf("row %d: %w", line, err)
}

// IsConfigError reports whether err is a fatal configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
