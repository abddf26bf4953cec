package config

import (
	"errors"
	"fmt"
)

// ErrInvalidDateFormat indicates a date flag did not match YYYY-MM-DD
var ErrInvalidDateFormat = errors.New("invalid date format")

// ErrInvalidDateRange indicates the start date falls after the end date
var ErrInvalidDateRange = errors.New("invalid date range: --from must be before or equal to --to")

// ErrMutuallyExclusiveFlags indicates --from/--to were combined with --last
var ErrMutuallyExclusiveFlags = errors.New("use --from/--to OR --last, not both")

// ErrMissingFromDate indicates --to was given without --from
var ErrMissingFromDate = errors.New("use --from together with --to")

// DateFormatError carries the date string that failed to parse
type DateFormatError struct {
	Value string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("invalid date format: '%s'. Expected YYYY-MM-DD", e.Value)
}

func (e *DateFormatError) Unwrap() error {
	return ErrInvalidDateFormat
}
