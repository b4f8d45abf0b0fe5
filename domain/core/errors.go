package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions.
//
// The only fatal class is ErrRecordFormat: a persisted simulation record
// that cannot be parsed aborts analysis. Missing spikes, missing LFP and
// population-resolution fallbacks are warnings, never errors - partial
// output is a normal operating condition during iterative model
// development.
var (
	ErrRecordFormat   = errors.New("malformed simulation record")
	ErrRecordNotFound = errors.New("simulation record not found")
)

// NewRecordFormatError wraps a parse failure with the offending file path.
func NewRecordFormatError(path string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrRecordFormat, path, cause)
}

// NewRecordFieldError flags a structurally invalid field inside an otherwise
// parseable record (e.g. spike time/id arrays of different lengths).
func NewRecordFieldError(path, field, reason string) error {
	return fmt.Errorf("%w: %s: field %q: %s", ErrRecordFormat, path, field, reason)
}

func IsRecordFormatError(err error) bool {
	return errors.Is(err, ErrRecordFormat)
}
