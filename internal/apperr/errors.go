// Package apperr defines the error taxonomy shared across layers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation covers malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound means the referenced entity is absent, or a loan is
	// already closed (callers cannot tell the two apart).
	ErrNotFound = errors.New("not found")
	// ErrDuplicateISBN means another book already carries this ISBN.
	ErrDuplicateISBN = errors.New("duplicate isbn")
	// ErrInvariant means the copies/available consistency would break.
	ErrInvariant = errors.New("invariant violation")
)

// ErrNoCopies is the availability failure on issue. It wraps
// ErrValidation, so errors.Is(err, ErrValidation) matches it too.
var ErrNoCopies = fmt.Errorf("no copies available: %w", ErrValidation)
