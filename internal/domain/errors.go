package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrMalformedQuery signals query input the engine cannot compile (raw syntax, bad culture, bad id).
	// Search degrades to an empty result for this class.
	ErrMalformedQuery = errors.New("malformed query")
	// ErrUnexpectedItemType signals an item type value with no mapping. Never degraded.
	ErrUnexpectedItemType = errors.New("unexpected item type")
	// ErrInvalidSort signals an unknown sort name.
	ErrInvalidSort = errors.New("invalid sort")
	// ErrDistanceSortWithoutLocation signals distance sort on a query without a location.
	ErrDistanceSortWithoutLocation = errors.New("distance sort requires a location")
	// ErrInvalidDocument signals a document that cannot be indexed and read back.
	ErrInvalidDocument = errors.New("invalid document")
)

// MalformedError wraps ErrMalformedQuery with the offending input.
type MalformedError struct {
	Input string
	Err   error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: %q: %v", ErrMalformedQuery.Error(), e.Input, e.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is.
func (e *MalformedError) Unwrap() []error { return []error{ErrMalformedQuery, e.Err} }

// NewMalformed creates a malformed query error.
func NewMalformed(input string, err error) error {
	return &MalformedError{Input: input, Err: err}
}
