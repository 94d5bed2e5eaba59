// Package errors provides error handling for grahak.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Sentinel errors for the resolution engine's outcome classes
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrStoreUnavailable) {
//	    // handle outage distinctly from an empty result
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for the three outcome classes the resolution engine must
// never conflate: validation failures, not-found, and collaborator failure.
// A legitimate no-match is none of these; callers get an empty result.
// Use these with errors.Is() and wrap them with errors.Wrap() to add context
// while preserving the class.
var (
	// ErrEmptyQuery indicates a search or match was attempted with an
	// empty query string
	ErrEmptyQuery = New("empty query")

	// ErrInvalidID indicates an empty or malformed customer/conversation
	// identifier
	ErrInvalidID = New("invalid identifier")

	// ErrInvalidThreshold indicates a non-finite or out-of-range matching
	// threshold
	ErrInvalidThreshold = New("invalid threshold")

	// ErrNotFound indicates a lookup by identifier found nothing. Searches
	// never return this: an empty candidate list is a legitimate outcome.
	ErrNotFound = New("not found")

	// ErrStoreUnavailable indicates the customer store collaborator failed
	// or timed out. Must propagate; never reinterpret as no-match.
	ErrStoreUnavailable = New("customer store unavailable")

	// ErrDuplicate indicates a create was refused because an existing
	// customer matched above the duplicate threshold
	ErrDuplicate = New("duplicate customer")
)

// IsValidation checks if an error is one of the fail-fast input validation
// sentinels.
func IsValidation(err error) bool {
	return err != nil && IsAny(err, ErrEmptyQuery, ErrInvalidID, ErrInvalidThreshold)
}

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsStoreUnavailable checks if an error is or wraps ErrStoreUnavailable.
func IsStoreUnavailable(err error) bool {
	return err != nil && Is(err, ErrStoreUnavailable)
}

// WrapStore marks a customer store failure, preserving the original error
// while making the outage checkable with errors.Is.
func WrapStore(err error, context string) error {
	return Wrap(Wrap(ErrStoreUnavailable, err.Error()), context)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}
