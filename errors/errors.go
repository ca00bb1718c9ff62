// Package errors provides error handling for resgen.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for build diagnostics
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := writeFile(); err != nil {
//	    return errors.Wrap(err, "failed to write R.java")
//	}
//
//	// Classify as one of the resgen failure kinds
//	return errors.Mark(err, errors.ErrIO)
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
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Failure kinds surfaced by the generator.
// Use these with errors.Is() for type-safe error checking.
var (
	// ErrAttrLookup indicates a styleable references an attribute that is
	// neither declared locally nor known to the framework resolver.
	ErrAttrLookup = New("attribute lookup failed")

	// ErrConflictingDeclaration indicates two explicit values for one symbol,
	// or one explicit value pinned by two symbols of the same type.
	ErrConflictingDeclaration = New("conflicting declaration")

	// ErrInvalidDeclaration indicates a declaration that can never be emitted,
	// such as a negative explicit value.
	ErrInvalidDeclaration = New("invalid declaration")

	// ErrIO indicates a failure creating or writing an output artifact
	ErrIO = New("i/o failure")
)

// IsAttrLookupError checks if an error is or wraps ErrAttrLookup
func IsAttrLookupError(err error) bool {
	return err != nil && Is(err, ErrAttrLookup)
}

// IsConflictError checks if an error is or wraps ErrConflictingDeclaration
func IsConflictError(err error) bool {
	return err != nil && Is(err, ErrConflictingDeclaration)
}

// IsInvalidDeclarationError checks if an error is or wraps ErrInvalidDeclaration
func IsInvalidDeclarationError(err error) bool {
	return err != nil && Is(err, ErrInvalidDeclaration)
}

// IsIOError checks if an error is or wraps ErrIO
func IsIOError(err error) bool {
	return err != nil && Is(err, ErrIO)
}

// WrapIO wraps err with context and marks it as an I/O failure.
// The original cause stays reachable through errors.Is.
func WrapIO(err error, context string) error {
	if err == nil {
		return nil
	}
	return Mark(Wrap(err, context), ErrIO)
}

// WrapIOf is WrapIO with a formatted context message
func WrapIOf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Mark(Wrapf(err, format, args...), ErrIO)
}

// NewAttrLookupError creates an attribute lookup error naming the missing attribute
func NewAttrLookupError(styleable, attr string) error {
	err := Mark(Newf("styleable %q references unknown attribute %q", styleable, attr), ErrAttrLookup)
	return WithHintf(err, "declare attr %q in this module or check the framework attribute table", attr)
}

// WrapAttrLookup wraps a resolver failure as an attribute lookup error
func WrapAttrLookup(cause error, styleable, attr string) error {
	return Mark(Wrapf(cause, "resolving attribute %q of styleable %q", attr, styleable), ErrAttrLookup)
}
