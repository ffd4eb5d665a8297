// Package errors provides error handling for sdkgen.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
//
// Usage:
//
//	// Wrap with context
//	if err := os.WriteFile(path, data, 0644); err != nil {
//	    return errors.WrapOutputWrite(err, path)
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "export the SDK as the module's default export")
//
//	// Check errors
//	if errors.IsMalformedSdkDeclaration(err) {
//	    // report file as failed, keep going
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
	UnwrapOnce     = crdb.UnwrapOnce
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Combining
var (
	CombineErrors = crdb.CombineErrors
	Join          = crdb.Join
)

// Sentinel errors for the per-file failure taxonomy.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrMalformedSdkDeclaration indicates a declaration file has no usable SDK-shaped export
	ErrMalformedSdkDeclaration = New("malformed SDK declaration")

	// ErrMissingInputArtifact indicates a bundled source or declaration file could not be read
	ErrMissingInputArtifact = New("missing input artifact")

	// ErrOutputWrite indicates the generated unit could not be written
	ErrOutputWrite = New("output write failed")

	// ErrBundleFailed indicates the external bundler command did not produce artifacts
	ErrBundleFailed = New("bundle failed")

	// ErrDuplicateModule indicates two inputs in one batch derive the same module name
	ErrDuplicateModule = New("duplicate module name")
)

// IsMalformedSdkDeclaration checks if an error is or wraps ErrMalformedSdkDeclaration
func IsMalformedSdkDeclaration(err error) bool {
	return err != nil && Is(err, ErrMalformedSdkDeclaration)
}

// IsMissingInputArtifact checks if an error is or wraps ErrMissingInputArtifact
func IsMissingInputArtifact(err error) bool {
	return err != nil && Is(err, ErrMissingInputArtifact)
}

// IsOutputWrite checks if an error is or wraps ErrOutputWrite
func IsOutputWrite(err error) bool {
	return err != nil && Is(err, ErrOutputWrite)
}

// NewMalformedSdkDeclaration creates a malformed-declaration error with a formatted reason
func NewMalformedSdkDeclaration(format string, args ...interface{}) error {
	return Wrap(ErrMalformedSdkDeclaration, Newf(format, args...).Error())
}

// WrapMissingInputArtifact marks err as a missing artifact at path
func WrapMissingInputArtifact(err error, path string) error {
	return WithSecondaryError(Wrapf(ErrMissingInputArtifact, "%s", path), err)
}

// WrapOutputWrite marks err as a failed write of path
func WrapOutputWrite(err error, path string) error {
	return WithSecondaryError(Wrapf(ErrOutputWrite, "%s", path), err)
}
