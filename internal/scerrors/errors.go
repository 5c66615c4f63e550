// Package scerrors defines the error taxonomy of the build driver: a small
// set of sentinel-ish, typed errors that every other package returns through
// so that callers can distinguish abort reasons with errors.As.
package scerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConfigInvalid reports a configuration that failed schema validation.
type ConfigInvalid struct {
	Reason string
}

func (e *ConfigInvalid) Error() string {
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

// NameResolutionError reports that every strategy in a resolver chain
// declined a name.
type NameResolutionError struct {
	Name string
	Tail error
}

func (e *NameResolutionError) Error() string {
	if e.Tail != nil {
		return fmt.Sprintf("could not resolve %q: %v", e.Name, e.Tail)
	}
	return fmt.Sprintf("could not resolve %q", e.Name)
}

func (e *NameResolutionError) Unwrap() error { return e.Tail }

// UnsatisfiableVersionError reports that no released version satisfies a
// constraint.
type UnsatisfiableVersionError struct {
	Constraint string
}

func (e *UnsatisfiableVersionError) Error() string {
	return fmt.Sprintf("no released version satisfies constraint %q", e.Constraint)
}

// UnsupportedVersionError reports that no wrapper family prefix-matches a
// selected version.
type UnsupportedVersionError struct {
	Version string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("no compiler wrapper supports version %q", e.Version)
}

// CompilationError reports diagnostics at error severity returned by a
// back-end invocation.
type CompilationError struct {
	Version     string
	ErrorsCount int
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("compilation with %s produced %d error(s)", e.Version, e.ErrorsCount)
}

// MissingContractError reports that a contract's compiled record could not
// be found under either the modern or the legacy output shape.
type MissingContractError struct {
	ContractName string
	AbsolutePath string
}

func (e *MissingContractError) Error() string {
	return fmt.Sprintf("contract %q not found in compiler output for %s (file name must match contract name)", e.ContractName, e.AbsolutePath)
}

// IOError wraps a filesystem or network failure that is not recoverable via
// an offline-mode fallback.
type IOError struct {
	Op    string
	Cause error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *IOError) Unwrap() error { return e.Cause }

// Wrap annotates cause with op, producing an *IOError with a stack trace
// captured at the call site, mirroring how the teacher's own fatal paths
// keep a trace for diagnostics.
func Wrap(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &IOError{Op: op, Cause: errors.WithStack(cause)}
}
