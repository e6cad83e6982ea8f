package models

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrConnection ErrorType = iota
	ErrUsage
	ErrParse
	ErrDependencyQuery
	ErrHTTP
	ErrIO
	ErrNotFound
	ErrElevation
	ErrInstall
	ErrInvalidConfig
)

// ErrCancelled is returned when the user declines the installation.
// It is a clean termination, not a failure.
var ErrCancelled = errors.New("installation cancelled")

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrConnection:
		return "Connection"
	case ErrUsage:
		return "Usage"
	case ErrParse:
		return "Parse"
	case ErrDependencyQuery:
		return "DependencyQuery"
	case ErrHTTP:
		return "HTTP"
	case ErrIO:
		return "IO"
	case ErrNotFound:
		return "NotFound"
	case ErrElevation:
		return "Elevation"
	case ErrInstall:
		return "Install"
	case ErrInvalidConfig:
		return "InvalidConfig"
	default:
		return "Unknown"
	}
}

// HadesError represents an error raised while resolving or installing a package
type HadesError struct {
	Type    ErrorType
	Package string
	Err     error
}

// Error implements the error interface
func (e *HadesError) Error() string {
	if e.Package != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Package, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *HadesError) Unwrap() error {
	return e.Err
}

// NewError builds a HadesError of the given type
func NewError(t ErrorType, pkg string, err error) *HadesError {
	return &HadesError{Type: t, Package: pkg, Err: err}
}

// IsType reports whether err carries a HadesError of type t anywhere in its chain
func IsType(err error, t ErrorType) bool {
	var he *HadesError
	if errors.As(err, &he) {
		return he.Type == t
	}
	return false
}
