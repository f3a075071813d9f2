// Package skyerr classifies the errors raised while building a render request.
//
// Configuration and data-source errors abort the render. Recoverable errors
// only switch off the marker or backdrop source that produced them.
package skyerr

import (
	"errors"
	"fmt"
)

// Class is the handling class of an error.
type Class int

const (
	// Configuration covers invalid resolutions, schemes, times and coordinate strings.
	Configuration Class = iota
	// DataSource covers correlation lookups that do not return exactly one row.
	DataSource
	// Recoverable covers optional inputs that could not be read.
	Recoverable
)

// String returns the string representation of Class
func (c Class) String() string {
	switch c {
	case Configuration:
		return "configuration"
	case DataSource:
		return "data source"
	case Recoverable:
		return "recoverable"
	default:
		return "unknown"
	}
}

// Standard error variables
var (
	ErrInvalidResolution      = errors.New("invalid resolution parameter")
	ErrSchemeUndeclared       = errors.New("pixel ordering not declared")
	ErrSchemeMismatch         = errors.New("pixel ordering mismatch")
	ErrMissingObservationTime = errors.New("observation time required for terrestrial frame")
	ErrInvalidAngle           = errors.New("invalid angle")
	ErrInvalidOption          = errors.New("invalid option")
	ErrMissingObjectID        = errors.New("object id required for database lookup")
	ErrNoInjection            = errors.New("no matching row")
	ErrAmbiguousInjection     = errors.New("more than one matching row")
	ErrSourceUnreadable       = errors.New("source unreadable")
)

// ClassifiedError wraps an error with its class and the operation that failed.
type ClassifiedError struct {
	Class Class
	Op    string
	Err   error
}

// Error implements the error interface
func (e *ClassifiedError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Class, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Class, e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// Config wraps err as a ConfigurationError.
func Config(op string, err error) error {
	return &ClassifiedError{Class: Configuration, Op: op, Err: err}
}

// Configf builds a ConfigurationError wrapping sentinel with a formatted detail.
func Configf(op string, sentinel error, format string, args ...any) error {
	return Config(op, fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...)))
}

// Source wraps err as a DataSourceError.
func Source(op string, err error) error {
	return &ClassifiedError{Class: DataSource, Op: op, Err: err}
}

// Warning wraps err as a RecoverableSourceWarning.
func Warning(op string, err error) error {
	return &ClassifiedError{Class: Recoverable, Op: op, Err: err}
}

// ClassOf returns the class of err and whether err was classified at all.
func ClassOf(err error) (Class, bool) {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class, true
	}
	return 0, false
}

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool {
	c, ok := ClassOf(err)
	return ok && c == Configuration
}

// IsDataSource reports whether err is a DataSourceError.
func IsDataSource(err error) bool {
	c, ok := ClassOf(err)
	return ok && c == DataSource
}

// IsRecoverable reports whether err is a RecoverableSourceWarning.
func IsRecoverable(err error) bool {
	c, ok := ClassOf(err)
	return ok && c == Recoverable
}
