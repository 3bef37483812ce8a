package model

import "fmt"

// Error codes. Format errors are fatal for a run; the others only affect the
// chunk being processed.
const (
	CodeFormat        = "format"
	CodeMapping       = "mapping"
	CodeShapeMismatch = "shape_mismatch"
	CodeSizeMismatch  = "size_mismatch"
	CodeOutOfRange    = "out_of_range"
)

// Common errors, usable as errors.Is targets
var (
	ErrFormat        = &Error{Code: CodeFormat, Message: "invalid format"}
	ErrMapping       = &Error{Code: CodeMapping, Message: "palette mapping failed"}
	ErrShapeMismatch = &Error{Code: CodeShapeMismatch, Message: "shape mismatch"}
	ErrSizeMismatch  = &Error{Code: CodeSizeMismatch, Message: "size mismatch"}
	ErrOutOfRange    = &Error{Code: CodeOutOfRange, Message: "chunk out of range"}
)

// Error represents a gadgetconv error
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Fatal reports whether the error aborts a whole run.
func (e *Error) Fatal() bool {
	return e.Code == CodeFormat
}

func newError(code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// FormatError returns a structural error: misaligned index, malformed map.
func FormatError(format string, args ...interface{}) error {
	return newError(CodeFormat, format, args...)
}

// MappingError returns a per-sprite palette resolution error.
func MappingError(format string, args ...interface{}) error {
	return newError(CodeMapping, format, args...)
}

// ShapeMismatchError returns a per-chunk repack error.
func ShapeMismatchError(format string, args ...interface{}) error {
	return newError(CodeShapeMismatch, format, args...)
}

// SizeMismatchError returns an interleave codec length error.
func SizeMismatchError(format string, args ...interface{}) error {
	return newError(CodeSizeMismatch, format, args...)
}

// OutOfRangeError returns an error for a chunk that does not fit the blob.
func OutOfRangeError(format string, args ...interface{}) error {
	return newError(CodeOutOfRange, format, args...)
}
