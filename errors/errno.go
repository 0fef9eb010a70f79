// Package errors defines the closed set of errors the core can return. Each
// one is a named DiskoError rather than a raw errno so that callers deep in
// the stack can compare against a symbol instead of a magic number; the
// conversion to a negative POSIX errno happens only at the FSCore boundary,
// in ToErrno().
package errors

import (
	"fmt"
	"syscall"
)

type DiskoError string

const ErrNotFound = DiskoError("no such file or directory")
const ErrExists = DiskoError("file exists")
const ErrNoSpace = DiskoError("no space left on device")
const ErrTooLarge = DiskoError("file too large")
const ErrIO = DiskoError("input/output error")
const ErrInvalid = DiskoError("invalid argument")
const ErrNotADirectory = DiskoError("not a directory")
const ErrBusy = DiskoError("device or resource busy")

func (e DiskoError) Error() string {
	return string(e)
}

// WithMessage returns a new error carrying the same kind but a more specific
// message.
func (e DiskoError) WithMessage(message string) DriverError {
	return customDriverError{
		kind:    e,
		message: fmt.Sprintf("%s: %s", string(e), message),
	}
}

// WrapError attaches an underlying error (e.g. an I/O failure) to this kind.
func (e DiskoError) WrapError(err error) DriverError {
	return customDriverError{
		kind:          e,
		message:       fmt.Sprintf("%s: %s", string(e), err.Error()),
		originalError: err,
	}
}

// Errno converts a DiskoError to its (positive) syscall.Errno value; ToErrno
// negates it into the form the kernel bridge expects. Unrecognized kinds map
// to EIO, since that's the safest
// default for "something went wrong that the bridge doesn't know about".
func (e DiskoError) Errno() syscall.Errno {
	switch e {
	case ErrNotFound:
		return syscall.ENOENT
	case ErrExists:
		return syscall.EEXIST
	case ErrNoSpace:
		return syscall.ENOSPC
	case ErrTooLarge:
		return syscall.EFBIG
	case ErrIO:
		return syscall.EIO
	case ErrInvalid:
		return syscall.EINVAL
	case ErrNotADirectory:
		return syscall.ENOTDIR
	case ErrBusy:
		return syscall.EBUSY
	default:
		return syscall.EIO
	}
}

// DriverError is the richer error type returned internally; it always knows
// which DiskoError kind it stems from so Errno() still works after wrapping.
type DriverError interface {
	error
	Kind() DiskoError
	WithMessage(message string) DriverError
	WrapError(err error) DriverError
	Errno() syscall.Errno
}

type customDriverError struct {
	kind          DiskoError
	message       string
	originalError error
}

func (e customDriverError) Error() string {
	return e.message
}

func (e customDriverError) Kind() DiskoError {
	return e.kind
}

func (e customDriverError) Errno() syscall.Errno {
	return e.kind.Errno()
}

func (e customDriverError) WithMessage(message string) DriverError {
	return customDriverError{
		kind:    e.kind,
		message: fmt.Sprintf("%s: %s", e.message, message),
	}
}

func (e customDriverError) WrapError(err error) DriverError {
	return customDriverError{
		kind:          e.kind,
		message:       fmt.Sprintf("%s: %s", e.message, err.Error()),
		originalError: err,
	}
}

func (e customDriverError) Unwrap() error {
	return e.originalError
}
