// Package winerr defines the single error kind returned by every fallible native call.
//
// Each Win32 entry point signals failure its own way (a null handle, a zero BOOL, a negative
// result, INVALID_HANDLE_VALUE). Callers detect the failure using that convention and then
// wrap the thread's last-error code captured at that point.
package winerr

import (
	"errors"
	"fmt"
	"syscall"
)

// Error wraps the platform last-error code of a failed native call.
type Error struct {
	Op   string
	Code syscall.Errno
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v (code %d)", e.Op, e.Code, uint32(e.Code))
}

// Unwrap exposes the raw code so errors.Is(err, windows.ERROR_ACCESS_DENIED) works.
func (e *Error) Unwrap() error {
	return e.Code
}

// New builds an Error for op with an explicit code.
func New(op string, code syscall.Errno) error {
	return &Error{Op: op, Code: code}
}

// FromCall wraps the error returned as the third result of LazyProc.Call.
// That value is the last error the runtime captured straight after the call.
func FromCall(op string, err error) error {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return &Error{Op: op, Code: errno}
	}

	if err == nil {
		return &Error{Op: op}
	}

	return fmt.Errorf("%s: %w", op, err)
}

// Code extracts the platform code from err.
func Code(err error) (syscall.Errno, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno, true
	}

	return 0, false
}
