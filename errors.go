package xboxjoy

import (
	"errors"
	"fmt"
)

const (
	errOsNotSupported   = "os is not supported (yet)"
	errDeviceNotFound   = "%w: handle '%s'"
	errIndexOutOfRange  = "%w: %s index %d not in [0, %d)"
	errLayoutMismatch   = "%w: %s count changed between ticks (%d != %d)"
	errControllerClosed = "%w: '%s'"
)

var (
	// ErrNoDeviceConnected is returned when enumeration finds no controllers.
	ErrNoDeviceConnected = errors.New("no controller connected")

	// ErrInvariantViolation marks snapshots whose index ranges disagree.
	// It is a driver or programming error and is never retried.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrIndexOutOfRange is returned by Remap for indices outside the layout.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrHandlerFailure matches every *HandlerFailure.
	ErrHandlerFailure = errors.New("handler failure")

	ErrDeviceNotFound   = errors.New("device not found")
	ErrDriverClosed     = errors.New("driver is closed")
	ErrControllerClosed = errors.New("controller is closed")
	ErrOsNotSupported   = errors.New(errOsNotSupported)
)

// HandlerFailure wraps an error returned (or a panic raised) by a handler
// during dispatch.
type HandlerFailure struct {
	Event InputEvent
	Err   error
}

func (f *HandlerFailure) Error() string {
	return fmt.Sprintf("handler for %s failed: %v", f.Event, f.Err)
}

func (f *HandlerFailure) Unwrap() error {
	return f.Err
}

func (f *HandlerFailure) Is(target error) bool {
	return target == ErrHandlerFailure
}
