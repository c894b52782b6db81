package wsys

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by all backends.
var (
	// ErrNotFound reports an operation against a window id that was never
	// issued or has already been destroyed.
	ErrNotFound = errors.New("wsys: window not found")

	// ErrStopped reports a request posted after the driver shut down.
	ErrStopped = errors.New("wsys: driver stopped")

	// ErrContextLost reports an invalid GL surface or a lost context during
	// MakeCurrent or SwapBuffers.
	ErrContextLost = errors.New("wsys: GL context lost")
)

// PlatformError carries the platform's last-error value for a failed native
// call. Code is the raw platform error (a Win32 last-error, an X error code
// or an EGL error); Name is the platform's symbolic name when one is known.
type PlatformError struct {
	Op   string
	Code uint64
	Name string
}

func (e *PlatformError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("wsys: %s failed: %s (0x%x)", e.Op, e.Name, e.Code)
	}
	return fmt.Sprintf("wsys: %s failed: platform error 0x%x", e.Op, e.Code)
}

// InitError marks a failure during driver start. Start failures are fatal:
// the driver cannot run, and the failing sub-step is named by Step.
type InitError struct {
	Step string
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("wsys: driver init: %s: %v", e.Step, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }
