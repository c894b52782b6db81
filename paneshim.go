// Package paneshim exposes platform window backends behind one contract:
// a driver owns a single UI thread, delivers window events through
// per-window ordered queues, and answers cross-thread requests
// synchronously. The backend is selected by GOOS at build time; the
// portable types live in the wsys package.
package paneshim

import "github.com/1broseidon/paneshim/wsys"

// Driver is the per-platform backend. Run claims the calling goroutine as
// the UI thread and blocks until Stop; every other method may be called
// from any goroutine, including callbacks running on the UI thread
// itself.
type Driver interface {
	// Run enters the platform event loop. On macOS it must be called
	// from the main goroutine.
	Run() error

	// Stop requests shutdown. It is idempotent and safe from any
	// goroutine; Run returns after remaining windows are destroyed.
	Stop()

	// Done is closed once Run has returned.
	Done() <-chan struct{}

	// NewWindow creates a hidden window of the given client size.
	NewWindow(width, height int) (wsys.WindowID, error)

	// ShowWindow maps the window and returns its surface handle.
	// Showing an already-shown window returns the same surface.
	ShowWindow(id wsys.WindowID) (wsys.SurfaceID, error)

	// CloseWindow destroys the window and delivers the final close
	// callback. Unknown ids are a no-op.
	CloseWindow(id wsys.WindowID) error

	// MakeCurrent binds the surface's GL context to the calling
	// thread where the platform supports it, and validates the
	// surface everywhere.
	MakeCurrent(surface wsys.SurfaceID) error

	// SwapBuffers presents the surface's back buffer.
	SwapBuffers(surface wsys.SurfaceID) error

	// ThreadID reports the UI thread's OS identity, 0 before Run.
	ThreadID() uint64
}

// Start initializes the backend for the build's platform. The returned
// driver is inert until Run is called.
func Start(opts wsys.Options) (Driver, error) {
	return start(opts)
}
