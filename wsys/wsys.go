// Package wsys defines the portable contract between the platform window
// backends and the host toolkit: window and surface identifiers, the
// semantic event callbacks a host supplies, the color and fill-mode types
// used by the drawing primitives, and the shared error taxonomy.
//
// All backends obey the same threading rule: windows are created, destroyed
// and have their events dispatched on a single UI thread. Callbacks are
// delivered in platform order, one window at a time, and the close callback
// is always the last one a window id ever receives.
package wsys

import (
	"image/draw"
	"log/slog"
)

// WindowID identifies a live top-level window. It is valid from the moment
// NewWindow returns it until CloseWindow destroys it; afterwards operations
// against it fail with ErrNotFound.
type WindowID uint64

// SurfaceID is the render target handle returned by ShowWindow. On X11 it
// is an EGL window surface; on Windows and macOS it is the window id itself.
type SurfaceID uintptr

// FillMode selects the compositing behavior of the fill primitives.
// FillSrc overwrites the destination; FillOver blends using the source
// alpha. These are the two Porter-Duff modes the backends support and they
// map directly onto the standard library's draw.Op values.
type FillMode = draw.Op

const (
	FillOver FillMode = draw.Over
	FillSrc  FillMode = draw.Src
)

// MouseDirection reports whether a mouse event is a movement, a button
// press or a button release.
type MouseDirection uint8

const (
	DirNone MouseDirection = iota
	DirPress
	DirRelease
)

// KeyDirection reports whether a key event is a press or a release.
type KeyDirection uint8

const (
	KeyPress KeyDirection = iota
	KeyRelease
)

// Modifiers is a bitmap of modifier keys held at the time of an event.
type Modifiers uint32

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModAlt
	ModMeta
)

// MouseEvent is the portable form of a native pointer event. Coordinates
// are 32-bit signed pixels relative to the top-left of the window's client
// area; they can be negative while a button drag leaves the window.
type MouseEvent struct {
	X, Y      int32
	Button    uint32
	Modifiers Modifiers
	Direction MouseDirection
}

// KeyEvent carries the platform scan or virtual key code untranslated.
// Key-code translation tables are the host's concern.
type KeyEvent struct {
	Code      uint32
	Direction KeyDirection
}

// Callbacks is the set of semantic event callbacks the host runtime
// supplies to a driver. Nil entries are skipped. Every callback is invoked
// off the UI thread, in per-window order; blocking inside a callback never
// stalls the native event loop.
type Callbacks struct {
	OnMouse  func(id WindowID, e MouseEvent)
	OnResize func(id WindowID, width, height int32)
	OnExpose func(id WindowID)
	OnKey    func(id WindowID, e KeyEvent)
	OnClose  func(id WindowID)
}

// Options configures a driver at Start.
type Options struct {
	// Title is the initial title given to new windows.
	Title string

	// Callbacks receive the translated native events.
	Callbacks Callbacks

	// Logger, when non-nil, receives driver lifecycle and error records.
	Logger *slog.Logger
}

// Log returns the configured logger or a discard logger, so driver code can
// log unconditionally.
func (o *Options) Log() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}
