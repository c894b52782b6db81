//go:build darwin

package cocoa

import (
	"fmt"

	"github.com/ebitengine/purego/objc"

	"github.com/1broseidon/paneshim/wsys"
)

var (
	selAlloc                 = objc.RegisterName("alloc")
	selInit                  = objc.RegisterName("init")
	selInitWithContentRect   = objc.RegisterName("initWithContentRect:styleMask:backing:defer:")
	selInitWithFrame         = objc.RegisterName("initWithFrame:")
	selSetTitle              = objc.RegisterName("setTitle:")
	selSetDelegate           = objc.RegisterName("setDelegate:")
	selSetContentView        = objc.RegisterName("setContentView:")
	selSetAcceptsMouseMoved  = objc.RegisterName("setAcceptsMouseMovedEvents:")
	selSetReleasedWhenClosed = objc.RegisterName("setReleasedWhenClosed:")
	selMakeFirstResponder    = objc.RegisterName("makeFirstResponder:")
	selMakeKeyAndOrderFront  = objc.RegisterName("makeKeyAndOrderFront:")
	selActivate              = objc.RegisterName("activateIgnoringOtherApps:")
	selClose                 = objc.RegisterName("close")
	selContentView           = objc.RegisterName("contentView")
	selFrame                 = objc.RegisterName("frame")
	selWindow                = objc.RegisterName("window")
	selObject                = objc.RegisterName("object")
	selLocationInWindow      = objc.RegisterName("locationInWindow")
	selModifierFlags         = objc.RegisterName("modifierFlags")
	selKeyCode               = objc.RegisterName("keyCode")
	selStringWithUTF8        = objc.RegisterName("stringWithUTF8String:")
)

// NewWindow creates an NSWindow with the driver's view and delegate
// attached. The window stays hidden until ShowWindow.
func (d *Driver) NewWindow(width, height int) (wsys.WindowID, error) {
	id, err := d.exec.Post(func() (uintptr, error) {
		rect := nsRect{Size: nsSize{W: float64(width), H: float64(height)}}
		style := nsWindowStyleMaskTitled | nsWindowStyleMaskClosable |
			nsWindowStyleMaskMiniaturizable | nsWindowStyleMaskResizable

		win := objc.ID(objc.GetClass("NSWindow")).Send(selAlloc)
		win = win.Send(selInitWithContentRect, rect, style, nsBackingStoreBuffered, false)
		if win == 0 {
			return 0, &wsys.PlatformError{Op: "NSWindow init", Name: "nil window"}
		}
		// Lifetime stays with the registry, not with AppKit's close path.
		win.Send(selSetReleasedWhenClosed, false)
		win.Send(selSetTitle, nsString(d.opts.Title))
		win.Send(selSetAcceptsMouseMoved, true)

		view := objc.ID(d.viewClass).Send(selAlloc).Send(selInitWithFrame, rect)
		win.Send(selSetContentView, view)
		win.Send(selMakeFirstResponder, view)

		delegate := objc.ID(d.delegateClass).Send(selAlloc).Send(selInit)
		win.Send(selSetDelegate, delegate)

		rec := d.windows.Add(windowID(win), int32(width), int32(height))

		// AppKit reports no resize for the initial frame, so synthesize
		// the first size event.
		if fn := d.opts.Callbacks.OnResize; fn != nil {
			id, w, h := rec.ID, int32(width), int32(height)
			rec.Events.Push(func() { fn(id, w, h) })
		}
		return uintptr(win), nil
	})
	if err != nil {
		return 0, fmt.Errorf("cocoa: create window: %w", err)
	}
	d.log.Debug("window created", "id", id, "width", width, "height", height)
	return wsys.WindowID(id), nil
}

// ShowWindow orders the window front and makes it key. Idempotent; the
// window pointer doubles as the surface handle.
func (d *Driver) ShowWindow(id wsys.WindowID) (wsys.SurfaceID, error) {
	surface, err := d.exec.Post(func() (uintptr, error) {
		if surface, ok := d.windows.Shown(id); ok {
			return uintptr(surface), nil
		}
		if _, err := d.windows.Lookup(id); err != nil {
			return 0, err
		}
		win := objc.ID(uintptr(id))
		win.Send(selMakeKeyAndOrderFront, objc.ID(0))
		d.app.Send(selActivate, true)
		surface := wsys.SurfaceID(uintptr(id))
		if _, _, err := d.windows.MarkShown(id, surface); err != nil {
			return 0, err
		}
		return uintptr(surface), nil
	})
	if err != nil {
		return 0, fmt.Errorf("cocoa: show window %d: %w", id, err)
	}
	return wsys.SurfaceID(surface), nil
}

// CloseWindow destroys the window and delivers the final close callback.
// Closing an unknown or already-closed id is a no-op.
func (d *Driver) CloseWindow(id wsys.WindowID) error {
	_, err := d.exec.Post(func() (uintptr, error) {
		rec := d.windows.Remove(id)
		if rec == nil {
			return 0, nil
		}
		objc.ID(uintptr(id)).Send(selClose)
		d.finishClose(rec)
		return 0, nil
	})
	if err != nil {
		return fmt.Errorf("cocoa: close window %d: %w", id, err)
	}
	return nil
}

// MakeCurrent validates the surface. GL context binding is the caller's
// concern on this platform; an unknown surface reports a lost context.
func (d *Driver) MakeCurrent(surface wsys.SurfaceID) error {
	if _, err := d.windows.BySurface(surface); err != nil {
		return fmt.Errorf("cocoa: make current: %w", wsys.ErrContextLost)
	}
	return nil
}

// SwapBuffers validates the surface; presentation is driven by AppKit's
// display cycle.
func (d *Driver) SwapBuffers(surface wsys.SurfaceID) error {
	if _, err := d.windows.BySurface(surface); err != nil {
		return fmt.Errorf("cocoa: swap buffers: %w", wsys.ErrContextLost)
	}
	return nil
}

func nsString(s string) objc.ID {
	return objc.ID(objc.GetClass("NSString")).Send(selStringWithUTF8, s)
}
