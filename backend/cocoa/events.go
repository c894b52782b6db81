//go:build darwin

package cocoa

import (
	"github.com/ebitengine/purego/objc"

	"github.com/1broseidon/paneshim/wsys"
)

const (
	nsEventModifierFlagShift   = 1 << 17
	nsEventModifierFlagControl = 1 << 18
	nsEventModifierFlagOption  = 1 << 19
	nsEventModifierFlagCommand = 1 << 20
)

var selConvertPoint = objc.RegisterName("convertPoint:fromView:")

// registerClasses installs the window delegate and content view classes.
// Their methods route back to the active driver; AppKit only ever calls
// them on the UI thread.
func (d *Driver) registerClasses() error {
	delegate, err := objc.RegisterClass(
		"PaneshimWindowDelegate",
		objc.GetClass("NSObject"),
		nil,
		nil,
		[]objc.MethodDef{
			{
				Cmd: objc.RegisterName("windowShouldClose:"),
				Fn: func(self objc.ID, cmd objc.SEL, sender objc.ID) bool {
					if d := active.Load(); d != nil {
						d.nativeClose(windowID(sender))
					}
					// The host owns destruction; it answers with CloseWindow.
					return false
				},
			},
			{
				Cmd: objc.RegisterName("windowDidResize:"),
				Fn: func(self objc.ID, cmd objc.SEL, notification objc.ID) {
					if d := active.Load(); d != nil {
						win := objc.Send[objc.ID](notification, selObject)
						d.resized(win)
					}
				},
			},
		},
	)
	if err != nil {
		return err
	}
	d.delegateClass = delegate

	view, err := objc.RegisterClass(
		"PaneshimView",
		objc.GetClass("NSView"),
		nil,
		nil,
		[]objc.MethodDef{
			{
				Cmd: objc.RegisterName("acceptsFirstResponder"),
				Fn:  func(self objc.ID, cmd objc.SEL) bool { return true },
			},
			{
				// Top-left origin keeps event coordinates consistent with
				// the other backends.
				Cmd: objc.RegisterName("isFlipped"),
				Fn:  func(self objc.ID, cmd objc.SEL) bool { return true },
			},
			{
				Cmd: objc.RegisterName("drawRect:"),
				Fn: func(self objc.ID, cmd objc.SEL, dirty nsRect) {
					if d := active.Load(); d != nil {
						d.exposed(objc.Send[objc.ID](self, selWindow))
					}
				},
			},
			mouseMethod("mouseDown:", 1, wsys.DirPress),
			mouseMethod("mouseUp:", 1, wsys.DirRelease),
			mouseMethod("mouseMoved:", 0, wsys.DirNone),
			mouseMethod("mouseDragged:", 0, wsys.DirNone),
			mouseMethod("rightMouseDown:", 3, wsys.DirPress),
			mouseMethod("rightMouseUp:", 3, wsys.DirRelease),
			mouseMethod("rightMouseDragged:", 0, wsys.DirNone),
			mouseMethod("otherMouseDown:", 2, wsys.DirPress),
			mouseMethod("otherMouseUp:", 2, wsys.DirRelease),
			mouseMethod("otherMouseDragged:", 0, wsys.DirNone),
			keyMethod("keyDown:", wsys.KeyPress),
			keyMethod("keyUp:", wsys.KeyRelease),
		},
	)
	if err != nil {
		return err
	}
	d.viewClass = view
	return nil
}

func mouseMethod(name string, button uint32, dir wsys.MouseDirection) objc.MethodDef {
	return objc.MethodDef{
		Cmd: objc.RegisterName(name),
		Fn: func(self objc.ID, cmd objc.SEL, event objc.ID) {
			if d := active.Load(); d != nil {
				d.mouse(self, event, button, dir)
			}
		},
	}
}

func keyMethod(name string, dir wsys.KeyDirection) objc.MethodDef {
	return objc.MethodDef{
		Cmd: objc.RegisterName(name),
		Fn: func(self objc.ID, cmd objc.SEL, event objc.ID) {
			if d := active.Load(); d != nil {
				d.key(self, event, dir)
			}
		},
	}
}

// modifiers maps NSEvent modifier flags onto the portable modifier set.
func modifiers(flags uint64) wsys.Modifiers {
	var m wsys.Modifiers
	if flags&nsEventModifierFlagShift != 0 {
		m |= wsys.ModShift
	}
	if flags&nsEventModifierFlagControl != 0 {
		m |= wsys.ModControl
	}
	if flags&nsEventModifierFlagOption != 0 {
		m |= wsys.ModAlt
	}
	if flags&nsEventModifierFlagCommand != 0 {
		m |= wsys.ModMeta
	}
	return m
}

func (d *Driver) mouse(view, event objc.ID, button uint32, dir wsys.MouseDirection) {
	rec, err := d.windows.Lookup(windowID(objc.Send[objc.ID](view, selWindow)))
	if err != nil {
		return
	}
	loc := objc.Send[nsPoint](event, selLocationInWindow)
	pt := objc.Send[nsPoint](view, selConvertPoint, loc, objc.ID(0))
	e := wsys.MouseEvent{
		X:         int32(pt.X),
		Y:         int32(pt.Y),
		Button:    button,
		Modifiers: modifiers(objc.Send[uint64](event, selModifierFlags)),
		Direction: dir,
	}
	fn := d.opts.Callbacks.OnMouse
	id := rec.ID
	rec.Events.Push(func() {
		if fn != nil {
			fn(id, e)
		}
	})
}

func (d *Driver) key(view, event objc.ID, dir wsys.KeyDirection) {
	rec, err := d.windows.Lookup(windowID(objc.Send[objc.ID](view, selWindow)))
	if err != nil {
		return
	}
	e := wsys.KeyEvent{
		Code:      uint32(objc.Send[uint16](event, selKeyCode)),
		Direction: dir,
	}
	fn := d.opts.Callbacks.OnKey
	id := rec.ID
	rec.Events.Push(func() {
		if fn != nil {
			fn(id, e)
		}
	})
}

func (d *Driver) resized(win objc.ID) {
	id := windowID(win)
	rec, err := d.windows.Lookup(id)
	if err != nil {
		return
	}
	frame := objc.Send[nsRect](win.Send(selContentView), selFrame)
	width, height := int32(frame.Size.W), int32(frame.Size.H)
	d.windows.SetSize(id, width, height)
	fn := d.opts.Callbacks.OnResize
	rec.Events.Push(func() {
		if fn != nil {
			fn(id, width, height)
		}
	})
}

func (d *Driver) exposed(win objc.ID) {
	rec, err := d.windows.Lookup(windowID(win))
	if err != nil {
		return
	}
	fn := d.opts.Callbacks.OnExpose
	id := rec.ID
	rec.Events.Push(func() {
		if fn != nil {
			fn(id)
		}
	})
}

// nativeClose answers the window's close button with the close callback.
// The record and the NSWindow stay alive until the host calls CloseWindow,
// matching WM_CLOSE and WM_DELETE_WINDOW on the other platforms; a second
// request for the same id is absorbed by the queue's final-item guard.
func (d *Driver) nativeClose(id wsys.WindowID) {
	rec, err := d.windows.Lookup(id)
	if err != nil {
		return
	}
	d.finishClose(rec)
}
