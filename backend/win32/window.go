//go:build windows

package win32

import (
	"fmt"
	"image"
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/1broseidon/paneshim/wsys"
)

// Request payloads passed by address through SendMessage. The send blocks
// until the window procedure returns, so the pointers stay valid for the
// handler's lifetime.

type createParams struct {
	width  int32
	height int32
	hwnd   windows.Handle
	err    error
}

type showParams struct {
	id  wsys.WindowID
	err error
}

type destroyParams struct {
	id  wsys.WindowID
	err error
}

type fillParams struct {
	rect  rect
	color wsys.Color
	err   error
}

// NewWindow creates a top-level window with the requested client-area-ish
// pixel size at the default position. The window is not yet visible.
// Callable from any thread.
func (d *Driver) NewWindow(width, height int) (wsys.WindowID, error) {
	p := createParams{width: int32(width), height: int32(height)}
	if err := d.post(d.util(), msgCreateWindow, 0, uintptr(unsafe.Pointer(&p))); err != nil {
		return 0, err
	}
	runtime.KeepAlive(&p)
	if p.err != nil {
		return 0, p.err
	}
	return wsys.WindowID(p.hwnd), nil
}

// ShowWindow makes the window visible. The returned surface id is the
// window id itself; there is no separate GL surface on this backend.
func (d *Driver) ShowWindow(id wsys.WindowID) (wsys.SurfaceID, error) {
	p := showParams{id: id}
	if err := d.post(d.util(), msgShowWindow, 0, uintptr(unsafe.Pointer(&p))); err != nil {
		return 0, err
	}
	runtime.KeepAlive(&p)
	if p.err != nil {
		return 0, p.err
	}
	return wsys.SurfaceID(id), nil
}

// CloseWindow destroys the window. Destroying an id that is already gone
// is a no-op; the close callback is the last delivered for the id.
func (d *Driver) CloseWindow(id wsys.WindowID) error {
	p := destroyParams{id: id}
	if err := d.post(d.util(), msgDestroyWindow, 0, uintptr(unsafe.Pointer(&p))); err != nil {
		return err
	}
	runtime.KeepAlive(&p)
	return p.err
}

// Fill paints dr in the window's client area with the given color and
// compositing mode. For FillOver the color must be premultiplied.
func (d *Driver) Fill(id wsys.WindowID, dr image.Rectangle, c wsys.Color, op wsys.FillMode) error {
	if _, err := d.windows.Lookup(id); err != nil {
		return err
	}
	m := uint32(msgFillOver)
	if op == wsys.FillSrc {
		m = msgFillSrc
	}
	p := fillParams{
		rect: rect{
			Left:   int32(dr.Min.X),
			Top:    int32(dr.Min.Y),
			Right:  int32(dr.Max.X),
			Bottom: int32(dr.Max.Y),
		},
		color: c,
	}
	// Direct to the owning window: it lives on the UI thread already.
	if err := d.post(windows.Handle(id), m, 0, uintptr(unsafe.Pointer(&p))); err != nil {
		return err
	}
	runtime.KeepAlive(&p)
	return p.err
}

// MakeCurrent is a no-op on this backend once the surface is validated;
// there is no GL context in the Windows shim.
func (d *Driver) MakeCurrent(s wsys.SurfaceID) error {
	if _, err := d.windows.BySurface(s); err != nil {
		return fmt.Errorf("make current: %w", wsys.ErrContextLost)
	}
	return nil
}

// SwapBuffers is a no-op on this backend once the surface is validated.
func (d *Driver) SwapBuffers(s wsys.SurfaceID) error {
	if _, err := d.windows.BySurface(s); err != nil {
		return fmt.Errorf("swap buffers: %w", wsys.ErrContextLost)
	}
	return nil
}

// createWindow runs on the UI thread via the utility window.
func (d *Driver) createWindow(width, height int32) (windows.Handle, error) {
	cname, err := windows.UTF16PtrFromString(windowClassName)
	if err != nil {
		return 0, err
	}
	title := d.opts.Title
	if title == "" {
		title = "paneshim"
	}
	wtitle, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return 0, err
	}
	hwnd, _, errno := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(cname)),
		uintptr(unsafe.Pointer(wtitle)),
		wsOverlappedWindow,
		cwUseDefault, cwUseDefault,
		uintptr(uint32(width)), uintptr(uint32(height)),
		0, 0, uintptr(d.hInstance), 0,
	)
	if hwnd == 0 {
		return 0, callErr("CreateWindowEx", errno)
	}

	rec := d.windows.Add(wsys.WindowID(hwnd), width, height)

	// Windows does not report the initial size through
	// WM_WINDOWPOSCHANGED, so synthesize the first size event here.
	var r rect
	if ret, _, _ := procGetClientRect.Call(hwnd, uintptr(unsafe.Pointer(&r))); ret != 0 {
		w, h := r.Right-r.Left, r.Bottom-r.Top
		d.windows.SetSize(rec.ID, w, h)
		if fn := d.opts.Callbacks.OnResize; fn != nil {
			id := rec.ID
			rec.Events.Push(func() { fn(id, w, h) })
		}
	}
	return windows.Handle(hwnd), nil
}

// showWindow runs on the UI thread via the utility window.
func (d *Driver) showWindow(id wsys.WindowID) error {
	if _, shown := d.windows.Shown(id); shown {
		return nil
	}
	if _, err := d.windows.Lookup(id); err != nil {
		return err
	}
	procShowWindow.Call(uintptr(id), swShowDefault)
	_, _, err := d.windows.MarkShown(id, wsys.SurfaceID(id))
	return err
}

// destroyWindow runs on the UI thread via the utility window.
func (d *Driver) destroyWindow(id wsys.WindowID) error {
	rec := d.windows.Remove(id)
	if rec == nil {
		return nil
	}
	ret, _, errno := procDestroyWindow.Call(uintptr(id))
	if ret == 0 {
		// The record is already out of the table; its close is still
		// owed even though the native handle leaked.
		d.finishClose(rec)
		return callErr("DestroyWindow", errno)
	}
	d.finishClose(rec)
	return nil
}

// utilityWndProc handles the request messages posted to the hidden utility
// window. It runs on the UI thread.
func utilityWndProc(hwnd uintptr, m uint32, wParam, lParam uintptr) uintptr {
	d := active.Load()
	if d == nil {
		return defWindowProc(hwnd, m, wParam, lParam)
	}
	switch m {
	case msgCreateWindow:
		p := (*createParams)(unsafe.Pointer(lParam))
		p.hwnd, p.err = d.createWindow(p.width, p.height)
		return 0
	case msgShowWindow:
		p := (*showParams)(unsafe.Pointer(lParam))
		p.err = d.showWindow(p.id)
		return 0
	case msgDestroyWindow:
		p := (*destroyParams)(unsafe.Pointer(lParam))
		p.err = d.destroyWindow(p.id)
		return 0
	case msgStop:
		d.destroyAll()
		procPostQuitMessage.Call(0)
		return 0
	}
	return defWindowProc(hwnd, m, wParam, lParam)
}

// windowWndProc handles per-window native messages: event translation and
// the direct fill requests.
func windowWndProc(hwnd uintptr, m uint32, wParam, lParam uintptr) uintptr {
	d := active.Load()
	if d == nil {
		return defWindowProc(hwnd, m, wParam, lParam)
	}
	id := wsys.WindowID(hwnd)

	switch m {
	case wmPaint:
		d.expose(id)
		// Fall through to DefWindowProc so the region is validated.
	case wmWindowPosChanged:
		wp := (*windowPos)(unsafe.Pointer(lParam))
		if wp.Flags&swpNoSize != 0 {
			break
		}
		var r rect
		if ret, _, _ := procGetClientRect.Call(hwnd, uintptr(unsafe.Pointer(&r))); ret != 0 {
			d.resize(id, r.Right-r.Left, r.Bottom-r.Top)
		}
		return 0
	case wmMouseMove,
		wmLButtonDown, wmLButtonUp,
		wmMButtonDown, wmMButtonUp,
		wmRButtonDown, wmRButtonUp:
		me, ok := mouseFromMessage(m, lParam)
		if ok {
			me.Modifiers = keyModifiers()
			d.mouse(id, me)
			return 0
		}
	case wmKeyDown, wmKeyUp, wmSysKeyDown, wmSysKeyUp:
		dir := wsys.KeyPress
		if m == wmKeyUp || m == wmSysKeyUp {
			dir = wsys.KeyRelease
		}
		d.key(id, uint32(wParam), dir)
		// System keys still need default handling.
	case wmClose:
		if rec, err := d.windows.Lookup(id); err == nil {
			d.finishClose(rec)
		}
		return 0
	case msgFillSrc:
		p := (*fillParams)(unsafe.Pointer(lParam))
		p.err = d.fillWindow(hwnd, &p.rect, p.color, false)
		return 0
	case msgFillOver:
		p := (*fillParams)(unsafe.Pointer(lParam))
		p.err = d.fillWindow(hwnd, &p.rect, p.color, true)
		return 0
	}
	return defWindowProc(hwnd, m, wParam, lParam)
}

func defWindowProc(hwnd uintptr, m uint32, wParam, lParam uintptr) uintptr {
	ret, _, _ := procDefWindowProcW.Call(hwnd, uintptr(m), wParam, lParam)
	return ret
}
