//go:build windows

// Package win32 implements the Windows backend on user32/gdi32/msimg32.
// Cross-thread requests ride the platform's own marshaling: SendMessage to
// a hidden message-only utility window blocks the caller until the window
// procedure has run on the UI thread and filled the reply. Fills are sent
// direct to the owning window, which lives on the same thread.
package win32

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/1broseidon/paneshim/internal/registry"
	"github.com/1broseidon/paneshim/wsys"
)

const (
	windowClassName  = "paneshim_window"
	utilityClassName = "paneshim_utility"
)

// active is the process-wide driver instance. The window procedures are
// registered once per process and reach the driver through it; the
// platform's window classes are process singletons anyway.
var active atomic.Pointer[Driver]

var (
	windowWndProcCB  = syscall.NewCallback(windowWndProc)
	utilityWndProcCB = syscall.NewCallback(utilityWndProc)
)

// Driver is the Windows realization of the backend contract.
type Driver struct {
	opts wsys.Options
	log  *slog.Logger

	hInstance windows.Handle
	hIcon     windows.Handle
	hCursor   windows.Handle

	// utilHWND is written on the UI thread in Run and read by Stop and
	// post from any thread; zero means the pump is not running.
	utilHWND atomic.Uintptr

	windows *registry.Table

	uiTID    atomic.Uint64
	stopping atomic.Bool
	done     chan struct{}
}

// Start registers the window and utility classes and creates the hidden
// utility window that serves as the cross-thread dispatch sink. Call Run
// next, from the goroutine that should own the windows.
func Start(opts wsys.Options) (*Driver, error) {
	d := &Driver{
		opts:    opts,
		log:     opts.Log(),
		windows: registry.NewTable(),
		done:    make(chan struct{}),
	}
	if !active.CompareAndSwap(nil, d) {
		return nil, &wsys.InitError{Step: "claim driver singleton",
			Err: fmt.Errorf("a win32 driver is already running")}
	}

	if err := d.initCommon(); err != nil {
		active.Store(nil)
		return nil, err
	}
	if err := d.registerClass(utilityClassName, utilityWndProcCB); err != nil {
		active.Store(nil)
		return nil, &wsys.InitError{Step: "register utility class", Err: err}
	}
	if err := d.registerClass(windowClassName, windowWndProcCB); err != nil {
		active.Store(nil)
		return nil, &wsys.InitError{Step: "register window class", Err: err}
	}
	d.log.Info("win32 driver started")
	return d, nil
}

func (d *Driver) initCommon() error {
	h, err := windows.GetModuleHandle(nil)
	if err != nil {
		return &wsys.InitError{Step: "get module handle", Err: err}
	}
	d.hInstance = h

	icon, _, errno := procLoadIconW.Call(0, idiApplication)
	if icon == 0 {
		return &wsys.InitError{Step: "load default icon", Err: callErr("LoadIcon", errno)}
	}
	d.hIcon = windows.Handle(icon)

	cursor, _, errno := procLoadCursorW.Call(0, idcArrow)
	if cursor == 0 {
		return &wsys.InitError{Step: "load default cursor", Err: callErr("LoadCursor", errno)}
	}
	d.hCursor = windows.Handle(cursor)
	return nil
}

func (d *Driver) registerClass(name string, wndProc uintptr) error {
	cname, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return err
	}
	wc := wndClass{
		LpszClassName: cname,
		LpfnWndProc:   wndProc,
		HInstance:     d.hInstance,
		HIcon:         d.hIcon,
		HCursor:       d.hCursor,
		HbrBackground: windows.Handle(colorBtnFace + 1),
	}
	atom, _, errno := procRegisterClassW.Call(uintptr(unsafe.Pointer(&wc)))
	if atom == 0 {
		return callErr("RegisterClass", errno)
	}
	return nil
}

// createUtilityWindow runs on the UI thread so the utility window, and
// with it every window created through it, is owned by that thread.
func (d *Driver) createUtilityWindow() error {
	cname, err := windows.UTF16PtrFromString(utilityClassName)
	if err != nil {
		return err
	}
	title, err := windows.UTF16PtrFromString("paneshim utility")
	if err != nil {
		return err
	}
	hwnd, _, errno := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(cname)),
		uintptr(unsafe.Pointer(title)),
		wsOverlappedWindow,
		cwUseDefault, cwUseDefault, cwUseDefault, cwUseDefault,
		uintptr(hwndMessage), 0, uintptr(d.hInstance), 0,
	)
	if hwnd == 0 {
		return callErr("CreateWindowEx(utility)", errno)
	}
	d.utilHWND.Store(hwnd)
	return nil
}

// util returns the utility window handle, 0 before Run.
func (d *Driver) util() windows.Handle {
	return windows.Handle(d.utilHWND.Load())
}

// Run claims the calling goroutine as the UI thread, creates the utility
// window on it and pumps messages until Stop posts the quit request.
func (d *Driver) Run() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	d.uiTID.Store(uint64(windows.GetCurrentThreadId()))

	if err := d.createUtilityWindow(); err != nil {
		d.stopping.Store(true)
		active.Store(nil)
		close(d.done)
		return &wsys.InitError{Step: "create utility window", Err: err}
	}

	// A Stop issued before the utility window existed had nothing to
	// post its quit request to.
	if d.stopping.Load() {
		d.teardown()
		close(d.done)
		return nil
	}

	var m msg
	for {
		ret, _, errno := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(ret) == -1 {
			d.log.Error("GetMessage failed", "err", callErr("GetMessage", errno))
			break
		}
		if ret == 0 { // WM_QUIT
			break
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}

	d.teardown()
	close(d.done)
	return nil
}

// Stop requests shutdown: remaining windows are destroyed on the UI thread
// and the message pump exits. Idempotent.
func (d *Driver) Stop() {
	if d.stopping.Swap(true) {
		return
	}
	// With no utility window yet there is nothing to post to; Run checks
	// stopping right after creating it.
	if hwnd := d.utilHWND.Load(); hwnd != 0 {
		procPostMessageW.Call(hwnd, msgStop, 0, 0)
	}
}

// Done is closed once Run has finished tearing down.
func (d *Driver) Done() <-chan struct{} { return d.done }

func (d *Driver) teardown() {
	d.stopping.Store(true)
	d.destroyAll()
	if hwnd := d.utilHWND.Swap(0); hwnd != 0 {
		procDestroyWindow.Call(hwnd)
	}
	for _, name := range []string{windowClassName, utilityClassName} {
		if cname, err := windows.UTF16PtrFromString(name); err == nil {
			procUnregisterClassW.Call(uintptr(unsafe.Pointer(cname)), uintptr(d.hInstance))
		}
	}
	active.Store(nil)
	d.log.Info("win32 driver stopped")
}

// destroyAll tears down every live window, delivering each close callback.
// UI thread only.
func (d *Driver) destroyAll() {
	for _, rec := range d.windows.Drain() {
		procDestroyWindow.Call(uintptr(rec.ID))
		d.finishClose(rec)
	}
}

// ThreadID returns the UI thread's identity, 0 before Run.
func (d *Driver) ThreadID() uint64 { return d.uiTID.Load() }

// post sends a request message and blocks until the UI thread has handled
// it. The platform marshals the call; from the UI thread it degenerates to
// a direct window-procedure call. A zero target means the pump is not
// running: SendMessage to a null handle would fail silently and the
// request's reply slot would read as success.
func (d *Driver) post(target windows.Handle, m uint32, wParam, lParam uintptr) error {
	if d.stopping.Load() || target == 0 {
		return wsys.ErrStopped
	}
	procSendMessageW.Call(uintptr(target), uintptr(m), wParam, lParam)
	return nil
}

func (d *Driver) finishClose(rec *registry.Record) {
	fn := d.opts.Callbacks.OnClose
	id := rec.ID
	rec.Events.Finish(func() {
		if fn != nil {
			fn(id)
		}
	})
}
