//go:build linux

// Package x11 implements the X11 window backend. Windows and events travel
// over a pure-Go X protocol connection (BurntSushi/xgb + xgbutil); the GL
// side is an EGL display, config and GLES-2 context initialized at Start,
// with one EGL window surface created per shown window.
//
// One goroutine, locked to its OS thread, runs the event loop in Run. All
// window mutations from other threads are posted through the executor; the
// loop is woken from its blocking wait by a ClientMessage sent to a hidden
// utility window owned by this connection (SendEvent with an empty event
// mask delivers to the window's creating client). The loop dispatches every
// pending X event before draining requests, so events already queued when a
// request begins executing are handed to the host before the request's
// reply.
package x11

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xprop"
	"golang.org/x/sys/unix"

	"github.com/1broseidon/paneshim/internal/egl"
	"github.com/1broseidon/paneshim/internal/registry"
	"github.com/1broseidon/paneshim/internal/uiexec"
	"github.com/1broseidon/paneshim/wsys"
)

const wakeAtomName = "_PANESHIM_WAKE"

// Driver is the X11 realization of the backend contract. Create one with
// Start, then call Run from the goroutine that should become the UI thread.
type Driver struct {
	opts wsys.Options
	log  *slog.Logger

	xu     *xgbutil.XUtil
	conn   *xgb.Conn
	screen *xproto.ScreenInfo
	root   xproto.Window

	visual   xproto.Visualid
	depth    byte
	colormap xproto.Colormap

	edpy    egl.Display
	econfig egl.Config
	ectx    egl.Context

	wakeWin       xproto.Window
	atomWake      xproto.Atom
	atomProtocols xproto.Atom
	atomDelete    xproto.Atom

	exec    *uiexec.Executor
	windows *registry.Table

	stopping atomic.Bool
	done     chan struct{}
}

// Start establishes the process-wide X and EGL state: the display
// connection, the GLES-2 context and its config, the X visual matching the
// config, a colormap on the root window and the hidden wake window. It does
// not enter the event loop; call Run for that. Any failing sub-step is
// fatal and named in the returned error.
func Start(opts wsys.Options) (*Driver, error) {
	d := &Driver{
		opts:    opts,
		log:     opts.Log(),
		windows: registry.NewTable(),
		done:    make(chan struct{}),
	}

	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, &wsys.InitError{Step: "open display", Err: err}
	}
	d.xu = xu
	d.conn = xu.Conn()
	d.screen = xu.Screen()
	d.root = xu.RootWin()

	if err := d.initEGL(); err != nil {
		d.conn.Close()
		return nil, err
	}
	if err := d.initWakeWindow(); err != nil {
		d.conn.Close()
		return nil, err
	}

	d.exec = uiexec.New(d.wake, func() uint64 { return uint64(unix.Gettid()) })
	d.log.Info("x11 driver started",
		"screen", d.screen.WidthInPixels,
		"visual", d.visual,
		"depth", d.depth)
	return d, nil
}

// initEGL binds the OpenGL-ES API, picks an 8/8/8 RGB + 16-bit depth
// window config, resolves the matching X visual and creates the shared
// GLES-2 context against no surface.
func (d *Driver) initEGL() error {
	if err := egl.Load(); err != nil {
		return &wsys.InitError{Step: "load EGL", Err: err}
	}
	edpy, err := egl.GetDisplay(egl.DefaultDisplay)
	if err != nil {
		return &wsys.InitError{Step: "get EGL display", Err: err}
	}
	if _, _, err := egl.Initialize(edpy); err != nil {
		return &wsys.InitError{Step: "initialize EGL", Err: err}
	}
	if err := egl.BindAPI(egl.OpenGLESAPI); err != nil {
		return &wsys.InitError{Step: "bind GLES API", Err: err}
	}
	cfg, err := egl.ChooseConfig(edpy, []int32{
		egl.RenderableType, egl.OpenGLES2Bit,
		egl.SurfaceType, egl.WindowBit,
		egl.BlueSize, 8,
		egl.GreenSize, 8,
		egl.RedSize, 8,
		egl.DepthSize, 16,
		egl.ConfigCaveat, egl.None,
		egl.None,
	})
	if err != nil {
		return &wsys.InitError{Step: "choose EGL config", Err: err}
	}
	vid, err := egl.GetConfigAttrib(edpy, cfg, egl.NativeVisualID)
	if err != nil {
		return &wsys.InitError{Step: "query native visual", Err: err}
	}
	visual, depth, ok := findVisual(d.screen, xproto.Visualid(vid))
	if !ok {
		return &wsys.InitError{
			Step: "choose visual",
			Err:  fmt.Errorf("EGL visual 0x%x not offered by the X screen", vid),
		}
	}
	d.visual, d.depth = visual, depth

	cmid, err := xproto.NewColormapId(d.conn)
	if err != nil {
		return &wsys.InitError{Step: "allocate colormap id", Err: err}
	}
	if err := xproto.CreateColormapChecked(
		d.conn, xproto.ColormapAllocNone, cmid, d.root, d.visual,
	).Check(); err != nil {
		return &wsys.InitError{Step: "create colormap", Err: err}
	}
	d.colormap = cmid

	ctx, err := egl.CreateContext(edpy, cfg, egl.NoContext, []int32{
		egl.ContextClientVersion, 2,
		egl.None,
	})
	if err != nil {
		return &wsys.InitError{Step: "create GLES context", Err: err}
	}
	d.edpy, d.econfig, d.ectx = edpy, cfg, ctx
	return nil
}

// initWakeWindow creates the hidden input-only window the wake
// ClientMessage is addressed to, and interns the atoms the event loop
// matches against.
func (d *Driver) initWakeWindow() error {
	wid, err := xproto.NewWindowId(d.conn)
	if err != nil {
		return &wsys.InitError{Step: "allocate wake window id", Err: err}
	}
	err = xproto.CreateWindowChecked(
		d.conn, 0, wid, d.root,
		0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, 0, nil,
	).Check()
	if err != nil {
		return &wsys.InitError{Step: "create wake window", Err: err}
	}
	d.wakeWin = wid

	for _, a := range []struct {
		name string
		dst  *xproto.Atom
	}{
		{wakeAtomName, &d.atomWake},
		{"WM_PROTOCOLS", &d.atomProtocols},
		{"WM_DELETE_WINDOW", &d.atomDelete},
	} {
		atom, err := xprop.Atm(d.xu, a.name)
		if err != nil {
			return &wsys.InitError{Step: "intern " + a.name, Err: err}
		}
		*a.dst = atom
	}
	return nil
}

// wake knocks the event loop out of WaitForEvent. The xgb connection is
// safe to use from any thread.
func (d *Driver) wake() {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: d.wakeWin,
		Type:   d.atomWake,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{0, 0, 0, 0, 0}),
	}
	xproto.SendEvent(d.conn, false, d.wakeWin, xproto.EventMaskNoEvent, string(ev.Bytes()))
}

// Run claims the calling goroutine as the UI thread and pumps X events
// until Stop. It returns after teardown is complete.
func (d *Driver) Run() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	d.exec.Bind()

	for !d.stopping.Load() {
		ev, xerr := d.conn.WaitForEvent()
		if ev == nil && xerr == nil {
			d.log.Warn("x11 connection closed")
			break
		}
		if xerr != nil {
			d.log.Debug("x error", "err", xerr)
		}
		if ev != nil {
			d.dispatch(ev)
		}
		// Deliver everything the server already queued before touching
		// requests.
		for {
			ev, xerr := d.conn.PollForEvent()
			if ev == nil && xerr == nil {
				break
			}
			if xerr != nil {
				d.log.Debug("x error", "err", xerr)
				continue
			}
			d.dispatch(ev)
		}
		d.exec.Drain()
	}

	d.teardown()
	close(d.done)
	return nil
}

// Stop requests shutdown. Idempotent; teardown happens on the UI thread
// before Run returns.
func (d *Driver) Stop() {
	if d.stopping.Swap(true) {
		return
	}
	d.wake()
}

// Done is closed once Run has finished tearing down.
func (d *Driver) Done() <-chan struct{} { return d.done }

// teardown runs on the UI thread, in reverse order of Start.
func (d *Driver) teardown() {
	d.exec.Shutdown()
	for _, rec := range d.windows.Drain() {
		if rec.Surface != 0 {
			egl.DestroySurface(d.edpy, egl.Surface(rec.Surface))
		}
		xproto.DestroyWindow(d.conn, xproto.Window(rec.ID))
		d.finishClose(rec)
	}
	if d.ectx != egl.NoContext {
		egl.DestroyContext(d.edpy, d.ectx)
	}
	if d.edpy != 0 {
		egl.Terminate(d.edpy)
	}
	xproto.DestroyWindow(d.conn, d.wakeWin)
	d.conn.Close()
	d.log.Info("x11 driver stopped")
}

// ThreadID returns the UI thread's OS thread id, 0 before Run.
func (d *Driver) ThreadID() uint64 { return d.exec.TID() }

// findVisual resolves an X visual id to its (visual, depth) pair on the
// given screen.
func findVisual(screen *xproto.ScreenInfo, want xproto.Visualid) (xproto.Visualid, byte, bool) {
	for _, di := range screen.AllowedDepths {
		for _, vi := range di.Visuals {
			if vi.VisualId == want {
				return vi.VisualId, di.Depth, true
			}
		}
	}
	return 0, 0, false
}
