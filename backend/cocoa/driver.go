//go:build darwin

// Package cocoa implements the macOS backend over the Objective-C runtime,
// reached through purego without cgo. The UI thread is the process main
// thread, as AppKit requires; off-thread requests are queued on the
// executor and drained by blocks dispatched onto the main queue.
package cocoa

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/purego"
	"github.com/ebitengine/purego/objc"

	"github.com/1broseidon/paneshim/internal/registry"
	"github.com/1broseidon/paneshim/internal/uiexec"
	"github.com/1broseidon/paneshim/wsys"
)

type nsPoint struct{ X, Y float64 }
type nsSize struct{ W, H float64 }
type nsRect struct {
	Origin nsPoint
	Size   nsSize
}

const (
	nsWindowStyleMaskTitled         = 1 << 0
	nsWindowStyleMaskClosable       = 1 << 1
	nsWindowStyleMaskMiniaturizable = 1 << 2
	nsWindowStyleMaskResizable      = 1 << 3
	nsBackingStoreBuffered          = 2
	nsEventTypeApplicationDefined   = 15
)

var (
	dispatchMainQueue uintptr
	dispatchAsyncF    func(queue uintptr, ctx uintptr, work uintptr)
	pthreadThreadID   func(thread uintptr, id *uint64) int32
)

// active is the process-wide driver; the registered Objective-C classes
// reach it through this pointer, mirroring the one-NSApplication rule.
var active atomic.Pointer[Driver]

// Driver is the macOS realization of the backend contract.
type Driver struct {
	opts wsys.Options
	log  *slog.Logger

	app           objc.ID
	delegateClass objc.Class
	viewClass     objc.Class

	exec    *uiexec.Executor
	windows *registry.Table

	stopping atomic.Bool
	done     chan struct{}
}

// Start initializes the shared NSApplication and the Objective-C classes
// the driver registers for window delegation and view events. Run must
// then be called from the main goroutine; AppKit binds the UI to the
// process main thread.
func Start(opts wsys.Options) (*Driver, error) {
	d := &Driver{
		opts:    opts,
		log:     opts.Log(),
		windows: registry.NewTable(),
		done:    make(chan struct{}),
	}
	if !active.CompareAndSwap(nil, d) {
		return nil, &wsys.InitError{Step: "claim driver singleton",
			Err: fmt.Errorf("a cocoa driver is already running")}
	}
	if err := loadRuntime(); err != nil {
		active.Store(nil)
		return nil, &wsys.InitError{Step: "load AppKit", Err: err}
	}
	if err := d.registerClasses(); err != nil {
		active.Store(nil)
		return nil, &wsys.InitError{Step: "register delegate classes", Err: err}
	}

	d.app = objc.ID(objc.GetClass("NSApplication")).Send(objc.RegisterName("sharedApplication"))
	// NSApplicationActivationPolicyRegular: normal app with a UI.
	d.app.Send(objc.RegisterName("setActivationPolicy:"), 0)

	d.exec = uiexec.New(d.wake, threadID)
	d.log.Info("cocoa driver started")
	return d, nil
}

var (
	loadOnce sync.Once
	loadErr  error
)

func loadRuntime() error {
	loadOnce.Do(func() { loadErr = loadLibraries() })
	return loadErr
}

func loadLibraries() error {
	if _, err := purego.Dlopen(
		"/System/Library/Frameworks/Cocoa.framework/Cocoa",
		purego.RTLD_NOW|purego.RTLD_GLOBAL,
	); err != nil {
		return err
	}
	libSystem, err := purego.Dlopen("/usr/lib/libSystem.B.dylib", purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return err
	}
	q, err := purego.Dlsym(libSystem, "_dispatch_main_q")
	if err != nil {
		return err
	}
	dispatchMainQueue = q
	purego.RegisterLibFunc(&dispatchAsyncF, libSystem, "dispatch_async_f")
	purego.RegisterLibFunc(&pthreadThreadID, libSystem, "pthread_threadid_np")
	return nil
}

// threadID reports the calling OS thread's identity for the executor's
// re-entrancy check.
func threadID() uint64 {
	var id uint64
	pthreadThreadID(0, &id)
	return id
}

var drainCallback = purego.NewCallback(func(ctx uintptr) uintptr {
	if d := active.Load(); d != nil {
		d.exec.Drain()
		if d.stopping.Load() {
			d.shutdownMainThread()
		}
	}
	return 0
})

// wake schedules an executor drain as a main-queue block and pokes the
// AppKit event loop with an application-defined event so a quiet run loop
// notices it.
func (d *Driver) wake() {
	dispatchAsyncF(dispatchMainQueue, 0, drainCallback)
	d.postWakeEvent()
}

func (d *Driver) postWakeEvent() {
	event := objc.ID(objc.GetClass("NSEvent")).Send(
		objc.RegisterName("otherEventWithType:location:modifierFlags:timestamp:windowNumber:context:subtype:data1:data2:"),
		nsEventTypeApplicationDefined,
		nsPoint{},
		uint64(0),
		float64(0),
		0,
		objc.ID(0),
		int16(0),
		0,
		0,
	)
	if event != 0 {
		d.app.Send(objc.RegisterName("postEvent:atStart:"), event, false)
	}
}

// Run claims the calling goroutine, which must be the main goroutine, as
// the UI thread and enters the AppKit run loop until Stop.
func (d *Driver) Run() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	d.exec.Bind()

	d.app.Send(objc.RegisterName("finishLaunching"))
	d.app.Send(objc.RegisterName("run"))

	close(d.done)
	return nil
}

// Stop requests shutdown; teardown happens on the main thread. Idempotent.
func (d *Driver) Stop() {
	if d.stopping.Swap(true) {
		return
	}
	d.wake()
}

// Done is closed once Run has returned.
func (d *Driver) Done() <-chan struct{} { return d.done }

// shutdownMainThread destroys remaining windows and stops the run loop.
func (d *Driver) shutdownMainThread() {
	d.exec.Shutdown()
	for _, rec := range d.windows.Drain() {
		objc.ID(uintptr(rec.ID)).Send(objc.RegisterName("close"))
		d.finishClose(rec)
	}
	d.app.Send(objc.RegisterName("stop:"), objc.ID(0))
	d.postWakeEvent()
	active.Store(nil)
	d.log.Info("cocoa driver stopped")
}

// ThreadID returns the UI thread's identity, 0 before Run.
func (d *Driver) ThreadID() uint64 { return d.exec.TID() }

func (d *Driver) finishClose(rec *registry.Record) {
	fn := d.opts.Callbacks.OnClose
	id := rec.ID
	rec.Events.Finish(func() {
		if fn != nil {
			fn(id)
		}
	})
}

// windowID converts an NSWindow pointer into the portable id.
func windowID(win objc.ID) wsys.WindowID {
	return wsys.WindowID(uintptr(win))
}
