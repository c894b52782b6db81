//go:build linux

// Package egl binds the small slice of libEGL the X11 backend needs,
// loaded at runtime with purego so the package builds without cgo. The
// driver initializes one display, one config and one GLES-2 context; each
// shown window gets its own window surface.
package egl

import (
	"fmt"
	"sync"

	"github.com/ebitengine/purego"

	"github.com/1broseidon/paneshim/wsys"
)

type (
	Display uintptr
	Config  uintptr
	Context uintptr
	Surface uintptr
)

const (
	DefaultDisplay = 0
	NoContext      = Context(0)
	NoSurface      = Surface(0)
)

// EGL token values, from EGL/egl.h.
const (
	OpenGLESAPI          = 0x30A0
	RenderableType       = 0x3040
	OpenGLES2Bit         = 0x0004
	SurfaceType          = 0x3033
	WindowBit            = 0x0004
	BlueSize             = 0x3022
	GreenSize            = 0x3023
	RedSize              = 0x3024
	DepthSize            = 0x3025
	ConfigCaveat         = 0x3027
	NativeVisualID       = 0x302E
	ContextClientVersion = 0x3098
	None                 = 0x3038
)

// EGL error codes.
const (
	errSuccess        = 0x3000
	errNotInitialized = 0x3001
	errBadAccess      = 0x3002
	errBadAlloc       = 0x3003
	errBadAttribute   = 0x3004
	errBadConfig      = 0x3005
	errBadContext     = 0x3006
	errBadCurrent     = 0x3007
	errBadDisplay     = 0x3008
	errBadMatch       = 0x3009
	errBadNativePix   = 0x300A
	errBadNativeWin   = 0x300B
	errBadParameter   = 0x300C
	errBadSurface     = 0x300D
	errContextLost    = 0x300E
)

var errNames = map[int32]string{
	errSuccess:        "EGL_SUCCESS",
	errNotInitialized: "EGL_NOT_INITIALIZED",
	errBadAccess:      "EGL_BAD_ACCESS",
	errBadAlloc:       "EGL_BAD_ALLOC",
	errBadAttribute:   "EGL_BAD_ATTRIBUTE",
	errBadConfig:      "EGL_BAD_CONFIG",
	errBadContext:     "EGL_BAD_CONTEXT",
	errBadCurrent:     "EGL_BAD_CURRENT_SURFACE",
	errBadDisplay:     "EGL_BAD_DISPLAY",
	errBadMatch:       "EGL_BAD_MATCH",
	errBadNativePix:   "EGL_BAD_NATIVE_PIXMAP",
	errBadNativeWin:   "EGL_BAD_NATIVE_WINDOW",
	errBadParameter:   "EGL_BAD_PARAMETER",
	errBadSurface:     "EGL_BAD_SURFACE",
	errContextLost:    "EGL_CONTEXT_LOST",
}

var (
	loadOnce sync.Once
	loadErr  error

	getDisplay          func(native uintptr) uintptr
	initialize          func(dpy uintptr, major, minor *int32) uint32
	bindAPI             func(api uint32) uint32
	chooseConfig        func(dpy uintptr, attribs *int32, configs *uintptr, configSize int32, numConfig *int32) uint32
	getConfigAttrib     func(dpy, config uintptr, attribute int32, value *int32) uint32
	createContext       func(dpy, config, share uintptr, attribs *int32) uintptr
	createWindowSurface func(dpy, config uintptr, win uintptr, attribs *int32) uintptr
	destroySurface      func(dpy, surface uintptr) uint32
	destroyContext      func(dpy, ctx uintptr) uint32
	makeCurrent         func(dpy, draw, read, ctx uintptr) uint32
	swapBuffers         func(dpy, surface uintptr) uint32
	terminate           func(dpy uintptr) uint32
	getError            func() int32
)

// Load resolves libEGL once. Safe to call from multiple goroutines.
func Load() error {
	loadOnce.Do(func() {
		lib, err := purego.Dlopen("libEGL.so.1", purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			loadErr = fmt.Errorf("egl: loading libEGL: %w", err)
			return
		}
		purego.RegisterLibFunc(&getDisplay, lib, "eglGetDisplay")
		purego.RegisterLibFunc(&initialize, lib, "eglInitialize")
		purego.RegisterLibFunc(&bindAPI, lib, "eglBindAPI")
		purego.RegisterLibFunc(&chooseConfig, lib, "eglChooseConfig")
		purego.RegisterLibFunc(&getConfigAttrib, lib, "eglGetConfigAttrib")
		purego.RegisterLibFunc(&createContext, lib, "eglCreateContext")
		purego.RegisterLibFunc(&createWindowSurface, lib, "eglCreateWindowSurface")
		purego.RegisterLibFunc(&destroySurface, lib, "eglDestroySurface")
		purego.RegisterLibFunc(&destroyContext, lib, "eglDestroyContext")
		purego.RegisterLibFunc(&makeCurrent, lib, "eglMakeCurrent")
		purego.RegisterLibFunc(&swapBuffers, lib, "eglSwapBuffers")
		purego.RegisterLibFunc(&terminate, lib, "eglTerminate")
		purego.RegisterLibFunc(&getError, lib, "eglGetError")
	})
	return loadErr
}

// lastError snapshots eglGetError as a wsys.PlatformError.
func lastError(op string) error {
	code := getError()
	return &wsys.PlatformError{Op: op, Code: uint64(code), Name: ErrorName(code)}
}

// ErrorName maps an EGL error code to its symbolic name.
func ErrorName(code int32) string {
	if n, ok := errNames[code]; ok {
		return n
	}
	return "unknown EGL error"
}

// Lost reports whether err describes a lost context or dead surface.
func Lost(err error) bool {
	pe, ok := err.(*wsys.PlatformError)
	if !ok {
		return false
	}
	switch int32(pe.Code) {
	case errContextLost, errBadSurface, errBadContext:
		return true
	}
	return false
}

func GetDisplay(native uintptr) (Display, error) {
	d := getDisplay(native)
	if d == 0 {
		return 0, lastError("eglGetDisplay")
	}
	return Display(d), nil
}

func Initialize(d Display) (major, minor int32, err error) {
	if initialize(uintptr(d), &major, &minor) == 0 {
		return 0, 0, lastError("eglInitialize")
	}
	return major, minor, nil
}

func BindAPI(api uint32) error {
	if bindAPI(api) == 0 {
		return lastError("eglBindAPI")
	}
	return nil
}

func ChooseConfig(d Display, attribs []int32) (Config, error) {
	var cfg uintptr
	var n int32
	if chooseConfig(uintptr(d), &attribs[0], &cfg, 1, &n) == 0 {
		return 0, lastError("eglChooseConfig")
	}
	if n == 0 {
		return 0, fmt.Errorf("egl: no config matches the requested attributes")
	}
	return Config(cfg), nil
}

func GetConfigAttrib(d Display, c Config, attribute int32) (int32, error) {
	var v int32
	if getConfigAttrib(uintptr(d), uintptr(c), attribute, &v) == 0 {
		return 0, lastError("eglGetConfigAttrib")
	}
	return v, nil
}

func CreateContext(d Display, c Config, share Context, attribs []int32) (Context, error) {
	ctx := createContext(uintptr(d), uintptr(c), uintptr(share), &attribs[0])
	if ctx == 0 {
		return 0, lastError("eglCreateContext")
	}
	return Context(ctx), nil
}

func CreateWindowSurface(d Display, c Config, win uintptr) (Surface, error) {
	s := createWindowSurface(uintptr(d), uintptr(c), win, nil)
	if s == 0 {
		return 0, lastError("eglCreateWindowSurface")
	}
	return Surface(s), nil
}

func DestroySurface(d Display, s Surface) error {
	if destroySurface(uintptr(d), uintptr(s)) == 0 {
		return lastError("eglDestroySurface")
	}
	return nil
}

func DestroyContext(d Display, c Context) error {
	if destroyContext(uintptr(d), uintptr(c)) == 0 {
		return lastError("eglDestroyContext")
	}
	return nil
}

func MakeCurrent(d Display, draw, read Surface, c Context) error {
	if makeCurrent(uintptr(d), uintptr(draw), uintptr(read), uintptr(c)) == 0 {
		return lastError("eglMakeCurrent")
	}
	return nil
}

func SwapBuffers(d Display, s Surface) error {
	if swapBuffers(uintptr(d), uintptr(s)) == 0 {
		return lastError("eglSwapBuffers")
	}
	return nil
}

func Terminate(d Display) error {
	if terminate(uintptr(d)) == 0 {
		return lastError("eglTerminate")
	}
	return nil
}
