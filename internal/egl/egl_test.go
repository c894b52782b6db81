//go:build linux

package egl

import (
	"testing"

	"github.com/1broseidon/paneshim/wsys"
)

func TestErrorName(t *testing.T) {
	tests := []struct {
		code int32
		want string
	}{
		{errSuccess, "EGL_SUCCESS"},
		{errNotInitialized, "EGL_NOT_INITIALIZED"},
		{errBadSurface, "EGL_BAD_SURFACE"},
		{errContextLost, "EGL_CONTEXT_LOST"},
		{0x1234, "unknown EGL error"},
	}
	for _, tt := range tests {
		if got := ErrorName(tt.code); got != tt.want {
			t.Errorf("ErrorName(%#x) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestLost(t *testing.T) {
	lost := []int32{errContextLost, errBadSurface, errBadContext}
	for _, code := range lost {
		err := &wsys.PlatformError{Op: "eglSwapBuffers", Code: uint64(code), Name: ErrorName(code)}
		if !Lost(err) {
			t.Errorf("Lost(%s) = false, want true", ErrorName(code))
		}
	}
	alive := &wsys.PlatformError{Op: "eglSwapBuffers", Code: errBadAlloc, Name: ErrorName(errBadAlloc)}
	if Lost(alive) {
		t.Error("Lost(EGL_BAD_ALLOC) = true, want false")
	}
	if Lost(wsys.ErrStopped) {
		t.Error("Lost treats a non-platform error as a dead surface")
	}
}
