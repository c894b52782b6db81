//go:build windows

package win32

import (
	"testing"

	"github.com/1broseidon/paneshim/wsys"
)

func TestMouseFromMessagePositions(t *testing.T) {
	pack := func(x, y int16) uintptr {
		return uintptr(uint16(x)) | uintptr(uint16(y))<<16
	}
	tests := []struct {
		name   string
		lParam uintptr
		x, y   int32
	}{
		{"origin", pack(0, 0), 0, 0},
		{"positive", pack(100, 200), 100, 200},
		// Captured drags report client coordinates left of or above the
		// window as negative; the packed words must sign-extend.
		{"negative x", pack(-5, 10), -5, 10},
		{"negative both", pack(-1, -1), -1, -1},
		{"large", pack(32767, -32768), 32767, -32768},
	}
	for _, tt := range tests {
		me, ok := mouseFromMessage(wmMouseMove, tt.lParam)
		if !ok {
			t.Fatalf("%s: mouseFromMessage rejected WM_MOUSEMOVE", tt.name)
		}
		if me.X != tt.x || me.Y != tt.y {
			t.Errorf("%s: decoded (%d,%d), want (%d,%d)", tt.name, me.X, me.Y, tt.x, tt.y)
		}
	}
}

func TestMouseFromMessageButtons(t *testing.T) {
	tests := []struct {
		m      uint32
		button uint32
		dir    wsys.MouseDirection
	}{
		{wmLButtonDown, 1, wsys.DirPress},
		{wmLButtonUp, 1, wsys.DirRelease},
		{wmMButtonDown, 2, wsys.DirPress},
		{wmMButtonUp, 2, wsys.DirRelease},
		{wmRButtonDown, 3, wsys.DirPress},
		{wmRButtonUp, 3, wsys.DirRelease},
		{wmMouseMove, 0, wsys.DirNone},
	}
	for _, tt := range tests {
		me, ok := mouseFromMessage(tt.m, 0)
		if !ok {
			t.Fatalf("message %#x rejected", tt.m)
		}
		if me.Button != tt.button || me.Direction != tt.dir {
			t.Errorf("message %#x decoded button %d direction %v, want %d %v",
				tt.m, me.Button, me.Direction, tt.button, tt.dir)
		}
	}
}

func TestMouseFromMessageRejectsOthers(t *testing.T) {
	if _, ok := mouseFromMessage(wmPaint, 0); ok {
		t.Fatal("WM_PAINT accepted as a mouse message")
	}
}

func TestColorref(t *testing.T) {
	// COLORREF is 0x00BBGGRR; alpha is dropped.
	tests := []struct {
		c    wsys.Color
		want uintptr
	}{
		{0xFFFF0000, 0x000000FF}, // red
		{0xFF00FF00, 0x0000FF00}, // green
		{0xFF0000FF, 0x00FF0000}, // blue
		{0x80112233, 0x00332211},
	}
	for _, tt := range tests {
		if got := colorref(tt.c); got != tt.want {
			t.Errorf("colorref(0x%08X) = 0x%08X, want 0x%08X", uint32(tt.c), got, tt.want)
		}
	}
}

func TestBlendFunctionPacking(t *testing.T) {
	bf := blendFunction{
		BlendOp:             acSrcOver,
		SourceConstantAlpha: 255,
		AlphaFormat:         acSrcAlpha,
	}
	got := bf.toUintptr()
	if byte(got) != acSrcOver {
		t.Fatalf("blend op byte = %#x, want AC_SRC_OVER", byte(got))
	}
	if byte(got>>16) != 255 {
		t.Fatalf("source constant alpha byte = %#x, want 0xFF", byte(got>>16))
	}
	if byte(got>>24) != acSrcAlpha {
		t.Fatalf("alpha format byte = %#x, want AC_SRC_ALPHA", byte(got>>24))
	}
}
