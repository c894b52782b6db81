//go:build windows

package win32

import (
	"golang.org/x/sys/windows"

	"github.com/1broseidon/paneshim/wsys"
)

// Win32 structures used by the driver, laid out per the platform ABI.

type point struct {
	X int32
	Y int32
}

type rect struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

type msg struct {
	HWND    windows.Handle
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

type wndClass struct {
	Style         uint32
	LpfnWndProc   uintptr
	CbClsExtra    int32
	CbWndExtra    int32
	HInstance     windows.Handle
	HIcon         windows.Handle
	HCursor       windows.Handle
	HbrBackground windows.Handle
	LpszMenuName  *uint16
	LpszClassName *uint16
}

type windowPos struct {
	HWND            windows.Handle
	HWNDInsertAfter windows.Handle
	X               int32
	Y               int32
	Cx              int32
	Cy              int32
	Flags           uint32
}

type bitmapInfoHeader struct {
	Size          uint32
	Width         int32
	Height        int32
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

type bitmapInfo struct {
	Header bitmapInfoHeader
	Colors [1]uint32
}

// blendFunction is passed to AlphaBlend packed into a single uintptr.
type blendFunction struct {
	BlendOp             byte
	BlendFlags          byte
	SourceConstantAlpha byte
	AlphaFormat         byte
}

func (f blendFunction) toUintptr() uintptr {
	return uintptr(f.BlendOp) |
		uintptr(f.BlendFlags)<<8 |
		uintptr(f.SourceConstantAlpha)<<16 |
		uintptr(f.AlphaFormat)<<24
}

const (
	wmDestroy          = 0x0002
	wmPaint            = 0x000F
	wmClose            = 0x0010
	wmQuit             = 0x0012
	wmWindowPosChanged = 0x0047
	wmKeyDown          = 0x0100
	wmKeyUp            = 0x0101
	wmSysKeyDown       = 0x0104
	wmSysKeyUp         = 0x0105
	wmMouseMove        = 0x0200
	wmLButtonDown      = 0x0201
	wmLButtonUp        = 0x0202
	wmRButtonDown      = 0x0204
	wmRButtonUp        = 0x0205
	wmMButtonDown      = 0x0207
	wmMButtonUp        = 0x0208
	wmUser             = 0x0400

	// Requests dispatched through the hidden utility window. Fills are sent
	// direct to the owning window instead; it already lives on the UI
	// thread.
	msgCreateWindow  = wmUser + 0x40
	msgShowWindow    = wmUser + 0x41
	msgDestroyWindow = wmUser + 0x42
	msgStop          = wmUser + 0x43

	// Per-window fill messages.
	msgFillSrc  = wmUser + 0x50
	msgFillOver = wmUser + 0x51
)

const (
	wsOverlappedWindow = 0x00CF0000

	cwUseDefault = ^uintptr(0x7FFFFFFF) // 0x80000000, sign-extended

	swShowDefault = 10

	swpNoSize = 0x0001

	colorBtnFace = 15

	idiApplication = 32512
	idcArrow       = 32512

	vkShift   = 0x10
	vkControl = 0x11
	vkMenu    = 0x12
	vkLWin    = 0x5B
	vkRWin    = 0x5C

	biRGB        = 0
	dibRGBColors = 0

	acSrcOver  = 0x00
	acSrcAlpha = 0x01
)

// hwndMessage parents a window in the message-only hierarchy.
var hwndMessage = windows.Handle(^uintptr(2)) // HWND_MESSAGE (-3)

var (
	user32  = windows.NewLazySystemDLL("user32.dll")
	gdi32   = windows.NewLazySystemDLL("gdi32.dll")
	msimg32 = windows.NewLazySystemDLL("msimg32.dll")

	procRegisterClassW   = user32.NewProc("RegisterClassW")
	procUnregisterClassW = user32.NewProc("UnregisterClassW")
	procCreateWindowExW  = user32.NewProc("CreateWindowExW")
	procDestroyWindow    = user32.NewProc("DestroyWindow")
	procDefWindowProcW   = user32.NewProc("DefWindowProcW")
	procGetMessageW      = user32.NewProc("GetMessageW")
	procTranslateMessage = user32.NewProc("TranslateMessage")
	procDispatchMessageW = user32.NewProc("DispatchMessageW")
	procPostQuitMessage  = user32.NewProc("PostQuitMessage")
	procSendMessageW     = user32.NewProc("SendMessageW")
	procPostMessageW     = user32.NewProc("PostMessageW")
	procShowWindow       = user32.NewProc("ShowWindow")
	procGetClientRect    = user32.NewProc("GetClientRect")
	procGetDC            = user32.NewProc("GetDC")
	procReleaseDC        = user32.NewProc("ReleaseDC")
	procLoadIconW        = user32.NewProc("LoadIconW")
	procLoadCursorW      = user32.NewProc("LoadCursorW")
	procGetKeyState      = user32.NewProc("GetKeyState")
	procFillRect         = user32.NewProc("FillRect")

	procCreateSolidBrush    = gdi32.NewProc("CreateSolidBrush")
	procDeleteObject        = gdi32.NewProc("DeleteObject")
	procCreateCompatibleDC  = gdi32.NewProc("CreateCompatibleDC")
	procDeleteDC            = gdi32.NewProc("DeleteDC")
	procSelectObject        = gdi32.NewProc("SelectObject")
	procCreateDIBSection    = gdi32.NewProc("CreateDIBSection")

	procAlphaBlend = msimg32.NewProc("AlphaBlend")
)

// callErr converts a failed proc call into the shared error shape, keeping
// the platform's last-error value.
func callErr(op string, errno error) error {
	code := uint64(0)
	if e, ok := errno.(windows.Errno); ok {
		code = uint64(e)
	}
	return &wsys.PlatformError{Op: op, Code: code, Name: errno.Error()}
}
