//go:build windows

package win32

import (
	"unsafe"

	"github.com/1broseidon/paneshim/wsys"
)

// colorref converts a 0xAARRGGBB color to GDI's 0x00BBGGRR COLORREF,
// dropping alpha.
func colorref(c wsys.Color) uintptr {
	return uintptr(uint32(c.Red()) | uint32(c.Green())<<8 | uint32(c.Blue())<<16)
}

// fillWindow acquires the window's DC and runs the requested fill against
// it. UI thread only; the fill messages always arrive there.
func (d *Driver) fillWindow(hwnd uintptr, r *rect, c wsys.Color, over bool) error {
	dc, _, errno := procGetDC.Call(hwnd)
	if dc == 0 {
		return callErr("GetDC", errno)
	}
	defer procReleaseDC.Call(hwnd, dc)
	if over {
		return fillOver(dc, r, c)
	}
	return fillSrc(dc, r, c)
}

// fillSrc fills r with the opaque RGB of c through a solid brush:
// source-copy semantics, alpha ignored.
func fillSrc(dc uintptr, r *rect, c wsys.Color) error {
	brush, _, errno := procCreateSolidBrush.Call(colorref(c))
	if brush == 0 {
		return callErr("CreateSolidBrush", errno)
	}
	defer procDeleteObject.Call(brush)
	ret, _, errno := procFillRect.Call(dc, uintptr(unsafe.Pointer(r)), brush)
	if ret == 0 {
		return callErr("FillRect", errno)
	}
	return nil
}

// fillOver alpha-blends c onto r. A 1x1 premultiplied-ARGB bitmap holding
// the color is stretched over the whole rectangle; AlphaBlend stretches
// with COLORONCOLOR, so the result matches an equally colored MxN source.
// The caller supplies c premultiplied.
func fillOver(dc uintptr, r *rect, c wsys.Color) error {
	bitmap, bits, err := mkbitmap(1, 1)
	if err != nil {
		return err
	}
	defer procDeleteObject.Call(bitmap)
	*(*uint32)(unsafe.Pointer(bits)) = uint32(c)
	return blend(dc, bitmap, r, 1, 1)
}

// mkbitmap allocates a 32-bit top-down DIB section (negative height) and
// returns the bitmap handle with a pointer to its pixel memory.
func mkbitmap(dx, dy int32) (uintptr, uintptr, error) {
	bi := bitmapInfo{
		Header: bitmapInfoHeader{
			Size:        uint32(unsafe.Sizeof(bitmapInfoHeader{})),
			Width:       dx,
			Height:      -dy, // top-down rows
			Planes:      1,
			BitCount:    32,
			Compression: biRGB,
			SizeImage:   uint32(dx * dy * 4),
		},
	}
	var bits uintptr
	bitmap, _, errno := procCreateDIBSection.Call(
		0,
		uintptr(unsafe.Pointer(&bi)),
		dibRGBColors,
		uintptr(unsafe.Pointer(&bits)),
		0, 0,
	)
	if bitmap == 0 {
		return 0, 0, callErr("CreateDIBSection", errno)
	}
	return bitmap, bits, nil
}

// blend alpha-blends the bitmap over dr using per-pixel alpha with a full
// source-constant-alpha factor. The previously selected bitmap is restored
// before the compatible DC is deleted.
func blend(dc uintptr, bitmap uintptr, dr *rect, sdx, sdy int32) (err error) {
	cdc, _, errno := procCreateCompatibleDC.Call(dc)
	if cdc == 0 {
		return callErr("CreateCompatibleDC", errno)
	}
	defer func() {
		if ret, _, errno2 := procDeleteDC.Call(cdc); ret == 0 && err == nil {
			err = callErr("DeleteDC", errno2)
		}
	}()
	prev, _, errno := procSelectObject.Call(cdc, bitmap)
	if prev == 0 {
		return callErr("SelectObject", errno)
	}
	defer func() {
		if ret, _, errno2 := procSelectObject.Call(cdc, prev); ret == 0 && err == nil {
			err = callErr("SelectObject(restore)", errno2)
		}
	}()

	bf := blendFunction{
		BlendOp:             acSrcOver,
		SourceConstantAlpha: 255,        // per-pixel alpha only
		AlphaFormat:         acSrcAlpha, // premultiplied
	}
	ret, _, errno := procAlphaBlend.Call(
		dc, uintptr(dr.Left), uintptr(dr.Top),
		uintptr(dr.Right-dr.Left), uintptr(dr.Bottom-dr.Top),
		cdc, 0, 0, uintptr(sdx), uintptr(sdy),
		bf.toUintptr(),
	)
	if ret == 0 {
		return callErr("AlphaBlend", errno)
	}
	return nil
}
