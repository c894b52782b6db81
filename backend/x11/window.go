//go:build linux

package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/1broseidon/paneshim/internal/egl"
	"github.com/1broseidon/paneshim/wsys"
)

// newWindowEventMask selects button, held-button motion, exposure and
// structural events, plus raw key press/release.
const newWindowEventMask = xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskButtonMotion |
	xproto.EventMaskExposure |
	xproto.EventMaskStructureNotify |
	xproto.EventMaskKeyPress |
	xproto.EventMaskKeyRelease

// NewWindow creates an unmapped top-level window of the given pixel size
// using the EGL-matched visual. Callable from any thread.
func (d *Driver) NewWindow(width, height int) (wsys.WindowID, error) {
	ret, err := d.exec.Post(func() (uintptr, error) {
		wid, err := xproto.NewWindowId(d.conn)
		if err != nil {
			return 0, fmt.Errorf("allocate window id: %w", err)
		}
		err = xproto.CreateWindowChecked(
			d.conn, d.depth, wid, d.root,
			0, 0, uint16(width), uint16(height), 0,
			xproto.WindowClassInputOutput, d.visual,
			xproto.CwBackPixel|xproto.CwBorderPixel|xproto.CwEventMask|xproto.CwColormap,
			// Value order follows the mask bits, low to high.
			[]uint32{0, 0, newWindowEventMask, uint32(d.colormap)},
		).Check()
		if err != nil {
			return 0, fmt.Errorf("create window: %w", err)
		}

		hints := icccm.NormalHints{
			Flags:  icccm.SizeHintUSSize,
			Width:  uint(width),
			Height: uint(height),
		}
		if err := icccm.WmNormalHintsSet(d.xu, wid, &hints); err != nil {
			d.log.Debug("set size hints", "err", err)
		}
		if title := d.opts.Title; title != "" {
			if err := ewmh.WmNameSet(d.xu, wid, title); err != nil {
				d.log.Debug("set window title", "err", err)
			}
		}
		// Ask for a close ClientMessage instead of a hard kill.
		if err := icccm.WmProtocolsSet(d.xu, wid, []string{"WM_DELETE_WINDOW"}); err != nil {
			d.log.Debug("set WM_PROTOCOLS", "err", err)
		}

		d.windows.Add(wsys.WindowID(wid), int32(width), int32(height))
		return uintptr(wid), nil
	})
	return wsys.WindowID(ret), err
}

// ShowWindow maps the window and creates its EGL surface; the window only
// exists on the server once it is mapped, so this is the earliest the
// surface can be bound. Showing an already shown window returns the
// existing surface.
func (d *Driver) ShowWindow(id wsys.WindowID) (wsys.SurfaceID, error) {
	ret, err := d.exec.Post(func() (uintptr, error) {
		if surface, shown := d.windows.Shown(id); shown {
			return uintptr(surface), nil
		}
		if _, err := d.windows.Lookup(id); err != nil {
			return 0, err
		}
		win := xproto.Window(id)
		if err := xproto.MapWindowChecked(d.conn, win).Check(); err != nil {
			return 0, fmt.Errorf("map window: %w", err)
		}
		surf, err := egl.CreateWindowSurface(d.edpy, d.econfig, uintptr(win))
		if err != nil {
			return 0, fmt.Errorf("create window surface: %w", err)
		}
		if _, _, err := d.windows.MarkShown(id, wsys.SurfaceID(surf)); err != nil {
			egl.DestroySurface(d.edpy, surf)
			return 0, err
		}
		return uintptr(surf), nil
	})
	return wsys.SurfaceID(ret), err
}

// CloseWindow destroys the window and its surface. Destroying an id that
// is already gone is a no-op. The close callback is the last one delivered
// for the id.
func (d *Driver) CloseWindow(id wsys.WindowID) error {
	_, err := d.exec.Post(func() (uintptr, error) {
		rec := d.windows.Remove(id)
		if rec == nil {
			return 0, nil
		}
		if rec.Surface != 0 {
			if err := egl.DestroySurface(d.edpy, egl.Surface(rec.Surface)); err != nil {
				d.log.Debug("destroy surface", "err", err)
			}
		}
		if err := xproto.DestroyWindowChecked(d.conn, xproto.Window(id)).Check(); err != nil {
			// The record is already out of the table; its close is
			// still owed even though the server-side destroy failed.
			d.finishClose(rec)
			return 0, fmt.Errorf("destroy window: %w", err)
		}
		d.finishClose(rec)
		return 0, nil
	})
	return err
}

// MakeCurrent binds the driver context to the surface for reads and draws
// on the calling thread. Callers rendering from several threads must
// serialize themselves.
func (d *Driver) MakeCurrent(s wsys.SurfaceID) error {
	if _, err := d.windows.BySurface(s); err != nil {
		return fmt.Errorf("make current: %w", wsys.ErrContextLost)
	}
	if err := egl.MakeCurrent(d.edpy, egl.Surface(s), egl.Surface(s), d.ectx); err != nil {
		if egl.Lost(err) {
			return fmt.Errorf("make current: %w: %v", wsys.ErrContextLost, err)
		}
		return fmt.Errorf("make current: %w", err)
	}
	return nil
}

// SwapBuffers presents the back buffer; it may block on the GL driver for
// v-sync.
func (d *Driver) SwapBuffers(s wsys.SurfaceID) error {
	if _, err := d.windows.BySurface(s); err != nil {
		return fmt.Errorf("swap buffers: %w", wsys.ErrContextLost)
	}
	if err := egl.SwapBuffers(d.edpy, egl.Surface(s)); err != nil {
		if egl.Lost(err) {
			return fmt.Errorf("swap buffers: %w: %v", wsys.ErrContextLost, err)
		}
		return fmt.Errorf("swap buffers: %w", err)
	}
	return nil
}
