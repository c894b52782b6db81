//go:build linux

package x11

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/paneshim/internal/registry"
	"github.com/1broseidon/paneshim/wsys"
)

// dispatch translates one native event into its semantic callback and
// queues it on the owning window. Events for ids that are not (or no
// longer) registered are dropped.
func (d *Driver) dispatch(ev xgb.Event) {
	switch e := ev.(type) {
	case xproto.ButtonPressEvent:
		d.mouse(e.Event, wsys.MouseEvent{
			X:         int32(e.EventX),
			Y:         int32(e.EventY),
			Button:    uint32(e.Detail),
			Modifiers: modifiers(e.State),
			Direction: wsys.DirPress,
		})
	case xproto.ButtonReleaseEvent:
		d.mouse(e.Event, wsys.MouseEvent{
			X:         int32(e.EventX),
			Y:         int32(e.EventY),
			Button:    uint32(e.Detail),
			Modifiers: modifiers(e.State),
			Direction: wsys.DirRelease,
		})
	case xproto.MotionNotifyEvent:
		d.mouse(e.Event, wsys.MouseEvent{
			X:         int32(e.EventX),
			Y:         int32(e.EventY),
			Modifiers: modifiers(e.State),
			Direction: wsys.DirNone,
		})
	case xproto.ExposeEvent:
		// A non-zero count means more expose events follow for the same
		// burst; the callback carries no dirty region, so only the last
		// event of the burst produces a repaint.
		if e.Count != 0 {
			return
		}
		if rec, err := d.windows.Lookup(wsys.WindowID(e.Window)); err == nil {
			if fn := d.opts.Callbacks.OnExpose; fn != nil {
				id := rec.ID
				rec.Events.Push(func() { fn(id) })
			}
		}
	case xproto.ConfigureNotifyEvent:
		id := wsys.WindowID(e.Window)
		rec, err := d.windows.Lookup(id)
		if err != nil {
			return
		}
		w, h := int32(e.Width), int32(e.Height)
		d.windows.SetSize(id, w, h)
		if fn := d.opts.Callbacks.OnResize; fn != nil {
			rec.Events.Push(func() { fn(id, w, h) })
		}
	case xproto.KeyPressEvent:
		d.key(e.Event, uint32(e.Detail), wsys.KeyPress)
	case xproto.KeyReleaseEvent:
		d.key(e.Event, uint32(e.Detail), wsys.KeyRelease)
	case xproto.ClientMessageEvent:
		if e.Type == d.atomProtocols && e.Format == 32 &&
			xproto.Atom(e.Data.Data32[0]) == d.atomDelete {
			if rec, err := d.windows.Lookup(wsys.WindowID(e.Window)); err == nil {
				d.finishClose(rec)
			}
		}
		// The wake message itself needs no handling; reaching the loop
		// body was its whole job.
	case xproto.DestroyNotifyEvent:
		// A window destroyed behind our back still owes its close.
		if rec := d.windows.Remove(wsys.WindowID(e.Window)); rec != nil {
			if rec.Surface != 0 {
				// Surface is dead with the window; drop our handle.
				rec.Surface = 0
			}
			d.finishClose(rec)
		}
	}
}

func (d *Driver) mouse(win xproto.Window, me wsys.MouseEvent) {
	rec, err := d.windows.Lookup(wsys.WindowID(win))
	if err != nil {
		return
	}
	if fn := d.opts.Callbacks.OnMouse; fn != nil {
		id := rec.ID
		rec.Events.Push(func() { fn(id, me) })
	}
}

func (d *Driver) key(win xproto.Window, code uint32, dir wsys.KeyDirection) {
	rec, err := d.windows.Lookup(wsys.WindowID(win))
	if err != nil {
		return
	}
	if fn := d.opts.Callbacks.OnKey; fn != nil {
		id := rec.ID
		rec.Events.Push(func() { fn(id, wsys.KeyEvent{Code: code, Direction: dir}) })
	}
}

// finishClose delivers the close callback as the final event for the
// window. Repeat calls on the same record are no-ops.
func (d *Driver) finishClose(rec *registry.Record) {
	fn := d.opts.Callbacks.OnClose
	id := rec.ID
	rec.Events.Finish(func() {
		if fn != nil {
			fn(id)
		}
	})
}

// modifiers maps the X state bitmap onto the portable modifier set.
func modifiers(state uint16) wsys.Modifiers {
	var m wsys.Modifiers
	if state&xproto.ModMaskShift != 0 {
		m |= wsys.ModShift
	}
	if state&xproto.ModMaskControl != 0 {
		m |= wsys.ModControl
	}
	if state&xproto.ModMask1 != 0 {
		m |= wsys.ModAlt
	}
	if state&xproto.ModMask4 != 0 {
		m |= wsys.ModMeta
	}
	return m
}
