//go:build windows

package win32

import "github.com/1broseidon/paneshim/wsys"

// mouseFromMessage decodes a mouse message's lParam into the portable
// event. Coordinates are sign-extended from the packed 16-bit words: they
// go negative when a pressed button is dragged outside the client area.
func mouseFromMessage(m uint32, lParam uintptr) (wsys.MouseEvent, bool) {
	me := wsys.MouseEvent{
		X: int32(int16(uint16(lParam))),
		Y: int32(int16(uint16(lParam >> 16))),
	}
	switch m {
	case wmMouseMove:
		me.Direction = wsys.DirNone
	case wmLButtonDown, wmMButtonDown, wmRButtonDown:
		me.Direction = wsys.DirPress
	case wmLButtonUp, wmMButtonUp, wmRButtonUp:
		me.Direction = wsys.DirRelease
	default:
		return wsys.MouseEvent{}, false
	}
	switch m {
	case wmLButtonDown, wmLButtonUp:
		me.Button = 1
	case wmMButtonDown, wmMButtonUp:
		me.Button = 2
	case wmRButtonDown, wmRButtonUp:
		me.Button = 3
	}
	return me, true
}

// keyModifiers samples the modifier keys at the time of the current
// message. GetKeyState reads the message-time state, which is what the
// event should carry.
func keyModifiers() wsys.Modifiers {
	down := func(vk uintptr) bool {
		s, _, _ := procGetKeyState.Call(vk)
		return uint16(s)&0x8000 != 0
	}
	var m wsys.Modifiers
	if down(vkShift) {
		m |= wsys.ModShift
	}
	if down(vkControl) {
		m |= wsys.ModControl
	}
	if down(vkMenu) {
		m |= wsys.ModAlt
	}
	if down(vkLWin) || down(vkRWin) {
		m |= wsys.ModMeta
	}
	return m
}

// The senders below queue callbacks on the owning window; unknown ids are
// dropped (Windows delivers a few messages before createWindow registers
// the record).

func (d *Driver) expose(id wsys.WindowID) {
	rec, err := d.windows.Lookup(id)
	if err != nil {
		return
	}
	if fn := d.opts.Callbacks.OnExpose; fn != nil {
		rec.Events.Push(func() { fn(id) })
	}
}

func (d *Driver) resize(id wsys.WindowID, w, h int32) {
	rec, err := d.windows.Lookup(id)
	if err != nil {
		return
	}
	d.windows.SetSize(id, w, h)
	if fn := d.opts.Callbacks.OnResize; fn != nil {
		rec.Events.Push(func() { fn(id, w, h) })
	}
}

func (d *Driver) mouse(id wsys.WindowID, me wsys.MouseEvent) {
	rec, err := d.windows.Lookup(id)
	if err != nil {
		return
	}
	if fn := d.opts.Callbacks.OnMouse; fn != nil {
		rec.Events.Push(func() { fn(id, me) })
	}
}

func (d *Driver) key(id wsys.WindowID, code uint32, dir wsys.KeyDirection) {
	rec, err := d.windows.Lookup(id)
	if err != nil {
		return
	}
	if fn := d.opts.Callbacks.OnKey; fn != nil {
		rec.Events.Push(func() { fn(id, wsys.KeyEvent{Code: code, Direction: dir}) })
	}
}
