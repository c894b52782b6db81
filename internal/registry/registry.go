// Package registry owns the driver's id-to-window table. Platform event
// handlers are keyed by the native window id and look records up here; the
// table holds the back-references so windows and event handlers never point
// at each other directly.
package registry

import (
	"sync"

	"github.com/1broseidon/paneshim/internal/equeue"
	"github.com/1broseidon/paneshim/wsys"
)

// State tracks a window through its lifecycle. Destroyed is terminal.
type State uint8

const (
	StateCreated State = iota
	StateShown
	StateDestroyed
)

// Record is the driver-side state for one top-level window. All fields are
// mutated through Table methods under the table lock; the native handle
// itself is only touched on the UI thread.
type Record struct {
	ID      wsys.WindowID
	Width   int32
	Height  int32
	State   State
	Surface wsys.SurfaceID
	Events  *equeue.Queue
}

// Table maps live window ids to their records.
type Table struct {
	mu      sync.Mutex
	windows map[wsys.WindowID]*Record
}

func NewTable() *Table {
	return &Table{windows: map[wsys.WindowID]*Record{}}
}

// Add registers a freshly created window. The record starts in
// StateCreated with a running event queue.
func (t *Table) Add(id wsys.WindowID, width, height int32) *Record {
	r := &Record{
		ID:     id,
		Width:  width,
		Height: height,
		State:  StateCreated,
		Events: equeue.New(),
	}
	t.mu.Lock()
	t.windows[id] = r
	t.mu.Unlock()
	return r
}

// Lookup returns the live record for id, or wsys.ErrNotFound.
func (t *Table) Lookup(id wsys.WindowID) (*Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.windows[id]
	if !ok {
		return nil, wsys.ErrNotFound
	}
	return r, nil
}

// MarkShown moves id to StateShown and records its surface. Showing an
// already shown window is a no-op; the stored surface is returned either
// way so repeated Show calls stay idempotent.
func (t *Table) MarkShown(id wsys.WindowID, surface wsys.SurfaceID) (wsys.SurfaceID, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.windows[id]
	if !ok {
		return 0, false, wsys.ErrNotFound
	}
	if r.State == StateShown {
		return r.Surface, false, nil
	}
	r.State = StateShown
	r.Surface = surface
	return surface, true, nil
}

// Shown reports whether id is currently mapped, with its surface.
func (t *Table) Shown(id wsys.WindowID) (wsys.SurfaceID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.windows[id]
	if !ok || r.State != StateShown {
		return 0, false
	}
	return r.Surface, true
}

// Remove takes id out of the table, marking the record destroyed. Removing
// an absent id returns nil: destroy is idempotent by contract.
func (t *Table) Remove(id wsys.WindowID) *Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.windows[id]
	if !ok {
		return nil
	}
	r.State = StateDestroyed
	delete(t.windows, id)
	return r
}

// SetSize records the dimensions reported by the latest structural event.
func (t *Table) SetSize(id wsys.WindowID, width, height int32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok := t.windows[id]; ok {
		r.Width = width
		r.Height = height
	}
}

// Size returns the last recorded dimensions for id.
func (t *Table) Size(id wsys.WindowID) (width, height int32, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.windows[id]
	if !ok {
		return 0, 0, wsys.ErrNotFound
	}
	return r.Width, r.Height, nil
}

// Len reports how many windows are live.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.windows)
}

// BySurface finds the record owning the given surface.
func (t *Table) BySurface(s wsys.SurfaceID) (*Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.windows {
		if r.State == StateShown && r.Surface == s {
			return r, nil
		}
	}
	return nil, wsys.ErrNotFound
}

// Drain removes every record and returns them, used at driver shutdown.
func (t *Table) Drain() []*Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Record, 0, len(t.windows))
	for id, r := range t.windows {
		r.State = StateDestroyed
		out = append(out, r)
		delete(t.windows, id)
	}
	return out
}
