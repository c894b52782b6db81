//go:build windows

package win32

import (
	"errors"
	"testing"
	"time"

	"github.com/1broseidon/paneshim/internal/registry"
	"github.com/1broseidon/paneshim/wsys"
)

func newTestDriver(cb wsys.Callbacks) *Driver {
	return &Driver{
		opts:    wsys.Options{Callbacks: cb},
		log:     wsys.Options{}.Log(),
		windows: registry.NewTable(),
		done:    make(chan struct{}),
	}
}

func TestRequestsBeforeRunFail(t *testing.T) {
	d := newTestDriver(wsys.Callbacks{})

	// No utility window yet: the requests must fail instead of sending
	// to a null handle and reading the untouched reply as success.
	if id, err := d.NewWindow(64, 64); !errors.Is(err, wsys.ErrStopped) || id != 0 {
		t.Fatalf("NewWindow before Run = %d, %v, want 0, ErrStopped", id, err)
	}
	if _, err := d.ShowWindow(1); !errors.Is(err, wsys.ErrStopped) {
		t.Fatalf("ShowWindow before Run err = %v, want ErrStopped", err)
	}
	if err := d.CloseWindow(1); !errors.Is(err, wsys.ErrStopped) {
		t.Fatalf("CloseWindow before Run err = %v, want ErrStopped", err)
	}
}

func TestStopBeforeRun(t *testing.T) {
	d := newTestDriver(wsys.Callbacks{})

	// Stop with no pump running must not post anywhere; it just records
	// the request for Run to honor.
	d.Stop()
	if !d.stopping.Load() {
		t.Fatal("Stop did not mark the driver stopping")
	}
	d.Stop() // idempotent

	if _, err := d.NewWindow(64, 64); !errors.Is(err, wsys.ErrStopped) {
		t.Fatalf("NewWindow after Stop err = %v, want ErrStopped", err)
	}
}

func TestDestroyFailureStillDeliversClose(t *testing.T) {
	closes := make(chan wsys.WindowID, 1)
	d := newTestDriver(wsys.Callbacks{
		OnClose: func(id wsys.WindowID) { closes <- id },
	})

	// A registered id whose native handle is bogus: DestroyWindow fails,
	// but the close callback is still owed.
	const id = wsys.WindowID(0xDEAD)
	d.windows.Add(id, 64, 64)

	if err := d.destroyWindow(id); err == nil {
		t.Fatal("destroyWindow succeeded on a bogus handle")
	}
	select {
	case got := <-closes:
		if got != id {
			t.Fatalf("close for window %d, want %d", got, id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no close delivered after failed destroy")
	}
	if d.windows.Len() != 0 {
		t.Fatalf("table still holds %d windows", d.windows.Len())
	}
}
