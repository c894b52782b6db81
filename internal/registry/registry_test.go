package registry

import (
	"errors"
	"sync"
	"testing"

	"github.com/1broseidon/paneshim/wsys"
)

func TestLifecycle(t *testing.T) {
	tab := NewTable()
	rec := tab.Add(7, 640, 480)
	if rec.State != StateCreated {
		t.Fatalf("new record state = %v, want StateCreated", rec.State)
	}

	got, err := tab.Lookup(7)
	if err != nil || got != rec {
		t.Fatalf("Lookup(7) = %v, %v", got, err)
	}

	surface, changed, err := tab.MarkShown(7, 0xBEEF)
	if err != nil || !changed || surface != 0xBEEF {
		t.Fatalf("MarkShown = %v, %v, %v", surface, changed, err)
	}
	if rec.State != StateShown {
		t.Fatalf("state after show = %v, want StateShown", rec.State)
	}

	removed := tab.Remove(7)
	if removed != rec || removed.State != StateDestroyed {
		t.Fatalf("Remove returned %v with state %v", removed, removed.State)
	}
	if tab.Len() != 0 {
		t.Fatalf("table still holds %d windows after remove", tab.Len())
	}
	removed.Events.Release()
}

func TestLookupUnknown(t *testing.T) {
	tab := NewTable()
	if _, err := tab.Lookup(42); !errors.Is(err, wsys.ErrNotFound) {
		t.Fatalf("Lookup(42) err = %v, want ErrNotFound", err)
	}
	if _, _, err := tab.MarkShown(42, 1); !errors.Is(err, wsys.ErrNotFound) {
		t.Fatalf("MarkShown(42) err = %v, want ErrNotFound", err)
	}
	if _, _, err := tab.Size(42); !errors.Is(err, wsys.ErrNotFound) {
		t.Fatalf("Size(42) err = %v, want ErrNotFound", err)
	}
}

func TestShowIdempotent(t *testing.T) {
	tab := NewTable()
	rec := tab.Add(1, 100, 100)
	defer rec.Events.Release()

	first, changed, err := tab.MarkShown(1, 0x10)
	if err != nil || !changed {
		t.Fatalf("first MarkShown = %v, %v, %v", first, changed, err)
	}
	// A second show must not replace the surface.
	second, changed, err := tab.MarkShown(1, 0x20)
	if err != nil || changed || second != first {
		t.Fatalf("second MarkShown = %v, %v, %v; want %v, false, nil", second, changed, err, first)
	}
}

func TestRemoveIdempotent(t *testing.T) {
	tab := NewTable()
	rec := tab.Add(1, 100, 100)
	defer rec.Events.Release()

	if tab.Remove(1) == nil {
		t.Fatal("first Remove returned nil")
	}
	if tab.Remove(1) != nil {
		t.Fatal("second Remove returned a record")
	}
}

func TestBySurface(t *testing.T) {
	tab := NewTable()
	a := tab.Add(1, 10, 10)
	b := tab.Add(2, 20, 20)
	defer a.Events.Release()
	defer b.Events.Release()

	// Only shown windows own a surface.
	if _, err := tab.BySurface(0x11); !errors.Is(err, wsys.ErrNotFound) {
		t.Fatalf("BySurface before show err = %v, want ErrNotFound", err)
	}
	tab.MarkShown(2, 0x22)
	rec, err := tab.BySurface(0x22)
	if err != nil || rec.ID != 2 {
		t.Fatalf("BySurface(0x22) = %v, %v", rec, err)
	}
}

func TestSize(t *testing.T) {
	tab := NewTable()
	rec := tab.Add(1, 640, 480)
	defer rec.Events.Release()

	tab.SetSize(1, 800, 600)
	w, h, err := tab.Size(1)
	if err != nil || w != 800 || h != 600 {
		t.Fatalf("Size = %dx%d, %v, want 800x600", w, h, err)
	}
	// Sizing an absent id is ignored.
	tab.SetSize(9, 1, 1)
}

func TestConcurrentCreateDestroy(t *testing.T) {
	tab := NewTable()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		g := g
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := wsys.WindowID(g*1000 + i)
				rec := tab.Add(id, 64, 64)
				tab.MarkShown(id, wsys.SurfaceID(id))
				if removed := tab.Remove(id); removed != rec {
					t.Errorf("Remove(%d) returned wrong record", id)
				}
				rec.Events.Release()
			}
		}()
	}
	wg.Wait()
	if tab.Len() != 0 {
		t.Fatalf("table holds %d windows after churn, want 0", tab.Len())
	}
}

func TestDrain(t *testing.T) {
	tab := NewTable()
	for i := 0; i < 5; i++ {
		tab.Add(wsys.WindowID(i), 32, 32)
	}
	drained := tab.Drain()
	if len(drained) != 5 || tab.Len() != 0 {
		t.Fatalf("Drain returned %d records, table holds %d", len(drained), tab.Len())
	}
	for _, r := range drained {
		if r.State != StateDestroyed {
			t.Fatalf("drained record %d state = %v, want StateDestroyed", r.ID, r.State)
		}
		r.Events.Release()
	}
}
