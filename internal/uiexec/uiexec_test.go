package uiexec

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/paneshim/wsys"
)

// fakeThread gives each test goroutine a settable thread identity so the
// re-entrancy check can be exercised without OS thread pinning.
type fakeThread struct {
	mu  sync.Mutex
	ids map[int]uint64
	cur int
}

// loop runs a minimal event loop: wait for a wake, drain, repeat.
func runLoop(e *Executor, wakes <-chan struct{}, stop <-chan struct{}) {
	e.Bind()
	for {
		select {
		case <-wakes:
			e.Drain()
		case <-stop:
			e.Shutdown()
			return
		}
	}
}

func newTestExecutor() (*Executor, chan struct{}, chan struct{}, *uint64) {
	wakes := make(chan struct{}, 64)
	stop := make(chan struct{})
	// tid is read by the executor's threadID hook; tests flip it to
	// impersonate the loop thread.
	tid := new(uint64)
	*tid = 1
	e := New(
		func() { wakes <- struct{}{} },
		func() uint64 { return *tid },
	)
	return e, wakes, stop, tid
}

func TestPostRoundTrip(t *testing.T) {
	e, wakes, stop, tid := newTestExecutor()
	*tid = 99 // loop binds as thread 99
	go runLoop(e, wakes, stop)
	defer close(stop)

	for e.TID() == 0 {
		time.Sleep(time.Millisecond)
	}
	*tid = 1 // caller is a different thread

	got, err := e.Post(func() (uintptr, error) { return 42, nil })
	if err != nil || got != 42 {
		t.Fatalf("Post = %d, %v, want 42, nil", got, err)
	}
}

func TestConcurrentPostPairs(t *testing.T) {
	e, wakes, stop, tid := newTestExecutor()
	*tid = 99
	go runLoop(e, wakes, stop)
	defer close(stop)
	for e.TID() == 0 {
		time.Sleep(time.Millisecond)
	}
	*tid = 1

	// Create/destroy pairs from many goroutines. Every mutation of live
	// happens inside a posted request, so only the loop touches it.
	const (
		workers = 8
		pairs   = 125
	)
	var live int
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < pairs; i++ {
				if _, err := e.Post(func() (uintptr, error) { live++; return uintptr(live), nil }); err != nil {
					errs <- err
					return
				}
				if _, err := e.Post(func() (uintptr, error) { live--; return 0, nil }); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()

	select {
	case err := <-errs:
		t.Fatalf("Post failed mid-stress: %v", err)
	default:
	}

	got, err := e.Post(func() (uintptr, error) { return uintptr(live), nil })
	if err != nil {
		t.Fatalf("final Post err = %v", err)
	}
	if got != 0 {
		t.Fatalf("%d windows still tracked after paired create/destroy", got)
	}
}

func TestPostPreservesOrder(t *testing.T) {
	e := New(nil, func() uint64 { return 2 })
	// Queue from a "caller" identity, then drain as the loop.
	var got []int
	var wg sync.WaitGroup
	release := make(chan struct{})
	for i := 0; i < 10; i++ {
		i := i
		rel := release
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-rel
			e.Post(func() (uintptr, error) {
				got = append(got, i)
				return 0, nil
			})
		}()
		// Serialize submission so FIFO order is observable.
		close(release)
		release = make(chan struct{})
		for {
			e.mu.Lock()
			n := len(e.queue)
			e.mu.Unlock()
			if n == i+1 {
				break
			}
			time.Sleep(time.Millisecond)
		}
	}
	e.Drain()
	wg.Wait()

	for i, v := range got {
		if v != i {
			t.Fatalf("request %d ran out of order (got %d); full order %v", i, v, got)
		}
	}
}

func TestPostReturnsError(t *testing.T) {
	e, wakes, stop, tid := newTestExecutor()
	*tid = 99
	go runLoop(e, wakes, stop)
	defer close(stop)
	for e.TID() == 0 {
		time.Sleep(time.Millisecond)
	}
	*tid = 1

	boom := fmt.Errorf("window vanished")
	if _, err := e.Post(func() (uintptr, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("Post err = %v, want %v", err, boom)
	}
}

func TestReentrantPostRunsDirectly(t *testing.T) {
	tid := new(uint64)
	*tid = 7
	e := New(func() { t.Fatal("re-entrant post must not wake the loop") },
		func() uint64 { return *tid })
	e.Bind()

	// Same thread identity as the bound loop: direct call, no queue.
	got, err := e.Post(func() (uintptr, error) { return 5, nil })
	if err != nil || got != 5 {
		t.Fatalf("re-entrant Post = %d, %v", got, err)
	}
	e.mu.Lock()
	queued := len(e.queue)
	e.mu.Unlock()
	if queued != 0 {
		t.Fatalf("re-entrant Post left %d queued requests", queued)
	}
}

func TestShutdownFailsPending(t *testing.T) {
	e := New(nil, func() uint64 { return 2 })

	errs := make(chan error, 1)
	go func() {
		_, err := e.Post(func() (uintptr, error) { return 0, nil })
		errs <- err
	}()
	for {
		e.mu.Lock()
		n := len(e.queue)
		e.mu.Unlock()
		if n == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	e.Shutdown()

	select {
	case err := <-errs:
		if !errors.Is(err, wsys.ErrStopped) {
			t.Fatalf("pending Post err = %v, want ErrStopped", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pending Post did not unblock on Shutdown")
	}

	if _, err := e.Post(func() (uintptr, error) { return 0, nil }); !errors.Is(err, wsys.ErrStopped) {
		t.Fatalf("Post after Shutdown err = %v, want ErrStopped", err)
	}
}

func waitQueued(t *testing.T, e *Executor, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		e.mu.Lock()
		queued := len(e.queue)
		e.mu.Unlock()
		if queued == n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("queue never reached %d requests (at %d)", n, queued)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestDrainLeavesLateArrivals(t *testing.T) {
	e := New(nil, func() uint64 { return 2 })

	ran := make(chan string, 2)
	var nested sync.WaitGroup

	go e.Post(func() (uintptr, error) {
		ran <- "first"
		nested.Add(1)
		go func() {
			defer nested.Done()
			e.Post(func() (uintptr, error) { ran <- "second"; return 0, nil })
		}()
		// Hold the drain open until the nested request is queued.
		waitQueued(t, e, 1)
		return 0, nil
	})
	waitQueued(t, e, 1)

	e.Drain()
	if got := <-ran; got != "first" {
		t.Fatalf("first drain ran %q, want \"first\"", got)
	}
	select {
	case got := <-ran:
		t.Fatalf("request %q ran during the drain that was already underway", got)
	default:
	}

	// The nested request runs on the next pass.
	e.Drain()
	nested.Wait()
	if got := <-ran; got != "second" {
		t.Fatalf("second drain ran %q, want \"second\"", got)
	}
}
