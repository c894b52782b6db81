package equeue

import (
	"sync"
	"testing"
	"time"
)

func waitDone(t *testing.T, q *Queue) {
	t.Helper()
	select {
	case <-q.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("queue did not finish in time")
	}
}

func TestPushOrder(t *testing.T) {
	q := New()
	var mu sync.Mutex
	var got []int
	for i := 0; i < 100; i++ {
		i := i
		q.Push(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	q.Finish(func() {})
	waitDone(t, q)

	if len(got) != 100 {
		t.Fatalf("delivered %d callbacks, want 100", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("callback %d delivered out of order (got %d)", i, v)
		}
	}
}

func TestFinishDeliveredLast(t *testing.T) {
	q := New()
	var mu sync.Mutex
	var order []string
	q.Push(func() { mu.Lock(); order = append(order, "a"); mu.Unlock() })
	q.Push(func() { mu.Lock(); order = append(order, "b"); mu.Unlock() })
	q.Finish(func() { mu.Lock(); order = append(order, "close"); mu.Unlock() })
	waitDone(t, q)

	if len(order) != 3 || order[2] != "close" {
		t.Fatalf("order = %v, want final callback last", order)
	}
}

func TestFinishExactlyOnce(t *testing.T) {
	q := New()
	var mu sync.Mutex
	closes := 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Finish(func() { mu.Lock(); closes++; mu.Unlock() })
		}()
	}
	wg.Wait()
	waitDone(t, q)

	if closes != 1 {
		t.Fatalf("final callback ran %d times, want 1", closes)
	}
}

func TestPushAfterFinishDropped(t *testing.T) {
	q := New()
	var mu sync.Mutex
	ran := false
	q.Finish(func() {})
	q.Push(func() { mu.Lock(); ran = true; mu.Unlock() })
	waitDone(t, q)

	mu.Lock()
	defer mu.Unlock()
	if ran {
		t.Fatal("push after finish was delivered")
	}
}

func TestPushDoesNotBlockOnSlowConsumer(t *testing.T) {
	q := New()
	block := make(chan struct{})
	q.Push(func() { <-block })

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			q.Push(func() {})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("push blocked behind a running callback")
	}
	close(block)
	q.Finish(func() {})
	waitDone(t, q)
}

func TestLatePushDoesNotWaitForFinal(t *testing.T) {
	q := New()
	block := make(chan struct{})
	started := make(chan struct{})
	q.Finish(func() { close(started); <-block })
	<-started

	// The final callback is running, so the buffer has already stopped
	// accepting. A push that raced past the finished check would block
	// on q.in until the callback returned unless drained is closed.
	select {
	case <-q.drained:
	case <-time.After(2 * time.Second):
		t.Fatal("buffer still open during the final callback; a late push would stall the producer")
	}

	pushed := make(chan struct{})
	go func() {
		q.Push(func() {})
		close(pushed)
	}()
	select {
	case <-pushed:
	case <-time.After(2 * time.Second):
		t.Fatal("push blocked behind the running final callback")
	}

	close(block)
	waitDone(t, q)
}

func TestReleaseStops(t *testing.T) {
	q := New()
	q.Release()
	waitDone(t, q)
	// Pushes after release must not panic or block.
	q.Push(func() {})
	q.Finish(func() {})
}
