// Package uiexec serializes requests onto the thread that runs a platform
// event loop. Off-thread callers Post a function and block until the loop
// has executed it and filled the reply; a Post issued from the UI thread
// itself degenerates to a direct call, so callbacks can safely re-enter the
// driver. The loop thread periodically calls Drain between native events.
package uiexec

import (
	"sync"

	"github.com/1broseidon/paneshim/wsys"
)

type call struct {
	fn   func() (uintptr, error)
	ret  uintptr
	err  error
	done chan struct{}
}

// Executor is the cross-thread request queue for one driver instance.
type Executor struct {
	mu      sync.Mutex
	queue   []*call
	stopped bool
	uiTID   uint64
	bound   bool

	// wake nudges the event loop out of its blocking wait so it drains the
	// queue; nil when the loop polls on its own.
	wake func()

	// threadID returns the calling OS thread's identity. The loop goroutine
	// must be locked to its OS thread for the comparison to hold.
	threadID func() uint64
}

// New builds an executor. wake may be nil.
func New(wake func(), threadID func() uint64) *Executor {
	return &Executor{wake: wake, threadID: threadID}
}

// Bind records the current thread as the UI thread. Call it from the loop
// goroutine after runtime.LockOSThread and before the first Post.
func (e *Executor) Bind() {
	e.mu.Lock()
	e.uiTID = e.threadID()
	e.bound = true
	e.mu.Unlock()
}

// TID returns the UI thread's identity, 0 before Bind. Callers use it to
// recognize re-entrancy.
func (e *Executor) TID() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.uiTID
}

// OnUIThread reports whether the caller is running on the bound UI thread.
func (e *Executor) OnUIThread() bool {
	e.mu.Lock()
	tid, bound := e.uiTID, e.bound
	e.mu.Unlock()
	return bound && e.threadID() == tid
}

// Post runs fn on the UI thread and returns its reply. From the UI thread
// it calls fn directly; otherwise it enqueues, wakes the loop and blocks
// until the loop has produced the reply. After Shutdown it fails with
// wsys.ErrStopped.
func (e *Executor) Post(fn func() (uintptr, error)) (uintptr, error) {
	if e.OnUIThread() {
		return fn()
	}
	c := &call{fn: fn, done: make(chan struct{})}
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return 0, wsys.ErrStopped
	}
	e.queue = append(e.queue, c)
	e.mu.Unlock()
	if e.wake != nil {
		e.wake()
	}
	<-c.done
	return c.ret, c.err
}

// Drain executes the requests queued so far, in submission order. Only the
// loop goroutine calls it. Requests arriving during the drain are left for
// the next pass; their wake is already in flight, so the loop comes back
// around without starving native events.
func (e *Executor) Drain() {
	e.mu.Lock()
	pending := e.queue
	e.queue = nil
	e.mu.Unlock()
	for _, c := range pending {
		c.ret, c.err = c.fn()
		close(c.done)
	}
}

// Shutdown marks the executor stopped and fails all pending requests with
// wsys.ErrStopped. Posts that lost the race and are already queued fail the
// same way.
func (e *Executor) Shutdown() {
	e.mu.Lock()
	e.stopped = true
	pending := e.queue
	e.queue = nil
	e.mu.Unlock()
	for _, c := range pending {
		c.err = wsys.ErrStopped
		close(c.done)
	}
}

// Stopped reports whether Shutdown has run.
func (e *Executor) Stopped() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopped
}
