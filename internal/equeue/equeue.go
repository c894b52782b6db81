// Package equeue provides an ordered, unbounded delivery queue for host
// callbacks. The UI thread pushes callback invocations without ever
// blocking, and a dedicated goroutine runs them one at a time in push
// order. A queue can be finished with a final callback, after which all
// later pushes are dropped; this is how a window's close callback is
// guaranteed to be delivered exactly once and last.
package equeue

import "sync/atomic"

type item struct {
	fn    func()
	final bool
}

// Queue is a single-consumer callback queue. Push never blocks on the
// consumer: items are buffered without bound between the producer and the
// dispatch goroutine.
type Queue struct {
	in       chan item
	out      chan item
	quit     chan struct{}
	done     chan struct{}
	drained  chan struct{}
	finished atomic.Bool
	closing  atomic.Bool
}

// New starts a queue and its dispatch goroutine.
func New() *Queue {
	q := &Queue{
		in:      make(chan item),
		out:     make(chan item),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		drained: make(chan struct{}),
	}
	go q.buffer()
	go q.dispatch()
	return q
}

// Push enqueues fn. Pushes after Finish or Release are dropped. Push never
// waits on a running callback: once the buffer stops accepting (drained),
// a push that raced past the finished check bails out instead of blocking
// until the final callback returns.
func (q *Queue) Push(fn func()) {
	if q.finished.Load() {
		return
	}
	select {
	case q.in <- item{fn: fn}:
	case <-q.quit:
	case <-q.drained:
	}
}

// Finish enqueues fn as the final callback. Exactly one Finish wins; the
// queue delivers everything pushed before it, then fn, then stops.
func (q *Queue) Finish(fn func()) {
	if !q.finished.CompareAndSwap(false, true) {
		return
	}
	select {
	case q.in <- item{fn: fn, final: true}:
	case <-q.quit:
	case <-q.drained:
	}
}

// Release stops the queue without delivering anything further. Pending
// callbacks may or may not run. Used on hard driver shutdown.
func (q *Queue) Release() {
	if q.closing.CompareAndSwap(false, true) {
		q.finished.Store(true)
		close(q.quit)
	}
}

// Done is closed once the dispatch goroutine has exited, meaning no more
// callbacks will run.
func (q *Queue) Done() <-chan struct{} { return q.done }

// buffer shuttles items from in to out through a growable FIFO so that
// Push returns promptly even while a callback is running. drained closes
// when the buffer stops receiving, so producers never wait on dispatch.
func (q *Queue) buffer() {
	defer close(q.drained)
	defer close(q.out)
	var pending []item
	for {
		var outc chan item
		var next item
		if len(pending) > 0 {
			outc = q.out
			next = pending[0]
		}
		select {
		case outc <- next:
			pending[0] = item{}
			pending = pending[1:]
			if next.final {
				return
			}
		case it := <-q.in:
			pending = append(pending, it)
		case <-q.quit:
			return
		}
	}
}

func (q *Queue) dispatch() {
	defer close(q.done)
	for it := range q.out {
		it.fn()
		if it.final {
			return
		}
	}
}
