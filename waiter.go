package nanopipe

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// condTimed is a condition variable (ala sync.Cond) but inclues a timeout.
type condTimed struct {
	sync.Cond
	clk clock.Clock
}

// waitFor is like Wait, but gives up after d.  It reports false when the
// timer woke it.
func (this *condTimed) waitFor(d time.Duration) bool {
	timer := this.clk.AfterFunc(d, func() {
		this.L.Lock()
		this.Broadcast()
		this.L.Unlock()
	})
	this.Wait()
	return timer.Stop()
}

// Waiter is a way to wait for completion, but it includes a timeout.  It
// is similar in some respects to sync.WaitGroup.  The socket uses one to
// wait for its dialer and listener goroutines on Close.
type Waiter struct {
	cv    condTimed // conditional variable
	count int
	sync.Mutex
}

// Init must be called to initialize the Waiter.  A nil clock means the
// wall clock.
func (this *Waiter) Init(clk clock.Clock) {
	if clk == nil {
		clk = clock.New()
	}
	this.cv.L = this
	this.cv.clk = clk
	this.count = 0
}

// Add adds a new go routine/item to wait for. This should be called before
// starting go routines you want to wait for, for example.
func (this *Waiter) Add() {
	this.Lock()
	this.count++
	this.Unlock()
}

// Done is called when the item to wait for is done. There should be a one to
// one correspondance between Add and Done.  When the count drops to zero,
// any callers blocked in WaitRelTimeout are woken.  If the count drops
// below zero, it panics.
func (this *Waiter) Done() {
	this.Lock()
	this.count--
	if this.count < 0 {
		// should never happen
		panic("wait count dropped < 0")
	}
	if this.count == 0 {
		this.cv.Broadcast()
	}
	this.Unlock()
}

// WaitRelTimeout waits until either the count drops to zero, or d has
// passed on the waiter's clock.  It returns true if the count is zero.
func (this *Waiter) WaitRelTimeout(d time.Duration) bool {
	this.Lock()
	defer this.Unlock()

	expire := this.cv.clk.Now().Add(d)
	for this.count != 0 {
		left := expire.Sub(this.cv.clk.Now())
		if left <= 0 {
			return false
		}
		this.cv.waitFor(left)
	}
	return true
}

// setClock replaces the clock used by WaitRelTimeout.
func (this *Waiter) setClock(clk clock.Clock) {
	this.Lock()
	this.cv.clk = clk
	this.Unlock()
}

// Signaler is a broadcast Waker.  Waiters grab the channel returned by
// Ready, then check their condition, then block on the channel.  Wake
// closes the current channel, so a wake-up between the check and the
// block is never lost.  Wake never blocks and may be called with any lock
// held.
type Signaler struct {
	ch atomic.Pointer[chan struct{}]
}

// Ready returns a channel that is closed by the next Wake.
func (s *Signaler) Ready() <-chan struct{} {
	for {
		if ch := s.ch.Load(); ch != nil {
			return *ch
		}
		ch := make(chan struct{})
		if s.ch.CompareAndSwap(nil, &ch) {
			return ch
		}
	}
}

// Wake releases everybody waiting on the current Ready channel.
func (s *Signaler) Wake() {
	if ch := s.ch.Swap(nil); ch != nil {
		close(*ch)
	}
}
